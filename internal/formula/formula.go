// Package formula models the declarative formation/dissolution formulas
// consumed by the external graph-evolution model.
//
// A formula is a tilde expression of additive terms, e.g.
//
//	~edges + nodematch("risk") + nodefactor("group")
//
// The core never evaluates formulas; it only needs their shape: the term
// names, the quoted nodal-covariate argument of each term (if any), and
// whether a dissolution formula is the single supported edges-only form.
package formula

import (
	"fmt"
	"strings"
)

// Term is one additive formula term.
type Term struct {
	// Name is the term function name ("edges", "nodematch", ...).
	Name string
	// Attr is the first quoted nodal-covariate argument, empty when the
	// term takes none.
	Attr string
	// Raw is the term's original text.
	Raw string
}

// Formula is a parsed tilde formula.
type Formula struct {
	Raw   string
	Terms []Term
}

// Parse parses a tilde formula into its additive terms. The leading tilde
// is optional. Terms are split on top-level '+' only; '+' inside
// parentheses stays part of its term.
func Parse(s string) (Formula, error) {
	f := Formula{Raw: s}
	body := strings.TrimSpace(s)
	body = strings.TrimPrefix(body, "~")
	if strings.TrimSpace(body) == "" {
		return Formula{}, fmt.Errorf("empty formula %q", s)
	}
	for _, raw := range splitTop(body) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return Formula{}, fmt.Errorf("empty term in formula %q", s)
		}
		term, err := parseTerm(raw)
		if err != nil {
			return Formula{}, fmt.Errorf("formula %q: %w", s, err)
		}
		f.Terms = append(f.Terms, term)
	}
	return f, nil
}

// splitTop splits on '+' outside parentheses and quotes.
func splitTop(s string) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == '+' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// parseTerm extracts the name and the first quoted argument of one term.
// An offset(...) wrapper is transparent: offset(edges) parses as edges.
func parseTerm(raw string) (Term, error) {
	name := raw
	args := ""
	if i := strings.IndexByte(raw, '('); i >= 0 {
		if !strings.HasSuffix(raw, ")") {
			return Term{}, fmt.Errorf("unbalanced parentheses in term %q", raw)
		}
		name = strings.TrimSpace(raw[:i])
		args = raw[i+1 : len(raw)-1]
	}
	if name == "" {
		return Term{}, fmt.Errorf("term %q has no name", raw)
	}
	if name == "offset" {
		inner, err := parseTerm(strings.TrimSpace(args))
		if err != nil {
			return Term{}, err
		}
		inner.Raw = raw
		return inner, nil
	}
	return Term{Name: name, Attr: firstQuoted(args), Raw: raw}, nil
}

// firstQuoted returns the contents of the first single- or double-quoted
// string in s, or "".
func firstQuoted(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\'' {
			if j := strings.IndexByte(s[i+1:], s[i]); j >= 0 {
				return s[i+1 : i+1+j]
			}
			return ""
		}
	}
	return ""
}

// Attrs returns the distinct quoted nodal-covariate names referenced by the
// formula, in order of first appearance. Terms without a quoted covariate
// argument are ignored; a formula with none returns nil.
func (f Formula) Attrs() []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range f.Terms {
		if t.Attr == "" || seen[t.Attr] {
			continue
		}
		seen[t.Attr] = true
		out = append(out, t.Attr)
	}
	return out
}

// IsEdgesOnly reports whether the formula is exactly one homogeneous
// "edges" term, the only dissolution shape the calibrator supports.
func (f Formula) IsEdgesOnly() bool {
	return len(f.Terms) == 1 && f.Terms[0].Name == "edges" && f.Terms[0].Attr == ""
}

// String returns the formula's original text.
func (f Formula) String() string { return f.Raw }
