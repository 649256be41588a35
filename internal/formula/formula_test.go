package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParse_Terms verifies term names and quoted covariate arguments.
func TestParse_Terms(t *testing.T) {
	f, err := Parse(`~edges + nodematch("risk") + nodefactor('group', levels = -1)`)
	require.NoError(t, err)
	require.Len(t, f.Terms, 3)

	assert.Equal(t, "edges", f.Terms[0].Name)
	assert.Empty(t, f.Terms[0].Attr)
	assert.Equal(t, "nodematch", f.Terms[1].Name)
	assert.Equal(t, "risk", f.Terms[1].Attr)
	assert.Equal(t, "nodefactor", f.Terms[2].Name)
	assert.Equal(t, "group", f.Terms[2].Attr)
}

// TestParse_NoTilde verifies the leading tilde is optional.
func TestParse_NoTilde(t *testing.T) {
	f, err := Parse(`edges + concurrent`)
	require.NoError(t, err)
	require.Len(t, f.Terms, 2)
	assert.Equal(t, "concurrent", f.Terms[1].Name)
}

// TestParse_OffsetUnwrap verifies offset() wrappers are transparent.
func TestParse_OffsetUnwrap(t *testing.T) {
	f, err := Parse(`~offset(edges)`)
	require.NoError(t, err)
	require.Len(t, f.Terms, 1)
	assert.Equal(t, "edges", f.Terms[0].Name)
	assert.True(t, f.IsEdgesOnly())
}

// TestParse_PlusInsideParens verifies '+' inside a term's arguments does
// not split the term.
func TestParse_PlusInsideParens(t *testing.T) {
	f, err := Parse(`~edges + absdiff("age" + 1)`)
	require.NoError(t, err)
	require.Len(t, f.Terms, 2)
	assert.Equal(t, "absdiff", f.Terms[1].Name)
	assert.Equal(t, "age", f.Terms[1].Attr)
}

// TestParse_Errors verifies malformed formulas are rejected.
func TestParse_Errors(t *testing.T) {
	for _, raw := range []string{"", "~", "~edges +", "~edges + nodematch(\"r\""} {
		_, err := Parse(raw)
		assert.Error(t, err, "formula %q", raw)
	}
}

// TestAttrs_DistinctInOrder verifies duplicate covariates collapse to the
// first appearance and terms without covariates contribute nothing.
func TestAttrs_DistinctInOrder(t *testing.T) {
	f, err := Parse(`~edges + nodematch("risk") + nodefactor("group") + absdiff("risk")`)
	require.NoError(t, err)
	assert.Equal(t, []string{"risk", "group"}, f.Attrs())

	f, err = Parse(`~edges + concurrent`)
	require.NoError(t, err)
	assert.Nil(t, f.Attrs())
}

// TestIsEdgesOnly verifies the dissolution shape check.
func TestIsEdgesOnly(t *testing.T) {
	for raw, want := range map[string]bool{
		`~edges`:                    true,
		`~offset(edges)`:            true,
		`~edges + concurrent`:       false,
		`~nodematch("risk")`:        false,
		`~edges + nodematch("grp")`: false,
	} {
		f, err := Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, want, f.IsEdgesOnly(), "formula %q", raw)
	}
}
