package harness

import (
	"fmt"
	"strings"
)

// Assertion validates one series of the output table.
type Assertion struct {
	// Type specifies the assertion type:
	// - "series_value": the series holds Count at step At
	// - "series_constant": the series holds Count at every step
	// - "row_count": the table records exactly Count steps
	Type string `yaml:"type"`

	// Series is the column name, e.g. "i.num" or "s.num.high.m2".
	Series string `yaml:"series,omitempty"`

	// At is the 1-based step for series_value.
	At int `yaml:"at,omitempty"`

	// Count is the expected value.
	Count int `yaml:"count"`
}

// AssertionError is returned when an assertion fails. It renders the
// full table so a failure is debuggable from the message alone.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Result   *Result
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	fmt.Fprintf(&buf, "\nFull table:\n")
	e.Result.Table.WriteCSV(&buf)
	return buf.String()
}

// CheckAssertions evaluates every assertion against a result, returning
// all failures rather than stopping at the first.
func CheckAssertions(result *Result, assertions []Assertion) []error {
	var errs []error
	for _, a := range assertions {
		if err := checkAssertion(result, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func checkAssertion(result *Result, a Assertion) error {
	switch a.Type {
	case "series_value":
		return checkSeriesValue(result, a)
	case "series_constant":
		return checkSeriesConstant(result, a)
	case "row_count":
		if got := len(result.Table.Rows); got != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d rows", a.Count),
				Actual:   fmt.Sprintf("%d rows", got),
				Result:   result,
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func checkSeriesValue(result *Result, a Assertion) error {
	got, err := seriesAt(result, a.Series, a.At)
	if err != nil {
		return err
	}
	if got != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s = %d at step %d", a.Series, a.Count, a.At),
			Actual:   fmt.Sprintf("%s = %d", a.Series, got),
			Result:   result,
		}
	}
	return nil
}

func checkSeriesConstant(result *Result, a Assertion) error {
	for _, row := range result.Table.Rows {
		got, err := seriesAt(result, a.Series, row.At)
		if err != nil {
			return err
		}
		if got != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s = %d at every step", a.Series, a.Count),
				Actual:   fmt.Sprintf("%s = %d at step %d", a.Series, got, row.At),
				Result:   result,
			}
		}
	}
	return nil
}

func seriesAt(result *Result, series string, at int) (int, error) {
	col := -1
	for i, c := range result.Table.Columns {
		if c == series {
			col = i
			break
		}
	}
	if col < 1 {
		return 0, fmt.Errorf("series %q not found in %v", series, result.Table.Columns)
	}
	for _, row := range result.Table.Rows {
		if row.At == at {
			return row.Counts[col-1], nil
		}
	}
	return 0, fmt.Errorf("step %d not recorded (have %d rows)", at, len(result.Table.Rows))
}
