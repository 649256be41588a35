package prevalence

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
)

// Table is the rendered prevalence record: named columns plus one row per
// step, suitable for direct serialization to a delimited table.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// MarshalJSON renders a row as [at, count, count, ...] to keep the column
// order explicit.
func (r Row) MarshalJSON() ([]byte, error) {
	cells := make([]int, 0, len(r.Counts)+1)
	cells = append(cells, r.At)
	cells = append(cells, r.Counts...)
	return json.Marshal(cells)
}

// Table renders the tracker's current state. The first column is the step
// index "at"; the remainder follow the tracker's fixed series order.
func (t *Tracker) Table() *Table {
	cols := make([]string, 0, len(t.keys)+1)
	cols = append(cols, "at")
	for _, k := range t.keys {
		cols = append(cols, k.Column())
	}
	return &Table{Columns: cols, Rows: t.Rows()}
}

// WriteCSV writes the table with a header row.
func (tb *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tb.Columns); err != nil {
		return err
	}
	record := make([]string, len(tb.Columns))
	for _, row := range tb.Rows {
		record[0] = strconv.Itoa(row.At)
		for i, n := range row.Counts {
			record[i+1] = strconv.Itoa(n)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
