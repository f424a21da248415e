package models

// Dataset is tabular input: column names in their original order plus one
// value map per row. Missing keys read as empty.
type Dataset struct {
	Columns []string
	Rows    []map[string]any
}

// Len returns the number of rows.
func (d Dataset) Len() int { return len(d.Rows) }
