package thickness

// Table is the full parsed data region of a measurement file.
// Missing or unparseable cells are null in the JSON encoding.
type Table struct {
	Columns []string     `json:"columns"`
	Rows    [][]*float64 `json:"rows"`
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// TableOfDF parses the file and returns its tabular structure.
func (f *File) TableOfDF() (*Table, error) {
	g, err := f.load()
	if err != nil {
		return nil, err
	}
	return &Table{Columns: g.columns, Rows: g.rows}, nil
}
