package thickness

import "fmt"

// Validity is the verdict on whether a file conforms to the expected
// thickness export schema. An invalid file is an expected domain outcome,
// not a processing failure.
type Validity struct {
	Valid   bool     `json:"valid"`
	Rows    int      `json:"rows"`
	Columns int      `json:"columns"`
	Errors  []string `json:"errors,omitempty"`
}

// ValidityCheck judges the file against the expected schema. Content-level
// problems, including files that cannot be parsed at all, produce an invalid
// verdict rather than an error; only the verdict is the result.
func (f *File) ValidityCheck() (*Validity, error) {
	g, err := f.load()
	if err != nil {
		return &Validity{
			Valid:  false,
			Errors: []string{err.Error()},
		}, nil
	}

	v := &Validity{
		Valid:   true,
		Rows:    len(g.rows),
		Columns: len(g.columns),
	}

	if len(g.rows) == 0 {
		v.fail("file contains no measurement rows")
	}

	col := g.thicknessColumn()
	values := g.columnValues(col)
	if len(values) == 0 {
		v.fail(fmt.Sprintf("thickness column %q has no values", g.columns[col]))
	}

	missing := 0
	for _, row := range g.rows {
		if col >= len(row) || row[col] == nil {
			missing++
		}
	}
	if missing > 0 {
		v.fail(fmt.Sprintf("%d of %d rows are missing a thickness value", missing, len(g.rows)))
	}

	for i, value := range values {
		if value <= 0 {
			v.fail(fmt.Sprintf("non-positive thickness %g at sample %d", value, i+1))
			break
		}
	}

	return v, nil
}

func (v *Validity) fail(reason string) {
	v.Valid = false
	v.Errors = append(v.Errors, reason)
}
