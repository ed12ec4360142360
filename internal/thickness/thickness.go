// Package thickness parses thickness-gauge measurement exports and derives
// tables, database-ready aggregate values, and validity verdicts from them.
//
// Supported inputs are Excel workbooks (.xlsx) and delimited text exports
// (tab, semicolon, comma, or whitespace separated). Gauge exports are messy:
// instrument preamble rows, decimal commas, Excel formula prefixes, ragged
// rows. Parsing locates the numeric data region and tolerates the rest.
package thickness

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// File is a thickness measurement file bound to a path on disk.
// The file is read lazily on first use; construction only verifies
// that the path is readable.
type File struct {
	path     string
	maWindow int

	loaded  bool
	grid    *grid
	loadErr error
}

// grid is the parsed content: a header row (possibly synthesized) and the
// numeric data region. Missing or unparseable cells are nil.
type grid struct {
	columns []string
	rows    [][]*float64
}

// Option adjusts processing behavior.
type Option func(*File)

// WithMAWindow sets the moving-average window size in samples.
func WithMAWindow(n int) Option {
	return func(f *File) {
		if n > 0 {
			f.maWindow = n
		}
	}
}

// DefaultMAWindow is the moving-average window used when none is configured.
const DefaultMAWindow = 5

// Open binds a File to path. It fails only if the path cannot be read;
// content-level problems surface when an operation parses the file.
func Open(path string, opts ...Option) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open thickness file %s: %w", path, err)
	}
	fh.Close()

	f := &File{path: path, maWindow: DefaultMAWindow}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Path returns the bound file path.
func (f *File) Path() string {
	return f.path
}

// load parses the file once and caches the result.
func (f *File) load() (*grid, error) {
	if f.loaded {
		return f.grid, f.loadErr
	}
	f.loaded = true

	var cells [][]string
	var err error
	switch strings.ToLower(filepath.Ext(f.path)) {
	case ".xlsx":
		cells, err = readWorkbook(f.path)
	default:
		cells, err = readDelimited(f.path)
	}
	if err != nil {
		f.loadErr = err
		return nil, f.loadErr
	}

	f.grid, f.loadErr = buildGrid(cells)
	return f.grid, f.loadErr
}

// readWorkbook reads the first sheet of an xlsx workbook as a string grid.
func readWorkbook(path string) ([][]string, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workbook %s: %w", path, err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q of %s: %w", sheets[0], path, err)
	}
	return rows, nil
}

// readDelimited reads a delimited-text export as a string grid.
// The delimiter is detected from the content: tab, then semicolon, then
// comma, falling back to any whitespace.
func readDelimited(path string) ([][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text file %s: %w", path, err)
	}

	text := strings.TrimPrefix(string(raw), "\ufeff")
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	sep := detectDelimiter(lines)

	var cells [][]string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			cells = append(cells, nil)
			continue
		}
		if sep == "" {
			cells = append(cells, strings.Fields(line))
		} else {
			cells = append(cells, strings.Split(line, sep))
		}
	}
	return cells, nil
}

// detectDelimiter picks the most plausible field separator for the content.
// Decimal commas make the comma the last structured candidate.
func detectDelimiter(lines []string) string {
	counts := map[string]int{"\t": 0, ";": 0, ",": 0}
	for _, line := range lines {
		for sep := range counts {
			counts[sep] += strings.Count(line, sep)
		}
	}
	for _, sep := range []string{"\t", ";", ","} {
		if counts[sep] > 0 {
			return sep
		}
	}
	return ""
}

// buildGrid locates the numeric data region and the header row above it.
//
// The data region starts at the first row whose non-empty cells all parse as
// numbers, skipping instrument preamble. It extends through consecutive rows
// that contain at least one numeric cell; unparseable cells within the
// region become nil. The nearest non-empty row above the region provides the
// column names; without one, names are synthesized.
func buildGrid(cells [][]string) (*grid, error) {
	start := -1
	for i, row := range cells {
		if isNumericRow(row) {
			start = i
			break
		}
	}
	if start == -1 {
		return nil, fmt.Errorf("no numeric data region found")
	}

	var rows [][]*float64
	width := 0
	for _, row := range cells[start:] {
		parsed, numeric := parseRow(row)
		if numeric == 0 {
			break
		}
		if len(parsed) > width {
			width = len(parsed)
		}
		rows = append(rows, parsed)
	}

	// Normalize to rectangular shape
	for i, row := range rows {
		for len(row) < width {
			row = append(row, nil)
		}
		rows[i] = row
	}

	columns := headerFor(cells, start, width)
	return &grid{columns: columns, rows: rows}, nil
}

// headerFor returns column names from the nearest non-empty row above the
// data region, synthesizing names where the row is absent or too short.
func headerFor(cells [][]string, start, width int) []string {
	columns := make([]string, width)
	for i := start - 1; i >= 0; i-- {
		if rowHasContent(cells[i]) {
			for j := 0; j < width && j < len(cells[i]); j++ {
				columns[j] = cleanCell(cells[i][j])
			}
			break
		}
	}
	for j := range columns {
		if columns[j] == "" {
			columns[j] = fmt.Sprintf("column_%d", j+1)
		}
	}
	return columns
}

// isNumericRow reports whether the row has content and every non-empty
// cell parses as a number.
func isNumericRow(row []string) bool {
	seen := false
	for _, cell := range row {
		c := cleanCell(cell)
		if c == "" {
			continue
		}
		if _, ok := parseNumber(c); !ok {
			return false
		}
		seen = true
	}
	return seen
}

// parseRow converts a raw row into values, counting how many cells parsed.
func parseRow(row []string) ([]*float64, int) {
	parsed := make([]*float64, 0, len(row))
	numeric := 0
	for _, cell := range row {
		c := cleanCell(cell)
		if c == "" {
			parsed = append(parsed, nil)
			continue
		}
		v, ok := parseNumber(c)
		if !ok {
			parsed = append(parsed, nil)
			continue
		}
		value := v
		parsed = append(parsed, &value)
		numeric++
	}
	return parsed, numeric
}

func rowHasContent(row []string) bool {
	for _, cell := range row {
		if cleanCell(cell) != "" {
			return true
		}
	}
	return false
}

// cleanCell strips whitespace, Excel formula prefixes (="value"), and
// surrounding quotes from a raw cell.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// parseNumber parses a cell value as a float, tolerating decimal commas.
func parseNumber(s string) (float64, bool) {
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// thicknessColumn returns the index of the thickness column: the first
// column whose header mentions thickness, otherwise the first column.
func (g *grid) thicknessColumn() int {
	for i, name := range g.columns {
		if strings.Contains(strings.ToLower(name), "thickness") {
			return i
		}
	}
	return 0
}

// columnValues returns the non-nil values of a column in row order.
func (g *grid) columnValues(col int) []float64 {
	values := make([]float64, 0, len(g.rows))
	for _, row := range g.rows {
		if col < len(row) && row[col] != nil {
			values = append(values, *row[col])
		}
	}
	return values
}
