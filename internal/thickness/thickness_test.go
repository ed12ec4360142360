package thickness

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeText(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeWorkbook(t *testing.T, header []any, rows [][]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gauge.xlsx")

	wb := excelize.NewFile()
	require.NoError(t, wb.SetSheetRow("Sheet1", "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, wb.SaveAs(path))
	return path
}

func TestTableOfDF_TabDelimited(t *testing.T) {
	path := writeText(t, "gauge.txt",
		"Position\tThickness\n"+
			"1\t1.02\n"+
			"2\t1.04\n"+
			"3\t1.01\n")

	f, err := Open(path)
	require.NoError(t, err)

	table, err := f.TableOfDF()
	require.NoError(t, err)

	assert.Equal(t, []string{"Position", "Thickness"}, table.Columns)
	require.Equal(t, 3, table.RowCount())
	require.NotNil(t, table.Rows[1][1])
	assert.InDelta(t, 1.04, *table.Rows[1][1], 1e-9)
}

func TestTableOfDF_SkipsInstrumentPreamble(t *testing.T) {
	path := writeText(t, "gauge.txt",
		"Instrument: ElektroPhysik MiniTest 7400\n"+
			"Operator: QA\n"+
			"\n"+
			"Position\tThickness\n"+
			"1\t2.50\n"+
			"2\t2.48\n")

	f, err := Open(path)
	require.NoError(t, err)

	table, err := f.TableOfDF()
	require.NoError(t, err)

	assert.Equal(t, []string{"Position", "Thickness"}, table.Columns)
	assert.Equal(t, 2, table.RowCount())
}

func TestTableOfDF_SemicolonAndDecimalComma(t *testing.T) {
	path := writeText(t, "gauge.txt",
		"Position;Thickness\n"+
			"1;1,02\n"+
			"2;1,08\n")

	f, err := Open(path)
	require.NoError(t, err)

	table, err := f.TableOfDF()
	require.NoError(t, err)

	require.Equal(t, 2, table.RowCount())
	require.NotNil(t, table.Rows[0][1])
	assert.InDelta(t, 1.02, *table.Rows[0][1], 1e-9)
}

func TestTableOfDF_NoHeaderSynthesizesColumns(t *testing.T) {
	path := writeText(t, "gauge.txt", "1.02\t1.5\n1.04\t1.6\n")

	f, err := Open(path)
	require.NoError(t, err)

	table, err := f.TableOfDF()
	require.NoError(t, err)

	assert.Equal(t, []string{"column_1", "column_2"}, table.Columns)
}

func TestTableOfDF_EmptyFileFails(t *testing.T) {
	path := writeText(t, "gauge.txt", "")

	f, err := Open(path)
	require.NoError(t, err)

	_, err = f.TableOfDF()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no numeric data region")
}

func TestTableOfDF_Workbook(t *testing.T) {
	path := writeWorkbook(t,
		[]any{"Position", "Thickness"},
		[][]any{
			{1, 1.10},
			{2, 1.12},
			{3, 1.09},
		})

	f, err := Open(path)
	require.NoError(t, err)

	table, err := f.TableOfDF()
	require.NoError(t, err)

	assert.Equal(t, []string{"Position", "Thickness"}, table.Columns)
	require.Equal(t, 3, table.RowCount())
	require.NotNil(t, table.Rows[2][1])
	assert.InDelta(t, 1.09, *table.Rows[2][1], 1e-9)
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open("/nonexistent/gauge.txt")
	require.Error(t, err)
}

func TestThicknessMA_Aggregates(t *testing.T) {
	path := writeText(t, "gauge.txt",
		"Position\tThickness\n"+
			"1\t1.0\n"+
			"2\t2.0\n"+
			"3\t3.0\n"+
			"4\t4.0\n")

	f, err := Open(path, WithMAWindow(2))
	require.NoError(t, err)

	agg, err := f.ThicknessMAForDatabase()
	require.NoError(t, err)

	assert.Equal(t, "Thickness", agg.Column)
	assert.Equal(t, 4, agg.Count)
	assert.InDelta(t, 1.0, agg.MinThickness, 1e-9)
	assert.InDelta(t, 4.0, agg.MaxThickness, 1e-9)
	assert.InDelta(t, 2.5, agg.MeanThickness, 1e-9)
	assert.InDelta(t, math.Sqrt(5.0/3.0), agg.StdDev, 1e-9)
	assert.Equal(t, 2, agg.MAWindow)
	require.Len(t, agg.MovingAverage, 3)
	assert.InDelta(t, 1.5, agg.MovingAverage[0], 1e-9)
	assert.InDelta(t, 2.5, agg.MovingAverage[1], 1e-9)
	assert.InDelta(t, 3.5, agg.MovingAverage[2], 1e-9)
}

func TestThicknessMA_FallsBackToFirstColumn(t *testing.T) {
	path := writeText(t, "gauge.txt",
		"Reading\tTemp\n"+
			"1.5\t20\n"+
			"1.6\t21\n")

	f, err := Open(path)
	require.NoError(t, err)

	agg, err := f.ThicknessMAForDatabase()
	require.NoError(t, err)

	assert.Equal(t, "Reading", agg.Column)
	assert.Equal(t, 2, agg.Count)
}

func TestThicknessMA_ShortSeriesHasEmptyMA(t *testing.T) {
	path := writeText(t, "gauge.txt", "Thickness\n1.0\n2.0\n")

	f, err := Open(path, WithMAWindow(5))
	require.NoError(t, err)

	agg, err := f.ThicknessMAForDatabase()
	require.NoError(t, err)
	assert.Empty(t, agg.MovingAverage)
}

func TestValidityCheck_ValidFile(t *testing.T) {
	path := writeText(t, "gauge.txt",
		"Position\tThickness\n"+
			"1\t1.02\n"+
			"2\t1.04\n")

	f, err := Open(path)
	require.NoError(t, err)

	v, err := f.ValidityCheck()
	require.NoError(t, err)

	assert.True(t, v.Valid)
	assert.Equal(t, 2, v.Rows)
	assert.Equal(t, 2, v.Columns)
	assert.Empty(t, v.Errors)
}

func TestValidityCheck_MalformedIsVerdictNotError(t *testing.T) {
	path := writeText(t, "gauge.txt", "this is not a measurement export\nat all\n")

	f, err := Open(path)
	require.NoError(t, err)

	v, err := f.ValidityCheck()
	require.NoError(t, err, "malformed content must yield a verdict, not an error")

	assert.False(t, v.Valid)
	require.NotEmpty(t, v.Errors)
	assert.Contains(t, v.Errors[0], "no numeric data region")
}

func TestValidityCheck_NonPositiveThickness(t *testing.T) {
	path := writeText(t, "gauge.txt",
		"Position\tThickness\n"+
			"1\t1.02\n"+
			"2\t-0.5\n")

	f, err := Open(path)
	require.NoError(t, err)

	v, err := f.ValidityCheck()
	require.NoError(t, err)

	assert.False(t, v.Valid)
	require.NotEmpty(t, v.Errors)
	assert.Contains(t, v.Errors[0], "non-positive thickness")
}

func TestValidityCheck_MissingThicknessValues(t *testing.T) {
	path := writeText(t, "gauge.txt",
		"Position\tThickness\n"+
			"1\t1.02\n"+
			"2\tn/a\n")

	f, err := Open(path)
	require.NoError(t, err)

	v, err := f.ValidityCheck()
	require.NoError(t, err)

	assert.False(t, v.Valid)
}
