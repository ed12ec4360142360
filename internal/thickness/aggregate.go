package thickness

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// AggregateValues is the reduced, database-ready summary of a measurement
// file: descriptive statistics of the thickness column plus its trailing
// moving average.
type AggregateValues struct {
	Column        string    `json:"column"`
	Count         int       `json:"count"`
	MinThickness  float64   `json:"min_thickness"`
	MaxThickness  float64   `json:"max_thickness"`
	MeanThickness float64   `json:"mean_thickness"`
	StdDev        float64   `json:"std_dev"`
	MAWindow      int       `json:"ma_window"`
	MovingAverage []float64 `json:"moving_average"`
}

// ThicknessMAForDatabase parses the file, locates the thickness column, and
// computes its aggregate values. The moving average is the trailing mean
// over the configured window; it is empty when the file holds fewer samples
// than the window.
func (f *File) ThicknessMAForDatabase() (*AggregateValues, error) {
	g, err := f.load()
	if err != nil {
		return nil, err
	}

	col := g.thicknessColumn()
	values := g.columnValues(col)
	if len(values) == 0 {
		return nil, fmt.Errorf("thickness column %q has no values", g.columns[col])
	}

	agg := &AggregateValues{
		Column:        g.columns[col],
		Count:         len(values),
		MinThickness:  floats.Min(values),
		MaxThickness:  floats.Max(values),
		MeanThickness: stat.Mean(values, nil),
		MAWindow:      f.maWindow,
		MovingAverage: movingAverage(values, f.maWindow),
	}
	if len(values) > 1 {
		agg.StdDev = stat.StdDev(values, nil)
	}
	return agg, nil
}

// movingAverage computes the trailing mean over window-sized slices.
// The result has len(values)-window+1 entries, or none when the series
// is shorter than the window.
func movingAverage(values []float64, window int) []float64 {
	if window <= 0 || len(values) < window {
		return []float64{}
	}
	out := make([]float64, 0, len(values)-window+1)
	for i := window; i <= len(values); i++ {
		out = append(out, stat.Mean(values[i-window:i], nil))
	}
	return out
}
