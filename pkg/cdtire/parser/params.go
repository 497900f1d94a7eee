// Package parser implements worksheet reading, header detection, column
// inference and run extraction for CDTire protocol workbooks.
package parser

// DetectionParams holds the thresholds used by the header and column
// heuristics.
type DetectionParams struct {
	// HeaderScanRows is how many leading rows may hold the header.
	HeaderScanRows int
	// NumericRowRatio is the share of numeric cells above which a header
	// candidate is treated as a data row.
	NumericRowRatio float64
	// SampleRows is how many rows below the header are sampled for
	// numeric-shape inference.
	SampleRows int
	// NumericColumnRatio is the share of numeric samples a column needs to
	// count as numeric.
	NumericColumnRatio float64
	// IntegerTolerance is the distance from the nearest integer still
	// treated as integral.
	IntegerTolerance float64
	// MinDistinctRuns is the floor of the distinct-value bound for an
	// inferred run column.
	MinDistinctRuns int
}

// DefaultDetectionParams returns the stock thresholds.
func DefaultDetectionParams() DetectionParams {
	return DetectionParams{
		HeaderScanRows:     10,
		NumericRowRatio:    0.7,
		SampleRows:         7,
		NumericColumnRatio: 0.6,
		IntegerTolerance:   1e-6,
		MinDistinctRuns:    3,
	}
}
