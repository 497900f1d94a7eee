// Package cdtire extracts CDTire test-run matrices from protocol workbooks
// and fills protocol templates with operator values.
package cdtire

import "github.com/ukaji3/cdtire-go/pkg/cdtire/parser"

// Options configures extraction behavior.
type Options struct {
	// Params holds the header and column detection thresholds.
	// The zero value means parser.DefaultDetectionParams().
	Params parser.DetectionParams
	// AllowEmpty returns an empty result instead of ErrNoValidData when no
	// sheet yields a record.
	AllowEmpty bool
}

// DefaultOptions returns default extraction options.
func DefaultOptions() Options {
	return Options{
		Params: parser.DefaultDetectionParams(),
	}
}

// params returns the configured thresholds, defaulting the zero value.
func (o Options) params() parser.DetectionParams {
	if o.Params == (parser.DetectionParams{}) {
		return parser.DefaultDetectionParams()
	}
	return o.Params
}
