package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ukaji3/cdtire-go/pkg/cdtire/models"
)

// decimalPattern matches the plain decimal literals accepted by ToNumber.
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// decimalPrefix matches the leading decimal literal used by parseLeadingFloat.
var decimalPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// cleanNumeric strips the first percent sign, turns commas into decimal
// points and drops every character other than digits, '.' and '-'.
func cleanNumeric(s string) string {
	s = strings.Replace(s, "%", "", 1)
	s = strings.ReplaceAll(s, ",", ".")
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
}

// LooksNumeric reports whether a non-blank cell still parses as a number
// once cleaned of units, percent signs and stray characters.
func LooksNumeric(c models.Cell) bool {
	if c.IsBlank() {
		return false
	}
	cleaned := cleanNumeric(models.TrimSpace(c.String()))
	if cleaned == "" {
		return false
	}
	_, err := strconv.ParseFloat(cleaned, 64)
	return err == nil
}

// ToNumber converts a string to a number after trimming. Empty strings
// convert to zero; anything that is not a decimal literal, a 0x/0o/0b
// prefixed integer or an Infinity spelling fails.
func ToNumber(s string) (float64, bool) {
	s = models.TrimSpace(s)
	switch s {
	case "":
		return 0, true
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			u, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return 0, false
			}
			return float64(u), true
		}
	}
	if !decimalPattern.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Out-of-range literals saturate to ±Inf.
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f, true
		}
		return 0, false
	}
	return f, true
}

// parseLeadingFloat parses the longest decimal prefix of s, returning NaN
// when there is none.
func parseLeadingFloat(s string) float64 {
	s = strings.TrimLeftFunc(s, func(r rune) bool { return models.TrimSpace(string(r)) == "" })
	switch {
	case strings.HasPrefix(s, "Infinity"), strings.HasPrefix(s, "+Infinity"):
		return math.Inf(1)
	case strings.HasPrefix(s, "-Infinity"):
		return math.Inf(-1)
	}
	m := decimalPrefix.FindString(s)
	if m == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

// isFinite reports whether f is neither NaN nor infinite.
func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
