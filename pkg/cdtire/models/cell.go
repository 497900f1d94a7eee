// Package models defines data structures for CDTire workbook extraction.
package models

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// CellKind identifies which variant a Cell holds.
type CellKind uint8

const (
	// CellEmpty is an absent or empty cell.
	CellEmpty CellKind = iota
	// CellText is a string cell.
	CellText
	// CellNumber is a numeric cell.
	CellNumber
)

// Cell is a single worksheet value: text, number, or empty.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

// Empty returns the empty cell.
func Empty() Cell { return Cell{} }

// Text returns a text cell.
func Text(s string) Cell { return Cell{Kind: CellText, Text: s} }

// Number returns a numeric cell.
func Number(f float64) Cell { return Cell{Kind: CellNumber, Number: f} }

// IsEmpty reports whether the cell holds no value at all.
func (c Cell) IsEmpty() bool { return c.Kind == CellEmpty }

// IsBlank reports whether the cell is empty or text that trims to nothing.
func (c Cell) IsBlank() bool {
	switch c.Kind {
	case CellEmpty:
		return true
	case CellText:
		return TrimSpace(c.Text) == ""
	}
	return false
}

// String returns the cell's string form. Numbers use the shortest
// representation that round-trips, switching to exponent notation only for
// very large or very small magnitudes.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return FormatNumber(c.Number)
	}
	return ""
}

// FormatNumber renders f the way spreadsheet front ends display plain numbers.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if f == 0 {
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		if digits == "" {
			digits = "0"
		}
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// TrimSpace trims Unicode white space and the byte order mark from both ends.
func TrimSpace(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

// Row is an ordered sequence of cells.
type Row []Cell

// At returns the cell at column i, or the empty cell when i is out of range.
func (r Row) At(i int) Cell {
	if i < 0 || i >= len(r) {
		return Cell{}
	}
	return r[i]
}

// Has reports whether column i exists in the row and holds a value.
func (r Row) Has(i int) bool {
	return i >= 0 && i < len(r) && r[i].Kind != CellEmpty
}

// IsBlank reports whether every cell of the row is blank.
func (r Row) IsBlank() bool {
	for _, c := range r {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}

// Worksheet is a named, ordered sequence of rows.
type Worksheet struct {
	Name string
	Rows []Row
}

// Row returns row i, or nil when i is out of range.
func (w Worksheet) Row(i int) Row {
	if i < 0 || i >= len(w.Rows) {
		return nil
	}
	return w.Rows[i]
}
