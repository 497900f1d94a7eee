package parser

import (
	"math"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/cdtire-go/pkg/cdtire/models"
)

// Audit column headers appended to the first row of a filled template.
const (
	OriginalPHeader = "Original P Values"
	OriginalLHeader = "Original L Values"
)

var (
	pPlaceholder = regexp.MustCompile(`^P[1-3]$`)
	lPlaceholder = regexp.MustCompile(`^L[1-5]$`)
)

// Replacements holds the operator values substituted into a protocol
// template. An empty load leaves its placeholder in place; VEL and P1 are
// always replaced, and IA or SR without a leading number render as NaN.
type Replacements struct {
	P1    string
	Loads [5]string
	Vel   string
	IA    string
	SR    string
}

// lookup returns the replacement for an exact placeholder, if non-empty.
func (r Replacements) lookup(placeholder string) (string, bool) {
	var v string
	switch placeholder {
	case "P1":
		v = r.P1
	case "L1", "L2", "L3", "L4", "L5":
		v = r.Loads[placeholder[1]-'1']
	case "VEL":
		v = r.Vel
	case "SR":
		v = r.SR
	case "IA":
		v = r.IA
	}
	v = models.TrimSpace(v)
	return v, v != ""
}

// FillTemplate substitutes operator values into every sheet of a protocol
// template and appends two audit columns listing the P and L placeholders
// each row originally held. The input sheets are not modified.
func FillTemplate(sheets []models.Worksheet, r Replacements) []models.Worksheet {
	out := make([]models.Worksheet, len(sheets))
	for i, ws := range sheets {
		filled := models.Worksheet{Name: ws.Name, Rows: make([]models.Row, len(ws.Rows))}
		for rowIdx, row := range ws.Rows {
			filled.Rows[rowIdx] = fillRow(row, rowIdx == 0, r)
		}
		out[i] = filled
	}
	return out
}

func fillRow(row models.Row, first bool, r Replacements) models.Row {
	var origP, origL []string
	modified := make(models.Row, len(row))
	for i, c := range row {
		if isUnset(c) || (c.Kind == models.CellNumber && c.Number == 0) {
			modified[i] = c
			continue
		}
		s := models.TrimSpace(c.String())
		lower := strings.ToLower(s)

		if pPlaceholder.MatchString(s) || lower == "ipref" {
			origP = append(origP, s)
		}
		if lPlaceholder.MatchString(s) {
			origL = append(origL, s)
		}

		switch {
		case lower == "vel":
			modified[i] = models.Text(models.TrimSpace(r.Vel))
		case s == "IA" || s == "-IA":
			modified[i] = models.Text(signedValue(r.IA, s[0] == '-'))
		case s == "SR" || s == "-SR":
			modified[i] = models.Text(signedValue(r.SR, s[0] == '-'))
		case lower == "p1" || lower == "ipref":
			modified[i] = models.Text(models.TrimSpace(r.P1))
		default:
			if v, ok := r.lookup(s); ok {
				modified[i] = models.Text(v)
			} else {
				modified[i] = c
			}
		}
	}

	last := len(modified) - 1
	for last >= 0 && isUnset(modified[last]) {
		last--
	}
	extended := make(models.Row, max(len(modified), last+3))
	copy(extended, modified)
	if first {
		extended[last+1] = models.Text(OriginalPHeader)
		extended[last+2] = models.Text(OriginalLHeader)
	} else {
		extended[last+1] = models.Text(strings.Join(origP, ", "))
		extended[last+2] = models.Text(strings.Join(origL, ", "))
	}
	return extended
}

// isUnset reports whether a cell holds nothing at all: empty, or the empty
// string. Whitespace and zero still count as data.
func isUnset(c models.Cell) bool {
	return c.IsEmpty() || (c.Kind == models.CellText && c.Text == "")
}

// signedValue parses the leading number of v and renders it, forcing a
// negative sign when neg is set. Unparseable input renders as NaN.
func signedValue(v string, neg bool) string {
	f := parseLeadingFloat(models.TrimSpace(v))
	if neg {
		f = -math.Abs(f)
	}
	return models.FormatNumber(f)
}

// WriteWorkbook renders worksheets into a new workbook, preserving sheet
// order and names. Empty cells are left unset.
func WriteWorkbook(sheets []models.Worksheet) (*excelize.File, error) {
	f := excelize.NewFile()
	for i, ws := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), ws.Name); err != nil {
				f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(ws.Name); err != nil {
			f.Close()
			return nil, err
		}
		for rowIdx, row := range ws.Rows {
			for colIdx, c := range row {
				if isUnset(c) {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
				if err != nil {
					f.Close()
					return nil, err
				}
				var v interface{} = c.Text
				if c.Kind == models.CellNumber {
					v = c.Number
				}
				if err := f.SetCellValue(ws.Name, cell, v); err != nil {
					f.Close()
					return nil, err
				}
			}
		}
	}
	return f, nil
}
