package parser

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/cdtire-go/pkg/cdtire/models"
)

// Bounds is the bounding box of the non-blank cells of a worksheet, as
// 0-based inclusive indexes.
type Bounds struct {
	MinRow, MaxRow int
	MinCol, MaxCol int
	// Cells counts the non-blank cells inside the box.
	Cells int
}

// DataBounds finds the bounding box of non-blank cells. ok is false when
// the worksheet has none.
func DataBounds(ws models.Worksheet) (b Bounds, ok bool) {
	b = Bounds{MinRow: -1, MaxRow: -1, MinCol: -1, MaxCol: -1}
	for rowIdx, row := range ws.Rows {
		for colIdx, cell := range row {
			if cell.IsBlank() {
				continue
			}
			b.Cells++
			if b.MinRow < 0 {
				b.MinRow = rowIdx
			}
			b.MaxRow = rowIdx
			if b.MinCol < 0 || colIdx < b.MinCol {
				b.MinCol = colIdx
			}
			if colIdx > b.MaxCol {
				b.MaxCol = colIdx
			}
		}
	}
	return b, b.Cells > 0
}

// TrimToUsedRange drops the rows above the first row holding a non-empty
// cell, so row indexes count from the top of the used range. Whitespace-only
// text counts as content here.
func TrimToUsedRange(ws models.Worksheet) models.Worksheet {
	for i, row := range ws.Rows {
		for _, c := range row {
			if c.IsEmpty() {
				continue
			}
			if i == 0 {
				return ws
			}
			return models.Worksheet{Name: ws.Name, Rows: ws.Rows[i:]}
		}
	}
	return ws
}

// Range renders the bounds in A1 notation, e.g. "B2:F40".
func (b Bounds) Range() string {
	start, err := excelize.CoordinatesToCellName(b.MinCol+1, b.MinRow+1)
	if err != nil {
		return ""
	}
	end, err := excelize.CoordinatesToCellName(b.MaxCol+1, b.MaxRow+1)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s:%s", start, end)
}

// Density is the share of cells inside the box that are non-blank.
func (b Bounds) Density() float64 {
	total := (b.MaxRow - b.MinRow + 1) * (b.MaxCol - b.MinCol + 1)
	if total <= 0 {
		return 0
	}
	return float64(b.Cells) / float64(total)
}
