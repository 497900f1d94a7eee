package parser

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/cdtire-go/pkg/cdtire/models"
)

// ReadSheets reads every sheet of the workbook, in workbook order, as typed
// worksheets.
func ReadSheets(f *excelize.File) ([]models.Worksheet, error) {
	var sheets []models.Worksheet
	for _, name := range f.GetSheetList() {
		ws, err := ReadSheet(f, name)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, ws)
	}
	return sheets, nil
}

// ReadSheet reads one sheet using raw cell values. Numeric values become
// Number cells unless the cell is stored as a string; booleans become the
// text "true" or "false".
func ReadSheet(f *excelize.File, sheetName string) (models.Worksheet, error) {
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return models.Worksheet{}, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}

	ws := models.Worksheet{Name: sheetName, Rows: make([]models.Row, len(rows))}
	for rowIdx, row := range rows {
		cells := make(models.Row, len(row))
		for colIdx, raw := range row {
			if raw == "" {
				continue
			}
			cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return models.Worksheet{}, err
			}
			cells[colIdx] = parseCell(raw, func() excelize.CellType {
				typ, err := f.GetCellType(sheetName, cellName)
				if err != nil {
					return excelize.CellTypeUnset
				}
				return typ
			})
		}
		ws.Rows[rowIdx] = cells
	}
	return ws, nil
}

// parseCell converts a raw cell value to a typed cell. typeOf is consulted
// only for raw values that parse as finite numbers, the only ones whose
// cell type changes the result.
func parseCell(raw string, typeOf func() excelize.CellType) models.Cell {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || !isFinite(f) {
		return models.Text(raw)
	}
	switch typeOf() {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return models.Text(raw)
	case excelize.CellTypeBool:
		if raw == "1" {
			return models.Text("true")
		}
		return models.Text("false")
	}
	return models.Number(f)
}
