package parser

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/cdtire-go/pkg/cdtire/models"
)

func TestReadSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"
	f.SetCellValue(sheetName, "A1", "No of Tests")
	f.SetCellValue(sheetName, "B1", "P1")
	f.SetCellValue(sheetName, "A2", 1)
	f.SetCellValue(sheetName, "B2", 200.5)
	f.SetCellValue(sheetName, "C2", "5.5")
	f.SetCellValue(sheetName, "D2", true)
	f.SetCellValue(sheetName, "B4", "tail")

	tmpFile := filepath.Join(t.TempDir(), "test.xlsx")
	if err := f.SaveAs(tmpFile); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}

	f2, err := excelize.OpenFile(tmpFile)
	if err != nil {
		t.Fatalf("Failed to open test file: %v", err)
	}
	defer f2.Close()

	ws, err := ReadSheet(f2, sheetName)
	if err != nil {
		t.Fatalf("ReadSheet failed: %v", err)
	}

	if ws.Name != sheetName {
		t.Errorf("Expected sheet name %q, got %q", sheetName, ws.Name)
	}
	if len(ws.Rows) != 4 {
		t.Fatalf("Expected 4 rows, got %d", len(ws.Rows))
	}
	if got := ws.Rows[0].At(0); got != models.Text("No of Tests") {
		t.Errorf("Expected text header, got %#v", got)
	}
	if got := ws.Rows[1].At(0); got != models.Number(1) {
		t.Errorf("Expected Number(1), got %#v", got)
	}
	if got := ws.Rows[1].At(1); got != models.Number(200.5) {
		t.Errorf("Expected Number(200.5), got %#v", got)
	}
	// Numeric-looking strings stay text.
	if got := ws.Rows[1].At(2); got != models.Text("5.5") {
		t.Errorf("Expected Text(5.5), got %#v", got)
	}
	if got := ws.Rows[1].At(3); got != models.Text("true") {
		t.Errorf("Expected Text(true), got %#v", got)
	}
	if !ws.Rows[2].IsBlank() {
		t.Errorf("Expected row 3 to be blank, got %#v", ws.Rows[2])
	}
	if got := ws.Rows[3].At(0); !got.IsEmpty() {
		t.Errorf("Expected leading gap to be empty, got %#v", got)
	}
}

func TestReadSheets_Order(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", "Matrix")
	f.NewSheet("Extra")
	f.SetCellValue("Extra", "A1", "x")

	sheets, err := ReadSheets(f)
	if err != nil {
		t.Fatalf("ReadSheets failed: %v", err)
	}
	if len(sheets) != 2 || sheets[0].Name != "Matrix" || sheets[1].Name != "Extra" {
		t.Errorf("Unexpected sheets: %+v", sheets)
	}
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		raw      string
		typ      excelize.CellType
		expected models.Cell
	}{
		{"123", excelize.CellTypeUnset, models.Number(123)},
		{"123.45", excelize.CellTypeNumber, models.Number(123.45)},
		{"-100", excelize.CellTypeUnset, models.Number(-100)},
		{"123", excelize.CellTypeSharedString, models.Text("123")},
		{"hello", excelize.CellTypeUnset, models.Text("hello")},
		{"1", excelize.CellTypeBool, models.Text("true")},
		{"0", excelize.CellTypeBool, models.Text("false")},
		{"inf", excelize.CellTypeUnset, models.Text("inf")},
	}

	for _, tt := range tests {
		result := parseCell(tt.raw, func() excelize.CellType { return tt.typ })
		if result != tt.expected {
			t.Errorf("parseCell(%q, %v) = %#v, expected %#v", tt.raw, tt.typ, result, tt.expected)
		}
	}
}

func TestParseCell_TypeLookedUpOnlyForNumbers(t *testing.T) {
	lookups := 0
	typeOf := func() excelize.CellType {
		lookups++
		return excelize.CellTypeNumber
	}

	for _, raw := range []string{"Test Name", "P1", "1,5", "NaN", "inf"} {
		if got := parseCell(raw, typeOf); got != models.Text(raw) {
			t.Errorf("parseCell(%q) = %#v, expected text", raw, got)
		}
	}
	if lookups != 0 {
		t.Errorf("Expected no type lookups for text, got %d", lookups)
	}

	if got := parseCell("2.4", typeOf); got != models.Number(2.4) {
		t.Errorf("parseCell(2.4) = %#v, expected Number(2.4)", got)
	}
	if lookups != 1 {
		t.Errorf("Expected one type lookup, got %d", lookups)
	}
}
