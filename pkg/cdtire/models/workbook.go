package models

// WorkbookData represents the workbook-level extraction result.
type WorkbookData struct {
	// BookName is the workbook file name (no path).
	BookName string `json:"book_name"`
	// Sheets holds per-sheet results in workbook order.
	Sheets []SheetResult `json:"sheets"`
}

// Records concatenates the records of every sheet in workbook order.
func (w *WorkbookData) Records() []Record {
	var out []Record
	for _, s := range w.Sheets {
		out = append(out, s.Records...)
	}
	return out
}
