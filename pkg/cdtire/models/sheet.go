package models

// SheetResult holds the extraction outcome for a single sheet.
type SheetResult struct {
	// Name is the sheet name.
	Name string `json:"name"`
	// UsedRange is the A1 range spanning the non-blank cells, "" for a
	// blank sheet.
	UsedRange string `json:"used_range,omitempty"`
	// HeaderRow is the 0-based index of the detected header row, counted
	// from the first row of the used range.
	HeaderRow int `json:"header_row"`
	// HeaderMethod records which heuristic chose the header row.
	HeaderMethod string `json:"header_method"`
	// Columns is the resolved column assignment.
	Columns ColumnAssignment `json:"columns"`
	// Records contains one entry per accepted run.
	Records []Record `json:"records"`
	// Duplicates counts rows skipped because their run id was already used.
	Duplicates int `json:"duplicates,omitempty"`
}
