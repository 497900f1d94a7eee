package cdtire

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/cdtire-go/pkg/cdtire/logging"
	"github.com/ukaji3/cdtire-go/pkg/cdtire/models"
	"github.com/ukaji3/cdtire-go/pkg/cdtire/parser"
)

// Extract extracts test-run records from every sheet of an xlsx file.
func Extract(path string, opts Options) (*models.WorkbookData, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, NewExtractionError("", "open", ErrFileNotFound)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, NewExtractionError("", "open", errors.Join(ErrInvalidFormat, err))
	}
	defer f.Close()

	return extractFile(f, filepath.Base(path), opts)
}

// ExtractReader is Extract for workbook bytes, such as a file downloaded
// from the backend.
func ExtractReader(r io.Reader, bookName string, opts Options) (*models.WorkbookData, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, NewExtractionError("", "open", errors.Join(ErrInvalidFormat, err))
	}
	defer f.Close()

	return extractFile(f, bookName, opts)
}

func extractFile(f *excelize.File, bookName string, opts Options) (*models.WorkbookData, error) {
	sheets, err := parser.ReadSheets(f)
	if err != nil {
		return nil, NewExtractionError("", "cells", err)
	}
	return ExtractWorkbook(bookName, sheets, opts)
}

// ExtractWorkbook runs header detection, column mapping and row extraction
// on each worksheet independently, after trimming leading empty rows. It returns ErrNoValidData when no sheet
// yields a record, unless opts.AllowEmpty is set.
func ExtractWorkbook(bookName string, sheets []models.Worksheet, opts Options) (*models.WorkbookData, error) {
	p := opts.params()
	wb := &models.WorkbookData{BookName: bookName}
	total := 0

	for _, ws := range sheets {
		var usedRange string
		if b, ok := parser.DataBounds(ws); ok {
			usedRange = b.Range()
		}

		ws = parser.TrimToUsedRange(ws)
		header := parser.LocateHeader(ws, p)
		cols := parser.MapColumns(ws, header.Index, p)
		records, dups := parser.ExtractRecords(ws, header.Index, cols)

		logging.Logger().Info("sheet extracted",
			slog.String("sheet", ws.Name),
			slog.String("range", usedRange),
			slog.Int("header_row", header.Index),
			slog.String("header_method", string(header.Method)),
			slog.Int("records", len(records)),
			slog.Int("duplicates", dups))

		wb.Sheets = append(wb.Sheets, models.SheetResult{
			Name:         ws.Name,
			UsedRange:    usedRange,
			HeaderRow:    header.Index,
			HeaderMethod: string(header.Method),
			Columns:      cols,
			Records:      records,
			Duplicates:   dups,
		})
		total += len(records)
	}

	if total == 0 && !opts.AllowEmpty {
		return wb, ErrNoValidData
	}
	return wb, nil
}
