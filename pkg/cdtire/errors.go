package cdtire

import (
	"errors"
	"fmt"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidFormat indicates the input is not a readable xlsx workbook.
var ErrInvalidFormat = errors.New("invalid xlsx format")

// ErrNoValidData indicates no sheet of the workbook produced a record.
var ErrNoValidData = errors.New("no valid data found in excel file")

// NoValidDataMessage is shown to the operator when ErrNoValidData ends a run.
const NoValidDataMessage = "No valid data found in Excel file"

// ExtractionError represents an error during extraction.
type ExtractionError struct {
	SheetName string
	Component string // "open", "cells", "template", "write"
	Err       error
}

func (e *ExtractionError) Error() string {
	if e.SheetName == "" {
		return fmt.Sprintf("extraction error (%s): %v", e.Component, e.Err)
	}
	return fmt.Sprintf("extraction error in sheet %q (%s): %v", e.SheetName, e.Component, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError creates a new ExtractionError.
func NewExtractionError(sheetName, component string, err error) *ExtractionError {
	return &ExtractionError{
		SheetName: sheetName,
		Component: component,
		Err:       err,
	}
}
