package cdtire

import (
	"bytes"
	"errors"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/cdtire-go/pkg/cdtire/parser"
)

// FillTemplate reads a protocol template workbook from r, substitutes the
// operator values and writes the filled xlsx to w.
func FillTemplate(r io.Reader, w io.Writer, repl parser.Replacements) error {
	src, err := excelize.OpenReader(r)
	if err != nil {
		return NewExtractionError("", "open", errors.Join(ErrInvalidFormat, err))
	}
	defer src.Close()

	sheets, err := parser.ReadSheets(src)
	if err != nil {
		return NewExtractionError("", "cells", err)
	}

	out, err := parser.WriteWorkbook(parser.FillTemplate(sheets, repl))
	if err != nil {
		return NewExtractionError("", "template", err)
	}
	defer out.Close()

	if _, err := out.WriteTo(w); err != nil {
		return NewExtractionError("", "write", err)
	}
	return nil
}

// FillTemplateBytes is FillTemplate over in-memory workbooks.
func FillTemplateBytes(template []byte, repl parser.Replacements) ([]byte, error) {
	var buf bytes.Buffer
	if err := FillTemplate(bytes.NewReader(template), &buf, repl); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
