// Package output serializes extraction results.
package output

import (
	"encoding/json"

	"github.com/ukaji3/cdtire-go/pkg/cdtire/models"
)

// Payload is the body of the structured-data storage request.
type Payload struct {
	Data []models.Record `json:"data"`
}

// RecordsPayload wraps records for the storage request. A nil slice is
// encoded as an empty array.
func RecordsPayload(records []models.Record) Payload {
	if records == nil {
		records = []models.Record{}
	}
	return Payload{Data: records}
}

// ToJSON serializes a workbook result.
func ToJSON(wb *models.WorkbookData, pretty bool) ([]byte, error) {
	return marshal(wb, pretty)
}

// RecordsToJSON serializes the flattened records of a workbook as a
// storage payload.
func RecordsToJSON(wb *models.WorkbookData, pretty bool) ([]byte, error) {
	return marshal(RecordsPayload(wb.Records()), pretty)
}

// SheetToJSON serializes a single sheet result.
func SheetToJSON(sheet *models.SheetResult, pretty bool) ([]byte, error) {
	return marshal(sheet, pretty)
}

func marshal(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
