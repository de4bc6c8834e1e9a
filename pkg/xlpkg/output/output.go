// Package output serializes extracted workbook data as JSON.
package output

import (
	"github.com/goccy/go-json"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
)

// ToJSON serializes a workbook export.
func ToJSON(wb *models.WorkbookData, pretty bool) ([]byte, error) {
	return marshal(wb, pretty)
}

// SheetToJSON serializes a single sheet export.
func SheetToJSON(sheet *models.SheetData, pretty bool) ([]byte, error) {
	return marshal(sheet, pretty)
}

// PrintAreaViewToJSON serializes a print area view.
func PrintAreaViewToJSON(view *models.PrintAreaView, pretty bool) ([]byte, error) {
	return marshal(view, pretty)
}

// InfoToJSON serializes any summary value, such as the package report of
// the info command.
func InfoToJSON(v any, pretty bool) ([]byte, error) {
	return marshal(v, pretty)
}

func marshal(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
