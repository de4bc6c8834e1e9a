package parser

import (
	"fmt"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
	"github.com/xuri/excelize/v2"
)

// TableDetectionParams holds parameters for table detection.
type TableDetectionParams struct {
	DensityMin       float64
	MinNonemptyCells int
}

// DefaultTableParams returns default table detection parameters.
func DefaultTableParams() TableDetectionParams {
	return TableDetectionParams{
		DensityMin:       0.04,
		MinNonemptyCells: 3,
	}
}

// DetectTables detects table-like regions in a worksheet.
// Returns a list of cell ranges (e.g., "A1:D10") that likely represent tables.
func DetectTables(ws *models.Worksheet, params TableDetectionParams) []string {
	minRow, maxRow, minCol, maxCol := findDataBounds(ws)
	if minRow < 0 {
		return nil
	}
	totalCells := (maxRow - minRow + 1) * (maxCol - minCol + 1)
	nonEmptyCells := countNonEmptyCells(ws)
	if nonEmptyCells < params.MinNonemptyCells {
		return nil
	}
	density := float64(nonEmptyCells) / float64(totalCells)
	if density < params.DensityMin {
		return nil
	}
	startCell, _ := excelize.CoordinatesToCellName(minCol, minRow)
	endCell, _ := excelize.CoordinatesToCellName(maxCol, maxRow)
	return []string{fmt.Sprintf("%s:%s", startCell, endCell)}
}

// findDataBounds finds the bounding box (1-based) of cells with a visible
// value; minRow is -1 when there are none.
func findDataBounds(ws *models.Worksheet) (minRow, maxRow, minCol, maxCol int) {
	minRow, maxRow = -1, -1
	minCol, maxCol = -1, -1
	for _, c := range ws.Cells() {
		if c.Value.DisplayValue() == "" {
			continue
		}
		r, col := c.Ref.Row, c.Ref.Col
		if minRow < 0 || r < minRow {
			minRow = r
		}
		if maxRow < 0 || r > maxRow {
			maxRow = r
		}
		if minCol < 0 || col < minCol {
			minCol = col
		}
		if maxCol < 0 || col > maxCol {
			maxCol = col
		}
	}
	return
}

// countNonEmptyCells counts cells with a visible value.
func countNonEmptyCells(ws *models.Worksheet) int {
	count := 0
	for _, c := range ws.Cells() {
		if c.Value.DisplayValue() != "" {
			count++
		}
	}
	return count
}
