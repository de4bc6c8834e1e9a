package parser

import (
	"strconv"
	"strings"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
	"github.com/xuri/excelize/v2"
)

// PrintAreas extracts print areas from the workbook defined names. Sheet
// scoped names resolve through sheetNames by local sheet id; workbook scoped
// ones through the sheet prefix of their reference. The result maps sheet
// name to its areas.
func PrintAreas(names []models.DefinedName, sheetNames []string) map[string][]models.PrintArea {
	result := make(map[string][]models.PrintArea)
	for _, dn := range names {
		if !dn.IsPrintArea() {
			continue
		}
		sheetName, areas := parsePrintAreaReference(dn.RefersTo)
		if dn.LocalSheetID != nil && *dn.LocalSheetID >= 0 && *dn.LocalSheetID < len(sheetNames) {
			sheetName = sheetNames[*dn.LocalSheetID]
		}
		if sheetName != "" && len(areas) > 0 {
			result[sheetName] = append(result[sheetName], areas...)
		}
	}
	return result
}

// parsePrintAreaReference parses a print area reference string.
// Format: 'SheetName'!$A$1:$D$10 or SheetName!$A$1:$D$10,SheetName!$F$1:$F$4
func parsePrintAreaReference(ref string) (string, []models.PrintArea) {
	var areas []models.PrintArea
	var sheetName string
	for _, part := range splitOutsideQuotes(strings.TrimPrefix(ref, "="), ',') {
		part = strings.TrimSpace(part)
		idx := strings.LastIndex(part, "!")
		if idx < 0 {
			continue
		}
		sheet := part[:idx]
		if strings.HasPrefix(sheet, "'") && strings.HasSuffix(sheet, "'") && len(sheet) >= 2 {
			sheet = strings.ReplaceAll(sheet[1:len(sheet)-1], "''", "'")
		}
		if sheetName == "" {
			sheetName = sheet
		}
		if area := parseRangeToArea(part[idx+1:]); area != nil {
			areas = append(areas, *area)
		}
	}
	return sheetName, areas
}

// splitOutsideQuotes splits s on sep, ignoring separators inside single
// quoted sheet names.
func splitOutsideQuotes(s string, sep byte) []string {
	var out []string
	quoted := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			quoted = !quoted
		case sep:
			if !quoted {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}

// parseRangeToArea parses a range string like $A$1:$D$10 to PrintArea.
// Whole-column ($A:$D) and whole-row ($1:$5) ranges span the sheet limits.
func parseRangeToArea(rangeStr string) *models.PrintArea {
	rangeStr = strings.ReplaceAll(rangeStr, "$", "")
	parts := strings.Split(rangeStr, ":")
	if len(parts) == 1 {
		parts = append(parts, parts[0])
	}
	if len(parts) != 2 {
		return nil
	}
	startCol, startRow, ok := parseAreaEndpoint(parts[0], true)
	if !ok {
		return nil
	}
	endCol, endRow, ok := parseAreaEndpoint(parts[1], false)
	if !ok {
		return nil
	}
	return &models.PrintArea{
		R1: startRow,
		C1: startCol,
		R2: endRow,
		C2: endCol,
	}
}

func parseAreaEndpoint(s string, start bool) (col, row int, ok bool) {
	if c, r, err := excelize.CellNameToCoordinates(s); err == nil {
		return c, r, true
	}
	if c, err := excelize.ColumnNameToNumber(s); err == nil {
		if start {
			return c, 1, true
		}
		return c, excelize.TotalRows, true
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= excelize.TotalRows {
		if start {
			return 1, n, true
		}
		return excelize.MaxColumns, n, true
	}
	return 0, 0, false
}
