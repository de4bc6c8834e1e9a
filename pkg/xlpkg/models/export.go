package models

// CellRow represents a single row of cells with optional hyperlinks.
type CellRow struct {
	// R is the row index (1-based).
	R int `json:"r"`
	// C maps column index (string) to cell value.
	C map[string]interface{} `json:"c"`
	// F maps column index to the formula of formula cells.
	F map[string]string `json:"f,omitempty"`
	// Links maps column index to hyperlink URL (optional).
	Links map[string]string `json:"links,omitempty"`
}

// CommentData is the exported form of a cell note.
type CommentData struct {
	Cell   string `json:"cell"`
	Author string `json:"author,omitempty"`
	Text   string `json:"text"`
	Shape  string `json:"shape,omitempty"`
}

// SheetData represents structured data for a single sheet.
type SheetData struct {
	// Dimension is the used range, e.g. "A1:D10".
	Dimension string `json:"dimension,omitempty"`
	// Rows contains extracted rows with cell values and links.
	Rows []CellRow `json:"rows,omitempty"`
	// MergeCells lists the merged ranges.
	MergeCells []string `json:"merge_cells,omitempty"`
	// Shapes contains shapes detected on the sheet.
	Shapes []Shape `json:"shapes,omitempty"`
	// Charts contains charts detected on the sheet.
	Charts []Chart `json:"charts,omitempty"`
	// Comments contains the cell notes.
	Comments []CommentData `json:"comments,omitempty"`
	// TableCandidates contains cell ranges likely representing tables.
	TableCandidates []string `json:"table_candidates,omitempty"`
	// PrintAreas contains user-defined print areas.
	PrintAreas []PrintArea `json:"print_areas,omitempty"`
}

// WorkbookData represents workbook-level container with per-sheet data.
type WorkbookData struct {
	// BookName is the workbook file name (no path).
	BookName string `json:"book_name"`
	// SheetOrder lists sheet names in workbook order.
	SheetOrder []string `json:"sheet_order"`
	// Sheets maps sheet name to SheetData.
	Sheets map[string]SheetData `json:"sheets"`
	// DefinedNames lists the workbook defined names.
	DefinedNames []DefinedName `json:"defined_names,omitempty"`
}

// PrintAreaView represents a slice of a sheet restricted to a print area.
type PrintAreaView struct {
	// BookName is the workbook name owning the area.
	BookName string `json:"book_name"`
	// SheetName is the sheet name owning the area.
	SheetName string `json:"sheet_name"`
	// Area is the print area bounds.
	Area PrintArea `json:"area"`
	// Rows contains rows within the area bounds.
	Rows []CellRow `json:"rows,omitempty"`
	// Shapes contains shapes anchored inside the area.
	Shapes []Shape `json:"shapes,omitempty"`
	// Charts contains charts anchored inside the area.
	Charts []Chart `json:"charts,omitempty"`
}
