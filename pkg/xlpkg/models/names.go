package models

import "strings"

// PrintAreaName is the reserved defined name holding a sheet's print area.
const PrintAreaName = "_xlnm.Print_Area"

// DefinedName is a workbook or sheet scoped name.
type DefinedName struct {
	Name string `json:"name"`
	// LocalSheetID is the 0-based sheet index of a sheet scoped name.
	LocalSheetID *int   `json:"local_sheet_id,omitempty"`
	RefersTo     string `json:"refers_to"`
	Hidden       bool   `json:"hidden,omitempty"`
	Comment      string `json:"comment,omitempty"`
}

// IsPrintArea reports whether the name is a print area.
func (d DefinedName) IsPrintArea() bool {
	return strings.EqualFold(d.Name, PrintAreaName)
}

// PrintArea represents cell coordinate bounds for a print area.
type PrintArea struct {
	// R1 is the start row (1-based).
	R1 int `json:"r1"`
	// C1 is the start column (1-based).
	C1 int `json:"c1"`
	// R2 is the end row (1-based, inclusive).
	R2 int `json:"r2"`
	// C2 is the end column (1-based, inclusive).
	C2 int `json:"c2"`
}

// Contains reports whether ref lies inside the area.
func (a PrintArea) Contains(ref CellRef) bool {
	return ref.Row >= a.R1 && ref.Row <= a.R2 && ref.Col >= a.C1 && ref.Col <= a.C2
}
