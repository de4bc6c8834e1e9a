// Package formula rewrites cell references inside formulas when rows or
// columns are inserted into or removed from a sheet.
package formula

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Axis selects the dimension a structural edit applies to.
type Axis int

const (
	// Rows edits row indexes.
	Rows Axis = iota
	// Columns edits column indexes.
	Columns
)

func (a Axis) String() string {
	if a == Columns {
		return "columns"
	}
	return "rows"
}

// Limit returns the largest valid 1-based index on the axis.
func (a Axis) Limit() int {
	if a == Columns {
		return excelize.MaxColumns
	}
	return excelize.TotalRows
}

// Edit describes Count rows or columns inserted or removed at the 1-based
// index At.
type Edit struct {
	Axis  Axis
	At    int
	Count int
}

// Validate reports an edit that cannot be applied.
func (e Edit) Validate() error {
	if e.At < 1 || e.At > e.Axis.Limit() {
		return fmt.Errorf("%s index %d out of range", e.Axis, e.At)
	}
	if e.Count < 1 {
		return fmt.Errorf("%s count %d must be positive", e.Axis, e.Count)
	}
	return nil
}

// InsertIndex maps index i across an insertion. ok is false when the shifted
// index falls past the sheet limit.
func (e Edit) InsertIndex(i int) (int, bool) {
	if i >= e.At {
		i += e.Count
	}
	return i, i <= e.Axis.Limit()
}

// RemoveIndex maps index i across a removal. ok is false when i lies inside
// the removed band.
func (e Edit) RemoveIndex(i int) (int, bool) {
	switch {
	case i < e.At:
		return i, true
	case i >= e.At+e.Count:
		return i - e.Count, true
	}
	return 0, false
}

// InsertSpan maps the inclusive span [lo, hi] across an insertion.
func (e Edit) InsertSpan(lo, hi int) (int, int, bool) {
	nlo, ok1 := e.InsertIndex(lo)
	nhi, ok2 := e.InsertIndex(hi)
	return nlo, nhi, ok1 && ok2
}

// RemoveSpan maps the inclusive span [lo, hi] across a removal. An endpoint
// inside the band collapses to the surviving edge; a span wholly inside the
// band is lost.
func (e Edit) RemoveSpan(lo, hi int) (int, int, bool) {
	end := e.At + e.Count
	nlo, nhi := lo, hi
	switch {
	case lo >= end:
		nlo = lo - e.Count
	case lo >= e.At:
		nlo = e.At
	}
	switch {
	case hi >= end:
		nhi = hi - e.Count
	case hi >= e.At:
		nhi = e.At - 1
	}
	if nlo > nhi {
		return 0, 0, false
	}
	return nlo, nhi, true
}
