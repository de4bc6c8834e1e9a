package models

import (
	"strconv"
	"strings"
)

// Comment is a cell note from a comments part.
type Comment struct {
	Ref    CellRef
	Author string
	Text   RichText
	// Shape is the legacy VML shape that renders the note, attached in the
	// second materialization pass.
	Shape *VMLShape
}

// VMLShape is a shape from a legacy vector-markup part. Row and Column are
// 0-based, as stored in x:ClientData.
type VMLShape struct {
	ID         string
	ObjectType string
	Row        int
	Column     int
	Visible    bool
	Anchor     string
	Text       string
}

// ShiftAnchor moves a VML client anchor ("LeftColumn, LeftOffset, TopRow,
// TopOffset, RightColumn, RightOffset, BottomRow, BottomOffset") by dCol
// columns and dRow rows. Anchors that do not have eight integer fields are
// returned unchanged.
func ShiftAnchor(anchor string, dCol, dRow int) string {
	if dCol == 0 && dRow == 0 {
		return anchor
	}
	fields := strings.Split(anchor, ",")
	if len(fields) != 8 {
		return anchor
	}
	n := make([]int, 8)
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return anchor
		}
		n[i] = v
	}
	n[0], n[4] = max(n[0]+dCol, 0), max(n[4]+dCol, 0)
	n[2], n[6] = max(n[2]+dRow, 0), max(n[6]+dRow, 0)
	out := make([]string, 8)
	for i, v := range n {
		out[i] = strconv.Itoa(v)
	}
	return strings.Join(out, ", ")
}
