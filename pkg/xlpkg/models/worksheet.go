package models

import (
	"sort"
	"strings"

	"github.com/tiendc/go-deepcopy"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/opc"
	"github.com/xuri/excelize/v2"
)

// CellRef is a 1-based cell coordinate.
type CellRef struct {
	Col int
	Row int
}

// ParseCellRef parses an A1-style reference, ignoring "$" anchors.
func ParseCellRef(s string) (CellRef, error) {
	col, row, err := excelize.CellNameToCoordinates(strings.ReplaceAll(s, "$", ""))
	if err != nil {
		return CellRef{}, err
	}
	return CellRef{Col: col, Row: row}, nil
}

// String returns the A1-style name of the reference.
func (r CellRef) String() string {
	name, err := excelize.CoordinatesToCellName(r.Col, r.Row)
	if err != nil {
		return ""
	}
	return name
}

// Less orders references row-major.
func (r CellRef) Less(o CellRef) bool {
	if r.Row != o.Row {
		return r.Row < o.Row
	}
	return r.Col < o.Col
}

// Cell is one populated cell of a worksheet.
type Cell struct {
	Ref        CellRef
	StyleIndex int
	Value      *CellValue
}

// Row carries the row-level attributes of a worksheet row.
type Row struct {
	Index        int
	Height       float64
	CustomHeight bool
	Hidden       bool
	StyleIndex   int
	CustomFormat bool
}

// Column carries the attributes of a span of columns.
type Column struct {
	Min         int
	Max         int
	Width       float64
	CustomWidth bool
	Hidden      bool
	StyleIndex  int
}

// Fragment is the verbatim XML of one worksheet child element.
type Fragment struct {
	Name string
	XML  []byte
}

// Worksheet is the materialized model of a sheet body.
type Worksheet struct {
	cells map[CellRef]*Cell
	rows  map[int]*Row

	Columns          []Column
	MergeCells       []string
	DefaultRowHeight float64

	Comments     []Comment
	Drawing      *Drawing
	FormControls []VMLShape

	// DrawingRelID and LegacyDrawingRelID are the r:id values of the
	// <drawing> and <legacyDrawing> elements.
	DrawingRelID       string
	LegacyDrawingRelID string

	// Namespaces are the root namespace declarations of the source part.
	Namespaces []Attr
	// Extra holds top-level worksheet elements the model does not interpret,
	// in document order.
	Extra []Fragment

	// Rels is the sheet's own relationship table.
	Rels *opc.Relationships
	// Parts holds auxiliary parts (drawings, charts, VML, media) by part name,
	// carried through to the writer.
	Parts map[string][]byte
}

// NewWorksheet returns an empty worksheet.
func NewWorksheet() *Worksheet {
	return &Worksheet{
		cells: make(map[CellRef]*Cell),
		rows:  make(map[int]*Row),
		Parts: make(map[string][]byte),
	}
}

// Cell returns the cell at ref, or nil.
func (w *Worksheet) Cell(ref CellRef) *Cell {
	return w.cells[ref]
}

// CellByName returns the cell at an A1 reference, or nil.
func (w *Worksheet) CellByName(name string) *Cell {
	ref, err := ParseCellRef(name)
	if err != nil {
		return nil
	}
	return w.cells[ref]
}

// EnsureCell returns the cell at ref, creating an empty one if needed.
func (w *Worksheet) EnsureCell(ref CellRef) *Cell {
	if c, ok := w.cells[ref]; ok {
		return c
	}
	c := &Cell{Ref: ref, Value: &CellValue{}}
	w.cells[ref] = c
	return c
}

// PutCell stores c at its reference, replacing any previous cell.
func (w *Worksheet) PutCell(c *Cell) {
	if c.Value == nil {
		c.Value = &CellValue{}
	}
	w.cells[c.Ref] = c
}

// RemoveCell deletes the cell at ref.
func (w *Worksheet) RemoveCell(ref CellRef) {
	delete(w.cells, ref)
}

// CellCount returns the number of populated cells.
func (w *Worksheet) CellCount() int {
	return len(w.cells)
}

// Cells returns every cell in row-major order.
func (w *Worksheet) Cells() []*Cell {
	out := make([]*Cell, 0, len(w.cells))
	for _, c := range w.cells {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref.Less(out[j].Ref) })
	return out
}

// Row returns the row attributes at index, or nil.
func (w *Worksheet) Row(index int) *Row {
	return w.rows[index]
}

// EnsureRow returns the row at index, creating it if needed.
func (w *Worksheet) EnsureRow(index int) *Row {
	if r, ok := w.rows[index]; ok {
		return r
	}
	r := &Row{Index: index}
	w.rows[index] = r
	return r
}

// Rows returns every row that has attributes or cells, ascending.
func (w *Worksheet) Rows() []int {
	seen := make(map[int]bool, len(w.rows))
	for i := range w.rows {
		seen[i] = true
	}
	for ref := range w.cells {
		seen[ref.Row] = true
	}
	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// CommentAt returns the comment anchored at ref, or nil.
func (w *Worksheet) CommentAt(ref CellRef) *Comment {
	for i := range w.Comments {
		if w.Comments[i].Ref == ref {
			return &w.Comments[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the worksheet.
func (w *Worksheet) Clone() (*Worksheet, error) {
	out := NewWorksheet()
	for ref, c := range w.cells {
		out.cells[ref] = &Cell{Ref: c.Ref, StyleIndex: c.StyleIndex, Value: c.Value.Clone()}
	}
	for i, r := range w.rows {
		row := *r
		out.rows[i] = &row
	}
	out.DefaultRowHeight = w.DefaultRowHeight
	if err := deepcopy.Copy(&out.Columns, w.Columns); err != nil {
		return nil, err
	}
	if err := deepcopy.Copy(&out.MergeCells, w.MergeCells); err != nil {
		return nil, err
	}
	if err := deepcopy.Copy(&out.Comments, w.Comments); err != nil {
		return nil, err
	}
	if err := deepcopy.Copy(&out.FormControls, w.FormControls); err != nil {
		return nil, err
	}
	out.DrawingRelID, out.LegacyDrawingRelID = w.DrawingRelID, w.LegacyDrawingRelID
	out.Namespaces = append([]Attr(nil), w.Namespaces...)
	if err := deepcopy.Copy(&out.Extra, w.Extra); err != nil {
		return nil, err
	}
	if w.Drawing != nil {
		var d Drawing
		if err := deepcopy.Copy(&d, *w.Drawing); err != nil {
			return nil, err
		}
		out.Drawing = &d
	}
	for name, data := range w.Parts {
		out.Parts[name] = append([]byte(nil), data...)
	}
	if w.Rels != nil {
		out.Rels = opc.NewRelationships(w.Rels.Source)
		for _, rel := range w.Rels.List() {
			out.Rels.Put(rel)
		}
	}
	return out, nil
}

// Dimension returns the bounding range of populated cells, or false for an
// empty sheet.
func (w *Worksheet) Dimension() (first, last CellRef, ok bool) {
	for ref := range w.cells {
		if !ok {
			first, last, ok = ref, ref, true
			continue
		}
		first.Row = min(first.Row, ref.Row)
		first.Col = min(first.Col, ref.Col)
		last.Row = max(last.Row, ref.Row)
		last.Col = max(last.Col, ref.Col)
	}
	return first, last, ok
}

// RemapCells moves every cell and comment through fn. Entries for which fn
// reports false are dropped.
func (w *Worksheet) RemapCells(fn func(CellRef) (CellRef, bool)) {
	cells := make(map[CellRef]*Cell, len(w.cells))
	for ref, c := range w.cells {
		to, ok := fn(ref)
		if !ok {
			continue
		}
		c.Ref = to
		cells[to] = c
	}
	w.cells = cells

	comments := w.Comments[:0]
	for _, cm := range w.Comments {
		to, ok := fn(cm.Ref)
		if !ok {
			continue
		}
		if cm.Shape != nil {
			cm.Shape.Anchor = ShiftAnchor(cm.Shape.Anchor, to.Col-cm.Ref.Col, to.Row-cm.Ref.Row)
			cm.Shape.Row, cm.Shape.Column = to.Row-1, to.Col-1
		}
		cm.Ref = to
		comments = append(comments, cm)
	}
	w.Comments = comments
}

// RemapRows moves row attributes through fn. Rows for which fn reports false
// are dropped.
func (w *Worksheet) RemapRows(fn func(int) (int, bool)) {
	rows := make(map[int]*Row, len(w.rows))
	for i, r := range w.rows {
		to, ok := fn(i)
		if !ok {
			continue
		}
		r.Index = to
		rows[to] = r
	}
	w.rows = rows
}
