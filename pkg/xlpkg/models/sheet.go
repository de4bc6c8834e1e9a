package models

import (
	"sync"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/opc"
)

// SheetState is the visibility of a sheet.
type SheetState string

const (
	StateVisible    SheetState = "visible"
	StateHidden     SheetState = "hidden"
	StateVeryHidden SheetState = "veryHidden"
)

// RawWorksheet holds a sheet that has not been parsed yet: its body, its own
// relationship table and the bytes of every auxiliary part it reaches, keyed
// by absolute part name.
type RawWorksheet struct {
	PartPath string
	Body     []byte
	Rels     *opc.Relationships
	Parts    map[string][]byte
}

// SheetContent is either Unmaterialized or Materialized.
type SheetContent interface {
	sheetContent()
}

// Unmaterialized is the content of a sheet whose body is still raw.
type Unmaterialized struct {
	Raw *RawWorksheet
}

// Materialized is the content of a parsed sheet.
type Materialized struct {
	Worksheet *Worksheet
}

func (Unmaterialized) sheetContent() {}
func (Materialized) sheetContent() {}

// Sheet is one entry of the workbook's sheet list.
type Sheet struct {
	Name     string
	SheetID  int
	RelID    string
	State    SheetState
	PartPath string

	mu      sync.Mutex
	content SheetContent
}

// NewRawSheet returns a sheet awaiting materialization.
func NewRawSheet(name string, sheetID int, relID string, raw *RawWorksheet) *Sheet {
	return &Sheet{
		Name:     name,
		SheetID:  sheetID,
		RelID:    relID,
		State:    StateVisible,
		PartPath: raw.PartPath,
		content:  Unmaterialized{Raw: raw},
	}
}

// NewMaterializedSheet returns a sheet holding ws.
func NewMaterializedSheet(name string, sheetID int, ws *Worksheet) *Sheet {
	return &Sheet{
		Name:    name,
		SheetID: sheetID,
		State:   StateVisible,
		content: Materialized{Worksheet: ws},
	}
}

// Content returns the current content.
func (s *Sheet) Content() SheetContent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

// IsMaterialized reports whether the sheet has been parsed.
func (s *Sheet) IsMaterialized() bool {
	_, ok := s.Content().(Materialized)
	return ok
}

// Materialize switches the sheet to the Materialized state using build. The
// transition happens at most once; later calls return the existing
// worksheet without calling build. When build fails the sheet stays raw.
func (s *Sheet) Materialize(build func(raw *RawWorksheet) (*Worksheet, error)) (*Worksheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch c := s.content.(type) {
	case Materialized:
		return c.Worksheet, nil
	case Unmaterialized:
		ws, err := build(c.Raw)
		if err != nil {
			return nil, err
		}
		s.content = Materialized{Worksheet: ws}
		return ws, nil
	}
	return nil, nil
}

// Replace installs ws as the materialized content.
func (s *Sheet) Replace(ws *Worksheet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content = Materialized{Worksheet: ws}
}
