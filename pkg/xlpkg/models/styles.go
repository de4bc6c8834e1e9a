package models

import "sync"

// CellFormat is one entry of the cellXfs table.
type CellFormat struct {
	NumFmtID          int
	FontID            int
	FillID            int
	BorderID          int
	ApplyNumberFormat bool
}

// Stylesheet is the workbook style table. The original part bytes are kept
// so the writer can reproduce styles the model does not interpret.
type Stylesheet struct {
	mu          sync.RWMutex
	raw         []byte
	numFmts     map[int]string
	cellFormats []CellFormat
	fontCount   int
}

// NewStylesheet builds a stylesheet from parsed tables and the source bytes.
func NewStylesheet(raw []byte, numFmts map[int]string, cellFormats []CellFormat, fontCount int) *Stylesheet {
	if numFmts == nil {
		numFmts = make(map[int]string)
	}
	return &Stylesheet{raw: raw, numFmts: numFmts, cellFormats: cellFormats, fontCount: fontCount}
}

// Raw returns the source part, or nil for a stylesheet built in memory.
func (s *Stylesheet) Raw() []byte {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.raw
}

// CellFormatCount returns the size of the cellXfs table.
func (s *Stylesheet) CellFormatCount() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cellFormats)
}

// CellFormat returns the cellXfs entry at index i.
func (s *Stylesheet) CellFormat(i int) (CellFormat, bool) {
	if s == nil {
		return CellFormat{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.cellFormats) {
		return CellFormat{}, false
	}
	return s.cellFormats[i], true
}

// ValidStyle reports whether a cell style index resolves. Index 0 is always
// valid, even for a workbook without a stylesheet.
func (s *Stylesheet) ValidStyle(i int) bool {
	if i == 0 {
		return true
	}
	_, ok := s.CellFormat(i)
	return ok
}

// NumberFormat returns the custom format code registered for id.
func (s *Stylesheet) NumberFormat(id int) (string, bool) {
	if s == nil {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	code, ok := s.numFmts[id]
	return code, ok
}

// FontCount returns the number of fonts.
func (s *Stylesheet) FontCount() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fontCount
}
