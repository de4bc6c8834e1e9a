package models

import "sync"

// Theme is the workbook theme: name, color scheme and font scheme. The source
// part is kept for passthrough on write.
type Theme struct {
	mu        sync.RWMutex
	name      string
	colors    map[string]string
	majorFont string
	minorFont string
	raw       []byte
}

// NewTheme builds a theme. colors maps scheme slots (dk1, lt1, accent1, ...)
// to RGB hex values.
func NewTheme(name string, colors map[string]string, majorFont, minorFont string, raw []byte) *Theme {
	if colors == nil {
		colors = make(map[string]string)
	}
	return &Theme{name: name, colors: colors, majorFont: majorFont, minorFont: minorFont, raw: raw}
}

// Name returns the theme name.
func (t *Theme) Name() string {
	if t == nil {
		return ""
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.name
}

// Color returns the RGB value of a scheme slot.
func (t *Theme) Color(slot string) (string, bool) {
	if t == nil {
		return "", false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.colors[slot]
	return c, ok
}

// Fonts returns the major and minor Latin typefaces.
func (t *Theme) Fonts() (major, minor string) {
	if t == nil {
		return "", ""
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.majorFont, t.minorFont
}

// Raw returns the source part, or nil.
func (t *Theme) Raw() []byte {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.raw
}
