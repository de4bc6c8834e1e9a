package writer

import (
	"bytes"
	"encoding/xml"
	"math"
	"strconv"
	"strings"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
)

const declaration = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// buffer renders XML markup. Attributes are passed as name, value pairs.
type buffer struct {
	bytes.Buffer
}

func newBuffer() *buffer {
	b := &buffer{}
	b.WriteString(declaration)
	return b
}

func (b *buffer) open(name string, attrs ...string) {
	b.WriteByte('<')
	b.WriteString(name)
	b.attrs(attrs)
	b.WriteByte('>')
}

func (b *buffer) empty(name string, attrs ...string) {
	b.WriteByte('<')
	b.WriteString(name)
	b.attrs(attrs)
	b.WriteString("/>")
}

func (b *buffer) close(name string) {
	b.WriteString("</")
	b.WriteString(name)
	b.WriteByte('>')
}

// element writes name with escaped character content.
func (b *buffer) element(name, text string, attrs ...string) {
	b.open(name, attrs...)
	b.text(text)
	b.close(name)
}

func (b *buffer) text(s string) {
	_ = xml.EscapeText(b, []byte(s))
}

func (b *buffer) attrs(attrs []string) {
	for i := 0; i+1 < len(attrs); i += 2 {
		b.WriteByte(' ')
		b.WriteString(attrs[i])
		b.WriteString(`="`)
		b.text(attrs[i+1])
		b.WriteByte('"')
	}
}

// namespaceAttrs flattens declarations, adding defaults that are missing.
func namespaceAttrs(declared []models.Attr, defaults ...models.Attr) []string {
	var out []string
	seen := make(map[string]bool)
	for _, a := range declared {
		if seen[a.Name] {
			continue
		}
		seen[a.Name] = true
		out = append(out, a.Name, a.Value)
	}
	for _, a := range defaults {
		if !seen[a.Name] {
			out = append(out, a.Name, a.Value)
		}
	}
	return out
}

// textElement writes <t>, preserving edge whitespace.
func (b *buffer) textElement(s string) {
	if s != strings.TrimSpace(s) {
		b.element("t", s, "xml:space", "preserve")
		return
	}
	b.element("t", s)
}

// runProperties writes <rPr> in schema order.
func (b *buffer) runProperties(f *models.Font) {
	b.open("rPr")
	if f.Name != "" {
		b.empty("rFont", "val", f.Name)
	}
	if f.Family != 0 {
		b.empty("family", "val", strconv.Itoa(f.Family))
	}
	if f.Bold {
		b.empty("b")
	}
	if f.Italic {
		b.empty("i")
	}
	if f.Strike {
		b.empty("strike")
	}
	if f.Color != "" {
		switch {
		case strings.HasPrefix(f.Color, "theme:"):
			b.empty("color", "theme", strings.TrimPrefix(f.Color, "theme:"))
		case strings.HasPrefix(f.Color, "indexed:"):
			b.empty("color", "indexed", strings.TrimPrefix(f.Color, "indexed:"))
		default:
			b.empty("color", "rgb", f.Color)
		}
	}
	if f.Size != 0 {
		b.empty("sz", "val", strconv.FormatFloat(f.Size, 'f', -1, 64))
	}
	if f.Underline != "" {
		if f.Underline == "single" {
			b.empty("u")
		} else {
			b.empty("u", "val", f.Underline)
		}
	}
	if f.Scheme != "" {
		b.empty("scheme", "val", f.Scheme)
	}
	b.close("rPr")
}

// richText writes the runs of rt.
func (b *buffer) richText(rt models.RichText) {
	for _, run := range rt.Runs {
		b.open("r")
		if run.Font != nil {
			b.runProperties(run.Font)
		}
		b.textElement(run.Text)
		b.close("r")
	}
}

// formatNumber renders a cell number, switching to exponent form for very
// large or small magnitudes.
func formatNumber(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(f, 'E', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func itoa(n int) string { return strconv.Itoa(n) }

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
