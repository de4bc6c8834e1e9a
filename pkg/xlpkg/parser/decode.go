package parser

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/fault"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/opc"
)

// reader walks the tokens of one part and classifies decoder failures.
type reader struct {
	part string
	data []byte
	d    *xml.Decoder
}

func newReader(part string, data []byte) (*reader, error) {
	data, err := opc.Normalize(part, data)
	if err != nil {
		return nil, err
	}
	return &reader{part: part, data: data, d: opc.NewDecoder(data)}, nil
}

// next returns the next token inside the element tag.
func (r *reader) next(tag string) (xml.Token, error) {
	tok, err := r.d.Token()
	if err != nil {
		return nil, r.fail(tag, err)
	}
	return tok, nil
}

// top returns the next token at document level; io.EOF ends the document.
func (r *reader) top() (xml.Token, error) {
	tok, err := r.d.Token()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, r.fail("", err)
	}
	return tok, nil
}

func (r *reader) fail(tag string, err error) error {
	return opc.Classify(r.part, tag, err)
}

// skip consumes the rest of the element tag.
func (r *reader) skip(tag string) error {
	if err := r.d.Skip(); err != nil {
		return r.fail(tag, err)
	}
	return nil
}

// text reads the character data of the element tag, including nested
// elements, up to its end.
func (r *reader) text(tag string) (string, error) {
	var b strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := r.next(tag)
		if err != nil {
			return b.String(), err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return b.String(), nil
}

// fragment captures the element whose start token began at offset start.
func (r *reader) fragment(start int64, name string) (models.Fragment, error) {
	if err := r.skip(name); err != nil {
		return models.Fragment{}, err
	}
	end := r.d.InputOffset()
	return models.Fragment{Name: name, XML: bytes.TrimSpace(append([]byte(nil), r.data[start:end]...))}, nil
}

// namespaces returns the namespace declarations and mc:Ignorable attribute
// of a root element.
func namespaces(se xml.StartElement) []models.Attr {
	var out []models.Attr
	for _, a := range se.Attr {
		switch {
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			out = append(out, models.Attr{Name: "xmlns", Value: a.Value})
		case a.Name.Space == "xmlns":
			out = append(out, models.Attr{Name: "xmlns:" + a.Name.Local, Value: a.Value})
		case a.Name.Local == "Ignorable":
			out = append(out, models.Attr{Name: "mc:Ignorable", Value: a.Value})
		}
	}
	return out
}

func attr(se xml.StartElement, local string) (string, bool) {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

func attrInt(se xml.StartElement, local string, def int) int {
	v, ok := attr(se, local)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func attrFloat(se xml.StartElement, local string) float64 {
	v, _ := attr(se, local)
	f, _ := strconv.ParseFloat(v, 64)
	return f
}

func attrBool(se xml.StartElement, local string) bool {
	v, ok := attr(se, local)
	return ok && (v == "1" || strings.EqualFold(v, "true"))
}

// flag reports an element such as <b/> or <b val="0"/>.
func flag(se xml.StartElement) bool {
	v, ok := attr(se, "val")
	return !ok || v == "1" || strings.EqualFold(v, "true")
}

// root reads up to the document element.
func (r *reader) root() (xml.StartElement, error) {
	for {
		tok, err := r.top()
		if err == io.EOF {
			return xml.StartElement{}, fault.Format.New(r.part + " has no root element")
		}
		if err != nil {
			return xml.StartElement{}, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}

// children calls fn for every direct child of the element tag, passing the
// offset at which the child starts. fn must consume the child up to and
// including its end element.
func (r *reader) children(tag string, fn func(se xml.StartElement, start int64) error) error {
	for {
		start := r.d.InputOffset()
		tok, err := r.next(tag)
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := fn(t, start); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}
