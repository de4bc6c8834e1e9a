package parser

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/opc"
)

// ParseVML parses a legacy vector-markup drawing. Such parts are often not
// well formed (unclosed <br> elements), so the decoder runs in lenient mode.
func ParseVML(part string, data []byte) ([]models.VMLShape, error) {
	data, err := opc.Normalize(part, data)
	if err != nil {
		return nil, err
	}
	d := xml.NewDecoder(bytes.NewReader(data))
	d.Strict = false
	d.AutoClose = xml.HTMLAutoClose
	d.Entity = xml.HTMLEntity
	d.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) { return input, nil }
	r := &reader{part: part, data: data, d: d}

	var shapes []models.VMLShape
	for {
		tok, err := r.top()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "shape" {
			continue
		}
		shape, err := r.parseVMLShape(se)
		if err != nil {
			return nil, err
		}
		shapes = append(shapes, shape)
	}
	return shapes, nil
}

func (r *reader) parseVMLShape(start xml.StartElement) (models.VMLShape, error) {
	shape := models.VMLShape{Row: -1, Column: -1}
	shape.ID, _ = attr(start, "id")
	if style, ok := attr(start, "style"); ok {
		shape.Visible = !strings.Contains(strings.ReplaceAll(style, " ", ""), "visibility:hidden")
	}
	var text strings.Builder
	inClient := false
	depth := 1
	for depth > 0 {
		tok, err := r.next("shape")
		if err != nil {
			return shape, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "textbox":
				txt, err := r.text("textbox")
				if err != nil {
					return shape, err
				}
				text.WriteString(txt)
				depth--
			case "ClientData":
				inClient = true
				shape.ObjectType, _ = attr(t, "ObjectType")
			case "Row", "Column", "Anchor":
				if !inClient {
					continue
				}
				txt, err := r.text(t.Name.Local)
				if err != nil {
					return shape, err
				}
				txt = strings.TrimSpace(txt)
				switch t.Name.Local {
				case "Row":
					shape.Row, _ = strconv.Atoi(txt)
				case "Column":
					shape.Column, _ = strconv.Atoi(txt)
				default:
					shape.Anchor = txt
				}
				depth--
			case "Visible":
				if inClient {
					shape.Visible = true
				}
			}
		case xml.EndElement:
			if t.Name.Local == "ClientData" {
				inClient = false
			}
			depth--
		}
	}
	shape.Text = strings.TrimSpace(text.String())
	return shape, nil
}
