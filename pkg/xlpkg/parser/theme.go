package parser

import (
	"encoding/xml"
	"io"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
)

// ParseTheme reads the name, color scheme and Latin fonts of a theme part.
func ParseTheme(part string, data []byte) (*models.Theme, error) {
	r, err := newReader(part, data)
	if err != nil {
		return nil, err
	}
	var name, major, minor string
	colors := make(map[string]string)
	for {
		tok, err := r.top()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "theme":
			name, _ = attr(se, "name")
		case "clrScheme":
			if err := r.parseColorScheme(colors); err != nil {
				return nil, err
			}
		case "majorFont":
			if major, err = r.latinTypeface("majorFont"); err != nil {
				return nil, err
			}
		case "minorFont":
			if minor, err = r.latinTypeface("minorFont"); err != nil {
				return nil, err
			}
		}
	}
	return models.NewTheme(name, colors, major, minor, data), nil
}

func (r *reader) parseColorScheme(colors map[string]string) error {
	var slot string
	depth := 1
	for depth > 0 {
		tok, err := r.next("clrScheme")
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch {
			case depth == 2:
				slot = t.Name.Local
			case t.Name.Local == "srgbClr":
				colors[slot], _ = attr(t, "val")
			case t.Name.Local == "sysClr":
				colors[slot], _ = attr(t, "lastClr")
			}
		case xml.EndElement:
			depth--
		}
	}
	return nil
}

func (r *reader) latinTypeface(tag string) (string, error) {
	var face string
	depth := 1
	for depth > 0 {
		tok, err := r.next(tag)
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if t.Name.Local == "latin" {
				face, _ = attr(t, "typeface")
			}
		case xml.EndElement:
			depth--
		}
	}
	return face, nil
}
