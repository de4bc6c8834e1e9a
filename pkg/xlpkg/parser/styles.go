package parser

import (
	"encoding/xml"
	"io"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
)

// ParseStyles reads the number formats, font count and cellXfs table of a
// styles part. The part bytes are kept on the result.
func ParseStyles(part string, data []byte) (*models.Stylesheet, error) {
	r, err := newReader(part, data)
	if err != nil {
		return nil, err
	}
	numFmts := make(map[int]string)
	var cellFormats []models.CellFormat
	fonts := 0
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
		case "numFmt":
			code, _ := attr(se, "formatCode")
			numFmts[attrInt(se, "numFmtId", -1)] = code
		case "fonts":
			n, err := r.countChildren("fonts", "font")
			if err != nil {
				return nil, err
			}
			fonts = n
		case "cellXfs":
			cellFormats, err = r.parseCellXfs()
			if err != nil {
				return nil, err
			}
		case "cellStyleXfs", "dxfs":
			if err := r.skip(se.Name.Local); err != nil {
				return nil, err
			}
		}
	}
	return models.NewStylesheet(data, numFmts, cellFormats, fonts), nil
}

func (r *reader) parseCellXfs() ([]models.CellFormat, error) {
	var out []models.CellFormat
	depth := 1
	for depth > 0 {
		tok, err := r.next("cellXfs")
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if t.Name.Local == "xf" && depth == 2 {
				out = append(out, models.CellFormat{
					NumFmtID:          attrInt(t, "numFmtId", 0),
					FontID:            attrInt(t, "fontId", 0),
					FillID:            attrInt(t, "fillId", 0),
					BorderID:          attrInt(t, "borderId", 0),
					ApplyNumberFormat: attrBool(t, "applyNumberFormat"),
				})
			}
		case xml.EndElement:
			depth--
		}
	}
	return out, nil
}

// countChildren counts the direct children named child of the element tag.
func (r *reader) countChildren(tag, child string) (int, error) {
	n := 0
	depth := 1
	for depth > 0 {
		tok, err := r.next(tag)
		if err != nil {
			return 0, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 2 && t.Name.Local == child {
				n++
			}
		case xml.EndElement:
			depth--
		}
	}
	return n, nil
}
