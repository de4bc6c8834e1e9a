package parser

import (
	"encoding/xml"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
)

// parseStringItem reads a string item body (<si>, <is> or a comment <text>):
// a single <t> becomes plain text, <r> runs become rich text. Phonetic runs
// are skipped.
func (r *reader) parseStringItem(tag string) (models.SharedStringItem, error) {
	var item models.SharedStringItem
	var runs []models.TextRun
	depth := 1
	for depth > 0 {
		tok, err := r.next(tag)
		if err != nil {
			return item, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "t":
				txt, err := r.text("t")
				if err != nil {
					return item, err
				}
				item.Text += txt
				depth--
			case "r":
				run, err := r.parseRun()
				if err != nil {
					return item, err
				}
				runs = append(runs, run)
				depth--
			case "rPh", "phoneticPr":
				if err := r.skip(t.Name.Local); err != nil {
					return item, err
				}
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
	if len(runs) > 0 {
		item.Text = ""
		item.RichText = &models.RichText{Runs: runs}
	}
	return item, nil
}

func (r *reader) parseRun() (models.TextRun, error) {
	var run models.TextRun
	depth := 1
	for depth > 0 {
		tok, err := r.next("r")
		if err != nil {
			return run, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "rPr":
				font, err := r.parseFont("rPr")
				if err != nil {
					return run, err
				}
				run.Font = font
				depth--
			case "t":
				txt, err := r.text("t")
				if err != nil {
					return run, err
				}
				run.Text += txt
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
	return run, nil
}

// parseFont reads run or font properties up to the end of tag.
func (r *reader) parseFont(tag string) (*models.Font, error) {
	font := &models.Font{}
	depth := 1
	for depth > 0 {
		tok, err := r.next(tag)
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "b":
				font.Bold = flag(t)
			case "i":
				font.Italic = flag(t)
			case "strike":
				font.Strike = flag(t)
			case "u":
				font.Underline, _ = attr(t, "val")
				if font.Underline == "" {
					font.Underline = "single"
				}
			case "sz":
				font.Size = attrFloat(t, "val")
			case "rFont", "name":
				font.Name, _ = attr(t, "val")
			case "family":
				font.Family = attrInt(t, "val", 0)
			case "scheme":
				font.Scheme, _ = attr(t, "val")
			case "color":
				if v, ok := attr(t, "rgb"); ok {
					font.Color = v
				} else if v, ok := attr(t, "theme"); ok {
					font.Color = "theme:" + v
				} else if v, ok := attr(t, "indexed"); ok {
					font.Color = "indexed:" + v
				}
			}
		case xml.EndElement:
			depth--
		}
	}
	return font, nil
}
