package parser

import (
	"encoding/xml"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/fault"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
)

// ParseComments parses a comments part, resolving author ids.
func ParseComments(part string, data []byte) ([]models.Comment, error) {
	r, err := newReader(part, data)
	if err != nil {
		return nil, err
	}
	root, err := r.root()
	if err != nil {
		return nil, err
	}
	var authors []string
	var out []models.Comment
	err = r.children(root.Name.Local, func(se xml.StartElement, _ int64) error {
		switch se.Name.Local {
		case "authors":
			return r.children("authors", func(a xml.StartElement, _ int64) error {
				name, err := r.text(a.Name.Local)
				authors = append(authors, name)
				return err
			})
		case "commentList":
			return r.children("commentList", func(c xml.StartElement, _ int64) error {
				if c.Name.Local != "comment" {
					return r.skip(c.Name.Local)
				}
				name, _ := attr(c, "ref")
				ref, err := models.ParseCellRef(name)
				if err != nil {
					return fault.Format.Wrap(err, part+": comment reference")
				}
				cm := models.Comment{Ref: ref}
				if id := attrInt(c, "authorId", -1); id >= 0 && id < len(authors) {
					cm.Author = authors[id]
				}
				err = r.children("comment", func(t xml.StartElement, _ int64) error {
					if t.Name.Local != "text" {
						return r.skip(t.Name.Local)
					}
					item, err := r.parseStringItem("text")
					if err != nil {
						return err
					}
					if item.RichText != nil {
						cm.Text = *item.RichText
					} else {
						cm.Text = models.RichText{Runs: []models.TextRun{{Text: item.Text}}}
					}
					return nil
				})
				if err != nil {
					return err
				}
				out = append(out, cm)
				return nil
			})
		}
		return r.skip(se.Name.Local)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
