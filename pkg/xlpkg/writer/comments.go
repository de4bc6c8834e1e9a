package writer

import (
	"fmt"
	"strings"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/opc"
)

// CommentsPart renders the comments of a sheet. Authors are listed in order
// of first use.
func CommentsPart(comments []models.Comment) []byte {
	var authors []string
	index := make(map[string]int)
	for _, c := range comments {
		if _, ok := index[c.Author]; !ok {
			index[c.Author] = len(authors)
			authors = append(authors, c.Author)
		}
	}

	b := newBuffer()
	b.open("comments", "xmlns", opc.NSSpreadsheetML)
	b.open("authors")
	for _, a := range authors {
		b.element("author", a)
	}
	b.close("authors")
	b.open("commentList")
	for _, c := range comments {
		b.open("comment", "ref", c.Ref.String(), "authorId", itoa(index[c.Author]))
		b.open("text")
		if len(c.Text.Runs) == 1 && c.Text.Runs[0].Font == nil {
			b.textElement(c.Text.Runs[0].Text)
		} else {
			b.richText(c.Text)
		}
		b.close("text")
		b.close("comment")
	}
	b.close("commentList")
	b.close("comments")
	return b.Bytes()
}

const vmlHeader = `<xml xmlns:v="urn:schemas-microsoft-com:vml" xmlns:o="urn:schemas-microsoft-com:office:office" xmlns:x="urn:schemas-microsoft-com:office:excel">` +
	`<o:shapelayout v:ext="edit"><o:idmap v:ext="edit" data="%d"/></o:shapelayout>` +
	`<v:shapetype id="_x0000_t202" coordsize="21600,21600" o:spt="202" path="m,l,21600r21600,l21600,xe">` +
	`<v:stroke joinstyle="miter"/><v:path gradientshapeok="t" o:connecttype="rect"/></v:shapetype>`

// VMLPart renders the legacy drawing that displays the notes of a sheet,
// followed by the sheet's other legacy shapes. sheetIndex is 1-based and
// seeds the shape id block.
func VMLPart(sheetIndex int, comments []models.Comment, controls []models.VMLShape) []byte {
	b := &buffer{}
	fmt.Fprintf(b, vmlHeader, sheetIndex)
	next := sheetIndex*1024 + 1
	for _, c := range comments {
		s := models.VMLShape{ObjectType: "Note", Row: c.Ref.Row - 1, Column: c.Ref.Col - 1}
		if c.Shape != nil {
			s = *c.Shape
			s.ObjectType, s.Row, s.Column = "Note", c.Ref.Row-1, c.Ref.Col-1
		}
		if s.ID == "" {
			s.ID = fmt.Sprintf("_x0000_s%d", next)
		}
		next++
		if s.Anchor == "" {
			s.Anchor = defaultAnchor(c.Ref)
		}
		writeVMLShape(b, s)
	}
	for _, s := range controls {
		if s.ID == "" {
			s.ID = fmt.Sprintf("_x0000_s%d", next)
		}
		next++
		writeVMLShape(b, s)
	}
	b.close("xml")
	return b.Bytes()
}

func writeVMLShape(b *buffer, s models.VMLShape) {
	visibility := "hidden"
	if s.Visible {
		visibility = "visible"
	}
	b.open("v:shape", "id", s.ID, "type", "#_x0000_t202",
		"style", "position:absolute;margin-left:59.25pt;margin-top:1.5pt;width:108pt;height:59.25pt;z-index:1;visibility:"+visibility,
		"fillcolor", "#ffffe1", "o:insetmode", "auto")
	b.empty("v:fill", "color2", "#ffffe1")
	b.empty("v:shadow", "on", "t", "color", "black", "obscured", "t")
	b.empty("v:path", "o:connecttype", "none")
	b.open("v:textbox", "style", "mso-direction-alt:auto")
	b.open("div", "style", "text-align:left")
	b.text(s.Text)
	b.close("div")
	b.close("v:textbox")
	objectType := s.ObjectType
	if objectType == "" {
		objectType = "Note"
	}
	b.open("x:ClientData", "ObjectType", objectType)
	b.element("x:MoveWithCells", "")
	b.element("x:SizeWithCells", "")
	if s.Anchor != "" {
		b.element("x:Anchor", s.Anchor)
	}
	b.element("x:AutoFill", "False")
	if s.Row >= 0 {
		b.element("x:Row", itoa(s.Row))
	}
	if s.Column >= 0 {
		b.element("x:Column", itoa(s.Column))
	}
	if s.Visible {
		b.element("x:Visible", "")
	}
	b.close("x:ClientData")
	b.close("v:shape")
}

// defaultAnchor places a note box to the right of its cell.
func defaultAnchor(ref models.CellRef) string {
	col, row := ref.Col, ref.Row-1
	fields := []int{col, 15, max(row-1, 0), 10, col + 2, 15, row + 3, 4}
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = itoa(f)
	}
	return strings.Join(parts, ", ")
}
