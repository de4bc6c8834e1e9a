package writer

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/opc"
)

// worksheetOrder is the child sequence of a worksheet root.
var worksheetOrder = []string{
	"sheetPr", "dimension", "sheetViews", "sheetFormatPr", "cols", "sheetData",
	"sheetCalcPr", "sheetProtection", "protectedRanges", "scenarios", "autoFilter",
	"sortState", "dataConsolidate", "customSheetViews", "mergeCells", "phoneticPr",
	"conditionalFormatting", "dataValidations", "hyperlinks", "printOptions",
	"pageMargins", "pageSetup", "headerFooter", "rowBreaks", "colBreaks",
	"customProperties", "cellWatches", "ignoredErrors", "smartTags", "drawing",
	"legacyDrawing", "legacyDrawingHF", "drawingHF", "picture", "oleObjects",
	"controls", "webPublishItems", "tableParts", "extLst",
}

var worksheetRank = func() map[string]int {
	m := make(map[string]int, len(worksheetOrder))
	for i, name := range worksheetOrder {
		m[name] = i
	}
	return m
}()

// section is one child of the worksheet root, generated or carried verbatim.
type section struct {
	name   string
	render func(*buffer)
}

func (s section) rank() int {
	if r, ok := worksheetRank[s.name]; ok {
		return r
	}
	// Unknown elements go right before extLst.
	return worksheetRank["extLst"]
}

// WorksheetPart renders ws. Every string cell is registered in sst.
func WorksheetPart(ws *models.Worksheet, sst *models.SharedStringTable) []byte {
	sections := []section{
		{name: "dimension", render: func(b *buffer) { writeDimension(b, ws) }},
		{name: "sheetData", render: func(b *buffer) { writeSheetData(b, ws, sst) }},
	}
	if len(ws.Columns) > 0 {
		sections = append(sections, section{name: "cols", render: func(b *buffer) { writeColumns(b, ws.Columns) }})
	}
	if len(ws.MergeCells) > 0 {
		sections = append(sections, section{name: "mergeCells", render: func(b *buffer) { writeMergeCells(b, ws.MergeCells) }})
	}
	if ws.DrawingRelID != "" {
		id := ws.DrawingRelID
		sections = append(sections, section{name: "drawing", render: func(b *buffer) { b.empty("drawing", "r:id", id) }})
	}
	if ws.LegacyDrawingRelID != "" {
		id := ws.LegacyDrawingRelID
		sections = append(sections, section{name: "legacyDrawing", render: func(b *buffer) { b.empty("legacyDrawing", "r:id", id) }})
	}
	for _, frag := range ws.Extra {
		raw := frag.XML
		sections = append(sections, section{name: frag.Name, render: func(b *buffer) { b.Write(raw) }})
	}
	sort.SliceStable(sections, func(i, j int) bool { return sections[i].rank() < sections[j].rank() })

	b := newBuffer()
	b.open("worksheet", namespaceAttrs(ws.Namespaces,
		models.Attr{Name: "xmlns", Value: opc.NSSpreadsheetML},
		models.Attr{Name: "xmlns:r", Value: opc.NSOfficeDocRels})...)
	for _, s := range sections {
		s.render(b)
	}
	b.close("worksheet")
	return b.Bytes()
}

func writeDimension(b *buffer, ws *models.Worksheet) {
	first, last, ok := ws.Dimension()
	switch {
	case !ok:
		b.empty("dimension", "ref", "A1")
	case first == last:
		b.empty("dimension", "ref", first.String())
	default:
		b.empty("dimension", "ref", first.String()+":"+last.String())
	}
}

func writeColumns(b *buffer, cols []models.Column) {
	b.open("cols")
	for _, c := range cols {
		attrs := []string{"min", itoa(c.Min), "max", itoa(c.Max)}
		if c.Width != 0 {
			attrs = append(attrs, "width", formatFloat(c.Width))
		}
		if c.StyleIndex != 0 {
			attrs = append(attrs, "style", itoa(c.StyleIndex))
		}
		if c.Hidden {
			attrs = append(attrs, "hidden", "1")
		}
		if c.CustomWidth {
			attrs = append(attrs, "customWidth", "1")
		}
		b.empty("col", attrs...)
	}
	b.close("cols")
}

func writeMergeCells(b *buffer, merges []string) {
	b.open("mergeCells", "count", itoa(len(merges)))
	for _, ref := range merges {
		b.empty("mergeCell", "ref", ref)
	}
	b.close("mergeCells")
}

func writeSheetData(b *buffer, ws *models.Worksheet, sst *models.SharedStringTable) {
	cells := ws.Cells()
	rows := ws.Rows()
	if len(rows) == 0 {
		b.empty("sheetData")
		return
	}
	b.open("sheetData")
	next := 0
	for _, index := range rows {
		end := next
		for end < len(cells) && cells[end].Ref.Row == index {
			end++
		}
		attrs := []string{"r", itoa(index)}
		if r := ws.Row(index); r != nil {
			if r.StyleIndex != 0 || r.CustomFormat {
				attrs = append(attrs, "s", itoa(r.StyleIndex), "customFormat", "1")
			}
			if r.Height != 0 {
				attrs = append(attrs, "ht", formatFloat(r.Height))
				if r.CustomHeight {
					attrs = append(attrs, "customHeight", "1")
				}
			}
			if r.Hidden {
				attrs = append(attrs, "hidden", "1")
			}
		}
		if end == next {
			b.empty("row", attrs...)
			continue
		}
		b.open("row", attrs...)
		for _, c := range cells[next:end] {
			writeCell(b, c, sst)
		}
		b.close("row")
		next = end
	}
	b.close("sheetData")
}

func writeCell(b *buffer, c *models.Cell, sst *models.SharedStringTable) {
	attrs := []string{"r", c.Ref.String()}
	if c.StyleIndex != 0 {
		attrs = append(attrs, "s", itoa(c.StyleIndex))
	}
	v := c.Value
	if f, ok := v.Formula(); ok {
		writeFormulaCell(b, attrs, v, f)
		return
	}
	if rt, ok := v.RichText(); ok {
		writeValue(b, append(attrs, "t", models.TypeString), itoa(sst.RegisterRichText(rt)))
		return
	}
	typed, ok := v.TypedValue()
	if !ok {
		b.empty("c", attrs...)
		return
	}
	switch typed.Kind {
	case models.KindString:
		writeValue(b, append(attrs, "t", models.TypeString), itoa(sst.RegisterText(typed.Text)))
	case models.KindNumeric:
		writeValue(b, attrs, numericText(v, typed))
	case models.KindBool:
		writeValue(b, append(attrs, "t", models.TypeBool), boolText(typed.Bool))
	case models.KindError:
		writeValue(b, append(attrs, "t", models.TypeError), typed.Text)
	default:
		b.empty("c", attrs...)
	}
}

func writeValue(b *buffer, attrs []string, value string) {
	b.open("c", attrs...)
	b.element("v", value)
	b.close("c")
}

// writeFormulaCell writes a formula with its cached result. The cached value
// decides the cell type; string results use t="str".
func writeFormulaCell(b *buffer, attrs []string, v *models.CellValue, formula string) {
	var value string
	typed, cached := v.TypedValue()
	if cached {
		switch typed.Kind {
		case models.KindString:
			attrs = append(attrs, "t", models.TypeFormulaString)
			value = typed.Text
		case models.KindBool:
			attrs = append(attrs, "t", models.TypeBool)
			value = boolText(typed.Bool)
		case models.KindError:
			attrs = append(attrs, "t", models.TypeError)
			value = typed.Text
		case models.KindNumeric:
			value = numericText(v, typed)
		default:
			cached = false
		}
	}
	b.open("c", attrs...)
	var fattrs []string
	for _, a := range v.FormulaAttributes() {
		fattrs = append(fattrs, a.Name, a.Value)
	}
	if formula == "" {
		b.empty("f", fattrs...)
	} else {
		b.element("f", formula, fattrs...)
	}
	if cached {
		b.element("v", value)
	}
	b.close("c")
}

// numericText keeps the source text of a number when it still parses, so
// values round-trip digit for digit.
func numericText(v *models.CellValue, typed models.Value) string {
	if raw, ok := v.Raw(); ok {
		raw = strings.TrimSpace(raw)
		if _, err := strconv.ParseFloat(raw, 64); err == nil {
			return raw
		}
	}
	return formatNumber(typed.Number)
}

func boolText(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
