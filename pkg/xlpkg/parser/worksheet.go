package parser

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/fault"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
	"go.uber.org/zap"
)

// sheetParser carries the state of one worksheet body parse.
type sheetParser struct {
	*reader
	res Resources
	ws  *models.Worksheet
	// last is the most recent row index, for rows without an r attribute.
	last int
}

// ParseWorksheet parses a worksheet body. Shared string indexes are resolved
// against res.SharedStrings; style indexes are checked against res.Styles.
func ParseWorksheet(part string, data []byte, res Resources) (*models.Worksheet, error) {
	r, err := newReader(part, data)
	if err != nil {
		return nil, err
	}
	root, err := r.root()
	if err != nil {
		return nil, err
	}
	p := &sheetParser{reader: r, res: res.withDefaults(), ws: models.NewWorksheet()}
	p.ws.Namespaces = namespaces(root)
	if err := r.children(root.Name.Local, p.parseChild); err != nil {
		return nil, err
	}
	return p.ws, nil
}

func (p *sheetParser) parseChild(se xml.StartElement, start int64) error {
	switch se.Name.Local {
	case "sheetData":
		return p.children("sheetData", func(row xml.StartElement, _ int64) error {
			if row.Name.Local != "row" {
				return p.skip(row.Name.Local)
			}
			return p.parseRow(row)
		})
	case "cols":
		return p.children("cols", func(col xml.StartElement, _ int64) error {
			if col.Name.Local == "col" {
				p.ws.Columns = append(p.ws.Columns, models.Column{
					Min:         attrInt(col, "min", 0),
					Max:         attrInt(col, "max", 0),
					Width:       attrFloat(col, "width"),
					CustomWidth: attrBool(col, "customWidth"),
					Hidden:      attrBool(col, "hidden"),
					StyleIndex:  attrInt(col, "style", 0),
				})
			}
			return p.skip(col.Name.Local)
		})
	case "mergeCells":
		return p.children("mergeCells", func(mc xml.StartElement, _ int64) error {
			if ref, ok := attr(mc, "ref"); ok && mc.Name.Local == "mergeCell" {
				p.ws.MergeCells = append(p.ws.MergeCells, ref)
			}
			return p.skip(mc.Name.Local)
		})
	case "drawing":
		p.ws.DrawingRelID, _ = attr(se, "id")
		return p.skip(se.Name.Local)
	case "legacyDrawing":
		p.ws.LegacyDrawingRelID, _ = attr(se, "id")
		return p.skip(se.Name.Local)
	case "dimension":
		// Regenerated on write.
		return p.skip(se.Name.Local)
	case "sheetFormatPr":
		p.ws.DefaultRowHeight = attrFloat(se, "defaultRowHeight")
	}
	frag, err := p.fragment(start, se.Name.Local)
	if err != nil {
		return err
	}
	p.ws.Extra = append(p.ws.Extra, frag)
	return nil
}

func (p *sheetParser) parseRow(se xml.StartElement) error {
	index := attrInt(se, "r", 0)
	if index == 0 {
		index = p.last + 1
	}
	p.last = index
	if _, ok := attr(se, "ht"); ok || attrBool(se, "hidden") || attrBool(se, "customFormat") {
		row := p.ws.EnsureRow(index)
		row.Height = attrFloat(se, "ht")
		row.CustomHeight = attrBool(se, "customHeight")
		row.Hidden = attrBool(se, "hidden")
		row.StyleIndex = attrInt(se, "s", 0)
		row.CustomFormat = attrBool(se, "customFormat")
	}
	col := 1
	return p.children("row", func(c xml.StartElement, _ int64) error {
		if c.Name.Local != "c" {
			return p.skip(c.Name.Local)
		}
		return p.parseCell(c, index, &col)
	})
}

func (p *sheetParser) parseCell(se xml.StartElement, row int, nextCol *int) error {
	ref := models.CellRef{Col: *nextCol, Row: row}
	if name, ok := attr(se, "r"); ok {
		parsed, err := models.ParseCellRef(name)
		if err != nil {
			return fault.Format.Wrap(err, p.part+": cell reference "+strconv.Quote(name))
		}
		ref = parsed
	}
	*nextCol = ref.Col + 1

	dataType, _ := attr(se, "t")
	style := attrInt(se, "s", 0)
	if !p.res.Styles.ValidStyle(style) {
		p.res.Logger.Warn("style index out of range",
			zap.String("part", p.part), zap.String("cell", ref.String()), zap.Int("style", style))
	}

	var (
		value, formula string
		hasValue, hasF bool
		formulaAttrs   []models.Attr
		inline         *models.SharedStringItem
	)
	err := p.children("c", func(child xml.StartElement, _ int64) error {
		var err error
		switch child.Name.Local {
		case "v":
			value, err = p.text("v")
			hasValue = true
		case "f":
			hasF = true
			for _, a := range child.Attr {
				formulaAttrs = append(formulaAttrs, models.Attr{Name: a.Name.Local, Value: a.Value})
			}
			formula, err = p.text("f")
		case "is":
			var item models.SharedStringItem
			item, err = p.parseStringItem("is")
			inline = &item
		default:
			err = p.skip(child.Name.Local)
		}
		return err
	})
	if err != nil {
		return err
	}

	cv := &models.CellValue{}
	if hasF {
		cv.SetFormula(formula)
		cv.SetFormulaAttributes(formulaAttrs)
	}
	if err := p.setValue(cv, ref, dataType, value, hasValue, hasF, inline); err != nil {
		return err
	}
	p.ws.PutCell(&models.Cell{Ref: ref, StyleIndex: style, Value: cv})
	return nil
}

func (p *sheetParser) setValue(cv *models.CellValue, ref models.CellRef, dataType, value string, hasValue, hasF bool, inline *models.SharedStringItem) error {
	switch dataType {
	case models.TypeInline:
		if inline != nil {
			cv.SetSharedStringItem(*inline)
		}
		return nil
	case models.TypeString:
		if !hasValue {
			return nil
		}
		idx, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fault.TypeMismatch.New(value, dataType)
		}
		item, ok := p.res.SharedStrings.Item(idx)
		if !ok {
			return fault.Format.New(p.part + ": cell " + ref.String() + " refers to missing shared string " + strconv.Itoa(idx))
		}
		if hasF {
			cv.SetCached(models.StringValue(item.Value()))
		} else {
			cv.SetSharedStringItem(item)
		}
		return nil
	}
	if !hasValue {
		return nil
	}
	if err := models.CheckDataType(value, dataType); err != nil {
		return err
	}
	var typed models.Value
	switch dataType {
	case models.TypeFormulaString, models.TypeDate:
		typed = models.StringValue(value)
	case models.TypeBool:
		typed = models.BoolValue(value == "1" || strings.EqualFold(value, "true"))
	case models.TypeError:
		typed = models.ErrorValue(value)
	default:
		// Numeric content is inferred lazily from the raw text.
		cv.SetRaw(value)
		return nil
	}
	if hasF {
		cv.SetCached(typed)
		return nil
	}
	switch typed.Kind {
	case models.KindBool:
		cv.SetBool(typed.Bool)
	case models.KindError:
		cv.SetError(typed.Text)
	default:
		cv.SetString(typed.Text)
	}
	return nil
}
