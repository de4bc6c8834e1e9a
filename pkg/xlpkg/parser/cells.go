package parser

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/opc"
)

// ExtractRows exports the populated rows of a worksheet. Formula cells carry
// their cached value in C and their formula in F. With includeLinks, external
// hyperlink targets are attached per column.
func ExtractRows(ws *models.Worksheet, includeLinks bool) ([]models.CellRow, error) {
	var links map[models.CellRef]string
	if includeLinks {
		var err error
		if links, err = Hyperlinks(ws); err != nil {
			return nil, err
		}
	}
	var result []models.CellRow
	var row *models.CellRow
	flush := func() {
		if row != nil && (len(row.C) > 0 || len(row.F) > 0) {
			result = append(result, *row)
		}
		row = nil
	}
	for _, c := range ws.Cells() {
		if row == nil || row.R != c.Ref.Row {
			flush()
			row = &models.CellRow{R: c.Ref.Row, C: make(map[string]interface{})}
		}
		colStr := strconv.Itoa(c.Ref.Col)
		if f, ok := c.Value.Formula(); ok {
			if row.F == nil {
				row.F = make(map[string]string)
			}
			row.F[colStr] = f
		}
		if target, ok := links[c.Ref]; ok {
			if row.Links == nil {
				row.Links = make(map[string]string)
			}
			row.Links[colStr] = target
		}
		if v := c.Value.DisplayValue(); v != "" {
			row.C[colStr] = parseValue(v)
		}
	}
	flush()
	return result, nil
}

// parseValue attempts to parse a string value as a number.
// Returns int64 for integers, float64 for decimals, or the original string.
func parseValue(s string) interface{} {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// Hyperlinks resolves the hyperlinks element of a worksheet to a map of cell
// to target: the relationship target for external links, else the location.
// A ranged hyperlink is keyed by its first cell.
func Hyperlinks(ws *models.Worksheet) (map[models.CellRef]string, error) {
	out := make(map[models.CellRef]string)
	for _, frag := range ws.Extra {
		if frag.Name != "hyperlinks" {
			continue
		}
		r, err := newReader("hyperlinks", frag.XML)
		if err != nil {
			return nil, err
		}
		root, err := r.root()
		if err != nil {
			return nil, err
		}
		err = r.children(root.Name.Local, func(se xml.StartElement, _ int64) error {
			if se.Name.Local == "hyperlink" {
				resolveHyperlink(ws.Rels, se, out)
			}
			return r.skip(se.Name.Local)
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func resolveHyperlink(rels *opc.Relationships, se xml.StartElement, out map[models.CellRef]string) {
	name, _ := attr(se, "ref")
	if i := strings.IndexByte(name, ':'); i >= 0 {
		name = name[:i]
	}
	ref, err := models.ParseCellRef(name)
	if err != nil {
		return
	}
	target, _ := attr(se, "location")
	if id, ok := attr(se, "id"); ok && rels != nil {
		if rel, ok := rels.Get(id); ok {
			target = rel.Target
		}
	}
	if target != "" {
		out[ref] = target
	}
}
