package xlpkg

import (
	"fmt"
	"strings"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/formula"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
	"go.uber.org/zap"
)

// InsertRows inserts count empty rows before row at (1-based) of sheet.
func (w *Workbook) InsertRows(sheet string, at, count int) error {
	return w.applyEdit(sheet, formula.Edit{Axis: formula.Rows, At: at, Count: count}, false)
}

// RemoveRows removes count rows starting at row at of sheet.
func (w *Workbook) RemoveRows(sheet string, at, count int) error {
	return w.applyEdit(sheet, formula.Edit{Axis: formula.Rows, At: at, Count: count}, true)
}

// InsertColumns inserts count empty columns before column at of sheet.
func (w *Workbook) InsertColumns(sheet string, at, count int) error {
	return w.applyEdit(sheet, formula.Edit{Axis: formula.Columns, At: at, Count: count}, false)
}

// RemoveColumns removes count columns starting at column at of sheet.
func (w *Workbook) RemoveColumns(sheet string, at, count int) error {
	return w.applyEdit(sheet, formula.Edit{Axis: formula.Columns, At: at, Count: count}, true)
}

// applyEdit moves the content of the edited sheet and rewrites every
// reference to it across the workbook: formulas on all sheets, shared and
// array formula ranges, merged ranges and defined names.
func (w *Workbook) applyEdit(sheet string, e formula.Edit, remove bool) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s := w.Sheet(sheet)
	if s == nil {
		return fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}
	if err := w.MaterializeAll(); err != nil {
		return err
	}
	target := s.Name
	adjust := formula.AdjustInsert
	index := e.InsertIndex
	if remove {
		adjust = formula.AdjustRemove
		index = e.RemoveIndex
	}

	ws, err := w.materialize(s)
	if err != nil {
		return err
	}
	ws.RemapCells(func(ref models.CellRef) (models.CellRef, bool) {
		var ok bool
		if e.Axis == formula.Rows {
			ref.Row, ok = index(ref.Row)
		} else {
			ref.Col, ok = index(ref.Col)
		}
		return ref, ok
	})
	if e.Axis == formula.Rows {
		ws.RemapRows(index)
	} else {
		ws.Columns = remapColumns(ws.Columns, e, remove)
	}
	merges := ws.MergeCells[:0]
	for _, ref := range ws.MergeCells {
		moved := adjust(ref, target, target, e)
		if first, last, ok := strings.Cut(moved, ":"); !ok || first == last || strings.Contains(moved, "#REF!") {
			continue
		}
		merges = append(merges, moved)
	}
	ws.MergeCells = merges

	rewritten := 0
	for _, other := range w.sheets {
		ows, err := w.materialize(other)
		if err != nil {
			return err
		}
		for _, c := range ows.Cells() {
			if other == s {
				rewriteRangeAttr(c.Value, "ref", func(ref string) string { return adjust(ref, target, target, e) })
			}
			f, ok := c.Value.Formula()
			if !ok || f == "" {
				continue
			}
			if moved := adjust(f, other.Name, target, e); moved != f {
				attrs := c.Value.FormulaAttributes()
				c.Value.SetFormula(moved).SetFormulaAttributes(attrs)
				rewritten++
			}
		}
	}

	sheetNames := w.SheetNames()
	for i := range w.DefinedNames {
		dn := &w.DefinedNames[i]
		host := ""
		if dn.LocalSheetID != nil && *dn.LocalSheetID >= 0 && *dn.LocalSheetID < len(sheetNames) {
			host = sheetNames[*dn.LocalSheetID]
		}
		dn.RefersTo = adjust(dn.RefersTo, host, target, e)
	}

	w.fullCalc = true
	w.log.Debug("structural edit",
		zap.String("sheet", target),
		zap.String("axis", e.Axis.String()),
		zap.Bool("remove", remove),
		zap.Int("at", e.At),
		zap.Int("count", e.Count),
		zap.Int("formulas", rewritten))
	return nil
}

// rewriteRangeAttr rewrites the range held in a formula attribute such as the
// ref of a shared or array formula. A range that no longer exists is left
// unchanged.
func rewriteRangeAttr(v *models.CellValue, name string, fn func(string) string) {
	ref, ok := v.FormulaAttribute(name)
	if !ok || ref == "" {
		return
	}
	if moved := fn(ref); moved != ref && !strings.Contains(moved, "#REF!") {
		v.SetFormulaAttribute(name, moved)
	}
}

// remapColumns moves column spans across an edit. Spans that straddle an
// insertion grow; spans inside a removal disappear.
func remapColumns(cols []models.Column, e formula.Edit, remove bool) []models.Column {
	out := cols[:0]
	for _, c := range cols {
		var lo, hi int
		var ok bool
		if remove {
			lo, hi, ok = e.RemoveSpan(c.Min, c.Max)
		} else {
			lo, hi, _ = e.InsertSpan(c.Min, c.Max)
			hi = min(hi, e.Axis.Limit())
			ok = lo <= hi
		}
		if !ok {
			continue
		}
		c.Min, c.Max = lo, hi
		out = append(out, c)
	}
	return out
}
