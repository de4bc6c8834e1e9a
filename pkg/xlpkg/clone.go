package xlpkg

import (
	"fmt"
	"path"
	"strings"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/fault"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/formula"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/opc"
	"go.uber.org/zap"
)

// CloneSheet appends a deep copy of sheet src named dst. Drawings, charts,
// media and other auxiliary parts are duplicated under fresh part names and
// sheet-scoped defined names are copied to the new sheet.
func (w *Workbook) CloneSheet(src, dst string) (*models.Sheet, error) {
	srcIndex := w.sheetIndex(src)
	if srcIndex < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, src)
	}
	if err := w.checkSheetName(dst); err != nil {
		return nil, err
	}
	s := w.sheets[srcIndex]
	ws, err := w.materialize(s)
	if err != nil {
		return nil, err
	}
	clone, err := ws.Clone()
	if err != nil {
		return nil, NewSheetError(s.Name, s.PartPath, err)
	}

	names := newNameSet(w)
	part := names.next("xl/worksheets/sheet%d.xml")
	rename := make(map[string]string)
	parts := make(map[string][]byte, len(clone.Parts))
	for name, data := range clone.Parts {
		if isRelsPart(name) {
			continue
		}
		to := names.next(numberedPattern(name))
		rename[name] = to
		parts[to] = data
		if ct, ok := w.manifest.Overrides[name]; ok {
			w.manifest.Overrides[to] = ct
		}
	}
	for name, data := range clone.Parts {
		if !isRelsPart(name) {
			continue
		}
		owner := relsOwner(name)
		to, ok := rename[owner]
		if !ok {
			continue
		}
		rels, err := opc.ParseRelationships(owner, data)
		if err != nil {
			return nil, err
		}
		out, err := retarget(rels, to, rename).Marshal()
		if err != nil {
			return nil, fault.Format.Wrap(err, name)
		}
		parts[opc.RelsPath(to)] = out
	}
	clone.Parts = parts
	if clone.Rels != nil {
		clone.Rels = retarget(clone.Rels, part, rename)
	}
	if d := clone.Drawing; d != nil {
		if to, ok := rename[d.Part]; ok {
			d.Part = to
		}
		for i := range d.Charts {
			if to, ok := rename[d.Charts[i].Part]; ok {
				d.Charts[i].Part = to
			}
		}
	}

	sheet := models.NewMaterializedSheet(dst, w.nextSheetID(), clone)
	sheet.PartPath = part
	w.sheets = append(w.sheets, sheet)
	w.copyLocalNames(srcIndex, len(w.sheets)-1, s.Name, dst)
	w.log.Debug("cloned sheet", zap.String("from", s.Name), zap.String("to", dst), zap.Int("parts", len(parts)))
	return sheet, nil
}

// copyLocalNames duplicates the names scoped to sheet from for sheet to,
// requalifying references to the source sheet.
func (w *Workbook) copyLocalNames(from, to int, fromName, toName string) {
	oldPrefix := formula.QuoteSheet(fromName) + "!"
	newPrefix := formula.QuoteSheet(toName) + "!"
	for _, dn := range w.DefinedNames {
		if dn.LocalSheetID == nil || *dn.LocalSheetID != from {
			continue
		}
		id := to
		dn.LocalSheetID = &id
		dn.RefersTo = strings.ReplaceAll(dn.RefersTo, oldPrefix, newPrefix)
		w.DefinedNames = append(w.DefinedNames, dn)
	}
}

// retarget copies rels for a new owning part, pointing targets at renamed
// parts.
func retarget(rels *opc.Relationships, source string, rename map[string]string) *opc.Relationships {
	out := opc.NewRelationships(source)
	for _, rel := range rels.List() {
		if !rel.External() {
			target := rels.TargetPath(rel)
			if to, ok := rename[target]; ok {
				target = to
			}
			rel.Target = opc.RelativeTarget(source, target)
		}
		out.Put(rel)
	}
	return out
}

func isRelsPart(name string) bool {
	return strings.HasSuffix(name, ".rels") && strings.Contains(name, "_rels/")
}

// relsOwner is the inverse of opc.RelsPath.
func relsOwner(relsPath string) string {
	dir, file := path.Split(relsPath)
	return strings.TrimSuffix(dir, "_rels/") + strings.TrimSuffix(file, ".rels")
}
