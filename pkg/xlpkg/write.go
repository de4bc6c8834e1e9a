package xlpkg

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/fault"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/opc"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/writer"
	"go.uber.org/zap"
)

// Write serializes the workbook as a spreadsheet package. Every sheet is
// materialized first.
func (w *Workbook) Write(out io.Writer) error {
	if err := w.MaterializeAll(); err != nil {
		return err
	}
	w.SharedStrings.ResetCount()

	m := writer.NewManager(w.manifest, w.log)
	names := newNameSet(w)
	wbPart := w.workbookPart
	wbRels := opc.NewRelationships(wbPart)
	// Passthrough relationships keep their ids; preserved workbook markup such
	// as externalReferences and pivotCaches refers to them.
	for _, rel := range w.workbookRels {
		wbRels.Put(rel)
	}

	refs := make([]writer.SheetRef, 0, len(w.sheets))
	for i, s := range w.sheets {
		ws, err := w.materialize(s)
		if err != nil {
			return err
		}
		if s.PartPath == "" || names.sheets[s.PartPath] {
			s.PartPath = names.next("xl/worksheets/sheet%d.xml")
		}
		names.sheets[s.PartPath] = true
		s.RelID = wbRels.Add(opc.RelTypeWorksheet, opc.RelativeTarget(wbPart, s.PartPath))
		refs = append(refs, writer.SheetRef{Name: s.Name, SheetID: s.SheetID, RelID: s.RelID, State: s.State})

		if err := w.writeSheet(m, names, i+1, s.PartPath, ws); err != nil {
			return NewSheetError(s.Name, s.PartPath, err)
		}
	}

	stylesPart := w.resourcePart(opc.RelTypeStyles, defaultStylesPart)
	styles := w.Styles.Raw()
	if styles == nil {
		styles = []byte(writer.DefaultStyles)
	}
	m.Add(stylesPart, styles, opc.ContentTypeStyles)
	wbRels.Add(opc.RelTypeStyles, opc.RelativeTarget(wbPart, stylesPart))

	themePart := w.resourcePart(opc.RelTypeTheme, defaultThemePart)
	theme := w.Theme.Raw()
	if theme == nil {
		theme = []byte(writer.DefaultTheme)
	}
	m.Add(themePart, theme, opc.ContentTypeTheme)
	wbRels.Add(opc.RelTypeTheme, opc.RelativeTarget(wbPart, themePart))

	// Sheets have registered every string by now.
	if w.SharedStrings.Len() > 0 {
		sstPart := w.resourcePart(opc.RelTypeSharedStrings, defaultStringsPart)
		m.Add(sstPart, writer.SharedStringsPart(w.SharedStrings), opc.ContentTypeSharedStrings)
		wbRels.Add(opc.RelTypeSharedStrings, opc.RelativeTarget(wbPart, sstPart))
	}

	m.Add(wbPart, writer.WorkbookPart(writer.WorkbookSpec{
		Namespaces:     w.workbookNS,
		Extra:          w.workbookExtra,
		Sheets:         refs,
		DefinedNames:   w.DefinedNames,
		FullCalcOnLoad: w.fullCalc,
	}), opc.ContentTypeWorkbook)
	if err := addRels(m, wbRels); err != nil {
		return err
	}

	root := opc.NewRelationships("")
	office := false
	for _, rel := range w.rootRels.List() {
		if rel.Type == opc.RelTypeOfficeDocument {
			if office {
				continue
			}
			office = true
			rel.Target = wbPart
		}
		root.Put(rel)
	}
	if !office {
		root.Add(opc.RelTypeOfficeDocument, wbPart)
	}
	if err := addRels(m, root); err != nil {
		return err
	}

	for name, data := range w.parts {
		m.Add(name, data, "")
	}
	if err := m.Write(out); err != nil {
		return err
	}
	w.log.Debug("wrote workbook", zap.Int("sheets", len(w.sheets)), zap.Int("sharedStrings", w.SharedStrings.Len()))
	return nil
}

// WriteBytes returns the serialized package.
func (w *Workbook) WriteBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := w.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the package to path.
func (w *Workbook) Save(path string) error {
	data, err := w.WriteBytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fault.IO.Wrap(err, path)
	}
	return nil
}

func (w *Workbook) resourcePart(relType, fallback string) string {
	if part, ok := w.resourceParts[relType]; ok {
		return part
	}
	return fallback
}

func addRels(m *writer.Manager, rels *opc.Relationships) error {
	if rels.Len() == 0 {
		return nil
	}
	data, err := rels.Marshal()
	if err != nil {
		return fault.Format.Wrap(err, opc.RelsPath(rels.Source))
	}
	m.Add(opc.RelsPath(rels.Source), data, "")
	return nil
}

// writeSheet adds a worksheet with its relationships and auxiliary parts.
// Comments and the legacy drawing that displays them are rebuilt from the
// model; everything else the sheet reaches is carried through.
func (w *Workbook) writeSheet(m *writer.Manager, names *nameSet, index int, part string, ws *models.Worksheet) error {
	rels := opc.NewRelationships(part)
	skip := make(map[string]bool)
	var commentsPart, vmlPart string
	if ws.Rels != nil {
		for _, rel := range ws.Rels.List() {
			target := ""
			if !rel.External() {
				target = ws.Rels.TargetPath(rel)
			}
			switch {
			case rel.Type == opc.RelTypeComments:
				commentsPart = target
				skip[target] = true
				continue
			case rel.Type == opc.RelTypeVMLDrawing && rel.ID == ws.LegacyDrawingRelID:
				vmlPart = target
				skip[target] = true
				skip[opc.RelsPath(target)] = true
				continue
			}
			if !rel.External() && opc.ResolveTarget(part, rel.Target) != target {
				rel.Target = opc.RelativeTarget(part, target)
			}
			rels.Put(rel)
		}
	}

	ws.LegacyDrawingRelID = ""
	if len(ws.Comments) > 0 || len(ws.FormControls) > 0 {
		if vmlPart == "" || names.taken(vmlPart) {
			vmlPart = names.next("xl/drawings/vmlDrawing%d.vml")
		}
		names.claim(vmlPart)
		ws.LegacyDrawingRelID = rels.Add(opc.RelTypeVMLDrawing, opc.RelativeTarget(part, vmlPart))
		m.Add(vmlPart, writer.VMLPart(index, ws.Comments, ws.FormControls), opc.ContentTypeVML)
	}
	if len(ws.Comments) > 0 {
		if commentsPart == "" || names.taken(commentsPart) {
			commentsPart = names.next("xl/comments%d.xml")
		}
		names.claim(commentsPart)
		rels.Add(opc.RelTypeComments, opc.RelativeTarget(part, commentsPart))
		m.Add(commentsPart, writer.CommentsPart(ws.Comments), opc.ContentTypeComments)
	}

	m.Add(part, writer.WorksheetPart(ws, w.SharedStrings), opc.ContentTypeWorksheet)
	for name, data := range ws.Parts {
		if skip[name] || m.Has(name) {
			continue
		}
		m.Add(name, data, "")
	}
	ws.Rels = rels
	return addRels(m, rels)
}

// nameSet tracks the part names in use by a workbook so new parts get
// fresh numbered names. Names are compared case-insensitively.
type nameSet struct {
	used    map[string]bool
	claimed map[string]bool
	sheets  map[string]bool
}

func newNameSet(w *Workbook) *nameSet {
	n := &nameSet{used: make(map[string]bool), claimed: make(map[string]bool), sheets: make(map[string]bool)}
	for name := range w.parts {
		n.used[strings.ToLower(name)] = true
	}
	for _, part := range w.resourceParts {
		n.used[strings.ToLower(part)] = true
	}
	for _, s := range w.sheets {
		if s.PartPath != "" {
			n.used[strings.ToLower(s.PartPath)] = true
		}
		for name := range sheetParts(s) {
			n.used[strings.ToLower(name)] = true
		}
	}
	return n
}

// taken reports whether name was claimed during this write.
func (n *nameSet) taken(name string) bool {
	return n.claimed[strings.ToLower(name)]
}

func (n *nameSet) claim(name string) {
	n.used[strings.ToLower(name)] = true
	n.claimed[strings.ToLower(name)] = true
}

// next returns the first unused name produced by pattern, which holds one
// %d verb, and claims it.
func (n *nameSet) next(pattern string) string {
	for i := 1; ; i++ {
		name := fmt.Sprintf(pattern, i)
		if !n.used[strings.ToLower(name)] {
			n.claim(name)
			return name
		}
	}
}

// sheetParts returns the auxiliary parts of a sheet in either state.
func sheetParts(s *models.Sheet) map[string][]byte {
	switch c := s.Content().(type) {
	case models.Unmaterialized:
		return c.Raw.Parts
	case models.Materialized:
		return c.Worksheet.Parts
	}
	return nil
}

// numberedPattern turns "xl/drawings/drawing3.xml" into
// "xl/drawings/drawing%d.xml".
func numberedPattern(name string) string {
	dir, file := path.Split(name)
	ext := path.Ext(file)
	base := strings.TrimRight(strings.TrimSuffix(file, ext), "0123456789")
	return dir + strings.ReplaceAll(base, "%", "%%") + "%d" + ext
}
