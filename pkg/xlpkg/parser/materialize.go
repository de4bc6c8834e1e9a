package parser

import (
	"time"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/opc"
	"go.uber.org/zap"
)

// Resources are the workbook-wide parts a worksheet parse reads from.
type Resources struct {
	Theme         *models.Theme
	Styles        *models.Stylesheet
	SharedStrings *models.SharedStringTable
	Logger        *zap.Logger
}

func (r Resources) withDefaults() Resources {
	if r.Logger == nil {
		r.Logger = zap.NewNop()
	}
	if r.SharedStrings == nil {
		r.SharedStrings = models.NewSharedStringTable()
	}
	return r
}

// Materialize parses a raw sheet into its worksheet model. Calling it on a
// sheet that is already materialized returns the existing worksheet.
func Materialize(sheet *models.Sheet, res Resources) (*models.Worksheet, error) {
	res = res.withDefaults()
	return sheet.Materialize(func(raw *models.RawWorksheet) (*models.Worksheet, error) {
		begin := time.Now()
		ws, err := build(raw, res)
		if err != nil {
			return nil, err
		}
		res.Logger.Debug("materialized sheet",
			zap.String("sheet", sheet.Name),
			zap.Int("cells", ws.CellCount()),
			zap.Duration("elapsed", time.Since(begin)))
		return ws, nil
	})
}

func build(raw *models.RawWorksheet, res Resources) (*models.Worksheet, error) {
	ws, err := ParseWorksheet(raw.PartPath, raw.Body, res)
	if err != nil {
		return nil, err
	}
	rels := raw.Rels
	if rels == nil {
		rels = opc.NewRelationships(raw.PartPath)
	}
	parts := raw.Parts
	if parts == nil {
		parts = make(map[string][]byte)
	}
	l := &linker{ws: ws, rels: rels, parts: parts, log: res.Logger}

	// Comments must be anchored before note shapes can attach to them.
	if err := l.drawings(); err != nil {
		return nil, err
	}
	if err := l.comments(); err != nil {
		return nil, err
	}
	if err := l.vml(); err != nil {
		return nil, err
	}
	ws.Rels = rels
	ws.Parts = parts
	return ws, nil
}

// linker resolves a sheet's relationships against its cached parts.
type linker struct {
	ws    *models.Worksheet
	rels  *opc.Relationships
	parts map[string][]byte
	log   *zap.Logger
}

// target returns the part bytes of the relationship id, or of the first
// internal relationship of relType when id is empty.
func (l *linker) target(relType, id string) (string, []byte, bool) {
	for _, rel := range l.rels.ByType(relType) {
		if rel.External() || (id != "" && rel.ID != id) {
			continue
		}
		part := l.rels.TargetPath(rel)
		data, ok := l.parts[part]
		if !ok {
			l.log.Debug("relationship target absent", zap.String("source", l.rels.Source), zap.String("target", part))
			continue
		}
		return part, data, true
	}
	return "", nil, false
}

func (l *linker) drawings() error {
	part, data, ok := l.target(opc.RelTypeDrawing, l.ws.DrawingRelID)
	if !ok {
		return nil
	}
	drawingRels := opc.NewRelationships(part)
	if relsData, ok := l.parts[opc.RelsPath(part)]; ok {
		var err error
		if drawingRels, err = opc.ParseRelationships(part, relsData); err != nil {
			return err
		}
	}
	d, err := ParseDrawing(part, data, drawingRels, l.parts)
	if err != nil {
		return err
	}
	l.ws.Drawing = d
	return nil
}

func (l *linker) comments() error {
	part, data, ok := l.target(opc.RelTypeComments, "")
	if !ok {
		return nil
	}
	comments, err := ParseComments(part, data)
	if err != nil {
		return err
	}
	l.ws.Comments = comments
	return nil
}

func (l *linker) vml() error {
	part, data, ok := l.target(opc.RelTypeVMLDrawing, l.ws.LegacyDrawingRelID)
	if !ok {
		return nil
	}
	shapes, err := ParseVML(part, data)
	if err != nil {
		return err
	}
	for i := range shapes {
		s := shapes[i]
		if s.ObjectType == "Note" && s.Row >= 0 && s.Column >= 0 {
			if c := l.ws.CommentAt(models.CellRef{Col: s.Column + 1, Row: s.Row + 1}); c != nil {
				c.Shape = &s
				continue
			}
			l.log.Debug("note shape without comment", zap.String("part", part), zap.String("shape", s.ID))
			continue
		}
		l.ws.FormControls = append(l.ws.FormControls, s)
	}
	return nil
}
