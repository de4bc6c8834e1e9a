package xlpkg

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/fault"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/opc"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/parser"
	"go.uber.org/zap"
)

// regenerated lists the workbook relationship types whose parts are rebuilt
// from the model on write.
var regenerated = map[string]bool{
	opc.RelTypeWorksheet:     true,
	opc.RelTypeTheme:         true,
	opc.RelTypeStyles:        true,
	opc.RelTypeSharedStrings: true,
	relTypeCalcChain:         true,
}

// relTypeCalcChain is dropped on write; the chain is rebuilt by the
// consuming application.
const relTypeCalcChain = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/calcChain"

// Read opens the package stored in ra. Sheets are materialized according to
// opts.Mode.
func Read(ra io.ReaderAt, size int64, opts Options) (*Workbook, error) {
	return read(ra, size, opts.withDefaults())
}

// ReadLazy opens the package stored in ra without parsing sheet bodies.
func ReadLazy(ra io.ReaderAt, size int64, opts Options) (*Workbook, error) {
	opts.Mode = ModeLazy
	return read(ra, size, opts.withDefaults())
}

// ReadBytes opens an in-memory package.
func ReadBytes(data []byte, opts Options) (*Workbook, error) {
	return Read(bytes.NewReader(data), int64(len(data)), opts)
}

// Open reads the package at path.
func Open(path string, opts Options) (*Workbook, error) {
	return open(path, opts.withDefaults())
}

// OpenLazy reads the package at path without parsing sheet bodies.
func OpenLazy(path string, opts Options) (*Workbook, error) {
	opts.Mode = ModeLazy
	return open(path, opts.withDefaults())
}

func open(path string, opts Options) (*Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fault.IO.Wrap(err, path)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fault.IO.Wrap(err, path)
	}
	// Every part the workbook needs is extracted before read returns.
	return read(f, info.Size(), opts)
}

func read(ra io.ReaderAt, size int64, opts Options) (*Workbook, error) {
	begin := time.Now()
	log := opts.Logger
	a, err := opc.OpenArchive(ra, size)
	if err != nil {
		return nil, err
	}
	manifest, err := opc.ReadManifest(a)
	if err != nil {
		return nil, err
	}
	rootRels, err := opc.Resolve(a, "")
	if err != nil {
		return nil, err
	}
	wbPart, err := opc.OfficeDocument(rootRels)
	if err != nil {
		return nil, err
	}
	log.Debug("resolved workbook part", zap.String("part", wbPart))

	wbData, err := a.ReadRequired(wbPart)
	if err != nil {
		return nil, err
	}
	info, err := parser.ParseWorkbook(wbPart, wbData)
	if err != nil {
		return nil, err
	}
	wbRels, err := opc.Resolve(a, wbPart)
	if err != nil {
		return nil, err
	}

	w := &Workbook{
		DefinedNames:  info.DefinedNames,
		Date1904:      info.Date1904,
		opts:          opts,
		log:           log,
		manifest:      manifest,
		rootRels:      rootRels,
		workbookPart:  wbPart,
		workbookNS:    info.Namespaces,
		workbookExtra: info.Extra,
		resourceParts: make(map[string]string),
		parts:         make(map[string][]byte),
	}
	c := &collector{archive: a, parts: w.parts, seen: make(map[string]bool), log: log}

	if err := w.readResources(a, wbRels); err != nil {
		return nil, err
	}
	for _, rel := range rootRels.List() {
		if rel.Type == opc.RelTypeOfficeDocument || rel.External() {
			continue
		}
		if err := c.collect(rootRels.TargetPath(rel)); err != nil {
			return nil, err
		}
	}
	for _, rel := range wbRels.List() {
		if regenerated[rel.Type] {
			continue
		}
		w.workbookRels = append(w.workbookRels, rel)
		if !rel.External() {
			if err := c.collect(wbRels.TargetPath(rel)); err != nil {
				return nil, err
			}
		}
	}

	for _, entry := range info.Sheets {
		s, err := readSheet(a, wbRels, entry, log)
		if err != nil {
			return nil, err
		}
		w.sheets = append(w.sheets, s)
	}

	if opts.Mode != ModeLazy {
		if err := w.MaterializeAll(); err != nil {
			return nil, err
		}
	}
	log.Debug("read workbook",
		zap.Int("sheets", len(w.sheets)),
		zap.String("mode", string(opts.Mode)),
		zap.Duration("elapsed", time.Since(begin)))
	return w, nil
}

// readResources loads the theme, the stylesheet and the shared string table.
// Each is optional.
func (w *Workbook) readResources(a *opc.Archive, wbRels *opc.Relationships) error {
	load := func(relType string) (string, []byte, error) {
		rel, ok := wbRels.First(relType)
		if !ok || rel.External() {
			return "", nil, nil
		}
		part := wbRels.TargetPath(rel)
		data, ok, err := a.Read(part)
		if err != nil || !ok {
			if !ok {
				w.log.Debug("relationship target absent", zap.String("target", part))
			}
			return "", nil, err
		}
		w.resourceParts[relType] = part
		return part, data, nil
	}

	part, data, err := load(opc.RelTypeTheme)
	if err != nil {
		return err
	}
	if data != nil {
		if w.Theme, err = parser.ParseTheme(part, data); err != nil {
			return err
		}
	}
	part, data, err = load(opc.RelTypeStyles)
	if err != nil {
		return err
	}
	if data != nil {
		if w.Styles, err = parser.ParseStyles(part, data); err != nil {
			return err
		}
	}
	part, data, err = load(opc.RelTypeSharedStrings)
	if err != nil {
		return err
	}
	w.SharedStrings = models.NewSharedStringTable()
	if data != nil {
		if w.SharedStrings, err = parser.ParseSharedStrings(part, data); err != nil {
			return err
		}
	}
	return nil
}

func readSheet(a *opc.Archive, wbRels *opc.Relationships, entry parser.SheetEntry, log *zap.Logger) (*models.Sheet, error) {
	rel, ok := wbRels.Get(entry.RelID)
	if !ok || rel.External() {
		return nil, fault.Format.New("sheet " + entry.Name + ": relationship " + entry.RelID + " has no target")
	}
	if rel.Type != opc.RelTypeWorksheet {
		return nil, fault.Format.New("sheet " + entry.Name + ": unsupported sheet type " + rel.Type)
	}
	part := wbRels.TargetPath(rel)
	body, ok, err := a.Read(part)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fault.Format.New("sheet " + entry.Name + ": missing part " + part)
	}
	rels, err := opc.Resolve(a, part)
	if err != nil {
		return nil, err
	}
	raw := &models.RawWorksheet{PartPath: part, Body: body, Rels: rels, Parts: make(map[string][]byte)}
	c := &collector{archive: a, parts: raw.Parts, seen: map[string]bool{part: true}, log: log}
	for _, r := range rels.List() {
		if r.External() {
			continue
		}
		if err := c.collect(rels.TargetPath(r)); err != nil {
			return nil, err
		}
	}
	s := models.NewRawSheet(entry.Name, entry.SheetID, entry.RelID, raw)
	s.State = entry.State
	log.Debug("cached sheet", zap.String("sheet", entry.Name), zap.String("part", part), zap.Int("parts", len(raw.Parts)))
	return s, nil
}

// collector extracts a part together with its relationship part and every
// internal target reachable from it.
type collector struct {
	archive *opc.Archive
	parts   map[string][]byte
	seen    map[string]bool
	log     *zap.Logger
}

func (c *collector) collect(part string) error {
	if c.seen[part] {
		return nil
	}
	c.seen[part] = true
	data, ok, err := c.archive.Read(part)
	if err != nil {
		return err
	}
	if !ok {
		c.log.Debug("relationship target absent", zap.String("target", part))
		return nil
	}
	c.parts[part] = data

	relsPath := opc.RelsPath(part)
	relsData, ok, err := c.archive.Read(relsPath)
	if err != nil || !ok {
		return err
	}
	c.parts[relsPath] = relsData
	rels, err := opc.ParseRelationships(part, relsData)
	if err != nil {
		return err
	}
	for _, rel := range rels.List() {
		if rel.External() {
			continue
		}
		if err := c.collect(rels.TargetPath(rel)); err != nil {
			return err
		}
	}
	return nil
}
