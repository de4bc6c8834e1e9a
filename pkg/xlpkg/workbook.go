package xlpkg

import (
	"fmt"
	"strings"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/opc"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/parser"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultWorkbookPart = "xl/workbook.xml"
	defaultStylesPart   = "xl/styles.xml"
	defaultThemePart    = "xl/theme/theme1.xml"
	defaultStringsPart  = "xl/sharedStrings.xml"
	maxSheetNameLength  = 31
)

// Workbook is an open spreadsheet package: the ordered sheet list, the
// workbook-wide resources and the package parts carried through on write.
type Workbook struct {
	Theme         *models.Theme
	Styles        *models.Stylesheet
	SharedStrings *models.SharedStringTable
	DefinedNames  []models.DefinedName
	Date1904      bool

	sheets []*models.Sheet
	opts   Options
	log    *zap.Logger

	manifest      *opc.ContentTypes
	rootRels      *opc.Relationships
	workbookPart  string
	workbookNS    []models.Attr
	workbookExtra []models.Fragment

	// resourceParts maps theme, styles and shared strings relationship types
	// to the part names they were read from.
	resourceParts map[string]string
	// workbookRels are workbook relationships carried through unchanged,
	// such as custom XML or a VBA project.
	workbookRels []opc.Relationship
	// parts holds passthrough part bytes by part name.
	parts map[string][]byte

	fullCalc bool
}

// NewWorkbook returns an empty workbook with no sheets.
func NewWorkbook(opts Options) *Workbook {
	opts = opts.withDefaults()
	root := opc.NewRelationships("")
	root.Add(opc.RelTypeOfficeDocument, defaultWorkbookPart)
	return &Workbook{
		SharedStrings: models.NewSharedStringTable(),
		opts:          opts,
		log:           opts.Logger,
		manifest:      opc.NewContentTypes(),
		rootRels:      root,
		workbookPart:  defaultWorkbookPart,
		resourceParts: make(map[string]string),
		parts:         make(map[string][]byte),
	}
}

// Sheets returns the sheets in workbook order.
func (w *Workbook) Sheets() []*models.Sheet {
	return append([]*models.Sheet(nil), w.sheets...)
}

// SheetNames returns the sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.sheets))
	for i, s := range w.sheets {
		names[i] = s.Name
	}
	return names
}

// Sheet returns the sheet with name, compared case-insensitively, or nil.
func (w *Workbook) Sheet(name string) *models.Sheet {
	if i := w.sheetIndex(name); i >= 0 {
		return w.sheets[i]
	}
	return nil
}

// SheetAt returns the sheet at the 0-based position i, or nil.
func (w *Workbook) SheetAt(i int) *models.Sheet {
	if i < 0 || i >= len(w.sheets) {
		return nil
	}
	return w.sheets[i]
}

func (w *Workbook) sheetIndex(name string) int {
	for i, s := range w.sheets {
		if strings.EqualFold(s.Name, name) {
			return i
		}
	}
	return -1
}

// Worksheet returns the parsed content of the named sheet, materializing it
// on first access.
func (w *Workbook) Worksheet(name string) (*models.Worksheet, error) {
	s := w.Sheet(name)
	if s == nil {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	return w.materialize(s)
}

func (w *Workbook) materialize(s *models.Sheet) (*models.Worksheet, error) {
	ws, err := parser.Materialize(s, w.resources())
	if err != nil {
		return nil, NewSheetError(s.Name, s.PartPath, err)
	}
	return ws, nil
}

func (w *Workbook) resources() parser.Resources {
	return parser.Resources{
		Theme:         w.Theme,
		Styles:        w.Styles,
		SharedStrings: w.SharedStrings,
		Logger:        w.log,
	}
}

// MaterializeAll parses every sheet that is still raw, up to
// Options.Parallelism at a time. The first failure is returned; sheets that
// failed stay raw.
func (w *Workbook) MaterializeAll() error {
	var g errgroup.Group
	g.SetLimit(w.opts.Parallelism)
	for _, s := range w.sheets {
		if s.IsMaterialized() {
			continue
		}
		g.Go(func() error {
			_, err := w.materialize(s)
			return err
		})
	}
	return g.Wait()
}

// AddSheet appends an empty sheet.
func (w *Workbook) AddSheet(name string) (*models.Sheet, error) {
	if err := w.checkSheetName(name); err != nil {
		return nil, err
	}
	s := models.NewMaterializedSheet(name, w.nextSheetID(), models.NewWorksheet())
	w.sheets = append(w.sheets, s)
	w.log.Debug("added sheet", zap.String("sheet", name), zap.Int("sheetId", s.SheetID))
	return s, nil
}

func (w *Workbook) nextSheetID() int {
	id := 0
	for _, s := range w.sheets {
		id = max(id, s.SheetID)
	}
	return id + 1
}

func (w *Workbook) checkSheetName(name string) error {
	if name == "" || len([]rune(name)) > maxSheetNameLength ||
		strings.ContainsAny(name, `:\/?*[]`) ||
		strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'") {
		return fmt.Errorf("%w: %q", ErrInvalidSheetName, name)
	}
	if w.sheetIndex(name) >= 0 {
		return fmt.Errorf("%w: %q", ErrSheetExists, name)
	}
	return nil
}

// SetCellValue stores value in the cell of sheet named by an A1 reference.
// Strings are stored verbatim; numbers, booleans and rich text keep their
// type; nil clears the cell. Other values are stored by their text with
// type inference.
func (w *Workbook) SetCellValue(sheet, cell string, value any) error {
	ws, err := w.Worksheet(sheet)
	if err != nil {
		return err
	}
	ref, err := models.ParseCellRef(cell)
	if err != nil {
		return err
	}
	if value == nil {
		ws.RemoveCell(ref)
		return nil
	}
	v := ws.EnsureCell(ref).Value
	switch x := value.(type) {
	case string:
		v.SetString(x)
	case bool:
		v.SetBool(x)
	case int:
		v.SetNumber(float64(x))
	case int64:
		v.SetNumber(float64(x))
	case float32:
		v.SetNumber(float64(x))
	case float64:
		v.SetNumber(x)
	case models.RichText:
		v.SetRichText(x)
	default:
		v.SetValue(fmt.Sprint(x))
	}
	return nil
}

// SetCellFormula stores a formula in the cell; any cached result is dropped.
func (w *Workbook) SetCellFormula(sheet, cell, formula string) error {
	ws, err := w.Worksheet(sheet)
	if err != nil {
		return err
	}
	ref, err := models.ParseCellRef(cell)
	if err != nil {
		return err
	}
	ws.EnsureCell(ref).Value.SetFormula(formula)
	w.fullCalc = true
	return nil
}

// GetCellValue returns the display text of a cell, or "" for an empty cell.
func (w *Workbook) GetCellValue(sheet, cell string) (string, error) {
	ws, err := w.Worksheet(sheet)
	if err != nil {
		return "", err
	}
	ref, err := models.ParseCellRef(cell)
	if err != nil {
		return "", err
	}
	c := ws.Cell(ref)
	if c == nil {
		return "", nil
	}
	return c.Value.DisplayValue(), nil
}

// PrintAreas returns the print areas of every sheet that defines one.
func (w *Workbook) PrintAreas() map[string][]models.PrintArea {
	return parser.PrintAreas(w.DefinedNames, w.SheetNames())
}
