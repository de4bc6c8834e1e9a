package xlpkg

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/parser"
)

// Extract exports the structured content of every sheet.
func (w *Workbook) Extract(bookName string, opts ExtractOptions) (*models.WorkbookData, error) {
	if err := w.MaterializeAll(); err != nil {
		return nil, err
	}
	var printAreas map[string][]models.PrintArea
	if opts.ShouldIncludePrintAreas() {
		printAreas = w.PrintAreas()
	}

	sheets := make(map[string]models.SheetData, len(w.sheets))
	for _, s := range w.sheets {
		ws, err := w.materialize(s)
		if err != nil {
			return nil, err
		}
		rows, err := parser.ExtractRows(ws, opts.ShouldIncludeLinks())
		if err != nil {
			return nil, NewSheetError(s.Name, s.PartPath, err)
		}
		data := models.SheetData{
			Rows:            rows,
			MergeCells:      ws.MergeCells,
			Comments:        exportComments(ws.Comments),
			TableCandidates: parser.DetectTables(ws, parser.DefaultTableParams()),
			PrintAreas:      printAreas[s.Name],
		}
		if first, last, ok := ws.Dimension(); ok {
			data.Dimension = first.String() + ":" + last.String()
		}
		if opts.Mode != ExtractLight && ws.Drawing != nil {
			for _, shape := range ws.Drawing.Shapes {
				if shouldIncludeShape(shape, opts.Mode) {
					data.Shapes = append(data.Shapes, shape)
				}
			}
			data.Charts = ws.Drawing.Charts
		}
		sheets[s.Name] = data
	}

	return &models.WorkbookData{
		BookName:     bookName,
		SheetOrder:   w.SheetNames(),
		Sheets:       sheets,
		DefinedNames: w.DefinedNames,
	}, nil
}

// shouldIncludeShape determines if a shape should be included based on mode.
func shouldIncludeShape(shape models.Shape, mode ExtractMode) bool {
	if mode == ExtractVerbose {
		return true
	}
	// standard mode: include if text exists or is connector/arrow
	return shape.Text != "" || shape.Connector || strings.Contains(shape.Type, "Arrow")
}

func exportComments(comments []models.Comment) []models.CommentData {
	if len(comments) == 0 {
		return nil
	}
	sorted := append([]models.Comment(nil), comments...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Ref.Less(sorted[j].Ref) })
	out := make([]models.CommentData, 0, len(sorted))
	for _, c := range sorted {
		cd := models.CommentData{Cell: c.Ref.String(), Author: c.Author, Text: c.Text.Text()}
		if c.Shape != nil {
			cd.Shape = c.Shape.ID
		}
		out = append(out, cd)
	}
	return out
}

// PrintAreaViews slices every print area of data into its own view.
func PrintAreaViews(data *models.WorkbookData) []models.PrintAreaView {
	var views []models.PrintAreaView
	for _, name := range data.SheetOrder {
		sheet := data.Sheets[name]
		for _, area := range sheet.PrintAreas {
			views = append(views, NewPrintAreaView(data.BookName, name, sheet, area))
		}
	}
	return views
}

// NewPrintAreaView restricts sheet to the rows, columns, shapes and charts
// inside area.
func NewPrintAreaView(bookName, sheetName string, sheet models.SheetData, area models.PrintArea) models.PrintAreaView {
	view := models.PrintAreaView{
		BookName:  bookName,
		SheetName: sheetName,
		Area:      area,
	}

	// Filter rows within area
	for _, row := range sheet.Rows {
		if row.R < area.R1 || row.R > area.R2 {
			continue
		}
		if clipped, ok := clipRow(row, area); ok {
			view.Rows = append(view.Rows, clipped)
		}
	}

	// Filter shapes overlapping area
	for _, shape := range sheet.Shapes {
		if anchorOverlapsArea(shape.Anchor, area) {
			view.Shapes = append(view.Shapes, shape)
		}
	}

	// Filter charts overlapping area
	for _, chart := range sheet.Charts {
		if anchorOverlapsArea(chart.Anchor, area) {
			view.Charts = append(view.Charts, chart)
		}
	}

	return view
}

// clipRow keeps the columns of row inside area.
func clipRow(row models.CellRow, area models.PrintArea) (models.CellRow, bool) {
	out := models.CellRow{R: row.R, C: make(map[string]interface{})}
	inside := func(col string) bool {
		c, err := strconv.Atoi(col)
		return err == nil && c >= area.C1 && c <= area.C2
	}
	for col, v := range row.C {
		if inside(col) {
			out.C[col] = v
		}
	}
	for col, f := range row.F {
		if inside(col) {
			if out.F == nil {
				out.F = make(map[string]string)
			}
			out.F[col] = f
		}
	}
	for col, link := range row.Links {
		if inside(col) {
			if out.Links == nil {
				out.Links = make(map[string]string)
			}
			out.Links[col] = link
		}
	}
	return out, len(out.C) > 0 || len(out.F) > 0
}

// anchorOverlapsArea reports whether an anchored object intersects area.
// Objects without a cell anchor are always included.
func anchorOverlapsArea(a models.Anchor, area models.PrintArea) bool {
	if a.From == nil {
		return true
	}
	to := a.To
	if to == nil {
		to = a.From
	}
	return a.From.Row+1 <= area.R2 && to.Row+1 >= area.R1 &&
		a.From.Col+1 <= area.C2 && to.Col+1 >= area.C1
}
