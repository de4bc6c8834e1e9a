package xlpkg

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/xlpkg-go/internal/fixture"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/fault"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/opc"
	"github.com/xuri/excelize/v2"
)

const (
	relsNS      = `http://schemas.openxmlformats.org/package/2006/relationships`
	relTypeBase = `http://schemas.openxmlformats.org/officeDocument/2006/relationships/`
)

// twoSheets is a package with a Data sheet and an Other sheet whose
// formulas point into Data.
func twoSheets(tail ...string) map[string]string {
	return fixture.Package(fixture.SharedStrings("name"),
		fixture.Sheet{Name: "Data", Body: fixture.Worksheet(
			`<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1"><v>42</v></c></row>`+
				`<row r="5"><c r="A5"><v>5</v></c><c r="B5"><f>Data!A5*2</f><v>10</v></c></row>`,
			tail...)},
		fixture.Sheet{Name: "Other", Data: `<row r="1"><c r="A1"><f>Data!A5+1</f><v>6</v></c>` +
			`<c r="B1"><f>SUM(A5:A6)</f><v>0</v></c></row>`},
	)
}

const commentsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<comments xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">` +
	`<authors><author>alice</author></authors>` +
	`<commentList><comment ref="B2" authorId="0"><text><t>note</t></text></comment></commentList>` +
	`</comments>`

const vmlXML = `<xml xmlns:v="urn:schemas-microsoft-com:vml" xmlns:o="urn:schemas-microsoft-com:office:office" xmlns:x="urn:schemas-microsoft-com:office:excel">` +
	`<o:shapelayout v:ext="edit"><o:idmap v:ext="edit" data="1"/></o:shapelayout>` +
	`<v:shapetype id="_x0000_t202" coordsize="21600,21600" o:spt="202" path="m,l,21600r21600,l21600,xe"/>` +
	`<v:shape id="_x0000_s1025" type="#_x0000_t202" style="position:absolute;visibility:hidden">` +
	`<v:textbox><div>note</div></v:textbox>` +
	`<x:ClientData ObjectType="Note"><x:MoveWithCells/><x:Anchor>2, 15, 0, 10, 4, 15, 4, 4</x:Anchor><x:Row>1</x:Row><x:Column>1</x:Column></x:ClientData>` +
	`</v:shape>` +
	`<v:shape id="_x0000_s1026" type="#_x0000_t201" style="position:absolute">` +
	`<x:ClientData ObjectType="Button"><x:Anchor>5, 0, 5, 0, 7, 0, 7, 0</x:Anchor></x:ClientData>` +
	`</v:shape></xml>`

const drawingXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<xdr:wsDr xmlns:xdr="http://schemas.openxmlformats.org/drawingml/2006/spreadsheetDrawing" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">` +
	`<xdr:twoCellAnchor>` +
	`<xdr:from><xdr:col>1</xdr:col><xdr:colOff>0</xdr:colOff><xdr:row>1</xdr:row><xdr:rowOff>0</xdr:rowOff></xdr:from>` +
	`<xdr:to><xdr:col>3</xdr:col><xdr:colOff>0</xdr:colOff><xdr:row>4</xdr:row><xdr:rowOff>0</xdr:rowOff></xdr:to>` +
	`<xdr:sp><xdr:nvSpPr><xdr:cNvPr id="2" name="Box"/><xdr:cNvSpPr/></xdr:nvSpPr>` +
	`<xdr:spPr><a:xfrm><a:off x="952500" y="190500"/><a:ext cx="1905000" cy="571500"/></a:xfrm><a:prstGeom prst="rect"/></xdr:spPr>` +
	`<xdr:txBody><a:p><a:r><a:t>Hello</a:t></a:r></a:p></xdr:txBody></xdr:sp>` +
	`<xdr:clientData/></xdr:twoCellAnchor></xdr:wsDr>`

// annotated is a one-sheet package whose sheet carries a drawing, a note
// and a form control.
func annotated() map[string]string {
	rels := `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="` + relsNS + `">` +
		`<Relationship Id="rId1" Type="` + relTypeBase + `comments" Target="../comments1.xml"/>` +
		`<Relationship Id="rId2" Type="` + relTypeBase + `vmlDrawing" Target="../drawings/vmlDrawing1.vml"/>` +
		`<Relationship Id="rId3" Type="` + relTypeBase + `drawing" Target="../drawings/drawing1.xml"/>` +
		`</Relationships>`
	return fixture.Package(fixture.SharedStrings("name"), fixture.Sheet{
		Name: "Data",
		Body: fixture.Worksheet(
			`<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1"><v>42</v></c></row>`+
				`<row r="3"><c r="C3"><v>7</v></c></row>`,
			`<drawing r:id="rId3"/><legacyDrawing r:id="rId2"/>`),
		Rels: rels,
		Parts: map[string]string{
			"xl/comments1.xml":            commentsXML,
			"xl/drawings/vmlDrawing1.vml": vmlXML,
			"xl/drawings/drawing1.xml":    drawingXML,
		},
	})
}

func readParts(t *testing.T, parts map[string]string, opts Options) *Workbook {
	t.Helper()
	w, err := ReadBytes(fixture.Zip(parts), opts)
	require.NoError(t, err)
	return w
}

func reread(t *testing.T, w *Workbook) (*Workbook, []byte) {
	t.Helper()
	data, err := w.WriteBytes()
	require.NoError(t, err)
	out, err := ReadBytes(data, Options{})
	require.NoError(t, err)
	return out, data
}

func partText(t *testing.T, pkg []byte, name string) string {
	t.Helper()
	a, err := opc.OpenArchiveBytes(pkg)
	require.NoError(t, err)
	data, ok, err := a.Read(name)
	require.NoError(t, err)
	require.True(t, ok, "part %s present", name)
	return string(data)
}

func formulaAt(t *testing.T, w *Workbook, sheet, cell string) string {
	t.Helper()
	ws, err := w.Worksheet(sheet)
	require.NoError(t, err)
	c := ws.CellByName(cell)
	require.NotNil(t, c, "%s!%s", sheet, cell)
	f, ok := c.Value.Formula()
	require.True(t, ok, "%s!%s holds a formula", sheet, cell)
	return f
}

func TestReadEager(t *testing.T) {
	w := readParts(t, twoSheets(), Options{})
	assert.Equal(t, []string{"Data", "Other"}, w.SheetNames())
	for _, s := range w.Sheets() {
		assert.True(t, s.IsMaterialized(), s.Name)
	}
	assert.NotNil(t, w.Styles)
	assert.NotNil(t, w.Theme)
	assert.Equal(t, 1, w.SharedStrings.Len())

	tests := []struct {
		sheet, cell, want string
	}{
		{"Data", "A1", "name"},
		{"Data", "B1", "42"},
		{"Data", "B5", "10"},
		{"data", "A5", "5"},
		{"Other", "A1", "6"},
		{"Other", "Z9", ""},
	}
	for _, tt := range tests {
		got, err := w.GetCellValue(tt.sheet, tt.cell)
		require.NoError(t, err)
		if got != tt.want {
			t.Errorf("GetCellValue(%s, %s) = %q, want %q", tt.sheet, tt.cell, got, tt.want)
		}
	}

	_, err := w.GetCellValue("Missing", "A1")
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestReadLazy(t *testing.T) {
	data := fixture.Zip(twoSheets())
	w, err := ReadLazy(bytes.NewReader(data), int64(len(data)), Options{})
	require.NoError(t, err)
	for _, s := range w.Sheets() {
		assert.False(t, s.IsMaterialized(), s.Name)
	}

	ws, err := w.Worksheet("other")
	require.NoError(t, err)
	assert.True(t, w.Sheet("Other").IsMaterialized())
	assert.False(t, w.Sheet("Data").IsMaterialized(), "untouched sheets stay raw")

	again, err := w.Worksheet("Other")
	require.NoError(t, err)
	assert.Same(t, ws, again)

	require.NoError(t, w.MaterializeAll())
	assert.True(t, w.Sheet("Data").IsMaterialized())
}

func TestReadMissingSheetTarget(t *testing.T) {
	parts := twoSheets()
	parts["xl/workbook.xml"] = strings.Replace(parts["xl/workbook.xml"], `r:id="rId2"`, `r:id="rId99"`, 1)
	w, err := ReadBytes(fixture.Zip(parts), Options{})
	require.Error(t, err)
	assert.Nil(t, w)
	assert.True(t, fault.Is(fault.Format, err), "got %v", err)

	parts = twoSheets()
	delete(parts, "xl/worksheets/sheet2.xml")
	_, err = ReadBytes(fixture.Zip(parts), Options{Mode: ModeLazy})
	assert.True(t, fault.Is(fault.Format, err), "got %v", err)
}

func TestReadBrokenSheet(t *testing.T) {
	parts := twoSheets()
	parts["xl/worksheets/sheet2.xml"] = fixture.Worksheet(`<row r="1"><c r="A1"><v>1</v>`)

	_, err := ReadBytes(fixture.Zip(parts), Options{})
	require.Error(t, err)
	assert.True(t, fault.Is(fault.Markup, err), "got %v", err)
	var sheetErr *SheetError
	require.True(t, errors.As(err, &sheetErr))
	assert.Equal(t, "Other", sheetErr.Sheet)
	assert.Equal(t, "xl/worksheets/sheet2.xml", sheetErr.Part)

	w, err := ReadBytes(fixture.Zip(parts), Options{Mode: ModeLazy})
	require.NoError(t, err, "lazy reads defer sheet parsing")
	_, err = w.Worksheet("Data")
	require.NoError(t, err)
	_, err = w.Worksheet("Other")
	assert.True(t, fault.Is(fault.Markup, err), "got %v", err)
	assert.False(t, w.Sheet("Other").IsMaterialized(), "a failed parse leaves the sheet raw")

	_, err = w.WriteBytes()
	assert.Error(t, err)
}

func TestReadNotAPackage(t *testing.T) {
	_, err := ReadBytes([]byte("plain text, not a zip"), Options{})
	assert.True(t, fault.Is(fault.Archive, err), "got %v", err)
}

func TestWriteRoundTrip(t *testing.T) {
	w := readParts(t, twoSheets(), Options{Parallelism: 1})
	out, pkg := reread(t, w)

	assert.Equal(t, w.SheetNames(), out.SheetNames())
	for _, name := range w.SheetNames() {
		before, err := w.Worksheet(name)
		require.NoError(t, err)
		after, err := out.Worksheet(name)
		require.NoError(t, err)
		require.Equal(t, before.CellCount(), after.CellCount(), name)
		for _, c := range before.Cells() {
			got := after.Cell(c.Ref)
			require.NotNil(t, got, "%s!%s", name, c.Ref)
			assert.Equal(t, c.Value.DisplayValue(), got.Value.DisplayValue(), "%s!%s", name, c.Ref)
			f, _ := c.Value.Formula()
			g, _ := got.Value.Formula()
			assert.Equal(t, f, g, "%s!%s", name, c.Ref)
		}
	}

	assert.Contains(t, partText(t, pkg, "xl/sharedStrings.xml"), `count="1" uniqueCount="1"`)
	assert.Equal(t, fixture.Styles, partText(t, pkg, "xl/styles.xml"), "the stylesheet is carried through")
	assert.NotContains(t, partText(t, pkg, "xl/workbook.xml"), "fullCalcOnLoad")

	again, err := w.WriteBytes()
	require.NoError(t, err)
	assert.Equal(t, pkg, again, "writing twice gives identical bytes")
}

func TestNewWorkbook(t *testing.T) {
	w := NewWorkbook(Options{})
	_, err := w.AddSheet("Sheet1")
	require.NoError(t, err)
	for i := 1; i <= 10; i++ {
		require.NoError(t, w.SetCellValue("Sheet1", fmt.Sprintf("A%d", i), "same"))
	}
	require.NoError(t, w.SetCellValue("Sheet1", "B1", 3.5))
	require.NoError(t, w.SetCellValue("Sheet1", "C1", true))
	require.NoError(t, w.SetCellValue("Sheet1", "D1", 12))
	require.NoError(t, w.SetCellValue("Sheet1", "D1", nil))

	out, pkg := reread(t, w)
	assert.Contains(t, partText(t, pkg, "xl/sharedStrings.xml"), `count="10" uniqueCount="1"`)
	assert.Equal(t, 1, out.SharedStrings.Len())

	tests := []struct {
		cell, want string
	}{
		{"A1", "same"},
		{"A10", "same"},
		{"B1", "3.5"},
		{"C1", "true"},
		{"D1", ""},
	}
	for _, tt := range tests {
		got, err := out.GetCellValue("Sheet1", tt.cell)
		require.NoError(t, err)
		if got != tt.want {
			t.Errorf("GetCellValue(%s) = %q, want %q", tt.cell, got, tt.want)
		}
	}
}

func TestWriteOmitsEmptySharedStrings(t *testing.T) {
	w := NewWorkbook(Options{})
	_, err := w.AddSheet("Sheet1")
	require.NoError(t, err)
	require.NoError(t, w.SetCellValue("Sheet1", "A1", 1))
	require.NoError(t, w.SetCellValue("Sheet1", "B1", 2.5))

	_, pkg := reread(t, w)
	a, err := opc.OpenArchiveBytes(pkg)
	require.NoError(t, err)
	assert.NotContains(t, a.Names(), "xl/sharedStrings.xml")
	assert.NotContains(t, partText(t, pkg, "[Content_Types].xml"), "sharedStrings")
	assert.NotContains(t, partText(t, pkg, "xl/_rels/workbook.xml.rels"), "sharedStrings")
}

func TestEditAcrossLineBreaks(t *testing.T) {
	w := readParts(t, twoSheets(), Options{})
	require.NoError(t, w.SetCellFormula("Data", "C7", "SUM(A5,\nA7)+A9"))
	require.NoError(t, w.SetCellFormula("Data", "C8", "A5\r\n+B5"))

	require.NoError(t, w.InsertRows("Data", 3, 1))
	assert.Equal(t, "SUM(A6,\nA8)+A10", formulaAt(t, w, "Data", "C8"))
	assert.Equal(t, "A6\r\n+B6", formulaAt(t, w, "Data", "C9"))

	require.NoError(t, w.RemoveRows("Data", 6, 1))
	assert.Equal(t, "SUM(#REF!,\nA7)+A9", formulaAt(t, w, "Data", "C7"))
	assert.Equal(t, "#REF!\r\n+#REF!", formulaAt(t, w, "Data", "C8"))
}

func TestAddSheetNames(t *testing.T) {
	w := NewWorkbook(Options{})
	_, err := w.AddSheet("Sheet1")
	require.NoError(t, err)

	tests := []struct {
		name string
		want error
	}{
		{"sheet1", ErrSheetExists},
		{"", ErrInvalidSheetName},
		{"bad[name]", ErrInvalidSheetName},
		{"a/b", ErrInvalidSheetName},
		{"'quoted'", ErrInvalidSheetName},
		{strings.Repeat("x", 32), ErrInvalidSheetName},
	}
	for _, tt := range tests {
		_, err := w.AddSheet(tt.name)
		if !errors.Is(err, tt.want) {
			t.Errorf("AddSheet(%q) = %v, want %v", tt.name, err, tt.want)
		}
	}
	s, err := w.AddSheet("Sheet 2")
	require.NoError(t, err)
	assert.Equal(t, 2, s.SheetID)
}

func TestInsertAndRemoveRows(t *testing.T) {
	w := readParts(t, twoSheets(), Options{})

	require.NoError(t, w.InsertRows("Data", 3, 2))
	assert.Equal(t, "Data!A7*2", formulaAt(t, w, "Data", "B7"))
	assert.Equal(t, "Data!A7+1", formulaAt(t, w, "Other", "A1"))
	assert.Equal(t, "SUM(A5:A6)", formulaAt(t, w, "Other", "B1"), "references to another sheet are untouched")
	v, err := w.GetCellValue("Data", "A7")
	require.NoError(t, err)
	assert.Equal(t, "5", v)
	v, err = w.GetCellValue("Data", "A5")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	require.NoError(t, w.SetCellFormula("Other", "C1", "Data!A3+Data!A6"))
	require.NoError(t, w.RemoveRows("Data", 3, 2))
	assert.Equal(t, "Data!A5*2", formulaAt(t, w, "Data", "B5"))
	assert.Equal(t, "Data!A5+1", formulaAt(t, w, "Other", "A1"))
	assert.Equal(t, "Data!#REF!+Data!A4", formulaAt(t, w, "Other", "C1"))

	require.NoError(t, w.RemoveRows("Data", 5, 1))
	ws, err := w.Worksheet("Data")
	require.NoError(t, err)
	assert.Nil(t, ws.CellByName("B5"))
	assert.Equal(t, "Data!#REF!+1", formulaAt(t, w, "Other", "A1"))

	_, pkg := reread(t, w)
	assert.Contains(t, partText(t, pkg, "xl/workbook.xml"), `fullCalcOnLoad="1"`)

	assert.Error(t, w.InsertRows("Data", 0, 1))
	assert.ErrorIs(t, w.RemoveRows("Missing", 1, 1), ErrSheetNotFound)
}

func TestInsertAndRemoveColumns(t *testing.T) {
	w := readParts(t, twoSheets(`<mergeCells count="1"><mergeCell ref="A1:B1"/></mergeCells>`), Options{})
	local := 0
	w.DefinedNames = []models.DefinedName{{Name: models.PrintAreaName, LocalSheetID: &local, RefersTo: "Data!$A$1:$B$6"}}
	ws, err := w.Worksheet("Data")
	require.NoError(t, err)
	ws.Columns = []models.Column{{Min: 1, Max: 2, Width: 12, CustomWidth: true}}

	require.NoError(t, w.InsertColumns("Data", 1, 1))
	v, err := w.GetCellValue("Data", "B1")
	require.NoError(t, err)
	assert.Equal(t, "name", v)
	assert.Equal(t, "Data!B5*2", formulaAt(t, w, "Data", "C5"))
	assert.Equal(t, "Data!B5+1", formulaAt(t, w, "Other", "A1"))
	assert.Equal(t, "Data!$B$1:$C$6", w.DefinedNames[0].RefersTo)
	assert.Equal(t, []string{"B1:C1"}, ws.MergeCells)
	assert.Equal(t, 2, ws.Columns[0].Min)
	assert.Equal(t, 3, ws.Columns[0].Max)

	require.NoError(t, w.RemoveColumns("Data", 2, 1))
	assert.Equal(t, "Data!$B$1:$B$6", w.DefinedNames[0].RefersTo)
	assert.Empty(t, ws.MergeCells, "a merge collapsed to one cell is dropped")
	require.Len(t, ws.Columns, 1)
	assert.Equal(t, 2, ws.Columns[0].Min)
	assert.Equal(t, 2, ws.Columns[0].Max)
	assert.Equal(t, "Data!#REF!+1", formulaAt(t, w, "Other", "A1"))

	assert.Equal(t, map[string][]models.PrintArea{"Data": {{R1: 1, C1: 2, R2: 6, C2: 2}}}, w.PrintAreas())
}

func TestCloneSheet(t *testing.T) {
	w := readParts(t, twoSheets(), Options{})
	local := 0
	w.DefinedNames = []models.DefinedName{{Name: models.PrintAreaName, LocalSheetID: &local, RefersTo: "Data!$A$1:$B$5"}}

	clone, err := w.CloneSheet("Data", "Copy")
	require.NoError(t, err)
	assert.Equal(t, "xl/worksheets/sheet3.xml", clone.PartPath)
	assert.Equal(t, 3, clone.SheetID)
	require.Len(t, w.DefinedNames, 2)
	assert.Equal(t, 2, *w.DefinedNames[1].LocalSheetID)
	assert.Equal(t, "Copy!$A$1:$B$5", w.DefinedNames[1].RefersTo)
	assert.Equal(t, "Data!$A$1:$B$5", w.DefinedNames[0].RefersTo)

	require.NoError(t, w.SetCellValue("Copy", "A1", "changed"))
	v, err := w.GetCellValue("Data", "A1")
	require.NoError(t, err)
	assert.Equal(t, "name", v, "the source is unaffected by edits to the copy")

	_, err = w.CloneSheet("Data", "copy")
	assert.ErrorIs(t, err, ErrSheetExists)
	_, err = w.CloneSheet("Nope", "X")
	assert.ErrorIs(t, err, ErrSheetNotFound)

	out, _ := reread(t, w)
	assert.Equal(t, []string{"Data", "Other", "Copy"}, out.SheetNames())
	v, err = out.GetCellValue("Copy", "A1")
	require.NoError(t, err)
	assert.Equal(t, "changed", v)
	assert.Equal(t, "Data!A5*2", formulaAt(t, out, "Copy", "B5"))
	assert.Equal(t, []models.PrintArea{{R1: 1, C1: 1, R2: 5, C2: 2}}, out.PrintAreas()["Copy"])
}

func TestCloneSheetDuplicatesParts(t *testing.T) {
	w := readParts(t, annotated(), Options{})
	clone, err := w.CloneSheet("Data", "Copy")
	require.NoError(t, err)

	ws := clone.Content().(models.Materialized).Worksheet
	require.NotNil(t, ws.Drawing)
	assert.Equal(t, "xl/drawings/drawing2.xml", ws.Drawing.Part)
	assert.Contains(t, ws.Parts, "xl/drawings/drawing2.xml")
	assert.NotContains(t, ws.Parts, "xl/drawings/drawing1.xml")

	out, pkg := reread(t, w)
	for _, name := range []string{
		"xl/drawings/drawing1.xml", "xl/drawings/drawing2.xml",
		"xl/comments1.xml", "xl/comments2.xml",
		"xl/drawings/vmlDrawing1.vml", "xl/drawings/vmlDrawing2.vml",
	} {
		partText(t, pkg, name)
	}

	copied, err := out.Worksheet("Copy")
	require.NoError(t, err)
	require.Len(t, copied.Comments, 1)
	assert.Equal(t, "alice", copied.Comments[0].Author)
	assert.Equal(t, "note", copied.Comments[0].Text.Text())
	require.NotNil(t, copied.Drawing)
	require.Len(t, copied.Drawing.Shapes, 1)
	assert.Equal(t, "Hello", copied.Drawing.Shapes[0].Text)
}

func TestCommentsSurviveWrite(t *testing.T) {
	w := readParts(t, annotated(), Options{})
	ws, err := w.Worksheet("Data")
	require.NoError(t, err)
	require.Len(t, ws.Comments, 1)
	require.NotNil(t, ws.Comments[0].Shape)
	require.Len(t, ws.FormControls, 1)

	require.NoError(t, w.InsertRows("Data", 1, 1))
	assert.Equal(t, "B3", ws.Comments[0].Ref.String())

	out, pkg := reread(t, w)
	got, err := out.Worksheet("Data")
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	c := got.Comments[0]
	assert.Equal(t, "B3", c.Ref.String())
	assert.Equal(t, "alice", c.Author)
	assert.Equal(t, "note", c.Text.Text())
	require.NotNil(t, c.Shape, "the note shape is regenerated with its comment")
	assert.Equal(t, 2, c.Shape.Row)
	assert.Equal(t, 1, c.Shape.Column)
	require.Len(t, got.FormControls, 1)
	assert.Equal(t, "Button", got.FormControls[0].ObjectType)

	sheet := partText(t, pkg, "xl/worksheets/sheet1.xml")
	assert.Contains(t, sheet, `<drawing r:id="rId3"/>`)
	assert.Contains(t, sheet, `<legacyDrawing r:id=`)
	assert.Contains(t, partText(t, pkg, "[Content_Types].xml"), `PartName="/xl/comments1.xml"`)
}

func TestSheetWithoutAuxParts(t *testing.T) {
	w := readParts(t, twoSheets(), Options{})
	ws, err := w.Worksheet("Other")
	require.NoError(t, err)
	assert.Nil(t, ws.Drawing)
	assert.Empty(t, ws.Comments)
	assert.Empty(t, ws.FormControls)

	_, pkg := reread(t, w)
	a, err := opc.OpenArchiveBytes(pkg)
	require.NoError(t, err)
	for _, name := range a.Names() {
		assert.False(t, strings.Contains(name, "vmlDrawing") || strings.Contains(name, "comments"), name)
	}
}

func TestExtract(t *testing.T) {
	w := readParts(t, annotated(), Options{})
	local := 0
	w.DefinedNames = []models.DefinedName{{Name: models.PrintAreaName, LocalSheetID: &local, RefersTo: "Data!$A$1:$B$2"}}

	data, err := w.Extract("book", DefaultExtractOptions())
	require.NoError(t, err)
	assert.Equal(t, "book", data.BookName)
	assert.Equal(t, []string{"Data"}, data.SheetOrder)

	sheet := data.Sheets["Data"]
	assert.Equal(t, "A1:C3", sheet.Dimension)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, map[string]interface{}{"1": "name", "2": int64(42)}, sheet.Rows[0].C)
	assert.Equal(t, []models.CommentData{{Cell: "B2", Author: "alice", Text: "note", Shape: "_x0000_s1025"}}, sheet.Comments)
	require.Len(t, sheet.Shapes, 1)
	assert.Equal(t, "Hello", sheet.Shapes[0].Text)
	assert.Equal(t, []models.PrintArea{{R1: 1, C1: 1, R2: 2, C2: 2}}, sheet.PrintAreas)

	views := PrintAreaViews(data)
	require.Len(t, views, 1)
	view := views[0]
	assert.Equal(t, "Data", view.SheetName)
	require.Len(t, view.Rows, 1, "row 3 lies outside the area")
	assert.Len(t, view.Rows[0].C, 2)
	assert.Len(t, view.Shapes, 1, "the shape anchored at B2 overlaps the area")

	light, err := w.Extract("book", ExtractOptions{Mode: ExtractLight})
	require.NoError(t, err)
	assert.Empty(t, light.Sheets["Data"].Shapes)
	assert.Empty(t, light.Sheets["Data"].PrintAreas)
}

func TestSaveAndOpen(t *testing.T) {
	w := readParts(t, twoSheets(), Options{})
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, w.Save(path))

	out, err := OpenLazy(path, Options{})
	require.NoError(t, err)
	assert.False(t, out.Sheet("Data").IsMaterialized())
	v, err := out.GetCellValue("Data", "B1")
	require.NoError(t, err)
	assert.Equal(t, "42", v)

	_, err = Open(filepath.Join(t.TempDir(), "missing.xlsx"), Options{})
	assert.True(t, fault.Is(fault.IO, err), "got %v", err)
}

func TestExcelizeInterop(t *testing.T) {
	t.Run("read excelize output", func(t *testing.T) {
		f := excelize.NewFile()
		defer f.Close()
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "hello"))
		require.NoError(t, f.SetCellValue("Sheet1", "A2", 2.5))
		require.NoError(t, f.SetCellFormula("Sheet1", "B1", "SUM(A2,1)"))
		buf, err := f.WriteToBuffer()
		require.NoError(t, err)

		w, err := ReadBytes(buf.Bytes(), Options{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Sheet1"}, w.SheetNames())
		v, err := w.GetCellValue("Sheet1", "A1")
		require.NoError(t, err)
		assert.Equal(t, "hello", v)
		v, err = w.GetCellValue("Sheet1", "A2")
		require.NoError(t, err)
		assert.Equal(t, "2.5", v)
		assert.Equal(t, "SUM(A2,1)", formulaAt(t, w, "Sheet1", "B1"))
	})

	t.Run("excelize reads our output", func(t *testing.T) {
		w := readParts(t, twoSheets(), Options{})
		require.NoError(t, w.InsertRows("Data", 3, 2))
		data, err := w.WriteBytes()
		require.NoError(t, err)

		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, []string{"Data", "Other"}, f.GetSheetList())
		v, err := f.GetCellValue("Data", "A1")
		require.NoError(t, err)
		assert.Equal(t, "name", v)
		v, err = f.GetCellValue("Data", "A7")
		require.NoError(t, err)
		assert.Equal(t, "5", v)
		formula, err := f.GetCellFormula("Other", "A1")
		require.NoError(t, err)
		assert.Equal(t, "Data!A7+1", formula)
	})
}
