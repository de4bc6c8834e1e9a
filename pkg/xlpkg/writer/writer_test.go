package writer

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/opc"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/parser"
)

func sampleWorksheet() *models.Worksheet {
	ws := models.NewWorksheet()
	ws.EnsureCell(models.CellRef{Col: 1, Row: 1}).Value.SetString(" padded ")
	ws.EnsureCell(models.CellRef{Col: 2, Row: 1}).Value.SetRaw("1.50")
	ws.EnsureCell(models.CellRef{Col: 3, Row: 1}).Value.SetBool(true)
	ws.EnsureCell(models.CellRef{Col: 1, Row: 2}).Value.SetError("#N/A")
	ws.EnsureCell(models.CellRef{Col: 2, Row: 2}).Value.
		SetFormula(`A1&"x"`).SetCached(models.StringValue(" padded x"))
	lead := ws.EnsureCell(models.CellRef{Col: 1, Row: 4})
	lead.StyleIndex = 1
	lead.Value.SetFormula("B1*2").SetFormulaAttributes([]models.Attr{{Name: "t", Value: "shared"}, {Name: "ref", Value: "A4:A5"}, {Name: "si", Value: "0"}})
	lead.Value.SetCached(models.NumericValue(3))
	ws.EnsureCell(models.CellRef{Col: 1, Row: 5}).Value.SetFormula("").
		SetFormulaAttributes([]models.Attr{{Name: "t", Value: "shared"}, {Name: "si", Value: "0"}})
	ws.EnsureCell(models.CellRef{Col: 2, Row: 5}).Value.SetRichText(models.RichText{Runs: []models.TextRun{
		{Text: "bold", Font: &models.Font{Bold: true, Size: 11, Color: "theme:1"}},
		{Text: " plain"},
	}})
	row := ws.EnsureRow(7)
	row.Height, row.CustomHeight, row.Hidden = 30, true, true
	ws.Columns = []models.Column{{Min: 1, Max: 2, Width: 12.5, CustomWidth: true}}
	ws.MergeCells = []string{"A1:B1"}
	ws.DrawingRelID = "rId1"
	ws.Extra = []models.Fragment{
		{Name: "pageMargins", XML: []byte(`<pageMargins left="0.7" right="0.7" top="0.75" bottom="0.75" header="0.3" footer="0.3"/>`)},
		{Name: "sheetViews", XML: []byte(`<sheetViews><sheetView workbookViewId="0"/></sheetViews>`)},
	}
	return ws
}

func TestWorksheetPartRoundTrip(t *testing.T) {
	sst := models.NewSharedStringTable()
	data := WorksheetPart(sampleWorksheet(), sst)
	body := string(data)

	// Children follow the schema sequence regardless of fragment order.
	order := []string{"<dimension", "<sheetViews", "<cols", "<sheetData", "<mergeCells", "<pageMargins", "<drawing"}
	last := -1
	for _, tag := range order {
		i := strings.Index(body, tag)
		require.True(t, i > last, "%s out of order in %s", tag, body)
		last = i
	}
	assert.Contains(t, body, `<dimension ref="A1:C5"/>`)
	assert.Contains(t, body, `<row r="7" ht="30" customHeight="1" hidden="1"/>`)
	assert.Contains(t, body, `<c r="B1"><v>1.50</v></c>`)
	assert.Contains(t, body, `<c r="A5"><f t="shared" si="0"/></c>`)
	assert.Equal(t, 2, sst.Len())
	assert.Equal(t, 2, sst.Count())

	ws, err := parser.ParseWorksheet("xl/worksheets/sheet1.xml", data, parser.Resources{SharedStrings: sst})
	require.NoError(t, err)
	assert.Equal(t, 8, ws.CellCount())
	assert.Equal(t, " padded ", ws.CellByName("A1").Value.DisplayValue())
	assert.Equal(t, "1.5", ws.CellByName("B1").Value.DisplayValue())
	assert.Equal(t, "true", ws.CellByName("C1").Value.DisplayValue())
	assert.Equal(t, models.TypeError, ws.CellByName("A2").Value.DataType())

	f, ok := ws.CellByName("B2").Value.Formula()
	require.True(t, ok)
	assert.Equal(t, `A1&"x"`, f)
	assert.Equal(t, " padded x", ws.CellByName("B2").Value.DisplayValue())

	lead := ws.CellByName("A4")
	assert.Equal(t, 1, lead.StyleIndex)
	ref, _ := lead.Value.FormulaAttribute("ref")
	assert.Equal(t, "A4:A5", ref)
	assert.Equal(t, "3", lead.Value.DisplayValue())
	assert.True(t, ws.CellByName("A5").Value.IsFormula())

	rt, ok := ws.CellByName("B5").Value.RichText()
	require.True(t, ok)
	require.Len(t, rt.Runs, 2)
	assert.True(t, rt.Runs[0].Font.Bold)
	assert.Equal(t, "theme:1", rt.Runs[0].Font.Color)

	assert.True(t, ws.Row(7).Hidden)
	assert.Equal(t, []string{"A1:B1"}, ws.MergeCells)
	assert.Equal(t, 12.5, ws.Columns[0].Width)
	assert.Equal(t, "rId1", ws.DrawingRelID)
}

func TestWorksheetPartEmpty(t *testing.T) {
	body := string(WorksheetPart(models.NewWorksheet(), models.NewSharedStringTable()))
	assert.Contains(t, body, `<dimension ref="A1"/>`)
	assert.Contains(t, body, `<sheetData/>`)
	assert.Contains(t, body, `xmlns="`+opc.NSSpreadsheetML+`"`)
}

func TestSharedStringsPart(t *testing.T) {
	sst := models.NewSharedStringTable()
	for i := 0; i < 5; i++ {
		sst.RegisterText("same")
	}
	sst.RegisterText(" edge")
	sst.RegisterRichText(models.RichText{Runs: []models.TextRun{{Text: "x", Font: &models.Font{Italic: true, Underline: "double"}}}})

	data := SharedStringsPart(sst)
	assert.Contains(t, string(data), `count="7" uniqueCount="3"`)
	assert.Contains(t, string(data), `<t xml:space="preserve"> edge</t>`)
	assert.Contains(t, string(data), `<u val="double"/>`)

	back, err := parser.ParseSharedStrings("xl/sharedStrings.xml", data)
	require.NoError(t, err)
	require.Equal(t, 3, back.Len())
	for i, want := range sst.Items() {
		got, _ := back.Item(i)
		assert.True(t, want.Equal(got), "item %d", i)
	}
}

func TestCommentsRoundTrip(t *testing.T) {
	comments := []models.Comment{
		{Ref: models.CellRef{Col: 2, Row: 3}, Author: "ann", Text: models.RichText{Runs: []models.TextRun{{Text: "check"}}}},
		{Ref: models.CellRef{Col: 1, Row: 1}, Author: "bob", Text: models.RichText{Runs: []models.TextRun{
			{Text: "bob:", Font: &models.Font{Bold: true}}, {Text: " hi"},
		}}},
		{Ref: models.CellRef{Col: 4, Row: 9}, Author: "ann", Text: models.RichText{Runs: []models.TextRun{{Text: "again"}}},
			Shape: &models.VMLShape{ID: "_x0000_s9", ObjectType: "Note", Row: 8, Column: 3, Visible: true, Anchor: "4, 15, 7, 10, 6, 15, 11, 4"}},
	}
	back, err := parser.ParseComments("xl/comments1.xml", CommentsPart(comments))
	require.NoError(t, err)
	require.Len(t, back, 3)
	for i := range comments {
		assert.Equal(t, comments[i].Ref, back[i].Ref)
		assert.Equal(t, comments[i].Author, back[i].Author)
		assert.True(t, comments[i].Text.Equal(back[i].Text), "comment %d text", i)
	}

	controls := []models.VMLShape{{ObjectType: "Button", Row: -1, Column: -1, Text: "Run"}}
	shapes, err := parser.ParseVML("xl/drawings/vmlDrawing1.vml", VMLPart(1, comments, controls))
	require.NoError(t, err)
	require.Len(t, shapes, 4)
	assert.Equal(t, "_x0000_s1025", shapes[0].ID)
	assert.Equal(t, 2, shapes[0].Row)
	assert.Equal(t, 1, shapes[0].Column)
	assert.False(t, shapes[0].Visible)
	assert.NotEmpty(t, shapes[0].Anchor)
	assert.Equal(t, "_x0000_s9", shapes[2].ID)
	assert.True(t, shapes[2].Visible)
	assert.Equal(t, "4, 15, 7, 10, 6, 15, 11, 4", shapes[2].Anchor)
	assert.Equal(t, "Button", shapes[3].ObjectType)
	assert.Equal(t, "Run", shapes[3].Text)
}

func TestWorkbookPart(t *testing.T) {
	local := 0
	data := WorkbookPart(WorkbookSpec{
		Extra: []models.Fragment{{Name: "calcPr", XML: []byte(`<calcPr calcId="191029"/>`)}},
		Sheets: []SheetRef{
			{Name: "Data", SheetID: 1, RelID: "rId1"},
			{Name: "Hidden", SheetID: 4, RelID: "rId2", State: models.StateHidden},
		},
		DefinedNames: []models.DefinedName{{Name: models.PrintAreaName, LocalSheetID: &local, RefersTo: "Data!$A$1:$C$3"}},
		FullCalcOnLoad: true,
	})
	info, err := parser.ParseWorkbook("xl/workbook.xml", data)
	require.NoError(t, err)
	require.Len(t, info.Sheets, 2)
	assert.Equal(t, "Hidden", info.Sheets[1].Name)
	assert.Equal(t, 4, info.Sheets[1].SheetID)
	assert.Equal(t, models.StateHidden, info.Sheets[1].State)
	require.Len(t, info.DefinedNames, 1)
	assert.Equal(t, 0, *info.DefinedNames[0].LocalSheetID)
	require.Len(t, info.Extra, 1)
	assert.Equal(t, `<calcPr fullCalcOnLoad="1" calcId="191029"/>`, string(info.Extra[0].XML))
}

func TestWorkbookPartFragmentOrder(t *testing.T) {
	data := string(WorkbookPart(WorkbookSpec{
		Extra: []models.Fragment{
			{Name: "extLst", XML: []byte(`<extLst/>`)},
			{Name: "externalReferences", XML: []byte(`<externalReferences><externalReference r:id="rId9"/></externalReferences>`)},
			{Name: "calcPr", XML: []byte(`<calcPr calcId="1"/>`)},
			{Name: "fileVersion", XML: []byte(`<fileVersion appName="xl"/>`)},
		},
		Sheets:       []SheetRef{{Name: "Data", SheetID: 1, RelID: "rId1"}},
		DefinedNames: []models.DefinedName{{Name: "Total", RefersTo: "Data!$A$1"}},
	}))
	order := []string{"<fileVersion", "<sheets>", "<externalReferences>", "<definedNames>", "<calcPr", "<extLst/>"}
	last := -1
	for _, tag := range order {
		i := strings.Index(data, tag)
		require.GreaterOrEqual(t, i, 0, tag)
		assert.Greater(t, i, last, "%s out of order", tag)
		last = i
	}

	info, err := parser.ParseWorkbook("xl/workbook.xml", []byte(data))
	require.NoError(t, err)
	assert.Len(t, info.Extra, 4)
}

func TestSetFullCalc(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", `<calcPr fullCalcOnLoad="1"/>`},
		{`<calcPr calcId="1"/>`, `<calcPr fullCalcOnLoad="1" calcId="1"/>`},
		{`<calcPr fullCalcOnLoad="0" calcId="1"/>`, `<calcPr fullCalcOnLoad="1" calcId="1"/>`},
		{`<x:calcPr/>`, `<x:calcPr fullCalcOnLoad="1"/>`},
	}
	for _, tt := range tests {
		if got := string(setFullCalc([]byte(tt.in))); got != tt.want {
			t.Errorf("setFullCalc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{42, "42"},
		{-1.25, "-1.25"},
		{1e6, "1000000"},
		{1e22, "1E+22"},
		{1.5e-7, "1.5E-07"},
	}
	for _, tt := range tests {
		if got := formatNumber(tt.in); got != tt.want {
			t.Errorf("formatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestManagerWrite(t *testing.T) {
	source := opc.NewContentTypes()
	source.Defaults["png"] = "image/png"
	source.Overrides["docProps/core.xml"] = opc.ContentTypeCore

	write := func() []byte {
		m := NewManager(source, nil)
		m.Add("xl/workbook.xml", []byte("<workbook/>"), opc.ContentTypeWorkbook)
		m.Add(opc.PartRootRels, []byte("<Relationships/>"), "")
		m.Add("xl/media/image1.png", []byte{0x89, 'P', 'N', 'G'}, "")
		m.Add("docProps/core.xml", []byte("<core/>"), "")
		m.Add("xl/drawings/vmlDrawing1.vml", []byte("<xml/>"), opc.ContentTypeVML)
		m.Add("xl/unknown.bin", []byte{1}, "")
		assert.True(t, m.Has("xl/media/image1.png"))
		var buf bytes.Buffer
		require.NoError(t, m.Write(&buf))
		return buf.Bytes()
	}
	data := write()
	assert.Equal(t, data, write(), "output is deterministic")

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 7)
	assert.Equal(t, opc.PartContentTypes, zr.File[0].Name)
	assert.Equal(t, opc.PartRootRels, zr.File[1].Name)

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	manifest, err := io.ReadAll(rc)
	require.NoError(t, err)
	ct, err := opc.ParseContentTypes(manifest)
	require.NoError(t, err)
	tests := map[string]string{
		"xl/workbook.xml":             opc.ContentTypeWorkbook,
		"xl/media/image1.png":         "image/png",
		"docProps/core.xml":           opc.ContentTypeCore,
		"xl/drawings/vmlDrawing1.vml": opc.ContentTypeVML,
		"xl/unknown.bin":              fallbackContentType,
		"_rels/.rels":                 opc.ContentTypeRelationships,
	}
	for part, want := range tests {
		got, ok := ct.Lookup(part)
		assert.True(t, ok, part)
		assert.Equal(t, want, got, part)
	}
}
