package writer

import (
	"bytes"
	"regexp"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/opc"
)

// SheetRef is one <sheet> entry of the workbook part.
type SheetRef struct {
	Name    string
	SheetID int
	RelID   string
	State   models.SheetState
}

// WorkbookSpec is everything the workbook part is rendered from.
type WorkbookSpec struct {
	Namespaces   []models.Attr
	Extra        []models.Fragment
	Sheets       []SheetRef
	DefinedNames []models.DefinedName
	// FullCalcOnLoad asks the consuming application to recalculate every
	// formula when the file is opened.
	FullCalcOnLoad bool
}

// Preserved workbook children in schema order around sheets and definedNames.
var (
	workbookHead   = []string{"fileVersion", "fileSharing", "workbookPr", "workbookProtection", "bookViews"}
	workbookMiddle = []string{"functionGroups", "externalReferences"}
	workbookTail   = []string{
		"calcPr", "oleSize", "customWorkbookViews", "pivotCaches", "smartTagPr",
		"smartTagTypes", "webPublishing", "fileRecoveryPr", "webPublishObjects", "extLst",
	}
)

// WorkbookPart renders the workbook part.
func WorkbookPart(spec WorkbookSpec) []byte {
	frags := make(map[string][]byte, len(spec.Extra))
	for _, f := range spec.Extra {
		frags[f.Name] = f.XML
	}
	if spec.FullCalcOnLoad {
		frags["calcPr"] = setFullCalc(frags["calcPr"])
	}

	b := newBuffer()
	b.open("workbook", namespaceAttrs(spec.Namespaces,
		models.Attr{Name: "xmlns", Value: opc.NSSpreadsheetML},
		models.Attr{Name: "xmlns:r", Value: opc.NSOfficeDocRels})...)
	for _, name := range workbookHead {
		b.Write(frags[name])
	}
	b.open("sheets")
	for _, s := range spec.Sheets {
		attrs := []string{"name", s.Name, "sheetId", itoa(s.SheetID)}
		if s.State != "" && s.State != models.StateVisible {
			attrs = append(attrs, "state", string(s.State))
		}
		b.empty("sheet", append(attrs, "r:id", s.RelID)...)
	}
	b.close("sheets")
	for _, name := range workbookMiddle {
		b.Write(frags[name])
	}
	if len(spec.DefinedNames) > 0 {
		b.open("definedNames")
		for _, dn := range spec.DefinedNames {
			attrs := []string{"name", dn.Name}
			if dn.Comment != "" {
				attrs = append(attrs, "comment", dn.Comment)
			}
			if dn.LocalSheetID != nil {
				attrs = append(attrs, "localSheetId", itoa(*dn.LocalSheetID))
			}
			if dn.Hidden {
				attrs = append(attrs, "hidden", "1")
			}
			b.element("definedName", dn.RefersTo, attrs...)
		}
		b.close("definedNames")
	}
	for _, name := range workbookTail {
		b.Write(frags[name])
	}
	b.close("workbook")
	return b.Bytes()
}

var fullCalcAttr = regexp.MustCompile(`\sfullCalcOnLoad="[^"]*"`)

var calcPrTag = regexp.MustCompile(`^<(\w+:)?calcPr`)

// setFullCalc sets fullCalcOnLoad="1" on a calcPr element, creating one when
// frag is empty.
func setFullCalc(frag []byte) []byte {
	if len(frag) == 0 {
		return []byte(`<calcPr fullCalcOnLoad="1"/>`)
	}
	if fullCalcAttr.Match(frag) {
		return fullCalcAttr.ReplaceAll(frag, []byte(` fullCalcOnLoad="1"`))
	}
	loc := calcPrTag.FindIndex(frag)
	if loc == nil {
		return frag
	}
	var out bytes.Buffer
	out.Write(frag[:loc[1]])
	out.WriteString(` fullCalcOnLoad="1"`)
	out.Write(frag[loc[1]:])
	return out.Bytes()
}
