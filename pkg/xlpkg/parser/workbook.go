package parser

import (
	"encoding/xml"
	"strings"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
)

// SheetEntry is one <sheet> of the workbook part.
type SheetEntry struct {
	Name    string
	SheetID int
	RelID   string
	State   models.SheetState
}

// WorkbookInfo is the skeleton of the workbook part.
type WorkbookInfo struct {
	Sheets       []SheetEntry
	DefinedNames []models.DefinedName
	Date1904     bool
	Namespaces   []models.Attr
	// Extra holds the passthrough children in document order.
	Extra []models.Fragment
}

// workbookPassthrough lists the workbook children kept verbatim. Sheets and
// defined names are modeled; anything else is dropped.
var workbookPassthrough = map[string]bool{
	"fileVersion":         true,
	"fileSharing":         true,
	"workbookPr":          true,
	"workbookProtection":  true,
	"bookViews":           true,
	"functionGroups":      true,
	"externalReferences":  true,
	"calcPr":              true,
	"oleSize":             true,
	"customWorkbookViews": true,
	"pivotCaches":         true,
	"smartTagPr":          true,
	"smartTagTypes":       true,
	"webPublishing":       true,
	"fileRecoveryPr":      true,
	"webPublishObjects":   true,
	"extLst":              true,
}

// ParseWorkbook reads the sheet list and defined names of the workbook part.
func ParseWorkbook(part string, data []byte) (*WorkbookInfo, error) {
	r, err := newReader(part, data)
	if err != nil {
		return nil, err
	}
	root, err := r.root()
	if err != nil {
		return nil, err
	}
	info := &WorkbookInfo{Namespaces: namespaces(root)}
	err = r.children(root.Name.Local, func(se xml.StartElement, start int64) error {
		switch se.Name.Local {
		case "sheets":
			return r.children("sheets", func(s xml.StartElement, _ int64) error {
				if s.Name.Local == "sheet" {
					entry := SheetEntry{State: models.StateVisible, SheetID: attrInt(s, "sheetId", 0)}
					entry.Name, _ = attr(s, "name")
					entry.RelID, _ = attr(s, "id")
					if st, ok := attr(s, "state"); ok && st != "" {
						entry.State = models.SheetState(st)
					}
					info.Sheets = append(info.Sheets, entry)
				}
				return r.skip(s.Name.Local)
			})
		case "definedNames":
			return r.children("definedNames", func(s xml.StartElement, _ int64) error {
				if s.Name.Local != "definedName" {
					return r.skip(s.Name.Local)
				}
				dn := models.DefinedName{Hidden: attrBool(s, "hidden")}
				dn.Name, _ = attr(s, "name")
				dn.Comment, _ = attr(s, "comment")
				if _, ok := attr(s, "localSheetId"); ok {
					id := attrInt(s, "localSheetId", 0)
					dn.LocalSheetID = &id
				}
				text, err := r.text("definedName")
				if err != nil {
					return err
				}
				dn.RefersTo = strings.TrimSpace(text)
				info.DefinedNames = append(info.DefinedNames, dn)
				return nil
			})
		default:
			if se.Name.Local == "workbookPr" {
				info.Date1904 = attrBool(se, "date1904")
			}
			if !workbookPassthrough[se.Name.Local] {
				return r.skip(se.Name.Local)
			}
			frag, err := r.fragment(start, se.Name.Local)
			if err != nil {
				return err
			}
			info.Extra = append(info.Extra, frag)
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}
