// Package opc resolves the package structure of an office document container:
// the content-type manifest, relationship parts and the zip archive itself.
package opc

// XML namespaces used by package-level parts.
const (
	NSRelationships  = "http://schemas.openxmlformats.org/package/2006/relationships"
	NSContentTypes   = "http://schemas.openxmlformats.org/package/2006/content-types"
	NSSpreadsheetML  = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	NSOfficeDocRels  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NSDrawingML      = "http://schemas.openxmlformats.org/drawingml/2006/main"
	NSSpreadsheetDrw = "http://schemas.openxmlformats.org/drawingml/2006/spreadsheetDrawing"
)

// Relationship type URIs. Matching is exact string comparison.
const (
	RelTypeOfficeDocument     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	RelTypeWorksheet          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet"
	RelTypeTheme              = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	RelTypeStyles             = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	RelTypeSharedStrings      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/sharedStrings"
	RelTypeDrawing            = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/drawing"
	RelTypeChart              = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/chart"
	RelTypeComments           = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/comments"
	RelTypeVMLDrawing         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/vmlDrawing"
	RelTypeImage              = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	RelTypeHyperlink          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
	RelTypeCoreProperties     = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	RelTypeExtendedProperties = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
)

// Content types written into the manifest.
const (
	ContentTypeRelationships = "application/vnd.openxmlformats-package.relationships+xml"
	ContentTypeXML           = "application/xml"
	ContentTypeVML           = "application/vnd.openxmlformats-officedocument.vmlDrawing"
	ContentTypeWorkbook      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"
	ContentTypeWorksheet     = "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"
	ContentTypeStyles        = "application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"
	ContentTypeTheme         = "application/vnd.openxmlformats-officedocument.theme+xml"
	ContentTypeSharedStrings = "application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"
	ContentTypeComments      = "application/vnd.openxmlformats-officedocument.spreadsheetml.comments+xml"
	ContentTypeDrawing       = "application/vnd.openxmlformats-officedocument.drawing+xml"
	ContentTypeChart         = "application/vnd.openxmlformats-officedocument.drawingml.chart+xml"
	ContentTypeCore          = "application/vnd.openxmlformats-package.core-properties+xml"
	ContentTypeExtended      = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
)

// Well-known part names.
const (
	PartContentTypes = "[Content_Types].xml"
	PartRootRels     = "_rels/.rels"
)
