package opc

import (
	"encoding/binary"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/xlpkg-go/internal/fixture"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/fault"
)

func TestRelsPath(t *testing.T) {
	tests := []struct {
		part     string
		expected string
	}{
		{"", "_rels/.rels"},
		{"xl/workbook.xml", "xl/_rels/workbook.xml.rels"},
		{"/xl/worksheets/sheet1.xml", "xl/worksheets/_rels/sheet1.xml.rels"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, RelsPath(tt.part), "RelsPath(%q)", tt.part)
	}
}

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		source   string
		target   string
		expected string
	}{
		{"", "xl/workbook.xml", "xl/workbook.xml"},
		{"xl/workbook.xml", "worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"xl/workbook.xml", "/xl/styles.xml", "xl/styles.xml"},
		{"xl/worksheets/sheet1.xml", "../drawings/drawing1.xml", "xl/drawings/drawing1.xml"},
		{"xl/drawings/drawing1.xml", "../charts/chart1.xml", "xl/charts/chart1.xml"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ResolveTarget(tt.source, tt.target))
	}
}

func TestRelativeTargetInvertsResolve(t *testing.T) {
	tests := []struct {
		source string
		part   string
	}{
		{"xl/workbook.xml", "xl/worksheets/sheet2.xml"},
		{"xl/worksheets/sheet1.xml", "xl/drawings/drawing1.xml"},
		{"", "xl/workbook.xml"},
		{"xl/drawings/drawing1.xml", "xl/media/image1.png"},
	}
	for _, tt := range tests {
		rel := RelativeTarget(tt.source, tt.part)
		assert.Equal(t, tt.part, ResolveTarget(tt.source, rel), "via %q", rel)
	}
}

func TestParseRelationships(t *testing.T) {
	data := []byte(`<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="` + RelTypeWorksheet + `" Target="worksheets/sheet1.xml"/>
<Relationship Id="rId2" Type="` + RelTypeTheme + `" Target="theme/theme1.xml"/>
<Relationship Id="rId3" Type="urn:custom" Target="custom.xml"/>
<Relationship Id="rId1" Type="` + RelTypeStyles + `" Target="dup.xml"/>
<Relationship Id="rId4" Type="` + RelTypeHyperlink + `" Target="https://example.com" TargetMode="External"/>
</Relationships>`)

	rels, err := ParseRelationships("xl/workbook.xml", data)
	require.NoError(t, err)
	assert.Equal(t, 4, rels.Len())

	rel, ok := rels.Get("rId1")
	require.True(t, ok)
	assert.Equal(t, RelTypeWorksheet, rel.Type)
	assert.Equal(t, "xl/worksheets/sheet1.xml", rels.TargetPath(rel))

	_, ok = rels.Get("rId99")
	assert.False(t, ok)

	theme, ok := rels.First(RelTypeTheme)
	require.True(t, ok)
	assert.Equal(t, "theme/theme1.xml", theme.Target)

	custom := rels.ByType("urn:custom")
	assert.Len(t, custom, 1)

	link, _ := rels.Get("rId4")
	assert.True(t, link.External())
}

func TestRelationshipsAddAndMarshal(t *testing.T) {
	rels := NewRelationships("xl/workbook.xml")
	id1 := rels.Add(RelTypeWorksheet, "worksheets/sheet1.xml")
	id2 := rels.Add(RelTypeStyles, "styles.xml")
	assert.Equal(t, "rId1", id1)
	assert.Equal(t, "rId2", id2)

	data, err := rels.Marshal()
	require.NoError(t, err)

	back, err := ParseRelationships("xl/workbook.xml", data)
	require.NoError(t, err)
	assert.Equal(t, rels.List(), back.List())
}

func TestContentTypes(t *testing.T) {
	ct := NewContentTypes()
	ct.Overrides["xl/workbook.xml"] = ContentTypeWorkbook
	ct.Defaults["png"] = "image/png"

	data, err := ct.Marshal()
	require.NoError(t, err)

	back, err := ParseContentTypes(data)
	require.NoError(t, err)

	got, ok := back.Lookup("/xl/workbook.xml")
	require.True(t, ok)
	assert.Equal(t, ContentTypeWorkbook, got)

	got, ok = back.Lookup("xl/media/image1.PNG")
	require.True(t, ok)
	assert.Equal(t, "image/png", got)

	_, ok = back.Lookup("xl/unknown.bin")
	assert.False(t, ok)
}

func TestArchiveRead(t *testing.T) {
	a, err := OpenArchiveBytes(fixture.Zip(map[string]string{
		"xl/workbook.xml": "<workbook/>",
	}))
	require.NoError(t, err)

	data, ok, err := a.Read("/xl/workbook.xml")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "<workbook/>", string(data))

	_, ok, err = a.Read("xl/missing.xml")
	assert.NoError(t, err)
	assert.False(t, ok)

	_, err = a.ReadRequired("xl/missing.xml")
	assert.True(t, fault.Is(fault.Format, err))
}

func TestOpenArchiveRejectsGarbage(t *testing.T) {
	_, err := OpenArchiveBytes([]byte("this is not a zip file at all"))
	require.Error(t, err)
	assert.True(t, fault.Is(fault.Archive, err))
}

func TestResolveScopes(t *testing.T) {
	a, err := OpenArchiveBytes(fixture.Zip(fixture.Package("", fixture.Sheet{Name: "Sheet1"})))
	require.NoError(t, err)

	root, err := Resolve(a, "")
	require.NoError(t, err)
	doc, err := OfficeDocument(root)
	require.NoError(t, err)
	assert.Equal(t, "xl/workbook.xml", doc)

	wbRels, err := Resolve(a, doc)
	require.NoError(t, err)
	sheet, ok := wbRels.Get("rId1")
	require.True(t, ok)
	assert.Equal(t, "xl/worksheets/sheet1.xml", wbRels.TargetPath(sheet))

	// No .rels part for the sheet: empty table, no fault.
	sheetRels, err := Resolve(a, "xl/worksheets/sheet1.xml")
	require.NoError(t, err)
	assert.Equal(t, 0, sheetRels.Len())

	manifest, err := ReadManifest(a)
	require.NoError(t, err)
	got, _ := manifest.Lookup("xl/worksheets/sheet1.xml")
	assert.Equal(t, ContentTypeWorksheet, got)
}

func TestResolveMalformedRels(t *testing.T) {
	a, err := OpenArchiveBytes(fixture.Zip(map[string]string{
		"_rels/.rels": "<Relationships><Relationship Id=",
	}))
	require.NoError(t, err)
	_, err = Resolve(a, "")
	assert.True(t, fault.Is(fault.Markup, err))
	eof, ok := fault.IsUnexpectedEOF(err)
	require.True(t, ok)
	assert.Equal(t, "Relationships", eof.Tag)

	_, err = OfficeDocument(NewRelationships(""))
	assert.True(t, fault.Is(fault.Format, err))
}

func TestParsePackagePartsNormalizeEncoding(t *testing.T) {
	rels := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="` + RelTypeWorksheet + `" Target="worksheets/sheet1.xml"/></Relationships>`
	parsed, err := ParseRelationships("xl/workbook.xml", append([]byte("\xef\xbb\xbf"), rels...))
	require.NoError(t, err)
	assert.Equal(t, 1, parsed.Len())

	latin1 := []byte(`<?xml version="1.0" encoding="ISO-8859-1"?><Relationships>` +
		`<Relationship Id="rId1" Type="` + RelTypeImage + `" Target="media/caf` + "\xe9" + `.png"/></Relationships>`)
	parsed, err = ParseRelationships("xl/drawings/drawing1.xml", latin1)
	require.NoError(t, err)
	rel, ok := parsed.Get("rId1")
	require.True(t, ok)
	assert.Equal(t, "media/café.png", rel.Target)

	_, err = ParseContentTypes([]byte(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default`))
	require.Error(t, err)
	_, ok = fault.IsUnexpectedEOF(err)
	assert.True(t, ok)
	assert.Contains(t, err.Error(), PartContentTypes)

	_, err = ParseRelationships("", []byte(`<?xml version="1.0" encoding="x-unknown"?><Relationships/>`))
	assert.True(t, fault.Is(fault.Encoding, err))
}

// compoundDocument builds a version 3 compound file holding one empty
// stream named stream.
func compoundDocument(stream string) []byte {
	const sector = 512
	const (
		freeSect   = 0xFFFFFFFF
		endOfChain = 0xFFFFFFFE
		fatSect    = 0xFFFFFFFD
		noStream   = 0xFFFFFFFF
	)
	doc := make([]byte, 3*sector)
	le := binary.LittleEndian

	copy(doc, cfbSignature)
	le.PutUint16(doc[24:], 0x003E)
	le.PutUint16(doc[26:], 3)
	le.PutUint16(doc[28:], 0xFFFE)
	le.PutUint16(doc[30:], 9)
	le.PutUint16(doc[32:], 6)
	le.PutUint32(doc[44:], 1)
	le.PutUint32(doc[48:], 1)
	le.PutUint32(doc[56:], 4096)
	le.PutUint32(doc[60:], endOfChain)
	le.PutUint32(doc[68:], endOfChain)
	for i := 76; i < sector; i += 4 {
		le.PutUint32(doc[i:], freeSect)
	}
	le.PutUint32(doc[76:], 0)

	fat := doc[sector : 2*sector]
	for i := 0; i < sector; i += 4 {
		le.PutUint32(fat[i:], freeSect)
	}
	le.PutUint32(fat[0:], fatSect)
	le.PutUint32(fat[4:], endOfChain)

	dir := doc[2*sector:]
	entry := func(i int, name string, objectType byte, child uint32) {
		e := dir[i*128 : (i+1)*128]
		units := utf16.Encode([]rune(name))
		for j, u := range units {
			le.PutUint16(e[j*2:], u)
		}
		le.PutUint16(e[64:], uint16((len(units)+1)*2))
		e[66] = objectType
		e[67] = 1
		le.PutUint32(e[68:], noStream)
		le.PutUint32(e[72:], noStream)
		le.PutUint32(e[76:], child)
		le.PutUint32(e[116:], endOfChain)
	}
	entry(0, "Root Entry", 5, 1)
	entry(1, stream, 2, noStream)
	return doc
}

func TestOpenArchiveRejectsCompoundDocuments(t *testing.T) {
	_, err := OpenArchiveBytes(compoundDocument("EncryptedPackage"))
	require.Error(t, err)
	assert.True(t, fault.Is(fault.Format, err))
	assert.Contains(t, err.Error(), "encrypted")

	_, err = OpenArchiveBytes(compoundDocument("Workbook"))
	require.Error(t, err)
	assert.True(t, fault.Is(fault.Archive, err))
	assert.False(t, fault.Is(fault.Format, err))

	// A bare signature is not a readable compound document either.
	_, err = OpenArchiveBytes(append(append([]byte(nil), cfbSignature...), make([]byte, 100)...))
	assert.True(t, fault.Is(fault.Archive, err))
}
