package opc

import (
	"encoding/xml"
	"sort"
	"strings"
)

// ContentTypes is the package manifest ([Content_Types].xml).
type ContentTypes struct {
	// Defaults maps a lower-case extension to its content type.
	Defaults map[string]string
	// Overrides maps a part name (without leading slash) to its content type.
	Overrides map[string]string
}

type contentTypesXML struct {
	XMLName  xml.Name      `xml:"Types"`
	Xmlns    string        `xml:"xmlns,attr,omitempty"`
	Default  []defaultXML  `xml:"Default"`
	Override []overrideXML `xml:"Override"`
}

type defaultXML struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type overrideXML struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// NewContentTypes returns a manifest with the rels and xml defaults.
func NewContentTypes() *ContentTypes {
	return &ContentTypes{
		Defaults: map[string]string{
			"rels": ContentTypeRelationships,
			"xml":  ContentTypeXML,
		},
		Overrides: make(map[string]string),
	}
}

// ParseContentTypes decodes the manifest part.
func ParseContentTypes(data []byte) (*ContentTypes, error) {
	var doc contentTypesXML
	if err := decodePart(PartContentTypes, "Types", data, &doc); err != nil {
		return nil, err
	}
	ct := &ContentTypes{
		Defaults:  make(map[string]string, len(doc.Default)),
		Overrides: make(map[string]string, len(doc.Override)),
	}
	for _, d := range doc.Default {
		ct.Defaults[strings.ToLower(d.Extension)] = d.ContentType
	}
	for _, o := range doc.Override {
		ct.Overrides[strings.TrimPrefix(o.PartName, "/")] = o.ContentType
	}
	return ct, nil
}

// Lookup returns the content type of part, preferring an override.
func (c *ContentTypes) Lookup(part string) (string, bool) {
	if c == nil {
		return "", false
	}
	part = strings.TrimPrefix(part, "/")
	if ct, ok := c.Overrides[part]; ok {
		return ct, true
	}
	ct, ok := c.Defaults[Ext(part)]
	return ct, ok
}

// Marshal encodes the manifest with entries sorted for stable output.
func (c *ContentTypes) Marshal() ([]byte, error) {
	doc := contentTypesXML{Xmlns: NSContentTypes}
	exts := make([]string, 0, len(c.Defaults))
	for ext := range c.Defaults {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		doc.Default = append(doc.Default, defaultXML{Extension: ext, ContentType: c.Defaults[ext]})
	}
	parts := make([]string, 0, len(c.Overrides))
	for p := range c.Overrides {
		parts = append(parts, p)
	}
	sort.Strings(parts)
	for _, p := range parts {
		doc.Override = append(doc.Override, overrideXML{PartName: "/" + p, ContentType: c.Overrides[p]})
	}
	out, err := xml.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
