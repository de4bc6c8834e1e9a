package opc

import (
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/fault"
)

// Resolve returns the relationship table of scopePart ("" for the package
// root). A scope without a .rels part has an empty table.
func Resolve(a *Archive, scopePart string) (*Relationships, error) {
	data, ok, err := a.Read(RelsPath(scopePart))
	if err != nil {
		return nil, err
	}
	if !ok {
		return NewRelationships(scopePart), nil
	}
	return ParseRelationships(scopePart, data)
}

// ReadManifest decodes [Content_Types].xml, which every package must carry.
func ReadManifest(a *Archive) (*ContentTypes, error) {
	data, err := a.ReadRequired(PartContentTypes)
	if err != nil {
		return nil, err
	}
	return ParseContentTypes(data)
}

// OfficeDocument locates the main document part in the root relationships.
func OfficeDocument(root *Relationships) (string, error) {
	rel, ok := root.First(RelTypeOfficeDocument)
	if !ok {
		return "", fault.Format.New("package has no officeDocument relationship")
	}
	return root.TargetPath(rel), nil
}
