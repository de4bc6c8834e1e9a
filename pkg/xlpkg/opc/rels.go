package opc

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// Relationship is one (id, type URI, target) triple of a relationship part.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// External reports whether the target lives outside the package.
func (r Relationship) External() bool {
	return strings.EqualFold(r.TargetMode, "External")
}

// Relationships is the relationship table of a single container scope.
// Entries keep their document order; lookups are by id.
type Relationships struct {
	// Source is the part that owns the table ("" for the package root).
	Source string
	list   []Relationship
	byID   map[string]int
}

type relationshipsXML struct {
	XMLName      xml.Name       `xml:"Relationships"`
	Xmlns        string         `xml:"xmlns,attr,omitempty"`
	Relationship []Relationship `xml:"Relationship"`
}

// NewRelationships returns an empty table owned by source.
func NewRelationships(source string) *Relationships {
	return &Relationships{Source: source, byID: make(map[string]int)}
}

// ParseRelationships decodes the .rels part owned by source.
func ParseRelationships(source string, data []byte) (*Relationships, error) {
	var doc relationshipsXML
	if err := decodePart(RelsPath(source), "Relationships", data, &doc); err != nil {
		return nil, err
	}
	rels := NewRelationships(source)
	for _, r := range doc.Relationship {
		if _, dup := rels.byID[r.ID]; dup {
			continue
		}
		rels.byID[r.ID] = len(rels.list)
		rels.list = append(rels.list, r)
	}
	return rels, nil
}

// Len returns the number of entries.
func (r *Relationships) Len() int {
	if r == nil {
		return 0
	}
	return len(r.list)
}

// List returns a copy of the entries in document order.
func (r *Relationships) List() []Relationship {
	if r == nil {
		return nil
	}
	return append([]Relationship(nil), r.list...)
}

// Get returns the entry with the given id. A missing id is not an error.
func (r *Relationships) Get(id string) (Relationship, bool) {
	if r == nil {
		return Relationship{}, false
	}
	i, ok := r.byID[id]
	if !ok {
		return Relationship{}, false
	}
	return r.list[i], true
}

// ByType returns every entry whose type URI equals relType.
func (r *Relationships) ByType(relType string) []Relationship {
	if r == nil {
		return nil
	}
	var out []Relationship
	for _, rel := range r.list {
		if rel.Type == relType {
			out = append(out, rel)
		}
	}
	return out
}

// First returns the first entry of relType.
func (r *Relationships) First(relType string) (Relationship, bool) {
	for _, rel := range r.ByType(relType) {
		return rel, true
	}
	return Relationship{}, false
}

// TargetPath resolves rel's target against the owning part.
func (r *Relationships) TargetPath(rel Relationship) string {
	return ResolveTarget(r.Source, rel.Target)
}

// Add appends an entry with the next free rIdN and returns the id.
func (r *Relationships) Add(relType, target string) string {
	n := len(r.list) + 1
	id := "rId" + strconv.Itoa(n)
	for {
		if _, taken := r.byID[id]; !taken {
			break
		}
		n++
		id = "rId" + strconv.Itoa(n)
	}
	r.Put(Relationship{ID: id, Type: relType, Target: target})
	return id
}

// Put inserts or replaces an entry keyed by its id.
func (r *Relationships) Put(rel Relationship) {
	if r.byID == nil {
		r.byID = make(map[string]int)
	}
	if i, ok := r.byID[rel.ID]; ok {
		r.list[i] = rel
		return
	}
	r.byID[rel.ID] = len(r.list)
	r.list = append(r.list, rel)
}

// Marshal encodes the table as a .rels part.
func (r *Relationships) Marshal() ([]byte, error) {
	doc := relationshipsXML{Xmlns: NSRelationships, Relationship: r.List()}
	out, err := xml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal relationships of %q: %w", r.Source, err)
	}
	return append([]byte(xml.Header), out...), nil
}
