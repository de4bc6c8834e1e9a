package opc

import (
	"path"
	"strings"
)

// RelsPath returns the relationship part that belongs to part.
// RelsPath("xl/worksheets/sheet1.xml") == "xl/worksheets/_rels/sheet1.xml.rels".
// The package root ("") maps to "_rels/.rels".
func RelsPath(part string) string {
	part = strings.TrimPrefix(part, "/")
	if part == "" {
		return PartRootRels
	}
	dir, name := path.Split(part)
	return dir + "_rels/" + name + ".rels"
}

// ResolveTarget resolves a relationship target against the part that owns the
// relationship. Absolute targets ("/xl/styles.xml") are taken from the package
// root; relative targets are joined with the source part's directory.
func ResolveTarget(sourcePart, target string) string {
	if strings.HasPrefix(target, "/") {
		return path.Clean(strings.TrimPrefix(target, "/"))
	}
	dir := path.Dir(strings.TrimPrefix(sourcePart, "/"))
	if sourcePart == "" || dir == "." {
		return path.Clean(target)
	}
	return path.Clean(path.Join(dir, target))
}

// RelativeTarget is the inverse of ResolveTarget: it expresses part relative
// to the directory of sourcePart.
func RelativeTarget(sourcePart, part string) string {
	from := strings.Split(path.Dir(strings.TrimPrefix(sourcePart, "/")), "/")
	if len(from) == 1 && from[0] == "." {
		return part
	}
	to := strings.Split(part, "/")
	i := 0
	for i < len(from) && i < len(to)-1 && from[i] == to[i] {
		i++
	}
	var b strings.Builder
	for j := i; j < len(from); j++ {
		b.WriteString("../")
	}
	b.WriteString(strings.Join(to[i:], "/"))
	return b.String()
}

// Ext returns the lower-case extension of part without the dot.
func Ext(part string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(part), "."))
}
