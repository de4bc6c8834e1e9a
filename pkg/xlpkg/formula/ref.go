package formula

import (
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

type refKind int

const (
	kindCell refKind = iota
	kindColumn
	kindRow
)

// endpoint is one side of an A1 reference. A component is absolute when it
// carries a "$" marker.
type endpoint struct {
	kind   refKind
	col    int
	row    int
	colAbs bool
	rowAbs bool
	// prefix is an explicit sheet qualifier on the second endpoint of a
	// range such as Sheet1!A1:Sheet1!B2.
	prefix bool
}

// reference is a parsed range operand.
type reference struct {
	sheet     string
	qualified bool
	start     endpoint
	end       endpoint
	isRange   bool
}

// parseReference parses an operand such as A1, $B$2:C9, Sheet1!A:C or
// 'My Sheet'!3:5. Names, structured references and 3D references are not
// references for this purpose and report false.
func parseReference(s string) (reference, bool) {
	var ref reference
	parts := strings.Split(s, ":")
	if len(parts) > 2 {
		return ref, false
	}
	sheet, body, ok := splitSheet(parts[0])
	if !ok {
		return ref, false
	}
	if sheet != "" {
		ref.sheet, ref.qualified = sheet, true
	}
	start, ok := parseEndpoint(body)
	if !ok {
		return ref, false
	}
	ref.start = start
	if len(parts) == 1 {
		return ref, start.kind == kindCell
	}
	sheet2, body2, ok := splitSheet(parts[1])
	if !ok {
		return ref, false
	}
	end, ok := parseEndpoint(body2)
	if !ok || end.kind != start.kind {
		return ref, false
	}
	if sheet2 != "" {
		if !ref.qualified || !strings.EqualFold(sheet2, ref.sheet) {
			return ref, false
		}
		end.prefix = true
	}
	ref.end, ref.isRange = end, true
	return ref, true
}

func splitSheet(s string) (sheet, body string, ok bool) {
	i := strings.LastIndex(s, "!")
	if i < 0 {
		return "", s, true
	}
	sheet = s[:i]
	if len(sheet) >= 2 && sheet[0] == '\'' && sheet[len(sheet)-1] == '\'' {
		sheet = strings.ReplaceAll(sheet[1:len(sheet)-1], "''", "'")
	}
	if sheet == "" {
		return "", "", false
	}
	return sheet, s[i+1:], true
}

func parseEndpoint(s string) (endpoint, bool) {
	var ep endpoint
	i := 0
	if i < len(s) && s[i] == '$' {
		ep.colAbs = true
		i++
	}
	j := i
	for j < len(s) && isLetter(s[j]) {
		j++
	}
	letters := s[i:j]
	if letters == "" && ep.colAbs {
		// "$3" is an absolute row.
		ep.colAbs, ep.rowAbs = false, true
	}
	k := j
	if letters != "" && k < len(s) && s[k] == '$' {
		ep.rowAbs = true
		k++
	}
	digits := s[k:]
	for _, c := range []byte(digits) {
		if c < '0' || c > '9' {
			return ep, false
		}
	}
	if letters != "" {
		col, err := excelize.ColumnNameToNumber(letters)
		if err != nil {
			return ep, false
		}
		ep.col = col
	}
	if digits != "" {
		row, err := strconv.Atoi(digits)
		if err != nil || row < 1 || row > excelize.TotalRows {
			return ep, false
		}
		ep.row = row
	}
	switch {
	case letters != "" && digits != "":
		ep.kind = kindCell
	case letters != "" && !ep.rowAbs:
		ep.kind = kindColumn
	case letters == "" && digits != "":
		ep.kind = kindRow
	default:
		return ep, false
	}
	return ep, true
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// affects reports whether the reference lives on target when written in a
// formula hosted on host.
func (r reference) affects(host, target string) bool {
	if r.qualified {
		return strings.EqualFold(r.sheet, target)
	}
	return host != "" && strings.EqualFold(host, target)
}

// index returns the endpoint component on axis and whether it exists.
func (ep endpoint) index(axis Axis) (int, bool) {
	if axis == Columns {
		return ep.col, ep.kind != kindRow
	}
	return ep.row, ep.kind != kindColumn
}

func (ep *endpoint) set(axis Axis, v int) {
	if axis == Columns {
		ep.col = v
	} else {
		ep.row = v
	}
}

func (ep endpoint) String() string {
	var b strings.Builder
	if ep.kind != kindRow {
		if ep.colAbs {
			b.WriteByte('$')
		}
		name, _ := excelize.ColumnNumberToName(ep.col)
		b.WriteString(name)
	}
	if ep.kind != kindColumn {
		if ep.rowAbs {
			b.WriteByte('$')
		}
		b.WriteString(strconv.Itoa(ep.row))
	}
	return b.String()
}

func (r reference) prefix() string {
	if !r.qualified {
		return ""
	}
	return QuoteSheet(r.sheet) + "!"
}

func (r reference) String() string {
	s := r.prefix() + r.start.String()
	if !r.isRange {
		return s
	}
	s += ":"
	if r.end.prefix {
		s += r.prefix()
	}
	return s + r.end.String()
}

// invalid renders the reference as #REF!, keeping its sheet qualifier.
func (r reference) invalid() string {
	return r.prefix() + "#REF!"
}

// QuoteSheet returns name as it must appear before "!" in a formula.
func QuoteSheet(name string) string {
	if needsQuote(name) {
		return "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return name
}

func needsQuote(name string) bool {
	if name == "" {
		return true
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case isLetter(c), c == '_':
		case c >= '0' && c <= '9', c == '.':
			if i == 0 {
				return true
			}
		default:
			return true
		}
	}
	if ep, ok := parseEndpoint(name); ok && ep.kind == kindCell {
		return true
	}
	if strings.EqualFold(name, "TRUE") || strings.EqualFold(name, "FALSE") {
		return true
	}
	return false
}
