package formula

import (
	"strings"

	"github.com/xuri/efp"
)

// AdjustInsert rewrites the references in f, a formula hosted on sheet host,
// for rows or columns inserted into sheet target. Unqualified references are
// affected only when host is target. f is returned unchanged when no
// reference moves.
func AdjustInsert(f, host, target string, e Edit) string {
	return rewrite(f, host, target, e, insertRef)
}

// AdjustRemove rewrites the references in f for rows or columns removed from
// sheet target. References to removed cells become #REF!.
func AdjustRemove(f, host, target string, e Edit) string {
	return rewrite(f, host, target, e, removeRef)
}

func insertRef(r reference, e Edit) (reference, bool) {
	lo, hasLo := r.start.index(e.Axis)
	if !hasLo {
		return r, true
	}
	if !r.isRange {
		n, ok := e.InsertIndex(lo)
		r.start.set(e.Axis, n)
		return r, ok
	}
	hi, _ := r.end.index(e.Axis)
	nlo, nhi, ok := e.InsertSpan(lo, hi)
	r.start.set(e.Axis, nlo)
	r.end.set(e.Axis, nhi)
	return r, ok
}

func removeRef(r reference, e Edit) (reference, bool) {
	lo, hasLo := r.start.index(e.Axis)
	if !hasLo {
		return r, true
	}
	if !r.isRange {
		n, ok := e.RemoveIndex(lo)
		r.start.set(e.Axis, n)
		return r, ok
	}
	hi, _ := r.end.index(e.Axis)
	if hi < lo {
		lo, hi = hi, lo
		r.start, r.end = swapComponent(r.start, r.end, e.Axis)
	}
	nlo, nhi, ok := e.RemoveSpan(lo, hi)
	r.start.set(e.Axis, nlo)
	r.end.set(e.Axis, nhi)
	return r, ok
}

// swapComponent exchanges the axis component of a and b, keeping markers
// with their values.
func swapComponent(a, b endpoint, axis Axis) (endpoint, endpoint) {
	if axis == Columns {
		a.col, b.col = b.col, a.col
		a.colAbs, b.colAbs = b.colAbs, a.colAbs
	} else {
		a.row, b.row = b.row, a.row
		a.rowAbs, b.rowAbs = b.rowAbs, a.rowAbs
	}
	return a, b
}

func rewrite(f, host, target string, e Edit, shift func(reference, Edit) (reference, bool)) string {
	body := strings.TrimPrefix(f, "=")
	if body == "" || e.Count < 1 {
		return f
	}
	ps := efp.ExcelParser()
	tokens := ps.Parse(body)
	if len(tokens) == 0 {
		return f
	}
	changed := false
	operands := make([]string, len(tokens))
	for i, tk := range tokens {
		if tk.TType != efp.TokenTypeOperand || tk.TSubType != efp.TokenSubTypeRange {
			continue
		}
		lead, core, trail := splitSpace(tk.TValue)
		ref, ok := parseReference(core)
		if !ok || !ref.affects(host, target) {
			continue
		}
		moved, ok := shift(ref, e)
		text := ref.invalid()
		if ok {
			text = moved.String()
		}
		if text != ref.String() {
			changed = true
		}
		operands[i] = lead + text + trail
	}
	if !changed {
		return f
	}
	out := render(tokens, operands)
	if strings.HasPrefix(f, "=") {
		return "=" + out
	}
	return out
}

// render writes tokens back as formula text. Non-empty entries of operands
// replace the text of the token at the same index.
func render(tokens []efp.Token, operands []string) string {
	var b strings.Builder
	var open []string
	for i, tk := range tokens {
		switch tk.TType {
		case efp.TokenTypeFunction:
			if tk.TSubType == efp.TokenSubTypeStart {
				open = append(open, tk.TValue)
				switch tk.TValue {
				case "ARRAY":
					b.WriteByte('{')
				case "ARRAYROW":
				default:
					b.WriteString(tk.TValue)
					b.WriteByte('(')
				}
				continue
			}
			name := tk.TValue
			if n := len(open); n > 0 {
				name = open[n-1]
				open = open[:n-1]
			}
			switch name {
			case "ARRAY":
				b.WriteByte('}')
			case "ARRAYROW":
			default:
				b.WriteByte(')')
			}
		case efp.TokenTypeSubexpression:
			if tk.TSubType == efp.TokenSubTypeStart {
				open = append(open, "(")
				b.WriteByte('(')
			} else {
				if n := len(open); n > 0 {
					open = open[:n-1]
				}
				b.WriteByte(')')
			}
		case efp.TokenTypeArgument:
			if i > 0 && tokens[i-1].TType == efp.TokenTypeFunction &&
				tokens[i-1].TSubType == efp.TokenSubTypeStop && inArray(open) {
				b.WriteByte(';')
			} else {
				b.WriteByte(',')
			}
		case efp.TokenTypeOperand:
			switch {
			case operands[i] != "":
				b.WriteString(operands[i])
			case tk.TSubType == efp.TokenSubTypeText:
				b.WriteByte('"')
				b.WriteString(strings.ReplaceAll(tk.TValue, `"`, `""`))
				b.WriteByte('"')
			case tk.TSubType == efp.TokenSubTypeRange:
				b.WriteString(requote(tk.TValue))
			default:
				b.WriteString(tk.TValue)
			}
		case efp.TokenTypeOperatorInfix:
			switch tk.TSubType {
			case efp.TokenSubTypeIntersection:
				b.WriteByte(' ')
			case efp.TokenSubTypeUnion:
				b.WriteByte(',')
			default:
				b.WriteString(tk.TValue)
			}
		case efp.TokenTypeWhitespace:
			b.WriteByte(' ')
		default:
			b.WriteString(tk.TValue)
		}
	}
	return b.String()
}

// inArray reports whether the innermost open group is an array.
func inArray(open []string) bool {
	return len(open) > 0 && open[len(open)-1] == "ARRAY"
}

// splitSpace separates the line breaks and tabs the tokenizer leaves around
// an operand from the operand itself.
func splitSpace(s string) (lead, core, trail string) {
	core = strings.TrimLeft(s, " \t\r\n")
	lead = s[:len(s)-len(core)]
	trimmed := strings.TrimRight(core, " \t\r\n")
	return lead, trimmed, core[len(trimmed):]
}

// requote restores the sheet quoting of an untouched range operand.
func requote(operand string) string {
	lead, s, trail := splitSpace(operand)
	return lead + quoteRange(s) + trail
}

func quoteRange(s string) string {
	if ref, ok := parseReference(s); ok {
		return ref.String()
	}
	i := strings.LastIndex(s, "!")
	if i <= 0 {
		return s
	}
	sheet := s[:i]
	if strings.HasPrefix(sheet, "'") || strings.Contains(sheet, ":") {
		return s
	}
	return QuoteSheet(sheet) + s[i:]
}
