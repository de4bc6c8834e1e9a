// Package models defines the in-memory workbook model.
package models

import (
	"strconv"
	"strings"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/fault"
)

// Cell data type codes as they appear in the t attribute of a cell.
const (
	TypeString        = "s"
	TypeFormulaString = "str"
	TypeFormula       = "f"
	TypeNumeric       = "n"
	TypeBool          = "b"
	TypeNull          = "null"
	TypeInline        = "inlineStr"
	TypeError         = "e"
	TypeDate          = "d"
)

// ValueKind classifies a resolved cell value.
type ValueKind int

const (
	KindString ValueKind = iota
	KindNumeric
	KindBool
	KindNull
	KindInline
	KindError
)

// Value is a resolved, typed cell value.
type Value struct {
	Kind   ValueKind
	Text   string
	Number float64
	Bool   bool
}

// StringValue returns a string value.
func StringValue(s string) Value { return Value{Kind: KindString, Text: s} }

// NumericValue returns a numeric value.
func NumericValue(f float64) Value { return Value{Kind: KindNumeric, Number: f} }

// BoolValue returns a boolean value.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// ErrorValue returns an error value such as "#DIV/0!".
func ErrorValue(code string) Value { return Value{Kind: KindError, Text: code} }

// String returns the textual form of the value.
func (v Value) String() string {
	switch v.Kind {
	case KindString, KindError:
		return v.Text
	case KindNumeric:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return ""
	}
}

// Font carries the run properties of a rich-text run that the engine keeps.
type Font struct {
	Name      string  `json:"name,omitempty"`
	Size      float64 `json:"size,omitempty"`
	Bold      bool    `json:"bold,omitempty"`
	Italic    bool    `json:"italic,omitempty"`
	Underline string  `json:"underline,omitempty"`
	Strike    bool    `json:"strike,omitempty"`
	Color     string  `json:"color,omitempty"`
	Family    int     `json:"family,omitempty"`
	Scheme    string  `json:"scheme,omitempty"`
}

// TextRun is one run of a rich-text value.
type TextRun struct {
	Text string `json:"text"`
	Font *Font  `json:"font,omitempty"`
}

// RichText is an ordered sequence of runs.
type RichText struct {
	Runs []TextRun `json:"runs"`
}

// Text concatenates the text of every run.
func (r RichText) Text() string {
	var b strings.Builder
	for _, run := range r.Runs {
		b.WriteString(run.Text)
	}
	return b.String()
}

// Equal reports whether two rich-text values have identical runs.
func (r RichText) Equal(o RichText) bool {
	if len(r.Runs) != len(o.Runs) {
		return false
	}
	for i := range r.Runs {
		a, b := r.Runs[i], o.Runs[i]
		if a.Text != b.Text {
			return false
		}
		if (a.Font == nil) != (b.Font == nil) {
			return false
		}
		if a.Font != nil && *a.Font != *b.Font {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of r.
func (r RichText) Clone() RichText {
	out := RichText{Runs: make([]TextRun, len(r.Runs))}
	for i, run := range r.Runs {
		out.Runs[i] = TextRun{Text: run.Text}
		if run.Font != nil {
			f := *run.Font
			out.Runs[i].Font = &f
		}
	}
	return out
}

// Attr is an ordered attribute pair, used for formula attributes.
type Attr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CellValue holds the content slots of a cell: a resolved typed value cache,
// the raw source text it is inferred from, optional rich text and an optional
// formula. A CellValue is not safe for concurrent use.
type CellValue struct {
	typed        *Value
	raw          *string
	richText     *RichText
	formula      *string
	formulaAttrs []Attr
}

// NewRawCellValue returns a value whose type is inferred from raw on first read.
func NewRawCellValue(raw string) *CellValue {
	return &CellValue{raw: &raw}
}

// TypedValue resolves the typed value. The raw text is classified once and
// the result cached; later calls never re-read the raw text.
func (c *CellValue) TypedValue() (Value, bool) {
	if c.typed == nil && c.raw != nil {
		v := GuessTypedValue(*c.raw)
		c.typed = &v
	}
	if c.typed == nil {
		return Value{}, false
	}
	return *c.typed, true
}

// Raw returns the unvalidated source text, if any.
func (c *CellValue) Raw() (string, bool) {
	if c.raw == nil {
		return "", false
	}
	return *c.raw, true
}

// RichText returns the rich-text content, if any.
func (c *CellValue) RichText() (RichText, bool) {
	if c.richText == nil {
		return RichText{}, false
	}
	return *c.richText, true
}

// Formula returns the formula text without a leading "=".
func (c *CellValue) Formula() (string, bool) {
	if c.formula == nil {
		return "", false
	}
	return *c.formula, true
}

// IsFormula reports whether a formula is set.
func (c *CellValue) IsFormula() bool { return c.formula != nil }

// FormulaAttributes returns the formula attribute pairs in order.
func (c *CellValue) FormulaAttributes() []Attr {
	return append([]Attr(nil), c.formulaAttrs...)
}

// FormulaAttribute returns the value of one formula attribute.
func (c *CellValue) FormulaAttribute(name string) (string, bool) {
	for _, a := range c.formulaAttrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// DisplayValue returns the typed value text, else the rich-text text, else "".
func (c *CellValue) DisplayValue() string {
	if v, ok := c.TypedValue(); ok {
		return v.String()
	}
	if c.richText != nil {
		return c.richText.Text()
	}
	return ""
}

// IsEmpty reports whether the cell has no value, rich text or formula.
func (c *CellValue) IsEmpty() bool {
	if _, ok := c.TypedValue(); ok {
		return false
	}
	return c.richText == nil && c.formula == nil
}

// DataType returns the cell type code matching the current content.
func (c *CellValue) DataType() string {
	if v, ok := c.TypedValue(); ok {
		switch v.Kind {
		case KindNumeric:
			return TypeNumeric
		case KindBool:
			return TypeBool
		case KindNull:
			return TypeNull
		case KindInline:
			return TypeInline
		case KindError:
			return TypeError
		}
	}
	return TypeString
}

func (c *CellValue) setTyped(v Value) *CellValue {
	c.typed = &v
	c.raw = nil
	c.richText = nil
	c.formula = nil
	c.formulaAttrs = nil
	return c
}

// SetValue infers the type of s and stores it.
func (c *CellValue) SetValue(s string) *CellValue {
	return c.setTyped(GuessTypedValue(s))
}

// SetString stores s as text without inference.
func (c *CellValue) SetString(s string) *CellValue { return c.setTyped(StringValue(s)) }

// SetNumber stores a numeric value.
func (c *CellValue) SetNumber(f float64) *CellValue { return c.setTyped(NumericValue(f)) }

// SetBool stores a boolean value.
func (c *CellValue) SetBool(b bool) *CellValue { return c.setTyped(BoolValue(b)) }

// SetError stores an error value.
func (c *CellValue) SetError(code string) *CellValue { return c.setTyped(ErrorValue(code)) }

// SetRaw sets the raw source text. The typed value is inferred lazily.
func (c *CellValue) SetRaw(raw string) *CellValue {
	c.raw = &raw
	return c
}

// SetCached stores the cached result of a formula cell. The formula is kept.
func (c *CellValue) SetCached(v Value) *CellValue {
	c.typed = &v
	c.raw = nil
	return c
}

// SetRichText stores rich text, clearing a plain value and formula.
func (c *CellValue) SetRichText(rt RichText) *CellValue {
	rt = rt.Clone()
	c.typed = nil
	c.raw = nil
	c.richText = &rt
	c.formula = nil
	c.formulaAttrs = nil
	return c
}

// SetFormula stores a formula, clearing a plain value and rich text. A leading
// "=" is dropped.
func (c *CellValue) SetFormula(f string) *CellValue {
	f = strings.TrimPrefix(f, "=")
	c.typed = nil
	c.raw = nil
	c.richText = nil
	c.formula = &f
	return c
}

// SetFormulaAttributes replaces the formula attribute pairs.
func (c *CellValue) SetFormulaAttributes(attrs []Attr) *CellValue {
	c.formulaAttrs = append([]Attr(nil), attrs...)
	return c
}

// SetFormulaAttribute sets or appends one formula attribute.
func (c *CellValue) SetFormulaAttribute(name, value string) *CellValue {
	for i := range c.formulaAttrs {
		if c.formulaAttrs[i].Name == name {
			c.formulaAttrs[i].Value = value
			return c
		}
	}
	c.formulaAttrs = append(c.formulaAttrs, Attr{Name: name, Value: value})
	return c
}

// SetSharedStringItem copies the content of a shared string item.
func (c *CellValue) SetSharedStringItem(item SharedStringItem) *CellValue {
	if item.RichText != nil {
		return c.SetRichText(*item.RichText)
	}
	return c.SetString(item.Text)
}

// Clone returns an independent copy.
func (c *CellValue) Clone() *CellValue {
	out := &CellValue{formulaAttrs: append([]Attr(nil), c.formulaAttrs...)}
	if c.typed != nil {
		v := *c.typed
		out.typed = &v
	}
	if c.raw != nil {
		r := *c.raw
		out.raw = &r
	}
	if c.richText != nil {
		rt := c.richText.Clone()
		out.richText = &rt
	}
	if c.formula != nil {
		f := *c.formula
		out.formula = &f
	}
	return out
}

// GuessTypedValue classifies text: NULL, number, TRUE/FALSE, else string.
func GuessTypedValue(s string) Value {
	upper := strings.ToUpper(s)
	if upper == "NULL" {
		return Value{Kind: KindNull}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return NumericValue(f)
	}
	switch upper {
	case "TRUE":
		return BoolValue(true)
	case "FALSE":
		return BoolValue(false)
	}
	return StringValue(s)
}

// CheckDataType validates value against a declared cell type code.
func CheckDataType(value, dataType string) error {
	switch dataType {
	case TypeString, TypeFormulaString, TypeFormula, TypeNull, TypeInline, TypeError, TypeDate:
		return nil
	case TypeNumeric, "":
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fault.TypeMismatch.New(value, dataType)
		}
		return nil
	case TypeBool:
		switch strings.ToUpper(value) {
		case "TRUE", "FALSE", "1", "0":
			return nil
		}
		return fault.TypeMismatch.New(value, dataType)
	}
	return fault.TypeMismatch.New(value, dataType)
}
