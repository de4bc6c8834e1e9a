package opc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/fault"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var declEncoding = regexp.MustCompile(`^<\?xml[^>]*encoding=["']([^"']+)["']`)

// Normalize converts a part to UTF-8: a byte order mark selects UTF-8 or
// UTF-16, otherwise the encoding named in the XML declaration is used.
func Normalize(part string, data []byte) ([]byte, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
	if err != nil {
		return nil, fault.Encoding.Wrap(err, part)
	}
	m := declEncoding.FindSubmatch(out)
	if m == nil {
		return out, nil
	}
	label := strings.ToLower(string(m[1]))
	switch label {
	case "utf-8", "utf8", "us-ascii", "ascii", "utf-16", "utf-16le", "utf-16be":
		return out, nil
	}
	enc, _ := charset.Lookup(label)
	if enc == nil {
		return nil, fault.Encoding.Wrap(errors.New("unsupported encoding "+label), part)
	}
	out, err = enc.NewDecoder().Bytes(out)
	if err != nil {
		return nil, fault.Encoding.Wrap(err, part)
	}
	return out, nil
}

// NewDecoder returns a decoder over normalized part content.
func NewDecoder(data []byte) *xml.Decoder {
	d := xml.NewDecoder(bytes.NewReader(data))
	// Content is already UTF-8; the declaration label is informational.
	d.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) { return input, nil }
	return d
}

// Classify turns a decoder failure inside element tag of part into a fault.
// Truncation becomes an UnexpectedEOFError.
func Classify(part, tag string, err error) error {
	if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
		return fault.UnexpectedEOF(part, tag)
	}
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		switch {
		case strings.Contains(se.Msg, "unexpected EOF"):
			return fault.UnexpectedEOF(part, tag)
		case strings.Contains(se.Msg, "invalid UTF-8"):
			return fault.Encoding.Wrap(err, part)
		}
	}
	return fault.Markup.Wrap(err, part)
}

// decodePart unmarshals the whole of part into v, whose root element is tag.
func decodePart(part, tag string, data []byte, v any) error {
	data, err := Normalize(part, data)
	if err != nil {
		return err
	}
	if err := NewDecoder(data).Decode(v); err != nil {
		return Classify(part, tag, err)
	}
	return nil
}
