// Package fault defines the error taxonomy shared by every xlpkg package.
package fault

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"

	goerrors "gopkg.in/src-d/go-errors.v1"
)

var (
	// IO reports a failure accessing the underlying byte source.
	IO = goerrors.NewKind("i/o fault reading %s")
	// Archive reports a corrupt or non-zip container.
	Archive = goerrors.NewKind("archive fault: %s")
	// Markup reports malformed XML in a part.
	Markup = goerrors.NewKind("markup fault in %s")
	// Encoding reports text that cannot be decoded.
	Encoding = goerrors.NewKind("encoding fault in %s")
	// Format reports a required part that is missing or structurally invalid.
	Format = goerrors.NewKind("format fault: %s")
	// TypeMismatch reports content incompatible with its declared data type.
	TypeMismatch = goerrors.NewKind("type mismatch: value %q is not valid for data type %q")
)

// UnexpectedEOFError is raised when a part ends before the closing tag of Tag.
type UnexpectedEOFError struct {
	Tag string
}

func (e *UnexpectedEOFError) Error() string {
	return fmt.Sprintf("unexpected end of stream before </%s>", e.Tag)
}

// Is reports whether any error in err's chain belongs to kind.
func Is(kind *goerrors.Kind, err error) bool {
	for err != nil {
		if kind.Is(err) {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// UnexpectedEOF wraps a truncated-stream condition as a Markup fault for part.
func UnexpectedEOF(part, tag string) error {
	return Markup.Wrap(&UnexpectedEOFError{Tag: tag}, part)
}

// IsUnexpectedEOF reports whether err carries an UnexpectedEOFError.
func IsUnexpectedEOF(err error) (*UnexpectedEOFError, bool) {
	for err != nil {
		if e, ok := err.(*UnexpectedEOFError); ok {
			return e, true
		}
		if c, ok := err.(interface{ Cause() error }); ok && c.Cause() != nil && c.Cause() != err {
			err = c.Cause()
			continue
		}
		err = errors.Unwrap(err)
	}
	return nil, false
}

// FromRead classifies a raw read error for part. io.ErrUnexpectedEOF while
// inflating a zip entry is treated as an archive fault.
func FromRead(part string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return Archive.Wrap(err, part+": truncated entry")
	}
	if errors.Is(err, zip.ErrChecksum) || errors.Is(err, zip.ErrFormat) {
		return Archive.Wrap(err, part)
	}
	return IO.Wrap(err, part)
}
