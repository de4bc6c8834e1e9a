package xlpkg

import (
	"errors"
	"fmt"
)

// ErrSheetNotFound indicates no sheet has the requested name.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrSheetExists indicates a sheet with the name already exists.
var ErrSheetExists = errors.New("sheet already exists")

// ErrInvalidSheetName indicates a name that cannot be used for a sheet.
var ErrInvalidSheetName = errors.New("invalid sheet name")

// SheetError represents an error confined to one sheet.
type SheetError struct {
	Sheet string
	Part  string
	Err   error
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("sheet %q (%s): %v", e.Sheet, e.Part, e.Err)
}

func (e *SheetError) Unwrap() error {
	return e.Err
}

// NewSheetError creates a new SheetError.
func NewSheetError(sheet, part string, err error) *SheetError {
	return &SheetError{
		Sheet: sheet,
		Part:  part,
		Err:   err,
	}
}
