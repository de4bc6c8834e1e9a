package parser

import (
	"encoding/xml"
	"io"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
)

// ParseSharedStrings loads a sharedStrings part in document order. Duplicate
// items are kept so cell indexes stay valid.
func ParseSharedStrings(part string, data []byte) (*models.SharedStringTable, error) {
	sst := models.NewSharedStringTable()
	r, err := newReader(part, data)
	if err != nil {
		return nil, err
	}
	for {
		tok, err := r.top()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "si" {
			item, err := r.parseStringItem("si")
			if err != nil {
				return nil, err
			}
			sst.Append(item)
		}
	}
	return sst, nil
}
