package writer

import (
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/models"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/opc"
)

// SharedStringsPart renders the table. count is the number of registrations
// since the last reset and uniqueCount the number of items.
func SharedStringsPart(sst *models.SharedStringTable) []byte {
	items := sst.Items()
	b := newBuffer()
	b.open("sst", "xmlns", opc.NSSpreadsheetML, "count", itoa(sst.Count()), "uniqueCount", itoa(len(items)))
	for _, item := range items {
		b.open("si")
		if item.RichText != nil {
			b.richText(*item.RichText)
		} else {
			b.textElement(item.Text)
		}
		b.close("si")
	}
	b.close("sst")
	return b.Bytes()
}
