// Package writer serializes a workbook model back into a spreadsheet package:
// it renders the regenerated parts, carries passthrough parts and assembles
// the zip container with its content-type manifest.
package writer

import (
	"archive/zip"
	"io"
	"sort"

	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/fault"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/opc"
	"go.uber.org/zap"
)

// fallbackContentType is recorded for extensions neither manifest knows.
const fallbackContentType = "application/octet-stream"

// Manager accumulates the parts of an output package.
type Manager struct {
	source *opc.ContentTypes
	types  *opc.ContentTypes
	parts  map[string][]byte
	log    *zap.Logger
}

// NewManager returns an empty manager. source is the manifest of the package
// the workbook was read from, consulted for passthrough parts; it may be nil.
func NewManager(source *opc.ContentTypes, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		source: source,
		types:  opc.NewContentTypes(),
		parts:  make(map[string][]byte),
		log:    log,
	}
}

// Add records a part. An empty contentType resolves the type from the source
// manifest, then from the extension.
func (m *Manager) Add(name string, data []byte, contentType string) {
	m.parts[name] = data
	ext := opc.Ext(name)
	switch {
	case contentType != "":
	case m.source != nil && m.source.Overrides[name] != "":
		contentType = m.source.Overrides[name]
	case m.types.Defaults[ext] != "":
		return
	case m.source != nil && m.source.Defaults[ext] != "":
		m.types.Defaults[ext] = m.source.Defaults[ext]
		return
	default:
		m.types.Defaults[ext] = fallbackContentType
		return
	}
	if m.types.Defaults[ext] == contentType {
		return
	}
	m.types.Overrides[name] = contentType
}

// Has reports whether a part has been recorded.
func (m *Manager) Has(name string) bool {
	_, ok := m.parts[name]
	return ok
}

// Names returns the recorded part names in archive order.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.parts))
	for name := range m.parts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := rank(names[i]), rank(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})
	return names
}

func rank(name string) int {
	switch name {
	case opc.PartContentTypes:
		return 0
	case opc.PartRootRels:
		return 1
	}
	return 2
}

// Write emits the manifest and every part as a zip archive. Entry order and
// timestamps are fixed, so equal models produce identical bytes.
func (m *Manager) Write(w io.Writer) error {
	manifest, err := m.types.Marshal()
	if err != nil {
		return fault.Format.Wrap(err, opc.PartContentTypes)
	}
	m.parts[opc.PartContentTypes] = manifest

	zw := zip.NewWriter(w)
	for _, name := range m.Names() {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return fault.IO.Wrap(err, name)
		}
		if _, err := fw.Write(m.parts[name]); err != nil {
			return fault.IO.Wrap(err, name)
		}
		m.log.Debug("wrote part", zap.String("part", name), zap.Int("bytes", len(m.parts[name])))
	}
	if err := zw.Close(); err != nil {
		return fault.IO.Wrap(err, "zip directory")
	}
	return nil
}
