package opc

import (
	"archive/zip"
	"bytes"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/richardlehane/mscfb"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg/fault"
)

// cfbSignature opens every OLE compound document, which is how password
// protected packages and legacy .xls files are stored.
var cfbSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Archive is a read handle over a zip container. Extraction goes through a
// single mutex; callers that want parallelism extract first.
type Archive struct {
	mu    sync.Mutex
	files map[string]*zip.File
	fold  map[string]*zip.File
	names []string
}

// OpenArchive opens the container stored in ra.
func OpenArchive(ra io.ReaderAt, size int64) (*Archive, error) {
	if err := rejectCompoundDocument(ra, size); err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, fault.Archive.Wrap(err, "open container")
	}
	a := &Archive{
		files: make(map[string]*zip.File, len(zr.File)),
		fold:  make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		name := normalizeName(f.Name)
		if strings.HasSuffix(name, "/") {
			continue
		}
		if _, dup := a.files[name]; dup {
			continue
		}
		a.files[name] = f
		a.fold[strings.ToLower(name)] = f
		a.names = append(a.names, name)
	}
	sort.Strings(a.names)
	return a, nil
}

// OpenArchiveBytes is OpenArchive over an in-memory container.
func OpenArchiveBytes(data []byte) (*Archive, error) {
	return OpenArchive(bytes.NewReader(data), int64(len(data)))
}

func rejectCompoundDocument(ra io.ReaderAt, size int64) error {
	if size < int64(len(cfbSignature)) {
		return nil
	}
	head := make([]byte, len(cfbSignature))
	if _, err := ra.ReadAt(head, 0); err != nil && err != io.EOF {
		return fault.IO.Wrap(err, "container header")
	}
	if !bytes.Equal(head, cfbSignature) {
		return nil
	}
	doc, err := mscfb.New(io.NewSectionReader(ra, 0, size))
	if err != nil {
		return fault.Archive.Wrap(err, "compound document")
	}
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if entry.Name == "EncryptedPackage" {
			return fault.Format.New("container is an encrypted package")
		}
	}
	return fault.Archive.New("container is a compound document, not a zip package")
}

func normalizeName(name string) string {
	return strings.TrimPrefix(strings.ReplaceAll(name, "\\", "/"), "/")
}

func (a *Archive) lookup(name string) (*zip.File, bool) {
	name = normalizeName(name)
	if f, ok := a.files[name]; ok {
		return f, true
	}
	f, ok := a.fold[strings.ToLower(name)]
	return f, ok
}

// Has reports whether the container holds part name.
func (a *Archive) Has(name string) bool {
	_, ok := a.lookup(name)
	return ok
}

// Names returns every part name in sorted order.
func (a *Archive) Names() []string {
	return append([]string(nil), a.names...)
}

// Size returns the uncompressed size of part name, or -1 when absent.
func (a *Archive) Size(name string) int64 {
	f, ok := a.lookup(name)
	if !ok {
		return -1
	}
	return int64(f.UncompressedSize64)
}

// Read extracts part name. A missing part is reported with ok == false and a
// nil error.
func (a *Archive) Read(name string) (data []byte, ok bool, err error) {
	f, ok := a.lookup(name)
	if !ok {
		return nil, false, nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	rc, err := f.Open()
	if err != nil {
		return nil, true, fault.Archive.Wrap(err, name)
	}
	defer rc.Close()
	data, err = io.ReadAll(rc)
	if err != nil {
		return nil, true, fault.FromRead(name, err)
	}
	return data, true, nil
}

// ReadRequired is Read for parts whose absence is a format fault.
func (a *Archive) ReadRequired(name string) ([]byte, error) {
	data, ok, err := a.Read(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fault.Format.New("missing required part " + name)
	}
	return data, nil
}
