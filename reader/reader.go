package reader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sync"

	"github.com/sawtell/planpack/core"
	"github.com/sawtell/planpack/pages"
)

// ErrEncrypted is returned when a source document is encrypted. Encrypted
// plan sheets cannot be cropped or merged.
var ErrEncrypted = errors.New("document is encrypted")

// PDFVersion represents a PDF version
type PDFVersion struct {
	Major int
	Minor int
}

// String returns the version as a string (e.g., "1.7")
func (v PDFVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

var versionRe = regexp.MustCompile(`^%PDF-(\d+)\.(\d+)`)

// Reader represents a PDF file reader. It is safe for concurrent use:
// objects are parsed from positioned reads and the cache is guarded.
type Reader struct {
	file      *os.File
	fileSize  int64
	xrefTable *core.XRefTable
	trailer   core.Dict
	version   PDFVersion

	mu       sync.Mutex
	objCache map[int]core.Object
}

// Ensure Reader implements pages.ObjectResolver
var _ pages.ObjectResolver = (*Reader)(nil)

// NewReader creates a new PDF reader for the given file
func NewReader(file *os.File) (*Reader, error) {
	fileInfo, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	r := &Reader{
		file:     file,
		fileSize: fileInfo.Size(),
		objCache: make(map[int]core.Object),
	}

	version, err := r.parseHeader()
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}
	r.version = version

	xrefTable, err := r.loadXRef()
	if err != nil {
		return nil, fmt.Errorf("failed to load xref: %w", err)
	}
	r.xrefTable = xrefTable
	r.trailer = xrefTable.Trailer

	if r.trailer.Has("Encrypt") {
		return nil, ErrEncrypted
	}

	return r, nil
}

// Open opens a PDF file and returns a Reader
func Open(filename string) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	r, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}

	return r, nil
}

// Close closes the PDF file
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// parseHeader parses the PDF header (%PDF-x.y)
func (r *Reader) parseHeader() (PDFVersion, error) {
	header := make([]byte, 16)
	n, err := r.file.ReadAt(header, 0)
	if err != nil && err != io.EOF {
		return PDFVersion{}, fmt.Errorf("failed to read header: %w", err)
	}
	if n < 8 {
		return PDFVersion{}, fmt.Errorf("header too short: %d bytes", n)
	}

	matches := versionRe.FindSubmatch(header[:n])
	if matches == nil {
		return PDFVersion{}, fmt.Errorf("invalid PDF header: %q", header[:n])
	}

	var major, minor int
	fmt.Sscanf(string(matches[1]), "%d", &major)
	fmt.Sscanf(string(matches[2]), "%d", &minor)

	return PDFVersion{Major: major, Minor: minor}, nil
}

// loadXRef loads the cross-reference table, merging incremental updates
func (r *Reader) loadXRef() (*core.XRefTable, error) {
	xrefParser := core.NewXRefParser(io.NewSectionReader(r.file, 0, r.fileSize))
	table, err := xrefParser.ParseXRefFromEOF()
	if err != nil {
		return nil, fmt.Errorf("failed to parse xref: %w", err)
	}

	if table.Trailer.Get("Prev") != nil {
		tables, err := xrefParser.ParseAllXRefs()
		if err != nil {
			return nil, fmt.Errorf("failed to parse all xrefs: %w", err)
		}
		table = core.MergeXRefTables(tables...)
	}

	return table, nil
}

// Version returns the PDF version
func (r *Reader) Version() PDFVersion {
	return r.version
}

// Trailer returns the trailer dictionary
func (r *Reader) Trailer() core.Dict {
	return r.trailer
}

// GetObject loads an object by its number, caching the result.
func (r *Reader) GetObject(objNum int) (core.Object, error) {
	r.mu.Lock()
	obj, ok := r.objCache[objNum]
	r.mu.Unlock()
	if ok {
		return obj, nil
	}

	entry, ok := r.xrefTable.Get(objNum)
	if !ok {
		return nil, fmt.Errorf("object %d not found in xref table", objNum)
	}
	if !entry.InUse {
		return nil, fmt.Errorf("object %d is not in use", objNum)
	}

	var err error
	if entry.InObjectStream {
		obj, err = r.loadFromObjectStream(objNum, entry)
	} else {
		obj, err = r.loadAtOffset(objNum, entry.Offset)
	}
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.objCache[objNum] = obj
	r.mu.Unlock()

	return obj, nil
}

// loadAtOffset parses an indirect object stored directly in the file.
// The parse must not hold the cache lock: indirect stream lengths resolve
// back through GetObject.
func (r *Reader) loadAtOffset(objNum int, offset int64) (core.Object, error) {
	if offset < 0 || offset >= r.fileSize {
		return nil, fmt.Errorf("object %d offset %d out of file bounds", objNum, offset)
	}

	parser := core.NewParser(io.NewSectionReader(r.file, offset, r.fileSize-offset))
	parser.SetReferenceResolver(r)

	indObj, err := parser.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("failed to parse object %d: %w", objNum, err)
	}

	if indObj.Ref.Number != objNum {
		return nil, fmt.Errorf("object number mismatch: expected %d, got %d", objNum, indObj.Ref.Number)
	}

	return indObj.Object, nil
}

// loadFromObjectStream extracts an object stored inside an object stream
// (xref stream type 2 entry).
func (r *Reader) loadFromObjectStream(objNum int, entry *core.XRefEntry) (core.Object, error) {
	containerObj, err := r.GetObject(entry.StreamNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load object stream %d: %w", entry.StreamNumber, err)
	}

	stream, ok := containerObj.(*core.Stream)
	if !ok {
		return nil, fmt.Errorf("object stream %d is not a stream: %T", entry.StreamNumber, containerObj)
	}

	objStream, err := core.NewObjectStream(stream)
	if err != nil {
		return nil, fmt.Errorf("invalid object stream %d: %w", entry.StreamNumber, err)
	}

	obj, gotNum, err := objStream.GetObjectByIndex(entry.StreamIndex)
	if err != nil {
		// Fall back to lookup by number: some writers reorder entries
		obj, _, err = objStream.GetObjectByNumber(objNum)
		if err != nil {
			return nil, fmt.Errorf("object %d not found in object stream %d: %w", objNum, entry.StreamNumber, err)
		}
		return obj, nil
	}
	if gotNum != objNum {
		obj, _, err = objStream.GetObjectByNumber(objNum)
		if err != nil {
			return nil, fmt.Errorf("object %d not found in object stream %d: %w", objNum, entry.StreamNumber, err)
		}
	}

	return obj, nil
}

// ResolveReference resolves an indirect reference
func (r *Reader) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	return r.GetObject(ref.Number)
}

// Resolve resolves an object if it's an indirect reference, otherwise
// returns it as-is. Implements pages.ObjectResolver.
func (r *Reader) Resolve(obj core.Object) (core.Object, error) {
	if ref, ok := obj.(core.IndirectRef); ok {
		return r.ResolveReference(ref)
	}
	return obj, nil
}

// GetCatalog returns the document catalog (root object)
func (r *Reader) GetCatalog() (core.Dict, error) {
	ref, ok := r.trailer.GetIndirectRef("Root")
	if !ok {
		return nil, fmt.Errorf("trailer missing or invalid /Root entry")
	}

	obj, err := r.ResolveReference(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog: %w", err)
	}

	catalog, ok := obj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("catalog is not a dictionary: %T", obj)
	}

	return catalog, nil
}

// GetInfo returns the document info dictionary, or nil if absent.
func (r *Reader) GetInfo() (core.Dict, error) {
	ref, ok := r.trailer.GetIndirectRef("Info")
	if !ok {
		return nil, nil // Info is optional
	}

	obj, err := r.ResolveReference(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve info: %w", err)
	}

	info, ok := obj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("info is not a dictionary: %T", obj)
	}

	return info, nil
}

// FileSize returns the size of the PDF file in bytes
func (r *Reader) FileSize() int64 {
	return r.fileSize
}

// PageTree loads and returns the document's page tree.
func (r *Reader) PageTree() (*pages.PageTree, error) {
	catalog, err := r.GetCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	pagesRef := catalog.Get("Pages")
	if pagesRef == nil {
		return nil, fmt.Errorf("catalog missing /Pages entry")
	}

	pagesObj, err := r.Resolve(pagesRef)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve pages: %w", err)
	}

	pagesDict, ok := pagesObj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("pages is not a dictionary: %T", pagesObj)
	}

	return pages.NewPageTree(pagesDict, r), nil
}

// PageCount returns the number of pages in the PDF
func (r *Reader) PageCount() (int, error) {
	tree, err := r.PageTree()
	if err != nil {
		return 0, err
	}
	return tree.Count()
}

// GetPage returns the page at the given index (0-based)
func (r *Reader) GetPage(index int) (*pages.Page, error) {
	tree, err := r.PageTree()
	if err != nil {
		return nil, err
	}
	return tree.GetPage(index)
}
