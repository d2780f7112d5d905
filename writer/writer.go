// Package writer builds and serializes output PDF documents.
//
// A Document accumulates pages imported from source documents. Importing
// deep-copies each page's object graph (content streams, resources, and
// everything they reference) into the output, remapping indirect
// references to freshly allocated object numbers. Objects shared between
// pages of the same source are imported once and shared in the output too.
//
// Serialization is deterministic: object numbers are assigned in import
// order, dictionaries are written with sorted keys, and the document ID is
// derived from the written bytes. Two builds from identical inputs produce
// identical files.
package writer

import (
	"bufio"
	"crypto/md5"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sawtell/planpack/core"
	"github.com/sawtell/planpack/pages"
)

// Document is an output PDF under construction. Not safe for concurrent
// use: the build pipeline appends pages from a single goroutine.
type Document struct {
	objects []core.Object // objects[i] has object number i+1

	catalogRef core.IndirectRef
	pagesRef   core.IndirectRef
	infoRef    core.IndirectRef

	pageRefs  []core.IndirectRef
	info      core.Dict
	importers map[pages.ObjectResolver]*importer
	written   bool
}

// NewDocument creates an empty output document.
func NewDocument() *Document {
	d := &Document{
		info:      make(core.Dict),
		importers: make(map[pages.ObjectResolver]*importer),
	}
	// Fixed low object numbers keep the file layout stable
	d.catalogRef = d.allocate()
	d.pagesRef = d.allocate()
	d.infoRef = d.allocate()
	return d
}

// allocate reserves the next object number.
func (d *Document) allocate() core.IndirectRef {
	d.objects = append(d.objects, nil)
	return core.IndirectRef{Number: len(d.objects)}
}

// setObject fills a previously allocated object slot.
func (d *Document) setObject(ref core.IndirectRef, obj core.Object) {
	d.objects[ref.Number-1] = obj
}

// PageCount returns the number of pages appended so far.
func (d *Document) PageCount() int {
	return len(d.pageRefs)
}

// SetInfo fills the document information dictionary. The timestamp is the
// only environment-dependent value in the output; callers that need
// reproducible artifacts pass a fixed time.
func (d *Document) SetInfo(title, producer string, created time.Time) {
	if title != "" {
		d.info.Set("Title", core.String(title))
	}
	if producer != "" {
		d.info.Set("Producer", core.String(producer))
	}
	date := core.String(pdfDate(created))
	d.info.Set("CreationDate", date)
	d.info.Set("ModDate", date)
}

// pdfDate formats a time as a PDF date string (D:YYYYMMDDHHmmSS+HH'mm').
func pdfDate(t time.Time) string {
	_, offset := t.Zone()
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("D:%s%c%02d'%02d'", t.Format("20060102150405"), sign, offset/3600, (offset%3600)/60)
}

// AppendPage imports a page dictionary from a source document. Objects the
// page references are deep-copied through resolver; objects already
// imported from the same source are shared.
func (d *Document) AppendPage(resolver pages.ObjectResolver, pageDict core.Dict) error {
	if d.written {
		return fmt.Errorf("document already serialized")
	}

	imp, ok := d.importers[resolver]
	if !ok {
		imp = &importer{doc: d, resolver: resolver, remap: make(map[core.IndirectRef]core.IndirectRef)}
		d.importers[resolver] = imp
	}

	dict := pageDict.Clone()
	// The output writer owns the page tree; source annotations would
	// dangle into the source document.
	dict.Delete("Parent")
	dict.Delete("Annots")
	dict.Delete("StructParents")

	copied, err := imp.copyObject(dict)
	if err != nil {
		return fmt.Errorf("failed to import page: %w", err)
	}

	pageCopy, ok := copied.(core.Dict)
	if !ok {
		return fmt.Errorf("imported page is not a dictionary: %T", copied)
	}
	pageCopy.Set("Type", core.Name("Page"))
	pageCopy.Set("Parent", d.pagesRef)

	ref := d.allocate()
	d.setObject(ref, pageCopy)
	d.pageRefs = append(d.pageRefs, ref)

	return nil
}

// importer deep-copies object graphs from one source document.
type importer struct {
	doc      *Document
	resolver pages.ObjectResolver
	remap    map[core.IndirectRef]core.IndirectRef
}

// copyObject recursively copies an object, remapping indirect references
// to output object numbers.
func (imp *importer) copyObject(obj core.Object) (core.Object, error) {
	switch v := obj.(type) {
	case core.IndirectRef:
		if mapped, ok := imp.remap[v]; ok {
			return mapped, nil
		}

		// Reserve the target number before descending so reference
		// cycles terminate.
		target := imp.doc.allocate()
		imp.remap[v] = target

		resolved, err := imp.resolver.ResolveReference(v)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", v, err)
		}

		copied, err := imp.copyObject(resolved)
		if err != nil {
			return nil, err
		}
		imp.doc.setObject(target, copied)

		return target, nil

	case core.Dict:
		out := make(core.Dict, len(v))
		for _, key := range v.Keys() {
			copied, err := imp.copyObject(v[key])
			if err != nil {
				return nil, fmt.Errorf("key /%s: %w", key, err)
			}
			out[key] = copied
		}
		return out, nil

	case core.Array:
		out := make(core.Array, len(v))
		for i, elem := range v {
			copied, err := imp.copyObject(elem)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = copied
		}
		return out, nil

	case *core.Stream:
		dictCopy, err := imp.copyObject(v.Dict)
		if err != nil {
			return nil, err
		}
		data := make([]byte, len(v.Data))
		copy(data, v.Data)
		return &core.Stream{Dict: dictCopy.(core.Dict), Data: data}, nil

	default:
		// Scalars are immutable and can be shared
		return obj, nil
	}
}

// WriteTo serializes the document. It may be called once.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	if d.written {
		return 0, fmt.Errorf("document already serialized")
	}
	if len(d.pageRefs) == 0 {
		return 0, fmt.Errorf("document has no pages")
	}
	d.written = true

	kids := make(core.Array, len(d.pageRefs))
	for i, ref := range d.pageRefs {
		kids[i] = ref
	}
	d.setObject(d.pagesRef, core.Dict{
		"Type":  core.Name("Pages"),
		"Kids":  kids,
		"Count": core.Int(len(d.pageRefs)),
	})
	d.setObject(d.catalogRef, core.Dict{
		"Type":  core.Name("Catalog"),
		"Pages": d.pagesRef,
	})
	d.setObject(d.infoRef, d.info)

	cw := &countingWriter{w: w, hash: md5.New()}

	// The comment line with high-bit bytes marks the file as binary
	if _, err := cw.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n"); err != nil {
		return cw.n, err
	}

	offsets := make([]int64, len(d.objects))
	for i, obj := range d.objects {
		offsets[i] = cw.n
		ref := core.IndirectRef{Number: i + 1}
		if obj == nil {
			obj = core.Null{}
		}
		if err := core.WriteIndirectObject(cw, ref, obj); err != nil {
			return cw.n, fmt.Errorf("failed to write object %d: %w", i+1, err)
		}
	}

	xrefOffset := cw.n
	if _, err := fmt.Fprintf(cw, "xref\n0 %d\n", len(d.objects)+1); err != nil {
		return cw.n, err
	}
	if _, err := cw.WriteString("0000000000 65535 f \n"); err != nil {
		return cw.n, err
	}
	for _, offset := range offsets {
		if _, err := fmt.Fprintf(cw, "%010d 00000 n \n", offset); err != nil {
			return cw.n, err
		}
	}

	// The ID is derived from the bytes written so far, so identical
	// builds get identical IDs
	id := core.String(fmt.Sprintf("%x", cw.hash.Sum(nil)))
	trailer := core.Dict{
		"Size": core.Int(len(d.objects) + 1),
		"Root": d.catalogRef,
		"Info": d.infoRef,
		"ID":   core.Array{id, id},
	}

	if _, err := cw.WriteString("trailer\n"); err != nil {
		return cw.n, err
	}
	if err := core.WriteObject(cw, trailer); err != nil {
		return cw.n, err
	}
	if _, err := fmt.Fprintf(cw, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset); err != nil {
		return cw.n, err
	}

	return cw.n, nil
}

// WriteFile serializes the document to path atomically: the bytes go to a
// temporary file in the same directory, renamed into place only on
// success. A failed build leaves no output file behind.
func (d *Document) WriteFile(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temporary output: %w", err)
	}
	tmpName := tmp.Name()

	bw := bufio.NewWriter(tmp)
	if _, err := d.WriteTo(bw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to flush output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close output: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move output into place: %w", err)
	}

	return nil
}

// countingWriter tracks the byte offset and hashes everything written.
type countingWriter struct {
	w    io.Writer
	n    int64
	hash hash.Hash
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.hash.Write(p[:n])
	cw.n += int64(n)
	return n, err
}

func (cw *countingWriter) WriteString(s string) (int, error) {
	return cw.Write([]byte(s))
}
