package reader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.pdf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// minimalPDF builds a one-object PDF with the given extra trailer entries
func minimalPDF(extraTrailer string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	obj1 := buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog >>\nendobj\n")
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 2\n0000000000 65535 f \n%010d 00000 n \n", obj1)
	fmt.Fprintf(&buf, "trailer\n<< /Size 2 /Root 1 0 R %s>>\nstartxref\n%d\n%%%%EOF\n", extraTrailer, xref)
	return buf.Bytes()
}

// TestOpenMinimal tests reading a minimal well-formed document
func TestOpenMinimal(t *testing.T) {
	path := writeTemp(t, minimalPDF(""))

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()

	if got := r.Version().String(); got != "1.4" {
		t.Errorf("Version() = %s, want 1.4", got)
	}

	catalog, err := r.GetCatalog()
	if err != nil {
		t.Fatalf("GetCatalog() error = %v", err)
	}
	if typ, _ := catalog.GetName("Type"); string(typ) != "Catalog" {
		t.Errorf("catalog /Type = %v, want Catalog", catalog.Get("Type"))
	}
}

// TestOpenEncrypted verifies encrypted documents are rejected up front
func TestOpenEncrypted(t *testing.T) {
	path := writeTemp(t, minimalPDF("/Encrypt 9 0 R "))

	_, err := Open(path)
	if !errors.Is(err, ErrEncrypted) {
		t.Errorf("Open() error = %v, want ErrEncrypted", err)
	}
}

// TestOpenInvalidHeader tests rejection of non-PDF files
func TestOpenInvalidHeader(t *testing.T) {
	path := writeTemp(t, []byte("this is not a PDF file at all"))

	if _, err := Open(path); err == nil {
		t.Error("expected error for invalid header")
	}
}

// TestGetObjectCaching verifies repeated loads return the cached object
func TestGetObjectCaching(t *testing.T) {
	path := writeTemp(t, minimalPDF(""))

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()

	first, err := r.GetObject(1)
	if err != nil {
		t.Fatalf("GetObject(1) error = %v", err)
	}
	second, err := r.GetObject(1)
	if err != nil {
		t.Fatalf("GetObject(1) again error = %v", err)
	}

	// Same cached instance, not a re-parse
	if fmt.Sprintf("%p", first) != fmt.Sprintf("%p", second) {
		t.Error("second load did not come from the cache")
	}
}

// TestGetObjectMissing tests lookup of an absent object number
func TestGetObjectMissing(t *testing.T) {
	path := writeTemp(t, minimalPDF(""))

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()

	if _, err := r.GetObject(42); err == nil {
		t.Error("expected error for absent object")
	}
}
