package planpack

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sawtell/planpack/core"
	"github.com/sawtell/planpack/model"
	"github.com/sawtell/planpack/reader"
	"github.com/sawtell/planpack/writer"
)

var fixedTime = time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

type fixtureResolver struct {
	objects map[int]core.Object
}

func (f *fixtureResolver) Resolve(obj core.Object) (core.Object, error) {
	if ref, ok := obj.(core.IndirectRef); ok {
		return f.ResolveReference(ref)
	}
	return obj, nil
}

func (f *fixtureResolver) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	obj, ok := f.objects[ref.Number]
	if !ok {
		return nil, fmt.Errorf("object %d not found", ref.Number)
	}
	return obj, nil
}

func writeFixturePDF(t *testing.T, path string, pageCount int) {
	t.Helper()

	resolver := &fixtureResolver{objects: map[int]core.Object{}}
	doc := writer.NewDocument()
	doc.SetInfo("fixture", "planpack", fixedTime)

	for i := 0; i < pageCount; i++ {
		contentNum := 100 + i
		resolver.objects[contentNum] = &core.Stream{
			Dict: core.Dict{},
			Data: []byte("0 0 612 792 re f"),
		}
		page := core.Dict{
			"Type":     core.Name("Page"),
			"MediaBox": core.NumberArray(0, 0, 612, 792),
			"Contents": core.IndirectRef{Number: contentNum},
		}
		if err := doc.AppendPage(resolver, page); err != nil {
			t.Fatalf("AppendPage() error = %v", err)
		}
	}

	if err := doc.WriteFile(path); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", path, err)
	}
}

// writeRunFixtures lays out a complete run directory: run file, tables,
// plan documents, and data pages
func writeRunFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	for _, sub := range []string{"plans", "data"} {
		if err := os.Mkdir(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	writeFixturePDF(t, filepath.Join(dir, "plans", "E1 - electrical.pdf"), 2)
	writeFixturePDF(t, filepath.Join(dir, "data", "Kitchen.pdf"), 1)
	writeFixturePDF(t, filepath.Join(dir, "data", "Garage.pdf"), 1)

	files := map[string]string{
		"run.yaml": `crops_file: crops.csv
tabs_file: tabs.csv
plan_pdfs_directory: plans
data_pages_directory: data
rooms:
  - name: Kitchen
    zones: [K1]
  - name: Garage
    zones: [G1]
`,
		"crops.csv": `room,tab,track,x0,y0,x1,y1
Kitchen,E1,power,0,0,200,100
Kitchen,E1,light,0,0,200,100
Garage,E1,power,0,0,300,100
Garage,E1,light,0,0,300,100
`,
		"tabs.csv": `tab,track,pages
E1,power,1
E1,light,2
`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	return filepath.Join(dir, "run.yaml")
}

// TestBuild tests a full build from a run file on disk
func TestBuild(t *testing.T) {
	runFile := writeRunFixtures(t)
	out := filepath.Join(t.TempDir(), "pack.pdf")

	err := Build(context.Background(), runFile,
		WithOutput(out),
		WithTimestamp(fixedTime),
		WithWorkers(2),
	)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	rdr, err := reader.Open(out)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rdr.Close()

	// Per room: one data page plus two riffled plan pages
	count, err := rdr.PageCount()
	if err != nil {
		t.Fatalf("PageCount() error = %v", err)
	}
	if count != 6 {
		t.Errorf("PageCount() = %d, want 6", count)
	}
}

// TestBuildDefaultOutput verifies the output name defaults to the run
// file's base name
func TestBuildDefaultOutput(t *testing.T) {
	runFile := writeRunFixtures(t)

	if err := Build(context.Background(), runFile, WithTimestamp(fixedTime)); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := filepath.Join(filepath.Dir(runFile), "run.pdf")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("default output %q missing: %v", want, err)
	}
}

// TestCheck tests validation without building
func TestCheck(t *testing.T) {
	runFile := writeRunFixtures(t)

	if err := Check(runFile); err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	// Checking must not produce any output
	if _, err := os.Stat(filepath.Join(filepath.Dir(runFile), "run.pdf")); !os.IsNotExist(err) {
		t.Error("Check() created an output file")
	}
}

// TestCheckReportsAllProblems verifies a broken run surfaces every issue
// at once
func TestCheckReportsAllProblems(t *testing.T) {
	runFile := writeRunFixtures(t)
	dir := filepath.Dir(runFile)

	// Remove the Garage data pages and the Garage crop rows
	if err := os.Remove(filepath.Join(dir, "data", "Garage.pdf")); err != nil {
		t.Fatal(err)
	}
	crops := `room,tab,track,x0,y0,x1,y1
Kitchen,E1,power,0,0,200,100
Kitchen,E1,light,0,0,200,100
`
	if err := os.WriteFile(filepath.Join(dir, "crops.csv"), []byte(crops), 0o644); err != nil {
		t.Fatal(err)
	}

	err := Check(runFile)
	var be *model.BuildError
	if !errors.As(err, &be) {
		t.Fatalf("error = %T, want *BuildError", err)
	}

	// Two missing crop regions plus the missing data document
	if len(be.Errs) != 3 {
		t.Errorf("len(Errs) = %d, want 3: %v", len(be.Errs), be)
	}
}
