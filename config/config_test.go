package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sawtell/planpack/model"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validRunFile = `crops_file: crops.csv
tabs_file: tabs.csv
plan_pdfs_directory: plans
data_pages_directory: data
rooms:
  - name: Kitchen
    zones: [K1, K2]
  - name: Garage
    zones: [G1]
`

// TestLoad tests loading a valid run file with relative path resolution
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "run.yaml", validRunFile)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.CropsFile != filepath.Join(dir, "crops.csv") {
		t.Errorf("CropsFile = %q, want it resolved against the run file directory", cfg.CropsFile)
	}
	if cfg.Pattern != "{tab}*.pdf" {
		t.Errorf("Pattern = %q, want default {tab}*.pdf", cfg.Pattern)
	}

	rooms := cfg.RoomSpecs()
	if len(rooms) != 2 {
		t.Fatalf("len(rooms) = %d, want 2", len(rooms))
	}
	if rooms[0].Name != "Kitchen" || len(rooms[0].Zones) != 2 {
		t.Errorf("rooms[0] = %+v, want Kitchen with 2 zones", rooms[0])
	}

	if got, want := cfg.OutputPath(), filepath.Join(dir, "run.pdf"); got != want {
		t.Errorf("OutputPath() = %q, want %q", got, want)
	}
}

// TestLoadNormalizesNames verifies quote and whitespace normalization of
// room and zone names
func TestLoadNormalizesNames(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "run.yaml", `crops_file: crops.csv
tabs_file: tabs.csv
plan_pdfs_directory: plans
data_pages_directory: data
rooms:
  - name: "Owner’s  Suite"
    zones: ["Z1"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.RoomSpecs()[0].Name; got != "Owner's Suite" {
		t.Errorf("room name = %q, want normalized Owner's Suite", got)
	}
}

// TestLoadMissingFields verifies all structural problems are reported
// together
func TestLoadMissingFields(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "run.yaml", "pdf_filename_pattern: nope.pdf\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for empty run file")
	}

	var be *model.BuildError
	if !errors.As(err, &be) {
		t.Fatalf("error = %T, want *BuildError", err)
	}

	// crops_file, tabs_file, plan dir, data dir, pattern placeholder, rooms
	if len(be.Errs) != 6 {
		t.Errorf("len(Errs) = %d, want 6: %v", len(be.Errs), be)
	}
}

// TestLoadUnknownField verifies typos in keys are rejected
func TestLoadUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "run.yaml", validRunFile+"crop_file: oops.csv\n")

	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown field")
	}
}

// TestLoadDuplicateRoom tests duplicate room detection after normalization
func TestLoadDuplicateRoom(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "run.yaml", `crops_file: crops.csv
tabs_file: tabs.csv
plan_pdfs_directory: plans
data_pages_directory: data
rooms:
  - name: Kitchen
    zones: [K1]
  - name: "  Kitchen "
    zones: [K2]
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "duplicate room") {
		t.Errorf("error = %v, want duplicate room", err)
	}
}

// TestLoadCropTable tests CSV crop table loading
func TestLoadCropTable(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "crops.csv", `room,tab,track,x0,y0,x1,y1
Kitchen,E1,power,10,20,200,300
Kitchen,E1,light,10,20,200.5,300
Garage,E1,power,0,0,612,792
`)

	table, err := LoadCropTable(path)
	if err != nil {
		t.Fatalf("LoadCropTable() error = %v", err)
	}

	if len(table) != 3 {
		t.Fatalf("len(table) = %d, want 3", len(table))
	}

	region, ok := table.Lookup("Kitchen", "E1", "light")
	if !ok {
		t.Fatal("Kitchen/E1/light missing")
	}
	if region.Rect.URX != 200.5 {
		t.Errorf("URX = %g, want 200.5", region.Rect.URX)
	}
}

// TestLoadCropTableErrors verifies every malformed row is reported
func TestLoadCropTableErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "crops.csv", `room,tab,track,x0,y0,x1,y1
Kitchen,E1,power,10,20,200,300
Kitchen,E1,light,ten,20,200,300
,E1,power,0,0,10,10
Garage,E1,power,100,0,10,10
Kitchen,E1,power,0,0,10,10
`)

	_, err := LoadCropTable(path)
	if err == nil {
		t.Fatal("expected error")
	}

	var be *model.BuildError
	if !errors.As(err, &be) {
		t.Fatalf("error = %T, want *BuildError", err)
	}

	// bad float, missing room, inverted rect, duplicate key
	if len(be.Errs) != 4 {
		t.Errorf("len(Errs) = %d, want 4: %v", len(be.Errs), be)
	}

	var geoErr *model.GeometryError
	if !errors.As(err, &geoErr) {
		t.Error("inverted rectangle should surface as *GeometryError")
	}
}

// TestLoadTabTable tests tab/track table loading with page ranges
func TestLoadTabTable(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tabs.csv", `tab,track,pages
E1,power,1 3 5-7
E1,light,2
E2,power,1-2
`)

	table, err := LoadTabTable(path)
	if err != nil {
		t.Fatalf("LoadTabTable() error = %v", err)
	}

	if got := table.Tabs(); len(got) != 2 || got[0] != "E1" || got[1] != "E2" {
		t.Fatalf("Tabs() = %v, want [E1 E2] in declared order", got)
	}

	entry, _ := table.Lookup("E1")
	if len(entry.Tracks) != 2 {
		t.Fatalf("E1 has %d tracks, want 2", len(entry.Tracks))
	}
	if got := entry.Tracks[0].Pages; len(got) != 5 || got[4] != 7 {
		t.Errorf("power pages = %v, want [1 3 5 6 7]", got)
	}
}

// TestLoadTabTableErrors tests malformed page lists and duplicates
func TestLoadTabTableErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tabs.csv", `tab,track,pages
E1,power,1 2
E1,power,3
E1,light,zero
E1,empty,
E2,power,0
`)

	_, err := LoadTabTable(path)
	var be *model.BuildError
	if !errors.As(err, &be) {
		t.Fatalf("error = %T, want *BuildError", err)
	}

	// duplicate track, bad page token, empty page list, page below 1
	if len(be.Errs) != 4 {
		t.Errorf("len(Errs) = %d, want 4: %v", len(be.Errs), be)
	}
}

// TestGlobResolver tests plan document resolution by pattern
func TestGlobResolver(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "E1 - floor plans.pdf", "%PDF-1.7")
	writeFile(t, dir, "E2 - a.pdf", "%PDF-1.7")
	writeFile(t, dir, "E2 - b.pdf", "%PDF-1.7")

	resolver := &GlobResolver{Dir: dir, Pattern: "{tab}*.pdf"}

	t.Run("single match", func(t *testing.T) {
		path, err := resolver.Resolve("E1")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if filepath.Base(path) != "E1 - floor plans.pdf" {
			t.Errorf("Resolve() = %q", path)
		}
	})

	t.Run("no match", func(t *testing.T) {
		_, err := resolver.Resolve("E9")
		var cfgErr *model.ConfigurationError
		if !errors.As(err, &cfgErr) || cfgErr.Tab != "E9" {
			t.Errorf("error = %v, want *ConfigurationError naming E9", err)
		}
	})

	t.Run("multiple matches", func(t *testing.T) {
		_, err := resolver.Resolve("E2")
		var cfgErr *model.ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("error = %v, want *ConfigurationError", err)
		}
		if !strings.Contains(cfgErr.Msg, "2 files") {
			t.Errorf("Msg = %q, want match count", cfgErr.Msg)
		}
	})
}

// TestDirProvider tests per-room data document lookup
func TestDirProvider(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Kitchen.pdf", "%PDF-1.7")

	provider := &DirProvider{Dir: dir}

	if _, err := provider.RoomData(model.RoomSpec{Name: "Kitchen"}); err != nil {
		t.Errorf("RoomData(Kitchen) error = %v", err)
	}

	_, err := provider.RoomData(model.RoomSpec{Name: "Attic"})
	var asmErr *model.AssemblyError
	if !errors.As(err, &asmErr) || asmErr.Room != "Attic" {
		t.Errorf("error = %v, want *AssemblyError naming Attic", err)
	}
}
