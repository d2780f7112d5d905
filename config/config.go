package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sawtell/planpack/model"
)

// defaultPattern matches one plan document per tab when the run file does
// not set its own pattern.
const defaultPattern = "{tab}*.pdf"

// Config is a parsed run file. All path fields are absolute after Load.
type Config struct {
	// CropsFile is the CSV crop-region table.
	CropsFile string `yaml:"crops_file"`
	// TabsFile is the CSV tab/track table.
	TabsFile string `yaml:"tabs_file"`
	// PlanDir holds the source plan documents, one per tab.
	PlanDir string `yaml:"plan_pdfs_directory"`
	// Pattern locates a tab's plan document inside PlanDir. The {tab}
	// placeholder is replaced with the tab identifier.
	Pattern string `yaml:"pdf_filename_pattern"`
	// DataDir holds the finished per-room data-page documents.
	DataDir string `yaml:"data_pages_directory"`
	// Rooms lists the rooms in output order.
	Rooms []RoomConfig `yaml:"rooms"`
	// Output names the pack file; relative to the run file's directory.
	Output OutputConfig `yaml:"output"`

	path string
}

// RoomConfig is one room entry in the run file.
type RoomConfig struct {
	Name  string   `yaml:"name"`
	Zones []string `yaml:"zones"`
}

// OutputConfig holds output options.
type OutputConfig struct {
	Filename string `yaml:"filename"`
}

// Load reads and validates a run file. Every structural problem found is
// returned together in one error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}

	cfg := &Config{path: path}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse run file %q: %w", path, err)
	}

	if cfg.Pattern == "" {
		cfg.Pattern = defaultPattern
	}

	errs := &model.BuildError{}
	if cfg.CropsFile == "" {
		errs.Add(&model.ConfigurationError{Field: "crops_file", Msg: "missing required field"})
	}
	if cfg.TabsFile == "" {
		errs.Add(&model.ConfigurationError{Field: "tabs_file", Msg: "missing required field"})
	}
	if cfg.PlanDir == "" {
		errs.Add(&model.ConfigurationError{Field: "plan_pdfs_directory", Msg: "missing required field"})
	}
	if cfg.DataDir == "" {
		errs.Add(&model.ConfigurationError{Field: "data_pages_directory", Msg: "missing required field"})
	}
	if !strings.Contains(cfg.Pattern, "{tab}") {
		errs.Add(&model.ConfigurationError{Field: "pdf_filename_pattern", Msg: "pattern has no {tab} placeholder"})
	}
	if len(cfg.Rooms) == 0 {
		errs.Add(&model.ConfigurationError{Field: "rooms", Msg: "no rooms configured"})
	}

	seen := make(map[string]bool, len(cfg.Rooms))
	for _, room := range cfg.Rooms {
		name := model.NormalizeName(room.Name)
		if name != "" && seen[name] {
			errs.Add(&model.ConfigurationError{Room: name, Field: "rooms", Msg: "duplicate room"})
		}
		seen[name] = true
	}

	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	cfg.CropsFile = absolve(dir, cfg.CropsFile)
	cfg.TabsFile = absolve(dir, cfg.TabsFile)
	cfg.PlanDir = absolve(dir, cfg.PlanDir)
	cfg.DataDir = absolve(dir, cfg.DataDir)
	if cfg.Output.Filename != "" {
		cfg.Output.Filename = absolve(dir, cfg.Output.Filename)
	}

	return cfg, nil
}

// absolve resolves a path against the run file's directory.
func absolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// Path returns the run file's own path.
func (c *Config) Path() string {
	return c.path
}

// RoomSpecs converts the configured rooms into validated build input.
// Names and zones are normalized so they match table rows regardless of
// quote style or stray whitespace.
func (c *Config) RoomSpecs() []model.RoomSpec {
	rooms := make([]model.RoomSpec, len(c.Rooms))
	for i, rc := range c.Rooms {
		zones := make([]string, len(rc.Zones))
		for j, z := range rc.Zones {
			zones[j] = model.NormalizeName(z)
		}
		rooms[i] = model.RoomSpec{Name: model.NormalizeName(rc.Name), Zones: zones}
	}
	return rooms
}

// OutputPath returns the configured output file, defaulting to the run
// file's base name with a .pdf extension.
func (c *Config) OutputPath() string {
	if c.Output.Filename != "" {
		return c.Output.Filename
	}
	base := strings.TrimSuffix(c.path, filepath.Ext(c.path))
	return base + ".pdf"
}

// PlanResolver returns the glob-based plan document resolver for this run.
func (c *Config) PlanResolver() *GlobResolver {
	return &GlobResolver{Dir: c.PlanDir, Pattern: c.Pattern}
}

// DataProvider returns the directory-backed data-page provider for this
// run.
func (c *Config) DataProvider() *DirProvider {
	return &DirProvider{Dir: c.DataDir}
}
