package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sawtell/planpack/model"
)

// GlobResolver locates a tab's plan document in a directory by expanding
// a filename pattern containing a {tab} placeholder. Exactly one file
// must match; zero or multiple matches are configuration errors naming
// the tab.
type GlobResolver struct {
	Dir     string
	Pattern string
}

// Resolve returns the plan document path for a tab.
func (g *GlobResolver) Resolve(tab string) (string, error) {
	pattern := filepath.Join(g.Dir, strings.ReplaceAll(g.Pattern, "{tab}", tab))

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", &model.ConfigurationError{
			Tab:   tab,
			Field: "pdf_filename_pattern",
			Msg:   fmt.Sprintf("bad pattern %q: %v", g.Pattern, err),
		}
	}

	switch len(matches) {
	case 0:
		return "", &model.ConfigurationError{
			Tab: tab,
			Msg: fmt.Sprintf("no plan document matches %q", pattern),
		}
	case 1:
		return matches[0], nil
	}

	sort.Strings(matches)
	return "", &model.ConfigurationError{
		Tab: tab,
		Msg: fmt.Sprintf("pattern %q matches %d files: %s", pattern, len(matches), strings.Join(matches, ", ")),
	}
}

// DirProvider serves per-room data-page documents from a directory, one
// file per room named <room>.pdf.
type DirProvider struct {
	Dir string
}

// RoomData returns the data-page document for a room.
func (d *DirProvider) RoomData(room model.RoomSpec) (string, error) {
	path := filepath.Join(d.Dir, room.Name+".pdf")
	if _, err := os.Stat(path); err != nil {
		return "", &model.AssemblyError{
			Room: room.Name,
			Msg:  fmt.Sprintf("no data pages document at %q", path),
		}
	}
	return path, nil
}
