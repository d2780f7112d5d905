package config

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sawtell/planpack/model"
)

// readTable reads a CSV file with a required header row and returns a
// column-name index plus the data records.
func readTable(path string, required []string) (map[string]int, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %q: %w", filepath.Base(path), err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("table %q is empty", filepath.Base(path))
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, nil, fmt.Errorf("table %q missing column %q", filepath.Base(path), name)
		}
	}

	return cols, records[1:], nil
}

// LoadCropTable reads the crop-region table. Columns: room, tab, track,
// x0, y0, x1, y1 (points, lower-left origin). Every malformed row is
// reported; a partially valid table never loads.
func LoadCropTable(path string) (model.CropTable, error) {
	cols, rows, err := readTable(path, []string{"room", "tab", "track", "x0", "y0", "x1", "y1"})
	if err != nil {
		return nil, err
	}

	base := filepath.Base(path)
	errs := &model.BuildError{}
	table := make(model.CropTable, len(rows))

	for i, row := range rows {
		line := i + 2 // header is line 1
		rowErr := func(msg string) {
			errs.Add(&model.ConfigurationError{
				Field: fmt.Sprintf("%s:%d", base, line),
				Msg:   msg,
			})
		}

		get := func(name string) string {
			idx := cols[name]
			if idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		key := model.CropKey{
			Room:  model.NormalizeName(get("room")),
			Tab:   model.NormalizeName(get("tab")),
			Track: model.NormalizeName(get("track")),
		}
		if key.Room == "" || key.Tab == "" || key.Track == "" {
			rowErr("room, tab, and track are required")
			continue
		}
		if _, dup := table[key]; dup {
			rowErr("duplicate crop region for " + key.String())
			continue
		}

		var coords [4]float64
		bad := false
		for j, name := range []string{"x0", "y0", "x1", "y1"} {
			v, err := strconv.ParseFloat(get(name), 64)
			if err != nil {
				rowErr(fmt.Sprintf("invalid %s value %q", name, get(name)))
				bad = true
				continue
			}
			coords[j] = v
		}
		if bad {
			continue
		}

		region := model.CropRegion{
			Room:  key.Room,
			Tab:   key.Tab,
			Track: key.Track,
			Rect:  model.NewRect(coords[0], coords[1], coords[2], coords[3]),
		}
		if err := region.Validate(); err != nil {
			errs.Add(err)
			continue
		}

		table[key] = region
	}

	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return table, nil
}

// LoadTabTable reads the tab/track table. Columns: tab, track, pages. The
// pages cell lists 1-based page numbers separated by spaces, with a-b
// ranges allowed ("1 3 5-8"). Declared order of tabs and of tracks within
// a tab is preserved.
func LoadTabTable(path string) (*model.TabTable, error) {
	cols, rows, err := readTable(path, []string{"tab", "track", "pages"})
	if err != nil {
		return nil, err
	}

	base := filepath.Base(path)
	errs := &model.BuildError{}
	table := &model.TabTable{}
	seen := make(map[[2]string]bool, len(rows))

	for i, row := range rows {
		line := i + 2
		rowErr := func(msg string) {
			errs.Add(&model.ConfigurationError{
				Field: fmt.Sprintf("%s:%d", base, line),
				Msg:   msg,
			})
		}

		get := func(name string) string {
			idx := cols[name]
			if idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		tab := model.NormalizeName(get("tab"))
		track := model.NormalizeName(get("track"))
		if tab == "" || track == "" {
			rowErr("tab and track are required")
			continue
		}
		if seen[[2]string{tab, track}] {
			rowErr(fmt.Sprintf("duplicate track %q for tab %q", track, tab))
			continue
		}
		seen[[2]string{tab, track}] = true

		pageList, err := parsePages(get("pages"))
		if err != nil {
			rowErr(err.Error())
			continue
		}
		if len(pageList) == 0 {
			rowErr(fmt.Sprintf("track %q for tab %q lists no pages", track, tab))
			continue
		}

		entry, ok := table.Lookup(tab)
		if !ok {
			table.Entries = append(table.Entries, model.TabEntry{Tab: tab})
			entry = &table.Entries[len(table.Entries)-1]
		}
		entry.Tracks = append(entry.Tracks, model.Track{Name: track, Pages: pageList})
	}

	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return table, nil
}

// parsePages expands a page list like "1 3 5-8" into 1-based page numbers.
func parsePages(s string) ([]int, error) {
	var pages []int
	for _, field := range strings.Fields(s) {
		if lo, hi, ok := strings.Cut(field, "-"); ok {
			start, err1 := strconv.Atoi(lo)
			end, err2 := strconv.Atoi(hi)
			if err1 != nil || err2 != nil || start < 1 || end < start {
				return nil, fmt.Errorf("invalid page range %q", field)
			}
			for p := start; p <= end; p++ {
				pages = append(pages, p)
			}
			continue
		}

		p, err := strconv.Atoi(field)
		if err != nil || p < 1 {
			return nil, fmt.Errorf("invalid page number %q", field)
		}
		pages = append(pages, p)
	}
	return pages, nil
}
