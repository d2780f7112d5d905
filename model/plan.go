package model

import "fmt"

// CropRegion trims one source page to the area relevant to one room.
// Coordinates are in the source page's user space. The region must lie
// within the source page's media box; out-of-bounds regions are rejected,
// never clamped.
type CropRegion struct {
	Room  string
	Tab   string
	Track string
	Rect  Rect
}

// Validate checks the region rectangle itself, before any source document
// is consulted.
func (c CropRegion) Validate() error {
	if !c.Rect.IsValid() {
		return &GeometryError{
			Room:   c.Room,
			Tab:    c.Tab,
			Track:  c.Track,
			Region: c.Rect,
			Reason: "region has non-positive width or height",
		}
	}
	return nil
}

// CropTable holds crop regions keyed by (room, tab, track).
type CropTable map[CropKey]CropRegion

// CropKey identifies a crop region.
type CropKey struct {
	Room  string
	Tab   string
	Track string
}

func (k CropKey) String() string {
	return fmt.Sprintf("(room %q, tab %q, track %q)", k.Room, k.Tab, k.Track)
}

// Lookup returns the region for a (room, tab, track) triple.
func (t CropTable) Lookup(room, tab, track string) (CropRegion, bool) {
	region, ok := t[CropKey{Room: room, Tab: tab, Track: track}]
	return region, ok
}

// Track is a named ordered subsequence of pages of one plan type within a
// tab's source document. Page numbers are 1-based.
type Track struct {
	Name  string
	Pages []int
}

// TabEntry maps a tab identifier to the ordered tracks present in its
// source document. SourcePath is filled in by path resolution.
type TabEntry struct {
	Tab        string
	Tracks     []Track
	SourcePath string
}

// TabTable holds tab entries in declared order.
type TabTable struct {
	Entries []TabEntry
}

// Lookup returns the entry for a tab identifier.
func (t *TabTable) Lookup(tab string) (*TabEntry, bool) {
	for i := range t.Entries {
		if t.Entries[i].Tab == tab {
			return &t.Entries[i], true
		}
	}
	return nil, false
}

// Tabs returns the tab identifiers in declared order.
func (t *TabTable) Tabs() []string {
	tabs := make([]string, len(t.Entries))
	for i, e := range t.Entries {
		tabs[i] = e.Tab
	}
	return tabs
}

// RoomSpec names a room and the zones it contains. The declared order of
// RoomSpecs defines both output grouping and ordering.
type RoomSpec struct {
	Name  string
	Zones []string
}

// Validate rejects structurally empty room specifications.
func (r RoomSpec) Validate() error {
	if r.Name == "" {
		return &ConfigurationError{Field: "rooms", Msg: "room missing name"}
	}
	if len(r.Zones) == 0 {
		return &ConfigurationError{Room: r.Name, Field: "zones", Msg: "room has no zones"}
	}
	return nil
}
