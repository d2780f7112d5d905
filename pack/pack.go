package pack

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sawtell/planpack/core"
	"github.com/sawtell/planpack/crop"
	"github.com/sawtell/planpack/model"
	"github.com/sawtell/planpack/pages"
	"github.com/sawtell/planpack/reader"
	"github.com/sawtell/planpack/shuffle"
	"github.com/sawtell/planpack/writer"
)

// PathResolver maps a tab identifier to the plan document holding its
// pages.
type PathResolver interface {
	Resolve(tab string) (string, error)
}

// ZoneDataProvider supplies the finished data-page document for a room.
// The returned path must be a readable PDF whose pages open the room's
// block; a room with no data document is an assembly error.
type ZoneDataProvider interface {
	RoomData(room model.RoomSpec) (string, error)
}

// Options tune a build. The zero value uses the current time, one worker
// per CPU, and no retained intermediates.
type Options struct {
	// Timestamp is written into the output Info dictionary and feeds the
	// document ID. Fixing it makes repeated builds byte-identical.
	Timestamp time.Time

	// Workers bounds the number of rooms processed concurrently.
	Workers int

	// RetainDir, when non-empty, receives one intermediate PDF per room
	// holding its cropped and shuffled plan pages.
	RetainDir string

	// Progress, when non-nil, is called as each room advances through
	// the build stages. It may be called from multiple goroutines.
	Progress func(room string, stage Stage)
}

func (o Options) progress(room string, stage Stage) {
	if o.Progress != nil {
		o.Progress(room, stage)
	}
}

// PageBlock is one room's contribution to the pack: the room's data pages
// followed by its shuffled plan pages.
type PageBlock struct {
	Room      string
	DataPath  string
	PlanPages []*crop.CroppedPage
}

// tabSource is an opened plan document for one tab.
type tabSource struct {
	path string
	rdr  *reader.Reader
}

// Preflight validates configuration coverage and path resolution without
// opening any document. Every problem found is returned together. On
// success it returns the resolved plan paths by tab and data-page paths
// by room.
func Preflight(rooms []model.RoomSpec, crops model.CropTable, tabs *model.TabTable, paths PathResolver, data ZoneDataProvider) (tabPaths, dataPaths map[string]string, err error) {
	errs := &model.BuildError{}

	for _, room := range rooms {
		errs.Add(room.Validate())
	}

	// Every (room, tab, track) combination needs a valid crop region
	// before anything is opened.
	for _, room := range rooms {
		for _, entry := range tabs.Entries {
			for _, track := range entry.Tracks {
				region, ok := crops.Lookup(room.Name, entry.Tab, track.Name)
				if !ok {
					errs.Add(&model.ConfigurationError{
						Room:  room.Name,
						Tab:   entry.Tab,
						Track: track.Name,
						Msg:   "no crop region configured",
					})
					continue
				}
				errs.Add(region.Validate())
			}
		}
	}

	tabPaths = make(map[string]string, len(tabs.Entries))
	for _, entry := range tabs.Entries {
		path := entry.SourcePath
		if path == "" {
			path, err = paths.Resolve(entry.Tab)
			if err != nil {
				errs.Add(err)
				continue
			}
		}
		tabPaths[entry.Tab] = path
	}

	dataPaths = make(map[string]string, len(rooms))
	for _, room := range rooms {
		path, err := data.RoomData(room)
		if err != nil {
			errs.Add(err)
			continue
		}
		dataPaths[room.Name] = path
	}

	if err := errs.ErrOrNil(); err != nil {
		return nil, nil, err
	}
	return tabPaths, dataPaths, nil
}

// BuildPack runs the full pipeline and writes the pack to out.
//
// Configuration is validated in full before any source document is
// opened; every structural problem is reported together. Rooms are then
// cropped and shuffled concurrently, assembled sequentially in the order
// rooms declares, and serialized once. On any error the output path is
// left untouched.
func BuildPack(ctx context.Context, rooms []model.RoomSpec, crops model.CropTable, tabs *model.TabTable, paths PathResolver, data ZoneDataProvider, out string, opts Options) error {
	tabPaths, dataPaths, err := Preflight(rooms, crops, tabs, paths, data)
	if err != nil {
		return err
	}

	// Open each tab's document once; rooms share the readers.
	sources := make(map[string]*tabSource, len(tabs.Entries))
	defer func() {
		for _, src := range sources {
			src.rdr.Close()
		}
	}()

	loadErrs := &model.BuildError{}
	for _, entry := range tabs.Entries {
		path := tabPaths[entry.Tab]
		rdr, err := reader.Open(path)
		if err != nil {
			loadErrs.Add(&model.SourceDocumentError{Tab: entry.Tab, Path: path, Err: err})
			continue
		}
		sources[entry.Tab] = &tabSource{path: path, rdr: rdr}

		count, err := rdr.PageCount()
		if err != nil {
			loadErrs.Add(&model.SourceDocumentError{Tab: entry.Tab, Path: path, Err: err})
			continue
		}

		// Page indices are checked in full before any shuffle starts
		for _, track := range entry.Tracks {
			for _, pageNum := range track.Pages {
				switch {
				case pageNum < 1:
					loadErrs.Add(&model.ConfigurationError{
						Tab:   entry.Tab,
						Track: track.Name,
						Msg:   fmt.Sprintf("page numbers are 1-based, got %d", pageNum),
					})
				case pageNum > count:
					loadErrs.Add(&model.SourceDocumentError{
						Tab:  entry.Tab,
						Path: path,
						Page: pageNum,
						Err:  fmt.Errorf("document has only %d pages", count),
					})
				}
			}
		}
	}
	if err := loadErrs.ErrOrNil(); err != nil {
		return err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	blocks := make([]*PageBlock, len(rooms))
	for i, room := range rooms {
		i, room := i, room
		g.Go(func() error {
			block, err := buildRoomBlock(gctx, room, crops, tabs, sources, opts)
			if err != nil {
				return err
			}
			block.DataPath = dataPaths[room.Name]
			blocks[i] = block
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Single writer: blocks are appended in declared room order, however
	// the workers finished.
	doc := writer.NewDocument()
	ts := opts.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	doc.SetInfo(strings.TrimSuffix(filepath.Base(out), filepath.Ext(out)), "planpack", ts)

	for _, block := range blocks {
		if err := appendBlock(doc, block); err != nil {
			return err
		}
		if opts.RetainDir != "" {
			if err := writeIntermediate(opts.RetainDir, block, ts); err != nil {
				return err
			}
		}
		opts.progress(block.Room, StageAssembled)
	}

	if err := doc.WriteFile(out); err != nil {
		return err
	}
	opts.progress("", StageSerialized)

	return nil
}

// buildRoomBlock crops and shuffles one room's plan pages.
func buildRoomBlock(ctx context.Context, room model.RoomSpec, crops model.CropTable, tabs *model.TabTable, sources map[string]*tabSource, opts Options) (*PageBlock, error) {
	opts.progress(room.Name, StageLoaded)

	// One cropped slice per (tab, track), in declared tab-then-track
	// order. The room's tracks riffle together across all tabs, so plan
	// types for the same area land on facing pages even when they come
	// from different source sheets.
	var tracks [][]*crop.CroppedPage

	for _, entry := range tabs.Entries {
		src := sources[entry.Tab]
		for _, track := range entry.Tracks {
			region, _ := crops.Lookup(room.Name, entry.Tab, track.Name)
			cropped := make([]*crop.CroppedPage, len(track.Pages))
			for pi, pageNum := range track.Pages {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				page, err := src.rdr.GetPage(pageNum - 1)
				if err != nil {
					return nil, &model.SourceDocumentError{Tab: entry.Tab, Path: src.path, Page: pageNum, Err: err}
				}
				cp, err := crop.Crop(page, region)
				if err != nil {
					return nil, err
				}
				cropped[pi] = cp
			}
			tracks = append(tracks, cropped)
		}
	}
	opts.progress(room.Name, StageCropped)

	block := &PageBlock{
		Room:      room.Name,
		PlanPages: shuffle.Riffle(tracks),
	}
	opts.progress(room.Name, StageShuffled)

	return block, nil
}

// Keys that must not survive a page import; see crop.
var droppedImportKeys = []string{"Parent", "Annots", "StructParents", "B", "Metadata"}

// appendBlock writes one room's pages into the output document: data
// pages first, then the shuffled plan pages.
func appendBlock(doc *writer.Document, block *PageBlock) error {
	dataRdr, err := reader.Open(block.DataPath)
	if err != nil {
		return &model.AssemblyError{Room: block.Room, Msg: fmt.Sprintf("failed to open data pages %q: %v", block.DataPath, err)}
	}
	defer dataRdr.Close()

	count, err := dataRdr.PageCount()
	if err != nil {
		return &model.AssemblyError{Room: block.Room, Msg: fmt.Sprintf("failed to read data pages %q: %v", block.DataPath, err)}
	}
	for i := 0; i < count; i++ {
		page, err := dataRdr.GetPage(i)
		if err != nil {
			return &model.AssemblyError{Room: block.Room, Msg: fmt.Sprintf("failed to load data page %d of %q: %v", i+1, block.DataPath, err)}
		}
		if err := appendSourcePage(doc, page); err != nil {
			return &model.AssemblyError{Room: block.Room, Msg: fmt.Sprintf("failed to import data page %d of %q: %v", i+1, block.DataPath, err)}
		}
	}

	for _, cp := range block.PlanPages {
		if err := doc.AppendPage(cp.Resolver, cp.Dict); err != nil {
			return &model.AssemblyError{Room: block.Room, Msg: fmt.Sprintf("failed to import plan page: %v", err)}
		}
	}

	return nil
}

// appendSourcePage imports an existing page, materializing the inherited
// attributes it would otherwise lose with its parent chain.
func appendSourcePage(doc *writer.Document, page *pages.Page) error {
	dict := page.Dict().Clone()
	for _, key := range droppedImportKeys {
		dict.Delete(key)
	}

	mediaBox, err := page.MediaBox()
	if err != nil {
		return err
	}
	dict.Set("MediaBox", core.NumberArray(mediaBox.LLX, mediaBox.LLY, mediaBox.URX, mediaBox.URY))
	if resources, err := page.Resources(); err == nil && resources != nil {
		dict.Set("Resources", resources)
	}
	if rotate := page.Rotate(); rotate != 0 {
		dict.Set("Rotate", core.Int(rotate))
	}

	return doc.AppendPage(page.Resolver(), dict)
}

// writeIntermediate keeps a per-room PDF of the cropped and shuffled plan
// pages for inspection. Intermediates are a debugging aid; a failure here
// still aborts the build so the retained set is never misleading.
func writeIntermediate(dir string, block *PageBlock, ts time.Time) error {
	if len(block.PlanPages) == 0 {
		return nil
	}

	doc := writer.NewDocument()
	doc.SetInfo(block.Room, "planpack", ts)
	for _, cp := range block.PlanPages {
		if err := doc.AppendPage(cp.Resolver, cp.Dict); err != nil {
			return fmt.Errorf("failed to build intermediate for room %q: %w", block.Room, err)
		}
	}

	name := sanitizeFilename(block.Room) + ".pdf"
	if err := doc.WriteFile(filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("failed to write intermediate for room %q: %w", block.Room, err)
	}
	return nil
}

// sanitizeFilename keeps room names usable as file names.
func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, name)
}
