// Package planpack builds print-ready wiring documentation packs.
//
// A pack combines, per room, the room's data pages with plan-sheet
// regions cropped from shared source drawings, interleaved so related
// plan types for the same area sit on facing pages. The whole run is
// described by a YAML run file plus two CSV tables (crop regions and
// tab/track page lists); Build loads them, validates everything up
// front, and writes a single deterministic PDF.
package planpack

import (
	"context"

	"github.com/sawtell/planpack/config"
	"github.com/sawtell/planpack/model"
	"github.com/sawtell/planpack/pack"
)

// Build runs a full documentation pack build from a run file. On any
// error the output path is left untouched.
func Build(ctx context.Context, runFile string, opts ...Option) error {
	o := applyOptions(opts)

	cfg, crops, tabs, err := loadAll(runFile)
	if err != nil {
		return err
	}

	out := o.output
	if out == "" {
		out = cfg.OutputPath()
	}

	return pack.BuildPack(ctx, cfg.RoomSpecs(), crops, tabs,
		cfg.PlanResolver(), cfg.DataProvider(), out,
		pack.Options{
			Timestamp: o.timestamp,
			Workers:   o.workers,
			RetainDir: o.retainDir,
			Progress:  o.progress,
		})
}

// Check validates a run file without building: configuration structure,
// table contents, crop coverage for every room, plan document resolution,
// and data-page presence. All problems are reported together.
func Check(runFile string) error {
	cfg, crops, tabs, err := loadAll(runFile)
	if err != nil {
		return err
	}

	_, _, err = pack.Preflight(cfg.RoomSpecs(), crops, tabs, cfg.PlanResolver(), cfg.DataProvider())
	return err
}

// loadAll loads the run file and both tables, collecting table errors
// together so one report covers everything.
func loadAll(runFile string) (*config.Config, model.CropTable, *model.TabTable, error) {
	cfg, err := config.Load(runFile)
	if err != nil {
		return nil, nil, nil, err
	}

	errs := &model.BuildError{}

	crops, err := config.LoadCropTable(cfg.CropsFile)
	errs.Add(err)

	tabs, err := config.LoadTabTable(cfg.TabsFile)
	errs.Add(err)

	if err := errs.ErrOrNil(); err != nil {
		return nil, nil, nil, err
	}
	return cfg, crops, tabs, nil
}
