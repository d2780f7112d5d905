package planpack

import (
	"time"

	"github.com/sawtell/planpack/pack"
)

// Option adjusts a build.
type Option func(*buildOptions)

type buildOptions struct {
	output    string
	timestamp time.Time
	workers   int
	retainDir string
	progress  func(room string, stage pack.Stage)
}

func applyOptions(opts []Option) buildOptions {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithOutput overrides the output path from the run file.
func WithOutput(path string) Option {
	return func(o *buildOptions) {
		o.output = path
	}
}

// WithTimestamp fixes the build timestamp written into the output. With a
// fixed timestamp, repeated builds from the same inputs are
// byte-identical.
func WithTimestamp(t time.Time) Option {
	return func(o *buildOptions) {
		o.timestamp = t
	}
}

// WithWorkers bounds the number of rooms processed concurrently. Values
// below one fall back to one worker per CPU.
func WithWorkers(n int) Option {
	return func(o *buildOptions) {
		o.workers = n
	}
}

// WithRetainedIntermediates keeps per-room cropped and shuffled plan
// documents in dir for inspection.
func WithRetainedIntermediates(dir string) Option {
	return func(o *buildOptions) {
		o.retainDir = dir
	}
}

// WithProgress reports each room's stage transitions. The callback may
// run on multiple goroutines.
func WithProgress(fn func(room string, stage pack.Stage)) Option {
	return func(o *buildOptions) {
		o.progress = fn
	}
}
