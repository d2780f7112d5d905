// Package config loads a build's run configuration: the YAML run file,
// the CSV crop-region and tab/track tables, plan document resolution, and
// data-page lookup.
//
// Loading is strict and exhaustive: malformed rows and missing fields are
// collected and reported together, so one pass over the error list fixes
// the whole file. Relative paths resolve against the run file's own
// directory, never the process working directory.
package config
