package model

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a malformed or missing configuration table
// row, or an unresolved tab-to-path mapping. The fields identify the
// offending entity as precisely as the context allows.
type ConfigurationError struct {
	Room  string
	Tab   string
	Track string
	Field string
	Msg   string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Msg + e.where()
}

func (e *ConfigurationError) where() string {
	var parts []string
	if e.Room != "" {
		parts = append(parts, fmt.Sprintf("room %q", e.Room))
	}
	if e.Tab != "" {
		parts = append(parts, fmt.Sprintf("tab %q", e.Tab))
	}
	if e.Track != "" {
		parts = append(parts, fmt.Sprintf("track %q", e.Track))
	}
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field %q", e.Field))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

// GeometryError reports an invalid or out-of-bounds crop region.
type GeometryError struct {
	Room   string
	Tab    string
	Track  string
	Region Rect
	Reason string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("geometry: %s (room %q, tab %q, track %q, region [%g %g %g %g])",
		e.Reason, e.Room, e.Tab, e.Track,
		e.Region.LLX, e.Region.LLY, e.Region.URX, e.Region.URY)
}

// SourceDocumentError reports an unreadable, corrupt, or encrypted source
// plan document, or a reference to a page it does not have.
type SourceDocumentError struct {
	Tab  string
	Path string
	Page int // 1-based page number, 0 if not page-specific
	Err  error
}

func (e *SourceDocumentError) Error() string {
	msg := fmt.Sprintf("source document %q (tab %q)", e.Path, e.Tab)
	if e.Page > 0 {
		msg += fmt.Sprintf(" page %d", e.Page)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SourceDocumentError) Unwrap() error {
	return e.Err
}

// AssemblyError reports a room or zone referenced by configuration but
// absent from the supplied data.
type AssemblyError struct {
	Room string
	Zone string
	Msg  string
}

func (e *AssemblyError) Error() string {
	msg := "assembly: " + e.Msg
	if e.Room != "" {
		msg += fmt.Sprintf(" (room %q", e.Room)
		if e.Zone != "" {
			msg += fmt.Sprintf(", zone %q", e.Zone)
		}
		msg += ")"
	}
	return msg
}

// BuildError aggregates every problem found during a build so structural
// errors surface together rather than one at a time.
type BuildError struct {
	Errs []error
}

func (e *BuildError) Error() string {
	switch len(e.Errs) {
	case 0:
		return "build failed"
	case 1:
		return e.Errs[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "build failed with %d errors:", len(e.Errs))
	for _, err := range e.Errs {
		b.WriteString("\n  ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *BuildError) Unwrap() []error {
	return e.Errs
}

// ErrOrNil returns nil when no errors were collected.
func (e *BuildError) ErrOrNil() error {
	if len(e.Errs) == 0 {
		return nil
	}
	return e
}

// Add appends an error, flattening nested BuildErrors.
func (e *BuildError) Add(err error) {
	if err == nil {
		return
	}
	if nested, ok := err.(*BuildError); ok {
		e.Errs = append(e.Errs, nested.Errs...)
		return
	}
	e.Errs = append(e.Errs, err)
}
