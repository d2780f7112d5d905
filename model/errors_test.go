package model

import (
	"errors"
	"strings"
	"testing"
)

// TestConfigurationErrorMessage tests entity naming in the message
func TestConfigurationErrorMessage(t *testing.T) {
	err := &ConfigurationError{Room: "Kitchen", Tab: "E1", Track: "power", Msg: "no crop region configured"}

	msg := err.Error()
	for _, want := range []string{"Kitchen", "E1", "power", "no crop region configured"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

// TestSourceDocumentErrorUnwrap tests error chain compatibility
func TestSourceDocumentErrorUnwrap(t *testing.T) {
	inner := errors.New("file truncated")
	err := &SourceDocumentError{Tab: "E2", Path: "plans/E2.pdf", Page: 4, Err: inner}

	if !errors.Is(err, inner) {
		t.Error("errors.Is() should find the wrapped error")
	}
	if !strings.Contains(err.Error(), "page 4") {
		t.Errorf("Error() = %q, missing page number", err.Error())
	}
}

// TestBuildErrorAggregation tests collecting and flattening errors
func TestBuildErrorAggregation(t *testing.T) {
	be := &BuildError{}

	if be.ErrOrNil() != nil {
		t.Error("empty BuildError should yield nil")
	}

	be.Add(nil) // ignored
	be.Add(&ConfigurationError{Msg: "first"})

	nested := &BuildError{}
	nested.Add(&GeometryError{Reason: "second"})
	nested.Add(&AssemblyError{Msg: "third"})
	be.Add(nested) // flattened, not nested

	if len(be.Errs) != 3 {
		t.Fatalf("len(Errs) = %d, want 3", len(be.Errs))
	}

	msg := be.Error()
	for _, want := range []string{"3 errors", "first", "second", "third"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

// TestBuildErrorAs verifies errors.As reaches collected errors
func TestBuildErrorAs(t *testing.T) {
	be := &BuildError{}
	be.Add(&ConfigurationError{Room: "Garage", Msg: "bad row"})
	be.Add(&GeometryError{Room: "Garage", Reason: "inverted"})

	var cfgErr *ConfigurationError
	if !errors.As(be.ErrOrNil(), &cfgErr) {
		t.Fatal("errors.As should find *ConfigurationError")
	}
	if cfgErr.Room != "Garage" {
		t.Errorf("Room = %q, want Garage", cfgErr.Room)
	}

	var geoErr *GeometryError
	if !errors.As(be.ErrOrNil(), &geoErr) {
		t.Fatal("errors.As should find *GeometryError")
	}
}

// TestBuildErrorSingle tests the single-error message shortcut
func TestBuildErrorSingle(t *testing.T) {
	be := &BuildError{}
	be.Add(&AssemblyError{Room: "Attic", Msg: "no data pages"})

	if got := be.Error(); !strings.HasPrefix(got, "assembly:") {
		t.Errorf("single-error message = %q, want the bare error text", got)
	}
}
