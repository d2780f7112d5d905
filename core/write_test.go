package core

import (
	"bytes"
	"strings"
	"testing"
)

// TestWriteObject tests serialization of each object type
func TestWriteObject(t *testing.T) {
	tests := []struct {
		name string
		obj  Object
		want string
	}{
		{"null", Null{}, "null"},
		{"bool true", Bool(true), "true"},
		{"bool false", Bool(false), "false"},
		{"int", Int(42), "42"},
		{"negative int", Int(-17), "-17"},
		{"real", Real(2.5), "2.5"},
		{"string", String("Hello"), "(Hello)"},
		{"string with parens", String("a(b)c"), `(a\(b\)c)`},
		{"string with backslash", String(`a\b`), `(a\\b)`},
		{"string with newline", String("a\nb"), `(a\nb)`},
		{"string with high byte", String("a\xffb"), `(a\377b)`},
		{"name", Name("Type"), "/Type"},
		{"name with space", Name("A B"), "/A#20B"},
		{"name with hash", Name("A#B"), "/A#23B"},
		{"empty array", Array{}, "[]"},
		{"array", Array{Int(1), Name("X"), Bool(false)}, "[1 /X false]"},
		{"nested array", Array{Array{Int(1)}, Int(2)}, "[[1] 2]"},
		{"empty dict", Dict{}, "<<>>"},
		{"dict sorts keys", Dict{"B": Int(2), "A": Int(1)}, "<</A 1 /B 2 >>"},
		{"indirect ref", IndirectRef{Number: 3, Generation: 0}, "3 0 R"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteObject(&buf, tt.obj); err != nil {
				t.Fatalf("WriteObject() error = %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("WriteObject() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestWriteObjectDeterministic verifies repeated serialization of the same
// dictionary produces identical bytes regardless of map iteration order
func TestWriteObjectDeterministic(t *testing.T) {
	dict := Dict{
		"Type":     Name("Page"),
		"MediaBox": NumberArray(0, 0, 612, 792),
		"Rotate":   Int(90),
		"Contents": IndirectRef{Number: 5},
		"Parent":   IndirectRef{Number: 2},
	}

	var first bytes.Buffer
	if err := WriteObject(&first, dict); err != nil {
		t.Fatalf("WriteObject() error = %v", err)
	}

	for i := 0; i < 20; i++ {
		var buf bytes.Buffer
		if err := WriteObject(&buf, dict); err != nil {
			t.Fatalf("WriteObject() error = %v", err)
		}
		if !bytes.Equal(buf.Bytes(), first.Bytes()) {
			t.Fatalf("iteration %d produced %q, want %q", i, buf.String(), first.String())
		}
	}
}

// TestWriteStream tests stream serialization with exact /Length
func TestWriteStream(t *testing.T) {
	stream := &Stream{
		Dict: Dict{"Length": Int(999)}, // stale length must be corrected
		Data: []byte("hello"),
	}

	var buf bytes.Buffer
	if err := WriteObject(&buf, stream); err != nil {
		t.Fatalf("WriteObject() error = %v", err)
	}

	want := "<</Length 5 >>\nstream\nhello\nendstream"
	if got := buf.String(); got != want {
		t.Errorf("WriteObject() = %q, want %q", got, want)
	}

	// The source dictionary must not be mutated
	if length, _ := stream.Dict.GetInt("Length"); length != 999 {
		t.Errorf("source dict /Length changed to %d", length)
	}
}

// TestWriteIndirectObject tests the full indirect object frame
func TestWriteIndirectObject(t *testing.T) {
	var buf bytes.Buffer
	ref := IndirectRef{Number: 7, Generation: 0}
	if err := WriteIndirectObject(&buf, ref, Int(42)); err != nil {
		t.Fatalf("WriteIndirectObject() error = %v", err)
	}

	want := "7 0 obj\n42\nendobj\n"
	if got := buf.String(); got != want {
		t.Errorf("WriteIndirectObject() = %q, want %q", got, want)
	}
}

// TestNumberArray tests compact numeric array construction
func TestNumberArray(t *testing.T) {
	arr := NumberArray(0, 0.5, 612, -7.25)

	var buf bytes.Buffer
	if err := WriteObject(&buf, arr); err != nil {
		t.Fatalf("WriteObject() error = %v", err)
	}

	want := "[0 0.5 612 -7.25]"
	if got := buf.String(); got != want {
		t.Errorf("NumberArray serialized to %q, want %q", got, want)
	}
}

// TestWriteParsedRoundTrip verifies a serialized object parses back to the
// same serialization
func TestWriteParsedRoundTrip(t *testing.T) {
	obj := Dict{
		"Kids":  Array{IndirectRef{Number: 3}, IndirectRef{Number: 4}},
		"Count": Int(2),
		"Type":  Name("Pages"),
		"Box":   NumberArray(0, 0, 100.5, 200),
		"Title": String("Panel (A)"),
	}

	var first bytes.Buffer
	if err := WriteObject(&first, obj); err != nil {
		t.Fatalf("WriteObject() error = %v", err)
	}

	parser := NewParser(strings.NewReader(first.String()))
	parsed, err := parser.ParseObject()
	if err != nil {
		t.Fatalf("ParseObject() error = %v", err)
	}

	var second bytes.Buffer
	if err := WriteObject(&second, parsed); err != nil {
		t.Fatalf("WriteObject() error = %v", err)
	}

	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Errorf("round trip changed serialization:\n first = %q\nsecond = %q", first.String(), second.String())
	}
}
