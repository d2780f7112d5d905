package filters

import (
	"bytes"
	"testing"
)

// TestASCIIHexDecode tests hex filter decoding
func TestASCIIHexDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr bool
	}{
		{"simple", "48656C6C6F>", []byte("Hello"), false},
		{"with whitespace", "48 65 6C\n6C 6F>", []byte("Hello"), false},
		{"odd digits pad with zero", "486>", []byte{0x48, 0x60}, false},
		{"empty", ">", []byte{}, false},
		{"invalid digit", "4G>", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ASCIIHexDecode([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ASCIIHexDecode() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("ASCIIHexDecode() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestASCII85Decode tests base-85 filter decoding
func TestASCII85Decode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr bool
	}{
		{"full group", "87cUR~>", []byte("Hell"), false},
		{"partial group", "87cURDZ~>", []byte("Hello"), false},
		{"z shorthand", "z~>", []byte{0, 0, 0, 0}, false},
		{"empty", "~>", []byte{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ASCII85Decode([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ASCII85Decode() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("ASCII85Decode() = %v, want %v", got, tt.want)
			}
		})
	}
}
