package model

import "testing"

// TestNormalizeName tests room and zone name normalization
func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Kitchen", "Kitchen"},
		{"surrounding whitespace", "  Kitchen  ", "Kitchen"},
		{"internal whitespace collapsed", "Main   Panel\tRoom", "Main Panel Room"},
		{"curly apostrophe folded", "Owner’s Suite", "Owner's Suite"},
		{"curly double quotes folded", "“East” Wing", "\"East\" Wing"},
		{"empty", "", ""},
		{"only whitespace", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.input); got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestNormalizeNameMatching verifies differently typed versions of the same
// name normalize to the same key
func TestNormalizeNameMatching(t *testing.T) {
	pairs := [][2]string{
		{"Owner’s Suite", "Owner's Suite"},
		{" Utility  Room ", "Utility Room"},
	}

	for _, pair := range pairs {
		if NormalizeName(pair[0]) != NormalizeName(pair[1]) {
			t.Errorf("NormalizeName(%q) != NormalizeName(%q)", pair[0], pair[1])
		}
	}
}
