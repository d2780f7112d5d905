package core

import (
	"bytes"
	"testing"
)

const classicXRef = `xref
0 3
0000000000 65535 f
0000000017 00000 n
0000000081 00000 n
trailer
<< /Size 3 /Root 1 0 R >>
startxref
0
%%EOF
`

// TestParseXRefTable tests parsing a traditional cross-reference table
func TestParseXRefTable(t *testing.T) {
	parser := NewXRefParser(bytes.NewReader([]byte(classicXRef)))

	table, err := parser.ParseXRef(0)
	if err != nil {
		t.Fatalf("ParseXRef() error = %v", err)
	}

	if table.Size() != 3 {
		t.Errorf("Size() = %d, want 3", table.Size())
	}

	entry, ok := table.Get(0)
	if !ok {
		t.Fatal("entry 0 missing")
	}
	if entry.InUse {
		t.Error("entry 0 should be free")
	}

	entry, ok = table.Get(1)
	if !ok {
		t.Fatal("entry 1 missing")
	}
	if !entry.InUse || entry.Offset != 17 {
		t.Errorf("entry 1 = %+v, want in-use at offset 17", entry)
	}

	if size, _ := table.Trailer.GetInt("Size"); size != 3 {
		t.Errorf("trailer /Size = %v, want 3", table.Trailer.Get("Size"))
	}
	if root, ok := table.Trailer.GetIndirectRef("Root"); !ok || root.Number != 1 {
		t.Errorf("trailer /Root = %v, want 1 0 R", table.Trailer.Get("Root"))
	}
}

// TestFindXRef tests locating the xref offset from the file tail
func TestFindXRef(t *testing.T) {
	data := []byte("%PDF-1.7\njunk junk junk\nstartxref\n1234\n%%EOF\n")
	parser := NewXRefParser(bytes.NewReader(data))

	offset, err := parser.FindXRef()
	if err != nil {
		t.Fatalf("FindXRef() error = %v", err)
	}
	if offset != 1234 {
		t.Errorf("FindXRef() = %d, want 1234", offset)
	}
}

// TestParseEntry tests individual xref entry lines
func TestParseEntry(t *testing.T) {
	parser := &XRefParser{}

	tests := []struct {
		name    string
		line    string
		want    XRefEntry
		wantErr bool
	}{
		{"in use", "0000000017 00000 n ", XRefEntry{Offset: 17, Generation: 0, InUse: true}, false},
		{"free", "0000000000 65535 f ", XRefEntry{Offset: 0, Generation: 65535, InUse: false}, false},
		{"too short", "123 n", XRefEntry{}, true},
		{"bad flag", "0000000017 00000 x ", XRefEntry{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := parser.parseEntry(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseEntry() error = %v", err)
			}
			if *entry != tt.want {
				t.Errorf("parseEntry() = %+v, want %+v", *entry, tt.want)
			}
		})
	}
}

// TestReadBigEndianInt tests fixed-width big-endian field decoding
func TestReadBigEndianInt(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		width int
		want  int
	}{
		{"one byte", []byte{0x2a}, 1, 42},
		{"two bytes", []byte{0x01, 0x00}, 2, 256},
		{"three bytes", []byte{0x01, 0x02, 0x03}, 3, 0x010203},
		{"zero width", nil, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := readBigEndianInt(tt.data, tt.width); got != tt.want {
				t.Errorf("readBigEndianInt() = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestParseXRefStreamEntry tests interpretation of decoded entry triples
func TestParseXRefStreamEntry(t *testing.T) {
	tests := []struct {
		name      string
		entryType int
		f2, f3    int
		want      XRefEntry
		wantErr   bool
	}{
		{"free", 0, 5, 1, XRefEntry{Offset: 5, Generation: 1, InUse: false}, false},
		{"in use", 1, 1024, 0, XRefEntry{Offset: 1024, InUse: true}, false},
		{"in object stream", 2, 7, 3, XRefEntry{InUse: true, InObjectStream: true, StreamNumber: 7, StreamIndex: 3}, false},
		{"unknown type", 9, 0, 0, XRefEntry{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := parseXRefStreamEntry(tt.entryType, tt.f2, tt.f3)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseXRefStreamEntry() error = %v", err)
			}
			if *entry != tt.want {
				t.Errorf("parseXRefStreamEntry() = %+v, want %+v", *entry, tt.want)
			}
		})
	}
}

// TestMergeXRefTables verifies later tables override earlier entries
func TestMergeXRefTables(t *testing.T) {
	older := NewXRefTable()
	older.Set(1, &XRefEntry{Offset: 10, InUse: true})
	older.Set(2, &XRefEntry{Offset: 20, InUse: true})
	older.Trailer = Dict{"Size": Int(3)}

	newer := NewXRefTable()
	newer.Set(2, &XRefEntry{Offset: 200, InUse: true})
	newer.Set(3, &XRefEntry{Offset: 30, InUse: true})
	newer.Trailer = Dict{"Size": Int(4)}

	merged := MergeXRefTables(older, newer)

	if merged.Size() != 3 {
		t.Errorf("Size() = %d, want 3", merged.Size())
	}

	entry, _ := merged.Get(2)
	if entry == nil || entry.Offset != 200 {
		t.Errorf("entry 2 = %+v, want offset 200 from newer table", entry)
	}

	if size, _ := merged.Trailer.GetInt("Size"); size != 4 {
		t.Errorf("merged trailer /Size = %v, want 4", merged.Trailer.Get("Size"))
	}
}
