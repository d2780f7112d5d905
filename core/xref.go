package core

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// XRefEntry represents a single cross-reference entry
type XRefEntry struct {
	Offset     int64 // Byte offset in file (for in-use objects)
	Generation int   // Generation number
	InUse      bool  // true if object is in use, false if free

	// For objects stored inside an object stream (xref stream type 2)
	InObjectStream bool
	StreamNumber   int // Object number of the containing object stream
	StreamIndex    int // Index of the object within the stream
}

// XRefTable represents a PDF cross-reference table
type XRefTable struct {
	Entries map[int]*XRefEntry // Map from object number to XRef entry
	Trailer Dict               // Trailer dictionary
}

// NewXRefTable creates a new empty XRef table
func NewXRefTable() *XRefTable {
	return &XRefTable{
		Entries: make(map[int]*XRefEntry),
		Trailer: make(Dict),
	}
}

// Get retrieves an XRef entry by object number
func (x *XRefTable) Get(objNum int) (*XRefEntry, bool) {
	entry, ok := x.Entries[objNum]
	return entry, ok
}

// Set adds or updates an XRef entry
func (x *XRefTable) Set(objNum int, entry *XRefEntry) {
	x.Entries[objNum] = entry
}

// Size returns the number of entries in the table
func (x *XRefTable) Size() int {
	return len(x.Entries)
}

// XRefParser parses PDF cross-reference tables and xref streams
type XRefParser struct {
	reader io.ReadSeeker
}

// NewXRefParser creates a new XRef parser
func NewXRefParser(r io.ReadSeeker) *XRefParser {
	return &XRefParser{
		reader: r,
	}
}

// FindXRef finds the byte offset of the XRef section by scanning from EOF.
// PDFs end with "startxref\n<offset>\n%%EOF".
func (x *XRefParser) FindXRef() (int64, error) {
	fileSize, err := x.reader.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("failed to seek to end: %w", err)
	}

	readSize := int64(1024)
	if fileSize < readSize {
		readSize = fileSize
	}

	if _, err := x.reader.Seek(fileSize-readSize, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to seek to startxref area: %w", err)
	}

	buf := make([]byte, readSize)
	n, err := x.reader.Read(buf)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("failed to read startxref area: %w", err)
	}
	buf = buf[:n]

	content := string(buf)
	idx := strings.LastIndex(content, "startxref")
	if idx == -1 {
		return 0, fmt.Errorf("startxref not found in PDF")
	}

	afterStartXRef := content[idx+len("startxref"):]
	lines := strings.Split(afterStartXRef, "\n")
	if len(lines) < 2 {
		return 0, fmt.Errorf("invalid startxref format")
	}

	offsetStr := strings.TrimSpace(lines[1])
	offset, err := strconv.ParseInt(offsetStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid xref offset: %w", err)
	}

	return offset, nil
}

// isXRefStream reports whether the data at the current position is an xref
// stream (PDF 1.5+, "n g obj") rather than a traditional table ("xref").
func (x *XRefParser) isXRefStream() (bool, error) {
	buf := make([]byte, 32)
	n, err := x.reader.Read(buf)
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read xref section start: %w", err)
	}
	head := strings.TrimLeft(string(buf[:n]), " \t\r\n")

	if strings.HasPrefix(head, "xref") {
		return false, nil
	}

	// An xref stream starts with an indirect object header: digits
	fields := strings.Fields(head)
	if len(fields) >= 3 {
		if _, err := strconv.Atoi(fields[0]); err == nil {
			if _, err := strconv.Atoi(fields[1]); err == nil && strings.HasPrefix(fields[2], "obj") {
				return true, nil
			}
		}
	}

	return false, fmt.Errorf("unrecognized xref section: %q", head)
}

// ParseXRef parses the xref section at the given byte offset, handling both
// traditional tables and xref streams.
func (x *XRefParser) ParseXRef(offset int64) (*XRefTable, error) {
	if _, err := x.reader.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to xref: %w", err)
	}

	isStream, err := x.isXRefStream()
	if err != nil {
		return nil, err
	}

	if _, err := x.reader.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to xref: %w", err)
	}

	if isStream {
		return x.parseXRefStream()
	}
	return x.parseXRefTable()
}

// parseXRefTable parses a traditional cross-reference table.
func (x *XRefParser) parseXRefTable() (*XRefTable, error) {
	scanner := bufio.NewScanner(x.reader)

	if !scanner.Scan() {
		return nil, fmt.Errorf("failed to read xref keyword")
	}
	line := strings.TrimSpace(scanner.Text())
	if line != "xref" {
		return nil, fmt.Errorf("expected 'xref' keyword, got '%s'", line)
	}

	table := NewXRefTable()
	foundTrailer := false

	for scanner.Scan() {
		line = strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if line == "trailer" {
			trailer, err := x.parseTrailer(scanner)
			if err != nil {
				return nil, fmt.Errorf("failed to parse trailer: %w", err)
			}
			table.Trailer = trailer
			foundTrailer = true
			break
		}

		// Subsection header: firstObjNum count
		parts := strings.Fields(line)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid subsection header: %s", line)
		}

		firstObjNum, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid first object number: %w", err)
		}

		count, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid count: %w", err)
		}

		for i := 0; i < count; i++ {
			if !scanner.Scan() {
				return nil, fmt.Errorf("unexpected end of xref subsection")
			}

			entry, err := x.parseEntry(scanner.Text())
			if err != nil {
				return nil, fmt.Errorf("failed to parse xref entry: %w", err)
			}

			table.Set(firstObjNum+i, entry)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}

	if !foundTrailer {
		return nil, fmt.Errorf("xref table missing trailer")
	}

	return table, nil
}

// parseEntry parses a single xref entry line.
// Format: "nnnnnnnnnn ggggg n" (in use) or "nnnnnnnnnn ggggg f" (free).
func (x *XRefParser) parseEntry(line string) (*XRefEntry, error) {
	if len(line) < 18 {
		return nil, fmt.Errorf("xref entry too short: %q", line)
	}

	offsetStr := strings.TrimSpace(line[0:10])
	genStr := strings.TrimSpace(line[10:16])
	flag := strings.TrimSpace(line[16:18])

	offset, err := strconv.ParseInt(offsetStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid offset %q: %w", offsetStr, err)
	}

	generation, err := strconv.Atoi(genStr)
	if err != nil {
		return nil, fmt.Errorf("invalid generation %q: %w", genStr, err)
	}

	var inUse bool
	switch flag {
	case "n":
		inUse = true
	case "f":
		inUse = false
	default:
		return nil, fmt.Errorf("invalid in-use flag: %q", flag)
	}

	return &XRefEntry{
		Offset:     offset,
		Generation: generation,
		InUse:      inUse,
	}, nil
}

// parseTrailer parses the trailer dictionary after the "trailer" keyword
func (x *XRefParser) parseTrailer(scanner *bufio.Scanner) (Dict, error) {
	var dictText strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		dictText.WriteString(line)
		dictText.WriteString("\n")

		if strings.Contains(line, ">>") {
			break
		}
	}

	parser := NewParser(strings.NewReader(dictText.String()))
	obj, err := parser.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("failed to parse trailer dictionary: %w", err)
	}

	dict, ok := obj.(Dict)
	if !ok {
		return nil, fmt.Errorf("trailer is not a dictionary, got %T", obj)
	}

	return dict, nil
}

// parseXRefStream parses an xref stream (PDF 1.5+): an indirect stream
// object with /Type /XRef whose decoded data holds fixed-width entries
// described by the /W array.
func (x *XRefParser) parseXRefStream() (*XRefTable, error) {
	parser := NewParser(x.reader)
	indObj, err := parser.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("failed to parse xref stream object: %w", err)
	}

	stream, ok := indObj.Object.(*Stream)
	if !ok {
		return nil, fmt.Errorf("xref section is not a stream, got %T", indObj.Object)
	}

	if typeName, ok := stream.Dict.GetName("Type"); !ok || string(typeName) != "XRef" {
		return nil, fmt.Errorf("xref stream has wrong /Type: %v", stream.Dict.Get("Type"))
	}

	wArr, ok := stream.Dict.GetArray("W")
	if !ok || len(wArr) != 3 {
		return nil, fmt.Errorf("xref stream missing or invalid /W array")
	}
	var w [3]int
	for i := 0; i < 3; i++ {
		wInt, ok := wArr.Get(i).(Int)
		if !ok || wInt < 0 {
			return nil, fmt.Errorf("invalid /W element %d: %v", i, wArr.Get(i))
		}
		w[i] = int(wInt)
	}

	size, ok := stream.Dict.GetInt("Size")
	if !ok {
		return nil, fmt.Errorf("xref stream missing /Size")
	}

	// /Index defaults to [0 Size]: pairs of (first object number, count)
	var index []int
	if indexArr, ok := stream.Dict.GetArray("Index"); ok {
		if len(indexArr)%2 != 0 {
			return nil, fmt.Errorf("xref stream /Index has odd length %d", len(indexArr))
		}
		for _, elem := range indexArr {
			elemInt, ok := elem.(Int)
			if !ok {
				return nil, fmt.Errorf("invalid /Index element: %v", elem)
			}
			index = append(index, int(elemInt))
		}
	} else {
		index = []int{0, int(size)}
	}

	data, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode xref stream: %w", err)
	}

	entryWidth := w[0] + w[1] + w[2]
	if entryWidth == 0 {
		return nil, fmt.Errorf("xref stream /W widths are all zero")
	}

	table := NewXRefTable()
	pos := 0
	for i := 0; i < len(index); i += 2 {
		first, count := index[i], index[i+1]
		for j := 0; j < count; j++ {
			if pos+entryWidth > len(data) {
				return nil, fmt.Errorf("xref stream data truncated at entry %d", first+j)
			}

			// Field 1 defaults to type 1 when /W[0] is 0
			entryType := 1
			if w[0] > 0 {
				entryType = readBigEndianInt(data[pos:pos+w[0]], w[0])
			}
			f2 := readBigEndianInt(data[pos+w[0]:pos+w[0]+w[1]], w[1])
			f3 := readBigEndianInt(data[pos+w[0]+w[1]:pos+entryWidth], w[2])
			pos += entryWidth

			entry, err := parseXRefStreamEntry(entryType, f2, f3)
			if err != nil {
				return nil, fmt.Errorf("invalid xref stream entry for object %d: %w", first+j, err)
			}
			table.Set(first+j, entry)
		}
	}

	// The stream dictionary doubles as the trailer
	table.Trailer = stream.Dict

	return table, nil
}

// parseXRefStreamEntry interprets a decoded (type, field2, field3) triple.
//
//	type 0: free object        (field2 = next free, field3 = generation)
//	type 1: in-use object      (field2 = byte offset, field3 = generation)
//	type 2: in object stream   (field2 = stream obj num, field3 = index)
func parseXRefStreamEntry(entryType, f2, f3 int) (*XRefEntry, error) {
	switch entryType {
	case 0:
		return &XRefEntry{Offset: int64(f2), Generation: f3, InUse: false}, nil
	case 1:
		return &XRefEntry{Offset: int64(f2), Generation: f3, InUse: true}, nil
	case 2:
		return &XRefEntry{
			InUse:          true,
			InObjectStream: true,
			StreamNumber:   f2,
			StreamIndex:    f3,
		}, nil
	default:
		return nil, fmt.Errorf("unknown entry type %d", entryType)
	}
}

// readBigEndianInt reads a big-endian integer of the given byte width.
func readBigEndianInt(data []byte, width int) int {
	val := 0
	for i := 0; i < width; i++ {
		val = val<<8 | int(data[i])
	}
	return val
}

// MergeXRefTables merges multiple XRef tables (from incremental updates).
// Later entries override earlier ones.
func MergeXRefTables(tables ...*XRefTable) *XRefTable {
	merged := NewXRefTable()

	for _, table := range tables {
		for objNum, entry := range table.Entries {
			merged.Set(objNum, entry)
		}
		merged.Trailer = table.Trailer
	}

	return merged
}

// ParseXRefFromEOF finds and parses the xref section by scanning from EOF
func (x *XRefParser) ParseXRefFromEOF() (*XRefTable, error) {
	offset, err := x.FindXRef()
	if err != nil {
		return nil, fmt.Errorf("failed to find xref: %w", err)
	}

	table, err := x.ParseXRef(offset)
	if err != nil {
		return nil, fmt.Errorf("failed to parse xref: %w", err)
	}

	return table, nil
}

// ParseAllXRefs parses the main xref section and all previous ones
// (incremental updates), returning them from oldest to newest.
func (x *XRefParser) ParseAllXRefs() ([]*XRefTable, error) {
	mainTable, err := x.ParseXRefFromEOF()
	if err != nil {
		return nil, err
	}

	tables := []*XRefTable{mainTable}

	currentTable := mainTable
	for {
		prevObj := currentTable.Trailer.Get("Prev")
		if prevObj == nil {
			break
		}

		prevInt, ok := prevObj.(Int)
		if !ok {
			return nil, fmt.Errorf("invalid /Prev entry type: %T", prevObj)
		}

		prevTable, err := x.ParseXRef(int64(prevInt))
		if err != nil {
			return nil, fmt.Errorf("failed to parse previous xref: %w", err)
		}

		// Prepend: oldest first
		tables = append([]*XRefTable{prevTable}, tables...)
		currentTable = prevTable
	}

	return tables, nil
}
