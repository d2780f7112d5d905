package core

import (
	"fmt"
	"io"
	"strconv"
)

// WriteObject serializes a PDF object to the writer. Dictionaries are
// written with sorted keys so the same object graph always produces the
// same bytes.
func WriteObject(w io.Writer, obj Object) error {
	switch v := obj.(type) {
	case nil, Null:
		_, err := io.WriteString(w, "null")
		return err

	case Bool:
		_, err := io.WriteString(w, v.String())
		return err

	case Int:
		_, err := io.WriteString(w, strconv.FormatInt(int64(v), 10))
		return err

	case Real:
		_, err := io.WriteString(w, strconv.FormatFloat(float64(v), 'f', -1, 64))
		return err

	case String:
		return writeLiteralString(w, string(v))

	case Name:
		return writeName(w, string(v))

	case Array:
		if _, err := io.WriteString(w, "["); err != nil {
			return err
		}
		for i, elem := range v {
			if i > 0 {
				if _, err := io.WriteString(w, " "); err != nil {
					return err
				}
			}
			if err := WriteObject(w, elem); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "]")
		return err

	case Dict:
		return writeDict(w, v)

	case *Stream:
		return writeStream(w, v)

	case IndirectRef:
		_, err := fmt.Fprintf(w, "%d %d R", v.Number, v.Generation)
		return err

	default:
		return fmt.Errorf("cannot serialize object type %T", obj)
	}
}

// WriteIndirectObject serializes a complete indirect object definition:
// "num gen obj ... endobj" followed by a newline.
func WriteIndirectObject(w io.Writer, ref IndirectRef, obj Object) error {
	if _, err := fmt.Fprintf(w, "%d %d obj\n", ref.Number, ref.Generation); err != nil {
		return err
	}
	if err := WriteObject(w, obj); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\nendobj\n")
	return err
}

func writeDict(w io.Writer, d Dict) error {
	if _, err := io.WriteString(w, "<<"); err != nil {
		return err
	}
	for _, key := range d.Keys() {
		if err := writeName(w, key); err != nil {
			return err
		}
		if _, err := io.WriteString(w, " "); err != nil {
			return err
		}
		if err := WriteObject(w, d[key]); err != nil {
			return err
		}
		if _, err := io.WriteString(w, " "); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, ">>")
	return err
}

func writeStream(w io.Writer, s *Stream) error {
	// /Length must match the stored data exactly
	dict := s.Dict.Clone()
	dict.Set("Length", Int(len(s.Data)))

	if err := writeDict(w, dict); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\nstream\n"); err != nil {
		return err
	}
	if _, err := w.Write(s.Data); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\nendstream")
	return err
}

// writeLiteralString writes a PDF literal string, escaping delimiters,
// backslashes, and non-printable bytes.
func writeLiteralString(w io.Writer, s string) error {
	buf := make([]byte, 0, len(s)+2)
	buf = append(buf, '(')
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch b {
		case '(', ')', '\\':
			buf = append(buf, '\\', b)
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		case '\t':
			buf = append(buf, '\\', 't')
		default:
			if b < 0x20 || b > 0x7e {
				buf = append(buf, '\\')
				buf = append(buf, byte('0'+(b>>6)&7), byte('0'+(b>>3)&7), byte('0'+b&7))
			} else {
				buf = append(buf, b)
			}
		}
	}
	buf = append(buf, ')')
	_, err := w.Write(buf)
	return err
}

// writeName writes a PDF name, escaping irregular characters as #xx.
func writeName(w io.Writer, name string) error {
	buf := make([]byte, 0, len(name)+1)
	buf = append(buf, '/')
	for i := 0; i < len(name); i++ {
		b := name[i]
		if b <= 0x20 || b > 0x7e || isDelimiter(b) || b == '#' {
			buf = append(buf, '#')
			buf = append(buf, hexDigit(b>>4), hexDigit(b&0xf))
		} else {
			buf = append(buf, b)
		}
	}
	_, err := w.Write(buf)
	return err
}

func hexDigit(v byte) byte {
	if v < 10 {
		return '0' + v
	}
	return 'A' + v - 10
}
