package filters

import (
	"bytes"
	"fmt"
)

// ASCIIHexDecode decodes ASCII hexadecimal encoded data.
// Each pair of hexadecimal digits represents one byte. Whitespace is
// ignored, and > marks end of data. An odd trailing digit implies a
// trailing zero.
func ASCIIHexDecode(data []byte) ([]byte, error) {
	var result bytes.Buffer

	var pending byte
	havePending := false

	for i := 0; i < len(data); i++ {
		c := data[i]
		if isWhitespace(c) {
			continue
		}
		if c == '>' {
			break
		}

		v, err := hexDigitToByte(c)
		if err != nil {
			return nil, err
		}

		if havePending {
			result.WriteByte(pending<<4 | v)
			havePending = false
		} else {
			pending = v
			havePending = true
		}
	}

	if havePending {
		result.WriteByte(pending << 4)
	}

	return result.Bytes(), nil
}

// ASCII85Decode decodes ASCII base-85 encoded data.
// Each group of 5 characters (! to u) represents 4 bytes; 'z' represents
// four zero bytes; ~> marks end of data.
func ASCII85Decode(data []byte) ([]byte, error) {
	var result bytes.Buffer

	i := 0
	for i < len(data) {
		if isWhitespace(data[i]) {
			i++
			continue
		}

		if i+1 < len(data) && data[i] == '~' && data[i+1] == '>' {
			break
		}

		if data[i] == 'z' {
			result.Write([]byte{0, 0, 0, 0})
			i++
			continue
		}

		// Collect up to 5 base-85 digits
		digits := make([]byte, 0, 5)
		for len(digits) < 5 && i < len(data) {
			if isWhitespace(data[i]) {
				i++
				continue
			}
			if i+1 < len(data) && data[i] == '~' && data[i+1] == '>' {
				break
			}
			if data[i] < '!' || data[i] > 'u' {
				return nil, fmt.Errorf("invalid ASCII85 character: %c", data[i])
			}
			digits = append(digits, data[i]-'!')
			i++
		}

		if len(digits) == 0 {
			break
		}
		if len(digits) == 1 {
			return nil, fmt.Errorf("invalid ASCII85 group of length 1")
		}

		// A partial group of n digits decodes to n-1 bytes; pad with 'u'
		numBytes := len(digits) - 1
		if numBytes > 4 {
			numBytes = 4
		}
		for len(digits) < 5 {
			digits = append(digits, 84) // 'u' - '!'
		}

		value := uint32(0)
		for _, d := range digits {
			value = value*85 + uint32(d)
		}

		for j := 0; j < numBytes; j++ {
			result.WriteByte(byte(value >> (24 - j*8)))
		}
	}

	return result.Bytes(), nil
}

// hexDigitToByte converts a hexadecimal character to its numeric value (0-15).
func hexDigitToByte(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	default:
		return 0, fmt.Errorf("invalid hex digit: %c", c)
	}
}

// isWhitespace reports whether c is a PDF whitespace character.
func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}
