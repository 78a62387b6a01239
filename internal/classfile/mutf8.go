package classfile

import (
	"unicode/utf16"
)

// decodeMUTF8 converts the JVM's modified UTF-8 into a Go string.
// Invalid sequences decode byte-by-byte so that names survive a round trip.
func decodeMUTF8(b []byte) string {
	ascii := true

	for _, c := range b {
		if c == 0 || c >= 0x80 {
			ascii = false
			break
		}
	}

	if ascii {
		return string(b)
	}

	units := make([]uint16, 0, len(b))

	for i := 0; i < len(b); {
		c := b[i]

		switch {
		case c < 0x80:
			units = append(units, uint16(c))
			i++
		case c&0xE0 == 0xC0 && i+1 < len(b):
			units = append(units, uint16(c&0x1F)<<6|uint16(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0 && i+2 < len(b):
			units = append(units, uint16(c&0x0F)<<12|uint16(b[i+1]&0x3F)<<6|uint16(b[i+2]&0x3F))
			i += 3
		default:
			units = append(units, uint16(c))
			i++
		}
	}

	return string(utf16.Decode(units))
}

// encodeMUTF8 converts a Go string into the JVM's modified UTF-8.
func encodeMUTF8(s string) []byte {
	out := make([]byte, 0, len(s))

	for _, u := range utf16.Encode([]rune(s)) {
		switch {
		case u != 0 && u < 0x80:
			out = append(out, byte(u))
		case u < 0x800:
			out = append(out, byte(0xC0|u>>6), byte(0x80|u&0x3F))
		default:
			out = append(out, byte(0xE0|u>>12), byte(0x80|(u>>6)&0x3F), byte(0x80|u&0x3F))
		}
	}

	return out
}
