package zx81

import "unicode"

// Newline is the ZX81 end-of-line character, which doubles as the
// HALT opcode in the display file.
const Newline = 0x76

// NoKey is the LAST_K value meaning no key is held down.
const NoKey = 0xFFFF

// charTable maps ZX81 display codes to printable runes. The machine
// has no ASCII: space is 0x00, digits start at 0x1C, letters at 0x26.
var charTable = map[uint8]rune{
	0x00: ' ', 0x0B: '"', 0x0C: '£', 0x0D: '$', 0x0E: ':',
	0x0F: '?', 0x10: '(', 0x11: ')', 0x12: '>', 0x13: '<',
	0x14: '=', 0x15: '+', 0x16: '-', 0x17: '*', 0x18: '/',
	0x19: ';', 0x1A: ',', 0x1B: '.', Newline: '\n',
}

func init() {
	for i := rune(0); i < 10; i++ {
		charTable[0x1C+uint8(i)] = '0' + i
	}
	for i := rune(0); i < 26; i++ {
		charTable[0x26+uint8(i)] = 'A' + i
	}
	// Inverse video codes render as lowercase so they stay visible
	// in plain text output.
	for code := uint8(0); code < 0x40; code++ {
		ch, ok := charTable[code]
		if !ok {
			continue
		}
		charTable[code|0x80] = unicode.ToLower(ch)
	}
}

// DecodeChar converts a display code to a printable rune, or '?' for
// codes with no glyph.
func DecodeChar(code uint8) rune {
	if ch, ok := charTable[code]; ok {
		return ch
	}
	return '?'
}

// DecodeString converts a slice of display codes to a string.
func DecodeString(codes []byte) string {
	out := make([]rune, len(codes))
	for n, code := range codes {
		out[n] = DecodeChar(code)
	}
	return string(out)
}

// EncodeKey converts a typed character to the key code the keyboard
// scan would deliver, or 0xFF for keys the machine does not have.
// Letters are case-insensitive, and only digits 1 to 8 are mapped
// since the chess input format never needs the others.
func EncodeKey(ch rune) uint8 {
	switch {
	case ch >= 'A' && ch <= 'Z':
		return 0x26 + uint8(ch-'A')
	case ch >= 'a' && ch <= 'z':
		return 0x26 + uint8(ch-'a')
	case ch >= '1' && ch <= '8':
		return 0x1D + uint8(ch-'1')
	}
	return 0xFF
}

// EncodeKeys converts a string of typed characters to key codes.
func EncodeKeys(text string) (keys []uint16) {
	for _, ch := range text {
		keys = append(keys, uint16(EncodeKey(ch)))
	}
	return
}
