// Package glyph maps characters to 5x7 column bitmaps for dot-matrix panels.
//
// A glyph code selects one of three sources:
//
//	0x00..0x07  user glyphs, programmed at runtime
//	0x20..0x7E  built-in ASCII font
//	0x80..0x86  Ä Ö Ü ä ö ü ß
//
// Every other code renders as '?'.
package glyph

const (
	// Width and Height are the glyph size in pixels.
	Width  = 5
	Height = 7

	// UserSlots is the number of programmable glyphs.
	UserSlots = 8

	// Fallback is the glyph code used for anything that cannot be shown.
	Fallback byte = '?'

	firstPrintable = 0x20
	lastPrintable  = 0x7E
	firstExtended  = 0x80
	lastExtended   = 0x86
	sharpS         = 0x86
)

// Columns is a glyph as 5 column bytes, left to right. Bit r of a column
// lights row r, counted from the top.
type Columns [Width]byte

// Lit reports whether the pixel at (col, row) is lit.
func (c Columns) Lit(col, row int) bool {
	if col < 0 || col >= Width || row < 0 || row >= 8 {
		return false
	}
	return c[col]&(1<<row) != 0
}

// Resolve returns the glyph code for r.
func Resolve(r rune) byte {
	if r >= firstPrintable && r <= lastPrintable {
		return byte(r)
	}
	switch r {
	case 'Ä':
		return 0x80
	case 'Ö':
		return 0x81
	case 'Ü':
		return 0x82
	case 'ä':
		return 0x83
	case 'ö':
		return 0x84
	case 'ü':
		return 0x85
	case 'ß':
		return sharpS
	default:
		return Fallback
	}
}

// Set is a glyph source: the static tables plus a bank of user glyphs.
//
// The zero value is ready to use with all user glyphs blank.
type Set struct {
	user [UserSlots]Columns
}

// Program stores bitmap as user glyph index, HD44780 style: bitmap[r] holds
// row r with bit 4 as the leftmost column. Indices outside 0..7 are ignored.
func (s *Set) Program(index int, bitmap [8]byte) {
	if index < 0 || index >= UserSlots {
		return
	}
	var cols Columns
	for col := 0; col < Width; col++ {
		for row := 0; row < 8; row++ {
			if bitmap[row]&(1<<(4-col)) != 0 {
				cols[col] |= 1 << row
			}
		}
	}
	s.user[index] = cols
}

// Columns returns the column bitmap for glyph code.
func (s *Set) Columns(code byte) Columns {
	if code < UserSlots {
		return s.user[code]
	}

	if code >= firstExtended && code <= lastExtended {
		cols := extended[code-firstExtended]
		// Umlaut dots. Empirical, ß has none.
		if code != sharpS {
			cols[1] |= 0x01
			cols[3] |= 0x01
		}
		return cols
	}

	if code < firstPrintable || code > lastPrintable {
		code = Fallback
	}
	var cols Columns
	off := int(code-firstPrintable) * Width
	copy(cols[:], ascii[off:off+Width])
	return cols
}
