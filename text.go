package nkklcd

import "periph.io/x/devices/v3/nkklcd/glyph"

// Character cell size. Glyphs are 5x7, leaving one column and one row of
// spacing.
const (
	charWidth  = 6
	charHeight = 8
)

// Cols returns the number of character columns.
func (d *Dev) Cols() int {
	return d.cols
}

// Rows returns the number of character rows.
func (d *Dev) Rows() int {
	return d.rows
}

// Home moves the text cursor to the top left cell.
func (d *Dev) Home() {
	d.col, d.crow = 0, 0
	d.full = false
}

// SetCursor moves the text cursor, clamping to the last column and row.
func (d *Dev) SetCursor(col, row int) {
	if d.cols == 0 || d.rows == 0 {
		return
	}
	d.col = min(max(col, 0), d.cols-1)
	d.crow = min(max(row, 0), d.rows-1)
	d.full = false
}

// Cursor returns the text cursor position.
func (d *Dev) Cursor() (col, row int) {
	return d.col, d.crow
}

// CreateChar programs user glyph index (0..7) from an HD44780 style bitmap:
// bitmap[r] is row r, bit 4 the leftmost column. Other indices are ignored.
// The glyph is shown with WriteGlyph.
func (d *Dev) CreateChar(index int, bitmap [8]byte) {
	d.glyphs.Program(index, bitmap)
}

// Write renders p as UTF-8 text at the cursor. It implements io.Writer and
// always consumes all of p.
//
// '\n' moves to the start of the next line, '\r' is ignored. Text does not
// wrap: once the last column is written, the rest of the line is dropped.
// Supported characters are printable ASCII and Ä Ö Ü ä ö ü ß; anything else,
// including malformed UTF-8 and 3 or 4 byte sequences, renders as '?'.
func (d *Dev) Write(p []byte) (int, error) {
	for _, b := range p {
		d.writeByte(b)
	}
	return len(p), nil
}

// WriteString is like Write.
func (d *Dev) WriteString(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		d.writeByte(s[i])
	}
	return len(s), nil
}

// WriteByte renders one byte of UTF-8 text. It implements io.ByteWriter.
func (d *Dev) WriteByte(b byte) error {
	d.writeByte(b)
	return nil
}

// WriteGlyph draws glyph code at the cursor and advances it. Codes 0..7 are
// the user glyphs.
func (d *Dev) WriteGlyph(code byte) {
	d.drawGlyph(code)
}

func (d *Dev) writeByte(b byte) {
	switch b {
	case '\r':
		return
	case '\n':
		if d.crow+1 < d.rows {
			d.crow++
		}
		d.col = 0
		d.full = false
		return
	}
	if r, ok := d.decodeUTF8(b); ok {
		d.drawGlyph(glyph.Resolve(r))
	}
}

// decodeUTF8 feeds b to the decoder and returns a rune once one is complete.
// Only 1 and 2 byte sequences are decoded.
func (d *Dev) decodeUTF8(b byte) (rune, bool) {
	if d.utf8Need == 0 {
		switch {
		case b&0x80 == 0:
			return rune(b), true
		case b&0xE0 == 0xC0:
			d.utf8Need = 1
			d.utf8Acc = rune(b & 0x1F)
			return 0, false
		default:
			return rune(glyph.Fallback), true
		}
	}

	if b&0xC0 != 0x80 {
		d.utf8Need = 0
		return rune(glyph.Fallback), true
	}
	d.utf8Acc = d.utf8Acc<<6 | rune(b&0x3F)
	d.utf8Need--
	if d.utf8Need == 0 {
		return d.utf8Acc, true
	}
	return 0, false
}

// drawGlyph draws a 5x7 glyph and clears the spacing column. The 8th row of
// the cell is left untouched.
func (d *Dev) drawGlyph(code byte) {
	if d.cols == 0 || d.rows == 0 || d.full {
		return
	}
	x0 := d.col * charWidth
	y0 := d.crow * charHeight

	cols := d.glyphs.Columns(code)
	for x := 0; x < glyph.Width; x++ {
		for y := 0; y < glyph.Height; y++ {
			d.SetPixel(x0+x, y0+y, cols.Lit(x, y))
		}
	}
	for y := 0; y < glyph.Height; y++ {
		d.SetPixel(x0+glyph.Width, y0+y, false)
	}

	if d.col+1 < d.cols {
		d.col++
	} else {
		d.full = true
	}
}
