package image1bit

import (
	"image"
	"image/color"
	"sync/atomic"
)

// Bit is a monochrome pixel: On (dark segment) or Off.
type Bit bool

const (
	On  = Bit(true)
	Off = Bit(false)
)

// RGBA returns On as white and Off as black.
func (c Bit) RGBA() (r, g, b, a uint32) {
	if c {
		return 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF
	}
	return 0, 0, 0, 0xFFFF
}

func (c Bit) String() string {
	if c {
		return "On"
	}
	return "Off"
}

// toBit converts any color.Color to Bit.
func toBit(c color.Color) color.Color {
	if b, ok := c.(Bit); ok {
		return b
	}
	r, g, b, _ := c.RGBA()
	// Same luma weights as image/color.GrayModel, thresholded at 50%.
	y := (19595*r + 38470*g + 7471*b + 1<<15) >> 16
	return Bit(y >= 0x8000)
}

// BitModel converts colors to Bit.
var BitModel = color.ModelFunc(toBit)

// ShiftRows is a 1-bit image stored in panel transmission order.
//
// Row y occupies Stride bytes. Bytes are kept four to a word, big-endian, so
// byte i of a row is bits 31-8*(i%4) .. 24-8*(i%4) of word i/4.
type ShiftRows struct {
	Stride int             // Bytes per row, ceil((width+Pad)/8)
	Pad    int             // Leading dummy bits per row
	Rect   image.Rectangle // Image bounds

	words       []atomic.Uint32
	wordsPerRow int
}

// NewShiftRows creates a new ShiftRows image with the specified bounds and
// number of leading dummy bits per row. pad must be in 0..7.
func NewShiftRows(r image.Rectangle, pad int) *ShiftRows {
	if pad < 0 || pad > 7 {
		panic("image1bit: pad must be between 0 and 7")
	}
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return &ShiftRows{Pad: pad, Rect: r}
	}

	stride := (w + pad + 7) / 8
	wordsPerRow := (stride + 3) / 4
	return &ShiftRows{
		Stride:      stride,
		Pad:         pad,
		Rect:        r,
		words:       make([]atomic.Uint32, wordsPerRow*h),
		wordsPerRow: wordsPerRow,
	}
}

// ColorModel returns the color model of the image.
func (p *ShiftRows) ColorModel() color.Model {
	return BitModel
}

// Bounds returns the image bounds.
func (p *ShiftRows) Bounds() image.Rectangle {
	return p.Rect
}

// At returns the color of the pixel at (x, y).
// It implements the image.Image interface.
func (p *ShiftRows) At(x, y int) color.Color {
	return p.BitAt(x, y)
}

// BitAt returns the Bit at (x, y). Out of bounds pixels are Off.
func (p *ShiftRows) BitAt(x, y int) Bit {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return Off
	}
	word, mask := p.bitOffset(x, y)
	return p.words[word].Load()&mask != 0
}

// Set sets the color of the pixel at (x, y).
func (p *ShiftRows) Set(x, y int, c color.Color) {
	p.SetBit(x, y, BitModel.Convert(c).(Bit))
}

// SetBit sets the Bit at (x, y). Out of bounds writes are ignored.
func (p *ShiftRows) SetBit(x, y int, b Bit) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	word, mask := p.bitOffset(x, y)
	if b {
		p.words[word].Or(mask)
	} else {
		p.words[word].And(^mask)
	}
}

// Clear sets every stored byte, dummy bits included, to zero.
func (p *ShiftRows) Clear() {
	for i := range p.words {
		p.words[i].Store(0)
	}
}

// MaskPad forces the leading dummy bits of row y to zero.
func (p *ShiftRows) MaskPad(y int) {
	if p.Pad == 0 || !p.rowIn(y) {
		return
	}
	dummy := uint32(0xFF) &^ (0xFF >> p.Pad)
	p.words[p.rowBase(y)].And(^(dummy << 24))
}

// Row copies row y, in transmission order, into dst and returns the number of
// bytes copied. Rows out of bounds copy nothing.
func (p *ShiftRows) Row(y int, dst []byte) int {
	if !p.rowIn(y) {
		return 0
	}
	n := min(len(dst), p.Stride)
	base := p.rowBase(y)
	var w uint32
	for i := 0; i < n; i++ {
		if i%4 == 0 {
			w = p.words[base+i/4].Load()
		}
		dst[i] = byte(w >> (24 - 8*(i%4)))
	}
	return n
}

// SetByte overwrites byte i of row y, dummy bits included.
func (p *ShiftRows) SetByte(y, i int, v byte) {
	if !p.rowIn(y) || i < 0 || i >= p.Stride {
		return
	}
	shift := 24 - 8*(i%4)
	word := &p.words[p.rowBase(y)+i/4]
	for {
		old := word.Load()
		next := old&^(0xFF<<shift) | uint32(v)<<shift
		if word.CompareAndSwap(old, next) {
			return
		}
	}
}

func (p *ShiftRows) rowIn(y int) bool {
	return y >= p.Rect.Min.Y && y < p.Rect.Max.Y && p.Rect.Dx() > 0
}

func (p *ShiftRows) rowBase(y int) int {
	return (y - p.Rect.Min.Y) * p.wordsPerRow
}

// bitOffset returns the word index and bit mask for the pixel at (x, y).
// x is mirrored, then shifted past the dummy bits, MSB first.
func (p *ShiftRows) bitOffset(x, y int) (word int, mask uint32) {
	pos := (p.Rect.Max.X - 1 - x) + p.Pad
	byteIndex := pos >> 3
	bitInByte := 7 - (pos & 7)
	word = p.rowBase(y) + byteIndex/4
	mask = 1 << (uint(24-8*(byteIndex%4)) + uint(bitInByte))
	return
}
