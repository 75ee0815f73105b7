// Package image1bit provides a 1-bit image format matching the shift register
// chain of controller-less dot-matrix LCD panels such as the NKK SmartDisplay.
//
// Each row is stored as the byte stream that is clocked out to the panel.
// The panel presents columns in reverse electrical order and the chain is a
// few bits longer than the visible width, so every row starts with Pad dummy
// bits that carry no pixel:
//
//	Logical x:   0  1  2  ... 35
//	Physical x:  35 34 33 ... 0     (W-1-x)
//	Row bit:     Pad+35 ... Pad+0   (MSB first)
//
// For the 36x24 panel with 4 dummy bits a row is 5 bytes; pixel (35, y) is
// bit 3 of byte 0 and pixel (0, y) is bit 0 of byte 4.
//
// Example usage:
//
//	img := image1bit.NewShiftRows(image.Rect(0, 0, 36, 24), 4)
//	img.SetBit(0, 0, image1bit.On)
//	row := make([]byte, img.Stride)
//	img.Row(0, row)
//
// Pixel writes and row reads are atomic per 32-bit word, so a refresh loop may
// read rows while another goroutine draws. A row read concurrently with writes
// may mix old and new pixels; the next read is consistent again.
package image1bit
