// Package nkklcd drives NKK SmartDisplay dot-matrix LCD panels via SPI.
//
// The panel in NKK SmartSwitch keys is a 36×24 monochrome LCD with no
// controller and no frame memory. The host clocks each row into the panel's
// shift registers, latches it, and moves on to the next row, forever. If the
// refresh stops the image fades within a fraction of a second.
//
// This driver implements the display.Drawer interface from periph.io, an
// HD44780 flavoured text API and a few drawing primitives, all rendering into
// an in-memory framebuffer that a timer-driven refresh loop streams out.
//
// # Display Characteristics
//
// - 36×24 pixels, 1 bit per pixel
// - 6×3 character cells of 6×8 pixels (5×7 glyphs)
// - Rows are 40 bits: 4 dummy bits followed by the 36 columns, right to left
// - Refresh paced by the host, one row per tick (277µs by default)
//
// # Hardware Connection
//
//	Display Pin → System Pin
//	GND         → GND
//	VDD         → 5V
//	SCP         → SPI Clock (SCLK)
//	SIN         → SPI Data (MOSI)
//	LP          → GPIO (line latch pulse)
//	FLM         → GPIO (first line marker)
//
// The panel has no chip select and no data output.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"fmt"
//
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/conn/v3/spi/spireg"
//		"periph.io/x/devices/v3/nkklcd"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		host.Init()
//
//		spiBus, _ := spireg.Open("")
//		defer spiBus.Close()
//
//		dev, _ := nkklcd.NewSPI(spiBus, gpioreg.ByName("GPIO24"), gpioreg.ByName("GPIO25"), nil)
//		defer dev.Halt()
//
//		dev.StartRefresh(0) // default 277µs per row
//		fmt.Fprint(dev, "Hallo\nGrüße")
//		select {}
//	}
//
// # Text
//
// Write, WriteString and WriteByte decode UTF-8 and render printable ASCII and
// the German letters Ä Ö Ü ä ö ü ß. Anything else, including 3 and 4 byte
// sequences, renders as '?'. '\n' moves to the next line, '\r' is ignored. The
// cursor clamps at the last column and row and never wraps.
//
// Eight user glyphs can be programmed with CreateChar, using the same row
// bitmaps as HD44780 custom characters, and drawn with WriteGlyph:
//
//	dev.CreateChar(0, [8]byte{0x04, 0x0E, 0x0E, 0x0E, 0x1F, 0x00, 0x04, 0x00})
//	dev.WriteGlyph(0)
//
// # Refresh
//
// StartRefresh arms a periodic timer; every tick transmits one row. FLM is high
// while row 0 is shifted, LP pulses after every row. StopRefresh disarms the
// timer and waits for an in-flight row to finish. The timer is a tick.Timer;
// the default runs on a goroutine, tick.Manual lets the caller step rows.
//
// The framebuffer is not locked. When a row changes while it is being sent,
// that row may show a mix of old and new pixels for one frame.
//
// # Compatibility with periph.io
//
// This driver implements the display.Drawer interface from periph.io:
// https://pkg.go.dev/periph.io/x/conn/v3/display
//
// It can be used with any periph.io tool or library expecting a display.Drawer.
package nkklcd
