// Package nkklcd drives NKK SmartDisplay dot-matrix LCD panels via SPI.
//
// The panel has no controller: the host shifts every row out, latches it with
// the LP strobe and marks each frame with the FLM strobe, continuously.
//
// See the examples for how to use this package.
package nkklcd

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/nkklcd/glyph"
	"periph.io/x/devices/v3/nkklcd/image1bit"
	"periph.io/x/devices/v3/nkklcd/tick"
	"periph.io/x/host/v3/cpu"
)

const (
	// DefaultPeriod is the row period used when StartRefresh is given zero.
	// 24 rows at 277µs is roughly 150 frames per second.
	DefaultPeriod = 277 * time.Microsecond

	// DefaultHz is the default SPI clock.
	DefaultHz = physic.MegaHertz

	// dummyBits is the number of leading bits per row the shift register
	// chain carries beyond the visible columns.
	dummyBits = 4
)

var errHalted = errors.New("nkklcd: halted")

// Opts is the configuration for the NKK SmartDisplay panel.
type Opts struct {
	// Display dimensions in pixels
	W int // Width (default: 36)
	H int // Height (default: 24)

	Hz    physic.Frequency // SPI clock (default: 1MHz)
	Mode  spi.Mode         // SPI mode (default: Mode2); zero selects the default
	Pulse time.Duration    // LP strobe width (default: 1µs)

	// Timer paces the refresh. Defaults to a tick.Periodic.
	Timer tick.Timer
	// Bus, if not nil, is held locked while refresh is running so other
	// devices sharing the SPI bus cannot interleave transfers.
	Bus sync.Locker
	// Spin busy-waits for the strobe pulse. Defaults to cpu.Nanospin.
	Spin func(time.Duration)
}

// Dev is the device handle for the NKK SmartDisplay panel.
//
// Drawing and text methods must be called from a single goroutine. The
// refresh loop runs concurrently with them; it shares only the framebuffer.
type Dev struct {
	// Communication
	c     spi.Conn
	lp    gpio.PinOut // Line latch strobe
	flm   gpio.PinOut // First line marker strobe
	timer tick.Timer
	bus   sync.Locker
	spin  func(time.Duration)
	pulse time.Duration

	// Display geometry
	rect image.Rectangle

	// Pixel buffers
	fb   *image1bit.ShiftRows
	line []byte // Row being transmitted

	// Refresh state. row is only touched by onTick, and by StartRefresh while
	// the timer is disabled.
	mu      sync.Mutex
	row     int
	running atomic.Bool
	session bool

	// Text state
	glyphs     glyph.Set
	cols, rows int
	col, crow  int
	full       bool // A glyph was drawn in the last column
	utf8Need   int
	utf8Acc    rune

	halted atomic.Bool
}

var _ display.Drawer = (*Dev)(nil)

// NewSPI creates a new NKK SmartDisplay device connected via SPI.
//
// The SPI port is configured for 8-bit transfers in Opts.Mode, Mode2 (CPOL=1,
// CPHA=0) unless set. lp
// and flm are the line latch and first line marker strobes; both are driven
// low.
//
// opts can be nil to use defaults (36x24 panel).
func NewSPI(p spi.Port, lp, flm gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	o := *opts

	// Apply defaults and validate
	if o.W == 0 {
		o.W = 36
	}
	if o.H == 0 {
		o.H = 24
	}
	if o.W < 0 || o.H < 0 {
		return nil, errors.New("nkklcd: width and height must be positive")
	}
	if o.Hz < 0 {
		return nil, errors.New("nkklcd: SPI clock must be positive")
	}
	if o.Hz == 0 {
		o.Hz = DefaultHz
	}
	if o.Mode == 0 {
		o.Mode = spi.Mode2
	}
	if o.Pulse < 0 {
		return nil, errors.New("nkklcd: strobe pulse must be positive")
	}
	if o.Pulse == 0 {
		o.Pulse = time.Microsecond
	}
	if o.Timer == nil {
		o.Timer = tick.NewPeriodic()
	}
	if o.Spin == nil {
		o.Spin = cpu.Nanospin
	}
	if lp == nil || flm == nil {
		return nil, errors.New("nkklcd: LP and FLM pins are required")
	}

	// Establish SPI connection
	c, err := p.Connect(o.Hz, o.Mode, 8)
	if err != nil {
		return nil, fmt.Errorf("nkklcd: %w", err)
	}

	// Create device
	d := &Dev{
		c:     c,
		lp:    lp,
		flm:   flm,
		timer: o.Timer,
		bus:   o.Bus,
		spin:  o.Spin,
		pulse: o.Pulse,
		rect:  image.Rect(0, 0, o.W, o.H),
		cols:  o.W / charWidth,
		rows:  o.H / charHeight,
	}
	d.fb = image1bit.NewShiftRows(d.rect, dummyBits)
	d.line = make([]byte, d.fb.Stride)

	// Park both strobes low
	if err := d.lp.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("nkklcd: failed to pull LP low: %w", err)
	}
	if err := d.flm.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("nkklcd: failed to pull FLM low: %w", err)
	}
	return d, nil
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Draw draws src into the framebuffer. The dst rectangle specifies the
// destination region on the display; the src image is aligned at sp. The
// result is visible from the next refreshed row on.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted.Load() {
		return errHalted
	}
	dst = dst.Intersect(d.rect)
	if dst.Empty() {
		return nil
	}
	draw.Draw(d.fb, dst, src, sp, draw.Src)
	return nil
}

// Clear turns every pixel off. The text cursor is left where it is.
func (d *Dev) Clear() {
	d.fb.Clear()
}

// SetPixel turns the pixel at (x, y) on or off. Coordinates outside the
// display are ignored.
func (d *Dev) SetPixel(x, y int, on bool) {
	d.fb.SetBit(x, y, image1bit.Bit(on))
}

// Pixel reports whether the pixel at (x, y) is on.
func (d *Dev) Pixel(x, y int) bool {
	return bool(d.fb.BitAt(x, y))
}

// Halt stops the refresh and drives both strobes low. The panel goes blank
// within one frame; the device cannot be restarted.
func (d *Dev) Halt() error {
	d.StopRefresh()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.halted.Store(true)
	if err := errors.Join(d.lp.Out(gpio.Low), d.flm.Out(gpio.Low)); err != nil {
		return fmt.Errorf("nkklcd: %w", err)
	}
	return nil
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("nkklcd.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}
