package nkklcd

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// StartRefresh starts refreshing the panel, one row every period. A zero or
// negative period selects DefaultPeriod. Calling it while running restarts the
// refresh from row 0 with the new period.
//
// While running the device holds Opts.Bus, if one was given.
func (d *Dev) StartRefresh(period time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted.Load() {
		return errHalted
	}
	if period <= 0 {
		period = DefaultPeriod
	}

	d.timer.Disable()
	if err := d.timer.Configure(period, d.onTick); err != nil {
		d.running.Store(false)
		d.endSession()
		return fmt.Errorf("nkklcd: %w", err)
	}
	d.row = 0
	d.running.Store(true)
	if !d.session {
		if d.bus != nil {
			d.bus.Lock()
		}
		d.session = true
	}
	d.timer.Enable()
	return nil
}

// StopRefresh stops the refresh. When it returns no row is being transmitted
// and none will be until the next StartRefresh. The panel fades out unless
// refreshed again.
func (d *Dev) StopRefresh() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.timer.Disable()
	d.running.Store(false)
	d.endSession()
}

// Running reports whether the refresh is running.
func (d *Dev) Running() bool {
	return d.running.Load()
}

// TransmitFrame sends every row once, synchronously. It is meant for driving
// the panel without a timer and fails while the refresh is running.
func (d *Dev) TransmitFrame() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted.Load() {
		return errHalted
	}
	if d.running.Load() {
		return errors.New("nkklcd: refresh is running")
	}

	if d.bus != nil {
		d.bus.Lock()
		defer d.bus.Unlock()
	}
	// Send every row, collecting failures
	var errs []error
	for y := 0; y < d.rect.Dy(); y++ {
		if err := d.transmitRow(y, y == 0); err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", y, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("nkklcd: %w", err)
	}
	return nil
}

func (d *Dev) endSession() {
	if !d.session {
		return
	}
	if d.bus != nil {
		d.bus.Unlock()
	}
	d.session = false
}

// onTick is the timer callback.
func (d *Dev) onTick() {
	if !d.running.Load() {
		return
	}
	// The panel acknowledges nothing; a failed row is rewritten next frame.
	// Transfer errors are only reported by TransmitFrame.
	_ = d.transmitRow(d.row, d.row == 0)
	d.row++
	if d.row >= d.rect.Dy() {
		d.row = 0
	}
}

// transmitRow shifts row y out and latches it. FLM brackets row 0. The strobe
// sequence always completes, even when a step fails.
func (d *Dev) transmitRow(y int, first bool) error {
	var errs []error
	// Mark the start of frame
	if first {
		errs = append(errs, d.flm.Out(gpio.High))
	}

	// Shift the row out with the dummy bits cleared
	d.fb.MaskPad(y)
	n := d.fb.Row(y, d.line)
	errs = append(errs, d.c.Tx(d.line[:n], nil))

	// Latch it
	errs = append(errs, d.lp.Out(gpio.High))
	d.spin(d.pulse)
	errs = append(errs, d.lp.Out(gpio.Low))

	// End of frame marker
	if first {
		errs = append(errs, d.flm.Out(gpio.Low))
	}
	return errors.Join(errs...)
}
