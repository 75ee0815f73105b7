// Package tick provides the periodic timer that paces a display refresh loop.
//
// A Timer calls a single callback at a fixed period once enabled. It plays the
// role of a hardware timer interrupt: Disable masks delivery and returns only
// once no callback is running, so state shared with the callback can be
// changed safely between Disable and Enable.
package tick

import (
	"errors"
	"sync"
	"time"
)

// Timer delivers periodic ticks to a callback.
type Timer interface {
	// Configure sets the period and the callback. The timer must be disabled.
	Configure(period time.Duration, fn func()) error
	// Enable starts delivery. Enabling an enabled timer is a no-op.
	Enable()
	// Disable stops delivery and waits for an in-flight callback to return.
	// It must not be called from the callback.
	Disable()
}

var (
	errPeriod  = errors.New("tick: period must be positive")
	errFunc    = errors.New("tick: callback must not be nil")
	errEnabled = errors.New("tick: timer is enabled")
)

// Periodic is a Timer backed by a time.Ticker and a goroutine.
//
// Ticks that fall due while the callback is still running are dropped, as a
// timer interrupt that is already pending would be.
type Periodic struct {
	mu     sync.Mutex
	period time.Duration
	fn     func()
	stop   chan struct{}
	done   chan struct{}
}

// NewPeriodic returns a disabled, unconfigured Periodic timer.
func NewPeriodic() *Periodic {
	return &Periodic{}
}

// Configure implements Timer.
func (p *Periodic) Configure(period time.Duration, fn func()) error {
	if period <= 0 {
		return errPeriod
	}
	if fn == nil {
		return errFunc
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		return errEnabled
	}
	p.period = period
	p.fn = fn
	return nil
}

// Enable implements Timer. It does nothing until the timer is configured.
func (p *Periodic) Enable() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil || p.fn == nil {
		return
	}
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.run(p.period, p.fn, p.stop, p.done)
}

// Disable implements Timer.
func (p *Periodic) Disable() {
	p.mu.Lock()
	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (p *Periodic) run(period time.Duration, fn func(), stop, done chan struct{}) {
	defer close(done)
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			// Disable may race with the ticker; stop wins.
			select {
			case <-stop:
				return
			default:
			}
			fn()
		}
	}
}

// Manual is a Timer whose ticks are delivered by calling Tick.
//
// It is useful to drive a refresh loop step by step, from tests or from an
// external clock source.
type Manual struct {
	mu      sync.Mutex
	period  time.Duration
	fn      func()
	enabled bool
}

// Configure implements Timer.
func (m *Manual) Configure(period time.Duration, fn func()) error {
	if period <= 0 {
		return errPeriod
	}
	if fn == nil {
		return errFunc
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.enabled {
		return errEnabled
	}
	m.period = period
	m.fn = fn
	return nil
}

// Enable implements Timer.
func (m *Manual) Enable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fn != nil {
		m.enabled = true
	}
}

// Disable implements Timer.
func (m *Manual) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = false
}

// Enabled reports whether ticks are being delivered.
func (m *Manual) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// Period returns the configured period.
func (m *Manual) Period() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.period
}

// Tick delivers one tick if the timer is enabled and reports whether the
// callback ran.
func (m *Manual) Tick() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return false
	}
	m.fn()
	return true
}

// Fire calls the configured callback even if the timer is disabled, like an
// interrupt that was already latched when it was masked. It reports whether a
// callback is configured.
func (m *Manual) Fire() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fn == nil {
		return false
	}
	m.fn()
	return true
}
