package nkklcd

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/nkklcd/tick"
)

// recorder collects bus and pin activity in order.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

// take returns the events recorded so far and resets the log.
func (r *recorder) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.events
	r.events = nil
	return e
}

type fakePort struct {
	rec  *recorder
	err  error
	hz   physic.Frequency
	mode spi.Mode
	bits int
	conn *fakeConn
}

func (p *fakePort) String() string { return "fakeSPI" }

func (p *fakePort) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.hz, p.mode, p.bits = f, mode, bits
	p.conn = &fakeConn{rec: p.rec}
	return p.conn, nil
}

func (p *fakePort) LimitSpeed(f physic.Frequency) error { return nil }

type fakeConn struct {
	rec *recorder
	err error
}

func (c *fakeConn) String() string { return "fakeSPI.conn" }

func (c *fakeConn) Tx(w, r []byte) error {
	c.rec.add("TX %x", w)
	return c.err
}

func (c *fakeConn) Duplex() conn.Duplex { return conn.Half }

func (c *fakeConn) TxPackets(p []spi.Packet) error {
	for _, pkt := range p {
		if err := c.Tx(pkt.W, pkt.R); err != nil {
			return err
		}
	}
	return nil
}

// tracePin is a gpiotest.Pin that logs every level change.
type tracePin struct {
	gpiotest.Pin
	rec *recorder
	err error
}

func (p *tracePin) Out(l gpio.Level) error {
	level := "L"
	if l == gpio.High {
		level = "H"
	}
	p.rec.add("%s=%s", p.N, level)
	if p.err != nil {
		return p.err
	}
	return p.Pin.Out(l)
}

// countingLock is a sync.Locker that tracks how often it is held.
type countingLock struct {
	mu      sync.Mutex
	held    bool
	acquire int
}

func (l *countingLock) Lock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = true
	l.acquire++
}

func (l *countingLock) Unlock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = false
}

func (l *countingLock) state() (held bool, acquire int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held, l.acquire
}

type testRig struct {
	dev   *Dev
	rec   *recorder
	port  *fakePort
	lp    *tracePin
	flm   *tracePin
	timer *tick.Manual
}

// newTestDev builds a Dev on fakes, stepping refresh with a tick.Manual. The
// construction events are discarded.
func newTestDev(t *testing.T, opts *Opts) *testRig {
	t.Helper()
	rec := &recorder{}
	rig := &testRig{
		rec:   rec,
		port:  &fakePort{rec: rec},
		lp:    &tracePin{Pin: gpiotest.Pin{N: "LP"}, rec: rec},
		flm:   &tracePin{Pin: gpiotest.Pin{N: "FLM"}, rec: rec},
		timer: &tick.Manual{},
	}
	if opts == nil {
		opts = &Opts{}
	}
	if opts.Timer == nil {
		opts.Timer = rig.timer
	}
	if opts.Spin == nil {
		opts.Spin = func(d time.Duration) { rec.add("WAIT %v", d) }
	}

	dev, err := NewSPI(rig.port, rig.lp, rig.flm, opts)
	if err != nil {
		t.Fatalf("NewSPI() error = %v", err)
	}
	rig.dev = dev
	rec.take()
	return rig
}
