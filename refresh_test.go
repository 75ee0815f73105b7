package nkklcd

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"periph.io/x/devices/v3/nkklcd/tick"
)

func rowEvents(data string, first bool) []string {
	e := []string{"TX " + data, "LP=H", "WAIT 1µs", "LP=L"}
	if first {
		e = append([]string{"FLM=H"}, e...)
		e = append(e, "FLM=L")
	}
	return e
}

func TestTransmitRowSequence(t *testing.T) {
	rig := newTestDev(t, nil)
	rig.dev.SetPixel(35, 0, true)
	rig.dev.SetPixel(0, 1, true)

	if err := rig.dev.transmitRow(0, true); err != nil {
		t.Fatalf("transmitRow(0) error = %v", err)
	}
	if got, want := rig.rec.take(), rowEvents("0800000000", true); !reflect.DeepEqual(got, want) {
		t.Errorf("row 0 events = %q, want %q", got, want)
	}

	if err := rig.dev.transmitRow(1, false); err != nil {
		t.Fatalf("transmitRow(1) error = %v", err)
	}
	if got, want := rig.rec.take(), rowEvents("0000000001", false); !reflect.DeepEqual(got, want) {
		t.Errorf("row 1 events = %q, want %q", got, want)
	}
}

func TestTransmitRowMasksDummyBits(t *testing.T) {
	rig := newTestDev(t, nil)
	// Out of contract write over the dummy bits and the first pixels.
	rig.dev.fb.SetByte(2, 0, 0xFF)

	if err := rig.dev.transmitRow(2, false); err != nil {
		t.Fatalf("transmitRow(2) error = %v", err)
	}
	events := rig.rec.take()
	if events[0] != "TX 0f00000000" {
		t.Errorf("first event = %q, want %q", events[0], "TX 0f00000000")
	}
}

func TestTransmitRowCompletesOnError(t *testing.T) {
	rig := newTestDev(t, nil)
	cause := errors.New("bus fault")
	rig.port.conn.err = cause

	err := rig.dev.transmitRow(0, true)
	if !errors.Is(err, cause) {
		t.Errorf("transmitRow() error = %v, want it to wrap %v", err, cause)
	}
	if got, want := rig.rec.take(), rowEvents("0000000000", true); !reflect.DeepEqual(got, want) {
		t.Errorf("events = %q, want %q", got, want)
	}
}

func TestRefreshRoundRobin(t *testing.T) {
	rig := newTestDev(t, nil)
	d := rig.dev
	// Mark each row with its index in the rightmost byte.
	for y := 0; y < 24; y++ {
		for bit := 0; bit < 8; bit++ {
			d.SetPixel(bit, y, y&(1<<bit) != 0)
		}
	}

	if err := d.StartRefresh(0); err != nil {
		t.Fatalf("StartRefresh() error = %v", err)
	}
	if got := rig.timer.Period(); got != DefaultPeriod {
		t.Errorf("timer period = %v, want %v", got, DefaultPeriod)
	}

	for i := 0; i < 24*3; i++ {
		y := i % 24
		if !rig.timer.Tick() {
			t.Fatal("timer not enabled after StartRefresh")
		}
		want := rowEvents(fmt.Sprintf("00000000%02x", y), y == 0)
		if got := rig.rec.take(); !reflect.DeepEqual(got, want) {
			t.Fatalf("tick %d events = %q, want %q", i, got, want)
		}
	}
}

func TestRefreshFirstRowFlag(t *testing.T) {
	rig := newTestDev(t, &Opts{W: 12, H: 8})
	if err := rig.dev.StartRefresh(100 * time.Microsecond); err != nil {
		t.Fatalf("StartRefresh() error = %v", err)
	}

	var marks []bool
	for i := 0; i < 20; i++ {
		rig.timer.Tick()
		events := rig.rec.take()
		marks = append(marks, events[0] == "FLM=H")
	}
	for i, m := range marks {
		if want := i%8 == 0; m != want {
			t.Errorf("tick %d: FLM asserted = %v, want %v", i, m, want)
		}
	}
}

func TestRefreshRestartResetsRow(t *testing.T) {
	rig := newTestDev(t, nil)
	d := rig.dev

	if err := d.StartRefresh(0); err != nil {
		t.Fatalf("StartRefresh() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		rig.timer.Tick()
	}
	rig.rec.take()

	if err := d.StartRefresh(500 * time.Microsecond); err != nil {
		t.Fatalf("StartRefresh() error = %v", err)
	}
	if got := rig.timer.Period(); got != 500*time.Microsecond {
		t.Errorf("timer period = %v, want 500µs", got)
	}
	rig.timer.Tick()
	if events := rig.rec.take(); events[0] != "FLM=H" {
		t.Errorf("first tick after restart = %q, want row 0", events)
	}
}

func TestStopRefresh(t *testing.T) {
	rig := newTestDev(t, nil)
	d := rig.dev

	if err := d.StartRefresh(0); err != nil {
		t.Fatalf("StartRefresh() error = %v", err)
	}
	if !d.Running() {
		t.Error("Running() = false after StartRefresh")
	}
	rig.timer.Tick()
	rig.rec.take()

	d.StopRefresh()
	if d.Running() {
		t.Error("Running() = true after StopRefresh")
	}
	if rig.timer.Enabled() {
		t.Error("timer still enabled after StopRefresh")
	}

	// Neither masked ticks nor a latched one transmit anything.
	rig.timer.Tick()
	rig.timer.Fire()
	if events := rig.rec.take(); len(events) != 0 {
		t.Errorf("events after StopRefresh = %q, want none", events)
	}

	d.StopRefresh()
}

func TestRefreshBusSession(t *testing.T) {
	lock := &countingLock{}
	rig := newTestDev(t, &Opts{Bus: lock})
	d := rig.dev

	if err := d.StartRefresh(0); err != nil {
		t.Fatalf("StartRefresh() error = %v", err)
	}
	if held, n := lock.state(); !held || n != 1 {
		t.Errorf("bus lock = (held %v, %d acquisitions), want (true, 1)", held, n)
	}

	// Restarting keeps the session.
	if err := d.StartRefresh(0); err != nil {
		t.Fatalf("StartRefresh() error = %v", err)
	}
	if held, n := lock.state(); !held || n != 1 {
		t.Errorf("bus lock after restart = (held %v, %d acquisitions), want (true, 1)", held, n)
	}

	d.StopRefresh()
	if held, _ := lock.state(); held {
		t.Error("bus lock held after StopRefresh")
	}
	d.StopRefresh()
	if held, _ := lock.state(); held {
		t.Error("bus lock held after second StopRefresh")
	}
}

type failingTimer struct{ tick.Manual }

func (f *failingTimer) Configure(time.Duration, func()) error {
	return errors.New("no timer channel")
}

func TestStartRefreshTimerError(t *testing.T) {
	lock := &countingLock{}
	rig := newTestDev(t, &Opts{Timer: &failingTimer{}, Bus: lock})

	err := rig.dev.StartRefresh(0)
	if err == nil || !strings.HasPrefix(err.Error(), "nkklcd: ") {
		t.Fatalf("StartRefresh() error = %v, want nkklcd: prefixed error", err)
	}
	if rig.dev.Running() {
		t.Error("Running() = true after failed StartRefresh")
	}
	if held, _ := lock.state(); held {
		t.Error("bus lock held after failed StartRefresh")
	}
}

func TestTransmitFrame(t *testing.T) {
	lock := &countingLock{}
	rig := newTestDev(t, &Opts{W: 12, H: 3, Bus: lock})
	rig.dev.SetPixel(11, 0, true)
	rig.dev.fb.SetByte(2, 0, 0xF0)

	if err := rig.dev.TransmitFrame(); err != nil {
		t.Fatalf("TransmitFrame() error = %v", err)
	}

	var want []string
	want = append(want, rowEvents("0800", true)...)
	want = append(want, rowEvents("0000", false)...)
	want = append(want, rowEvents("0000", false)...)
	if got := rig.rec.take(); !reflect.DeepEqual(got, want) {
		t.Errorf("events = %q, want %q", got, want)
	}
	if held, n := lock.state(); held || n != 1 {
		t.Errorf("bus lock = (held %v, %d acquisitions), want (false, 1)", held, n)
	}
}

func TestTransmitFrameWhileRunning(t *testing.T) {
	rig := newTestDev(t, nil)
	if err := rig.dev.StartRefresh(0); err != nil {
		t.Fatalf("StartRefresh() error = %v", err)
	}
	if err := rig.dev.TransmitFrame(); err == nil {
		t.Error("TransmitFrame should fail while refresh is running")
	}
}

func TestTransmitFrameErrors(t *testing.T) {
	rig := newTestDev(t, &Opts{W: 6, H: 2})
	cause := errors.New("bus fault")
	rig.port.conn.err = cause

	err := rig.dev.TransmitFrame()
	if !errors.Is(err, cause) {
		t.Fatalf("TransmitFrame() error = %v, want it to wrap %v", err, cause)
	}
	if !strings.Contains(err.Error(), "row 1") {
		t.Errorf("TransmitFrame() error = %q, want it to name row 1", err)
	}
}

// A row drawn while the refresh runs may be sent torn for one frame; the next
// frame always carries the final framebuffer.
func TestRefreshConcurrentDrawing(t *testing.T) {
	rig := newTestDev(t, nil)
	d := rig.dev
	if err := d.StartRefresh(0); err != nil {
		t.Fatalf("StartRefresh() error = %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 24*10; i++ {
			rig.timer.Tick()
		}
	}()
	for i := 0; i < 200; i++ {
		d.FillRect(0, 0, 36, 24, i%2 == 0)
	}
	d.DrawBarsTest()
	wg.Wait()
	rig.rec.take()

	// Finish the frame in progress, then check a complete one.
	for i := 0; i < 24; i++ {
		rig.timer.Tick()
	}
	rig.rec.take()
	frame := make(map[int]string)
	for y := 0; y < 24; y++ {
		rig.timer.Tick()
		for _, e := range rig.rec.take() {
			if strings.HasPrefix(e, "TX ") {
				frame[y] = strings.TrimPrefix(e, "TX ")
			}
		}
	}

	// Bars: logical x with (x/2)%2 == 0 lit. x=35 goes out first, right after
	// the dummy bits, and is off.
	want := "0333333333"
	for y := 0; y < 24; y++ {
		if frame[y] == "" {
			t.Fatalf("row %d not transmitted", y)
		}
		if frame[y] != want {
			t.Errorf("row %d = %s, want %s", y, frame[y], want)
		}
	}
}

func TestRefreshPeriodicTimer(t *testing.T) {
	rig := newTestDev(t, &Opts{W: 6, H: 2, Timer: tick.NewPeriodic(), Spin: func(time.Duration) {}})
	d := rig.dev

	if err := d.StartRefresh(100 * time.Microsecond); err != nil {
		t.Fatalf("StartRefresh() error = %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		n := 0
		for _, e := range rig.rec.take() {
			if e == "FLM=H" {
				n++
			}
		}
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("no frame transmitted by the periodic timer")
		}
		time.Sleep(time.Millisecond)
	}
	d.StopRefresh()

	rig.rec.take()
	time.Sleep(5 * time.Millisecond)
	if events := rig.rec.take(); len(events) != 0 {
		t.Errorf("events after StopRefresh = %q, want none", events)
	}
}
