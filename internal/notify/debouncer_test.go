package notify

import (
	"strings"
	"sync"
	"testing"
	"time"
)

type captureNotifier struct {
	mu    sync.Mutex
	sends []string
}

func (c *captureNotifier) Send(title, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sends = append(c.sends, title+"|"+body)
}

func (c *captureNotifier) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sends...)
}

// fakeClock pins nowFn and captures AfterFunc callbacks so tests can fire
// scheduled flushes by hand.
type fakeClock struct {
	now       time.Time
	scheduled []time.Duration
	callbacks []func()
}

func installClock(t *testing.T, start time.Time) *fakeClock {
	t.Helper()
	clk := &fakeClock{now: start}

	oldNow := nowFn
	oldAfter := afterFuncFn
	nowFn = func() time.Time { return clk.now }
	afterFuncFn = func(d time.Duration, f func()) *time.Timer {
		clk.scheduled = append(clk.scheduled, d)
		clk.callbacks = append(clk.callbacks, f)
		return time.NewTimer(time.Hour)
	}
	t.Cleanup(func() {
		nowFn = oldNow
		afterFuncFn = oldAfter
	})
	return clk
}

func TestNotifyFlushesImmediatelyWhenWindowNeverOpened(t *testing.T) {
	sink := &captureNotifier{}
	d := NewDebouncer(sink)
	installClock(t, time.Unix(1000, 0))

	d.Notify(Event{Channel: "altitude", Value: 1532.4, IsMin: false})

	sends := sink.all()
	if len(sends) != 1 {
		t.Fatalf("expected one immediate send, got %d", len(sends))
	}
	if !strings.HasPrefix(sends[0], "New Extreme Found|") {
		t.Fatalf("unexpected title: %s", sends[0])
	}
	if !strings.Contains(sends[0], "highest altitude 1532.40") {
		t.Fatalf("unexpected body: %s", sends[0])
	}
}

func TestNotifyWindowBatchingAndReopen(t *testing.T) {
	sink := &captureNotifier{}
	d := NewDebouncer(sink)
	clk := installClock(t, time.Unix(0, 0))

	// t=0: window never opened, flush immediately
	d.Notify(Event{Channel: "altitude", Value: 100, IsMin: false})

	// t=10s: inside window, queued with one scheduled flush at window end
	clk.now = clk.now.Add(10 * time.Second)
	d.Notify(Event{Channel: "speed", Value: 5, IsMin: false})

	if len(clk.scheduled) != 1 {
		t.Fatalf("expected one scheduled flush, got %d", len(clk.scheduled))
	}
	if clk.scheduled[0] != 3590*time.Second {
		t.Fatalf("expected flush in remaining window 3590s, got %v", clk.scheduled[0])
	}

	// another event inside the window rides along, no second timer
	clk.now = clk.now.Add(5 * time.Second)
	d.Notify(Event{Channel: "latitude", Value: 48.1, IsMin: false})
	if len(clk.scheduled) != 1 {
		t.Fatalf("scheduling must be idempotent, got %d timers", len(clk.scheduled))
	}

	// scheduled flush fires at t=3600
	clk.now = time.Unix(3600, 0)
	clk.callbacks[0]()

	// t=3700: previous window closed by the scheduled flush, immediate again
	clk.now = time.Unix(3700, 0)
	d.Notify(Event{Channel: "longitude", Value: 7.7, IsMin: true})

	sends := sink.all()
	if len(sends) != 3 {
		t.Fatalf("expected 3 sends, got %d: %v", len(sends), sends)
	}
	if !strings.Contains(sends[0], "highest altitude 100.00") || strings.Contains(sends[0], ",") {
		t.Fatalf("first send should carry only the t=0 event: %s", sends[0])
	}
	if !strings.HasPrefix(sends[1], "New Extremes Found|") {
		t.Fatalf("batched send should use plural title: %s", sends[1])
	}
	if !strings.Contains(sends[1], "highest speed 5.00, highest latitude 48.10") {
		t.Fatalf("batch must keep enqueue order: %s", sends[1])
	}
	if !strings.Contains(sends[2], "lowest longitude 7.70") || strings.Contains(sends[2], ",") {
		t.Fatalf("third send should carry only the t=3700 event: %s", sends[2])
	}
}

func TestEventAfterScheduledFlushFlushesImmediately(t *testing.T) {
	sink := &captureNotifier{}
	d := NewDebouncer(sink)
	clk := installClock(t, time.Unix(0, 0))

	d.Notify(Event{Channel: "altitude", Value: 100})
	clk.now = clk.now.Add(10 * time.Second)
	d.Notify(Event{Channel: "speed", Value: 5})

	// the scheduled flush ends the window, it does not start a new one
	clk.now = time.Unix(3600, 0)
	clk.callbacks[0]()

	clk.now = time.Unix(3700, 0)
	d.Notify(Event{Channel: "longitude", Value: 7.7, IsMin: true})

	sends := sink.all()
	if len(sends) != 3 {
		t.Fatalf("event after scheduled flush must send immediately, got %d sends: %v", len(sends), sends)
	}
	if !strings.Contains(sends[2], "lowest longitude 7.70") {
		t.Fatalf("unexpected third send: %s", sends[2])
	}
	if len(clk.scheduled) != 1 {
		t.Fatalf("no new timer may be armed for it, got %d", len(clk.scheduled))
	}
}

func TestScheduledFlushWithEmptyPendingIsNoop(t *testing.T) {
	sink := &captureNotifier{}
	d := NewDebouncer(sink)
	clk := installClock(t, time.Unix(0, 0))

	d.Notify(Event{Channel: "altitude", Value: 1})
	clk.now = clk.now.Add(time.Second)
	d.Notify(Event{Channel: "speed", Value: 2})

	// flush the batch early through a fresh window, then fire the stale timer
	clk.now = clk.now.Add(2 * debounceWindow)
	d.Notify(Event{Channel: "latitude", Value: 3})

	before := len(sink.all())
	clk.callbacks[0]()
	if len(sink.all()) != before {
		t.Fatalf("empty scheduled flush must not send")
	}

	// window state stays usable afterwards
	clk.now = clk.now.Add(2 * debounceWindow)
	d.Notify(Event{Channel: "speed", Value: 9})
	if len(sink.all()) != before+1 {
		t.Fatalf("expected follow-up send after no-op flush")
	}
}

func TestImmediateFlushCancelsScheduled(t *testing.T) {
	sink := &captureNotifier{}
	d := NewDebouncer(sink)
	clk := installClock(t, time.Unix(0, 0))

	d.Notify(Event{Channel: "altitude", Value: 1})
	clk.now = clk.now.Add(time.Second)
	d.Notify(Event{Channel: "speed", Value: 2})

	// window elapses before the timer fires; the next event flushes the
	// pending batch together with itself
	clk.now = clk.now.Add(debounceWindow)
	d.Notify(Event{Channel: "latitude", Value: 3})

	sends := sink.all()
	if len(sends) != 2 {
		t.Fatalf("expected 2 sends, got %d", len(sends))
	}
	if !strings.Contains(sends[1], "highest speed 2.00, highest latitude 3.00") {
		t.Fatalf("expected combined batch: %s", sends[1])
	}
	if d.timer != nil {
		t.Fatalf("immediate flush must clear the scheduled handle")
	}
}

func TestEventDescription(t *testing.T) {
	ev := Event{Channel: "speed", Value: 12.345, IsMin: true}
	if ev.Description() != "lowest speed 12.35" {
		t.Fatalf("unexpected description: %s", ev.Description())
	}
}

func TestCloseStopsTimer(t *testing.T) {
	sink := &captureNotifier{}
	d := NewDebouncer(sink)
	clk := installClock(t, time.Unix(0, 0))

	d.Notify(Event{Channel: "altitude", Value: 1})
	clk.now = clk.now.Add(time.Second)
	d.Notify(Event{Channel: "speed", Value: 2})

	d.Close()
	if d.timer != nil {
		t.Fatalf("expected timer cleared on close")
	}
}
