package notify

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const debounceWindow = 3600 * time.Second

// Event is one newly discovered extreme awaiting notification.
type Event struct {
	Channel string  `json:"channel"`
	Value   float64 `json:"value"`
	IsMin   bool    `json:"is_min"`
}

func (e Event) Description() string {
	kind := "highest"
	if e.IsMin {
		kind = "lowest"
	}
	return fmt.Sprintf("%s %s %.2f", kind, e.Channel, e.Value)
}

// Debouncer batches extreme-discovery events and sends at most one combined
// alert per rolling window. Events are never dropped: each one rides in
// exactly one flush, in enqueue order.
type Debouncer struct {
	notifier Notifier
	window   time.Duration

	mu       sync.Mutex
	lastSent *time.Time
	pending  []Event
	timer    *time.Timer
}

var nowFn = time.Now

var afterFuncFn = func(d time.Duration, f func()) *time.Timer {
	return time.AfterFunc(d, f)
}

func NewDebouncer(notifier Notifier) *Debouncer {
	return &Debouncer{notifier: notifier, window: debounceWindow}
}

// Notify enqueues the event and either flushes immediately (window never
// opened, or the previous one has elapsed) or schedules one flush for the
// remainder of the current window. Scheduling is idempotent: a pending timer
// means the event simply rides along with the batch.
func (d *Debouncer) Notify(ev Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = append(d.pending, ev)

	now := nowFn()
	if d.lastSent == nil || now.Sub(*d.lastSent) >= d.window {
		d.flushLocked()
		sent := now
		d.lastSent = &sent
		return
	}
	if d.timer == nil {
		remaining := d.lastSent.Add(d.window).Sub(now)
		d.timer = afterFuncFn(remaining, d.scheduledFlush)
	}
}

// scheduledFlush fires at the end of the window and flushes whatever is
// pending. An empty batch is a no-op beyond clearing the timer handle.
// Only immediate flushes anchor a new window: the scheduled flush leaves
// lastSent alone, so the event after it sees the window as already elapsed
// and flushes immediately instead of opening a second batch.
func (d *Debouncer) scheduledFlush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.timer = nil
	d.flushLocked()
}

func (d *Debouncer) flushLocked() {
	if len(d.pending) == 0 {
		return
	}

	title := "New Extreme Found"
	if len(d.pending) > 1 {
		title = "New Extremes Found"
	}
	descs := make([]string, len(d.pending))
	for i, ev := range d.pending {
		descs[i] = ev.Description()
	}
	d.notifier.Send(title, strings.Join(descs, ", "))

	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Close cancels any scheduled flush. Pending events are abandoned; the
// debouncer only lives for the recording session.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
