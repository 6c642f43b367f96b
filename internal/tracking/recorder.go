package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"backend-peaktrack/internal/location"
	"backend-peaktrack/internal/notify"
	"backend-peaktrack/internal/store"
	"backend-peaktrack/internal/stream"
)

const (
	// recordInterval is the nominal cadence of the recording evaluation
	// while a session is active.
	recordInterval = 60 * time.Second

	persistTimeout = 10 * time.Second
)

// ErrNotAuthorized is returned by Start while the device's location
// authorization does not permit recording.
var ErrNotAuthorized = errors.New("location authorization does not permit recording")

var nowFn = time.Now

// Recorder is the engine's single coordination context. Fix delivery, timer
// ticks and start/stop controls are all serialized onto one goroutine by
// sending closures into the mailbox, which is what keeps the extrema state
// single-writer.
type Recorder struct {
	store     RecordStore
	tracker   *Tracker
	debouncer *notify.Debouncer
	hub       *stream.Hub
	interval  time.Duration

	cmds chan func()
	quit chan struct{}
	done chan struct{}

	// loop-owned state, touched only from Run's goroutine
	recording         bool
	auth              location.AuthStatus
	latestFix         *location.Fix
	lastRecordedFix   *location.Fix
	lastRecordingTime time.Time
	ticker            *time.Ticker
	tickCh            <-chan time.Time
}

func NewRecorder(st RecordStore, tracker *Tracker, debouncer *notify.Debouncer, hub *stream.Hub) *Recorder {
	return &Recorder{
		store:     st,
		tracker:   tracker,
		debouncer: debouncer,
		hub:       hub,
		interval:  recordInterval,
		auth:      location.AuthNotDetermined,
		cmds:      make(chan func(), 64),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Run consumes the mailbox until Close is called. It must be running before
// any of the exported controls are used.
func (r *Recorder) Run() {
	defer close(r.done)
	for {
		select {
		case f := <-r.cmds:
			f()
		case <-r.tickCh:
			r.evaluate()
		case <-r.quit:
			if r.ticker != nil {
				r.ticker.Stop()
			}
			return
		}
	}
}

// Close stops the loop and any active cadence timer.
func (r *Recorder) Close() {
	close(r.quit)
	<-r.done
}

// do runs f on the loop goroutine and waits for it to finish.
func (r *Recorder) do(f func()) {
	ran := make(chan struct{})
	select {
	case r.cmds <- func() { f(); close(ran) }:
		<-ran
	case <-r.quit:
	}
}

// Start begins a recording session. The current fix, if any, is evaluated
// immediately rather than waiting for the first cadence tick.
func (r *Recorder) Start(auth location.AuthStatus) error {
	var err error
	r.do(func() {
		r.auth = auth
		if !auth.Allowed() {
			err = ErrNotAuthorized
			return
		}
		if r.recording {
			return
		}
		r.recording = true
		r.ticker = time.NewTicker(r.interval)
		r.tickCh = r.ticker.C
		r.evaluate()
	})
	return err
}

// Stop ends the session. The next Start treats the next fix as first-ever.
func (r *Recorder) Stop() {
	r.do(func() {
		if !r.recording {
			return
		}
		r.recording = false
		r.ticker.Stop()
		r.ticker = nil
		r.tickCh = nil
		r.lastRecordedFix = nil
		r.lastRecordingTime = time.Time{}
	})
}

// Deliver feeds one fix from the device stream into the engine. While the
// cadence timer may have been suspended (the catch-up condition), the fix is
// evaluated immediately instead of waiting for the next tick.
func (r *Recorder) Deliver(fix location.Fix) {
	r.do(func() {
		normalized := fix.Normalize()
		r.latestFix = &normalized
		if !r.recording {
			return
		}
		if r.lastRecordingTime.IsZero() || nowFn().Sub(r.lastRecordingTime) >= r.interval {
			r.evaluate()
		}
	})
}

// Status reports the recorder's control-surface state.
func (r *Recorder) Status() Status {
	var st Status
	r.do(func() {
		st = Status{Recording: r.recording, Authorization: r.auth}
	})
	return st
}

// Extremes returns the current extrema snapshot; ok is false until the
// first sample has been observed.
func (r *Recorder) Extremes(ctx context.Context) (store.MinMaxRecord, bool, error) {
	var (
		rec store.MinMaxRecord
		ok  bool
		err error
	)
	r.do(func() {
		rec, ok, err = r.tracker.Snapshot(ctx)
	})
	return rec, ok, err
}

// evaluate runs one recording-policy pass over the latest known fix. It
// advances lastRecordingTime whether or not the fix is accepted, so cadence
// drift does not compound. Extrema are only updated after the fix record
// persisted successfully; a failed persist is logged and the fix is simply
// reconsidered on the next cadence tick.
func (r *Recorder) evaluate() {
	if r.latestFix == nil {
		return
	}
	fix := *r.latestFix
	r.lastRecordingTime = nowFn()

	if !ShouldRecord(fix, r.lastRecordedFix) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	rec, err := r.store.SaveLocation(ctx, store.LocationRecord{
		RecordedAt: fix.Timestamp,
		Latitude:   fix.Latitude,
		Longitude:  fix.Longitude,
		Altitude:   fix.Altitude,
	})
	if err != nil {
		log.Printf("record persist failed: %v", err)
		return
	}
	r.lastRecordedFix = &fix

	if r.hub != nil {
		payload, _ := json.Marshal(rec)
		r.hub.Broadcast(payload)
	}

	events, err := r.tracker.Update(ctx, fix)
	if err != nil {
		log.Printf("extrema update skipped: %v", err)
		return
	}
	for _, ev := range events {
		r.debouncer.Notify(ev)
	}
}
