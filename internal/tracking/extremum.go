package tracking

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"backend-peaktrack/internal/location"
	"backend-peaktrack/internal/notify"
	"backend-peaktrack/internal/store"
)

// Tracker maintains running min/max per channel. It is owned by the recorder
// loop: Update and Snapshot are only ever called from that one goroutine, so
// no locking happens here.
type Tracker struct {
	store    RecordStore
	recordID string

	hydrated    bool
	initialized bool
	lastUpdated time.Time
	minima      map[Channel]float64
	maxima      map[Channel]float64
}

func NewTracker(st RecordStore, recordID string) *Tracker {
	t := &Tracker{
		store:    st,
		recordID: recordID,
		minima:   map[Channel]float64{},
		maxima:   map[Channel]float64{},
	}
	for _, ch := range channels {
		t.minima[ch] = math.Inf(1)
		t.maxima[ch] = math.Inf(-1)
	}
	return t
}

// hydrate loads the durable extrema row once. NotFound means a fresh
// installation and leaves the sentinels in place. A transient fetch error is
// returned so the caller skips this cycle and hydration retries next time.
func (t *Tracker) hydrate(ctx context.Context) error {
	if t.hydrated {
		return nil
	}
	rec, err := t.store.GetMinMax(ctx, t.recordID)
	if errors.Is(err, store.ErrNotFound) {
		t.hydrated = true
		return nil
	}
	if err != nil {
		return err
	}
	t.minima[ChannelAltitude] = rec.MinAltitude
	t.maxima[ChannelAltitude] = rec.MaxAltitude
	t.minima[ChannelLatitude] = rec.MinLatitude
	t.maxima[ChannelLatitude] = rec.MaxLatitude
	t.minima[ChannelLongitude] = rec.MinLongitude
	t.maxima[ChannelLongitude] = rec.MaxLongitude
	t.minima[ChannelSpeed] = rec.MinSpeed
	t.maxima[ChannelSpeed] = rec.MaxSpeed
	t.lastUpdated = rec.LastUpdated
	t.hydrated = true
	t.initialized = true
	return nil
}

// Update compares the fix against every channel's min and max independently
// and returns the set of newly broken extremes. When at least one channel
// moved, the whole state is persisted as one upsert; otherwise no write
// happens. A failed upsert keeps the in-memory state and is retried
// implicitly by the next state-changing update.
func (t *Tracker) Update(ctx context.Context, fix location.Fix) ([]notify.Event, error) {
	if err := t.hydrate(ctx); err != nil {
		return nil, err
	}

	var events []notify.Event
	for _, ch := range channels {
		v := channelValue(fix, ch)
		if v < t.minima[ch] {
			t.minima[ch] = v
			events = append(events, notify.Event{Channel: string(ch), Value: v, IsMin: true})
		}
		if v > t.maxima[ch] {
			t.maxima[ch] = v
			events = append(events, notify.Event{Channel: string(ch), Value: v, IsMin: false})
		}
	}
	if len(events) == 0 {
		return nil, nil
	}

	t.initialized = true
	t.lastUpdated = nowFn()
	if err := t.store.UpsertMinMax(ctx, t.record()); err != nil {
		log.Printf("extrema upsert failed: %v", err)
	}
	return events, nil
}

// Snapshot returns the durable-shaped view of the current extremes. The
// boolean is false until the first sample: sentinel values are never
// surfaced as real measurements.
func (t *Tracker) Snapshot(ctx context.Context) (store.MinMaxRecord, bool, error) {
	if err := t.hydrate(ctx); err != nil {
		return store.MinMaxRecord{}, false, err
	}
	if !t.initialized {
		return store.MinMaxRecord{}, false, nil
	}
	return t.record(), true, nil
}

func (t *Tracker) record() store.MinMaxRecord {
	return store.MinMaxRecord{
		ID:           t.recordID,
		LastUpdated:  t.lastUpdated,
		MinAltitude:  t.minima[ChannelAltitude],
		MaxAltitude:  t.maxima[ChannelAltitude],
		MinLatitude:  t.minima[ChannelLatitude],
		MaxLatitude:  t.maxima[ChannelLatitude],
		MinLongitude: t.minima[ChannelLongitude],
		MaxLongitude: t.maxima[ChannelLongitude],
		MinSpeed:     t.minima[ChannelSpeed],
		MaxSpeed:     t.maxima[ChannelSpeed],
	}
}
