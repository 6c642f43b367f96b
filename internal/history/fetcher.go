package history

import (
	"context"
	"sort"
	"time"

	"backend-peaktrack/internal/store"
)

// pageSize caps every query page; the recent view is bounded to exactly one
// such page.
const pageSize = 400

// Pager is the paginated-query slice of the record store.
type Pager interface {
	QueryLocations(ctx context.Context, cutoff *time.Time, cursor string, limit int) ([]store.LocationRecord, string, error)
}

// Fetcher reconstructs a view of persisted records from the remote store.
type Fetcher struct {
	pager    Pager
	pageSize int
}

func NewFetcher(pager Pager) *Fetcher {
	return &Fetcher{pager: pager, pageSize: pageSize}
}

// FetchSince resolves a time-windowed query, newest first.
//
// Without a cutoff it issues a single bounded query and stops there even if
// more records exist. With a cutoff it sweeps cursor pages until exhaustion,
// then sorts the accumulated set client-side: per-page ordering is not
// assumed to compose across cursor boundaries. Any page failure aborts the
// sweep whole; callers never see a silently truncated result.
func (f *Fetcher) FetchSince(ctx context.Context, cutoff *time.Time) ([]store.LocationRecord, error) {
	if cutoff == nil {
		records, _, err := f.pager.QueryLocations(ctx, nil, "", f.pageSize)
		if err != nil {
			return nil, err
		}
		return records, nil
	}

	var all []store.LocationRecord
	cursor := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, next, err := f.pager.QueryLocations(ctx, cutoff, cursor, f.pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if next == "" {
			break
		}
		cursor = next
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].RecordedAt.After(all[j].RecordedAt)
	})
	return all, nil
}
