package store

import (
	"context"
	"errors"
	"time"

	"backend-peaktrack/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound reports a fixed-id fetch for a record that does not exist yet.
// Callers treat it as the "create new" branch, not as a failure.
var ErrNotFound = errors.New("record not found")

// LocationRecord is one durably persisted fix.
type LocationRecord struct {
	ID         string    `json:"id"`
	RecordedAt time.Time `json:"recorded_at"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Altitude   float64   `json:"altitude"`
}

// MinMaxRecord is the single durable extrema row, one logical row per
// installation at a fixed well-known id.
type MinMaxRecord struct {
	ID           string    `json:"id"`
	LastUpdated  time.Time `json:"last_updated"`
	MinAltitude  float64   `json:"min_altitude"`
	MaxAltitude  float64   `json:"max_altitude"`
	MinLatitude  float64   `json:"min_latitude"`
	MaxLatitude  float64   `json:"max_latitude"`
	MinLongitude float64   `json:"min_longitude"`
	MaxLongitude float64   `json:"max_longitude"`
	MinSpeed     float64   `json:"min_speed"`
	MaxSpeed     float64   `json:"max_speed"`
}

type Store struct {
	db db.Querier
}

func NewStore(db db.Querier) *Store {
	return &Store{db: db}
}

// SaveLocation persists a record under a freshly generated id.
func (s *Store) SaveLocation(ctx context.Context, rec LocationRecord) (LocationRecord, error) {
	rec.ID = uuid.NewString()
	_, err := s.db.Exec(ctx, `
		INSERT INTO location_records (id, recorded_at, latitude, longitude, altitude)
		VALUES ($1,$2,$3,$4,$5)
	`, rec.ID, rec.RecordedAt, rec.Latitude, rec.Longitude, rec.Altitude)
	if err != nil {
		return LocationRecord{}, err
	}
	return rec, nil
}

// GetMinMax fetches the extrema row by its fixed id.
func (s *Store) GetMinMax(ctx context.Context, id string) (MinMaxRecord, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, last_updated, min_altitude, max_altitude, min_latitude, max_latitude,
		       min_longitude, max_longitude, min_speed, max_speed
		FROM extrema_state WHERE id=$1
	`, id)

	var rec MinMaxRecord
	err := row.Scan(&rec.ID, &rec.LastUpdated, &rec.MinAltitude, &rec.MaxAltitude,
		&rec.MinLatitude, &rec.MaxLatitude, &rec.MinLongitude, &rec.MaxLongitude,
		&rec.MinSpeed, &rec.MaxSpeed)
	if errors.Is(err, pgx.ErrNoRows) {
		return MinMaxRecord{}, ErrNotFound
	}
	if err != nil {
		return MinMaxRecord{}, err
	}
	return rec, nil
}

// UpsertMinMax writes the whole extrema row in one statement. All eight
// numbers travel together; partial-channel writes are not a thing.
func (s *Store) UpsertMinMax(ctx context.Context, rec MinMaxRecord) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO extrema_state (id, last_updated, min_altitude, max_altitude, min_latitude,
		                           max_latitude, min_longitude, max_longitude, min_speed, max_speed)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE
		SET last_updated=EXCLUDED.last_updated,
		    min_altitude=EXCLUDED.min_altitude, max_altitude=EXCLUDED.max_altitude,
		    min_latitude=EXCLUDED.min_latitude, max_latitude=EXCLUDED.max_latitude,
		    min_longitude=EXCLUDED.min_longitude, max_longitude=EXCLUDED.max_longitude,
		    min_speed=EXCLUDED.min_speed, max_speed=EXCLUDED.max_speed
	`, rec.ID, rec.LastUpdated, rec.MinAltitude, rec.MaxAltitude, rec.MinLatitude,
		rec.MaxLatitude, rec.MinLongitude, rec.MaxLongitude, rec.MinSpeed, rec.MaxSpeed)
	return err
}

// QueryLocations returns one page of records sorted descending by recording
// time, optionally filtered to recorded_at >= cutoff, resuming after an
// opaque cursor. A non-empty next cursor means more pages may follow.
func (s *Store) QueryLocations(ctx context.Context, cutoff *time.Time, cursor string, limit int) ([]LocationRecord, string, error) {
	var (
		rows pgx.Rows
		err  error
	)

	switch {
	case cursor != "":
		pos, decodeErr := decodeCursor(cursor)
		if decodeErr != nil {
			return nil, "", decodeErr
		}
		rows, err = s.db.Query(ctx, `
			SELECT id, recorded_at, latitude, longitude, altitude
			FROM location_records
			WHERE recorded_at >= $1 AND (recorded_at, id) < ($2, $3)
			ORDER BY recorded_at DESC, id DESC
			LIMIT $4
		`, cutoffOrZero(cutoff), pos.RecordedAt, pos.ID, limit)
	case cutoff != nil:
		rows, err = s.db.Query(ctx, `
			SELECT id, recorded_at, latitude, longitude, altitude
			FROM location_records
			WHERE recorded_at >= $1
			ORDER BY recorded_at DESC, id DESC
			LIMIT $2
		`, *cutoff, limit)
	default:
		rows, err = s.db.Query(ctx, `
			SELECT id, recorded_at, latitude, longitude, altitude
			FROM location_records
			ORDER BY recorded_at DESC, id DESC
			LIMIT $1
		`, limit)
	}
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var records []LocationRecord
	for rows.Next() {
		var rec LocationRecord
		if err := rows.Scan(&rec.ID, &rec.RecordedAt, &rec.Latitude, &rec.Longitude, &rec.Altitude); err != nil {
			return nil, "", err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	next := ""
	if len(records) == limit {
		last := records[len(records)-1]
		next = encodeCursor(cursorPos{RecordedAt: last.RecordedAt, ID: last.ID})
	}
	return records, next, nil
}

func cutoffOrZero(cutoff *time.Time) time.Time {
	if cutoff == nil {
		return time.Time{}
	}
	return *cutoff
}
