package db

import "context"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS location_records (
		id          TEXT PRIMARY KEY,
		recorded_at TIMESTAMPTZ NOT NULL,
		latitude    DOUBLE PRECISION NOT NULL,
		longitude   DOUBLE PRECISION NOT NULL,
		altitude    DOUBLE PRECISION NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_location_records_recorded_at
		ON location_records (recorded_at DESC, id DESC)`,
	`CREATE TABLE IF NOT EXISTS extrema_state (
		id            TEXT PRIMARY KEY,
		last_updated  TIMESTAMPTZ NOT NULL,
		min_altitude  DOUBLE PRECISION NOT NULL,
		max_altitude  DOUBLE PRECISION NOT NULL,
		min_latitude  DOUBLE PRECISION NOT NULL,
		max_latitude  DOUBLE PRECISION NOT NULL,
		min_longitude DOUBLE PRECISION NOT NULL,
		max_longitude DOUBLE PRECISION NOT NULL,
		min_speed     DOUBLE PRECISION NOT NULL,
		max_speed     DOUBLE PRECISION NOT NULL
	)`,
}

// EnsureSchema creates the record tables when they do not exist yet.
func EnsureSchema(ctx context.Context, q Querier) error {
	for _, stmt := range schemaStatements {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
