package tracking

import (
	"backend-peaktrack/internal/location"
	"backend-peaktrack/internal/shared/geo"
)

// minRecordDistanceM is the distance a fix must travel from the last
// recorded fix before it is considered durable enough to persist.
const minRecordDistanceM = 5.0

// ShouldRecord decides whether a fix gets persisted. The first-ever fix is
// always recorded; afterwards a fix must be at least 5 m of great-circle
// distance away from the last recorded (not last seen) fix.
func ShouldRecord(fix location.Fix, lastRecorded *location.Fix) bool {
	if lastRecorded == nil {
		return true
	}
	d := geo.DistanceM(lastRecorded.Latitude, lastRecorded.Longitude, fix.Latitude, fix.Longitude)
	return d >= minRecordDistanceM
}
