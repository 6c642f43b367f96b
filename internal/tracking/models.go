package tracking

import (
	"context"

	"backend-peaktrack/internal/location"
	"backend-peaktrack/internal/store"
)

// Channel names one tracked extremum dimension.
type Channel string

const (
	ChannelAltitude  Channel = "altitude"
	ChannelLatitude  Channel = "latitude"
	ChannelLongitude Channel = "longitude"
	ChannelSpeed     Channel = "speed"
)

// channels is the fixed evaluation order; batched alert bodies follow it.
var channels = []Channel{ChannelAltitude, ChannelLatitude, ChannelLongitude, ChannelSpeed}

func channelValue(fix location.Fix, ch Channel) float64 {
	switch ch {
	case ChannelAltitude:
		return fix.Altitude
	case ChannelLatitude:
		return fix.Latitude
	case ChannelLongitude:
		return fix.Longitude
	default:
		return fix.Speed
	}
}

// Status is the control-surface view of the recorder.
type Status struct {
	Recording     bool                `json:"recording"`
	Authorization location.AuthStatus `json:"authorization"`
}

// RecordStore is the slice of the record store the engine needs.
type RecordStore interface {
	SaveLocation(ctx context.Context, rec store.LocationRecord) (store.LocationRecord, error)
	GetMinMax(ctx context.Context, id string) (store.MinMaxRecord, error)
	UpsertMinMax(ctx context.Context, rec store.MinMaxRecord) error
}
