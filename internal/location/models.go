package location

import "time"

// AuthStatus mirrors the authorization levels reported by the device's
// location stack.
type AuthStatus string

const (
	AuthNotDetermined AuthStatus = "not-determined"
	AuthDenied        AuthStatus = "denied"
	AuthRestricted    AuthStatus = "restricted"
	AuthWhenInUse     AuthStatus = "when-in-use"
	AuthAlways        AuthStatus = "always"
)

// Allowed reports whether recording may proceed under this status.
func (a AuthStatus) Allowed() bool {
	return a == AuthWhenInUse || a == AuthAlways
}

// Fix is one reported device position/motion sample. Immutable once built;
// construct through Normalize so an invalid negative speed never leaks in.
type Fix struct {
	Timestamp          time.Time `json:"timestamp"`
	Latitude           float64   `json:"latitude"`
	Longitude          float64   `json:"longitude"`
	Altitude           float64   `json:"altitude"`
	Speed              float64   `json:"speed"`
	HorizontalAccuracy float64   `json:"horizontal_accuracy"`
	VerticalAccuracy   float64   `json:"vertical_accuracy"`
	SpeedAccuracy      float64   `json:"speed_accuracy"`
}

// Normalize returns a copy with an invalid (negative) speed clamped to zero
// and a zero timestamp replaced by now.
func (f Fix) Normalize() Fix {
	if f.Speed < 0 {
		f.Speed = 0
	}
	if f.Timestamp.IsZero() {
		f.Timestamp = time.Now()
	}
	return f
}
