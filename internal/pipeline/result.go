package pipeline

import "time"

// Confidence tiers. They mark how far a run got, not a measured certainty.
const (
	ConfidenceNoCar       float32 = 0.0
	ConfidenceCarDetected float32 = 0.7
	ConfidenceIdentified  float32 = 0.8
)

// Location is a GPS fix supplied by the caller.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Result is the outcome of one detection run.
//
// LicensePlate, Make and Model are always nil when CarDetected is false.
type Result struct {
	CarDetected  bool      `json:"car_detected"`
	LicensePlate *string   `json:"license_plate,omitempty"`
	Make         *string   `json:"make,omitempty"`
	Model        *string   `json:"model,omitempty"`
	Location     *Location `json:"location,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Confidence   float32   `json:"confidence"`
}

// WithLocation returns a copy of r carrying loc.
func (r Result) WithLocation(loc *Location) Result {
	if loc != nil {
		l := *loc
		loc = &l
	}
	r.Location = loc
	return r
}

func noCarResult(ts time.Time, loc *Location) Result {
	return Result{
		CarDetected: false,
		Location:    loc,
		Timestamp:   ts,
		Confidence:  ConfidenceNoCar,
	}
}

func stringPtr(s string) *string {
	return &s
}
