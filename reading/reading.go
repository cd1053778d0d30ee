// Package reading defines the telemetry reading pushed by the meter
// service and the wire format it arrives in.
package reading

import (
	"encoding/json"
	"math"

	errgo "gopkg.in/errgo.v1"
)

// ErrMalformed is the cause of all errors returned by Parse.
var ErrMalformed = errgo.New("malformed reading")

// Reading holds a single reading from the push channel.
// A Reading is not changed after it has been parsed.
type Reading struct {
	// Time holds the display label for the reading time. It's
	// formatted by the producer and shown as is.
	Time string
	// Power holds the instantaneous active power in W.
	// Negative values may indicate feed-in.
	Power float64
	// Consumption holds the energy consumed over the last
	// interval in Wh, if known.
	Consumption *float64
	// TotalEnergy holds the cumulative meter reading, if known.
	TotalEnergy *float64
	// IsFeedIn holds the direction as reported by the producer, if
	// known. When present it overrides the sign of Power.
	IsFeedIn *bool
}

// wireReading holds the JSON form of a reading.
type wireReading struct {
	Time        *string  `json:"time"`
	Value       *float64 `json:"value"`
	Value2      *float64 `json:"value2,omitempty"`
	TotalEnergy *float64 `json:"total_energy,omitempty"`
	IsFeedIn    *bool    `json:"is_feed_in,omitempty"`
}

// Parse parses a reading from its JSON form. The "time" and "value"
// fields are required; all errors have ErrMalformed as their cause.
func Parse(data []byte) (*Reading, error) {
	var w wireReading
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errgo.WithCausef(err, ErrMalformed, "cannot unmarshal reading")
	}
	if w.Time == nil {
		return nil, errgo.WithCausef(nil, ErrMalformed, "reading has no time")
	}
	if w.Value == nil {
		return nil, errgo.WithCausef(nil, ErrMalformed, "reading has no value")
	}
	return &Reading{
		Time:        *w.Time,
		Power:       *w.Value,
		Consumption: finite(w.Value2),
		TotalEnergy: finite(w.TotalEnergy),
		IsFeedIn:    w.IsFeedIn,
	}, nil
}

// MarshalJSON implements json.Marshaler by producing
// the wire form understood by Parse.
func (r *Reading) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireReading{
		Time:        &r.Time,
		Value:       &r.Power,
		Value2:      r.Consumption,
		TotalEnergy: r.TotalEnergy,
		IsFeedIn:    r.IsFeedIn,
	})
}

// UnmarshalJSON implements json.Unmarshaler by calling Parse.
func (r *Reading) UnmarshalJSON(data []byte) error {
	r1, err := Parse(data)
	if err != nil {
		return errgo.Mask(err, errgo.Is(ErrMalformed))
	}
	*r = *r1
	return nil
}

// FeedIn reports whether the reading represents power flowing
// to the grid. The explicit IsFeedIn flag is authoritative;
// otherwise a negative power means feed-in. Zero power counts
// as consumption.
func (r *Reading) FeedIn() bool {
	if r.IsFeedIn != nil {
		return *r.IsFeedIn
	}
	return r.Power < 0
}

func finite(f *float64) *float64 {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return nil
	}
	return f
}
