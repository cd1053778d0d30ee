package view

import (
	errgo "gopkg.in/errgo.v1"
)

// Status holds the formatted status indicators.
type Status struct {
	LastUpdate string   `json:"lastUpdate"`
	Power      string   `json:"power"`
	Meter      string   `json:"meter"`
	Direction  string   `json:"direction"`
	Severity   Severity `json:"severity"`
}

// Severity holds the visual severity of the direction indicator.
type Severity int

const (
	// SeverityNone is used before any reading has arrived.
	SeverityNone Severity = iota
	// SeverityFeedIn is used when power is flowing to the grid.
	SeverityFeedIn
	// SeverityConsumption is used when power is drawn from the grid.
	SeverityConsumption
)

var severityNames = []string{
	SeverityNone:        "none",
	SeverityFeedIn:      "feed-in",
	SeverityConsumption: "consumption",
}

var severityClasses = []string{
	SeverityNone:        "alert-secondary",
	SeverityFeedIn:      "alert-warning",
	SeverityConsumption: "alert-success",
}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "unknown"
	}
	return severityNames[s]
}

// Class returns the CSS class used to show the severity.
func (s Severity) Class() string {
	if s < 0 || int(s) >= len(severityClasses) {
		return ""
	}
	return severityClasses[s]
}

func (s Severity) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(severityNames) {
		return nil, errgo.Newf("invalid severity %d", int(s))
	}
	return []byte(severityNames[s]), nil
}

func (s *Severity) UnmarshalText(data []byte) error {
	for i, name := range severityNames {
		if name == string(data) {
			*s = Severity(i)
			return nil
		}
	}
	return errgo.Newf("unknown severity %q", data)
}
