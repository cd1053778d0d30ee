package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics maintained
// by a Controller. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Readings    *prometheus.CounterVec
	StreamState prometheus.Gauge
}

// NewMetrics returns a new set of metrics.
// They must be registered before they're visible.
func NewMetrics() *Metrics {
	return &Metrics{
		Readings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ehz",
			Name:      "readings_total",
			Help:      "Number of messages received from the push channel, by result.",
		}, []string{"result"}),
		StreamState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ehz",
			Name:      "stream_state",
			Help:      "State of the push channel connection (0 connecting, 1 open, 2 receiving, 3 closed by server, 4 closed by error).",
		}),
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.Readings.Describe(ch)
	m.StreamState.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.Readings.Collect(ch)
	m.StreamState.Collect(ch)
}

func (m *Metrics) accepted() {
	if m != nil {
		m.Readings.WithLabelValues("accepted").Inc()
	}
}

func (m *Metrics) rejected() {
	if m != nil {
		m.Readings.WithLabelValues("rejected").Inc()
	}
}

func (m *Metrics) setState(s State) {
	if m != nil {
		m.StreamState.Set(float64(s))
	}
}
