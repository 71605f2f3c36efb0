// Package metrics exposes prometheus collectors for presence and fan-out.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chatrelay"

// Metrics is nil-safe: a nil *Metrics records nothing.
type Metrics struct {
	connections prometheus.Gauge
	events      *prometheus.CounterVec
	delivered   prometheus.Counter
	dropped     prometheus.Counter
	kicked      prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		connections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Live websocket connections.",
		}),
		events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Transport events handled by the coordinator, by kind.",
		}, []string{"kind"}),
		delivered: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_delivered_total",
			Help:      "Frames queued to subscriber connections.",
		}),
		dropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_dropped_total",
			Help:      "Frames dropped because a subscriber queue was full or closed.",
		}),
		kicked: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscribers_kicked_total",
			Help:      "Connections closed by the backpressure policy.",
		}),
	}
}

// Handler serves the registry in the prometheus exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) Connected() {
	if m != nil {
		m.connections.Inc()
	}
}

func (m *Metrics) Disconnected() {
	if m != nil {
		m.connections.Dec()
	}
}

func (m *Metrics) Event(kind string) {
	if m != nil {
		m.events.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) Delivered(n int) {
	if m != nil && n > 0 {
		m.delivered.Add(float64(n))
	}
}

func (m *Metrics) Dropped(n int) {
	if m != nil && n > 0 {
		m.dropped.Add(float64(n))
	}
}

func (m *Metrics) Kicked() {
	if m != nil {
		m.kicked.Inc()
	}
}
