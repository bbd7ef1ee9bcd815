// Package metrics instruments the manor server with Prometheus collectors
// on a dedicated registry served at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Actions used as the "action" label.
const (
	ActionRoom    = "room"
	ActionDoor    = "door"
	ActionHallway = "hallway"
	ActionEscape  = "escape"
	ActionStatus  = "status"
)

// Metrics bundles the server's collectors and their registry.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	escapes  prometheus.Counter
}

// New creates and registers all collectors. players reports the number of
// player records currently held; it is sampled on every scrape.
func New(players func() int) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "manor_requests_total",
				Help: "Total number of game requests by action and response status",
			},
			[]string{"action", "status"},
		),
		escapes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "manor_escapes_total",
			Help: "Total number of successful escapes",
		}),
	}
	m.registry.MustRegister(m.requests, m.escapes)
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "manor_players_tracked",
			Help: "Number of player records held in memory",
		},
		func() float64 { return float64(players()) },
	))
	return m
}

// ObserveRequest counts one handled game request.
func (m *Metrics) ObserveRequest(action, status string) {
	m.requests.WithLabelValues(action, status).Inc()
}

// ObserveEscape counts one successful escape.
func (m *Metrics) ObserveEscape() {
	m.escapes.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
