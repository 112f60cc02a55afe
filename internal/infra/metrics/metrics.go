// Package metrics exposes prometheus collectors for the credential lifecycle.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics owns a private registry so tests and the app never share global state.
type Metrics struct {
	registry      *prometheus.Registry
	registrations *prometheus.CounterVec
	logins        *prometheus.CounterVec
	hashDuration  prometheus.Histogram
}

// New builds and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "identity_registrations_total",
				Help: "Registration attempts by outcome",
			},
			[]string{"outcome"},
		),
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "identity_logins_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		hashDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "identity_password_hash_seconds",
			Help:    "Time spent hashing passwords",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
		}),
	}

	m.registry.MustRegister(
		m.registrations,
		m.logins,
		m.hashDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// RecordRegistration counts one registration attempt.
func (m *Metrics) RecordRegistration(outcome string) {
	m.registrations.WithLabelValues(outcome).Inc()
}

// RecordLogin counts one login attempt.
func (m *Metrics) RecordLogin(outcome string) {
	m.logins.WithLabelValues(outcome).Inc()
}

// ObserveHash records how long one password hash took.
func (m *Metrics) ObserveHash(d time.Duration) {
	m.hashDuration.Observe(d.Seconds())
}

// Register adds an externally owned collector, such as the database pool stats.
func (m *Metrics) Register(c prometheus.Collector) error {
	return m.registry.Register(c)
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
