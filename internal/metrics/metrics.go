// Package metrics provides Prometheus metrics for the CodeBuddy server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for the server.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	SessionsStarted   prometheus.Counter
	SessionsCompleted prometheus.Counter
	SessionsCancelled prometheus.Counter
	TurnsTotal        prometheus.Counter

	GeneratorFallbacks *prometheus.CounterVec

	WSConnections prometheus.Gauge
}

// New creates the metrics and registers them on reg. Pass a fresh registry in
// tests to avoid duplicate-registration panics.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codebuddy_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "codebuddy_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "codebuddy_sessions_started_total",
			Help: "Total number of interview sessions started",
		}),
		SessionsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "codebuddy_sessions_completed_total",
			Help: "Total number of interview sessions completed",
		}),
		SessionsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "codebuddy_sessions_cancelled_total",
			Help: "Total number of interview sessions cancelled",
		}),
		TurnsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "codebuddy_interview_turns_total",
			Help: "Total number of question/answer turns processed",
		}),
		GeneratorFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codebuddy_generator_fallbacks_total",
				Help: "Turns served from the deterministic fallback generator",
			},
			[]string{"op"},
		),
		WSConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "codebuddy_ws_connections",
			Help: "Number of open WebSocket connections",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SessionsStarted,
		m.SessionsCompleted,
		m.SessionsCancelled,
		m.TurnsTotal,
		m.GeneratorFallbacks,
		m.WSConnections,
	)
	return m
}
