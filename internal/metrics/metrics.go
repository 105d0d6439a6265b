package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OutcomeOK labels successful verifications in the outcome counter.
const OutcomeOK = "OK"

// Metrics holds the Prometheus collectors for verification and status traffic.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	VerifyOutcomes      *prometheus.CounterVec
	StatusQueries       *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		VerifyOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "verify_outcomes_total",
				Help: "Total number of verification attempts by outcome kind",
			},
			[]string{"outcome"},
		),
		StatusQueries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "status_queries_total",
				Help: "Total number of status queries by result",
			},
			[]string{"result"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"handler", "method", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"handler", "method"},
		),
	}
	reg.MustRegister(m.VerifyOutcomes, m.StatusQueries, m.HTTPRequestsTotal, m.HTTPRequestDuration)
	return m
}

// ObserveVerify counts one verification attempt ending in outcome.
func (m *Metrics) ObserveVerify(outcome string) {
	if m == nil {
		return
	}
	m.VerifyOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveStatus counts one status query. result is "verified", "unverified" or an error kind.
func (m *Metrics) ObserveStatus(result string) {
	if m == nil {
		return
	}
	m.StatusQueries.WithLabelValues(result).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(handler, method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(handler, method).Observe(seconds)
	m.HTTPRequestsTotal.WithLabelValues(handler, method, status).Inc()
}
