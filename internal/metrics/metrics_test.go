package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveVerify_CountsPerOutcome(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveVerify(OutcomeOK)
	m.ObserveVerify(OutcomeOK)
	m.ObserveVerify("TOKEN_MISMATCH")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.VerifyOutcomes.WithLabelValues(OutcomeOK)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.VerifyOutcomes.WithLabelValues("TOKEN_MISMATCH")))
}

func TestObserveHTTP_RecordsCounterAndHistogram(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveHTTP("verify", "POST", "200", 0.01)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("verify", "POST", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPRequestDuration))
}

func TestNilMetrics_IsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveVerify(OutcomeOK)
		m.ObserveStatus("verified")
		m.ObserveHTTP("status", "GET", "200", 0.1)
	})
}
