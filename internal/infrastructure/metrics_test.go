package infrastructure

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	require.NotNil(t, m)

	m.StageDuration.WithLabelValues("validation").Observe(0.2)
	m.StageFailures.WithLabelValues("privacy_gate", "SENSITIVE_DATA_DETECTED").Inc()
	m.PipelineRuns.WithLabelValues("success").Inc()
	m.BackendRequests.WithLabelValues("analyze", "200").Inc()
	m.PrivacyRejects.Inc()
	m.ActiveOperations.Inc()
	m.ActiveOperations.Dec()

	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.StageFailures.WithLabelValues("privacy_gate", "SENSITIVE_DATA_DETECTED")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PrivacyRejects))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.ActiveOperations))
}

func TestNewMetrics_SeparateRegistries(t *testing.T) {
	a := NewMetrics(prometheus.NewRegistry())
	b := NewMetrics(prometheus.NewRegistry())

	a.PrivacyRejects.Inc()
	assert.Equal(t, float64(0), testutil.ToFloat64(b.PrivacyRejects))
}
