package clienttransport

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNoopMetrics(t *testing.T) {
	metrics := &NoopMetrics{}

	// Must not panic.
	metrics.IncCounter("counter", map[string]string{"a": "b"})
	metrics.ObserveHistogram("histogram", 1.5, nil)
	metrics.SetGauge("gauge", 2.5, nil)
}

func TestPrometheusMetrics_Counter(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewPrometheusMetricsWith(registry)

	metrics.IncCounter("test_counter", map[string]string{"registration_id": "reg-1"})
	metrics.IncCounter("test_counter", map[string]string{"registration_id": "reg-1"})

	pm := metrics.(*PrometheusMetrics)
	vec := pm.counters["test_counter"]
	assert.Equal(t, 2.0, testutil.ToFloat64(vec.With(map[string]string{"registration_id": "reg-1"})))
}

func TestPrometheusMetrics_Gauge(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewPrometheusMetricsWith(registry)

	metrics.SetGauge("test_gauge", 42, map[string]string{"name": "default"})

	pm := metrics.(*PrometheusMetrics)
	vec := pm.gauges["test_gauge"]
	assert.Equal(t, 42.0, testutil.ToFloat64(vec.With(map[string]string{"name": "default"})))
}

func TestPrometheusMetrics_Histogram(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewPrometheusMetricsWith(registry)

	metrics.ObserveHistogram("test_histogram", 0.25, map[string]string{"name": "default"})

	pm := metrics.(*PrometheusMetrics)
	assert.Contains(t, pm.histograms, "test_histogram")
}

func TestPrometheusMetrics_ConcurrentAccess(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewPrometheusMetricsWith(registry)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				metrics.IncCounter("concurrent_counter", map[string]string{"worker": "w"})
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	pm := metrics.(*PrometheusMetrics)
	vec := pm.counters["concurrent_counter"]
	assert.Equal(t, 800.0, testutil.ToFloat64(vec.With(map[string]string{"worker": "w"})))
}
