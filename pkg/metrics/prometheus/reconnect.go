package prometheus

import (
	"time"

	"github.com/ceetaro/suitkaise/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterReconnectMetricsConstructor(func() metrics.ReconnectMetrics {
		return newReconnectMetrics()
	})
}

// reconnectMetrics is the Prometheus implementation of metrics.ReconnectMetrics.
type reconnectMetrics struct {
	attempts     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	inFlight     prometheus.Gauge
	passDuration prometheus.Histogram
	passFields   prometheus.Histogram
}

func newReconnectMetrics() *reconnectMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &reconnectMetrics{
		attempts: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "suitkaise_reconnect_attempts_total",
				Help: "Total number of Reconnector invocations by type and outcome",
			},
			[]string{"reconnect_type", "outcome"}, // outcome: "ok", "error"
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "suitkaise_reconnect_duration_milliseconds",
				Help: "Duration of a single field's reconnection attempt",
				Buckets: []float64{
					1, 5, 10, 50, 100, 500, 1000, 5000, 10000, 30000,
				},
			},
			[]string{"reconnect_type"},
		),
		inFlight: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "suitkaise_reconnect_in_flight",
				Help: "Current number of concurrent reconnection attempts",
			},
		),
		passDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "suitkaise_reconnect_pass_duration_milliseconds",
				Help:    "Duration of a full ReconnectAll pass",
				Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000, 30000, 60000},
			},
		),
		passFields: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "suitkaise_reconnect_pass_fields",
				Help:    "Number of fields visited in a ReconnectAll pass",
				Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128, 256},
			},
		),
	}
}

func (m *reconnectMetrics) ObserveReconnect(reconnectType string, duration time.Duration, ok bool) {
	if m == nil {
		return
	}

	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.attempts.WithLabelValues(reconnectType, outcome).Inc()
	m.duration.WithLabelValues(reconnectType).Observe(duration.Seconds() * 1000)
}

func (m *reconnectMetrics) RecordConcurrency(inFlight int) {
	if m == nil {
		return
	}

	m.inFlight.Set(float64(inFlight))
}

func (m *reconnectMetrics) RecordPassDuration(duration time.Duration, fieldCount int) {
	if m == nil {
		return
	}

	m.passDuration.Observe(duration.Seconds() * 1000)
	m.passFields.Observe(float64(fieldCount))
}
