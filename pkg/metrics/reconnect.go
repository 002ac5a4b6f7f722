package metrics

import "time"

// ReconnectMetrics records ReconnectAll pass outcomes.
type ReconnectMetrics interface {
	ObserveReconnect(reconnectType string, duration time.Duration, ok bool)
	RecordConcurrency(inFlight int)
	RecordPassDuration(duration time.Duration, fieldCount int)
}

// NewReconnectMetrics creates a new Prometheus-backed ReconnectMetrics
// instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewReconnectMetrics() ReconnectMetrics {
	if !IsEnabled() {
		return nil
	}

	return newPrometheusReconnectMetrics()
}

// newPrometheusReconnectMetrics is implemented in pkg/metrics/prometheus/reconnect.go.
var newPrometheusReconnectMetrics func() ReconnectMetrics

// RegisterReconnectMetricsConstructor registers the Prometheus constructor.
// Called by pkg/metrics/prometheus/reconnect.go during package initialization.
func RegisterReconnectMetricsConstructor(constructor func() ReconnectMetrics) {
	newPrometheusReconnectMetrics = constructor
}
