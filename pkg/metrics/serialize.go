package metrics

import "time"

// SerializeMetrics records dispatcher-level Serialize/Deserialize activity.
// The Prometheus implementation tolerates a nil *serializeMetrics receiver;
// the nil interface value NewSerializeMetrics returns when metrics are
// disabled is not such a receiver, and calling a method on it panics.
type SerializeMetrics interface {
	ObserveSerialize(typeKey string, duration time.Duration, bytes int64)
	ObserveDeserialize(typeKey string, duration time.Duration, bytes int64)
	RecordHandlerSelection(typeKey string, tier int)
	RecordDepth(depth int)
	RecordError(typeKey, errKind string)
}

// NewSerializeMetrics creates a new Prometheus-backed SerializeMetrics
// instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewSerializeMetrics() SerializeMetrics {
	if !IsEnabled() {
		return nil
	}

	return newPrometheusSerializeMetrics()
}

// newPrometheusSerializeMetrics is implemented in pkg/metrics/prometheus/serialize.go.
// This indirection avoids import cycles while keeping the API clean.
var newPrometheusSerializeMetrics func() SerializeMetrics

// RegisterSerializeMetricsConstructor registers the Prometheus constructor.
// Called by pkg/metrics/prometheus/serialize.go during package initialization.
func RegisterSerializeMetricsConstructor(constructor func() SerializeMetrics) {
	newPrometheusSerializeMetrics = constructor
}
