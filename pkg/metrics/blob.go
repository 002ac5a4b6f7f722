package metrics

import "time"

// BlobMetrics records activity against the content-addressed blob offload
// store (badger-backed) that large byte-string IR leaves spill into.
type BlobMetrics interface {
	ObserveOffload(bytes int64, duration time.Duration)
	ObserveFetch(bytes int64, duration time.Duration)
	RecordBlobCount(count int)
}

// NewBlobMetrics creates a new Prometheus-backed BlobMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewBlobMetrics() BlobMetrics {
	if !IsEnabled() {
		return nil
	}

	return newPrometheusBlobMetrics()
}

// newPrometheusBlobMetrics is implemented in pkg/metrics/prometheus/blob.go.
var newPrometheusBlobMetrics func() BlobMetrics

// RegisterBlobMetricsConstructor registers the Prometheus constructor.
// Called by pkg/metrics/prometheus/blob.go during package initialization.
func RegisterBlobMetricsConstructor(constructor func() BlobMetrics) {
	newPrometheusBlobMetrics = constructor
}
