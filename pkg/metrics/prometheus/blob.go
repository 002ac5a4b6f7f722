package prometheus

import (
	"time"

	"github.com/ceetaro/suitkaise/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterBlobMetricsConstructor(func() metrics.BlobMetrics {
		return newBlobMetrics()
	})
}

// blobMetrics is the Prometheus implementation of metrics.BlobMetrics.
type blobMetrics struct {
	offloadOperations prometheus.Counter
	offloadDuration   prometheus.Histogram
	offloadBytes      prometheus.Histogram
	fetchOperations   prometheus.Counter
	fetchDuration     prometheus.Histogram
	fetchBytes        prometheus.Histogram
	blobCount         prometheus.Gauge
}

func newBlobMetrics() *blobMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &blobMetrics{
		offloadOperations: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "suitkaise_blob_offload_operations_total",
				Help: "Total number of byte-string leaves offloaded to the blob store",
			},
		),
		offloadDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "suitkaise_blob_offload_duration_milliseconds",
				Help:    "Duration of blob store writes",
				Buckets: []float64{0.5, 1, 5, 10, 50, 100, 500, 1000},
			},
		),
		offloadBytes: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "suitkaise_blob_offload_bytes",
				Help:    "Distribution of offloaded leaf sizes",
				Buckets: []float64{65536, 131072, 524288, 1048576, 10485760, 104857600},
			},
		),
		fetchOperations: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "suitkaise_blob_fetch_operations_total",
				Help: "Total number of blob store reads during deserialize",
			},
		),
		fetchDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "suitkaise_blob_fetch_duration_milliseconds",
				Help:    "Duration of blob store reads",
				Buckets: []float64{0.5, 1, 5, 10, 50, 100, 500, 1000},
			},
		),
		fetchBytes: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "suitkaise_blob_fetch_bytes",
				Help:    "Distribution of fetched leaf sizes",
				Buckets: []float64{65536, 131072, 524288, 1048576, 10485760, 104857600},
			},
		),
		blobCount: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "suitkaise_blob_store_count",
				Help: "Current number of distinct blobs held in the offload store",
			},
		),
	}
}

func (m *blobMetrics) ObserveOffload(bytes int64, duration time.Duration) {
	if m == nil {
		return
	}

	m.offloadOperations.Inc()
	m.offloadDuration.Observe(duration.Seconds() * 1000)
	if bytes > 0 {
		m.offloadBytes.Observe(float64(bytes))
	}
}

func (m *blobMetrics) ObserveFetch(bytes int64, duration time.Duration) {
	if m == nil {
		return
	}

	m.fetchOperations.Inc()
	m.fetchDuration.Observe(duration.Seconds() * 1000)
	if bytes > 0 {
		m.fetchBytes.Observe(float64(bytes))
	}
}

func (m *blobMetrics) RecordBlobCount(count int) {
	if m == nil {
		return
	}

	m.blobCount.Set(float64(count))
}
