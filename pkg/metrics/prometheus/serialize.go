package prometheus

import (
	"time"

	"github.com/ceetaro/suitkaise/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterSerializeMetricsConstructor(func() metrics.SerializeMetrics {
		return newSerializeMetrics()
	})
}

// serializeMetrics is the Prometheus implementation of metrics.SerializeMetrics.
type serializeMetrics struct {
	serializeOperations   *prometheus.CounterVec
	serializeDuration     *prometheus.HistogramVec
	serializeBytes        *prometheus.HistogramVec
	deserializeOperations *prometheus.CounterVec
	deserializeDuration   *prometheus.HistogramVec
	deserializeBytes      *prometheus.HistogramVec
	handlerSelections     *prometheus.CounterVec
	treeDepth             prometheus.Histogram
	errors                *prometheus.CounterVec
}

func newSerializeMetrics() *serializeMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &serializeMetrics{
		serializeOperations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "suitkaise_serialize_operations_total",
				Help: "Total number of Serialize calls by root type",
			},
			[]string{"type_key"},
		),
		serializeDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "suitkaise_serialize_duration_milliseconds",
				Help: "Duration of Serialize calls in milliseconds",
				Buckets: []float64{
					0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000, 5000,
				},
			},
			[]string{"type_key"},
		),
		serializeBytes: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "suitkaise_serialize_output_bytes",
				Help: "Distribution of encoded IR payload sizes",
				Buckets: []float64{
					1024, 8192, 65536, 524288, 1048576, 10485760, 104857600,
				},
			},
			[]string{"type_key"},
		),
		deserializeOperations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "suitkaise_deserialize_operations_total",
				Help: "Total number of Deserialize calls by root type",
			},
			[]string{"type_key"},
		),
		deserializeDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "suitkaise_deserialize_duration_milliseconds",
				Help: "Duration of Deserialize calls in milliseconds",
				Buckets: []float64{
					0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000, 5000,
				},
			},
			[]string{"type_key"},
		),
		deserializeBytes: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "suitkaise_deserialize_input_bytes",
				Help: "Distribution of decoded IR payload sizes",
				Buckets: []float64{
					1024, 8192, 65536, 524288, 1048576, 10485760, 104857600,
				},
			},
			[]string{"type_key"},
		),
		handlerSelections: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "suitkaise_handler_selections_total",
				Help: "Total number of handler lookups by type and priority tier",
			},
			[]string{"type_key", "tier"},
		),
		treeDepth: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "suitkaise_serialize_tree_depth",
				Help:    "Maximum object-graph depth observed during a walk",
				Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128},
			},
		),
		errors: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "suitkaise_serialize_errors_total",
				Help: "Total number of serialize/deserialize errors by type and error kind",
			},
			[]string{"type_key", "err_kind"},
		),
	}
}

func (m *serializeMetrics) ObserveSerialize(typeKey string, duration time.Duration, bytes int64) {
	if m == nil {
		return
	}

	m.serializeOperations.WithLabelValues(typeKey).Inc()
	m.serializeDuration.WithLabelValues(typeKey).Observe(duration.Seconds() * 1000)
	if bytes > 0 {
		m.serializeBytes.WithLabelValues(typeKey).Observe(float64(bytes))
	}
}

func (m *serializeMetrics) ObserveDeserialize(typeKey string, duration time.Duration, bytes int64) {
	if m == nil {
		return
	}

	m.deserializeOperations.WithLabelValues(typeKey).Inc()
	m.deserializeDuration.WithLabelValues(typeKey).Observe(duration.Seconds() * 1000)
	if bytes > 0 {
		m.deserializeBytes.WithLabelValues(typeKey).Observe(float64(bytes))
	}
}

func (m *serializeMetrics) RecordHandlerSelection(typeKey string, tier int) {
	if m == nil {
		return
	}

	m.handlerSelections.WithLabelValues(typeKey, tierLabel(tier)).Inc()
}

func (m *serializeMetrics) RecordDepth(depth int) {
	if m == nil {
		return
	}

	m.treeDepth.Observe(float64(depth))
}

func (m *serializeMetrics) RecordError(typeKey, errKind string) {
	if m == nil {
		return
	}

	m.errors.WithLabelValues(typeKey, errKind).Inc()
}

func tierLabel(tier int) string {
	switch tier {
	case 0:
		return "fast_path"
	case 1:
		return "user_hook"
	case 2:
		return "mapping"
	case 3:
		return "special"
	case 4:
		return "fallback"
	default:
		return "unknown"
	}
}
