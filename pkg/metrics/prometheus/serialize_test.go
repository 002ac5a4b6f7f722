package prometheus

import (
	"testing"
	"time"

	"github.com/ceetaro/suitkaise/pkg/metrics"
)

func TestSerializeMetrics_NilSafe(t *testing.T) {
	var m *serializeMetrics

	m.ObserveSerialize("widget", time.Millisecond, 128)
	m.ObserveDeserialize("widget", time.Millisecond, 128)
	m.RecordHandlerSelection("widget", 2)
	m.RecordDepth(4)
	m.RecordError("widget", "corrupt_ir")
}

func TestNewSerializeMetrics_RegisteredWhenEnabled(t *testing.T) {
	metrics.Reset()
	metrics.InitRegistry()
	defer metrics.Reset()

	m := metrics.NewSerializeMetrics()
	if m == nil {
		t.Fatal("expected non-nil SerializeMetrics when registry is enabled")
	}

	m.ObserveSerialize("widget", 2*time.Millisecond, 256)
	m.RecordHandlerSelection("widget", 1)
}

func TestTierLabel(t *testing.T) {
	cases := map[int]string{
		0: "fast_path",
		1: "user_hook",
		2: "mapping",
		3: "special",
		4: "fallback",
		9: "unknown",
	}

	for tier, want := range cases {
		if got := tierLabel(tier); got != want {
			t.Errorf("tierLabel(%d) = %q, want %q", tier, got, want)
		}
	}
}
