package metrics

import "testing"

func TestIsEnabled_DefaultDisabled(t *testing.T) {
	Reset()

	if IsEnabled() {
		t.Fatal("expected metrics disabled before InitRegistry")
	}
	if GetRegistry() != nil {
		t.Fatal("expected nil registry before InitRegistry")
	}
}

func TestInitRegistry_Enables(t *testing.T) {
	Reset()
	defer Reset()

	reg := InitRegistry()
	if reg == nil {
		t.Fatal("expected non-nil registry from InitRegistry")
	}
	if !IsEnabled() {
		t.Fatal("expected metrics enabled after InitRegistry")
	}
	if GetRegistry() != reg {
		t.Fatal("expected GetRegistry to return the installed registry")
	}
}

func TestNewSerializeMetrics_NilWhenDisabled(t *testing.T) {
	Reset()

	if m := NewSerializeMetrics(); m != nil {
		t.Fatal("expected nil SerializeMetrics when metrics disabled")
	}
}

func TestNewReconnectMetrics_NilWhenDisabled(t *testing.T) {
	Reset()

	if m := NewReconnectMetrics(); m != nil {
		t.Fatal("expected nil ReconnectMetrics when metrics disabled")
	}
}

func TestNewBlobMetrics_NilWhenDisabled(t *testing.T) {
	Reset()

	if m := NewBlobMetrics(); m != nil {
		t.Fatal("expected nil BlobMetrics when metrics disabled")
	}
}
