package handlers

import (
	"context"
	"reflect"
	"testing"
)

type requestIDKey struct{}

func TestContextHandler_ExtractRegisteredKeysOnly(t *testing.T) {
	reg := NewCtxKeyRegistry()
	reg.Register("request_id", requestIDKey{})
	h := NewContextHandler(reg)

	type unregisteredKey struct{}
	ctx := context.WithValue(context.Background(), requestIDKey{}, "req-123")
	ctx = context.WithValue(ctx, unregisteredKey{}, "should not appear")

	state, err := h.Extract(reflect.ValueOf(ctx))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if state.Fields["request_id"] != "req-123" {
		t.Errorf("request_id = %v, want req-123", state.Fields["request_id"])
	}
	if len(state.FieldOrder) != 1 {
		t.Errorf("expected only the registered key to be captured, got %v", state.FieldOrder)
	}
}

func TestContextHandler_ReconstructShell(t *testing.T) {
	reg := NewCtxKeyRegistry()
	reg.Register("request_id", requestIDKey{})
	h := NewContextHandler(reg)

	ctx := context.WithValue(context.Background(), requestIDKey{}, "req-456")
	state, err := h.Extract(reflect.ValueOf(ctx))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	shell, err := h.ReconstructShell(h.TypeKey(reflect.ValueOf(ctx)))
	if err != nil {
		t.Fatalf("ReconstructShell: %v", err)
	}
	if err := h.PopulateShell(shell, state); err != nil {
		t.Fatalf("PopulateShell: %v", err)
	}

	rebuilt := shell.(*contextShell).Finalize().(context.Context)
	if rebuilt.Value(requestIDKey{}) != "req-456" {
		t.Errorf("rebuilt context value = %v, want req-456", rebuilt.Value(requestIDKey{}))
	}
	if rebuilt.Err() != nil {
		t.Error("expected a fresh, uncancelable reconstructed context")
	}
}

func TestContextHandler_CanHandle(t *testing.T) {
	h := NewContextHandler(NewCtxKeyRegistry())
	if !h.CanHandle(reflect.ValueOf(context.Background())) {
		t.Error("expected CanHandle true for a context.Context")
	}
	if h.CanHandle(reflect.ValueOf(42)) {
		t.Error("expected CanHandle false for a non-context value")
	}
}
