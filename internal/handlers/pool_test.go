package handlers

import (
	"reflect"
	"testing"

	"github.com/ceetaro/suitkaise/internal/containers"
)

func TestPoolHandler_ExtractAndReconstruct(t *testing.T) {
	h := PoolHandler{}
	pool := containers.NewPool(8, 64)
	pool.Start()

	state, err := h.Extract(reflect.ValueOf(pool))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if state.Fields["max_workers"] != 8 || state.Fields["queue_depth"] != 64 {
		t.Errorf("state = %+v, want max_workers=8 queue_depth=64", state.Fields)
	}

	shell, err := h.ReconstructShell(h.TypeKey(reflect.ValueOf(pool)))
	if err != nil {
		t.Fatalf("ReconstructShell: %v", err)
	}
	if err := h.PopulateShell(shell, state); err != nil {
		t.Fatalf("PopulateShell: %v", err)
	}

	reconnector := shell.(*poolReconnector)
	resolved, err := reconnector.Reconnect(nil)
	if err != nil {
		t.Fatalf("Reconnect: %v", err)
	}
	rebuilt := resolved.(*containers.Pool)
	if rebuilt.MaxWorkers() != 8 || rebuilt.QueueDepth() != 64 {
		t.Errorf("rebuilt pool = %+v, want max_workers=8 queue_depth=64", rebuilt)
	}
	if rebuilt.Started() {
		t.Error("expected a reconnected pool to start fresh and idle")
	}
}

func TestPoolHandler_CanHandle(t *testing.T) {
	h := PoolHandler{}
	if !h.CanHandle(reflect.ValueOf(containers.NewPool(1, 1))) {
		t.Error("expected CanHandle true for *containers.Pool")
	}
	if h.CanHandle(reflect.ValueOf(42)) {
		t.Error("expected CanHandle false for an int")
	}
}
