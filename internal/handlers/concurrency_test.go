package handlers

import (
	"reflect"
	"sync"
	"testing"
)

func TestMutexHandler_Extract(t *testing.T) {
	h := MutexHandler{}
	var m sync.Mutex

	state, err := h.Extract(reflect.ValueOf(&m))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if state.Fields["locked"] != false {
		t.Errorf("locked = %v, want false for a fresh mutex", state.Fields["locked"])
	}

	m.Lock()
	state, err = h.Extract(reflect.ValueOf(&m))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if state.Fields["locked"] != true {
		t.Error("locked = false, want true for a held mutex")
	}
	m.Unlock()
}

func TestMutexHandler_ReconstructShell(t *testing.T) {
	h := MutexHandler{}
	shell, err := h.ReconstructShell(h.TypeKey(reflect.ValueOf(sync.Mutex{})))
	if err != nil {
		t.Fatalf("ReconstructShell: %v", err)
	}

	state, _ := h.Extract(reflect.ValueOf(&sync.Mutex{}))
	state.Fields["locked"] = true
	if err := h.PopulateShell(shell, state); err != nil {
		t.Fatalf("PopulateShell: %v", err)
	}

	r, ok := shell.(*mutexReconnector)
	if !ok {
		t.Fatalf("shell = %T, want *mutexReconnector", shell)
	}
	if r.ReconnectTypeKey() != "sync.Mutex" {
		t.Errorf("ReconnectTypeKey() = %q, want %q", r.ReconnectTypeKey(), "sync.Mutex")
	}

	reconnected, err := r.Reconnect(nil)
	if err != nil {
		t.Fatalf("Reconnect: %v", err)
	}
	m := reconnected.(*sync.Mutex)
	if m.TryLock() {
		t.Error("expected the reconnected mutex to already be locked")
	}
}

func TestRWMutexHandler_ReconstructShell(t *testing.T) {
	h := RWMutexHandler{}
	shell, err := h.ReconstructShell(h.TypeKey(reflect.ValueOf(sync.RWMutex{})))
	if err != nil {
		t.Fatalf("ReconstructShell: %v", err)
	}

	state, _ := h.Extract(reflect.ValueOf(&sync.RWMutex{}))
	state.Fields["write_locked"] = true
	if err := h.PopulateShell(shell, state); err != nil {
		t.Fatalf("PopulateShell: %v", err)
	}

	r, ok := shell.(*rwMutexReconnector)
	if !ok {
		t.Fatalf("shell = %T, want *rwMutexReconnector", shell)
	}

	reconnected, err := r.Reconnect(nil)
	if err != nil {
		t.Fatalf("Reconnect: %v", err)
	}
	m := reconnected.(*sync.RWMutex)
	if m.TryLock() {
		t.Error("expected the reconnected rwmutex to already be write-locked")
	}
}

func TestWaitGroupHandler_AlwaysZero(t *testing.T) {
	h := WaitGroupHandler{}
	var wg sync.WaitGroup
	wg.Add(3)

	state, err := h.Extract(reflect.ValueOf(&wg))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(state.FieldOrder) != 0 {
		t.Errorf("expected an empty record, got %v", state.FieldOrder)
	}

	shell, _ := h.ReconstructShell(h.TypeKey(reflect.ValueOf(sync.WaitGroup{})))
	if err := h.PopulateShell(shell, state); err != nil {
		t.Fatalf("PopulateShell: %v", err)
	}
	rebuilt := shell.(*sync.WaitGroup)
	rebuilt.Wait() // must not block: reconstructed count is always zero
}

func TestChanHandler_ExtractAndReconstruct(t *testing.T) {
	h := ChanHandler{}
	ch := make(chan struct{}, 4)
	ch <- struct{}{}
	ch <- struct{}{}

	state, err := h.Extract(reflect.ValueOf(ch))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if state.Fields["capacity"] != int64(4) || state.Fields["depth"] != int64(2) {
		t.Errorf("state = %+v, want capacity 4 depth 2", state.Fields)
	}

	shell, err := h.ReconstructShell(h.TypeKey(reflect.ValueOf(ch)))
	if err != nil {
		t.Fatalf("ReconstructShell: %v", err)
	}
	if err := h.PopulateShell(shell, state); err != nil {
		t.Fatalf("PopulateShell: %v", err)
	}

	rebuilt := shell.(*chanShell).Finalize().(chan struct{})
	if cap(rebuilt) != 4 || len(rebuilt) != 2 {
		t.Errorf("rebuilt chan cap=%d len=%d, want cap=4 len=2", cap(rebuilt), len(rebuilt))
	}
}

func TestChanHandler_CanHandle(t *testing.T) {
	h := ChanHandler{}
	if !h.CanHandle(reflect.ValueOf(make(chan struct{}))) {
		t.Error("expected CanHandle true for chan struct{}")
	}
	if h.CanHandle(reflect.ValueOf(make(chan int))) {
		t.Error("expected CanHandle false for chan int")
	}
}
