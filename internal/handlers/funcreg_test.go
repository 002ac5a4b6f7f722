package handlers

import (
	"reflect"
	"testing"
)

func addOne(x int) int { return x + 1 }

func TestFuncHandler_ExtractAndReconnect(t *testing.T) {
	reg := NewFuncRegistry()
	v := reflect.ValueOf(addOne)
	reg.Register(runtimeName(v), addOne)
	h := NewFuncHandler(reg)
	if !h.CanHandle(v) {
		t.Fatal("expected CanHandle true for a func value")
	}

	state, err := h.Extract(v)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	typeKey := h.TypeKey(v)
	if state.Reconnect == "" {
		t.Error("expected State.Reconnect to carry the runtime function name")
	}

	shell, err := h.ReconstructShell(typeKey)
	if err != nil {
		t.Fatalf("ReconstructShell: %v", err)
	}
	if err := h.PopulateShell(shell, state); err != nil {
		t.Fatalf("PopulateShell: %v", err)
	}

	reconnector, ok := shell.(*funcReconnector)
	if !ok {
		t.Fatalf("shell is %T, want *funcReconnector", shell)
	}
	resolved, err := reconnector.Reconnect(nil)
	if err != nil {
		t.Fatalf("Reconnect: %v", err)
	}
	fn, ok := resolved.(func(int) int)
	if !ok {
		t.Fatalf("Reconnect returned %T, want func(int) int", resolved)
	}
	if fn(41) != 42 {
		t.Errorf("reconnected func(41) = %d, want 42", fn(41))
	}
}

func TestFuncHandler_Reconnect_Unregistered(t *testing.T) {
	reg := NewFuncRegistry()
	h := NewFuncHandler(reg)

	v := reflect.ValueOf(addOne)
	state, _ := h.Extract(v)
	shell, _ := h.ReconstructShell(h.TypeKey(v))
	h.PopulateShell(shell, state)

	if _, err := shell.(*funcReconnector).Reconnect(nil); err == nil {
		t.Fatal("expected an error reconnecting a function nobody registered")
	}
}

func TestFuncRegistry_RegisterPanicsOnNonFunc(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected Register to panic on a non-func value")
		}
	}()
	NewFuncRegistry().Register("bad", 42)
}
