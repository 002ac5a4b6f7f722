package handlers

import (
	"reflect"
	"testing"
)

func countUpTo3(yield func(int) bool) {
	for i := 0; i < 3; i++ {
		if !yield(i) {
			return
		}
	}
}

func pairsUpTo2(yield func(int, string) bool) {
	labels := []string{"a", "b"}
	for i, s := range labels {
		if !yield(i, s) {
			return
		}
	}
}

func TestIsIterSeqShape(t *testing.T) {
	if !isIterSeqShape(reflect.TypeOf(countUpTo3)) {
		t.Error("expected countUpTo3 to match the iter.Seq shape")
	}
	if !isIterSeqShape(reflect.TypeOf(pairsUpTo2)) {
		t.Error("expected pairsUpTo2 to match the iter.Seq2 shape")
	}
	if isIterSeqShape(reflect.TypeOf(addOne)) {
		t.Error("expected addOne not to match the iterator shape")
	}
}

func TestIteratorHandler_CanHandle(t *testing.T) {
	h := NewIteratorHandler(NewFuncRegistry())
	if !h.CanHandle(reflect.ValueOf(countUpTo3)) {
		t.Error("expected CanHandle true for an iter.Seq-shaped func")
	}
	if h.CanHandle(reflect.ValueOf(addOne)) {
		t.Error("expected CanHandle false for a plain func")
	}
}

func TestIteratorHandler_ExtractRequiresRegistration(t *testing.T) {
	reg := NewFuncRegistry()
	h := NewIteratorHandler(reg)
	v := reflect.ValueOf(countUpTo3)

	if _, err := h.Extract(v); err == nil {
		t.Fatal("expected an error extracting an unregistered iterator")
	}

	reg.Register(runtimeName(v), countUpTo3)
	state, err := h.Extract(v)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	shell, err := h.ReconstructShell(h.TypeKey(v))
	if err != nil {
		t.Fatalf("ReconstructShell: %v", err)
	}
	if err := h.PopulateShell(shell, state); err != nil {
		t.Fatalf("PopulateShell: %v", err)
	}

	reconnector := shell.(*iteratorReconnector)
	resolved, err := reconnector.Reconnect(nil)
	if err != nil {
		t.Fatalf("Reconnect: %v", err)
	}
	seq, ok := resolved.(func(func(int) bool))
	if !ok {
		t.Fatalf("Reconnect returned %T, want func(func(int) bool)", resolved)
	}

	var got []int
	seq(func(i int) bool {
		got = append(got, i)
		return true
	})
	if len(got) != 3 || got[0] != 0 || got[2] != 2 {
		t.Errorf("reconnected iterator produced %v, want [0 1 2]", got)
	}
}
