package handlers

import (
	"reflect"
	"testing"
)

type hookedWidget struct {
	Name  string
	count int
}

func (w *hookedWidget) SerializeHook() (map[string]any, error) {
	return map[string]any{"name": w.Name, "count": w.count}, nil
}

func (w *hookedWidget) DeserializeHook(fields map[string]any) error {
	w.Name, _ = fields["name"].(string)
	w.count, _ = fields["count"].(int)
	return nil
}

func TestHookHandler_CanHandle(t *testing.T) {
	h := NewHookHandler(NewTypeRegistry())
	if !h.CanHandle(reflect.ValueOf(&hookedWidget{})) {
		t.Error("expected CanHandle true for a type implementing both hook methods")
	}
	if h.CanHandle(reflect.ValueOf(&widget{})) {
		t.Error("expected CanHandle false for a plain struct with no hook methods")
	}
}

func TestHookHandler_ExtractUsesSerializeHook(t *testing.T) {
	h := NewHookHandler(NewTypeRegistry())
	w := &hookedWidget{Name: "gizmo", count: 3}

	state, err := h.Extract(reflect.ValueOf(w))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if state.Fields["name"] != "gizmo" || state.Fields["count"] != 3 {
		t.Errorf("unexpected fields: %+v", state.Fields)
	}
}

func TestHookHandler_RoundTrip(t *testing.T) {
	types := NewTypeRegistry()
	types.Register(&hookedWidget{})
	h := NewHookHandler(types)

	w := &hookedWidget{Name: "gizmo", count: 3}
	state, err := h.Extract(reflect.ValueOf(w))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	key := h.TypeKey(reflect.ValueOf(w))
	if !h.Handles(key) {
		t.Fatal("expected Handles true for a registered hook type")
	}

	shell, err := h.ReconstructShell(key)
	if err != nil {
		t.Fatalf("ReconstructShell: %v", err)
	}
	if err := h.PopulateShell(shell, state); err != nil {
		t.Fatalf("PopulateShell: %v", err)
	}

	got := shell.(*hookedWidget)
	if got.Name != "gizmo" || got.count != 3 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestHookHandler_HandlesFalseForPlainRegisteredType(t *testing.T) {
	types := NewTypeRegistry()
	types.Register(widget{})
	h := NewHookHandler(types)

	key := typeKeyFor(reflect.TypeOf(widget{}))
	if h.Handles(key) {
		t.Error("expected Handles false for a registered type with no hook methods, so it falls through to the struct fallback")
	}
}
