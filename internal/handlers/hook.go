package handlers

import (
	"fmt"
	"reflect"

	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/ceetaro/suitkaise/internal/ir/errkind"
	"github.com/ceetaro/suitkaise/internal/registry"
)

// SerializeHook lets a type take full control of its own extraction,
// bypassing the struct fallback's field-by-field walk entirely — the
// tier-1 half of the user-override pair, paired with DeserializeHook.
type SerializeHook interface {
	SerializeHook() (map[string]any, error)
}

// DeserializeHook is SerializeHook's reconstruction half: fields is
// exactly what the matching SerializeHook returned, with every nested
// value already resolved by the dispatcher.
type DeserializeHook interface {
	DeserializeHook(fields map[string]any) error
}

var (
	serializeHookType   = reflect.TypeOf((*SerializeHook)(nil)).Elem()
	deserializeHookType = reflect.TypeOf((*DeserializeHook)(nil)).Elem()
)

// implementsHookPair reports whether t (a struct type, never a pointer)
// implements both halves of the hook pair, checking the pointer method
// set for DeserializeHook since reconstruction always mutates through a
// pointer shell.
func implementsHookPair(t reflect.Type) bool {
	pt := reflect.PointerTo(t)
	return (t.Implements(serializeHookType) || pt.Implements(serializeHookType)) &&
		pt.Implements(deserializeHookType)
}

// HookHandler is the tier-1 user-override handler: any registered struct
// type implementing both SerializeHook and DeserializeHook resolves here,
// ahead of the tier-2 mapping handler, every tier-3 specialized family,
// and the tier-4 struct fallback. It shares the same TypeRegistry struct
// types register with for the fallback — a hook type still needs an
// allocatable shell, and Handles checks the interface pair directly
// rather than just registry membership so a plain registered struct
// still falls through to the fallback.
type HookHandler struct {
	types *TypeRegistry
}

// NewHookHandler returns a HookHandler backed by types.
func NewHookHandler(types *TypeRegistry) *HookHandler {
	return &HookHandler{types: types}
}

func (h *HookHandler) Name() string { return "hook" }

func (h *HookHandler) TypeKey(v reflect.Value) ir.TypeKey {
	t := v.Type()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return typeKeyFor(t)
}

func (h *HookHandler) CanHandle(v reflect.Value) bool {
	t := v.Type()
	for t.Kind() == reflect.Ptr {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	return implementsHookPair(t)
}

func (h *HookHandler) Handles(typeKey ir.TypeKey) bool {
	t, ok := h.types.lookup(typeKey)
	if !ok {
		return false
	}
	return implementsHookPair(t)
}

func (h *HookHandler) Extract(v reflect.Value) (registry.State, error) {
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	hook, ok := hookFor(v)
	if !ok {
		return registry.State{}, errkind.New(errkind.UnsupportedKind, "hook handler received a value with no SerializeHook method")
	}
	fields, err := hook.SerializeHook()
	if err != nil {
		return registry.State{}, err
	}
	state := registry.NewRecordState(len(fields))
	for name, value := range fields {
		state.Set(name, value)
	}
	return state, nil
}

func hookFor(v reflect.Value) (SerializeHook, bool) {
	if v.CanAddr() {
		if sh, ok := v.Addr().Interface().(SerializeHook); ok {
			return sh, true
		}
	}
	if v.CanInterface() {
		if sh, ok := v.Interface().(SerializeHook); ok {
			return sh, true
		}
	}
	return nil, false
}

func (h *HookHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	t, ok := h.types.lookup(typeKey)
	if !ok {
		return nil, errkind.New(errkind.UnknownHandler, fmt.Sprintf("no type registered for type key %q: register it with TypeRegistry.Register before deserializing", typeKey))
	}
	return reflect.New(t).Interface(), nil
}

func (h *HookHandler) PopulateShell(shell any, resolved registry.State) error {
	hook, ok := shell.(DeserializeHook)
	if !ok {
		return errkind.New(errkind.UnsupportedKind, "hook handler shell does not implement DeserializeHook")
	}
	return hook.DeserializeHook(resolved.Fields)
}
