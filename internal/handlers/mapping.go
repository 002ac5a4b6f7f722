package handlers

import (
	"fmt"
	"reflect"

	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/ceetaro/suitkaise/internal/ir/errkind"
	"github.com/ceetaro/suitkaise/internal/registry"
)

// ToMapping lets a type project itself as a plain string-keyed map for
// serialization — the common dictish pattern (tier 2), one rung below
// the tier-1 hook pair and above every tier-3 specialized family.
type ToMapping interface {
	ToMapping() (map[string]any, error)
}

// FromMapping is ToMapping's reconstruction half, given the same map back
// with every nested value already resolved.
type FromMapping interface {
	FromMapping(map[string]any) error
}

var (
	toMappingType   = reflect.TypeOf((*ToMapping)(nil)).Elem()
	fromMappingType = reflect.TypeOf((*FromMapping)(nil)).Elem()
)

func implementsMappingPair(t reflect.Type) bool {
	pt := reflect.PointerTo(t)
	return (t.Implements(toMappingType) || pt.Implements(toMappingType)) &&
		pt.Implements(fromMappingType)
}

// MappingHandler is the tier-2 handler: any registered struct type
// implementing both ToMapping and FromMapping resolves here, below the
// tier-1 hook handler and above every tier-3 specialized family. Like
// HookHandler it shares the fallback's TypeRegistry and checks the
// interface pair directly in Handles, not just registry membership.
type MappingHandler struct {
	types *TypeRegistry
}

// NewMappingHandler returns a MappingHandler backed by types.
func NewMappingHandler(types *TypeRegistry) *MappingHandler {
	return &MappingHandler{types: types}
}

func (h *MappingHandler) Name() string { return "mapping" }

func (h *MappingHandler) TypeKey(v reflect.Value) ir.TypeKey {
	t := v.Type()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return typeKeyFor(t)
}

func (h *MappingHandler) CanHandle(v reflect.Value) bool {
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
	return implementsMappingPair(t)
}

func (h *MappingHandler) Handles(typeKey ir.TypeKey) bool {
	t, ok := h.types.lookup(typeKey)
	if !ok {
		return false
	}
	return implementsMappingPair(t)
}

func (h *MappingHandler) Extract(v reflect.Value) (registry.State, error) {
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	mapping, ok := toMappingFor(v)
	if !ok {
		return registry.State{}, errkind.New(errkind.UnsupportedKind, "mapping handler received a value with no ToMapping method")
	}
	fields, err := mapping.ToMapping()
	if err != nil {
		return registry.State{}, err
	}
	state := registry.NewRecordState(len(fields))
	for name, value := range fields {
		state.Set(name, value)
	}
	return state, nil
}

func toMappingFor(v reflect.Value) (ToMapping, bool) {
	if v.CanAddr() {
		if m, ok := v.Addr().Interface().(ToMapping); ok {
			return m, true
		}
	}
	if v.CanInterface() {
		if m, ok := v.Interface().(ToMapping); ok {
			return m, true
		}
	}
	return nil, false
}

func (h *MappingHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	t, ok := h.types.lookup(typeKey)
	if !ok {
		return nil, errkind.New(errkind.UnknownHandler, fmt.Sprintf("no type registered for type key %q: register it with TypeRegistry.Register before deserializing", typeKey))
	}
	return reflect.New(t).Interface(), nil
}

func (h *MappingHandler) PopulateShell(shell any, resolved registry.State) error {
	mapping, ok := shell.(FromMapping)
	if !ok {
		return errkind.New(errkind.UnsupportedKind, "mapping handler shell does not implement FromMapping")
	}
	return mapping.FromMapping(resolved.Fields)
}
