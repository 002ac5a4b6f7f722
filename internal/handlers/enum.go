package handlers

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/ceetaro/suitkaise/internal/ir/errkind"
	"github.com/ceetaro/suitkaise/internal/registry"
)

// EnumRegistry maps a named-int enum type's every value to its
// fmt.Stringer representation, Go's closest analogue to Python's Enum
// class: a named int type plus iota constants, with no runtime way to
// enumerate its members or parse a string back into one without this
// registry recording them up front.
type EnumRegistry struct {
	mu     sync.RWMutex
	types  map[ir.TypeKey]reflect.Type
	byRepr map[ir.TypeKey]map[string]any
}

// NewEnumRegistry returns an empty EnumRegistry.
func NewEnumRegistry() *EnumRegistry {
	return &EnumRegistry{
		types:  make(map[ir.TypeKey]reflect.Type),
		byRepr: make(map[ir.TypeKey]map[string]any),
	}
}

// RegisterValues records every member of one enum type, keyed by its
// String() representation. Call once per enum type at init(), e.g.
// RegisterValues(StatusActive, StatusInactive, StatusPending).
func (r *EnumRegistry) RegisterValues(values ...fmt.Stringer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range values {
		t := reflect.TypeOf(v)
		key := typeKeyFor(t)
		if r.byRepr[key] == nil {
			r.byRepr[key] = make(map[string]any)
			r.types[key] = t
		}
		r.byRepr[key][v.String()] = v
	}
}

func (r *EnumRegistry) has(key ir.TypeKey) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.types[key]
	return ok
}

func (r *EnumRegistry) resolve(key ir.TypeKey, repr string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byRepr, ok := r.byRepr[key]
	if !ok {
		return nil, false
	}
	v, ok := byRepr[repr]
	return v, ok
}

// EnumHandler is the tier-3 handler for registered enum/flag types: a
// named int type whose values implement fmt.Stringer and were recorded
// with EnumRegistry.RegisterValues. Registry.TierSpecial. Unlike most
// tier-3 families this never produces a Reconnector — an enum member is
// plain data, fully reconstructable without auth or a live resource.
type EnumHandler struct {
	reg *EnumRegistry
}

// NewEnumHandler returns an EnumHandler backed by reg.
func NewEnumHandler(reg *EnumRegistry) *EnumHandler {
	return &EnumHandler{reg: reg}
}

func (h *EnumHandler) Name() string { return "enum" }

func (h *EnumHandler) TypeKey(v reflect.Value) ir.TypeKey {
	return typeKeyFor(v.Type())
}

func (h *EnumHandler) CanHandle(v reflect.Value) bool {
	if !v.IsValid() || !v.CanInterface() {
		return false
	}
	if _, ok := v.Interface().(fmt.Stringer); !ok {
		return false
	}
	return h.reg.has(typeKeyFor(v.Type()))
}

func (h *EnumHandler) Handles(typeKey ir.TypeKey) bool { return h.reg.has(typeKey) }

func (h *EnumHandler) Extract(v reflect.Value) (registry.State, error) {
	stringer, ok := v.Interface().(fmt.Stringer)
	if !ok {
		return registry.State{}, errkind.New(errkind.UnsupportedKind, "enum handler received a value with no String() method")
	}
	state := registry.NewRecordState(1)
	state.Set("repr", stringer.String())
	return state, nil
}

func (h *EnumHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	return &enumShell{typeKey: typeKey, reg: h.reg}, nil
}

func (h *EnumHandler) PopulateShell(shell any, resolved registry.State) error {
	s, ok := shell.(*enumShell)
	if !ok {
		return errkind.New(errkind.UnsupportedKind, "enum handler cannot populate a shell of this type")
	}
	repr, _ := resolved.Fields["repr"].(string)
	v, ok := s.reg.resolve(s.typeKey, repr)
	if !ok {
		return errkind.New(errkind.UnknownHandler, fmt.Sprintf("no registered value of %q has representation %q", s.typeKey, repr))
	}
	s.value = v
	return nil
}

// enumShell holds the resolved member until Finalize substitutes it for
// the builder, since an enum's underlying named-int value can't be
// allocated empty and populated in place the way a struct pointer can.
type enumShell struct {
	typeKey ir.TypeKey
	reg     *EnumRegistry
	value   any
}

func (s *enumShell) Finalize() any { return s.value }
