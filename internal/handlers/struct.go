package handlers

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/ceetaro/suitkaise/internal/ir/errkind"
	"github.com/ceetaro/suitkaise/internal/registry"
)

// TypeRegistry maps a struct's type key to the reflect.Type the embedding
// program registers for it at init() time. The engine can't conjure a zero
// value for a type it has never seen, so the program owning that type has
// to hand the registry a sample of it first.
type TypeRegistry struct {
	mu    sync.RWMutex
	types map[ir.TypeKey]reflect.Type
}

// NewTypeRegistry returns an empty TypeRegistry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: make(map[ir.TypeKey]reflect.Type)}
}

// Register records sample's type under its derived type key so
// StructHandler can reconstruct shells of it later. Pass a zero value of
// the type, e.g. Register(MyStruct{}) or Register(&MyStruct{}).
func (r *TypeRegistry) Register(sample any) {
	t := reflect.TypeOf(sample)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[typeKeyFor(t)] = t
}

func (r *TypeRegistry) lookup(typeKey ir.TypeKey) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[typeKey]
	return t, ok
}

func (r *TypeRegistry) has(typeKey ir.TypeKey) bool {
	_, ok := r.lookup(typeKey)
	return ok
}

// typeKeyFor derives a stable type key from a struct's package path and
// name — Go's analogue of Python's fully-qualified "module.ClassName",
// used both as the tagged record's type key and as the TypeRegistry's
// lookup key. Anonymous/generic-instantiation types (no name, or a
// synthetic generated name) fall back to the raw reflect.Type string;
// structs almost always have a name, so this fallback is rarely exercised.
func typeKeyFor(t reflect.Type) ir.TypeKey {
	if t.Name() == "" || t.PkgPath() == "" {
		return ir.TypeKey(t.String())
	}
	return ir.TypeKey(t.PkgPath() + "." + t.Name())
}

// StructHandler is the tier-4 fallback: reflective attribute-bag
// extraction over a struct's exported fields only — Go has no reflection
// access to unexported fields without violating package encapsulation, so
// extraction is necessarily narrower than Python's full __dict__ access.
// Registry.Resolve panics if this handler was never registered, since
// every dispatcher needs a handler of last resort.
type StructHandler struct {
	types *TypeRegistry
}

// NewStructHandler returns a StructHandler backed by types. Every struct
// type the engine will ever serialize or reconstruct must be registered
// on types before the first Serialize/Deserialize call that touches it.
func NewStructHandler(types *TypeRegistry) *StructHandler {
	return &StructHandler{types: types}
}

func (h *StructHandler) Name() string { return "struct" }

func (h *StructHandler) TypeKey(v reflect.Value) ir.TypeKey {
	t := v.Type()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return typeKeyFor(t)
}

func (h *StructHandler) CanHandle(v reflect.Value) bool {
	t := v.Type()
	for t.Kind() == reflect.Ptr {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

func (h *StructHandler) Handles(typeKey ir.TypeKey) bool {
	return h.types.has(typeKey)
}

func (h *StructHandler) Extract(v reflect.Value) (registry.State, error) {
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return registry.State{}, errUnsupportedStruct(v)
	}

	t := v.Type()
	state := registry.NewRecordState(t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		state.Set(field.Name, v.Field(i).Interface())
	}
	return state, nil
}

func (h *StructHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	t, ok := h.types.lookup(typeKey)
	if !ok {
		return nil, errkind.New(errkind.UnknownHandler, fmt.Sprintf("no type registered for type key %q: register it with TypeRegistry.Register before deserializing", typeKey))
	}
	return reflect.New(t).Interface(), nil
}

func (h *StructHandler) PopulateShell(shell any, resolved registry.State) error {
	v := reflect.ValueOf(shell)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return errkind.New(errkind.UnsupportedKind, fmt.Sprintf("struct handler cannot populate shell of kind %s", v.Kind()))
	}

	for _, name := range resolved.FieldOrder {
		field := v.FieldByName(name)
		if !field.IsValid() || !field.CanSet() {
			continue
		}
		value := resolved.Fields[name]
		if value == nil {
			continue
		}
		fv := reflect.ValueOf(value)
		if fv.Type().AssignableTo(field.Type()) {
			field.Set(fv)
		} else if fv.Type().ConvertibleTo(field.Type()) {
			field.Set(fv.Convert(field.Type()))
		} else {
			return errkind.New(errkind.SchemaMismatch, fmt.Sprintf("field %s: cannot assign %s to %s", name, fv.Type(), field.Type()))
		}
	}
	return nil
}
