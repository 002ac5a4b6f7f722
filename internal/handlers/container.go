package handlers

import (
	"fmt"
	"reflect"

	"github.com/ceetaro/suitkaise/internal/containers"
	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/ceetaro/suitkaise/internal/ir/errkind"
	"github.com/ceetaro/suitkaise/internal/registry"
)

// entriesProvider is satisfied by *containers.OrderedMap[K, V] for any K, V:
// the non-generic escape hatch that lets this handler walk the map through
// reflect.Value alone, without needing its type parameters at the call
// site.
type entriesProvider interface {
	Entries() []containers.OrderedEntry
}

// itemsProvider is satisfied by *containers.Set[T] and containers.FrozenSet[T]
// for any T, the equivalent escape hatch for sets.
type itemsProvider interface {
	ItemsAny() []any
}

// ContainerHandler is the tier-0 fast path for ordered sequences (slice,
// array), unordered sets (containers.Set/FrozenSet), and insertion-ordered
// mappings (containers.OrderedMap, and plain map[K]V on a best-effort basis
// — Go map iteration order is random, so a plain map round-trips its
// entries but not a meaningful order; callers who need order preserved use
// OrderedMap instead — the concrete type chosen is the contract).
type ContainerHandler struct{}

func (ContainerHandler) Name() string { return "container" }

func (ContainerHandler) TypeKey(v reflect.Value) ir.TypeKey {
	switch {
	case isOrderedMap(v):
		return "suitkaise.OrderedMap"
	case isSet(v):
		return "suitkaise.Set"
	case isFrozenSet(v):
		return "suitkaise.FrozenSet"
	case v.Kind() == reflect.Map:
		return "builtins.dict"
	case v.Kind() == reflect.Array:
		return "builtins.tuple"
	default:
		return "builtins.list"
	}
}

func (ContainerHandler) CanHandle(v reflect.Value) bool {
	if !v.IsValid() {
		return false
	}
	if isOrderedMap(v) || isSet(v) || isFrozenSet(v) {
		return true
	}
	switch v.Kind() {
	case reflect.Array:
		return true
	case reflect.Slice:
		return v.Type().Elem().Kind() != reflect.Uint8 // []byte is a ScalarHandler leaf
	case reflect.Map:
		return true
	default:
		return false
	}
}

func (h ContainerHandler) Handles(typeKey ir.TypeKey) bool {
	switch typeKey {
	case "suitkaise.OrderedMap", "suitkaise.Set", "suitkaise.FrozenSet", "builtins.dict", "builtins.tuple", "builtins.list":
		return true
	default:
		return false
	}
}

func (h ContainerHandler) Extract(v reflect.Value) (registry.State, error) {
	switch {
	case isOrderedMap(v):
		return extractOrderedMap(v)
	case isSet(v), isFrozenSet(v):
		return extractSet(v)
	case v.Kind() == reflect.Map:
		return extractMap(v)
	case v.Kind() == reflect.Slice || v.Kind() == reflect.Array:
		return extractSequence(v)
	default:
		return registry.State{}, errUnsupportedContainer(v)
	}
}

// frozenSetShell collects elements during PopulateShell and converts to a
// containers.FrozenSet only once every element has been resolved, since
// FrozenSet itself is immutable and has no way to accept elements one at a
// time.
type frozenSetShell struct {
	items []any
}

func (s *frozenSetShell) Finalize() any {
	return containers.NewFrozenSet(s.items...)
}

func (ContainerHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	switch typeKey {
	case "builtins.list", "builtins.tuple":
		return &[]any{}, nil
	case "builtins.dict":
		return make(map[any]any), nil
	case "suitkaise.OrderedMap":
		return containers.NewOrderedMap[any, any](), nil
	case "suitkaise.Set":
		return containers.NewSet[any](), nil
	case "suitkaise.FrozenSet":
		return &frozenSetShell{}, nil
	default:
		return nil, errUnknownTypeKey(typeKey)
	}
}

func (ContainerHandler) PopulateShell(shell any, resolved registry.State) error {
	switch s := shell.(type) {
	case *[]any:
		*s = append(*s, resolved.Elems...)
		return nil
	case map[any]any:
		for _, e := range resolved.Elems {
			pair, ok := e.(registry.MapEntry)
			if !ok {
				return errkind.New(errkind.CorruptIR, "dict container elements must be key/value pairs")
			}
			s[pair.Key] = pair.Value
		}
		return nil
	case *containers.OrderedMap[any, any]:
		for _, e := range resolved.Elems {
			pair, ok := e.(registry.MapEntry)
			if !ok {
				return errkind.New(errkind.CorruptIR, "ordered map elements must be key/value pairs")
			}
			s.Set(pair.Key, pair.Value)
		}
		return nil
	case *containers.Set[any]:
		for _, e := range resolved.Elems {
			s.Add(e)
		}
		return nil
	case *frozenSetShell:
		s.items = append(s.items, resolved.Elems...)
		return nil
	default:
		return errkind.New(errkind.CorruptIR, fmt.Sprintf("container handler cannot populate shell of type %T", shell))
	}
}

func extractSequence(v reflect.Value) (registry.State, error) {
	elems := make([]any, v.Len())
	for i := 0; i < v.Len(); i++ {
		elems[i] = v.Index(i).Interface()
	}
	return registry.ContainerState(elems), nil
}

// mapEntry is a local alias for registry.MapEntry: the dispatcher recognizes
// registry.MapEntry specifically, so every place this handler builds a
// key/value pair must produce that exact type rather than a look-alike.
type mapEntry = registry.MapEntry

func extractMap(v reflect.Value) (registry.State, error) {
	keys := v.MapKeys()
	elems := make([]any, len(keys))
	for i, k := range keys {
		elems[i] = mapEntry{Key: k.Interface(), Value: v.MapIndex(k).Interface()}
	}
	return registry.ContainerState(elems), nil
}

func isOrderedMap(v reflect.Value) bool {
	if !v.IsValid() || !v.CanInterface() {
		return false
	}
	_, ok := v.Interface().(entriesProvider)
	return ok
}

func extractOrderedMap(v reflect.Value) (registry.State, error) {
	om := v.Interface().(entriesProvider)
	entries := om.Entries()
	elems := make([]any, len(entries))
	for i, e := range entries {
		elems[i] = mapEntry{Key: e.Key, Value: e.Value}
	}
	return registry.ContainerState(elems), nil
}

// isSet matches *containers.Set[T]; FrozenSet[T] has value receivers so it
// never satisfies a pointer-kind check here.
func isSet(v reflect.Value) bool {
	if !v.IsValid() || v.Kind() != reflect.Ptr || !v.CanInterface() {
		return false
	}
	_, ok := v.Interface().(itemsProvider)
	return ok
}

// isFrozenSet matches containers.FrozenSet[T] by value.
func isFrozenSet(v reflect.Value) bool {
	if !v.IsValid() || v.Kind() == reflect.Ptr || !v.CanInterface() {
		return false
	}
	_, ok := v.Interface().(itemsProvider)
	return ok
}

func extractSet(v reflect.Value) (registry.State, error) {
	items := v.Interface().(itemsProvider)
	return registry.ContainerState(items.ItemsAny()), nil
}
