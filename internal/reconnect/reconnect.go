// Package reconnect implements the Reconnector subsystem: the inert
// placeholder values produced during deserialization for live resources,
// and the ReconnectAll traversal that turns them back into live objects
// given caller-supplied authentication.
package reconnect

import (
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Reconnector is an inert placeholder for a live resource. It never dials
// out, opens sockets, or runs user code by itself — only Reconnect does,
// and only when ReconnectAll invokes it.
type Reconnector interface {
	// ReconnectTypeKey identifies which live type this placeholder rebuilds,
	// used to resolve the right entry in an AuthMap.
	ReconnectTypeKey() string

	// Reconnect recreates the live resource from stored metadata plus auth,
	// the value ReconnectAll resolved for this placeholder (nil if none).
	Reconnect(auth any) (any, error)
}

// Starter is implemented by a reconnected value that can be put into
// motion after replacement — a thread-like value whose Start exists
// separately from construction. ReconnectAll invokes Start only when the
// caller passed startThreads.
type Starter interface {
	Start()
}

// AuthMap holds the secrets ReconnectAll supplies to each Reconnector,
// keyed first by the Reconnector's type key, then by the struct field name
// (or container path segment) carrying it. A "*" attr entry is a wildcard
// matching any attribute under that type key.
type AuthMap map[string]map[string]any

// AuthSpec is the mapstructure/validator-friendly shape of one AuthMap
// entry — the shape a config file or CLI flag value naturally decodes
// into before DecodeAuthSpecs folds it into the nested AuthMap form
// lookup uses.
type AuthSpec struct {
	TypeKey string `mapstructure:"type_key" validate:"required"`
	Attr    string `mapstructure:"attr" validate:"required"`
	Secret  any    `mapstructure:"secret" validate:"required"`
}

func (a AuthMap) lookup(typeKey, attr string) any {
	if a == nil {
		return nil
	}
	byAttr, ok := a[typeKey]
	if !ok {
		return nil
	}
	if v, ok := byAttr[attr]; ok {
		return v
	}
	return byAttr["*"]
}

// visitKey identifies a pointer/map/slice value for cycle detection during
// the walk, the same ptr+len shape internal/identity's tracker keys on,
// generalized here to a plain object graph instead of an IR walk.
type visitKey struct {
	ptr uintptr
	len int
}

func trackableKey(v reflect.Value) (visitKey, bool) {
	switch v.Kind() {
	case reflect.Ptr, reflect.Map:
		if v.IsNil() {
			return visitKey{}, false
		}
		return visitKey{ptr: v.Pointer()}, true
	case reflect.Slice:
		if v.IsNil() {
			return visitKey{}, false
		}
		return visitKey{ptr: v.Pointer(), len: v.Len()}, true
	default:
		return visitKey{}, false
	}
}

type walker struct {
	auth         AuthMap
	startThreads bool

	mu   sync.Mutex
	errs []error

	visitedMu sync.Mutex
	visited   map[visitKey]bool
}

func (w *walker) addErr(err error) {
	if err == nil {
		return
	}
	w.mu.Lock()
	w.errs = append(w.errs, err)
	w.mu.Unlock()
}

func (w *walker) errors() []error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errs
}

// markVisited reports whether v has already been visited, recording it as
// visited if not. Values with no stable identity (plain structs reached by
// value, scalars) always report false and are walked every time they're
// reached.
func (w *walker) markVisited(v reflect.Value) bool {
	key, ok := trackableKey(v)
	if !ok {
		return false
	}
	w.visitedMu.Lock()
	defer w.visitedMu.Unlock()
	if w.visited[key] {
		return true
	}
	w.visited[key] = true
	return false
}

// ReconnectAll traverses the object graph reachable from root, replacing
// every Reconnector it finds with the live resource Reconnect produces.
// Independent fields/elements reconnect concurrently; a reconnection
// failure is collected and the field is left as a Reconnector rather than
// aborting the rest of the walk, so a partially-available environment
// still restores what it can.
func ReconnectAll(root any, auth AuthMap, startThreads bool) (any, []error) {
	w := &walker{auth: auth, startThreads: startThreads, visited: make(map[visitKey]bool)}

	result := root
	w.walk(reflect.ValueOf(root), "", func(live any) { result = live })
	return result, w.errors()
}

// walk inspects v: if it (or its unwrapped interface value) is a
// Reconnector, reconnectOne handles it and set is invoked with the live
// replacement. Otherwise walk recurses into v's children according to its
// kind, calling set to write the reconnected value back into the parent
// container when a descendant was replaced.
func (w *walker) walk(v reflect.Value, fieldName string, set func(any)) {
	if !v.IsValid() {
		return
	}
	for v.Kind() == reflect.Interface {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}

	if v.CanInterface() {
		if rc, ok := v.Interface().(Reconnector); ok {
			w.reconnectOne(rc, fieldName, set)
			return
		}
	}

	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() || w.markVisited(v) {
			return
		}
		w.walk(v.Elem(), fieldName, nil)

	case reflect.Struct:
		var g errgroup.Group
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			fv := v.Field(i)
			name := field.Name
			g.Go(func() error {
				w.walk(fv, name, func(live any) {
					if !fv.CanSet() {
						return
					}
					lv := reflect.ValueOf(live)
					if lv.IsValid() && lv.Type().AssignableTo(fv.Type()) {
						fv.Set(lv)
					}
				})
				return nil
			})
		}
		g.Wait()

	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && (v.IsNil() || w.markVisited(v)) {
			return
		}
		var g errgroup.Group
		for i := 0; i < v.Len(); i++ {
			ev := v.Index(i)
			g.Go(func() error {
				w.walk(ev, fieldName, func(live any) {
					if !ev.CanSet() {
						return
					}
					lv := reflect.ValueOf(live)
					if lv.IsValid() && lv.Type().AssignableTo(ev.Type()) {
						ev.Set(lv)
					}
				})
				return nil
			})
		}
		g.Wait()

	case reflect.Map:
		if v.IsNil() || w.markVisited(v) {
			return
		}
		elemType := v.Type().Elem()
		var g errgroup.Group
		for _, k := range v.MapKeys() {
			mv := v.MapIndex(k)
			g.Go(func() error {
				w.walk(mv, fieldName, func(live any) {
					lv := reflect.ValueOf(live)
					if lv.IsValid() && lv.Type().AssignableTo(elemType) {
						v.SetMapIndex(k, lv)
					}
				})
				return nil
			})
		}
		g.Wait()
	}
}

func (w *walker) reconnectOne(rc Reconnector, fieldName string, set func(any)) {
	typeKey := rc.ReconnectTypeKey()
	auth := w.auth.lookup(typeKey, fieldName)

	live, err := rc.Reconnect(auth)
	if err != nil {
		w.addErr(fmt.Errorf("reconnect %s (%s): %w", fieldName, typeKey, err))
		return
	}

	if set != nil {
		set(live)
	}

	if w.startThreads {
		if s, ok := live.(Starter); ok {
			s.Start()
		}
	}
}
