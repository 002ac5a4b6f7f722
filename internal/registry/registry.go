package registry

import (
	"reflect"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/ceetaro/suitkaise/internal/ir"
)

// Resolution tiers, lower numbers win ties and are checked first.
const (
	TierFastPath  = 0
	TierUserHook  = 1
	TierMapping   = 2
	TierSpecial   = 3
	TierFallback  = 4
)

type entry struct {
	handler  Handler
	priority int
}

// Registry holds every registered Handler, ordered by priority for
// resolution: mutex-guarded storage with a Register/Get pair, keyed by
// priority tier instead of by name, since resolution here is "first
// handler in priority order whose CanHandle accepts the value" rather
// than an exact-name lookup.
type Registry struct {
	mu       sync.RWMutex
	entries  []entry
	sorted   bool
	fallback Handler

	sg       singleflight.Group
	typeKeys map[reflect.Type]ir.TypeKey
}

// New creates an empty Registry. Callers must Register the tier-4
// class-instance fallback handler before calling Resolve, or Resolve
// panics — there is always supposed to be a handler of last resort.
func New() *Registry {
	return &Registry{
		typeKeys: make(map[reflect.Type]ir.TypeKey),
	}
}

// Register adds h to the registry at the given priority. Registering the
// fallback (tier 4) handler sets it as the Resolve fallback in addition to
// making it resolvable through the normal ladder, so Resolve never returns
// a nil Handler once a fallback has been registered.
func (r *Registry) Register(h Handler, priority int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry{handler: h, priority: priority})
	r.sorted = false

	if priority == TierFallback {
		r.fallback = h
	}
}

// Resolve returns the handler with the lowest priority whose CanHandle
// accepts v. If no registered handler matches, the class-instance fallback
// is returned. Resolve panics if no fallback has been registered, since
// that is a wiring bug, not a value the caller can recover from.
func (r *Registry) Resolve(v reflect.Value) Handler {
	h, _ := r.ResolveWithTier(v)
	return h
}

// ResolveWithTier is Resolve plus the priority tier that matched, used by
// the dispatcher to tag each record with the tier that produced it (the
// inspect CLI's per-object tier column) without a second lookup.
func (r *Registry) ResolveWithTier(v reflect.Value) (Handler, int) {
	r.mu.Lock()
	if !r.sorted {
		sort.SliceStable(r.entries, func(i, j int) bool {
			return r.entries[i].priority < r.entries[j].priority
		})
		r.sorted = true
	}
	entries := r.entries
	fallback := r.fallback
	r.mu.Unlock()

	for _, e := range entries {
		if e.priority == TierFallback {
			continue // fallback is always tried last, after the ladder
		}
		if e.handler.CanHandle(v) {
			return e.handler, e.priority
		}
	}

	if fallback == nil {
		panic("registry: Resolve called with no class-instance fallback handler registered")
	}
	return fallback, TierFallback
}

// TypeKeyFor derives and caches the type key for t, deduplicating
// concurrent first-touch derivations of the same reflect.Type via
// singleflight so two goroutines racing to serialize the same type don't
// do the (potentially allocation-heavy) derivation twice.
func (r *Registry) TypeKeyFor(t reflect.Type, derive func() ir.TypeKey) ir.TypeKey {
	r.mu.RLock()
	if key, ok := r.typeKeys[t]; ok {
		r.mu.RUnlock()
		return key
	}
	r.mu.RUnlock()

	result, _, _ := r.sg.Do(t.String(), func() (any, error) {
		r.mu.RLock()
		if key, ok := r.typeKeys[t]; ok {
			r.mu.RUnlock()
			return key, nil
		}
		r.mu.RUnlock()

		key := derive()

		r.mu.Lock()
		r.typeKeys[t] = key
		r.mu.Unlock()

		return key, nil
	})

	return result.(ir.TypeKey)
}

// HandlerFor resolves a handler by type key, used during reconstruction
// (pass 1's shell allocation needs the handler for a given cucumber_type
// without a live reflect.Value to run CanHandle against).
func (r *Registry) HandlerFor(typeKey ir.TypeKey) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if e.handler.Handles(typeKey) {
			return e.handler, true
		}
	}
	return nil, false
}
