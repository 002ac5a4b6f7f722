package handlers

import (
	"context"
	"reflect"
	"sync"

	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/ceetaro/suitkaise/internal/ir/errkind"
	"github.com/ceetaro/suitkaise/internal/registry"
)

// CtxKeyRegistry records the well-known keys a context.Context may carry
// values under, each under a stable name. context.Context has no way to
// enumerate its own values — only a key already in hand can be looked up —
// so a key whose value should survive a round trip has to be registered
// here first, the same constraint FuncRegistry places on closures.
type CtxKeyRegistry struct {
	mu   sync.RWMutex
	keys map[string]any
}

// NewCtxKeyRegistry returns an empty CtxKeyRegistry.
func NewCtxKeyRegistry() *CtxKeyRegistry {
	return &CtxKeyRegistry{keys: make(map[string]any)}
}

// Register records key under name.
func (r *CtxKeyRegistry) Register(name string, key any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[name] = key
}

func (r *CtxKeyRegistry) snapshot() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]any, len(r.keys))
	for name, key := range r.keys {
		out[name] = key
	}
	return out
}

// ContextHandler is the tier-3 handler for context.Context values.
// Registry.TierSpecial. Only values reachable through a registered key are
// captured; cancellation, deadlines, and the parent chain are not
// reproduced — Finalize always builds on a fresh context.Background(), so
// a reconstructed context is never cancelable the way the original may
// have been.
type ContextHandler struct {
	reg *CtxKeyRegistry
}

// NewContextHandler returns a ContextHandler backed by reg.
func NewContextHandler(reg *CtxKeyRegistry) *ContextHandler {
	return &ContextHandler{reg: reg}
}

func (h *ContextHandler) Name() string { return "context" }

func (h *ContextHandler) TypeKey(v reflect.Value) ir.TypeKey { return "context.Context" }

func (h *ContextHandler) CanHandle(v reflect.Value) bool {
	if !v.IsValid() || !v.CanInterface() {
		return false
	}
	_, ok := v.Interface().(context.Context)
	return ok
}

func (h *ContextHandler) Handles(typeKey ir.TypeKey) bool { return typeKey == "context.Context" }

func (h *ContextHandler) Extract(v reflect.Value) (registry.State, error) {
	ctx, ok := v.Interface().(context.Context)
	if !ok {
		return registry.State{}, errkind.New(errkind.UnsupportedKind, "context handler received a value that isn't a context.Context")
	}
	keys := h.reg.snapshot()
	state := registry.NewRecordState(len(keys))
	for name, key := range keys {
		if val := ctx.Value(key); val != nil {
			state.Set(name, val)
		}
	}
	return state, nil
}

func (h *ContextHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	return &contextShell{reg: h.reg}, nil
}

func (h *ContextHandler) PopulateShell(shell any, resolved registry.State) error {
	s, ok := shell.(*contextShell)
	if !ok {
		return errkind.New(errkind.UnsupportedKind, "context handler cannot populate a shell of this type")
	}
	s.values = resolved.Fields
	return nil
}

type contextShell struct {
	reg    *CtxKeyRegistry
	values map[string]any
}

func (s *contextShell) Finalize() any {
	ctx := context.Background()
	keys := s.reg.snapshot()
	for name, val := range s.values {
		if key, ok := keys[name]; ok {
			ctx = context.WithValue(ctx, key, val)
		}
	}
	return ctx
}
