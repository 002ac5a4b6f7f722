package handlers

import (
	"reflect"

	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/ceetaro/suitkaise/internal/ir/errkind"
	"github.com/ceetaro/suitkaise/internal/registry"
	"golang.org/x/sync/semaphore"
)

var semaphoreType = reflect.TypeOf((*semaphore.Weighted)(nil))

// SemaphoreRegistry maps a *semaphore.Weighted's pointer identity to the
// capacity it was constructed with: semaphore.Weighted keeps that count in
// an unexported field with no accessor, so the embedding program records
// it once at semaphore.NewWeighted time, the same way FuncRegistry/
// TypeRegistry ask the program to register what reflection alone can't
// recover.
type SemaphoreRegistry struct {
	*ConnRegistry
}

// NewSemaphoreRegistry returns an empty SemaphoreRegistry.
func NewSemaphoreRegistry() *SemaphoreRegistry {
	return &SemaphoreRegistry{ConnRegistry: NewConnRegistry()}
}

// Register records that sem was constructed with capacity n.
func (r *SemaphoreRegistry) Register(sem *semaphore.Weighted, n int64) {
	r.ConnRegistry.Register(sem, n)
}

// SemaphoreHandler is the tier-3 handler for *semaphore.Weighted. Registry.
// TierSpecial. Never produces a Reconnector: a reconstructed semaphore is
// a fresh, fully-available one at the registered capacity, no auth
// involved.
type SemaphoreHandler struct {
	reg *SemaphoreRegistry
}

// NewSemaphoreHandler returns a SemaphoreHandler backed by reg.
func NewSemaphoreHandler(reg *SemaphoreRegistry) *SemaphoreHandler {
	return &SemaphoreHandler{reg: reg}
}

func (h *SemaphoreHandler) Name() string { return "semaphore" }

func (h *SemaphoreHandler) TypeKey(v reflect.Value) ir.TypeKey { return "semaphore.Weighted" }

func (h *SemaphoreHandler) CanHandle(v reflect.Value) bool {
	return v.IsValid() && v.Type() == semaphoreType && !v.IsNil()
}

func (h *SemaphoreHandler) Handles(typeKey ir.TypeKey) bool { return typeKey == "semaphore.Weighted" }

func (h *SemaphoreHandler) Extract(v reflect.Value) (registry.State, error) {
	sem, ok := v.Interface().(*semaphore.Weighted)
	if !ok {
		return registry.State{}, errkind.New(errkind.UnsupportedKind, "semaphore handler received a nil *semaphore.Weighted")
	}
	n, ok := h.reg.Lookup(sem)
	if !ok {
		return registry.State{}, errkind.New(errkind.UnknownHandler, "semaphore was never registered with SemaphoreRegistry.Register; its capacity cannot be recovered by reflection")
	}
	state := registry.NewRecordState(1)
	state.Set("capacity", n.(int64))
	return state, nil
}

func (h *SemaphoreHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	return &semaphoreShell{}, nil
}

func (h *SemaphoreHandler) PopulateShell(shell any, resolved registry.State) error {
	s, ok := shell.(*semaphoreShell)
	if !ok {
		return errkind.New(errkind.UnsupportedKind, "semaphore handler cannot populate a shell of this type")
	}
	capacity, _ := resolved.Fields["capacity"].(int64)
	s.sem = semaphore.NewWeighted(capacity)
	return nil
}

type semaphoreShell struct {
	sem *semaphore.Weighted
}

func (s *semaphoreShell) Finalize() any { return s.sem }
