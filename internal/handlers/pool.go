package handlers

import (
	"reflect"

	"github.com/ceetaro/suitkaise/internal/containers"
	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/ceetaro/suitkaise/internal/ir/errkind"
	"github.com/ceetaro/suitkaise/internal/registry"
)

var poolType = reflect.TypeOf((*containers.Pool)(nil))

// PoolHandler is the tier-3 handler for *containers.Pool. Registry.
// TierSpecial. MaxWorkers and QueueDepth are exported accessors, so no
// registration step is needed; the pool's in-flight work queue and
// running goroutines never round-trip — Reconnect always hands back a
// fresh, idle pool at the recorded capacity, matching the Reconnector
// Starter contract: the caller decides when to Start it.
type PoolHandler struct{}

func (PoolHandler) Name() string { return "pool" }

func (PoolHandler) TypeKey(v reflect.Value) ir.TypeKey { return "suitkaise.Pool" }

func (PoolHandler) CanHandle(v reflect.Value) bool {
	return v.IsValid() && v.Type() == poolType && !v.IsNil()
}

func (PoolHandler) Handles(typeKey ir.TypeKey) bool { return typeKey == "suitkaise.Pool" }

func (PoolHandler) Extract(v reflect.Value) (registry.State, error) {
	pool, ok := v.Interface().(*containers.Pool)
	if !ok {
		return registry.State{}, errkind.New(errkind.UnsupportedKind, "pool handler received a nil *containers.Pool")
	}
	state := registry.NewRecordState(2)
	state.Set("max_workers", pool.MaxWorkers())
	state.Set("queue_depth", pool.QueueDepth())
	return state, nil
}

func (PoolHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	return &poolReconnector{}, nil
}

func (PoolHandler) PopulateShell(shell any, resolved registry.State) error {
	r, ok := shell.(*poolReconnector)
	if !ok {
		return errkind.New(errkind.UnsupportedKind, "pool handler cannot populate a shell of this type")
	}
	maxWorkers, _ := resolved.Fields["max_workers"].(int)
	queueDepth, _ := resolved.Fields["queue_depth"].(int)
	r.maxWorkers = maxWorkers
	r.queueDepth = queueDepth
	return nil
}

type poolReconnector struct {
	maxWorkers int
	queueDepth int
}

func (r *poolReconnector) ReconnectTypeKey() string { return "suitkaise.Pool" }

func (r *poolReconnector) Reconnect(auth any) (any, error) {
	return containers.NewPool(r.maxWorkers, r.queueDepth), nil
}
