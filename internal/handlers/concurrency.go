package handlers

import (
	"reflect"
	"sync"

	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/ceetaro/suitkaise/internal/ir/errkind"
	"github.com/ceetaro/suitkaise/internal/registry"
)

var (
	mutexType      = reflect.TypeOf(sync.Mutex{})
	mutexPtrType   = reflect.TypeOf((*sync.Mutex)(nil))
	rwMutexType    = reflect.TypeOf(sync.RWMutex{})
	rwMutexPtrType = reflect.TypeOf((*sync.RWMutex)(nil))
	waitGroupType  = reflect.TypeOf(sync.WaitGroup{})
	waitGroupPtr   = reflect.TypeOf((*sync.WaitGroup)(nil))
)

// addressable returns a pointer to v's value, copying into a fresh
// addressable location when v itself isn't addressable (e.g. it came from
// an interface). The copy is read-only from here on, used only to probe
// lock state with TryLock — a best-effort snapshot, not a synchronization
// primitive in its own right.
func addressable(v reflect.Value) reflect.Value {
	if v.Kind() == reflect.Ptr {
		return v
	}
	if v.CanAddr() {
		return v.Addr()
	}
	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)
	return ptr
}

// mutexReconnector is an inert placeholder for a sync.Mutex's probed lock
// state. Holding a live, possibly-locked mutex as the deserialized value
// before any caller opted in would let a held lock reappear the instant
// PopulateShell runs, with no chance to decide whether relocking it is
// even wanted; Reconnect defers that decision to ReconnectAll the same
// way a DSN-backed Reconnector defers dialing out.
type mutexReconnector struct {
	locked bool
}

func (r *mutexReconnector) ReconnectTypeKey() string { return "sync.Mutex" }

// Reconnect returns a fresh *sync.Mutex, locked up front only if the
// original was observed locked at Extract time. auth is unused; a mutex
// has no credential to supply, only a caller-acknowledged relock.
func (r *mutexReconnector) Reconnect(auth any) (any, error) {
	m := &sync.Mutex{}
	if r.locked {
		m.Lock()
	}
	return m, nil
}

// MutexHandler is the tier-3 handler for sync.Mutex and *sync.Mutex: a
// probed, best-effort locked bit, since a mutex carries no other
// observable state. Registry.TierSpecial.
type MutexHandler struct{}

func (MutexHandler) Name() string { return "mutex" }

func (MutexHandler) TypeKey(v reflect.Value) ir.TypeKey { return "sync.Mutex" }

func (MutexHandler) CanHandle(v reflect.Value) bool {
	return v.IsValid() && (v.Type() == mutexType || v.Type() == mutexPtrType)
}

func (MutexHandler) Handles(typeKey ir.TypeKey) bool { return typeKey == "sync.Mutex" }

func (MutexHandler) Extract(v reflect.Value) (registry.State, error) {
	m, ok := addressable(v).Interface().(*sync.Mutex)
	if !ok {
		return registry.State{}, errkind.New(errkind.UnsupportedKind, "mutex handler received an unexpected type")
	}
	locked := !m.TryLock()
	if !locked {
		m.Unlock()
	}
	state := registry.NewRecordState(1)
	state.Set("locked", locked)
	return state, nil
}

func (MutexHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	return &mutexReconnector{}, nil
}

func (MutexHandler) PopulateShell(shell any, resolved registry.State) error {
	r, ok := shell.(*mutexReconnector)
	if !ok {
		return errkind.New(errkind.UnsupportedKind, "mutex handler cannot populate a shell of this type")
	}
	r.locked, _ = resolved.Fields["locked"].(bool)
	return nil
}

// rwMutexReconnector is rwMutexHandler's counterpart to mutexReconnector:
// an inert placeholder carrying only the probed exclusive-lock bit, so
// relocking a held RWMutex happens on an explicit Reconnect call rather
// than silently during PopulateShell.
type rwMutexReconnector struct {
	writeLocked bool
}

func (r *rwMutexReconnector) ReconnectTypeKey() string { return "sync.RWMutex" }

func (r *rwMutexReconnector) Reconnect(auth any) (any, error) {
	m := &sync.RWMutex{}
	if r.writeLocked {
		m.Lock()
	}
	return m, nil
}

// RWMutexHandler mirrors MutexHandler for sync.RWMutex, probing with
// TryLock only: TryLock fails while either a read lock or a write lock is
// held, so a read-locked RWMutex snapshots as write-locked.
// Registry.TierSpecial.
type RWMutexHandler struct{}

func (RWMutexHandler) Name() string { return "rwmutex" }

func (RWMutexHandler) TypeKey(v reflect.Value) ir.TypeKey { return "sync.RWMutex" }

func (RWMutexHandler) CanHandle(v reflect.Value) bool {
	return v.IsValid() && (v.Type() == rwMutexType || v.Type() == rwMutexPtrType)
}

func (RWMutexHandler) Handles(typeKey ir.TypeKey) bool { return typeKey == "sync.RWMutex" }

func (RWMutexHandler) Extract(v reflect.Value) (registry.State, error) {
	m, ok := addressable(v).Interface().(*sync.RWMutex)
	if !ok {
		return registry.State{}, errkind.New(errkind.UnsupportedKind, "rwmutex handler received an unexpected type")
	}
	locked := !m.TryLock()
	if !locked {
		m.Unlock()
	}
	state := registry.NewRecordState(1)
	state.Set("write_locked", locked)
	return state, nil
}

func (RWMutexHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	return &rwMutexReconnector{}, nil
}

func (RWMutexHandler) PopulateShell(shell any, resolved registry.State) error {
	r, ok := shell.(*rwMutexReconnector)
	if !ok {
		return errkind.New(errkind.UnsupportedKind, "rwmutex handler cannot populate a shell of this type")
	}
	r.writeLocked, _ = resolved.Fields["write_locked"].(bool)
	return nil
}

// WaitGroupHandler is the tier-3 handler for sync.WaitGroup. A WaitGroup's
// internal counter is packed into an unexported atomic word with no
// exported accessor, so unlike a mutex's lock bit there is nothing
// reflect-safe to probe: every reconstructed WaitGroup comes back at a
// zero count rather than a best-effort one. Registry.TierSpecial.
type WaitGroupHandler struct{}

func (WaitGroupHandler) Name() string { return "waitgroup" }

func (WaitGroupHandler) TypeKey(v reflect.Value) ir.TypeKey { return "sync.WaitGroup" }

func (WaitGroupHandler) CanHandle(v reflect.Value) bool {
	return v.IsValid() && (v.Type() == waitGroupType || v.Type() == waitGroupPtr)
}

func (WaitGroupHandler) Handles(typeKey ir.TypeKey) bool { return typeKey == "sync.WaitGroup" }

func (WaitGroupHandler) Extract(v reflect.Value) (registry.State, error) {
	return registry.NewRecordState(0), nil
}

func (WaitGroupHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	return &sync.WaitGroup{}, nil
}

func (WaitGroupHandler) PopulateShell(shell any, resolved registry.State) error {
	if _, ok := shell.(*sync.WaitGroup); !ok {
		return errkind.New(errkind.UnsupportedKind, "waitgroup handler cannot populate a shell of this type")
	}
	return nil
}

// ChanHandler is the tier-3 handler for chan struct{}, standing in for an
// Event (unbuffered) or a Queue (buffered): reflect.Value exposes both Cap
// and Len for a channel without any registration needed, so the snapshot
// records capacity and current queue depth and a reconstructed channel is
// refilled to the same depth with placeholder sends. Registry.TierSpecial.
type ChanHandler struct{}

var chanStructType = reflect.TypeOf(make(chan struct{})).Elem()

func (ChanHandler) Name() string { return "chan" }

func (ChanHandler) TypeKey(v reflect.Value) ir.TypeKey { return "builtins.chan" }

func (ChanHandler) CanHandle(v reflect.Value) bool {
	return v.IsValid() && v.Kind() == reflect.Chan && v.Type().Elem() == chanStructType
}

func (ChanHandler) Handles(typeKey ir.TypeKey) bool { return typeKey == "builtins.chan" }

func (ChanHandler) Extract(v reflect.Value) (registry.State, error) {
	if v.IsNil() {
		return registry.State{}, errkind.New(errkind.UnsupportedKind, "chan handler cannot extract a nil channel")
	}
	state := registry.NewRecordState(2)
	state.Set("capacity", int64(v.Cap()))
	state.Set("depth", int64(v.Len()))
	return state, nil
}

func (ChanHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	return &chanShell{}, nil
}

func (ChanHandler) PopulateShell(shell any, resolved registry.State) error {
	s, ok := shell.(*chanShell)
	if !ok {
		return errkind.New(errkind.UnsupportedKind, "chan handler cannot populate a shell of this type")
	}
	capacity, _ := resolved.Fields["capacity"].(int64)
	depth, _ := resolved.Fields["depth"].(int64)

	ch := make(chan struct{}, capacity)
	for i := int64(0); i < depth && i < capacity; i++ {
		ch <- struct{}{}
	}
	s.ch = ch
	return nil
}

type chanShell struct {
	ch chan struct{}
}

func (s *chanShell) Finalize() any { return s.ch }
