package handlers

import (
	"fmt"
	"reflect"
	"runtime"
	"sync"

	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/ceetaro/suitkaise/internal/ir/errkind"
	"github.com/ceetaro/suitkaise/internal/registry"
)

// FuncRegistry maps a name to an invocable function or method value. Go
// can't reflect a closure's captured environment the way Python can
// pickle one, so a func the embedding program wants to survive a
// round trip has to be registered under a name before the first
// serialize call that reaches it — the same constraint TypeRegistry
// places on struct types.
type FuncRegistry struct {
	mu    sync.RWMutex
	funcs map[string]any
}

// NewFuncRegistry returns an empty FuncRegistry.
func NewFuncRegistry() *FuncRegistry {
	return &FuncRegistry{funcs: make(map[string]any)}
}

// Register records fn under name. fn must be a func value; Register
// panics on anything else since this is always a programming error caught
// at init() time, not a runtime condition to recover from.
func (r *FuncRegistry) Register(name string, fn any) {
	if reflect.ValueOf(fn).Kind() != reflect.Func {
		panic(fmt.Sprintf("FuncRegistry.Register(%q): not a func value", name))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

func (r *FuncRegistry) lookup(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// runtimeName returns the best-effort name runtime.FuncForPC reports for
// v, used both as the registry lookup key and the tagged record's type
// key. Closures and bound methods report a synthetic name
// (e.g. "pkg.foo.func1", "pkg.(*T).Method-fm") rather than a clean
// identifier; callers wanting a stable name across builds must Register
// under an explicit name instead of relying on this.
func runtimeName(v reflect.Value) string {
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	fn := runtime.FuncForPC(v.Pointer())
	if fn == nil {
		return ""
	}
	return fn.Name()
}

// funcReconnector is an inert placeholder for a function value the wire
// format can only name, not carry: Reconnect resolves it back to a live
// func by looking the name up in the registry it was built from.
type funcReconnector struct {
	name string
	reg  *FuncRegistry
}

func (f *funcReconnector) ReconnectTypeKey() string { return "funcs." + f.name }

func (f *funcReconnector) Reconnect(auth any) (any, error) {
	fn, ok := f.reg.lookup(f.name)
	if !ok {
		return nil, fmt.Errorf("function %q is not registered with this process's FuncRegistry", f.name)
	}
	return fn, nil
}

// FuncHandler is the tier-3 handler for named top-level functions,
// methods, and closures. Registry.TierSpecial. An unregistered closure
// still serializes (the record carries whatever name runtime.FuncForPC
// reports), but its Reconnector fails at Reconnect time rather than at
// serialize time, since runtime.FuncForPC can't tell a registered
// function from one nobody remembered to register.
type FuncHandler struct {
	reg *FuncRegistry
}

// NewFuncHandler returns a FuncHandler backed by reg.
func NewFuncHandler(reg *FuncRegistry) *FuncHandler {
	return &FuncHandler{reg: reg}
}

func (h *FuncHandler) Name() string { return "func" }

func (h *FuncHandler) TypeKey(v reflect.Value) ir.TypeKey {
	return ir.TypeKey("funcs." + resolvedFuncName(v))
}

// resolvedFuncName falls back to a synthetic UUIDv5-derived key when
// runtime.FuncForPC can't name v at all (a nil func's zero PC, or an
// edge case where the runtime reports no *Func for the pointer) —
// rare, but it keeps TypeKey from ever emitting "funcs." with nothing
// after it.
func resolvedFuncName(v reflect.Value) string {
	if name := runtimeName(v); name != "" {
		return name
	}
	return syntheticTypeKey("closure", v.Type())
}

func (h *FuncHandler) CanHandle(v reflect.Value) bool {
	return v.IsValid() && v.Kind() == reflect.Func
}

func (h *FuncHandler) Handles(typeKey ir.TypeKey) bool {
	return len(typeKey) > len("funcs.") && string(typeKey)[:len("funcs.")] == "funcs."
}

func (h *FuncHandler) Extract(v reflect.Value) (registry.State, error) {
	if v.IsNil() {
		return registry.State{}, errkind.New(errkind.UnsupportedKind, "func handler cannot extract a nil function value")
	}
	name := resolvedFuncName(v)
	state := registry.NewRecordState(1)
	state.Set("name", name)
	state.Reconnect = name
	return state, nil
}

func (h *FuncHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	name := string(typeKey)[len("funcs."):]
	return &funcReconnector{name: name, reg: h.reg}, nil
}

func (h *FuncHandler) PopulateShell(shell any, resolved registry.State) error {
	return nil
}
