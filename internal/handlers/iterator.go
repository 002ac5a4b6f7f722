package handlers

import (
	"reflect"

	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/ceetaro/suitkaise/internal/ir/errkind"
	"github.com/ceetaro/suitkaise/internal/registry"
)

// isIterSeqShape reports whether t has the range-over-func iterator shape
// introduced in Go 1.23: func(yield func(V) bool) or
// func(yield func(K, V) bool), no return values.
func isIterSeqShape(t reflect.Type) bool {
	if t.Kind() != reflect.Func || t.NumIn() != 1 || t.NumOut() != 0 {
		return false
	}
	yield := t.In(0)
	if yield.Kind() != reflect.Func || yield.NumOut() != 1 || yield.Out(0).Kind() != reflect.Bool {
		return false
	}
	return yield.NumIn() == 1 || yield.NumIn() == 2
}

// IteratorHandler is the tier-3 handler for iter.Seq/iter.Seq2-shaped
// range-over-func values. Registry.TierSpecial; must be registered ahead of
// FuncHandler so its shape match wins for these values before the generic
// func handler claims them. An iterator in the middle of a range has no
// capturable "paused" state through reflection, so the only thing carried
// is the originating function's registered name — the same identity
// FuncRegistry already tracks for closures — and the Reconnector always
// hands back a fresh, unstarted sequence rather than attempting to resume
// one mid-iteration.
type IteratorHandler struct {
	reg *FuncRegistry
}

// NewIteratorHandler returns an IteratorHandler backed by reg.
func NewIteratorHandler(reg *FuncRegistry) *IteratorHandler {
	return &IteratorHandler{reg: reg}
}

func (h *IteratorHandler) Name() string { return "iterator" }

func (h *IteratorHandler) TypeKey(v reflect.Value) ir.TypeKey {
	return ir.TypeKey("iter." + resolvedFuncName(v))
}

func (h *IteratorHandler) CanHandle(v reflect.Value) bool {
	return v.IsValid() && v.Kind() == reflect.Func && !v.IsNil() && isIterSeqShape(v.Type())
}

func (h *IteratorHandler) Handles(typeKey ir.TypeKey) bool {
	return len(typeKey) > len("iter.") && string(typeKey)[:len("iter.")] == "iter."
}

func (h *IteratorHandler) Extract(v reflect.Value) (registry.State, error) {
	name := runtimeName(v)
	if name == "" {
		return registry.State{}, errkind.New(errkind.UnsupportedKind, "iterator handler could not name this range-over-func value")
	}
	if _, ok := h.reg.lookup(name); !ok {
		return registry.State{}, errkind.New(errkind.UnknownHandler, "iterator function "+name+" is not registered with FuncRegistry; it cannot be reconstructed fresh on reconnect")
	}
	state := registry.NewRecordState(1)
	state.Set("name", name)
	return state, nil
}

func (h *IteratorHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	name := string(typeKey)[len("iter."):]
	return &iteratorReconnector{name: name, reg: h.reg}, nil
}

func (h *IteratorHandler) PopulateShell(shell any, resolved registry.State) error {
	return nil
}

// iteratorReconnector resolves back to the registered iterator factory,
// producing a new, unstarted sequence each time Reconnect runs.
type iteratorReconnector struct {
	name string
	reg  *FuncRegistry
}

func (r *iteratorReconnector) ReconnectTypeKey() string { return "iter." + r.name }

func (r *iteratorReconnector) Reconnect(auth any) (any, error) {
	fn, ok := r.reg.lookup(r.name)
	if !ok {
		return nil, errkind.New(errkind.ReconnectFailed, "iterator function "+r.name+" is not registered with this process's FuncRegistry")
	}
	return fn, nil
}
