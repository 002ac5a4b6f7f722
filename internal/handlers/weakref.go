package handlers

import (
	"reflect"
	"weak"

	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/ceetaro/suitkaise/internal/ir/errkind"
	"github.com/ceetaro/suitkaise/internal/registry"
)

var weakPackagePath = reflect.TypeOf((*weak.Pointer[struct{}])(nil)).Elem().PkgPath()

// isWeakPointer reports whether t is some instantiation of weak.Pointer[T].
// Each instantiation reports a distinct Name() ("Pointer[int]",
// "Pointer[string]", ...), so only the package path and the generic base
// name are compared.
func isWeakPointer(t reflect.Type) bool {
	if t.PkgPath() != weakPackagePath {
		return false
	}
	name := t.Name()
	return len(name) >= len("Pointer[") && name[:len("Pointer[")] == "Pointer["
}

// WeakPointerHandler is the tier-3 handler for weak.Pointer[T] values.
// Registry.TierSpecial. A weak pointer's referent may already be collected
// by the time Extract runs, and even when live, nothing obliges it to
// survive until deserialize time on the other end — so this never
// produces a Reconnector; deserialize always yields a cleared
// weak.Pointer[struct{}]{}, whatever T the original had, and the record instead notes whether the referent
// was still reachable at extraction time for inspection purposes.
type WeakPointerHandler struct{}

func (WeakPointerHandler) Name() string { return "weakptr" }

func (WeakPointerHandler) TypeKey(v reflect.Value) ir.TypeKey { return "suitkaise.WeakPointer" }

func (WeakPointerHandler) CanHandle(v reflect.Value) bool {
	return v.IsValid() && isWeakPointer(v.Type())
}

func (WeakPointerHandler) Handles(typeKey ir.TypeKey) bool { return typeKey == "suitkaise.WeakPointer" }

func (WeakPointerHandler) Extract(v reflect.Value) (registry.State, error) {
	valueMethod := v.MethodByName("Value")
	if !valueMethod.IsValid() {
		return registry.State{}, errkind.New(errkind.UnsupportedKind, "weak pointer handler received a value with no Value method")
	}
	results := valueMethod.Call(nil)
	referent := results[0]
	alive := !referent.IsNil()

	state := registry.NewRecordState(1)
	state.Set("alive", alive)
	return state, nil
}

func (WeakPointerHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	return &weakPointerShell{}, nil
}

func (WeakPointerHandler) PopulateShell(shell any, resolved registry.State) error {
	_, ok := shell.(*weakPointerShell)
	if !ok {
		return errkind.New(errkind.UnsupportedKind, "weak pointer handler cannot populate a shell of this type")
	}
	return nil
}

// weakPointerShell always finalizes to the zero weak.Pointer[struct{}] —
// there is no referent to re-point at on the other side of a reconnect, so
// every reconstructed weak pointer comes back cleared.
type weakPointerShell struct{}

func (s *weakPointerShell) Finalize() any { return weak.Pointer[struct{}]{} }
