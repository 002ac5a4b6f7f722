// Package handlers implements the tier-0 fast path and the tier-3
// specialized families from the handler ladder: loggers, regexes,
// concurrency primitives, file-like values, sockets, database connections,
// weak references, context values, subprocess handles, worker pools, and
// HTTP sessions. Each handler is grounded on the Go idiom closest to its
// value family and registered at internal/registry.TierSpecial except
// where noted.
package handlers

import (
	"reflect"

	"github.com/ceetaro/suitkaise/internal/containers"
	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/ceetaro/suitkaise/internal/registry"
)

// ScalarHandler is the tier-0 fast path for bool, every sized int/uint/float
// kind, string, []byte, nil, and the three sentinel singletons. It never
// produces a Reconnector and never recurses (there's nothing to recurse
// into — these are leaves by definition).
type ScalarHandler struct{}

func (ScalarHandler) Name() string { return "scalar" }

func (ScalarHandler) TypeKey(v reflect.Value) ir.TypeKey {
	switch {
	case !v.IsValid():
		return "builtins.NoneType"
	case v.Type() == reflect.TypeOf(containers.Ellipsis{}):
		return "builtins.ellipsis"
	case v.Type() == reflect.TypeOf(containers.NotImplemented{}):
		return "builtins.NotImplementedType"
	case v.Type() == reflect.TypeOf(containers.Empty{}):
		return "suitkaise.Empty"
	case v.Kind() == reflect.Bool:
		return "builtins.bool"
	case v.Kind() == reflect.String:
		return "builtins.str"
	case v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8:
		return "builtins.bytes"
	case isFloatKind(v.Kind()):
		return "builtins.float"
	case isComplexKind(v.Kind()):
		return "builtins.complex"
	case isUintKind(v.Kind()):
		return "builtins.int"
	default:
		return "builtins.int"
	}
}

func (ScalarHandler) CanHandle(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Type() {
	case reflect.TypeOf(containers.Ellipsis{}), reflect.TypeOf(containers.NotImplemented{}), reflect.TypeOf(containers.Empty{}):
		return true
	}
	switch v.Kind() {
	case reflect.Bool, reflect.String:
		return true
	case reflect.Slice:
		return v.Type().Elem().Kind() == reflect.Uint8
	default:
		return isIntKind(v.Kind()) || isUintKind(v.Kind()) || isFloatKind(v.Kind()) || isComplexKind(v.Kind())
	}
}

func (h ScalarHandler) Handles(typeKey ir.TypeKey) bool {
	switch typeKey {
	case "builtins.NoneType", "builtins.ellipsis", "builtins.NotImplementedType",
		"suitkaise.Empty", "builtins.bool", "builtins.str", "builtins.bytes",
		"builtins.float", "builtins.int", "builtins.complex":
		return true
	default:
		return false
	}
}

func (h ScalarHandler) Extract(v reflect.Value) (registry.State, error) {
	if !v.IsValid() {
		return registry.LeafState(ir.LeafValue{ScalarKind: ir.LeafNil}), nil
	}

	switch v.Type() {
	case reflect.TypeOf(containers.Ellipsis{}), reflect.TypeOf(containers.NotImplemented{}), reflect.TypeOf(containers.Empty{}):
		return registry.LeafState(ir.LeafValue{ScalarKind: ir.LeafSingleton}), nil
	}

	switch {
	case v.Kind() == reflect.Bool:
		return registry.LeafState(ir.LeafValue{ScalarKind: ir.LeafBool, Bool: v.Bool()}), nil
	case v.Kind() == reflect.String:
		return registry.LeafState(ir.LeafValue{ScalarKind: ir.LeafString, Str: v.String()}), nil
	case v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8:
		b := make([]byte, v.Len())
		reflect.Copy(reflect.ValueOf(b), v)
		return registry.LeafState(ir.LeafValue{ScalarKind: ir.LeafBytes, Bytes: b}), nil
	case isIntKind(v.Kind()):
		return registry.LeafState(ir.LeafValue{ScalarKind: ir.LeafInt64, Int: v.Int()}), nil
	case isUintKind(v.Kind()):
		return registry.LeafState(ir.LeafValue{ScalarKind: ir.LeafUint64, Uint: v.Uint()}), nil
	case isFloatKind(v.Kind()):
		return registry.LeafState(ir.LeafValue{ScalarKind: ir.LeafFloat64, Float: v.Float()}), nil
	case isComplexKind(v.Kind()):
		return registry.LeafState(ir.LeafValue{ScalarKind: ir.LeafComplex128, Complex: v.Complex()}), nil
	default:
		return registry.State{}, errUnsupportedScalar(v)
	}
}

func (h ScalarHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	// Leaves are materialized directly by the dispatcher in pass 2; the
	// fast path never needs a shell.
	return nil, nil
}

func (h ScalarHandler) PopulateShell(shell any, resolved registry.State) error {
	return nil
}

func isIntKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}

func isUintKind(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return false
	}
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isComplexKind(k reflect.Kind) bool {
	return k == reflect.Complex64 || k == reflect.Complex128
}
