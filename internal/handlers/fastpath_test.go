package handlers

import (
	"reflect"
	"testing"

	"github.com/ceetaro/suitkaise/internal/containers"
	"github.com/ceetaro/suitkaise/internal/ir"
)

func TestScalarHandler_CanHandle(t *testing.T) {
	h := ScalarHandler{}

	cases := []struct {
		name string
		v    any
		want bool
	}{
		{"bool", true, true},
		{"int", 42, true},
		{"uint", uint32(1), true},
		{"float", 3.14, true},
		{"string", "hi", true},
		{"bytes", []byte{1, 2}, true},
		{"complex64", complex64(1 + 2i), true},
		{"complex128", complex128(1 + 2i), true},
		{"ellipsis", containers.Ellipsis{}, true},
		{"struct", struct{ X int }{}, false},
		{"slice of int", []int{1, 2}, false},
	}

	for _, c := range cases {
		if got := h.CanHandle(reflect.ValueOf(c.v)); got != c.want {
			t.Errorf("%s: CanHandle = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestScalarHandler_ExtractInt(t *testing.T) {
	h := ScalarHandler{}
	state, err := h.Extract(reflect.ValueOf(42))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if state.Shape != ir.KindLeaf || state.Leaf.Int != 42 || state.Leaf.ScalarKind != ir.LeafInt64 {
		t.Errorf("unexpected state: %+v", state)
	}
}

func TestScalarHandler_ExtractString(t *testing.T) {
	h := ScalarHandler{}
	state, err := h.Extract(reflect.ValueOf("hello"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if state.Leaf.Str != "hello" || state.Leaf.ScalarKind != ir.LeafString {
		t.Errorf("unexpected state: %+v", state)
	}
}

func TestScalarHandler_ExtractBytes(t *testing.T) {
	h := ScalarHandler{}
	state, err := h.Extract(reflect.ValueOf([]byte{9, 9, 9}))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if string(state.Leaf.Bytes) != "\x09\x09\x09" || state.Leaf.ScalarKind != ir.LeafBytes {
		t.Errorf("unexpected state: %+v", state)
	}
}

func TestScalarHandler_ExtractNil(t *testing.T) {
	h := ScalarHandler{}
	state, err := h.Extract(reflect.Value{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if state.Leaf.ScalarKind != ir.LeafNil {
		t.Errorf("unexpected state: %+v", state)
	}
}

func TestScalarHandler_ExtractComplex(t *testing.T) {
	h := ScalarHandler{}
	state, err := h.Extract(reflect.ValueOf(complex128(3 + 4i)))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if state.Leaf.ScalarKind != ir.LeafComplex128 || state.Leaf.Complex != 3+4i {
		t.Errorf("unexpected state: %+v", state)
	}

	// A complex64 value widens to complex128, same as int8 widens to int64.
	state, err = h.Extract(reflect.ValueOf(complex64(1 + 2i)))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if state.Leaf.ScalarKind != ir.LeafComplex128 || state.Leaf.Complex != 1+2i {
		t.Errorf("unexpected state: %+v", state)
	}
}

func TestScalarHandler_TypeKeys(t *testing.T) {
	h := ScalarHandler{}

	if got := h.TypeKey(reflect.ValueOf(1)); got != "builtins.int" {
		t.Errorf("int type key = %q", got)
	}
	if got := h.TypeKey(reflect.ValueOf("s")); got != "builtins.str" {
		t.Errorf("string type key = %q", got)
	}
	if got := h.TypeKey(reflect.ValueOf(true)); got != "builtins.bool" {
		t.Errorf("bool type key = %q", got)
	}
	if got := h.TypeKey(reflect.ValueOf(complex128(1 + 1i))); got != "builtins.complex" {
		t.Errorf("complex type key = %q", got)
	}
}
