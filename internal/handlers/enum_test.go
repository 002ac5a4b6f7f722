package handlers

import (
	"reflect"
	"testing"
)

type trafficLight int

const (
	lightRed trafficLight = iota
	lightYellow
	lightGreen
)

func (l trafficLight) String() string {
	switch l {
	case lightRed:
		return "red"
	case lightYellow:
		return "yellow"
	case lightGreen:
		return "green"
	default:
		return "unknown"
	}
}

func TestEnumHandler_CanHandle(t *testing.T) {
	reg := NewEnumRegistry()
	reg.RegisterValues(lightRed, lightYellow, lightGreen)
	h := NewEnumHandler(reg)

	if !h.CanHandle(reflect.ValueOf(lightGreen)) {
		t.Error("expected CanHandle true for a registered enum value")
	}
	if h.CanHandle(reflect.ValueOf(42)) {
		t.Error("expected CanHandle false for a plain int")
	}

	unregistered := NewEnumHandler(NewEnumRegistry())
	if unregistered.CanHandle(reflect.ValueOf(lightGreen)) {
		t.Error("expected CanHandle false for an unregistered enum type")
	}
}

func TestEnumHandler_ExtractAndReconstruct(t *testing.T) {
	reg := NewEnumRegistry()
	reg.RegisterValues(lightRed, lightYellow, lightGreen)
	h := NewEnumHandler(reg)

	typeKey := h.TypeKey(reflect.ValueOf(lightYellow))
	state, err := h.Extract(reflect.ValueOf(lightYellow))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if state.Fields["repr"] != "yellow" {
		t.Errorf("repr = %v, want yellow", state.Fields["repr"])
	}

	shell, err := h.ReconstructShell(typeKey)
	if err != nil {
		t.Fatalf("ReconstructShell: %v", err)
	}
	if err := h.PopulateShell(shell, state); err != nil {
		t.Fatalf("PopulateShell: %v", err)
	}

	got := shell.(*enumShell).Finalize()
	if got != lightYellow {
		t.Errorf("Finalize = %v, want %v", got, lightYellow)
	}
}

func TestEnumHandler_PopulateShell_UnknownRepr(t *testing.T) {
	reg := NewEnumRegistry()
	reg.RegisterValues(lightRed, lightYellow, lightGreen)
	h := NewEnumHandler(reg)

	typeKey := h.TypeKey(reflect.ValueOf(lightRed))
	shell, _ := h.ReconstructShell(typeKey)

	state, _ := h.Extract(reflect.ValueOf(lightRed))
	state.Fields["repr"] = "blue"

	if err := h.PopulateShell(shell, state); err == nil {
		t.Fatal("expected error for an unregistered representation")
	}
}
