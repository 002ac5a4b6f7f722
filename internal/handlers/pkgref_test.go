package handlers

import (
	"reflect"
	"testing"

	"github.com/ceetaro/suitkaise/internal/containers"
)

func TestPackageHandler_CanHandle(t *testing.T) {
	h := NewPackageHandler(NewPackageRegistry())
	if !h.CanHandle(reflect.ValueOf(containers.Package{ImportPath: "fmt"})) {
		t.Error("expected CanHandle true for containers.Package")
	}
	if h.CanHandle(reflect.ValueOf("fmt")) {
		t.Error("expected CanHandle false for a plain string")
	}
}

func TestPackageHandler_ExtractAndReconstruct_Unregistered(t *testing.T) {
	h := NewPackageHandler(NewPackageRegistry())
	pkg := containers.Package{ImportPath: "net/http"}

	state, err := h.Extract(reflect.ValueOf(pkg))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if state.Fields["import_path"] != "net/http" {
		t.Errorf("import_path = %v, want net/http", state.Fields["import_path"])
	}

	shell, err := h.ReconstructShell(h.TypeKey(reflect.ValueOf(pkg)))
	if err != nil {
		t.Fatalf("ReconstructShell: %v", err)
	}
	if err := h.PopulateShell(shell, state); err != nil {
		t.Fatalf("PopulateShell: %v", err)
	}

	got := shell.(*packageShell).Finalize()
	rebuilt, ok := got.(containers.Package)
	if !ok || rebuilt.ImportPath != "net/http" {
		t.Errorf("Finalize = %#v, want containers.Package{ImportPath: \"net/http\"}", got)
	}
}

func TestPackageHandler_ResolvesRegisteredMarker(t *testing.T) {
	reg := NewPackageRegistry()
	marker := struct{ Name string }{Name: "http-marker"}
	reg.Register("net/http", marker)
	h := NewPackageHandler(reg)

	pkg := containers.Package{ImportPath: "net/http"}
	state, _ := h.Extract(reflect.ValueOf(pkg))
	shell, _ := h.ReconstructShell(h.TypeKey(reflect.ValueOf(pkg)))
	if err := h.PopulateShell(shell, state); err != nil {
		t.Fatalf("PopulateShell: %v", err)
	}

	got := shell.(*packageShell).Finalize()
	if got != marker {
		t.Errorf("Finalize = %#v, want the registered marker %#v", got, marker)
	}
}
