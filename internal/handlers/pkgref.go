package handlers

import (
	"reflect"
	"sync"

	"github.com/ceetaro/suitkaise/internal/containers"
	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/ceetaro/suitkaise/internal/ir/errkind"
	"github.com/ceetaro/suitkaise/internal/registry"
)

var packageType = reflect.TypeOf(containers.Package{})

// PackageRegistry maps an import path to whatever marker value the
// embedding program wants a package reference to resolve back to — Go has
// no runtime import, so reconstruction can't load the package itself, only
// hand back something the program recognizes as standing for it. An
// import path with no registered marker reconstructs as a bare
// containers.Package carrying just the path.
type PackageRegistry struct {
	mu      sync.RWMutex
	markers map[string]any
}

// NewPackageRegistry returns an empty PackageRegistry.
func NewPackageRegistry() *PackageRegistry {
	return &PackageRegistry{markers: make(map[string]any)}
}

// Register records marker as the value a reference to importPath resolves
// to.
func (r *PackageRegistry) Register(importPath string, marker any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markers[importPath] = marker
}

func (r *PackageRegistry) resolve(importPath string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.markers[importPath]
	return m, ok
}

// PackageHandler is the tier-3 handler for containers.Package, a
// serializable reference to an importable package. Registry.TierSpecial.
// Like EnumHandler, this never produces a Reconnector: a package
// reference is data about an import path, not a live resource.
type PackageHandler struct {
	reg *PackageRegistry
}

// NewPackageHandler returns a PackageHandler backed by reg.
func NewPackageHandler(reg *PackageRegistry) *PackageHandler {
	return &PackageHandler{reg: reg}
}

func (h *PackageHandler) Name() string { return "package" }

func (h *PackageHandler) TypeKey(v reflect.Value) ir.TypeKey { return "suitkaise.Package" }

func (h *PackageHandler) CanHandle(v reflect.Value) bool {
	return v.IsValid() && v.Type() == packageType
}

func (h *PackageHandler) Handles(typeKey ir.TypeKey) bool { return typeKey == "suitkaise.Package" }

func (h *PackageHandler) Extract(v reflect.Value) (registry.State, error) {
	pkg, ok := v.Interface().(containers.Package)
	if !ok {
		return registry.State{}, errkind.New(errkind.UnsupportedKind, "package handler received a non-Package value")
	}
	state := registry.NewRecordState(1)
	state.Set("import_path", pkg.ImportPath)
	return state, nil
}

func (h *PackageHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	return &packageShell{reg: h.reg}, nil
}

func (h *PackageHandler) PopulateShell(shell any, resolved registry.State) error {
	s, ok := shell.(*packageShell)
	if !ok {
		return errkind.New(errkind.UnsupportedKind, "package handler cannot populate a shell of this type")
	}
	importPath, _ := resolved.Fields["import_path"].(string)
	s.importPath = importPath
	return nil
}

// packageShell resolves to a registered marker if one exists for its
// import path, falling back to a bare containers.Package.
type packageShell struct {
	importPath string
	reg        *PackageRegistry
}

func (s *packageShell) Finalize() any {
	if marker, ok := s.reg.resolve(s.importPath); ok {
		return marker
	}
	return containers.Package{ImportPath: s.importPath}
}
