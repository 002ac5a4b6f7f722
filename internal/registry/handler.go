// Package registry holds the Handler interface and the tiered, priority-
// ordered lookup that resolves a reflect.Value to the handler responsible
// for it.
package registry

import (
	"reflect"

	"github.com/ceetaro/suitkaise/internal/ir"
)

// State is the intermediate structure a Handler's Extract produces. Shape
// tells the dispatcher which IR node kind to build around the state; the
// dispatcher never recurses into a handler's internals, only into the raw
// sub-values the handler hands it in Elems/Fields, so it populates exactly
// one of the shape-specific fields below depending on Shape.
type State struct {
	Shape ir.Kind

	// Leaf holds a directly-encodable scalar (Shape == ir.KindLeaf). No
	// recursion needed; the dispatcher emits it as-is.
	Leaf ir.LeafValue

	// Elems holds ordered sub-values still needing recursive serialization
	// (Shape == ir.KindContainer): slice/array/map/set elements.
	Elems []any

	// Fields/FieldOrder hold the named attribute bag, some of whose values
	// may still be live objects (Shape == ir.KindRecord): struct fields,
	// mapping-pair entries, or a specialized handler's reconstruction
	// metadata.
	Fields     map[string]any
	FieldOrder []string

	// Reconnect, if non-nil, carries reconstruction metadata for a
	// live-resource type. The dispatcher does not encode it into the IR;
	// only Leaf, Elems and Fields reach the IR.
	Reconnect any
}

// LeafState builds a State for a tier-0 scalar.
func LeafState(v ir.LeafValue) State {
	return State{Shape: ir.KindLeaf, Leaf: v}
}

// ContainerState builds a State for a tier-0 ordered/unordered collection.
func ContainerState(elems []any) State {
	return State{Shape: ir.KindContainer, Elems: elems}
}

// NewRecordState builds an empty record-shaped State with Fields/FieldOrder
// pre-sized for n entries.
func NewRecordState(n int) State {
	return State{
		Shape:      ir.KindRecord,
		Fields:     make(map[string]any, n),
		FieldOrder: make([]string, 0, n),
	}
}

// Set appends a named field to a record-shaped state, preserving insertion
// order.
func (s *State) Set(name string, value any) {
	if _, exists := s.Fields[name]; !exists {
		s.FieldOrder = append(s.FieldOrder, name)
	}
	s.Fields[name] = value
}

// Handler is implemented by every type-specific serialization strategy: the
// tier-0 fast-path scalars/containers, tier-1 user hooks, tier-2 mapping
// pairs, tier-3 specialized families (internal/handlers), and the tier-4
// struct fallback. A Handler's Extract must never call the dispatcher or
// another Handler — recursion into sub-values extracted into State.Fields
// is the dispatcher's job, keeping handlers local and side-effect free.
type Handler interface {
	// Name identifies the handler for diagnostics (trace events, telemetry
	// spans, error messages); it is not written into the IR.
	Name() string

	// TypeKey returns the stable type-key string for v (e.g.
	// "builtins.int", "mypkg.Widget"), used as the tagged record's
	// cucumber_type and as the lookup key during reconstruction.
	TypeKey(v reflect.Value) ir.TypeKey

	// CanHandle reports whether this handler accepts v. Resolve calls
	// CanHandle in priority order and returns the first match.
	CanHandle(v reflect.Value) bool

	// Handles reports whether this handler is responsible for
	// reconstructing values tagged with typeKey. Used during
	// deserialization's shell-allocation pass, which has a cucumber_type
	// string but no live reflect.Value to run CanHandle against.
	Handles(typeKey ir.TypeKey) bool

	// Extract produces the state template for v. It must not recurse: any
	// sub-value placed in State.Fields is walked by the dispatcher, not
	// by this handler.
	Extract(v reflect.Value) (State, error)

	// ReconstructShell allocates an empty shell for typeKey without
	// running any user initializer, ready for PopulateShell to fill in.
	ReconstructShell(typeKey ir.TypeKey) (any, error)

	// PopulateShell fills shell's attributes using already-resolved
	// sub-values (the dispatcher has replaced every nested IR node with
	// its reconstructed Go value before calling this). For live-resource
	// handlers the shell is a Reconnector placeholder instead of a fully
	// live object.
	PopulateShell(shell any, resolved State) error
}

// MapEntry pairs a key and value from a mapping-shaped container (dict,
// OrderedMap). The dispatcher recognizes this type specifically: it walks
// Key and Value as two separate child nodes rather than treating the pair
// itself as a single sub-value, since a MapEntry has no handler of its own.
type MapEntry struct {
	Key   any
	Value any
}

// Finalizer is implemented by a shell whose ReconstructShell result is a
// mutable builder rather than the type's own final value. Most shells (a
// struct pointer, a map, an OrderedMap) already are the value the walk
// should return once PopulateShell is done with them; a shell that isn't
// implements Finalizer to produce the real value on demand, and the
// dispatcher substitutes that value in place of the builder wherever the
// builder would otherwise have been returned or used to resolve a
// back-reference.
type Finalizer interface {
	Finalize() any
}

// Live-resource handlers don't implement reconnection themselves: their
// ReconstructShell returns a small placeholder struct that implements
// reconnect.Reconnector directly, PopulateShell fills it from the record's
// fields, and ReconnectAll walks the resulting object graph looking for
// that interface rather than asking the handler that produced it; see
// internal/reconnect.
