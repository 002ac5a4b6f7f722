// Package ir defines the intermediate representation the dispatcher walks
// an object graph into before it is wire-encoded, and the JSON projection
// used by the inspect CLI and the serve debug surface.
package ir

// TypeKey identifies a registered handler family, struct type, or enum by
// a stable string (e.g. "builtins.int", "mypkg.Widget").
type TypeKey string

// BlobRefTypeKey marks a leaf node whose bytes were offloaded to an
// external blob store rather than inlined in the tree; its LeafValue
// carries the store's content-addressed key as a string. Defined here
// rather than in internal/dispatcher (which produces and consumes these
// nodes) so internal/ir's JSON projection can recognize the shape without
// importing dispatcher.
const BlobRefTypeKey TypeKey = "suitkaise.BlobRef"

// ObjectID identifies a single object within one serialize/deserialize call,
// assigned by the identity tracker in visitation order starting at 1. The
// zero value means "no identity assigned" (used by leaves, which aren't
// tracked).
type ObjectID uint64

// Kind distinguishes the four shapes a Node can take.
type Kind uint8

const (
	// KindLeaf is a directly-encodable scalar or opaque byte string: bool,
	// integer/float kinds, string, []byte, or the Ellipsis/NotImplemented/
	// Empty singletons.
	KindLeaf Kind = iota + 1

	// KindContainer is an ordered sequence of child nodes: slice, array,
	// map (key/value pairs, insertion order), set, frozenset.
	KindContainer

	// KindRecord is a tagged, field-named object: a struct instance, a
	// struct/type definition, or a tier-3 handler's mapping payload.
	KindRecord

	// KindBackRef is a reference to an object already emitted earlier in
	// the same tree, used to represent shared references and cycles.
	KindBackRef
)

// Node is the IR's tagged union. Exactly one of the Kind-specific fields is
// populated, selected by Kind.
type Node struct {
	Kind Kind

	// ID is the object identity assigned to this node, 0 if untracked
	// (leaves are never tracked).
	ID ObjectID

	// TypeKey names the handler family or struct type that produced this
	// node. Always set except on KindBackRef.
	TypeKey TypeKey

	// Leaf fields (KindLeaf only).
	LeafScalar LeafValue

	// Container fields (KindContainer only).
	ContainerElems []Node

	// Record fields (KindRecord only). FieldOrder preserves declaration/
	// insertion order independent of map iteration order so re-encoding
	// is deterministic.
	RecordFields   map[string]Node
	FieldOrder     []string
	RecordTier     int // which registry tier produced this record, 0-4

	// BackRef fields (KindBackRef only).
	RefID ObjectID
}

// LeafScalarKind distinguishes the representations a leaf can carry on the
// wire; Go has no single "any scalar" type, so LeafValue tags which arm of
// its union is populated.
type LeafScalarKind uint8

const (
	LeafBool LeafScalarKind = iota + 1
	LeafInt64
	LeafUint64
	LeafFloat64
	LeafString
	LeafBytes
	LeafSingleton // Ellipsis / NotImplemented / Empty, distinguished by TypeKey
	LeafNil
	LeafComplex128 // complex64/128, widened to complex128 the same way int/uint leaves widen
)

// LeafValue holds exactly one populated field, selected by ScalarKind.
type LeafValue struct {
	ScalarKind LeafScalarKind
	Bool       bool
	Int        int64
	Uint       uint64
	Float      float64
	Str        string
	Bytes      []byte
	Complex    complex128
}

// Leaf constructs a KindLeaf node with the given type key and scalar value.
func Leaf(typeKey TypeKey, v LeafValue) Node {
	return Node{Kind: KindLeaf, TypeKey: typeKey, LeafScalar: v}
}

// Container constructs a KindContainer node.
func Container(id ObjectID, typeKey TypeKey, elems []Node) Node {
	return Node{Kind: KindContainer, ID: id, TypeKey: typeKey, ContainerElems: elems}
}

// Record constructs a KindRecord node. fieldOrder must list exactly the keys
// present in fields; callers that build fields incrementally should append
// to fieldOrder as they go rather than deriving it from map iteration.
func Record(id ObjectID, typeKey TypeKey, tier int, fields map[string]Node, fieldOrder []string) Node {
	return Node{
		Kind:         KindRecord,
		ID:           id,
		TypeKey:      typeKey,
		RecordFields: fields,
		FieldOrder:   fieldOrder,
		RecordTier:   tier,
	}
}

// BackRef constructs a KindBackRef node pointing at a previously emitted
// object identity.
func BackRef(id ObjectID) Node {
	return Node{Kind: KindBackRef, RefID: id}
}
