// Package identity assigns stable object identities to the reference-typed
// values a dispatcher pass visits, so shared references and cycles in the
// object graph can be represented as back-references in the IR instead of
// being duplicated or causing infinite recursion.
package identity

import (
	"reflect"

	"github.com/ceetaro/suitkaise/internal/ir"
)

// key is the internal identity key derived from a reflect.Value. Two values
// that should be considered "the same object" must derive equal keys.
type key struct {
	ptr uintptr
	len int // only meaningful for kind == reflect.Slice
}

// Tracker assigns ObjectIDs to reference-typed values in first-visit order,
// starting at 1. It is built fresh for each Serialize call (deserialize
// resolves back-references through its own shell map instead) and
// is not safe for concurrent use, matching the one-tracker-per-call
// invariant the dispatcher relies on to keep identity assignment
// deterministic within a single walk.
type Tracker struct {
	seen   map[key]ir.ObjectID
	order  []key
	nextID ir.ObjectID
}

// NewTracker returns an empty Tracker ready to assign identities starting
// at 1.
func NewTracker() *Tracker {
	return &Tracker{
		seen: make(map[key]ir.ObjectID),
	}
}

// AssignOrLookup returns the ObjectID for v, assigning a new one on first
// visit. isNew is true exactly when this is the first time this object has
// been seen by this Tracker, which the dispatcher uses to decide whether to
// emit a full node or a BackRef.
//
// Only Ptr, Map, Chan, Func, and Slice kinds are trackable; other kinds
// (including arrays and plain value structs reached by value rather than
// pointer) have no stable identity to track and AssignOrLookup panics if
// called with one, since that indicates a dispatcher bug rather than
// user input the caller should recover from.
func (t *Tracker) AssignOrLookup(v reflect.Value) (id ir.ObjectID, isNew bool) {
	k, ok := identityKey(v)
	if !ok {
		panic("identity: AssignOrLookup called with an untrackable kind " + v.Kind().String())
	}

	if id, exists := t.seen[k]; exists {
		return id, false
	}

	t.nextID++
	t.seen[k] = t.nextID
	t.order = append(t.order, k)
	return t.nextID, true
}

// Trackable reports whether v's kind carries a stable pointer identity this
// Tracker can key on. The dispatcher calls this before AssignOrLookup to
// decide whether a value needs identity tracking at all.
func Trackable(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.Slice:
		return true
	default:
		return false
	}
}

// identityKey derives the (pointer[, length]) pair that keys a trackable
// value. Ptr, Map, Chan, and Func key on their pointer alone. Slice keys on
// (pointer, length): two slices aliasing the same backing array but with
// different lengths are distinct objects for identity purposes (a
// re-slice), while two slices with the same pointer and length are treated
// as the same object even if they were produced independently — this
// matches container-identity semantics as closely as Go's value-typed
// slice header allows.
func identityKey(v reflect.Value) (key, bool) {
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func:
		if v.IsNil() {
			return key{}, false
		}
		return key{ptr: v.Pointer()}, true
	case reflect.Slice:
		if v.IsNil() {
			return key{}, false
		}
		return key{ptr: v.Pointer(), len: v.Len()}, true
	default:
		return key{}, false
	}
}

// Count returns the number of distinct identities assigned so far.
func (t *Tracker) Count() int {
	return len(t.seen)
}

// AssignFresh hands out a new ObjectID with no dedup, for non-leaf nodes
// that need an identity slot (every non-leaf IR node carries an object_id)
// but aren't built from a Trackable reflect.Value — a struct reached by
// value rather than by pointer has no stable pointer identity to key on,
// so each occurrence gets its own id and is never the target of a BackRef.
func (t *Tracker) AssignFresh() ir.ObjectID {
	t.nextID++
	return t.nextID
}
