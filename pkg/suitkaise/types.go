// Package suitkaise is the public façade: Serialize, Deserialize, the IR
// and JSON projections, ReconnectAll, and the sentinel/container types the
// fast-path handlers recognize.
package suitkaise

import "github.com/ceetaro/suitkaise/internal/containers"

// Ellipsis is the Go stand-in for Python's "..." singleton.
type Ellipsis = containers.Ellipsis

// NotImplemented is the Go stand-in for Python's NotImplemented singleton.
type NotImplemented = containers.NotImplemented

// Empty marks an intentionally-empty placeholder value, distinct from Go's
// nil.
type Empty = containers.Empty

// OrderedMap is a map that preserves key insertion order.
type OrderedMap[K comparable, V any] = containers.OrderedMap[K, V]

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	return containers.NewOrderedMap[K, V]()
}

// OrderedEntry is a non-generic key/value pair read off an OrderedMap.
type OrderedEntry = containers.OrderedEntry

// Set is an unordered collection of distinct elements, mutable after
// construction.
type Set[T comparable] = containers.Set[T]

// NewSet returns a Set containing the given elements.
func NewSet[T comparable](elems ...T) *Set[T] {
	return containers.NewSet(elems...)
}

// FrozenSet is an immutable Set, constructed once and never mutated.
type FrozenSet[T comparable] = containers.FrozenSet[T]

// NewFrozenSet returns a FrozenSet containing the given elements.
func NewFrozenSet[T comparable](elems ...T) FrozenSet[T] {
	return containers.NewFrozenSet(elems...)
}

// Package is a serializable reference to an importable Go package.
type Package = containers.Package

// Pool is a minimal worker-pool type standing in for "pool/executor"
// values.
type Pool = containers.Pool

// NewPool returns an idle pool with the given worker count and queue depth.
func NewPool(maxWorkers, queueDepth int) *Pool {
	return containers.NewPool(maxWorkers, queueDepth)
}
