package handlers

import "sync"

// ConnRegistry maps a live resource's pointer identity to caller-supplied,
// secret-stripped metadata describing how it was opened. Several tier-3
// families need this: database/sql and gorm erase the DSN once Open
// succeeds, and there's no exported accessor to recover it, so the
// embedding program records what it opened the same way it registers a
// struct type with TypeRegistry or a closure with FuncRegistry — once, up
// front, rather than the handler trying to reconstruct it after the fact.
type ConnRegistry struct {
	mu   sync.RWMutex
	meta map[any]any
}

// NewConnRegistry returns an empty ConnRegistry.
func NewConnRegistry() *ConnRegistry {
	return &ConnRegistry{meta: make(map[any]any)}
}

// Register records meta under conn's identity. conn must be a pointer or
// other comparable handle — passing the same live resource's metadata a
// second time overwrites the first.
func (r *ConnRegistry) Register(conn any, meta any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meta[conn] = meta
}

// Lookup returns the metadata registered for conn, if any.
func (r *ConnRegistry) Lookup(conn any) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.meta[conn]
	return m, ok
}

// Forget removes conn's registration, used once a handle is closed so the
// registry doesn't accumulate entries for resources the process no longer
// holds.
func (r *ConnRegistry) Forget(conn any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.meta, conn)
}
