// Package metrics provides the Prometheus registry indirection used by the
// engine's metric collectors. Call InitRegistry once (typically from the
// serve command) to turn metrics on; every collector in this package and
// pkg/metrics/prometheus checks IsEnabled and returns nil otherwise, so
// callers pay zero overhead when metrics aren't configured.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mu       sync.RWMutex
	registry *prometheus.Registry
)

// InitRegistry creates and installs the process-wide Prometheus registry.
// Safe to call once at startup; subsequent calls replace the registry.
func InitRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()

	registry = prometheus.NewRegistry()
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()

	return registry != nil
}

// GetRegistry returns the process-wide registry, or nil if metrics are
// disabled. Collectors must check IsEnabled before calling this.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()

	return registry
}

// Reset clears the registry. Exposed for test isolation between cases that
// each want their own InitRegistry call.
func Reset() {
	mu.Lock()
	defer mu.Unlock()

	registry = nil
}
