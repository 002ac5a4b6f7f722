package commands

import (
	"time"

	"github.com/ceetaro/suitkaise/internal/blobstore"
	"github.com/ceetaro/suitkaise/internal/dispatcher"
	"github.com/ceetaro/suitkaise/pkg/config"
	"github.com/ceetaro/suitkaise/pkg/metrics"
)

// openBlobStore opens the badger-backed offload store named by cfg.Blob
// when cfg.Enabled is set, returning (nil, noop, nil) otherwise so callers
// can wire the result into suitkaise.Options unconditionally — a plain
// encode/decode/reconnect run never touches the blob store on disk unless
// it was explicitly turned on. The returned closer must be called once the
// command is done with the store.
func openBlobStore(cfg config.BlobConfig) (dispatcher.BlobStore, func() error, error) {
	if !cfg.Enabled {
		return nil, func() error { return nil }, nil
	}
	store, err := blobstore.Open(cfg.Path)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

// blobMetricsSink adapts metrics.BlobMetrics to dispatcher.BlobMetricsSink,
// tolerating a nil BlobMetrics (metrics disabled) the same way every
// metrics.BlobMetrics method already does.
type blobMetricsSink struct {
	m metrics.BlobMetrics
}

func newBlobMetricsSink() dispatcher.BlobMetricsSink {
	return blobMetricsSink{m: metrics.NewBlobMetrics()}
}

func (s blobMetricsSink) ObserveOffload(bytes int64, duration time.Duration) {
	if s.m == nil {
		return
	}
	s.m.ObserveOffload(bytes, duration)
}

func (s blobMetricsSink) ObserveFetch(bytes int64, duration time.Duration) {
	if s.m == nil {
		return
	}
	s.m.ObserveFetch(bytes, duration)
}
