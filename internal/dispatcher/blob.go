package dispatcher

import (
	"time"

	"github.com/ceetaro/suitkaise/internal/ir"
)

// blobRefTypeKey marks a leaf node whose bytes were offloaded to an
// external store rather than inlined in the IR tree. Its LeafValue carries
// the store's content-addressed key as a string, not the bytes themselves.
const blobRefTypeKey = ir.BlobRefTypeKey

// BlobStore offloads large byte-string leaves during serialize and fetches
// them back during deserialize. The dispatcher has no storage dependency
// of its own — any content-addressed store implementing this can be
// plugged in through Options.Blob, the same way TraceSink decouples trace
// output.
type BlobStore interface {
	Put(data []byte) (key string, err error)
	Get(key string) ([]byte, error)
}

// BlobMetricsSink receives offload/fetch observations when Options.Blob is
// set, mirroring TraceSink's decoupling: the dispatcher records nothing
// itself.
type BlobMetricsSink interface {
	ObserveOffload(bytes int64, duration time.Duration)
	ObserveFetch(bytes int64, duration time.Duration)
}
