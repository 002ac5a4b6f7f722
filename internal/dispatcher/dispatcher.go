// Package dispatcher walks an object graph against a registry.Registry to
// produce IR, and walks IR back into a reconstructed object graph. It owns
// identity tracking, path-stack error wrapping, and trace emission; the
// handlers it calls are required to stay non-recursive — a handler's
// Extract/PopulateShell never invokes another handler directly, only
// returns state for the dispatcher itself to recurse into.
package dispatcher

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/ceetaro/suitkaise/internal/identity"
	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/ceetaro/suitkaise/internal/ir/errkind"
	"github.com/ceetaro/suitkaise/internal/registry"
	"github.com/ceetaro/suitkaise/internal/telemetry"
)

// TraceEvent is one step of a verbose walk, streamed to a TraceSink. It
// carries enough to reconstruct a human-readable trace without the sink
// needing access to the dispatcher's internals.
type TraceEvent struct {
	Operation string // "serialize" or "deserialize"
	Path      string
	TypeKey   ir.TypeKey
	Handler   string
	Tier      int
	ObjectID  ir.ObjectID
}

// TraceSink receives TraceEvents during a verbose walk. The core has no
// output dependency of its own; internal/logger's color palette and the
// serve SSE endpoint are both TraceSink implementations.
type TraceSink interface {
	Trace(TraceEvent)
}

type noopSink struct{}

func (noopSink) Trace(TraceEvent) {}

// Options configures one Serialize/Deserialize call.
type Options struct {
	// Debug attaches the path stack to a returned error.
	Debug bool

	// Verbose streams TraceEvents to Sink as the walk proceeds. Implies
	// Debug.
	Verbose bool

	// Sink receives TraceEvents when Verbose is set. Defaults to a no-op
	// sink if nil.
	Sink TraceSink

	// Context carries OpenTelemetry span parentage; defaults to
	// context.Background().
	Context context.Context

	// Blob offloads builtins.bytes leaves at or above BlobThreshold to an
	// external content-addressed store instead of inlining them in the IR
	// tree. Nil disables offload regardless of BlobThreshold.
	Blob BlobStore

	// BlobThreshold is the minimum leaf byte-string size that triggers
	// offload. Zero uses defaultBlobThreshold.
	BlobThreshold int

	// BlobMetrics receives offload/fetch observations when Blob is set.
	BlobMetrics BlobMetricsSink

	// Compress zstd-compresses the wire-encoded IR bytes Serialize
	// produces. Ignored when Debug or Verbose is set, so a captured trace
	// fixture stays human-readable without a decompression step.
	Compress bool

	// CompressMinSize is the smallest encoded payload Compress will run
	// through zstd. Zero uses defaultCompressMinSize.
	CompressMinSize int
}

// defaultBlobThreshold is 64 KiB, matching the smallest bucket of the
// suitkaise_blob_offload_bytes/suitkaise_blob_fetch_bytes histograms.
const defaultBlobThreshold = 64 * 1024

func (o Options) blobThreshold() int {
	if o.BlobThreshold <= 0 {
		return defaultBlobThreshold
	}
	return o.BlobThreshold
}

func (o Options) sink() TraceSink {
	if o.Sink == nil {
		return noopSink{}
	}
	return o.Sink
}

func (o Options) ctx() context.Context {
	if o.Context == nil {
		return context.Background()
	}
	return o.Context
}

// Dispatcher walks object graphs through a fixed Registry. One Dispatcher
// can safely serve many concurrent Serialize/Deserialize calls — all
// mutable per-call state (identity tracker, path stack) lives in the walk,
// not on the Dispatcher.
type Dispatcher struct {
	registry *registry.Registry
}

// New returns a Dispatcher backed by reg.
func New(reg *registry.Registry) *Dispatcher {
	return &Dispatcher{registry: reg}
}

// Serialize converts v into wire-encoded IR bytes.
func (d *Dispatcher) Serialize(v any, opts Options) ([]byte, error) {
	node, err := d.SerializeIR(v, opts)
	if err != nil {
		return nil, err
	}
	data, err := ir.Encode(node)
	if err != nil {
		return nil, err
	}
	return CompressPayload(data, opts)
}

// SerializeIR converts v into an IR Node tree without wire-encoding it,
// used by the inspect CLI and the JSON projection.
func (d *Dispatcher) SerializeIR(v any, opts Options) (ir.Node, error) {
	ctx, span := telemetry.StartSerializeSpan(opts.ctx(), "serialize", fmt.Sprintf("%T", v))
	defer span.End()
	opts.Context = ctx

	w := &serializeWalk{
		d:       d,
		tracker: identity.NewTracker(),
		opts:    opts,
	}
	return w.walk(reflect.ValueOf(v), nil)
}

// Deserialize reconstructs an object graph from wire-encoded IR bytes.
func (d *Dispatcher) Deserialize(data []byte, opts Options) (any, error) {
	raw, err := DecompressPayload(data)
	if err != nil {
		return nil, err
	}
	node, err := ir.Decode(raw)
	if err != nil {
		return nil, err
	}
	return d.DeserializeIR(node, opts)
}

// DeserializeIR reconstructs an object graph from an already-decoded IR
// Node tree in two passes: pass 1 allocates shells for every
// identity-bearing node, pass 2 populates them and resolves back-references
// against the shell map.
func (d *Dispatcher) DeserializeIR(root ir.Node, opts Options) (any, error) {
	ctx, span := telemetry.StartSerializeSpan(opts.ctx(), "deserialize", string(root.TypeKey))
	defer span.End()
	opts.Context = ctx
	if opts.Verbose {
		opts.Debug = true
	}

	w := &deserializeWalk{
		d:       d,
		shells:  make(map[ir.ObjectID]any),
		opts:    opts,
	}

	if err := w.allocateShells(root); err != nil {
		return nil, err
	}
	return w.populate(root, nil)
}

// ToJSONable serializes v and projects the resulting IR into plain Go
// values suitable for json.Marshal.
func (d *Dispatcher) ToJSONable(v any, opts Options) (any, error) {
	node, err := d.SerializeIR(v, opts)
	if err != nil {
		return nil, err
	}
	return ir.ToJSONable(node)
}

// ToJSON serializes v and renders the resulting IR as a JSON string.
func (d *Dispatcher) ToJSON(v any, indent bool, sortKeys bool, opts Options) (string, error) {
	node, err := d.SerializeIR(v, opts)
	if err != nil {
		return "", err
	}
	return ir.ToJSON(node, indent, sortKeys)
}

// pathString renders a path stack as a dotted/bracketed descent string,
// e.g. "root.Items[3].Handler".
func pathString(path []string) string {
	if len(path) == 0 {
		return "root"
	}
	var b strings.Builder
	b.WriteString("root")
	for _, seg := range path {
		if strings.HasPrefix(seg, "[") {
			b.WriteString(seg)
		} else {
			b.WriteString(".")
			b.WriteString(seg)
		}
	}
	return b.String()
}

// wrapPathErr attaches the dotted path that reached the offending value to
// err when debug is enabled.
func wrapPathErr(err error, path []string, debug bool) error {
	if err == nil || !debug {
		return err
	}
	var kindErr *errkind.Error
	if e, ok := err.(*errkind.Error); ok {
		kindErr = e
	} else {
		kindErr = errkind.Wrap(errkind.UnsupportedKind, "handler error", err)
	}
	return kindErr.WithPath(pathString(path))
}
