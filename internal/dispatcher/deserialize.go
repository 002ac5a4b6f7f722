package dispatcher

import (
	"fmt"
	"time"

	"github.com/ceetaro/suitkaise/internal/containers"
	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/ceetaro/suitkaise/internal/ir/errkind"
	"github.com/ceetaro/suitkaise/internal/registry"
)

type deserializeWalk struct {
	d      *Dispatcher
	shells map[ir.ObjectID]any
	opts   Options
}

// allocateShells is pass 1 of deserialization: walk the whole tree once,
// reconstructing an empty shell for every identity-bearing node before any
// field is populated, so a back-reference encountered in pass 2 always
// finds its target already allocated regardless of traversal order.
func (w *deserializeWalk) allocateShells(n ir.Node) error {
	switch n.Kind {
	case ir.KindContainer, ir.KindRecord:
		if _, exists := w.shells[n.ID]; !exists {
			h, ok := w.d.registry.HandlerFor(n.TypeKey)
			if !ok {
				return errkind.New(errkind.UnknownHandler, fmt.Sprintf("no handler registered for type key %q", n.TypeKey))
			}
			shell, err := h.ReconstructShell(n.TypeKey)
			if err != nil {
				return err
			}
			w.shells[n.ID] = shell
		}
		if n.Kind == ir.KindContainer {
			for _, c := range n.ContainerElems {
				if err := w.allocateShells(c); err != nil {
					return err
				}
			}
		} else {
			for _, key := range n.FieldOrder {
				if err := w.allocateShells(n.RecordFields[key]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// populate is pass 2: recursively resolves every child to its final Go
// value, then hands the resolved bag to the handler's PopulateShell. A
// shell that is only a mutable builder (registry.Finalizer) is converted to
// its real value immediately after population, and that real value — not
// the builder — is what back-references from here on resolve to.
func (w *deserializeWalk) populate(n ir.Node, path []string) (any, error) {
	if w.opts.Verbose && n.Kind != ir.KindBackRef {
		w.opts.sink().Trace(TraceEvent{
			Operation: "deserialize",
			Path:      pathString(path),
			TypeKey:   n.TypeKey,
			Tier:      n.RecordTier,
			ObjectID:  n.ID,
		})
	}
	switch n.Kind {
	case ir.KindLeaf:
		if n.TypeKey == blobRefTypeKey {
			return w.fetchBlob(n.LeafScalar.Str, path)
		}
		return leafToAny(n.TypeKey, n.LeafScalar), nil

	case ir.KindBackRef:
		v, ok := w.shells[n.RefID]
		if !ok {
			return nil, wrapPathErr(errkind.New(errkind.CorruptIR, fmt.Sprintf("back-reference to unresolved object id %d", n.RefID)), path, w.opts.Debug)
		}
		return v, nil

	case ir.KindContainer:
		shell := w.shells[n.ID]
		elems, err := w.populateContainerElems(n, path)
		if err != nil {
			return nil, err
		}
		h, ok := w.d.registry.HandlerFor(n.TypeKey)
		if !ok {
			return nil, wrapPathErr(errkind.New(errkind.UnknownHandler, fmt.Sprintf("no handler registered for type key %q", n.TypeKey)), path, w.opts.Debug)
		}
		if err := h.PopulateShell(shell, registry.ContainerState(elems)); err != nil {
			return nil, wrapPathErr(err, path, w.opts.Debug)
		}
		final := finalizeShell(shell)
		w.shells[n.ID] = final
		return final, nil

	case ir.KindRecord:
		shell := w.shells[n.ID]
		state := registry.NewRecordState(len(n.FieldOrder))
		for _, key := range n.FieldOrder {
			v, err := w.populate(n.RecordFields[key], append(path, key))
			if err != nil {
				return nil, err
			}
			state.Set(key, v)
		}
		h, ok := w.d.registry.HandlerFor(n.TypeKey)
		if !ok {
			return nil, wrapPathErr(errkind.New(errkind.UnknownHandler, fmt.Sprintf("no handler registered for type key %q", n.TypeKey)), path, w.opts.Debug)
		}
		if err := h.PopulateShell(shell, state); err != nil {
			return nil, wrapPathErr(err, path, w.opts.Debug)
		}
		final := finalizeShell(shell)
		w.shells[n.ID] = final
		return final, nil

	default:
		return nil, wrapPathErr(fmt.Errorf("cannot populate unknown node kind %d", n.Kind), path, w.opts.Debug)
	}
}

// populateContainerElems resolves a container's children to final values.
// Dict and OrderedMap elements were flattened into consecutive (key, value)
// node pairs on the serialize side (registry.MapEntry has no handler of its
// own), so those two type keys are reassembled pairwise here; every other
// container type key consumes one element per child node.
func (w *deserializeWalk) populateContainerElems(n ir.Node, path []string) ([]any, error) {
	if n.TypeKey != "builtins.dict" && n.TypeKey != "suitkaise.OrderedMap" {
		elems := make([]any, len(n.ContainerElems))
		for i, child := range n.ContainerElems {
			v, err := w.populate(child, append(path, fmt.Sprintf("[%d]", i)))
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return elems, nil
	}

	if len(n.ContainerElems)%2 != 0 {
		return nil, wrapPathErr(errkind.New(errkind.CorruptIR, "mapping container has an odd element count"), path, w.opts.Debug)
	}
	pairs := make([]any, 0, len(n.ContainerElems)/2)
	for i := 0; i < len(n.ContainerElems); i += 2 {
		k, err := w.populate(n.ContainerElems[i], append(path, fmt.Sprintf("[%d].key", i/2)))
		if err != nil {
			return nil, err
		}
		v, err := w.populate(n.ContainerElems[i+1], append(path, fmt.Sprintf("[%d].value", i/2)))
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, registry.MapEntry{Key: k, Value: v})
	}
	return pairs, nil
}

// finalizeShell converts a builder shell to its real value via
// registry.Finalizer; shells that already are their own final value (a map,
// an *OrderedMap, a *Set, a struct pointer) pass through unchanged.
func finalizeShell(shell any) any {
	if f, ok := shell.(registry.Finalizer); ok {
		return f.Finalize()
	}
	return shell
}

// fetchBlob resolves a suitkaise.BlobRef leaf back to its original bytes
// via the configured BlobStore.
func (w *deserializeWalk) fetchBlob(key string, path []string) (any, error) {
	if w.opts.Blob == nil {
		return nil, wrapPathErr(errkind.New(errkind.ReconnectFailed, "payload references an offloaded blob but no BlobStore is configured for this Deserialize call"), path, w.opts.Debug || w.opts.Verbose)
	}
	start := time.Now()
	data, err := w.opts.Blob.Get(key)
	if err != nil {
		return nil, wrapPathErr(errkind.Wrap(errkind.ReconnectFailed, "blob fetch", err), path, w.opts.Debug || w.opts.Verbose)
	}
	if w.opts.BlobMetrics != nil {
		w.opts.BlobMetrics.ObserveFetch(int64(len(data)), time.Since(start))
	}
	return data, nil
}

// leafToAny widens a decoded LeafValue back into a plain Go value. Integer
// and unsigned-integer leaves widen to int64/uint64 rather than the
// original sized type — Go's lack of runtime generics means a
// deserialize call has no way to know the original int8 vs int64 distinction
// without a struct field's declared type to narrow against, which
// PopulateShell handles for record fields via reflect assignment.
func leafToAny(typeKey ir.TypeKey, lv ir.LeafValue) any {
	switch lv.ScalarKind {
	case ir.LeafNil:
		return nil
	case ir.LeafBool:
		return lv.Bool
	case ir.LeafInt64:
		return lv.Int
	case ir.LeafUint64:
		return lv.Uint
	case ir.LeafFloat64:
		return lv.Float
	case ir.LeafString:
		return lv.Str
	case ir.LeafBytes:
		out := make([]byte, len(lv.Bytes))
		copy(out, lv.Bytes)
		return out
	case ir.LeafComplex128:
		return lv.Complex
	case ir.LeafSingleton:
		switch typeKey {
		case "builtins.ellipsis":
			return containers.Ellipsis{}
		case "builtins.NotImplementedType":
			return containers.NotImplemented{}
		case "suitkaise.Empty":
			return containers.Empty{}
		default:
			return nil
		}
	default:
		return nil
	}
}
