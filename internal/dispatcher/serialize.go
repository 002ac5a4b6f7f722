package dispatcher

import (
	"fmt"
	"reflect"
	"time"

	"github.com/ceetaro/suitkaise/internal/identity"
	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/ceetaro/suitkaise/internal/ir/errkind"
	"github.com/ceetaro/suitkaise/internal/registry"
	"github.com/ceetaro/suitkaise/internal/telemetry"
)

type serializeWalk struct {
	d       *Dispatcher
	tracker *identity.Tracker
	opts    Options
}

// walk is pass 1 (the only pass on the serialize side): depth-first,
// resolving each value's handler, checking identity before descending so a
// shared or cyclic reference short-circuits into a BackRef instead of
// re-extracting, and recursing into every sub-value the handler's state
// exposes.
func (w *serializeWalk) walk(v reflect.Value, path []string) (ir.Node, error) {
	if !v.IsValid() || (isNilable(v) && v.IsNil()) {
		return ir.Leaf("builtins.NoneType", ir.LeafValue{ScalarKind: ir.LeafNil}), nil
	}

	// Unwrap interface values so Resolve sees the concrete dynamic type.
	for v.Kind() == reflect.Interface {
		v = v.Elem()
		if !v.IsValid() {
			return ir.Leaf("builtins.NoneType", ir.LeafValue{ScalarKind: ir.LeafNil}), nil
		}
	}

	var (
		id      ir.ObjectID
		trackBy bool
	)
	// A []byte becomes a leaf, and leaves carry no identity, so it is not
	// tracked: a BackRef to it would have no shell to resolve against.
	if identity.Trackable(v) && !(v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8) {
		var isNew bool
		id, isNew = w.tracker.AssignOrLookup(v)
		if !isNew {
			return ir.BackRef(id), nil
		}
		trackBy = true
	}

	h, tier := w.d.registry.ResolveWithTier(v)
	typeKey := h.TypeKey(v)

	if w.opts.Verbose {
		w.opts.sink().Trace(TraceEvent{
			Operation: "serialize",
			Path:      pathString(path),
			TypeKey:   typeKey,
			Handler:   h.Name(),
			Tier:      tier,
			ObjectID:  id,
		})
	}

	_, span := telemetry.StartHandlerSpan(w.opts.ctx(), h.Name(), tier, string(typeKey), len(path))
	state, err := h.Extract(v)
	span.End()
	if err != nil {
		return ir.Node{}, wrapPathErr(err, path, w.opts.Debug || w.opts.Verbose)
	}

	switch state.Shape {
	case ir.KindLeaf:
		if w.opts.Blob != nil && state.Leaf.ScalarKind == ir.LeafBytes && len(state.Leaf.Bytes) >= w.opts.blobThreshold() {
			return w.offloadBlob(state.Leaf.Bytes, path)
		}
		return ir.Leaf(typeKey, state.Leaf), nil

	case ir.KindContainer:
		if !trackBy {
			id = w.tracker.AssignFresh()
		}
		children := make([]ir.Node, 0, len(state.Elems))
		for i, elem := range state.Elems {
			// A MapEntry has no handler of its own: flatten it into two
			// consecutive child nodes (key, value) rather than walking the
			// pair as a single sub-value. The deserialize side consumes
			// dict/OrderedMap elements two at a time for the same reason.
			if pair, ok := elem.(registry.MapEntry); ok {
				keyNode, err := w.walk(reflect.ValueOf(pair.Key), append(path, fmt.Sprintf("[%d].key", i)))
				if err != nil {
					return ir.Node{}, err
				}
				valNode, err := w.walk(reflect.ValueOf(pair.Value), append(path, fmt.Sprintf("[%d].value", i)))
				if err != nil {
					return ir.Node{}, err
				}
				children = append(children, keyNode, valNode)
				continue
			}
			child, err := w.walk(reflect.ValueOf(elem), append(path, fmt.Sprintf("[%d]", i)))
			if err != nil {
				return ir.Node{}, err
			}
			children = append(children, child)
		}
		return ir.Container(id, typeKey, children), nil

	case ir.KindRecord:
		if !trackBy {
			id = w.tracker.AssignFresh()
		}
		fields := make(map[string]ir.Node, len(state.FieldOrder))
		for _, key := range state.FieldOrder {
			child, err := w.walk(reflect.ValueOf(state.Fields[key]), append(path, key))
			if err != nil {
				return ir.Node{}, err
			}
			fields[key] = child
		}
		return ir.Record(id, typeKey, tier, fields, state.FieldOrder), nil

	default:
		return ir.Node{}, wrapPathErr(fmt.Errorf("handler %s produced unknown state shape %d", h.Name(), state.Shape), path, w.opts.Debug || w.opts.Verbose)
	}
}

// offloadBlob writes data to the configured BlobStore and returns a
// suitkaise.BlobRef leaf carrying the store's key in place of the bytes.
func (w *serializeWalk) offloadBlob(data []byte, path []string) (ir.Node, error) {
	start := time.Now()
	key, err := w.opts.Blob.Put(data)
	if err != nil {
		return ir.Node{}, wrapPathErr(errkind.Wrap(errkind.CorruptIR, "blob offload", err), path, w.opts.Debug || w.opts.Verbose)
	}
	if w.opts.BlobMetrics != nil {
		w.opts.BlobMetrics.ObserveOffload(int64(len(data)), time.Since(start))
	}
	return ir.Leaf(blobRefTypeKey, ir.LeafValue{ScalarKind: ir.LeafString, Str: key}), nil
}

func isNilable(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return true
	default:
		return false
	}
}
