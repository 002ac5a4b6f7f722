package ir

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ceetaro/suitkaise/internal/ir/errkind"
)

// ToJSONable projects a Node tree into plain Go values (map[string]any,
// []any, scalars) suitable for json.Marshal, the inspect CLI's --schema
// validation, and the serve debug surface. Back-references are rendered as
// {"$ref": id} rather than resolved, matching to_json's documented "cheap,
// lossy projection for humans and tools" role; reconstructing live objects
// still goes through Deserialize.
func ToJSONable(n Node) (any, error) {
	switch n.Kind {
	case KindLeaf:
		return leafToJSONable(n)
	case KindContainer:
		elems := make([]any, len(n.ContainerElems))
		for i, elem := range n.ContainerElems {
			v, err := ToJSONable(elem)
			if err != nil {
				return nil, fmt.Errorf("container elem %d: %w", i, err)
			}
			elems[i] = v
		}
		return map[string]any{
			"$type": string(n.TypeKey),
			"$id":   n.ID,
			"items": elems,
		}, nil
	case KindRecord:
		fields := make(map[string]any, len(n.FieldOrder))
		for _, key := range n.FieldOrder {
			field, ok := n.RecordFields[key]
			if !ok {
				return nil, errkind.New(errkind.CorruptIR, fmt.Sprintf("field order names %q but RecordFields lacks it", key))
			}
			v, err := ToJSONable(field)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", key, err)
			}
			fields[key] = v
		}
		return map[string]any{
			"$type":   string(n.TypeKey),
			"$id":     n.ID,
			"fields":  fields,
			"$order":  n.FieldOrder,
		}, nil
	case KindBackRef:
		return map[string]any{"$ref": n.RefID}, nil
	default:
		return nil, errkind.New(errkind.CorruptIR, fmt.Sprintf("unknown node kind %d", n.Kind))
	}
}

func leafToJSONable(n Node) (any, error) {
	v := n.LeafScalar
	switch v.ScalarKind {
	case LeafBool:
		return v.Bool, nil
	case LeafInt64:
		return v.Int, nil
	case LeafUint64:
		return v.Uint, nil
	case LeafFloat64:
		return v.Float, nil
	case LeafString:
		if n.TypeKey == BlobRefTypeKey {
			return map[string]any{"$blobref": v.Str}, nil
		}
		return v.Str, nil
	case LeafBytes:
		return map[string]any{"$bytes": v.Bytes}, nil
	case LeafComplex128:
		return map[string]any{"$complex": [2]float64{real(v.Complex), imag(v.Complex)}}, nil
	case LeafSingleton:
		return map[string]any{"$singleton": string(n.TypeKey)}, nil
	case LeafNil:
		return nil, nil
	default:
		return nil, errkind.New(errkind.CorruptIR, fmt.Sprintf("unknown leaf scalar kind %d", v.ScalarKind))
	}
}

// ToJSON renders a Node tree as a JSON string; indent controls whether the
// output is pretty-printed. Object keys come out sorted whether or not
// sortKeys is set, because encoding/json always sorts map keys; a record's
// declaration order is carried separately in its "$order" array. The
// decode CLI passes sortKeys=true.
func ToJSON(n Node, indent bool, sortKeys bool) (string, error) {
	jsonable, err := ToJSONable(n)
	if err != nil {
		return "", err
	}
	if sortKeys {
		jsonable = sortedKeys(jsonable)
	}

	var (
		data []byte
		mErr error
	)
	if indent {
		data, mErr = json.MarshalIndent(jsonable, "", "  ")
	} else {
		data, mErr = json.Marshal(jsonable)
	}
	if mErr != nil {
		return "", fmt.Errorf("marshal IR to JSON: %w", mErr)
	}
	return string(data), nil
}

// sortedKeys recursively rebuilds maps, visiting keys in sorted order. The
// result is still a plain map[string]any, so the marshalled output is the
// same as without it: encoding/json already sorts map keys.
func sortedKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out[k] = sortedKeys(val[k])
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = sortedKeys(elem)
		}
		return out
	default:
		return v
	}
}
