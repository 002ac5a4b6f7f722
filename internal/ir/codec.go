package ir

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ceetaro/suitkaise/internal/ir/errkind"
	"github.com/ceetaro/suitkaise/internal/xdr"
	goxdr "github.com/rasky/go-xdr/xdr2"
)

// FormatVersion is the one-byte tag prefixed to every encoded IR payload.
// Bumped whenever the wire shape of Node changes; Decode rejects any other
// value with errkind.SchemaMismatch rather than attempting a best-effort
// parse, since two engine builds talking past each other over the serve
// debug surface should fail loudly instead of misreading the tree.
const FormatVersion uint8 = 1

// Encode serializes a Node tree to its wire form: a format-version byte
// followed by the recursively-encoded node, using a hand-rolled
// bytes.Buffer walk rather than reflection since the tagged union here
// (unlike a flat struct) can't be driven through xdr2 reflection.
func Encode(n Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := xdr.WriteUint8(&buf, FormatVersion); err != nil {
		return nil, fmt.Errorf("write format version: %w", err)
	}
	if err := encodeNode(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeNode(buf *bytes.Buffer, n Node) error {
	if err := xdr.EncodeUnionDiscriminant(buf, uint32(n.Kind)); err != nil {
		return fmt.Errorf("write node kind: %w", err)
	}

	switch n.Kind {
	case KindLeaf:
		return encodeLeaf(buf, n)
	case KindContainer:
		return encodeContainer(buf, n)
	case KindRecord:
		return encodeRecord(buf, n)
	case KindBackRef:
		return xdr.WriteUint64(buf, uint64(n.RefID))
	default:
		return errkind.New(errkind.CorruptIR, fmt.Sprintf("unknown node kind %d", n.Kind))
	}
}

func encodeLeaf(buf *bytes.Buffer, n Node) error {
	if err := xdr.WriteXDRString(buf, string(n.TypeKey)); err != nil {
		return fmt.Errorf("write leaf type key: %w", err)
	}
	if err := xdr.WriteUint8(buf, uint8(n.LeafScalar.ScalarKind)); err != nil {
		return fmt.Errorf("write leaf scalar kind: %w", err)
	}

	// The scalar payload itself is a fixed, non-recursive shape, so unlike
	// the tagged-union node structure around it, it can go through the
	// real go-xdr reflection marshaler directly, run here against a
	// single basic-kind value rather than a concrete request struct.
	v := n.LeafScalar
	switch v.ScalarKind {
	case LeafBool:
		_, err := goxdr.Marshal(buf, v.Bool)
		return err
	case LeafInt64:
		_, err := goxdr.Marshal(buf, v.Int)
		return err
	case LeafUint64:
		_, err := goxdr.Marshal(buf, v.Uint)
		return err
	case LeafFloat64:
		_, err := goxdr.Marshal(buf, v.Float)
		return err
	case LeafString:
		_, err := goxdr.Marshal(buf, v.Str)
		return err
	case LeafBytes:
		_, err := goxdr.Marshal(buf, v.Bytes)
		return err
	case LeafComplex128:
		// XDR has no complex type; marshal as the [2]float64{real, imag}
		// pair go-xdr's array support already knows how to walk.
		_, err := goxdr.Marshal(buf, [2]float64{real(v.Complex), imag(v.Complex)})
		return err
	case LeafSingleton, LeafNil:
		return nil
	default:
		return errkind.New(errkind.CorruptIR, fmt.Sprintf("unknown leaf scalar kind %d", v.ScalarKind))
	}
}

func encodeContainer(buf *bytes.Buffer, n Node) error {
	if err := xdr.WriteUint64(buf, uint64(n.ID)); err != nil {
		return fmt.Errorf("write container id: %w", err)
	}
	if err := xdr.WriteXDRString(buf, string(n.TypeKey)); err != nil {
		return fmt.Errorf("write container type key: %w", err)
	}
	if err := xdr.WriteUint32(buf, uint32(len(n.ContainerElems))); err != nil {
		return fmt.Errorf("write container length: %w", err)
	}
	for i, elem := range n.ContainerElems {
		if err := encodeNode(buf, elem); err != nil {
			return fmt.Errorf("container elem %d: %w", i, err)
		}
	}
	return nil
}

func encodeRecord(buf *bytes.Buffer, n Node) error {
	if err := xdr.WriteUint64(buf, uint64(n.ID)); err != nil {
		return fmt.Errorf("write record id: %w", err)
	}
	if err := xdr.WriteXDRString(buf, string(n.TypeKey)); err != nil {
		return fmt.Errorf("write record type key: %w", err)
	}
	if err := xdr.WriteInt32(buf, int32(n.RecordTier)); err != nil {
		return fmt.Errorf("write record tier: %w", err)
	}
	if err := xdr.WriteUint32(buf, uint32(len(n.FieldOrder))); err != nil {
		return fmt.Errorf("write record field count: %w", err)
	}
	for _, key := range n.FieldOrder {
		field, ok := n.RecordFields[key]
		if !ok {
			return errkind.New(errkind.CorruptIR, fmt.Sprintf("field order names %q but RecordFields lacks it", key))
		}
		if err := xdr.WriteXDRString(buf, key); err != nil {
			return fmt.Errorf("write field key %q: %w", key, err)
		}
		if err := encodeNode(buf, field); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
	}
	return nil
}

// Decode parses a wire-encoded Node tree. Malformed input, including a
// format-version mismatch, is reported as an *errkind.Error wrapping the
// underlying decode failure.
func Decode(data []byte) (Node, error) {
	r := bytes.NewReader(data)

	version, err := xdr.DecodeUint8(r)
	if err != nil {
		return Node{}, errkind.Wrap(errkind.CorruptIR, "read format version", err)
	}
	if version != FormatVersion {
		return Node{}, errkind.New(errkind.SchemaMismatch,
			fmt.Sprintf("IR format version %d unsupported by this build (want %d)", version, FormatVersion))
	}

	n, err := decodeNode(r)
	if err != nil {
		return Node{}, errkind.Wrap(errkind.CorruptIR, "decode node", err)
	}
	return n, nil
}

func decodeNode(r io.Reader) (Node, error) {
	kind, err := xdr.DecodeUnionDiscriminant(r)
	if err != nil {
		return Node{}, fmt.Errorf("read node kind: %w", err)
	}

	switch Kind(kind) {
	case KindLeaf:
		return decodeLeaf(r)
	case KindContainer:
		return decodeContainer(r)
	case KindRecord:
		return decodeRecord(r)
	case KindBackRef:
		refID, err := xdr.DecodeUint64(r)
		if err != nil {
			return Node{}, fmt.Errorf("read backref id: %w", err)
		}
		return BackRef(ObjectID(refID)), nil
	default:
		return Node{}, fmt.Errorf("unknown node kind %d", kind)
	}
}

func decodeLeaf(r io.Reader) (Node, error) {
	typeKey, err := xdr.DecodeString(r)
	if err != nil {
		return Node{}, fmt.Errorf("read leaf type key: %w", err)
	}
	scalarKind, err := xdr.DecodeUint8(r)
	if err != nil {
		return Node{}, fmt.Errorf("read leaf scalar kind: %w", err)
	}

	v := LeafValue{ScalarKind: LeafScalarKind(scalarKind)}
	switch v.ScalarKind {
	case LeafBool:
		_, err = goxdr.Unmarshal(r, &v.Bool)
	case LeafInt64:
		_, err = goxdr.Unmarshal(r, &v.Int)
	case LeafUint64:
		_, err = goxdr.Unmarshal(r, &v.Uint)
	case LeafFloat64:
		_, err = goxdr.Unmarshal(r, &v.Float)
	case LeafString:
		_, err = goxdr.Unmarshal(r, &v.Str)
	case LeafBytes:
		_, err = goxdr.Unmarshal(r, &v.Bytes)
	case LeafComplex128:
		var parts [2]float64
		if _, err = goxdr.Unmarshal(r, &parts); err == nil {
			v.Complex = complex(parts[0], parts[1])
		}
	case LeafSingleton, LeafNil:
		// no payload
	default:
		return Node{}, fmt.Errorf("unknown leaf scalar kind %d", scalarKind)
	}
	if err != nil {
		return Node{}, fmt.Errorf("read leaf value: %w", err)
	}

	return Leaf(TypeKey(typeKey), v), nil
}

func decodeContainer(r io.Reader) (Node, error) {
	id, err := xdr.DecodeUint64(r)
	if err != nil {
		return Node{}, fmt.Errorf("read container id: %w", err)
	}
	typeKey, err := xdr.DecodeString(r)
	if err != nil {
		return Node{}, fmt.Errorf("read container type key: %w", err)
	}
	count, err := xdr.DecodeUint32(r)
	if err != nil {
		return Node{}, fmt.Errorf("read container length: %w", err)
	}

	elems := make([]Node, 0, count)
	for i := uint32(0); i < count; i++ {
		elem, err := decodeNode(r)
		if err != nil {
			return Node{}, fmt.Errorf("container elem %d: %w", i, err)
		}
		elems = append(elems, elem)
	}

	return Container(ObjectID(id), TypeKey(typeKey), elems), nil
}

func decodeRecord(r io.Reader) (Node, error) {
	id, err := xdr.DecodeUint64(r)
	if err != nil {
		return Node{}, fmt.Errorf("read record id: %w", err)
	}
	typeKey, err := xdr.DecodeString(r)
	if err != nil {
		return Node{}, fmt.Errorf("read record type key: %w", err)
	}
	tier, err := func() (int32, error) {
		v, err := xdr.DecodeInt32(r)
		return v, err
	}()
	if err != nil {
		return Node{}, fmt.Errorf("read record tier: %w", err)
	}
	count, err := xdr.DecodeUint32(r)
	if err != nil {
		return Node{}, fmt.Errorf("read record field count: %w", err)
	}

	fields := make(map[string]Node, count)
	order := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		key, err := xdr.DecodeString(r)
		if err != nil {
			return Node{}, fmt.Errorf("read field %d key: %w", i, err)
		}
		field, err := decodeNode(r)
		if err != nil {
			return Node{}, fmt.Errorf("field %q: %w", key, err)
		}
		fields[key] = field
		order = append(order, key)
	}

	return Record(ObjectID(id), TypeKey(typeKey), int(tier), fields, order), nil
}
