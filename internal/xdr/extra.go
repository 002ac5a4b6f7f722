package xdr

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// WriteFloat64 encodes a 64-bit float in XDR format as its raw IEEE-754 bit
// pattern, big-endian. XDR (RFC 4506 §4.7) calls this a "double".
func WriteFloat64(buf *bytes.Buffer, v float64) error {
	return WriteUint64(buf, math.Float64bits(v))
}

// DecodeFloat64 decodes a 64-bit float from its XDR "double" bit pattern.
func DecodeFloat64(reader io.Reader) (float64, error) {
	bits, err := DecodeUint64(reader)
	if err != nil {
		return 0, fmt.Errorf("read float64: %w", err)
	}
	return math.Float64frombits(bits), nil
}

// DecodeInt64 decodes a 64-bit signed integer ("hyper") from XDR format.
func DecodeInt64(reader io.Reader) (int64, error) {
	var v int64
	if err := binary.Read(reader, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("read int64: %w", err)
	}
	return v, nil
}

// WriteUint8 encodes a single byte. XDR pads everything to 4-byte boundaries
// for variable-length data, but fixed single-byte tags (like a union
// discriminant narrower than uint32, or the IR format-version byte) are
// written unpadded since their position in the stream is already fixed.
func WriteUint8(buf *bytes.Buffer, v uint8) error {
	return buf.WriteByte(v)
}

// DecodeUint8 decodes a single byte.
func DecodeUint8(reader io.Reader) (uint8, error) {
	var b [1]byte
	if _, err := io.ReadFull(reader, b[:]); err != nil {
		return 0, fmt.Errorf("read uint8: %w", err)
	}
	return b[0], nil
}
