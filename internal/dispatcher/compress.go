package dispatcher

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// compressMagic tags the first byte of a Serialize result so Deserialize
// knows whether the rest is a raw ir.Encode payload or a zstd frame, since
// Options.Compress is a per-call choice the decoding side has no other way
// to learn.
const (
	compressMagicRaw  byte = 0x00
	compressMagicZstd byte = 0x01
)

var (
	zstdEncoder     *zstd.Encoder
	zstdEncoderOnce sync.Once
	zstdEncoderErr  error

	zstdDecoder     *zstd.Decoder
	zstdDecoderOnce sync.Once
	zstdDecoderErr  error
)

// sharedZstdEncoder lazily builds the process-wide encoder. zstd.Encoder's
// EncodeAll is documented safe for concurrent use, so one instance is
// shared across every Serialize call rather than built per call.
func sharedZstdEncoder() (*zstd.Encoder, error) {
	zstdEncoderOnce.Do(func() {
		zstdEncoder, zstdEncoderErr = zstd.NewWriter(nil)
	})
	return zstdEncoder, zstdEncoderErr
}

func sharedZstdDecoder() (*zstd.Decoder, error) {
	zstdDecoderOnce.Do(func() {
		zstdDecoder, zstdDecoderErr = zstd.NewReader(nil)
	})
	return zstdDecoder, zstdDecoderErr
}

// defaultCompressMinSize is the smallest encoded payload Compress will
// bother running through zstd when Options.CompressMinSize is unset;
// below this the frame overhead usually outweighs the savings.
const defaultCompressMinSize = 256

func (o Options) compressMinSize() int {
	if o.CompressMinSize <= 0 {
		return defaultCompressMinSize
	}
	return o.CompressMinSize
}

// CompressPayload prepends a one-byte tag to data and, when opts enables
// it, zstd-compresses it first. Debug and Verbose leave the payload raw so
// a captured fixture stays readable without piping it through a
// decompressor first. Exported so tools decoding wire-encoded IR directly
// (inspect, decode) can strip the tag the same way Deserialize does.
func CompressPayload(data []byte, opts Options) ([]byte, error) {
	if !opts.Compress || opts.Debug || opts.Verbose || len(data) < opts.compressMinSize() {
		return append([]byte{compressMagicRaw}, data...), nil
	}
	enc, err := sharedZstdEncoder()
	if err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}
	compressed := enc.EncodeAll(data, make([]byte, 0, len(data)+1))
	return append([]byte{compressMagicZstd}, compressed...), nil
}

// DecompressPayload strips CompressPayload's tag byte, decompressing first
// if it was set.
func DecompressPayload(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("decompress: empty payload")
	}
	tag, body := data[0], data[1:]
	switch tag {
	case compressMagicRaw:
		return body, nil
	case compressMagicZstd:
		dec, err := sharedZstdDecoder()
		if err != nil {
			return nil, fmt.Errorf("decompress: %w", err)
		}
		out, err := dec.DecodeAll(body, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("decompress: unrecognized payload tag %#x", tag)
	}
}
