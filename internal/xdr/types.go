// Package xdr provides generic XDR (External Data Representation) encoding and
// decoding utilities per RFC 4506.
//
// XDR is the standard data serialization format used by Sun RPC protocols
// including NFS and NLM; the engine reuses it as the wire format for the
// IR node tree since both need a self-delimited, big-endian, discriminated-
// union-friendly byte encoding.
//
// Key characteristics of XDR:
//   - Big-endian byte order for all multi-byte integers
//   - 4-byte alignment for all data types
//   - Variable-length data is preceded by a 4-byte length
//   - Strings and opaque data are padded to 4-byte boundaries
//
// This package contains only generic utilities with no dependencies on
// engine-specific packages (no logger, registry, or IR types).
//
// Reference: RFC 4506 - XDR: External Data Representation Standard
// https://tools.ietf.org/html/rfc4506
package xdr
