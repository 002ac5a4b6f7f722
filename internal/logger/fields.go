package logger

import (
	"fmt"
	"log/slog"
)

// Standard field keys for structured logging across the engine and its
// client-facing surfaces (CLI, serve command). Use these keys consistently
// so log aggregation and querying stay coherent across packages.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for call correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Dispatcher walk
	// ========================================================================
	KeyOperation = "operation" // "serialize", "deserialize", "reconnect_all"
	KeyTypeKey   = "type_key"  // cucumber_type of the value being walked
	KeyHandler   = "handler"   // name of the handler selected for a value
	KeyTier      = "tier"      // resolution tier (0-4) the handler came from
	KeyObjectID  = "object_id" // assigned object id for a tagged record
	KeyDepth     = "depth"     // walk depth at the current step
	KeyPath      = "path"      // dotted path from root to the offending value

	// ========================================================================
	// Payload
	// ========================================================================
	KeyBytes       = "bytes"       // encoded/decoded byte count
	KeyCompression = "compression" // codec compression algorithm, if any
	KeyBlobKey     = "blob_key"    // content-address key for an offloaded blob

	// ========================================================================
	// Reconnect
	// ========================================================================
	KeyReconnectType = "reconnect_type" // type key of the Reconnector involved
	KeyAttr          = "attr"           // struct field name being reconnected
	KeyAuthSource    = "auth_source"    // which auth_map lookup rung resolved

	// ========================================================================
	// Server/runtime
	// ========================================================================
	KeyComponent = "component" // subsystem name: registry, codec, reconnect...
	KeyDuration  = "duration_ms"
	KeyError     = "error"
)

// TypeKey returns a structured field for a cucumber_type.
func TypeKey(typeKey string) slog.Attr {
	return slog.String(KeyTypeKey, typeKey)
}

// Handler returns a structured field for the selected handler name.
func Handler(name string) slog.Attr {
	return slog.String(KeyHandler, name)
}

// ObjectID returns a structured field for an assigned object id.
func ObjectID(id uint64) slog.Attr {
	return slog.Uint64(KeyObjectID, id)
}

// Path returns a structured field for a dotted descent path.
func Path(path string) slog.Attr {
	return slog.String(KeyPath, path)
}

// Err returns a structured field for an error value, or a no-op attr if nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, fmt.Sprintf("%v", err))
}
