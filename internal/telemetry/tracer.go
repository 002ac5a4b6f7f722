package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used on spans emitted by the engine. Kept distinct from
// internal/logger's field keys since span attributes follow OTel's
// dot-namespaced convention rather than slog's flat keys.
const (
	AttrOperation     = "suitkaise.operation"      // serialize, deserialize, reconnect_all
	AttrTypeKey       = "suitkaise.type_key"       // cucumber_type of the value at this span
	AttrHandler       = "suitkaise.handler"        // handler name chosen by the registry
	AttrTier          = "suitkaise.tier"           // resolution tier (0-4)
	AttrObjectID      = "suitkaise.object_id"      // assigned object id for a tagged record
	AttrDepth         = "suitkaise.depth"          // walk depth
	AttrPath          = "suitkaise.path"           // dotted descent path
	AttrBytes         = "suitkaise.bytes"          // encoded/decoded byte count
	AttrCompression   = "suitkaise.compression"    // compression codec, if any
	AttrBlobKey       = "suitkaise.blob_key"       // content-address key for an offloaded blob
	AttrReconnectType = "suitkaise.reconnect_type" // type key of the Reconnector involved
	AttrReconnectAttr = "suitkaise.reconnect_attr" // struct field name being reconnected
	AttrReconnectOK   = "suitkaise.reconnect_ok"   // whether reconnection succeeded
)

// StartSerializeSpan starts a span covering one top-level Serialize or
// Deserialize call.
func StartSerializeSpan(ctx context.Context, operation, typeKey string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "suitkaise."+operation,
		trace.WithAttributes(
			attribute.String(AttrOperation, operation),
			attribute.String(AttrTypeKey, typeKey),
		),
	)
}

// StartHandlerSpan starts a span covering one handler invocation during the
// walk, recording which tier resolved it and the current depth.
func StartHandlerSpan(ctx context.Context, handlerName string, tier int, typeKey string, depth int) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "suitkaise.handler",
		trace.WithAttributes(
			attribute.String(AttrHandler, handlerName),
			attribute.Int(AttrTier, tier),
			attribute.String(AttrTypeKey, typeKey),
			attribute.Int(AttrDepth, depth),
		),
	)
}

// StartReconnectSpan starts a span covering one field's reconnection during
// a ReconnectAll pass.
func StartReconnectSpan(ctx context.Context, reconnectType, attr string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "suitkaise.reconnect",
		trace.WithAttributes(
			attribute.String(AttrReconnectType, reconnectType),
			attribute.String(AttrReconnectAttr, attr),
		),
	)
}

// AnnotateBlob records byte count and compression codec on the current span
// once a leaf's bytes have been encoded or decoded.
func AnnotateBlob(ctx context.Context, byteCount int, compression string) {
	attrs := []attribute.KeyValue{attribute.Int(AttrBytes, byteCount)}
	if compression != "" {
		attrs = append(attrs, attribute.String(AttrCompression, compression))
	}
	SetAttributes(ctx, attrs...)
}

// AnnotateObjectID records the object id assigned to a tagged record on the
// current span.
func AnnotateObjectID(ctx context.Context, objectID uint64) {
	SetAttributes(ctx, attribute.Int64(AttrObjectID, int64(objectID)))
}

// AnnotatePath records the dotted descent path on the current span, used
// when a handler error needs to surface where in the tree it occurred.
func AnnotatePath(ctx context.Context, path string) {
	SetAttributes(ctx, attribute.String(AttrPath, path))
}
