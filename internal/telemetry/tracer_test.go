package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSerializeSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartSerializeSpan(ctx, "serialize", "list")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()
}

func TestStartHandlerSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartHandlerSpan(ctx, "list_codec", 2, "list", 3)
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()
}

func TestStartReconnectSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartReconnectSpan(ctx, "db_connection", "conn")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()
}

func TestAnnotateBlob(t *testing.T) {
	ctx := context.Background()

	require.NotPanics(t, func() {
		AnnotateBlob(ctx, 1024, "zstd")
	})

	require.NotPanics(t, func() {
		AnnotateBlob(ctx, 1024, "")
	})
}

func TestAnnotateObjectID(t *testing.T) {
	ctx := context.Background()

	require.NotPanics(t, func() {
		AnnotateObjectID(ctx, 42)
	})
}

func TestAnnotatePath(t *testing.T) {
	ctx := context.Background()

	require.NotPanics(t, func() {
		AnnotatePath(ctx, "root.children[0]")
	})
}

func TestAttributeKeys(t *testing.T) {
	assert.Equal(t, "suitkaise.operation", AttrOperation)
	assert.Equal(t, "suitkaise.type_key", AttrTypeKey)
	assert.Equal(t, "suitkaise.handler", AttrHandler)
	assert.Equal(t, "suitkaise.tier", AttrTier)
	assert.Equal(t, "suitkaise.reconnect_type", AttrReconnectType)
}
