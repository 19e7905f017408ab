package wasmcontext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGetCurrentContext(t *testing.T) {
	ResetContext()
	assert.Equal(t, context.Background(), GetCurrentContext(), "should default to background")

	expectedCtx := context.WithValue(context.Background(), contextKey("key"), "value")
	SetCurrentContext(expectedCtx)

	actualCtx := GetCurrentContext()
	assert.Equal(t, expectedCtx, actualCtx, "context mismatch")
	assert.Equal(t, "value", actualCtx.Value(contextKey("key")))

	ResetContext()
	assert.Equal(t, context.Background(), GetCurrentContext())
}

func TestSetCurrentContext_Nil(t *testing.T) {
	SetCurrentContext(nil) //nolint:staticcheck // exercising the nil guard
	assert.Equal(t, context.Background(), GetCurrentContext())
	ResetContext()
}

func TestBeginDelivery(t *testing.T) {
	defer ResetContext()

	first := BeginDelivery("custDataPort")
	assert.Equal(t, first, GetCurrentContext())

	port, ok := PortFromContext(first)
	require.True(t, ok)
	assert.Equal(t, "custDataPort", port)

	seq1, ok := SequenceFromContext(first)
	require.True(t, ok)

	second := BeginDelivery("accDataPort")
	seq2, ok := SequenceFromContext(second)
	require.True(t, ok)
	assert.Equal(t, seq1+1, seq2)

	port, _ = PortFromContext(GetCurrentContext())
	assert.Equal(t, "accDataPort", port)
}

func TestPortFromContext_Missing(t *testing.T) {
	_, ok := PortFromContext(context.Background())
	assert.False(t, ok)
	_, ok = SequenceFromContext(context.Background())
	assert.False(t, ok)
}
