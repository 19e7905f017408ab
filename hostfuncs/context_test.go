package hostfuncs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPortContext(t *testing.T) {
	pc := NewPortContext(context.Background(), "userFilePort")

	require.NotNil(t, pc)
	assert.Equal(t, "userFilePort", pc.PortName())
}

func TestPortContext_SetGetValue(t *testing.T) {
	pc := NewPortContext(context.Background(), "p")

	_, ok := pc.GetValue("key1")
	assert.False(t, ok)

	pc.SetValue("key1", "value1")
	pc.SetValue("key2", 42)

	val, ok := pc.GetValue("key1")
	assert.True(t, ok)
	assert.Equal(t, "value1", val)

	val2, ok := pc.GetValue("key2")
	assert.True(t, ok)
	assert.Equal(t, 42, val2)
}

func TestPortContext_PropagatesCancellation(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), time.Hour)
	pc := NewPortContext(parent, "p")

	_, hasDeadline := pc.Deadline()
	assert.True(t, hasDeadline)

	cancel()
	<-pc.Done()
	assert.ErrorIs(t, pc.Err(), context.Canceled)
}

func TestPortContextFrom(t *testing.T) {
	existing := NewPortContext(context.Background(), "p")
	assert.Same(t, existing, PortContextFrom(existing, "p"))

	other := PortContextFrom(existing, "q")
	assert.NotSame(t, existing, other)
	assert.Equal(t, "q", other.PortName())

	fresh := PortContextFrom(context.Background(), "r")
	assert.Equal(t, "r", fresh.PortName())
}
