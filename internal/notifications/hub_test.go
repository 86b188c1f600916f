package notifications

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub()

	a, err := hub.Register(10, nil)
	require.NoError(t, err)
	b, err := hub.Register(10, nil)
	require.NoError(t, err)
	other, err := hub.Register(11, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, hub.Connections(10))

	hub.Broadcast(10, "hello")
	assert.Equal(t, "hello", string(<-a.Send))
	assert.Equal(t, "hello", string(<-b.Send))
	assert.Empty(t, other.Send)

	hub.Unregister(a)
	hub.Unregister(a)
	assert.Equal(t, 1, hub.Connections(10))
	_, open := <-a.Send
	assert.False(t, open, "send channel is closed on unregister")

	require.NoError(t, hub.Shutdown(context.Background()))
	assert.Equal(t, 0, hub.Connections(10))
	hub.Unregister(b)
}

func TestHub_PerUserLimit(t *testing.T) {
	hub := NewHub()
	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(1, nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(1, nil)
	assert.ErrorIs(t, err, ErrUserConnLimit)

	_, err = hub.Register(2, nil)
	assert.NoError(t, err)
	_ = hub.Shutdown(context.Background())
}

func TestHub_FullBufferDrops(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(3, nil)
	require.NoError(t, err)

	for i := 0; i < sendBuffer+5; i++ {
		hub.Broadcast(3, "x")
	}
	assert.Len(t, c.Send, sendBuffer)
	_ = hub.Shutdown(context.Background())
}

func TestParseUserChannel(t *testing.T) {
	t.Parallel()
	id, err := parseUserChannel("notifications:user:42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	_, err = parseUserChannel("notifications:broadcast")
	assert.Error(t, err)
	_, err = parseUserChannel("notifications:user:abc")
	assert.Error(t, err)
}
