package ws

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterReplacesAndStaleUnregisterIsNoop(t *testing.T) {
	h := NewHub()
	h1 := NewClient(nil, Options{})
	h2 := NewClient(nil, Options{})

	assert.Nil(t, h.Register("s", h1))
	prev := h.Register("s", h2)
	assert.Same(t, h1, prev)

	got, ok := h.Lookup("s")
	require.True(t, ok)
	assert.Same(t, h2, got)

	assert.False(t, h.Unregister("s", h1), "stale handle must not evict the newer one")
	got, ok = h.Lookup("s")
	require.True(t, ok)
	assert.Same(t, h2, got)

	assert.True(t, h.Unregister("s", h2))
	_, ok = h.Lookup("s")
	assert.False(t, ok)
}

func TestHub_RegisterSameHandleTwice(t *testing.T) {
	h := NewHub()
	c := NewClient(nil, Options{})
	h.Register("s", c)
	assert.Nil(t, h.Register("s", c))
	assert.Equal(t, 1, h.Len())
}

func TestHub_IgnoresEmptySubject(t *testing.T) {
	h := NewHub()
	c := NewClient(nil, Options{})
	assert.Nil(t, h.Register("", c))
	assert.False(t, h.Unregister("", c))
	assert.Equal(t, 0, h.Len())
}

func TestHub_EmitOffline(t *testing.T) {
	h := NewHub()
	assert.False(t, h.Emit("nobody", "newNotification", map[string]int{"id": 1}))
}

func TestHub_EmitQueuesEnvelope(t *testing.T) {
	h := NewHub()
	c := NewClient(nil, Options{})
	h.Register("u1", c)

	require.True(t, h.Emit("u1", "newNotification", map[string]int{"id": 7}))

	raw := <-c.send
	var ev struct {
		Event string         `json:"event"`
		Data  map[string]int `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &ev))
	assert.Equal(t, "newNotification", ev.Event)
	assert.Equal(t, 7, ev.Data["id"])
}

func TestHub_EmitToClosedClientReturnsFalse(t *testing.T) {
	h := NewHub()
	c := NewClient(nil, Options{})
	h.Register("u1", c)
	c.Close()

	assert.False(t, h.Emit("u1", "newNotification", 1))
}

func TestHub_EmitToFullBufferReturnsFalse(t *testing.T) {
	h := NewHub()
	c := NewClient(nil, Options{SendBufferSize: 1})
	h.Register("u1", c)

	assert.True(t, h.Emit("u1", "e", 1))
	assert.False(t, h.Emit("u1", "e", 2))
}

func TestHub_ConcurrentRegisterUnregister(t *testing.T) {
	h := NewHub()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		subject := fmt.Sprintf("s%d", i%5)
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := NewClient(nil, Options{})
			h.Register(subject, c)
			_, _ = h.Lookup(subject)
			h.Emit(subject, "e", 1)
			h.Unregister(subject, c)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, h.Len(), 5)
}
