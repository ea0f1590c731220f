package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))
		got, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)
	})

	t.Run("miss", func(t *testing.T) {
		_, err := store.Get(ctx, "absent")
		assert.True(t, errors.Is(err, ErrMiss))
	})

	t.Run("expired key misses", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "ttl", []byte("v"), time.Nanosecond))
		time.Sleep(2 * time.Millisecond)
		_, err := store.Get(ctx, "ttl")
		assert.True(t, errors.Is(err, ErrMiss))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "d", []byte("v"), 0))
		require.NoError(t, store.Delete(ctx, "d"))
		_, err := store.Get(ctx, "d")
		assert.True(t, errors.Is(err, ErrMiss))
	})

	t.Run("json round trip", func(t *testing.T) {
		type payload struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		}
		require.NoError(t, SetJSON(ctx, store, "j", payload{Name: "board", Count: 3}, 0))
		var got payload
		require.NoError(t, GetJSON(ctx, store, "j", &got))
		assert.Equal(t, payload{Name: "board", Count: 3}, got)
	})
}
