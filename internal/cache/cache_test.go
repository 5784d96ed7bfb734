package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetSetDelete(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	ctx := context.Background()

	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	val, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)
	assert.True(t, c.Exists(ctx, "k"))

	require.NoError(t, c.Delete(ctx, "k"))
	assert.False(t, c.Exists(ctx, "k"))
}

func TestClient_FailsSafe(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	mr.Close()
	ctx := context.Background()

	val, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, val)
	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.Error(t, c.Ping(ctx))

	_, err = c.IncrWindow(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNilClient(t *testing.T) {
	var c *Client
	ctx := context.Background()

	val, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, val)
	assert.NoError(t, c.Set(ctx, "k", nil, time.Second))
	assert.False(t, c.Exists(ctx, "k"))
	assert.NoError(t, c.Close())
}

func TestWindowStore_Allow(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewWindowStore(New(mr.Addr(), "", 0), "auth", 2, time.Minute)
	fixed := time.Date(2024, 1, 1, 12, 0, 30, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	for i := 0; i < 2; i++ {
		ok, err := store.Allow("1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := store.Allow("1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Allow("5.6.7.8")
	require.NoError(t, err)
	assert.True(t, ok, "identifiers are counted separately")

	store.now = func() time.Time { return fixed.Add(time.Minute) }
	ok, err = store.Allow("1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok, "next window starts fresh")
}

func TestWindowStore_AllowsWhenRedisDown(t *testing.T) {
	store := NewWindowStore(nil, "api", 1, time.Minute)
	for i := 0; i < 3; i++ {
		ok, err := store.Allow("ip")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}
