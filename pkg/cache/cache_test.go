package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func TestMemoryCache_TTL(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)}
	c := NewMemoryCache().WithClock(clock.now)

	require.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var got map[string]int
	found, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, got["a"])

	ttl, _ := c.TTL(ctx, "k")
	assert.Equal(t, time.Minute, ttl)

	clock.t = clock.t.Add(time.Minute)
	found, err = c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)

	ttl, _ = c.TTL(ctx, "k")
	assert.Equal(t, -2*time.Second, ttl)
}

func TestRemember(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	calls := 0
	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"offer-a", "offer-b"}, nil
	}

	first, err := Remember(ctx, c, "live", time.Minute, load)
	require.NoError(t, err)
	second, err := Remember(ctx, c, "live", time.Minute, load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	require.NoError(t, c.Delete(ctx, "live"))
	_, err = Remember(ctx, c, "live", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRemember_LoadError(t *testing.T) {
	boom := errors.New("db down")
	_, err := Remember(context.Background(), NewMemoryCache(), "live", time.Minute,
		func(context.Context) ([]string, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}
