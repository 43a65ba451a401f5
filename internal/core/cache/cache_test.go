package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stats struct {
	Total int64 `json:"total"`
}

func TestNilCachePassesThrough(t *testing.T) {
	var c *Cache
	assert.Nil(t, New("", "", 0))
	assert.False(t, c.Enabled())

	calls := 0
	load := func(context.Context) (*stats, error) {
		calls++
		return &stats{Total: 3}, nil
	}
	for i := 0; i < 2; i++ {
		v, err := GetOrLoadJSON(c, context.Background(), "stats:test", time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, int64(3), v.Total)
	}
	assert.Equal(t, 2, calls)

	assert.NoError(t, c.Invalidate(context.Background(), "stats:test"))
	assert.NoError(t, c.Ping(context.Background()))
	assert.NoError(t, c.Close())
}

func TestNilCacheReturnsLoadError(t *testing.T) {
	boom := errors.New("boom")
	_, err := GetOrLoadJSON(nil, context.Background(), "k", time.Minute, func(context.Context) (*stats, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestNewBuildsClient(t *testing.T) {
	c := New("127.0.0.1:6379", "", 2)
	require.NotNil(t, c)
	defer c.Close()
	assert.True(t, c.Enabled())
	assert.Equal(t, 2, c.RDB.Options().DB)
}

func TestGetOrLoadJSONHitsAndInvalidates(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	defer c.Close()
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (*stats, error) {
		calls++
		return &stats{Total: int64(calls)}, nil
	}

	v, err := GetOrLoadJSON(c, ctx, "stats:donations", 30*time.Second, load)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.Total)
	assert.Equal(t, 30*time.Second, mr.TTL("stats:donations"))
	got, err := mr.Get("stats:donations")
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":1}`, got)

	v, err = GetOrLoadJSON(c, ctx, "stats:donations", 30*time.Second, load)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.Total, "second read served from redis")
	assert.Equal(t, 1, calls)

	require.NoError(t, c.Invalidate(ctx, "stats:donations", "stats:absent"))
	assert.False(t, mr.Exists("stats:donations"))

	v, err = GetOrLoadJSON(c, ctx, "stats:donations", 30*time.Second, load)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v.Total)

	mr.FastForward(31 * time.Second)
	v, err = GetOrLoadJSON(c, ctx, "stats:donations", 30*time.Second, load)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v.Total, "expired entry reloads")
}

func TestGetOrLoadDoesNotCacheErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	defer c.Close()

	boom := errors.New("db down")
	_, err := c.GetOrLoad(context.Background(), "k", time.Minute, func(context.Context) ([]byte, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
	assert.NoError(t, c.Ping(context.Background()))
}
