package cache

import (
	"context"
	"testing"
	"time"

	"itired-backend/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewWithClient(client, ttl), mr
}

func TestCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()
	tracks := []domain.TrackRecord{
		{ID: "yandex_1", Title: "One", Artists: []string{"A"}, Source: domain.SourceChart},
	}

	_, ok := c.GetTracks(ctx, "yandex:chart")
	assert.False(t, ok)

	c.SetTracks(ctx, "yandex:chart", tracks)

	got, ok := c.GetTracks(ctx, "yandex:chart")
	require.True(t, ok)
	assert.Equal(t, tracks, got)
}

func TestCacheExpiry(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	c.SetTracks(ctx, "k", []domain.TrackRecord{{ID: "yandex_1"}})
	mr.FastForward(2 * time.Minute)

	_, ok := c.GetTracks(ctx, "k")
	assert.False(t, ok)
}

func TestNilCacheIsAMiss(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	_, ok := c.GetTracks(ctx, "k")
	assert.False(t, ok)
	// Set on a nil cache must not panic.
	c.SetTracks(ctx, "k", nil)
}

func TestEmptyAddrDisablesCache(t *testing.T) {
	assert.Nil(t, New("", "", time.Minute))
}
