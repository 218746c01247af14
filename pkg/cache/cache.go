package cache

import (
	"context"
	"encoding/json"
	"time"

	"itired-backend/domain"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

// Cache is a short-TTL redis cache for provider responses that change slowly
// (charts, new releases). A nil *Cache is valid and behaves as a permanent
// miss, so wiring redis is optional.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(addr, password string, ttl time.Duration) *Cache {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	return &Cache{client: client, ttl: ttl}
}

func NewWithClient(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) GetTracks(ctx context.Context, key string) ([]domain.TrackRecord, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var tracks []domain.TrackRecord
	if err := json.Unmarshal(raw, &tracks); err != nil {
		return nil, false
	}
	return tracks, true
}

func (c *Cache) SetTracks(ctx context.Context, key string, tracks []domain.TrackRecord) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(tracks)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		log.Warnf("cache set %s: %v", key, err)
	}
}
