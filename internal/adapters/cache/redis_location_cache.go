package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"foodcart-service/internal/domain"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "geocode_"

type redisEntry struct {
	Found bool    `json:"found"`
	Lat   float64 `json:"lat,omitempty"`
	Lon   float64 `json:"lon,omitempty"`
}

// RedisLocationCache is a ports.LocationCache shared by every process that
// talks to the same Redis. Redis enforces the TTL through key expiry.
type RedisLocationCache struct {
	client *redis.Client
}

func NewRedisLocationCache(client *redis.Client) *RedisLocationCache {
	return &RedisLocationCache{client: client}
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return client, nil
}

func (r *RedisLocationCache) Get(ctx context.Context, address string) (*domain.Coordinates, bool, error) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+address).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis location cache: get %q: %w", address, err)
	}

	var e redisEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false, fmt.Errorf("redis location cache: decode %q: %w", address, err)
	}

	if !e.Found {
		return nil, true, nil
	}
	return &domain.Coordinates{Lat: e.Lat, Lon: e.Lon}, true, nil
}

func (r *RedisLocationCache) Set(ctx context.Context, address string, coords *domain.Coordinates, ttl time.Duration) error {
	e := redisEntry{}
	if coords != nil {
		e = redisEntry{Found: true, Lat: coords.Lat, Lon: coords.Lon}
	}

	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("redis location cache: encode %q: %w", address, err)
	}

	if err := r.client.Set(ctx, redisKeyPrefix+address, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis location cache: set %q: %w", address, err)
	}
	return nil
}
