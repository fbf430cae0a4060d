package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"batteryhub/backend/services/battery-service/internal/models"
)

const generationKey = "batteries:range:generation"

// RangeCache keeps range query results in redis. Entries are keyed by a generation
// counter; bumping it on every write orphans all earlier entries, which then expire via TTL.
type RangeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRangeCache returns redis-backed range cache.
func NewRangeCache(client *redis.Client, ttl time.Duration) *RangeCache {
	return &RangeCache{client: client, ttl: ttl}
}

func (c *RangeCache) key(generation int64, postcode1, postcode2 string) string {
	return fmt.Sprintf("batteries:range:%d:%q:%q", generation, postcode1, postcode2)
}

// Lookup returns the current generation and the cached result, if any.
func (c *RangeCache) Lookup(ctx context.Context, postcode1, postcode2 string) (int64, *models.RangeQueryResult, error) {
	generation, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, nil, err
	}

	data, err := c.client.Get(ctx, c.key(generation, postcode1, postcode2)).Bytes()
	if errors.Is(err, redis.Nil) {
		return generation, nil, nil
	}
	if err != nil {
		return 0, nil, err
	}

	var result models.RangeQueryResult
	if err := json.Unmarshal(data, &result); err != nil {
		return 0, nil, fmt.Errorf("decode cached range: %w", err)
	}
	if result.BatteryNames == nil {
		result.BatteryNames = []string{}
	}
	return generation, &result, nil
}

// Store caches result under the generation obtained from Lookup.
func (c *RangeCache) Store(ctx context.Context, generation int64, postcode1, postcode2 string, result *models.RangeQueryResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(generation, postcode1, postcode2), data, c.ttl).Err()
}

// Invalidate starts a new generation.
func (c *RangeCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, generationKey).Err()
}
