// Package redis caches the top-rated product listing.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MuthuprabhaT/BlendCart/internal/domain"
)

// Cache keys. Listings live in a hash per generation, one field per requested
// limit. Invalidate bumps the generation, so a listing computed before a
// mutation can only ever be written under a generation nobody reads again.
const (
	KeyPrefix     = "catalog:top-rated"
	GenerationKey = KeyPrefix + ":gen"
)

// ListingKey returns the hash holding the listings of generation gen.
func ListingKey(gen int64) string {
	return fmt.Sprintf("%s:%d", KeyPrefix, gen)
}

// TopRatedCache is a read-through cache of the top-rated listing.
type TopRatedCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTopRatedCache creates a cache whose entries live for ttl.
func NewTopRatedCache(client *redis.Client, ttl time.Duration) *TopRatedCache {
	return &TopRatedCache{client: client, ttl: ttl}
}

func (c *TopRatedCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, GenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get top rated generation: %w", err)
	}
	return gen, nil
}

// Get returns the cached listing for limit. ok is false on a miss; gen is the
// generation the caller must pass to Set when filling the miss.
func (c *TopRatedCache) Get(ctx context.Context, limit int) (products []domain.Product, gen int64, ok bool, err error) {
	gen, err = c.generation(ctx)
	if err != nil {
		return nil, 0, false, err
	}

	data, err := c.client.HGet(ctx, ListingKey(gen), strconv.Itoa(limit)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, gen, false, nil
		}
		return nil, gen, false, fmt.Errorf("redis hget top rated: %w", err)
	}

	if err := json.Unmarshal(data, &products); err != nil {
		return nil, gen, false, fmt.Errorf("unmarshal top rated: %w", err)
	}
	return products, gen, true, nil
}

// Set stores products as the listing for limit under generation gen. A
// listing for a generation that has since been invalidated is harmless: it is
// never read and expires with the ttl.
func (c *TopRatedCache) Set(ctx context.Context, gen int64, limit int, products []domain.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal top rated: %w", err)
	}

	key := ListingKey(gen)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, strconv.Itoa(limit), data)
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis hset top rated: %w", err)
	}
	return nil
}

// Invalidate retires every cached listing by advancing the generation.
func (c *TopRatedCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, GenerationKey).Err(); err != nil {
		return fmt.Errorf("redis incr top rated generation: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (c *TopRatedCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
