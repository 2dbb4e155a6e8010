package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mamadbah2/agriplanner/internal/domain/models"
)

const keyPrefix = "agriplanner:price:"

// RedisPriceCache keeps recently used price quotes in Redis.
type RedisPriceCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPriceCache connects to Redis and verifies the connection.
func NewRedisPriceCache(addr, password string, db int, ttl time.Duration) (*RedisPriceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisPriceCache{client: client, ttl: ttl}, nil
}

// Get returns the cached quote for crop. The boolean is false on a miss.
func (c *RedisPriceCache) Get(ctx context.Context, crop string) (models.PriceQuote, bool, error) {
	val, err := c.client.Get(ctx, keyPrefix+crop).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.PriceQuote{}, false, nil
		}
		return models.PriceQuote{}, false, fmt.Errorf("failed to get cached price: %w", err)
	}

	var quote models.PriceQuote
	if err := json.Unmarshal([]byte(val), &quote); err != nil {
		return models.PriceQuote{}, false, fmt.Errorf("failed to unmarshal cached price: %w", err)
	}
	return quote, true, nil
}

// Set stores quote under its crop name for the configured TTL.
func (c *RedisPriceCache) Set(ctx context.Context, quote models.PriceQuote) error {
	data, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("failed to marshal price: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+quote.CropName, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache price: %w", err)
	}
	return nil
}

// Invalidate drops the cached quote for crop.
func (c *RedisPriceCache) Invalidate(ctx context.Context, crop string) error {
	if err := c.client.Del(ctx, keyPrefix+crop).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached price: %w", err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (c *RedisPriceCache) Close() error {
	return c.client.Close()
}
