// Package cache stores run summaries in Redis so the server can answer
// repeat requests for an unchanged file without re-reading it.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"

	"cruncher/internal/models"
)

type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache connects to Redis and pings it once. A zero ttl disables
// expiry.
func NewSummaryCache(addr string, db int, ttl time.Duration) (*SummaryCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DB:           db,
		PoolSize:     100,
		MinIdleConns: 10,
		MaxRetries:   3,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &SummaryCache{client: client, ttl: ttl}, nil
}

// Key builds the cache key for one request. It folds in the file's mtime and
// size so a rewritten input never serves a stale summary.
func Key(path string, threshold float64, perSensor bool) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("summary:%s:%d:%d:%g:%t", path, info.ModTime().UnixNano(), info.Size(), threshold, perSensor), nil
}

// Get returns the cached summary for key, or false on a miss.
func (c *SummaryCache) Get(ctx context.Context, key string) (models.Summary, bool) {
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return models.Summary{}, false
	}

	var s models.Summary
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return models.Summary{}, false
	}
	return s, true
}

// Store saves a summary under key.
func (c *SummaryCache) Store(ctx context.Context, key string, s models.Summary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store summary in Redis: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (c *SummaryCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *SummaryCache) Close() error {
	return c.client.Close()
}
