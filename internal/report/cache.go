package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	keyPrefix     = "billbook:report:"
	generationKey = keyPrefix + "generation"
)

// CacheRecorder observes cache effectiveness.
type CacheRecorder interface {
	CacheHit(report string)
	CacheMiss(report string)
}

// Cache stores rendered summaries in Redis. Concurrent misses for the same
// key share one load. Redis failures degrade to uncached loads.
type Cache struct {
	client   *redis.Client
	ttl      time.Duration
	group    singleflight.Group
	recorder CacheRecorder
	logger   *slog.Logger
}

func NewCache(client *redis.Client, ttl time.Duration, recorder CacheRecorder, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}

	return &Cache{client: client, ttl: ttl, recorder: recorder, logger: logger}
}

// Invalidate makes every cached summary unreachable by bumping the key generation.
func (c *Cache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("bumping report cache generation: %w", err)
	}

	return nil
}

func (c *Cache) key(ctx context.Context, report, scope string) (string, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}

	return fmt.Sprintf("%sv%d:%s:%s", keyPrefix, gen, report, scope), nil
}

func (c *Cache) hit(report string) {
	if c.recorder != nil {
		c.recorder.CacheHit(report)
	}
}

func (c *Cache) miss(report string) {
	if c.recorder != nil {
		c.recorder.CacheMiss(report)
	}
}

// cached returns the value stored under report/scope, loading and storing it on a miss.
// A nil cache always loads.
func cached[T any](ctx context.Context, c *Cache, report, scope string, load func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}

	key, err := c.key(ctx, report, scope)
	if err != nil {
		c.logger.WarnContext(ctx, "report cache unavailable", "report", report, "error", err)
		return load(ctx)
	}

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			c.hit(report)
			return v, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "reading report cache", "report", report, "error", err)
	}

	c.miss(report)

	ch := c.group.DoChan(key, func() (any, error) {
		v, err := load(ctx)
		if err != nil {
			return v, err
		}

		if raw, err := json.Marshal(v); err == nil {
			if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
				c.logger.WarnContext(ctx, "writing report cache", "report", report, "error", err)
			}
		}

		return v, nil
	})

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}

		return res.Val.(T), nil
	}
}
