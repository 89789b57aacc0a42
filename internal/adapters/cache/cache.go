// Package cache stores assembled analytics responses keyed by query.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/okian/growthboard/internal/domain/model"
	"github.com/okian/growthboard/pkg/logger"
	"github.com/okian/growthboard/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

const (
	defaultTTL    = 5 * time.Minute
	defaultPrefix = "growthboard:analytics"
)

// Store caches serialized responses.
type Store interface {
	// Get returns the cached payload for q or ErrMiss.
	Get(ctx context.Context, q model.Query) ([]byte, error)
	// Set stores payload for q with the configured TTL.
	Set(ctx context.Context, q model.Query, payload []byte) error
	// Ping checks connectivity.
	Ping(ctx context.Context) error
	Close() error
}

// RedisCache is a Store backed by redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	db     int
	prefix string
	logger logger.Logger
}

// NewRedisCache connects to addr. The connection is lazy; call Ping to check it.
func NewRedisCache(addr string, opts ...Option) *RedisCache {
	c := &RedisCache{
		ttl:    defaultTTL,
		prefix: defaultPrefix,
		logger: logger.Named("cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.client = redis.NewClient(&redis.Options{Addr: addr, DB: c.db})
	return c
}

// Key derives the cache key for q. Equivalent queries map to the same key.
func (c *RedisCache) Key(q model.Query) string {
	return c.prefix + ":" + Fingerprint(q)
}

// Fingerprint hashes the normalized query.
func Fingerprint(q model.Query) string {
	norm := fmt.Sprintf("%s|%s|%s|%s|%s",
		q.From.Format(model.DateLayout),
		q.To.Format(model.DateLayout),
		model.NormalizeProfessionID(q.ProfessionID.String()),
		strconv.FormatBool(q.Chart),
		q.Metric,
	)
	sum := sha256.Sum256([]byte(norm))
	return hex.EncodeToString(sum[:16])
}

func (c *RedisCache) Get(ctx context.Context, q model.Query) ([]byte, error) {
	b, err := c.client.Get(ctx, c.Key(q)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.RecordCacheLookup(false)
		return nil, ErrMiss
	case err != nil:
		metrics.RecordCacheError()
		c.logger.Warn(ctx, "cache read failed", logger.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	metrics.RecordCacheLookup(true)
	return b, nil
}

func (c *RedisCache) Set(ctx context.Context, q model.Query, payload []byte) error {
	if err := c.client.Set(ctx, c.Key(q), payload, c.ttl).Err(); err != nil {
		metrics.RecordCacheError()
		c.logger.Warn(ctx, "cache write failed", logger.Error(err))
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

func (c *RedisCache) Close() error { return c.client.Close() }
