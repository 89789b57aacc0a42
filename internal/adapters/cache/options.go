// Package cache stores assembled analytics responses keyed by query.
package cache

import (
	"time"

	"github.com/okian/growthboard/pkg/logger"
)

// Option applies a configuration option to the RedisCache.
type Option func(*RedisCache)

// WithTTL sets how long entries live.
func WithTTL(ttl time.Duration) Option {
	return func(c *RedisCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithDB selects the redis logical database.
func WithDB(db int) Option {
	return func(c *RedisCache) {
		if db >= 0 {
			c.db = db
		}
	}
}

// WithPrefix sets the key namespace.
func WithPrefix(prefix string) Option {
	return func(c *RedisCache) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *RedisCache) {
		if l != nil {
			c.logger = l
		}
	}
}
