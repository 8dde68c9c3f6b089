// Package cache is a thin redis layer for lookups that repeat across
// requests: symbol-alias resolution and the last subject symbol of each
// conversation. The engine works unchanged when redis is not configured.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"portfolio-assistant-go/internal/config"
)

// Cache wraps the redis client. A nil *Cache (or one built without an
// address) turns every operation into a no-op miss.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// New connects to redis when an address is configured; otherwise caching
// is disabled and every lookup falls through to the store.
func New(cfg *config.Redis, logger *zap.Logger) *Cache {
	if cfg.Addr == "" {
		logger.Info("Redis not configured, lookup caching disabled")
		return &Cache{logger: logger}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Cache{
		client: client,
		ttl:    time.Duration(cfg.TTLMinutes) * time.Minute,
		logger: logger,
	}
}

// Ping verifies connectivity. Always nil when caching is disabled.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// GetSymbol returns a cached alias resolution.
func (c *Cache) GetSymbol(ctx context.Context, alias string) (string, bool) {
	return c.get(ctx, "alias:"+alias)
}

// SetSymbol caches an alias resolution.
func (c *Cache) SetSymbol(ctx context.Context, alias, symbol string) {
	c.set(ctx, "alias:"+alias, symbol)
}

// GetSubjectSymbol returns the last subject ticker of a conversation.
func (c *Cache) GetSubjectSymbol(ctx context.Context, conversationID string) (string, bool) {
	return c.get(ctx, "subject:"+conversationID)
}

// SetSubjectSymbol remembers the subject ticker of a conversation so
// follow-up replies without an explicit symbol stay on topic.
func (c *Cache) SetSubjectSymbol(ctx context.Context, conversationID, symbol string) {
	c.set(ctx, "subject:"+conversationID, symbol)
}

func (c *Cache) get(ctx context.Context, key string) (string, bool) {
	if c == nil || c.client == nil {
		return "", false
	}
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return val, true
}

func (c *Cache) set(ctx context.Context, key, val string) {
	if c == nil || c.client == nil || val == "" {
		return
	}
	if err := c.client.Set(ctx, key, val, c.ttl).Err(); err != nil {
		c.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}
