package registrations

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gatsby-party/backend/internal/models"
)

const (
	// cacheKeyGuestList is the Redis key holding the serialized guest list.
	cacheKeyGuestList = "rsvp:guest-list"
	// cacheTTL bounds staleness if an invalidation is ever lost.
	cacheTTL = 30 * time.Second
)

// ListCache caches the aggregate guest list in Redis. The list is read on
// every results-page load but changes only on register/amend/withdraw, so
// mutations invalidate the key and List repopulates it. A nil *ListCache is a
// pass-through: every method is nil-safe so the service runs without Redis.
type ListCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewListCache creates a guest-list cache on client.
func NewListCache(client *redis.Client, logger *zap.Logger) *ListCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListCache{client: client, logger: logger}
}

// Get returns the cached guest list, or nil on miss. Cache failures are
// logged and reported as a miss; the store remains the source of truth.
func (c *ListCache) Get(ctx context.Context) []models.Registration {
	if c == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, cacheKeyGuestList).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("guest list cache read failed", zap.Error(err))
		}
		return nil
	}
	var list []models.Registration
	if err := json.Unmarshal(raw, &list); err != nil {
		c.logger.Warn("guest list cache corrupt", zap.Error(err))
		return nil
	}
	return list
}

// Set stores the guest list with a short TTL.
func (c *ListCache) Set(ctx context.Context, list []models.Registration) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKeyGuestList, raw, cacheTTL).Err(); err != nil {
		c.logger.Warn("guest list cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached list. Called after every successful mutation.
func (c *ListCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, cacheKeyGuestList).Err(); err != nil {
		c.logger.Warn("guest list cache invalidation failed", zap.Error(err))
	}
}
