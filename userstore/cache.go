package userstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	authcore "github.com/veloraweb/authcore"
)

// DefaultCacheTTL keeps cached records short-lived so deactivations and
// role changes propagate within minutes without explicit invalidation
// from other writers.
const DefaultCacheTTL = 2 * time.Minute

// Cache is a read-through layer in front of another [authcore.UserStore].
// Redis failures degrade to the underlying store: the cache can never
// make a lookup fail that would otherwise succeed.
type Cache struct {
	next   authcore.UserStore
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

func NewCache(next authcore.UserStore, client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{next: next, client: client, ttl: ttl, logger: logger}
}

func cacheKey(email string) string {
	return "authcore:user:" + email
}

func (c *Cache) GetByEmail(ctx context.Context, email string) (*authcore.UserRecord, error) {
	raw, err := c.client.Get(ctx, cacheKey(email)).Bytes()
	switch {
	case err == nil:
		var user authcore.UserRecord
		if uerr := json.Unmarshal(raw, &user); uerr == nil {
			return &user, nil
		}
		// Corrupt entry; fall through to the store and overwrite it.
		c.logger.Warn("dropping corrupt user cache entry", zap.String("email", email))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("user cache read failed", zap.Error(err))
	}

	user, err := c.next.GetByEmail(ctx, email)
	if err != nil || user == nil {
		return user, err
	}

	if raw, merr := json.Marshal(user); merr == nil {
		if serr := c.client.Set(ctx, cacheKey(email), raw, c.ttl).Err(); serr != nil {
			c.logger.Warn("user cache write failed", zap.Error(serr))
		}
	}
	return user, nil
}

// Invalidate drops the cached record for email. Writers call it after
// mutating a user so the next lookup reads the store.
func (c *Cache) Invalidate(ctx context.Context, email string) error {
	return c.client.Del(ctx, cacheKey(email)).Err()
}
