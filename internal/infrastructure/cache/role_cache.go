package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/firecash/backend/internal/domain/sharing"
)

const rolePrefix = "firecash:role:"

// RedisRoleCache caches resolved account roles in Redis with a TTL. All
// operations are best-effort: a cache failure is logged and treated as a
// miss, never surfaced to the caller.
type RedisRoleCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisRoleCache creates a role cache on the given client
func NewRedisRoleCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisRoleCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRoleCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("rolecache"),
	}
}

func roleKey(userID, accountID uuid.UUID) string {
	return fmt.Sprintf("%s%s:%s", rolePrefix, userID, accountID)
}

// Get returns a cached role resolution, reporting whether one was present
func (c *RedisRoleCache) Get(ctx context.Context, userID, accountID uuid.UUID) (sharing.Role, bool) {
	raw, err := c.client.Get(ctx, roleKey(userID, accountID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache get failed", zap.Error(err))
		}
		return sharing.RoleNone, false
	}
	// "none" is a valid cached resolution: no grant exists.
	if raw == "none" {
		return sharing.RoleNone, true
	}
	role, err := sharing.ParseRole(raw)
	if err != nil {
		return sharing.RoleNone, false
	}
	return role, true
}

// Set stores a role resolution with the configured TTL
func (c *RedisRoleCache) Set(ctx context.Context, userID, accountID uuid.UUID, role sharing.Role) {
	if err := c.client.Set(ctx, roleKey(userID, accountID), role.String(), c.ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", zap.Error(err))
	}
}

// Flush drops every cached role resolution. Grant mutations are rare
// compared to access checks, so a full flush keeps invalidation simple and
// correct; the short TTL bounds staleness even if a flush is missed.
func (c *RedisRoleCache) Flush(ctx context.Context) {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, rolePrefix+"*", 200).Result()
		if err != nil {
			c.logger.Warn("cache flush scan failed", zap.Error(err))
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.logger.Warn("cache flush delete failed", zap.Error(err))
				return
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}
