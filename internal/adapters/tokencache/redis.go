package tokencache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "dga:token:"

// RedisCache shares the broker token between instances for ttl. The key is
// scoped by agent id so two agents never see each other's token.
type RedisCache struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

func NewRedisCache(client redis.Cmdable, agentID string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, key: keyPrefix + agentID, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context) (string, bool, error) {
	v, err := c.client.Get(ctx, c.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, v != "", nil
}

func (c *RedisCache) Set(ctx context.Context, token string) error {
	return c.client.Set(ctx, c.key, token, c.ttl).Err()
}

// Delete drops the cached token so the next caller goes to the broker.
func (c *RedisCache) Delete(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
