package ranking

import (
	"context"
	"errors"
	"time"

	"github.com/SlpAus/daily-gacha-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
)

// Cache 保存序列化后的排行榜结果
type Cache interface {
	// Get 未命中时 ok 为 false 且 err 为 nil
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache 是基于Redis字符串的缓存
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache 创建Redis缓存，rdb 为 nil 时返回 nil 表示不缓存
func NewRedisCache(rdb *redis.Client) Cache {
	if rdb == nil {
		return nil
	}
	return &RedisCache{rdb: rdb}
}

var errRedisUnhealthy = errors.New("redis is unhealthy")

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if !database.IsRedisHealthy() {
		return nil, false, errRedisUnhealthy
	}
	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !database.IsRedisHealthy() {
		return errRedisUnhealthy
	}
	return c.rdb.Set(ctx, key, value, ttl).Err()
}
