// Package lock 提供按键互斥。Redis可用时跨进程生效，否则退化为空操作。
package lock

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/SlpAus/daily-gacha-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrHeld 表示锁已被其他请求持有
var ErrHeld = errors.New("lock: already held")

// Locker 对一个键加锁，返回的 unlock 必须被调用且只调用一次
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Nop 不提供任何互斥
type Nop struct{}

func (Nop) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}

// releaseScript 只有持有者才能删除锁，防止过期后误删他人的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis 使用 SET NX PX 实现的互斥锁
type Redis struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis 创建基于Redis的锁；rdb 为 nil 时调用方应改用 Nop
func NewRedis(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Redis {
	return &Redis{rdb: rdb, ttl: ttl, logger: logger}
}

// New 根据Redis是否可用选择实现
func New(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) Locker {
	if rdb == nil {
		return Nop{}
	}
	return NewRedis(rdb, ttl, logger)
}

// Lock 尝试获取锁，不等待。key 即Redis中的完整键名。
// Redis不健康时放弃互斥并返回空操作的 unlock，保证主流程的可用性。
func (l *Redis) Lock(ctx context.Context, key string) (func(), error) {
	if !database.IsRedisHealthy() {
		l.logger.Warn("Redis不可用，跳过互斥锁", zap.String("key", key))
		return func() {}, nil
	}

	token, err := newToken()
	if err != nil {
		return nil, fmt.Errorf("生成锁令牌失败: %w", err)
	}

	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		l.logger.Warn("获取互斥锁失败，跳过互斥", zap.String("key", key), zap.Error(err))
		return func() {}, nil
	}
	if !ok {
		return nil, ErrHeld
	}

	return func() {
		// 释放锁不受请求取消的影响
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.rdb, []string{key}, token).Err(); err != nil {
			l.logger.Warn("释放互斥锁失败，等待其自然过期", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
