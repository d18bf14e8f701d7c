package health

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/SlpAus/daily-gacha-backend/internal/platform/database"
	"github.com/SlpAus/daily-gacha-backend/pkg/lifecycle"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	checkInterval = 5 * time.Second
	pingTimeout   = 2 * time.Second
)

var runIDPattern = regexp.MustCompile(`run_id:([a-f0-9]+)`)

// Checker 定期检查Redis的连通性，并更新全局健康状态
type Checker struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewChecker 创建健康检查器
func NewChecker(rdb *redis.Client, logger *zap.Logger) *Checker {
	return &Checker{rdb: rdb, logger: logger}
}

// getRedisRunID 从Redis服务器信息中提取run_id
func (c *Checker) getRedisRunID(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	info, err := c.rdb.Info(ctx, "server").Result()
	if err != nil {
		return "", err
	}
	matches := runIDPattern.FindStringSubmatch(info)
	if len(matches) < 2 {
		return "", fmt.Errorf("无法在Redis INFO中找到run_id")
	}
	return matches[1], nil
}

// PerformCheck 执行一次完整的健康检查
func (c *Checker) PerformCheck(ctx context.Context) {
	currentRunID, err := c.getRedisRunID(ctx)
	if err != nil {
		if database.UpdateStatus(false, "") {
			c.logger.Warn("健康检查: Redis服务状态已更新为 [不可用]", zap.Error(err))
		}
		return
	}

	lastKnownRunID := database.GetLastKnownRunID()
	if lastKnownRunID != "" && currentRunID != lastKnownRunID {
		// 重启后缓存与锁都已丢失，锁丢失只会短暂放开互斥
		c.logger.Warn("健康检查: 检测到Redis重启",
			zap.String("old_run_id", lastKnownRunID),
			zap.String("new_run_id", currentRunID))
	}

	if database.UpdateStatus(true, currentRunID) {
		c.logger.Info("健康检查: Redis服务状态已更新为 [可用]")
	}
}

// Run 在后台循环执行健康检查，直到优雅停机信号到来。
// 进行中的检查只会被强制停机打断。首次检查由调用方在启动时阻塞执行。
func (c *Checker) Run(graceful, forceful *lifecycle.Handle) {
	defer graceful.Close()
	defer forceful.Close()
	c.logger.Info("Redis健康检查器已启动。")

	for {
		if err := graceful.Sleep(checkInterval); err != nil {
			c.logger.Info("Redis健康检查器: 收到停机信号，正在退出。")
			return
		}
		c.PerformCheck(forceful.Ctx())
	}
}
