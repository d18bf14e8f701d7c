package ranking

import (
	"github.com/SlpAus/daily-gacha-backend/internal/platform/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewModule 组装排行榜的仓库、缓存与服务
func NewModule(db *gorm.DB, rdb *redis.Client, logger *zap.Logger, cfg config.RankingConfig) *Service {
	return NewService(NewGormStore(db), NewRedisCache(rdb), logger.Named("ranking"), cfg)
}
