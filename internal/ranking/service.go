package ranking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SlpAus/daily-gacha-backend/internal/platform/config"
	"go.uber.org/zap"
)

// Service 在排行查询外包一层短期缓存。
// 缓存故障只记录警告并回退到数据库，不影响结果。
type Service struct {
	store    Store
	cache    Cache
	cacheTTL time.Duration
	logger   *zap.Logger

	defaultLimit int
	maxLimit     int
}

// NewService 创建排行榜服务，cache 为 nil 时直接查询数据库
func NewService(store Store, cache Cache, logger *zap.Logger, cfg config.RankingConfig) *Service {
	return &Service{
		store:        store,
		cache:        cache,
		cacheTTL:     cfg.CacheTTL,
		logger:       logger,
		defaultLimit: cfg.DefaultLimit,
		maxLimit:     cfg.MaxLimit,
	}
}

// TopPoints 返回按当前积分降序的前 limit 名
func (s *Service) TopPoints(ctx context.Context, limit int) ([]PointDiffRankingRecord, error) {
	return s.cached(ctx, KindPoints, limit, s.store.ListTopPoints)
}

// TopPointDiffs 返回按最近一次积分变动量降序的前 limit 名
func (s *Service) TopPointDiffs(ctx context.Context, limit int) ([]PointDiffRankingRecord, error) {
	return s.cached(ctx, KindPointDiffs, limit, s.store.ListTopPointDiffs)
}

func cacheKey(kind Kind, limit int) string {
	return fmt.Sprintf("ranking:%s:%d", kind, limit)
}

type loadFunc func(ctx context.Context, limit int) ([]PointDiffRankingRecord, error)

func (s *Service) cached(ctx context.Context, kind Kind, limit int, load loadFunc) ([]PointDiffRankingRecord, error) {
	if limit <= 0 {
		return []PointDiffRankingRecord{}, nil
	}
	if s.cache == nil || s.cacheTTL <= 0 {
		return load(ctx, limit)
	}

	key := cacheKey(kind, limit)
	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("读取排行榜缓存失败", zap.String("key", key), zap.Error(err))
	} else if ok {
		var records []PointDiffRankingRecord
		if err := json.Unmarshal(raw, &records); err == nil {
			return records, nil
		}
		s.logger.Warn("排行榜缓存内容损坏", zap.String("key", key))
	}

	records, err := load(ctx, limit)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(records)
	if err != nil {
		s.logger.Warn("序列化排行榜失败", zap.String("key", key), zap.Error(err))
		return records, nil
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
		s.logger.Warn("写入排行榜缓存失败", zap.String("key", key), zap.Error(err))
	}
	return records, nil
}
