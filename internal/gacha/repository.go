package gacha

import (
	"context"
	"errors"
	"fmt"

	"github.com/SlpAus/daily-gacha-backend/internal/platform/apperr"
	"gorm.io/gorm"
)

// EventStore 负责抽奖事件的追加与查询
type EventStore interface {
	// FindLatestByUserType 没有事件时返回 NotFound
	FindLatestByUserType(ctx context.Context, userID string, gachaType GachaType) (GachaEvent, error)
	Create(ctx context.Context, event GachaEvent) error
}

// GormEventStore 是基于GORM的 EventStore 实现
type GormEventStore struct {
	db *gorm.DB
}

// NewGormEventStore 创建事件仓库
func NewGormEventStore(db *gorm.DB) *GormEventStore {
	return &GormEventStore{db: db}
}

func (s *GormEventStore) FindLatestByUserType(ctx context.Context, userID string, gachaType GachaType) (GachaEvent, error) {
	var event GachaEvent
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND gacha_type = ?", userID, gachaType).
		Order("created_at DESC").
		Take(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return GachaEvent{}, apperr.Wrap(apperr.KindNotFound, "gacha event not found", err)
	}
	if err != nil {
		return GachaEvent{}, fmt.Errorf("查询抽奖事件失败: %w", err)
	}
	return event, nil
}

// Create 追加一条事件，时间统一存为UTC以保证按字符串排序的驱动结果正确
func (s *GormEventStore) Create(ctx context.Context, event GachaEvent) error {
	event.CreatedAt = event.CreatedAt.UTC()
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return fmt.Errorf("创建抽奖事件失败: %w", err)
	}
	return nil
}
