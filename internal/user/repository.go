package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SlpAus/daily-gacha-backend/internal/platform/apperr"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store 负责用户记录的读写
type Store interface {
	FindByID(ctx context.Context, id string) (User, error)
	FindBySubject(ctx context.Context, subject string) (User, error)
	// Save 覆盖已有用户的可变字段，并按 HasLedger 同步积分台账
	Save(ctx context.Context, u User) error
	Create(ctx context.Context, u User) error
}

const (
	saveAttempts = 3
	saveBackoff  = 20 * time.Millisecond
)

// GormStore 是基于GORM的 Store 实现
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 创建用户仓库
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindByID(ctx context.Context, id string) (User, error) {
	return s.findOne(ctx, "id = ?", id)
}

func (s *GormStore) FindBySubject(ctx context.Context, subject string) (User, error) {
	return s.findOne(ctx, "subject = ?", subject)
}

func (s *GormStore) findOne(ctx context.Context, query string, arg string) (User, error) {
	var u User
	err := s.db.WithContext(ctx).Where(query, arg).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, apperr.Wrap(apperr.KindNotFound, "user not found", err)
	}
	if err != nil {
		return User{}, fmt.Errorf("查询用户失败: %w", err)
	}
	return u, nil
}

// Save 在一个事务中更新用户行并写入积分台账。
// SQLite繁忙或PostgreSQL序列化冲突时短暂重试。
func (s *GormStore) Save(ctx context.Context, u User) error {
	var err error
	for attempt := 1; attempt <= saveAttempts; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return saveTx(tx, u)
		})
		if err == nil || !database.IsRetryableError(err) {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("保存用户失败: %w", ctx.Err())
		case <-time.After(time.Duration(attempt) * saveBackoff):
		}
	}
	if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		return fmt.Errorf("保存用户失败: %w", err)
	}
	return err
}

func saveTx(tx *gorm.DB, u User) error {
	res := tx.Model(&User{}).Where("id = ?", u.ID).Updates(map[string]any{
		"screen_name":    u.ScreenName,
		"display_name":   u.DisplayName,
		"point":          u.Point,
		"previous_point": u.PreviousPoint,
		"has_ledger":     u.HasLedger,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user not found")
	}

	// 写回首次加分前的记录时，台账行也一并撤销
	if !u.HasLedger {
		return tx.Where("user_id = ?", u.ID).Delete(&PointEventRecord{}).Error
	}

	record := PointEventRecord{
		UserID:    u.ID,
		Current:   u.Point,
		Previous:  u.PreviousPoint,
		UpdatedAt: time.Now().UTC(),
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"current_point", "previous_point", "updated_at"}),
	}).Create(&record).Error
}

// Create 插入新用户，不写入积分台账
func (s *GormStore) Create(ctx context.Context, u User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return fmt.Errorf("创建用户失败: %w", err)
	}
	return nil
}
