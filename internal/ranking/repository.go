package ranking

import (
	"context"
	"fmt"

	"github.com/SlpAus/daily-gacha-backend/internal/user"
	"gorm.io/gorm"
)

// Store 在积分台账与用户表上执行排行查询
type Store interface {
	ListTopPoints(ctx context.Context, limit int) ([]PointDiffRankingRecord, error)
	ListTopPointDiffs(ctx context.Context, limit int) ([]PointDiffRankingRecord, error)
}

// GormStore 是基于GORM的 Store 实现。
// 台账与用户表做内连接，没有台账行的用户不会出现在排行榜中。
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 创建排行榜仓库
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// rankingRow 是连接查询的扫描目标
type rankingRow struct {
	user.User
	LedgerCurrent uint64
	LedgerDiff    *int64
}

// signedType 返回当前方言下的有符号整数类型
func signedType(dialect string) string {
	switch dialect {
	case "mysql":
		return "SIGNED"
	case "sqlite":
		return "INTEGER"
	default:
		return "BIGINT"
	}
}

// diffExpr 在有符号域中计算 current - previous，无符号列直接相减会在积分下降时溢出
func (s *GormStore) diffExpr() string {
	t := signedType(s.db.Dialector.Name())
	return fmt.Sprintf("CAST(point_events.current_point AS %s) - CAST(point_events.previous_point AS %s)", t, t)
}

func (s *GormStore) ListTopPoints(ctx context.Context, limit int) ([]PointDiffRankingRecord, error) {
	return s.list(ctx, "point_events.current_point DESC", limit)
}

func (s *GormStore) ListTopPointDiffs(ctx context.Context, limit int) ([]PointDiffRankingRecord, error) {
	return s.list(ctx, s.diffExpr()+" DESC", limit)
}

// list 相同排序键的先后顺序由数据库决定
func (s *GormStore) list(ctx context.Context, order string, limit int) ([]PointDiffRankingRecord, error) {
	if limit <= 0 {
		return []PointDiffRankingRecord{}, nil
	}

	var rows []rankingRow
	err := s.db.WithContext(ctx).
		Table("point_events").
		Select("users.*, point_events.current_point AS ledger_current, " + s.diffExpr() + " AS ledger_diff").
		Joins("INNER JOIN users ON users.id = point_events.user_id").
		Order(order).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询排行榜失败: %w", err)
	}

	records := make([]PointDiffRankingRecord, 0, len(rows))
	for _, r := range rows {
		var diff int64
		if r.LedgerDiff != nil {
			diff = *r.LedgerDiff
		}
		records = append(records, PointDiffRankingRecord{
			User:    r.User,
			Current: r.LedgerCurrent,
			Diff:    diff,
		})
	}
	return records, nil
}
