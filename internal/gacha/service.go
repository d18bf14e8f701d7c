package gacha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SlpAus/daily-gacha-backend/internal/auth"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/apperr"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/clock"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/config"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/lock"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/random"
	"github.com/SlpAus/daily-gacha-backend/internal/user"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgRateLimited  = "Daily Gacha Rate Limit Exceeded"
	msgInProgress   = "Daily Gacha In Progress"
	msgOperationErr = "operation failed"

	lockKeyPrefix = "gacha:lock:"
)

// Service 实现每日抽奖流程。
// 积分更新与事件追加是两次独立写入，事件写入失败时用原用户记录补偿。
type Service struct {
	users  user.Store
	events EventStore
	clock  clock.Clock
	rng    random.Generator
	locker lock.Locker
	logger *zap.Logger

	minReward          int
	maxRewardExclusive int
}

// NewService 创建抽奖服务，locker 为 nil 时不做按用户互斥
func NewService(
	users user.Store,
	events EventStore,
	clk clock.Clock,
	rng random.Generator,
	locker lock.Locker,
	logger *zap.Logger,
	cfg config.GachaConfig,
) *Service {
	if locker == nil {
		locker = lock.Nop{}
	}
	return &Service{
		users:              users,
		events:             events,
		clock:              clk,
		rng:                rng,
		locker:             locker,
		logger:             logger,
		minReward:          cfg.MinReward,
		maxRewardExclusive: cfg.MaxRewardExclusive,
	}
}

func (s *Service) resolveUser(ctx context.Context, authz auth.Authorization) (user.User, error) {
	authUser, err := authz.RequireAuth()
	if err != nil {
		return user.User{}, err
	}
	return s.users.FindBySubject(ctx, authUser.Subject)
}

// latestDaily 返回最近一次每日抽奖；没有记录时 found 为 false
func (s *Service) latestDaily(ctx context.Context, userID string) (event GachaEvent, found bool, err error) {
	event, err = s.events.FindLatestByUserType(ctx, userID, Daily)
	if apperr.Is(err, apperr.KindNotFound) {
		return GachaEvent{}, false, nil
	}
	if err != nil {
		return GachaEvent{}, false, err
	}
	return event, true, nil
}

// GetLatestDailyEvent 返回最近一次每日抽奖的原始JSON，没有时为 null
func (s *Service) GetLatestDailyEvent(ctx context.Context, authz auth.Authorization) (json.RawMessage, error) {
	u, err := s.resolveUser(ctx, authz)
	if err != nil {
		return nil, err
	}
	event, found, err := s.latestDaily(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if !found {
		return json.RawMessage("null"), nil
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "serialization failed", err)
	}
	return raw, nil
}

// GetDailyGachaRecord 返回每日抽奖状态
func (s *Service) GetDailyGachaRecord(ctx context.Context, authz auth.Authorization) (DailyGachaRecord, error) {
	u, err := s.resolveUser(ctx, authz)
	if err != nil {
		return DailyGachaRecord{}, err
	}
	event, found, err := s.latestDaily(ctx, u.ID)
	if err != nil {
		return DailyGachaRecord{}, err
	}

	now := s.clock.Now()
	if !found {
		return DailyGachaRecord{IsAvailable: true, NextGachaTime: now}, nil
	}
	loc := s.clock.Location()
	return DailyGachaRecord{
		LatestEvent:   &event,
		IsAvailable:   IsAvailableAt(event, now, loc),
		NextGachaTime: NextAvailableAt(event, loc),
	}, nil
}

// TryDaily 执行一次每日抽奖
func (s *Service) TryDaily(ctx context.Context, authz auth.Authorization) (TryDailyResult, error) {
	u, err := s.resolveUser(ctx, authz)
	if err != nil {
		return TryDailyResult{}, err
	}

	unlock, err := s.locker.Lock(ctx, lockKeyPrefix+u.ID)
	if errors.Is(err, lock.ErrHeld) {
		return TryDailyResult{}, apperr.RateLimited(msgInProgress)
	}
	if err != nil {
		return TryDailyResult{}, fmt.Errorf("获取抽奖锁失败: %w", err)
	}
	defer unlock()

	// 持锁后重新读取，避免使用锁外读到的旧积分
	u, err = s.users.FindByID(ctx, u.ID)
	if err != nil {
		return TryDailyResult{}, err
	}

	latest, found, err := s.latestDaily(ctx, u.ID)
	if err != nil {
		return TryDailyResult{}, err
	}
	if found && !IsAvailableAt(latest, s.clock.Now(), s.clock.Location()) {
		return TryDailyResult{}, apperr.RateLimited(msgRateLimited)
	}

	obtained := s.rng.Range(s.minReward, s.maxRewardExclusive)
	eventID, err := uuid.NewV7()
	if err != nil {
		return TryDailyResult{}, fmt.Errorf("无法生成UUID v7: %w", err)
	}

	// 写入开始前仍可响应取消；开始后必须走完补偿流程
	if err := ctx.Err(); err != nil {
		return TryDailyResult{}, err
	}
	wctx := context.WithoutCancel(ctx)

	increased := u.AddPoint(uint64(obtained))
	if err := s.users.Save(wctx, increased); err != nil {
		return TryDailyResult{}, err
	}

	event := GachaEvent{
		ID:        eventID.String(),
		UserID:    u.ID,
		GachaType: Daily,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.events.Create(wctx, event); err != nil {
		return TryDailyResult{}, s.compensate(wctx, u, increased, obtained, err)
	}

	return TryDailyResult{Obtained: obtained}, nil
}

// compensate 将用户恢复为抽奖前的记录。
// 恢复成功时返回原始错误；恢复失败时积分已增加但没有事件，记录错误日志供人工对账。
func (s *Service) compensate(ctx context.Context, original, increased user.User, obtained int, createErr error) error {
	s.logger.Warn("failed to create gacha event",
		zap.String("user_id", original.ID),
		zap.Error(createErr),
	)

	if err := s.users.Save(ctx, original); err != nil {
		s.logger.Error("gacha rollback failed, point balance inconsistent",
			zap.String("user_id", original.ID),
			zap.Uint64("original_point", original.Point),
			zap.Uint64("increased_point", increased.Point),
			zap.Int("obtained", obtained),
			zap.NamedError("create_error", createErr),
			zap.NamedError("rollback_error", err),
		)
		return apperr.Wrap(apperr.KindInternal, msgOperationErr, errors.Join(createErr, err))
	}

	s.logger.Warn("gacha rollback completed",
		zap.String("user_id", original.ID),
		zap.Uint64("point", original.Point),
	)
	return createErr
}
