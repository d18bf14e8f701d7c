package user

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/SlpAus/daily-gacha-backend/internal/auth"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/apperr"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/database"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxScreenNameLen  = 32
	maxDisplayNameLen = 64
)

// RegisterInput 是注册时客户端提交的资料
type RegisterInput struct {
	ScreenName  *string `json:"screen_name"`
	DisplayName string  `json:"display_name"`
}

// Service 处理用户注册与查询
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService 创建用户服务
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Me 返回当前认证主体对应的用户
func (s *Service) Me(ctx context.Context, authz auth.Authorization) (User, error) {
	authUser, err := authz.RequireAuth()
	if err != nil {
		return User{}, err
	}
	return s.store.FindBySubject(ctx, authUser.Subject)
}

// Register 为认证主体创建用户记录。
// 主体已注册时直接返回已有用户，重复调用是安全的。
func (s *Service) Register(ctx context.Context, authz auth.Authorization, in RegisterInput) (User, error) {
	authUser, err := authz.RequireAuth()
	if err != nil {
		return User{}, err
	}

	existing, err := s.store.FindBySubject(ctx, authUser.Subject)
	if err == nil {
		return existing, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return User{}, err
	}

	in, err = normalizeInput(in)
	if err != nil {
		return User{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return User{}, fmt.Errorf("无法生成UUID v7: %w", err)
	}
	u := User{
		ID:          id.String(),
		Subject:     authUser.Subject,
		ScreenName:  in.ScreenName,
		DisplayName: in.DisplayName,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.Create(ctx, u); err != nil {
		// 并发注册时另一请求已先写入
		if database.IsDuplicateKeyError(err) {
			return s.store.FindBySubject(ctx, authUser.Subject)
		}
		return User{}, err
	}

	s.logger.Info("新用户注册", zap.String("user_id", u.ID))
	return u, nil
}

func normalizeInput(in RegisterInput) (RegisterInput, error) {
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if in.DisplayName == "" {
		return in, apperr.BadRequest("display_name is required")
	}
	if utf8.RuneCountInString(in.DisplayName) > maxDisplayNameLen {
		return in, apperr.BadRequest("display_name is too long")
	}
	if in.ScreenName != nil {
		name := strings.TrimSpace(*in.ScreenName)
		switch {
		case name == "":
			in.ScreenName = nil
		case utf8.RuneCountInString(name) > maxScreenNameLen:
			return in, apperr.BadRequest("screen_name is too long")
		default:
			in.ScreenName = &name
		}
	}
	return in, nil
}
