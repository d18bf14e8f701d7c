package auth

import (
	"github.com/SlpAus/daily-gacha-backend/internal/platform/apperr"
)

// Role 是身份提供方授予的角色，原样保留，不参与授权判断
type Role string

// AuthUser 是经过验证的主体
type AuthUser struct {
	// Subject 是身份提供方的稳定标识，区别于内部的用户ID
	Subject string
	Roles   []Role
}

// Authorization 是一次请求的认证结果，可能是匿名的
type Authorization struct {
	user *AuthUser
}

// Anonymous 返回未携带凭证的认证结果
func Anonymous() Authorization {
	return Authorization{}
}

// Authenticated 返回已验证主体的认证结果
func Authenticated(user AuthUser) Authorization {
	return Authorization{user: &user}
}

// RequireAuth 要求请求已通过认证
func (a Authorization) RequireAuth() (AuthUser, error) {
	if a.user == nil || a.user.Subject == "" {
		return AuthUser{}, apperr.Unauthenticated("access denied")
	}
	return *a.user, nil
}
