package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/SlpAus/daily-gacha-backend/internal/platform/apperr"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/config"
	"github.com/golang-jwt/jwt/v5"
)

const bearerPrefix = "Bearer "

// Verifier 校验 Bearer JWT 并提取主体与角色
type Verifier struct {
	key        any
	methods    []string
	issuer     string
	audience   string
	rolesClaim string
}

// NewVerifier 根据配置创建校验器，RSA公钥优先于HMAC密钥
func NewVerifier(cfg config.AuthConfig) (*Verifier, error) {
	v := &Verifier{
		issuer:     strings.TrimSpace(cfg.Issuer),
		audience:   strings.TrimSpace(cfg.Audience),
		rolesClaim: cfg.RolesClaim,
	}
	if v.rolesClaim == "" {
		v.rolesClaim = "roles"
	}

	switch {
	case strings.TrimSpace(cfg.RSAPublicKeyPEM) != "":
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.RSAPublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("解析RSA公钥失败: %w", err)
		}
		v.key = key
		v.methods = []string{"RS256", "RS384", "RS512"}
	case cfg.HMACSecret != "":
		v.key = []byte(cfg.HMACSecret)
		v.methods = []string{"HS256", "HS384", "HS512"}
	default:
		return nil, errors.New("未配置JWT校验密钥")
	}
	return v, nil
}

// Authorize 解析 Authorization 请求头。
// 请求头为空时返回匿名结果；格式错误或令牌无效时返回 Unauthenticated。
func (v *Verifier) Authorize(header string) (Authorization, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return Anonymous(), nil
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return Authorization{}, apperr.Unauthenticated("access denied")
	}

	user, err := v.Verify(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
	if err != nil {
		return Authorization{}, err
	}
	return Authenticated(user), nil
}

// Verify 校验令牌签名、有效期、签发者与受众
func (v *Verifier) Verify(token string) (AuthUser, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods(v.methods)}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	}, opts...)
	if err != nil {
		return AuthUser{}, apperr.Wrap(apperr.KindUnauthenticated, "access denied", err)
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return AuthUser{}, apperr.Unauthenticated("no subject")
	}

	return AuthUser{
		Subject: subject,
		Roles:   v.rolesFrom(claims),
	}, nil
}

func (v *Verifier) rolesFrom(claims jwt.MapClaims) []Role {
	raw, ok := claims[v.rolesClaim].([]any)
	if !ok {
		return []Role{}
	}
	roles := make([]Role, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok && s != "" {
			roles = append(roles, Role(s))
		}
	}
	return roles
}
