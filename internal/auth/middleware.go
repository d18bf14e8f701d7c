package auth

import (
	"github.com/SlpAus/daily-gacha-backend/internal/platform/apperr"
	"github.com/gin-gonic/gin"
)

// AuthorizationKey 是认证结果在Gin上下文中的键名
const AuthorizationKey = "authorization"

// Middleware 解析 Bearer 令牌，并将认证结果放入Gin上下文中。
// 无效令牌直接拒绝；未携带令牌的请求以匿名身份继续，由服务层决定是否需要认证。
func Middleware(v *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz, err := v.Authorize(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(apperr.HTTPStatus(apperr.KindOf(err)), gin.H{"error": apperr.PublicMessage(err)})
			return
		}
		c.Set(AuthorizationKey, authz)
		c.Next()
	}
}

// FromContext 读取中间件放入的认证结果，缺失时视为匿名
func FromContext(c *gin.Context) Authorization {
	if v, ok := c.Get(AuthorizationKey); ok {
		if authz, ok := v.(Authorization); ok {
			return authz
		}
	}
	return Anonymous()
}
