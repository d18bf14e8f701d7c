// Package httpx 放置各模块处理器共用的响应辅助函数。
package httpx

import (
	"github.com/SlpAus/daily-gacha-backend/internal/platform/apperr"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error 按错误类别写入JSON错误响应
// Internal 类别只返回通用消息，完整错误写入日志
func Error(c *gin.Context, logger *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		logger.Error("请求处理失败",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(apperr.HTTPStatus(kind), gin.H{"error": apperr.PublicMessage(err)})
}
