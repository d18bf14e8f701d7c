package user

import (
	"net/http"

	"github.com/SlpAus/daily-gacha-backend/internal/auth"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/httpx"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 暴露用户相关的HTTP接口
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler 创建用户处理器
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// GetMe 返回当前用户
func (h *Handler) GetMe(c *gin.Context) {
	u, err := h.service.Me(c.Request.Context(), auth.FromContext(c))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// Register 为当前认证主体注册用户
func (h *Handler) Register(c *gin.Context) {
	var body RegisterInput
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	u, err := h.service.Register(c.Request.Context(), auth.FromContext(c), body)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
