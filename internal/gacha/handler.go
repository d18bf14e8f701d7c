package gacha

import (
	"net/http"

	"github.com/SlpAus/daily-gacha-backend/internal/auth"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/httpx"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 暴露每日抽奖的HTTP接口
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler 创建抽奖处理器
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// GetLatestDaily 返回最近一次每日抽奖事件，没有时为 null
func (h *Handler) GetLatestDaily(c *gin.Context) {
	raw, err := h.service.GetLatestDailyEvent(c.Request.Context(), auth.FromContext(c))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// GetDaily 返回每日抽奖状态
func (h *Handler) GetDaily(c *gin.Context) {
	record, err := h.service.GetDailyGachaRecord(c.Request.Context(), auth.FromContext(c))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// TryDaily 执行每日抽奖
func (h *Handler) TryDaily(c *gin.Context) {
	result, err := h.service.TryDaily(c.Request.Context(), auth.FromContext(c))
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
