package ranking

import (
	"net/http"
	"strconv"

	"github.com/SlpAus/daily-gacha-backend/internal/platform/apperr"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/httpx"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 暴露排行榜的HTTP接口
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler 创建排行榜处理器
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// parseLimit 解析 limit 参数：缺省取默认值，超出上限时截断
func (h *Handler) parseLimit(c *gin.Context) (int, error) {
	raw, ok := c.GetQuery("limit")
	if !ok || raw == "" {
		return h.service.defaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, apperr.BadRequest("limit must be a non-negative integer")
	}
	if limit > h.service.maxLimit {
		limit = h.service.maxLimit
	}
	return limit, nil
}

// GetTopPoints 获取积分排行榜
func (h *Handler) GetTopPoints(c *gin.Context) {
	limit, err := h.parseLimit(c)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	records, err := h.service.TopPoints(c.Request.Context(), limit)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// GetTopPointDiffs 获取积分变动排行榜
func (h *Handler) GetTopPointDiffs(c *gin.Context) {
	limit, err := h.parseLimit(c)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	records, err := h.service.TopPointDiffs(c.Request.Context(), limit)
	if err != nil {
		httpx.Error(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, records)
}
