package api

import (
	"github.com/SlpAus/daily-gacha-backend/internal/auth"
	"github.com/SlpAus/daily-gacha-backend/internal/gacha"
	"github.com/SlpAus/daily-gacha-backend/internal/ranking"
	"github.com/SlpAus/daily-gacha-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// Handlers 汇总各模块的HTTP处理器
type Handlers struct {
	User    *user.Handler
	Gacha   *gacha.Handler
	Ranking *ranking.Handler
}

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine, verifier *auth.Verifier, h Handlers) {
	api := router.Group("/api")
	api.Use(auth.Middleware(verifier))
	{
		// 用户相关的路由组 /api/users
		users := api.Group("/users")
		{
			users.GET("/me", h.User.GetMe)
			users.POST("/me", h.User.Register)
		}

		// 每日抽奖 /api/gacha/daily
		daily := api.Group("/gacha/daily")
		{
			daily.GET("", h.Gacha.GetDaily)
			daily.POST("", h.Gacha.TryDaily)
			daily.GET("/latest", h.Gacha.GetLatestDaily)
		}

		// 排行榜不需要认证，匿名请求同样可以访问
		rankingRoutes := api.Group("/ranking")
		{
			rankingRoutes.GET("/points", h.Ranking.GetTopPoints)
			rankingRoutes.GET("/point-diffs", h.Ranking.GetTopPointDiffs)
		}
	}
}
