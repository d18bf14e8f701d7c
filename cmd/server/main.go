package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/SlpAus/daily-gacha-backend/api"
	"github.com/SlpAus/daily-gacha-backend/internal/auth"
	"github.com/SlpAus/daily-gacha-backend/internal/gacha"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/clock"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/config"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/database"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/health"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/lock"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/logging"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/random"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/shutdown"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/startup"
	"github.com/SlpAus/daily-gacha-backend/internal/ranking"
	"github.com/SlpAus/daily-gacha-backend/internal/user"
	"github.com/SlpAus/daily-gacha-backend/pkg/lifecycle"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("应用启动失败", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	// 1. 持久化存储
	db, err := database.Open(cfg.Database, logger.Named("gorm"))
	if err != nil {
		return err
	}
	if err := startup.InitializeApplication(db, logger); err != nil {
		return err
	}

	// 2. Redis为可选依赖，只用于互斥锁与排行榜缓存
	rdb, err := database.OpenRedis(context.Background(), cfg.Redis)
	if err != nil {
		return err
	}

	gracefulManager := lifecycle.NewManager("graceful", logger)
	forcefulManager := lifecycle.NewManager("forceful", logger)
	coordinator := shutdown.NewCoordinator(gracefulManager, forcefulManager, logger)
	coordinator.Finalizers = append(coordinator.Finalizers, func() error { return database.Close(db) })

	if rdb != nil {
		coordinator.Finalizers = append([]func() error{rdb.Close}, coordinator.Finalizers...)
		if err := startHealthChecker(rdb, gracefulManager, forcefulManager, logger); err != nil {
			return err
		}
	}

	// 3. 领域服务
	clk, err := clock.NewZoned(cfg.Gacha.Timezone)
	if err != nil {
		return err
	}
	verifier, err := auth.NewVerifier(cfg.Auth)
	if err != nil {
		return err
	}

	userStore := user.NewGormStore(db)
	userService := user.NewService(userStore, logger.Named("user"))
	gachaService := gacha.NewService(
		userStore,
		gacha.NewGormEventStore(db),
		clk,
		random.Uniform{},
		lock.New(rdb, cfg.Gacha.LockTTL, logger.Named("lock")),
		logger.Named("gacha"),
		cfg.Gacha,
	)
	rankingService := ranking.NewModule(db, rdb, logger, cfg.Ranking)

	// 4. HTTP服务
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r, verifier, api.Handlers{
		User:    user.NewHandler(userService, logger),
		Gacha:   gacha.NewHandler(gachaService, logger),
		Ranking: ranking.NewHandler(rankingService, logger),
	})

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		logger.Info("服务器已准备就绪，开始监听", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("服务器监听失败", zap.Error(err))
		}
	}()

	coordinator.ListenForSignalsAndShutdown(server)
	return nil
}

// startHealthChecker 阻塞式执行一次检查后，在后台持续检查Redis
func startHealthChecker(rdb *redis.Client, graceful, forceful *lifecycle.Manager, logger *zap.Logger) error {
	checker := health.NewChecker(rdb, logger.Named("health"))
	gracefulHandle, err := graceful.NewServiceHandle("redis-health-checker")
	if err != nil {
		return err
	}
	forcefulHandle, err := forceful.NewServiceHandle("redis-health-checker")
	if err != nil {
		gracefulHandle.Close()
		return err
	}
	logger.Info("正在执行启动后健康检查...")
	checker.PerformCheck(forcefulHandle.Ctx())
	go checker.Run(gracefulHandle, forcefulHandle)
	return nil
}
