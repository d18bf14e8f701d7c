package startup

import (
	"github.com/SlpAus/daily-gacha-backend/internal/gacha"
	"github.com/SlpAus/daily-gacha-backend/internal/user"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InitializeApplication 是应用启动时执行的总入口，负责各模块的表结构迁移
func InitializeApplication(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("开始应用初始化...")

	if err := user.Migrate(db, logger); err != nil {
		return err
	}
	if err := gacha.Migrate(db, logger); err != nil {
		return err
	}

	logger.Info("应用初始化完成！")
	return nil
}
