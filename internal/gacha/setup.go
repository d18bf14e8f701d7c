package gacha

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate 负责自动迁移抽奖事件表
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	if err := db.AutoMigrate(&GachaEvent{}); err != nil {
		return fmt.Errorf("无法迁移gacha_events表: %w", err)
	}
	logger.Info("Gacha数据库表迁移成功")
	return nil
}
