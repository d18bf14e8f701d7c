package user

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate 负责自动迁移用户表与积分台账表
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	if err := db.AutoMigrate(&User{}, &PointEventRecord{}); err != nil {
		return fmt.Errorf("无法迁移user表: %w", err)
	}
	logger.Info("User数据库表迁移成功")
	return nil
}
