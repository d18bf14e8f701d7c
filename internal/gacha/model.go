package gacha

import (
	"time"

	"github.com/SlpAus/daily-gacha-backend/internal/platform/clock"
)

// GachaType 是抽奖的种类
type GachaType string

const (
	// Daily 每个目标时区日历日可抽一次
	Daily GachaType = "Daily"
)

// GachaEvent 是一次成功抽奖的不可变记录
type GachaEvent struct {
	ID        string    `gorm:"primarykey;type:varchar(36)" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;index:idx_gacha_user_type_created,priority:1" json:"user_id"`
	GachaType GachaType `gorm:"type:varchar(16);not null;index:idx_gacha_user_type_created,priority:2" json:"gacha_type"`
	CreatedAt time.Time `gorm:"not null;index:idx_gacha_user_type_created,priority:3" json:"created_at"`
}

// TableName 指定抽奖事件表名
func (GachaEvent) TableName() string {
	return "gacha_events"
}

// DailyGachaRecord 是每日抽奖的状态视图
type DailyGachaRecord struct {
	LatestEvent   *GachaEvent `json:"latest_event"`
	IsAvailable   bool        `json:"is_available"`
	NextGachaTime time.Time   `json:"next_gacha_time"`
}

// TryDailyResult 是一次成功抽奖的结果
type TryDailyResult struct {
	Obtained int `json:"obtained"`
}

// IsAvailableAt 判断在 now 时刻能否再次抽奖。
// 上次抽奖所在的 loc 日历日结束后即可再抽。
func IsAvailableAt(latest GachaEvent, now time.Time, loc *time.Location) bool {
	return !now.Before(NextAvailableAt(latest, loc))
}

// NextAvailableAt 返回上次抽奖之后第一个可抽奖的时刻
func NextAvailableAt(latest GachaEvent, loc *time.Location) time.Time {
	return clock.StartOfNextDay(latest.CreatedAt, loc)
}
