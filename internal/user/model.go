package user

import (
	"time"
)

// User 定义了用户的持久化模型。
// 用户在首次认证后创建一次，之后只有积分会被修改。
type User struct {
	// ID 是服务端生成的UUID v7主键
	ID string `gorm:"primarykey;type:varchar(36)" json:"id"`

	// Subject 是身份提供方的稳定标识，创建后不可变
	Subject string `gorm:"type:varchar(255);uniqueIndex;not null" json:"-"`

	ScreenName  *string `gorm:"type:varchar(32)" json:"screen_name"`
	DisplayName string  `gorm:"type:varchar(64);not null" json:"display_name"`

	// Point 是累计积分，只会增加，补偿回滚除外
	Point uint64 `gorm:"not null;default:0" json:"point"`

	// PreviousPoint 是最近一次变动前的积分，随 Point 一起写入积分台账
	PreviousPoint uint64 `gorm:"not null;default:0" json:"-"`

	// HasLedger 表示积分台账中存在该用户的行，从未获得积分的用户没有台账
	HasLedger bool `gorm:"not null;default:false" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// AddPoint 返回增加 n 点积分后的副本，原值记入 PreviousPoint
func (u User) AddPoint(n uint64) User {
	u.PreviousPoint = u.Point
	u.Point += n
	u.HasLedger = true
	return u
}

// PointEventRecord 是排行榜使用的积分台账。
// 每个用户一行，记录当前积分和最近一次变动前的积分。
type PointEventRecord struct {
	UserID    string    `gorm:"primarykey;type:varchar(36)"`
	Current   uint64    `gorm:"column:current_point;not null;index"`
	Previous  uint64    `gorm:"column:previous_point;not null"`
	UpdatedAt time.Time
}

// TableName 指定台账表名
func (PointEventRecord) TableName() string {
	return "point_events"
}
