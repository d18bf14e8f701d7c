// Package clock 提供固定目标时区下的当前时间，以及按日历日计算的日界线。
package clock

import (
	"fmt"
	"time"
)

// Clock 提供当前时间
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

// Zoned 是绑定到某个命名时区的系统时钟
type Zoned struct {
	loc *time.Location
}

// NewZoned 按IANA时区名创建时钟，例如 "Asia/Tokyo"
func NewZoned(name string) (*Zoned, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("无法加载时区 %q: %w", name, err)
	}
	return &Zoned{loc: loc}, nil
}

func (z *Zoned) Now() time.Time {
	return time.Now().In(z.loc)
}

func (z *Zoned) Location() *time.Location {
	return z.loc
}

// Fixed 是测试用的固定时钟
type Fixed struct {
	T   time.Time
	Loc *time.Location
}

func (f *Fixed) Now() time.Time {
	return f.T.In(f.Location())
}

func (f *Fixed) Location() *time.Location {
	if f.Loc == nil {
		return time.UTC
	}
	return f.Loc
}

// StartOfNextDay 返回 t 在 loc 时区中所在日历日的下一天零点
// 使用 time.Date 归一化，夏令时切换日同样正确
func StartOfNextDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}
