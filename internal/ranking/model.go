package ranking

import (
	"github.com/SlpAus/daily-gacha-backend/internal/user"
)

// PointDiffRankingRecord 是排行榜的一行，Diff 为最近一次积分变动量，可能为负
type PointDiffRankingRecord struct {
	User    user.User `json:"user"`
	Current uint64    `json:"current"`
	Diff    int64     `json:"diff"`
}

// Kind 区分两种排行榜
type Kind string

const (
	KindPoints     Kind = "points"
	KindPointDiffs Kind = "point-diffs"
)
