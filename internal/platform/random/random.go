// Package random 提供半开区间 [lo, hi) 上的均匀随机整数。
package random

import (
	"fmt"
	"math/rand"
)

// Generator 返回 [lo, hi) 上的均匀随机整数
type Generator interface {
	Range(lo, hi int) int
}

// Uniform 基于 math/rand 的全局源，可并发使用
type Uniform struct{}

// Range 返回 [lo, hi) 上的均匀随机整数，hi 不包含在内
func (Uniform) Range(lo, hi int) int {
	if hi <= lo {
		panic(fmt.Sprintf("random: 无效区间 [%d, %d)", lo, hi))
	}
	return lo + rand.Intn(hi-lo)
}
