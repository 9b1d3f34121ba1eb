package metrics

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// ============================================================================
// RateMeter - 速率计算器
// ============================================================================

// RateMeter 速率计算器（基于滑动窗口）
//
// 使用 60 个 1 秒桶来计算最近 60 秒的平均速率。
// 时间来源可注入，测试中使用 clock.Mock 推进。
type RateMeter struct {
	mu       sync.Mutex
	clock    clock.Clock
	buckets  [60]int64 // 60 个 1 秒桶
	lastIdx  int       // 最后写入的桶索引
	lastTime time.Time // 当前桶的起始时间
}

// NewRateMeter 创建速率计算器
func NewRateMeter(clk clock.Clock) *RateMeter {
	if clk == nil {
		clk = clock.New()
	}
	return &RateMeter{
		clock:    clk,
		lastTime: clk.Now(),
	}
}

// advance 按经过的整秒数轮转桶，调用方持有锁
func (r *RateMeter) advance() {
	now := r.clock.Now()
	elapsed := now.Sub(r.lastTime)
	if elapsed < time.Second {
		return
	}

	seconds := int(elapsed / time.Second)
	if seconds >= len(r.buckets) {
		// 超过 60 秒没有数据
		r.buckets = [60]int64{}
		r.lastIdx = 0
	} else {
		for i := 0; i < seconds; i++ {
			r.lastIdx = (r.lastIdx + 1) % len(r.buckets)
			r.buckets[r.lastIdx] = 0
		}
	}
	r.lastTime = r.lastTime.Add(time.Duration(seconds) * time.Second)
}

// Add 添加字节数到当前桶
func (r *RateMeter) Add(bytes int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.advance()
	r.buckets[r.lastIdx] += bytes
}

// Total 返回窗口内的总量
func (r *RateMeter) Total() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.advance()
	var total int64
	for _, v := range r.buckets {
		total += v
	}
	return total
}

// Rate 返回平均速率（字节/秒）
func (r *RateMeter) Rate() float64 {
	return float64(r.Total()) / float64(len(r.buckets))
}

// Reset 重置速率计算器
func (r *RateMeter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buckets = [60]int64{}
	r.lastIdx = 0
	r.lastTime = r.clock.Now()
}
