package dashboard

import (
	"context"
	"time"
)

// DefaultInterval 默认轮询间隔
const DefaultInterval = 100 * time.Millisecond

// Scheduler 固定间隔调度器，由宿主循环驱动
//
// 每次 Due 最多触发一次，错过的间隔不会补发。
type Scheduler struct {
	interval time.Duration
	next     time.Time
	running  bool
}

// NewScheduler 创建调度器，interval 非正时使用默认值
func NewScheduler(interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{interval: interval}
}

// Interval 调度间隔
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Start 开始调度，第一次触发在 now+interval
func (s *Scheduler) Start(now time.Time) {
	s.running = true
	s.next = now.Add(s.interval)
}

// Stop 停止调度
func (s *Scheduler) Stop() {
	s.running = false
}

// Running 是否正在调度
func (s *Scheduler) Running() bool {
	return s.running
}

// Due 判断 now 时刻是否应执行一次轮询
func (s *Scheduler) Due(now time.Time) bool {
	if !s.running || now.Before(s.next) {
		return false
	}
	s.next = s.next.Add(s.interval)
	if !now.Before(s.next) {
		// 宿主卡顿时直接对齐到下一个间隔
		s.next = now.Add(s.interval)
	}
	return true
}

// Run 在无窗口模式下以固定间隔执行轮询，直到 ctx 结束
func Run(ctx context.Context, c *Cluster, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Tick()
		}
	}
}
