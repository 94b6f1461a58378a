package telemetry

import (
	"sync"
	"time"
)

// Snapshot 某一时刻的最新读数
type Snapshot struct {
	Reading
	Updates   uint64    `json:"updates"`
	UpdatedAt time.Time `json:"updated_at"`
}

// State 最近一次显示的读数
//
// 轮询循环是唯一的写入者；读锁只用于远程镜像等只读观察者。
type State struct {
	mu      sync.RWMutex
	current Reading
	updates uint64
	at      time.Time
	now     func() time.Time
}

// NewState 创建状态，初始为转速0、上锁、默认温度
func NewState(defaultTemperature int) *State {
	return &State{
		current: Reading{Locked: true, Temperature: defaultTemperature},
		now:     time.Now,
	}
}

// Apply 用新读数覆盖当前值并返回快照
func (s *State) Apply(r Reading) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = r
	s.updates++
	s.at = s.now()

	return Snapshot{Reading: s.current, Updates: s.updates, UpdatedAt: s.at}
}

// Snapshot 返回当前值副本
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Reading: s.current, Updates: s.updates, UpdatedAt: s.at}
}
