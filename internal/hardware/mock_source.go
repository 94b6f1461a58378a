package hardware

import (
	"sync"

	"github.com/wfunc/car-dash/internal/telemetry"
)

// SimulatedSource 模拟读数源（mock_mode），无需硬件即可驱动仪表
//
// 每次读取生成一行 "rpm,door,temperature"：转速和温度做三角波扫描，
// 车门每 DoorPeriod 行切换一次。
type SimulatedSource struct {
	mu     sync.Mutex
	step   int
	closed bool

	MaxRPM     int
	MinTemp    int
	MaxTemp    int
	RPMStep    int
	TempStep   int
	DoorPeriod int
}

// NewSimulatedSource 创建模拟读数源
func NewSimulatedSource(maxRPM, minTemp, maxTemp int) *SimulatedSource {
	return &SimulatedSource{
		MaxRPM:     maxRPM,
		MinTemp:    minTemp,
		MaxTemp:    maxTemp,
		RPMStep:    25,
		TempStep:   1,
		DoorPeriod: 50,
	}
}

// Name 返回数据源标识
func (s *SimulatedSource) Name() string {
	return "simulated"
}

// Available 未关闭时总有数据
func (s *SimulatedSource) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// ReadLine 生成下一行模拟数据
func (s *SimulatedSource) ReadLine() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", false
	}

	n := s.step
	s.step++

	reading := telemetry.Reading{
		RPM:         triangle(n*s.RPMStep, s.MaxRPM),
		Temperature: s.MinTemp + triangle(n*s.TempStep, s.MaxTemp-s.MinTemp),
		// 每 DoorPeriod 行在上锁和解锁之间切换
		Locked: s.DoorPeriod <= 0 || (n/s.DoorPeriod)%2 == 0,
	}
	return reading.Format(), true
}

// Err 模拟源不会出错
func (s *SimulatedSource) Err() error {
	return nil
}

// Close 关闭模拟源
func (s *SimulatedSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// triangle 返回 [0, span] 区间内的三角波取值
func triangle(x, span int) int {
	if span <= 0 {
		return 0
	}
	period := 2 * span
	x %= period
	if x > span {
		return period - x
	}
	return x
}
