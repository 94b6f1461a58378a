package dashboard

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/car-dash/internal/gauge"
	"github.com/wfunc/car-dash/internal/telemetry"
)

// fakeSource 按顺序返回预置的行
type fakeSource struct {
	mu     sync.Mutex
	lines  []string
	reads  int
	closed bool
	err    error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Available() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.lines) > 0
}

func (f *fakeSource) ReadLine() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.lines) == 0 {
		return "", false
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	f.reads++
	return line, true
}

func (f *fakeSource) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

func (f *fakeSource) push(lines ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, lines...)
}

func defaultOptions() Options {
	return Options{
		Layout: gauge.LayoutOptions{
			Width: 400, Height: 600,
			MaxRPM: 1000, TickStep: 200,
			MinTemp: -20, MaxTemp: 150, InitialTemperature: telemetry.DefaultTemperature,
		},
	}
}

// ClusterTestSuite 轮询循环测试套件
type ClusterTestSuite struct {
	suite.Suite
	source  *fakeSource
	cluster *Cluster
	seen    []telemetry.Snapshot
}

func (s *ClusterTestSuite) SetupTest() {
	s.source = &fakeSource{}
	s.cluster = NewCluster(s.source, defaultOptions())
	s.seen = nil
	s.cluster.AddObserver(ObserverFunc(func(snap telemetry.Snapshot) {
		s.seen = append(s.seen, snap)
	}))
}

func (s *ClusterTestSuite) TestInitialState() {
	snap := s.cluster.Snapshot()
	s.Equal(telemetry.Reading{RPM: 0, Locked: true, Temperature: 20}, snap.Reading)

	w, h := s.cluster.Size()
	s.Equal(400, w)
	s.Equal(600, h)
}

func (s *ClusterTestSuite) TestTickWithoutDataChangesNothing() {
	s.False(s.cluster.Tick())
	s.Zero(s.cluster.Snapshot().Updates)
	s.Empty(s.seen)
}

func (s *ClusterTestSuite) TestTickAppliesReading() {
	s.source.push("500,1,25")

	s.True(s.cluster.Tick())
	snap := s.cluster.Snapshot()
	s.Equal(telemetry.Reading{RPM: 500, Locked: false, Temperature: 25}, snap.Reading)
	s.Equal(uint64(1), snap.Updates)
	s.Require().Len(s.seen, 1)
	s.Equal(snap, s.seen[0])
}

func (s *ClusterTestSuite) TestTickDefaultsTemperature() {
	s.source.push("500,1,90", "500,0")
	s.cluster.Tick()
	s.cluster.Tick()
	s.Equal(telemetry.Reading{RPM: 500, Locked: true, Temperature: 20}, s.cluster.Snapshot().Reading)
}

func (s *ClusterTestSuite) TestInitialTemperatureOnlyAffectsStartup() {
	opts := defaultOptions()
	opts.Layout.InitialTemperature = 30
	source := &fakeSource{}
	cluster := NewCluster(source, opts)
	s.Equal(30, cluster.Snapshot().Temperature)
	s.Contains(cluster.SVG(), "30°C")

	// 两字段的行固定使用 20°C
	source.push("500,0")
	s.True(cluster.Tick())
	s.Equal(telemetry.DefaultTemperature, cluster.Snapshot().Temperature)
}

func (s *ClusterTestSuite) TestInitialTemperatureIsClamped() {
	opts := defaultOptions()
	opts.Layout.InitialTemperature = 500
	cluster := NewCluster(&fakeSource{}, opts)
	s.Equal(150, cluster.Snapshot().Temperature)
}

func (s *ClusterTestSuite) TestSourceFailureKeepsLastReading() {
	s.source.push("640,1,70")
	s.True(s.cluster.Tick())
	s.False(s.cluster.SourceDown())

	s.source.mu.Lock()
	s.source.err = io.ErrUnexpectedEOF
	s.source.mu.Unlock()

	s.False(s.cluster.Tick())
	s.True(s.cluster.SourceDown())
	s.False(s.cluster.Tick())
	s.Equal(telemetry.Reading{RPM: 640, Locked: false, Temperature: 70}, s.cluster.Snapshot().Reading)
}

func (s *ClusterTestSuite) TestMalformedLineRetainsPreviousValues() {
	s.source.push("640,1,70", "abc,1,25", "700")

	s.True(s.cluster.Tick())
	before := s.cluster.Snapshot()

	s.False(s.cluster.Tick())
	s.False(s.cluster.Tick())

	s.Equal(before, s.cluster.Snapshot())
	s.Len(s.seen, 1)
	s.Equal(3, s.source.reads)
}

func (s *ClusterTestSuite) TestOneLinePerTick() {
	s.source.push("100,0,10", "200,0,20", "300,0,30")

	s.cluster.Tick()
	s.Equal(100, s.cluster.Snapshot().RPM)
	s.cluster.Tick()
	s.Equal(200, s.cluster.Snapshot().RPM)
	s.True(s.source.Available())
}

func (s *ClusterTestSuite) TestValuesClampedBeforeDisplay() {
	s.source.push("5000,1,-300")
	s.cluster.Tick()

	snap := s.cluster.Snapshot()
	s.Equal(1000, snap.RPM)
	s.Equal(-20, snap.Temperature)

	s.source.push("-40,0,900")
	s.cluster.Tick()
	snap = s.cluster.Snapshot()
	s.Equal(0, snap.RPM)
	s.Equal(150, snap.Temperature)
}

func (s *ClusterTestSuite) TestSVGFollowsState() {
	s.Contains(s.cluster.SVG(), "Doors Locked")
	s.source.push("250,1,105")
	s.cluster.Tick()

	svg := s.cluster.SVG()
	s.Contains(svg, "Doors Unlocked")
	s.Contains(svg, "105°C")
}

func (s *ClusterTestSuite) TestClose() {
	s.NoError(s.cluster.Close())
	s.True(s.source.closed)
	s.Equal(s.source, s.cluster.Source())
}

func TestClusterTestSuite(t *testing.T) {
	suite.Run(t, new(ClusterTestSuite))
}

func TestSchedulerFiresOncePerInterval(t *testing.T) {
	s := NewScheduler(100 * time.Millisecond)
	t0 := time.Unix(1000, 0)

	// 未启动时不触发
	assert.False(t, s.Due(t0.Add(time.Second)))

	s.Start(t0)
	assert.True(t, s.Running())
	assert.False(t, s.Due(t0))
	assert.False(t, s.Due(t0.Add(99*time.Millisecond)))
	assert.True(t, s.Due(t0.Add(100*time.Millisecond)))
	assert.False(t, s.Due(t0.Add(150*time.Millisecond)))
	assert.True(t, s.Due(t0.Add(200*time.Millisecond)))
}

func TestSchedulerCollapsesMissedIntervals(t *testing.T) {
	s := NewScheduler(100 * time.Millisecond)
	t0 := time.Unix(1000, 0)
	s.Start(t0)

	// 宿主卡顿一秒，只补一次
	late := t0.Add(time.Second)
	assert.True(t, s.Due(late))
	assert.False(t, s.Due(late.Add(50*time.Millisecond)))
	assert.True(t, s.Due(late.Add(100*time.Millisecond)))
}

func TestSchedulerStop(t *testing.T) {
	s := NewScheduler(0)
	assert.Equal(t, DefaultInterval, s.Interval())

	t0 := time.Unix(1000, 0)
	s.Start(t0)
	s.Stop()
	assert.False(t, s.Running())
	assert.False(t, s.Due(t0.Add(time.Second)))
}

func TestRunStopsOnCancel(t *testing.T) {
	src := &fakeSource{}
	src.push("300,1,40")
	c := NewCluster(src, defaultOptions())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, c, 5*time.Millisecond) }()

	require.Eventually(t, func() bool { return c.Snapshot().Updates == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}
