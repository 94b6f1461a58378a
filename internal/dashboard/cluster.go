package dashboard

import (
	"sync"
	"sync/atomic"

	"github.com/wfunc/car-dash/internal/errors"
	"github.com/wfunc/car-dash/internal/gauge"
	"github.com/wfunc/car-dash/internal/hardware"
	"github.com/wfunc/car-dash/internal/logger"
	"github.com/wfunc/car-dash/internal/telemetry"
	"go.uber.org/zap"
)

// Observer 读数观察者，每次状态更新后被调用，不得阻塞
type Observer interface {
	OnReading(snap telemetry.Snapshot)
}

// ObserverFunc 函数形式的观察者
type ObserverFunc func(snap telemetry.Snapshot)

// OnReading 实现 Observer
func (f ObserverFunc) OnReading(snap telemetry.Snapshot) {
	f(snap)
}

// Cluster 仪表应用上下文，由进程入口创建并持有
type Cluster struct {
	source hardware.Source
	state  *telemetry.State
	layout *gauge.Layout

	// 保护 layout 组件，Render 可能与 Tick 运行在不同协程
	mu sync.RWMutex

	observers []Observer
	logger    *zap.Logger

	// 数据源停止的原因只记录一次
	sourceDown atomic.Bool
}

// Options 仪表参数
//
// 初始温度取 Layout.InitialTemperature；缺少温度字段的行
// 始终按 telemetry.DefaultTemperature 处理。
type Options struct {
	Layout gauge.LayoutOptions
}

// NewCluster 创建仪表上下文
func NewCluster(source hardware.Source, opts Options) *Cluster {
	layout := gauge.NewLayout(opts.Layout)
	return &Cluster{
		source: source,
		// 状态与组件显示的（已限幅）初始温度一致
		state:  telemetry.NewState(layout.Temperature.Temperature()),
		layout: layout,
		logger: logger.WithModule("telemetry"),
	}
}

// AddObserver 注册观察者
func (c *Cluster) AddObserver(o Observer) {
	c.observers = append(c.observers, o)
}

// Tick 执行一次轮询：检查 → 读取 → 解析 → 更新 → 通知
//
// 无数据或记录格式错误时不改变任何状态，返回 false。
func (c *Cluster) Tick() bool {
	if !c.source.Available() {
		c.checkSource()
		return false
	}
	line, ok := c.source.ReadLine()
	if !ok {
		return false
	}

	// Parse 只返回 ErrMalformedRecord，整行丢弃
	reading, err := telemetry.Parse(line)
	if err != nil {
		logger.LogSerialLine(c.source.Name(), line, false)
		return false
	}
	logger.LogSerialLine(c.source.Name(), line, true)

	c.Apply(reading)
	return true
}

// Apply 把读数写入状态和组件并通知观察者
func (c *Cluster) Apply(r telemetry.Reading) telemetry.Snapshot {
	c.mu.Lock()
	c.layout.RPM.SetRPM(r.RPM)
	c.layout.Temperature.SetTemperature(r.Temperature)
	c.layout.Door.SetLocked(r.Locked)

	// 状态中保存的是实际显示的（已限幅）值
	shown := telemetry.Reading{
		RPM:         c.layout.RPM.RPM(),
		Locked:      c.layout.Door.Locked(),
		Temperature: c.layout.Temperature.Temperature(),
	}
	c.mu.Unlock()

	snap := c.state.Apply(shown)
	for _, o := range c.observers {
		o.OnReading(snap)
	}
	return snap
}

// Render 绘制当前布局
func (c *Cluster) Render(canvas gauge.Canvas) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	c.layout.Render(canvas)
}

// SVG 以 SVG 文档形式返回当前画面
func (c *Cluster) SVG() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return gauge.RenderSVG(c.layout)
}

// Snapshot 当前状态
func (c *Cluster) Snapshot() telemetry.Snapshot {
	return c.state.Snapshot()
}

// Size 窗口尺寸
func (c *Cluster) Size() (int, int) {
	return int(c.layout.Width), int(c.layout.Height)
}

// Source 数据源
func (c *Cluster) Source() hardware.Source {
	return c.source
}

// checkSource 数据源停止工作时记录一次错误，界面保留最后的读数
func (c *Cluster) checkSource() {
	if c.sourceDown.Load() {
		return
	}
	if err := c.source.Err(); err != nil {
		c.sourceDown.Store(true)
		c.logger.Error("数据源已停止，仪表保持最后的读数",
			zap.String("source", c.source.Name()),
			zap.Error(errors.Wrap(err, errors.ErrSerialPortRead)))
	}
}

// SourceDown 数据源是否已停止工作
func (c *Cluster) SourceDown() bool {
	return c.sourceDown.Load()
}

// Close 关闭数据源
func (c *Cluster) Close() error {
	return c.source.Close()
}
