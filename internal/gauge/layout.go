package gauge

import "image/color"

const padding = 10.0

// Layout 窗口布局：自上而下堆叠三个组件并水平居中
type Layout struct {
	Width, Height float64
	Background    color.Color

	RPM         *RPMGauge
	Temperature *TemperatureBar
	Door        *DoorLock
}

// LayoutOptions 布局参数
type LayoutOptions struct {
	Width, Height      int
	MaxRPM, TickStep   int
	MinTemp, MaxTemp   int
	InitialTemperature int
}

// NewLayout 创建布局及其组件
func NewLayout(opts LayoutOptions) *Layout {
	return &Layout{
		Width:       float64(opts.Width),
		Height:      float64(opts.Height),
		Background:  ColorPanel,
		RPM:         NewRPMGauge(opts.MaxRPM, opts.TickStep),
		Temperature: NewTemperatureBar(opts.MinTemp, opts.MaxTemp, opts.InitialTemperature),
		Door:        NewDoorLock(),
	}
}

// Widgets 按绘制顺序返回组件
func (l *Layout) Widgets() []Widget {
	return []Widget{l.RPM, l.Temperature, l.Door}
}

// Regions 每个组件在窗口中的区域
func (l *Layout) Regions() []Rect {
	widgets := l.Widgets()
	regions := make([]Rect, 0, len(widgets))

	y := 0.0
	for _, w := range widgets {
		width, height := w.Size()
		y += padding
		regions = append(regions, Rect{X: (l.Width - width) / 2, Y: y, W: width, H: height})
		y += height + padding
	}
	return regions
}

// Render 绘制背景和全部组件
func (l *Layout) Render(c Canvas) {
	c.FillRect(Rect{W: l.Width, H: l.Height}, l.Background)
	for i, r := range l.Regions() {
		l.Widgets()[i].Render(Translate(c, r.X, r.Y))
	}
}
