package gauge

import (
	"image/color"
	"strconv"
)

// RPMGauge 转速表
type RPMGauge struct {
	Width, Height float64
	MaxRPM        int
	TickStep      int
	Background    color.Color
	TickColor     color.Color

	rpm int
}

// NewRPMGauge 创建 300x300 的转速表
func NewRPMGauge(maxRPM, tickStep int) *RPMGauge {
	return &RPMGauge{
		Width:      300,
		Height:     300,
		MaxRPM:     maxRPM,
		TickStep:   tickStep,
		Background: ColorLightBlue,
		TickColor:  ColorDarkBlue,
	}
}

// SetRPM 设置转速（限制在 [0, MaxRPM]）
func (g *RPMGauge) SetRPM(rpm int) {
	g.rpm = Clamp(rpm, 0, g.MaxRPM)
}

// RPM 当前显示的转速
func (g *RPMGauge) RPM() int {
	return g.rpm
}

// Size 组件尺寸
func (g *RPMGauge) Size() (float64, float64) {
	return g.Width, g.Height
}

// Center 表盘圆心
func (g *RPMGauge) Center() Point {
	return Point{X: float64(int(g.Width) / 2), Y: float64(int(g.Height) / 2)}
}

// Radius 表盘半径
func (g *RPMGauge) Radius() float64 {
	return float64(int(min(g.Width, g.Height))/2 - 20)
}

// NeedleEnd 指针末端坐标
func (g *RPMGauge) NeedleEnd() Point {
	return Polar(g.Center(), g.Radius()-40, NeedleAngle(g.rpm, g.MaxRPM))
}

// Render 绘制表盘、刻度和指针
func (g *RPMGauge) Render(c Canvas) {
	center := g.Center()
	radius := g.Radius()

	c.FillRect(Rect{W: g.Width, H: g.Height}, g.Background)
	c.StrokeCircle(center, radius, 2, ColorBlack)

	if g.TickStep > 0 && g.MaxRPM > 0 {
		for i := 0; i <= g.MaxRPM; i += g.TickStep {
			angle := NeedleAngle(i, g.MaxRPM)
			c.Line(Polar(center, radius-20, angle), Polar(center, radius, angle), 2, g.TickColor)
			c.Text(Polar(center, radius-40, angle), strconv.Itoa(i), 10, g.TickColor)
		}
	}

	c.Line(center, g.NeedleEnd(), 4, ColorRed)
}
