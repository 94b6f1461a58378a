package gauge

import (
	"fmt"
	"image/color"
	"strconv"
)

const (
	majorStep = 20
	minorStep = 10

	barInset  = 20.0
	barTop    = 15.0
	barHeight = 20.0
)

// TemperatureBar 温度条
type TemperatureBar struct {
	Width, Height float64
	Min, Max      int
	Background    color.Color

	temp int
}

// NewTemperatureBar 创建 300x80 的温度条，初始温度为 initial
func NewTemperatureBar(min, max, initial int) *TemperatureBar {
	b := &TemperatureBar{
		Width:      300,
		Height:     80,
		Min:        min,
		Max:        max,
		Background: ColorPanel,
	}
	b.SetTemperature(initial)
	return b
}

// SetTemperature 设置温度（限制在 [Min, Max]）
func (b *TemperatureBar) SetTemperature(temp int) {
	b.temp = Clamp(temp, b.Min, b.Max)
}

// Temperature 当前显示的温度
func (b *TemperatureBar) Temperature() int {
	return b.temp
}

// Size 组件尺寸
func (b *TemperatureBar) Size() (float64, float64) {
	return b.Width, b.Height
}

func (b *TemperatureBar) barWidth() float64 {
	return b.Width - 2*barInset
}

// IndicatorX 指示器中心横坐标
func (b *TemperatureBar) IndicatorX() float64 {
	return BarX(b.temp, b.Min, b.Max, barInset, b.barWidth())
}

// Label 温度文字
func (b *TemperatureBar) Label() string {
	return fmt.Sprintf("%d°C", b.temp)
}

// Render 绘制刻度、指示器和温度文字
func (b *TemperatureBar) Render(c Canvas) {
	width := b.barWidth()

	c.FillRect(Rect{W: b.Width, H: b.Height}, b.Background)
	c.FillRect(Rect{X: barInset, Y: barTop, W: width, H: barHeight}, ColorLightGray)
	c.StrokeRect(Rect{X: barInset, Y: barTop, W: width, H: barHeight}, 1, ColorBlack)

	// 主刻度及数值
	for t := b.Min; t <= b.Max; t += majorStep {
		x := BarX(t, b.Min, b.Max, barInset, width)
		c.Line(Point{X: x, Y: barTop}, Point{X: x, Y: barTop + barHeight}, 1, ColorBlack)
		c.Text(Point{X: x, Y: barTop - 10}, strconv.Itoa(t), 8, ColorWhite)
	}

	// 次刻度（跳过与主刻度重合的位置）
	for t := b.Min; t <= b.Max; t += minorStep {
		if t%majorStep == 0 {
			continue
		}
		x := BarX(t, b.Min, b.Max, barInset, width)
		c.Line(Point{X: x, Y: barTop + 5}, Point{X: x, Y: barTop + barHeight - 5}, 1, ColorBlack)
	}

	x := b.IndicatorX()
	c.FillRect(Rect{X: x - 2, Y: barTop - 5, W: 4, H: barHeight + 10}, TemperatureColor(b.temp))
	c.Text(Point{X: b.Width / 2, Y: barTop + barHeight + 15}, b.Label(), 12, ColorWhite)
}
