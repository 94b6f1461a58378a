// Package gauge 把读数映射为仪表图形。
//
// 所有映射都是无状态的：同样的输入总是得到同样的图形，重绘只替换上一帧。
// 组件只依赖 Canvas 接口，因此同一套组件既能画到窗口也能输出为 SVG。
package gauge

import "image/color"

// Point 屏幕坐标（y 轴向下）
type Point struct {
	X, Y float64
}

// Rect 矩形区域
type Rect struct {
	X, Y, W, H float64
}

// Canvas 绘图目标
type Canvas interface {
	Line(from, to Point, width float64, c color.Color)
	StrokeRect(r Rect, width float64, c color.Color)
	FillRect(r Rect, c color.Color)
	StrokeCircle(center Point, radius, width float64, c color.Color)
	// Text 以 at 为中心绘制文字
	Text(at Point, s string, size float64, c color.Color)
}

// Widget 可绘制组件，按自身局部坐标绘制
type Widget interface {
	Size() (width, height float64)
	Render(c Canvas)
}

// Translate 返回一个把所有坐标平移 (dx, dy) 的画布
func Translate(c Canvas, dx, dy float64) Canvas {
	if t, ok := c.(translated); ok {
		return translated{inner: t.inner, dx: t.dx + dx, dy: t.dy + dy}
	}
	return translated{inner: c, dx: dx, dy: dy}
}

type translated struct {
	inner  Canvas
	dx, dy float64
}

func (t translated) p(p Point) Point {
	return Point{X: p.X + t.dx, Y: p.Y + t.dy}
}

func (t translated) r(r Rect) Rect {
	return Rect{X: r.X + t.dx, Y: r.Y + t.dy, W: r.W, H: r.H}
}

func (t translated) Line(from, to Point, width float64, c color.Color) {
	t.inner.Line(t.p(from), t.p(to), width, c)
}

func (t translated) StrokeRect(r Rect, width float64, c color.Color) {
	t.inner.StrokeRect(t.r(r), width, c)
}

func (t translated) FillRect(r Rect, c color.Color) {
	t.inner.FillRect(t.r(r), c)
}

func (t translated) StrokeCircle(center Point, radius, width float64, c color.Color) {
	t.inner.StrokeCircle(t.p(center), radius, width, c)
}

func (t translated) Text(at Point, s string, size float64, c color.Color) {
	t.inner.Text(t.p(at), s, size, c)
}
