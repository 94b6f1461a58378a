package gauge

import (
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// op 一条记录下来的绘图指令
type op struct {
	kind  string
	from  Point
	to    Point
	rect  Rect
	text  string
	color string
}

// recorder 记录绘图指令的画布
type recorder struct {
	ops []op
}

func (r *recorder) Line(from, to Point, width float64, c color.Color) {
	r.ops = append(r.ops, op{kind: "line", from: from, to: to, color: Hex(c)})
}

func (r *recorder) StrokeRect(rect Rect, width float64, c color.Color) {
	r.ops = append(r.ops, op{kind: "stroke_rect", rect: rect, color: Hex(c)})
}

func (r *recorder) FillRect(rect Rect, c color.Color) {
	r.ops = append(r.ops, op{kind: "fill_rect", rect: rect, color: Hex(c)})
}

func (r *recorder) StrokeCircle(center Point, radius, width float64, c color.Color) {
	r.ops = append(r.ops, op{kind: "circle", from: center, color: Hex(c)})
}

func (r *recorder) Text(at Point, s string, size float64, c color.Color) {
	r.ops = append(r.ops, op{kind: "text", from: at, text: s, color: Hex(c)})
}

func (r *recorder) texts() []string {
	var out []string
	for _, o := range r.ops {
		if o.kind == "text" {
			out = append(out, o.text)
		}
	}
	return out
}

func near(t *testing.T, want, got Point) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9)
	assert.InDelta(t, want.Y, got.Y, 1e-9)
}

func TestClamp(t *testing.T) {
	for rpm := 0; rpm <= 1000; rpm += 50 {
		assert.Equal(t, rpm, Clamp(rpm, 0, 1000))
	}
	assert.Equal(t, 0, Clamp(-1, 0, 1000))
	assert.Equal(t, 1000, Clamp(1001, 0, 1000))
	assert.Equal(t, -20, Clamp(-300, -20, 150))
	assert.Equal(t, 150, Clamp(151, -20, 150))
}

func TestNeedleAngle(t *testing.T) {
	assert.Equal(t, 225.0, NeedleAngle(0, 1000))
	assert.Equal(t, -45.0, NeedleAngle(1000, 1000))
	assert.Equal(t, 90.0, NeedleAngle(500, 1000))

	// 超出范围时取最近的边界
	assert.Equal(t, 225.0, NeedleAngle(-100, 1000))
	assert.Equal(t, -45.0, NeedleAngle(5000, 1000))

	// 同样的输入总得到同样的输出
	assert.Equal(t, NeedleAngle(333, 1000), NeedleAngle(333, 1000))
}

func TestPolar(t *testing.T) {
	c := Point{X: 150, Y: 150}
	near(t, Point{X: 250, Y: 150}, Polar(c, 100, 0))
	near(t, Point{X: 150, Y: 50}, Polar(c, 100, 90))
	near(t, Point{X: 150 - 100/math.Sqrt2, Y: 150 + 100/math.Sqrt2}, Polar(c, 100, 225))
}

func TestBucketFor(t *testing.T) {
	tests := []struct {
		temp int
		want TemperatureBucket
	}{
		{-5, Cold},
		{-1, Cold},
		{0, Normal},
		{49, Normal},
		{50, Warm},
		{99, Warm},
		{100, Hot},
		{150, Hot},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BucketFor(tt.temp), "temp %d", tt.temp)
	}

	assert.Equal(t, "#0000ff", Hex(TemperatureColor(-5)))
	assert.Equal(t, "#008000", Hex(TemperatureColor(0)))
	assert.Equal(t, "#ffa500", Hex(TemperatureColor(50)))
	assert.Equal(t, "#ff0000", Hex(TemperatureColor(150)))
	assert.Equal(t, "warm", Warm.String())
}

func TestBarX(t *testing.T) {
	assert.Equal(t, 20.0, BarX(-20, -20, 150, 20, 260))
	assert.Equal(t, 280.0, BarX(150, -20, 150, 20, 260))
	assert.Equal(t, 280.0, BarX(400, -20, 150, 20, 260))
	assert.InDelta(t, 20+260*65.0/170.0, BarX(45, -20, 150, 20, 260), 1e-9)
	assert.Equal(t, 5.0, BarX(10, 10, 10, 5, 100))
}

func TestRPMGauge(t *testing.T) {
	g := NewRPMGauge(1000, 200)
	near(t, Point{X: 150, Y: 150}, g.Center())
	assert.Equal(t, 130.0, g.Radius())

	// 0 转时指针指向左下方 225°
	near(t, Polar(Point{X: 150, Y: 150}, 90, 225), g.NeedleEnd())

	g.SetRPM(1500)
	assert.Equal(t, 1000, g.RPM())
	near(t, Polar(Point{X: 150, Y: 150}, 90, -45), g.NeedleEnd())

	g.SetRPM(-5)
	assert.Equal(t, 0, g.RPM())

	rec := &recorder{}
	g.SetRPM(500)
	g.Render(rec)

	assert.Equal(t, []string{"0", "200", "400", "600", "800", "1000"}, rec.texts())

	// 最后一笔是红色指针
	last := rec.ops[len(rec.ops)-1]
	assert.Equal(t, "line", last.kind)
	assert.Equal(t, "#ff0000", last.color)
	near(t, g.Center(), last.from)
	near(t, Point{X: 150, Y: 60}, last.to)
}

func TestRPMGaugeRedrawReplaces(t *testing.T) {
	g := NewRPMGauge(1000, 200)
	g.SetRPM(700)

	first, second := &recorder{}, &recorder{}
	g.Render(first)
	g.Render(second)
	assert.Equal(t, first.ops, second.ops)
}

func TestTemperatureBar(t *testing.T) {
	b := NewTemperatureBar(-20, 150, 20)
	assert.Equal(t, 20, b.Temperature())
	assert.Equal(t, "20°C", b.Label())

	b.SetTemperature(-100)
	assert.Equal(t, -20, b.Temperature())
	assert.Equal(t, 20.0, b.IndicatorX())

	b.SetTemperature(999)
	assert.Equal(t, 150, b.Temperature())
	assert.Equal(t, 280.0, b.IndicatorX())

	rec := &recorder{}
	b.SetTemperature(75)
	b.Render(rec)

	texts := rec.texts()
	assert.Equal(t, []string{"-20", "0", "20", "40", "60", "80", "100", "120", "140", "75°C"}, texts)

	// 指示器颜色随温度色段变化
	var indicator *op
	for i := range rec.ops {
		if rec.ops[i].kind == "fill_rect" && rec.ops[i].rect.W == 4 {
			indicator = &rec.ops[i]
		}
	}
	require.NotNil(t, indicator)
	assert.Equal(t, "#ffa500", indicator.color)
	assert.InDelta(t, b.IndicatorX()-2, indicator.rect.X, 1e-9)

	// 次刻度：-10, 10, ..., 150，共 9 条
	minor := 0
	for _, o := range rec.ops {
		if o.kind == "line" && o.from.Y == barTop+5 {
			minor++
		}
	}
	assert.Equal(t, 9, minor)
}

func TestDoorLock(t *testing.T) {
	d := NewDoorLock()
	assert.True(t, d.Locked())
	assert.Equal(t, "Doors Locked", d.Label())
	assert.Equal(t, "#008000", Hex(d.Fill()))

	d.SetLocked(false)
	assert.Equal(t, "Doors Unlocked", d.Label())
	assert.Equal(t, "#ff0000", Hex(d.Fill()))

	rec := &recorder{}
	d.Render(rec)
	assert.Equal(t, []string{"Doors Unlocked"}, rec.texts())
}

func TestLayoutRegions(t *testing.T) {
	l := NewLayout(LayoutOptions{
		Width: 400, Height: 600,
		MaxRPM: 1000, TickStep: 200,
		MinTemp: -20, MaxTemp: 150, InitialTemperature: 20,
	})

	regions := l.Regions()
	require.Len(t, regions, 3)
	assert.Equal(t, Rect{X: 50, Y: 10, W: 300, H: 300}, regions[0])
	assert.Equal(t, Rect{X: 50, Y: 330, W: 300, H: 80}, regions[1])
	assert.Equal(t, Rect{X: 50, Y: 430, W: 300, H: 50}, regions[2])

	rec := &recorder{}
	l.Render(rec)
	require.NotEmpty(t, rec.ops)
	assert.Equal(t, Rect{W: 400, H: 600}, rec.ops[0].rect)

	// 组件绘制被平移到各自区域
	assert.Equal(t, Rect{X: 50, Y: 10, W: 300, H: 300}, rec.ops[1].rect)
}

func TestTranslateComposes(t *testing.T) {
	rec := &recorder{}
	c := Translate(Translate(rec, 10, 20), 1, 2)
	c.Line(Point{}, Point{X: 5, Y: 5}, 1, ColorBlack)
	near(t, Point{X: 11, Y: 22}, rec.ops[0].from)
	near(t, Point{X: 16, Y: 27}, rec.ops[0].to)
}

func TestRenderSVG(t *testing.T) {
	l := NewLayout(LayoutOptions{
		Width: 400, Height: 600,
		MaxRPM: 1000, TickStep: 200,
		MinTemp: -20, MaxTemp: 150, InitialTemperature: 20,
	})

	locked := RenderSVG(l)
	assert.True(t, strings.HasPrefix(locked, `<svg xmlns="http://www.w3.org/2000/svg" width="400" height="600"`))
	assert.True(t, strings.HasSuffix(locked, "</svg>\n"))
	assert.Contains(t, locked, ">Doors Locked</text>")
	assert.Contains(t, locked, ">20°C</text>")

	l.Door.SetLocked(false)
	unlocked := RenderSVG(l)
	assert.Contains(t, unlocked, ">Doors Unlocked</text>")
	assert.NotEqual(t, locked, unlocked)
}

func TestSVGEscapesText(t *testing.T) {
	c := NewSVGCanvas(10, 10)
	c.Text(Point{}, "<a&b>", 8, ColorWhite)
	assert.Contains(t, c.String(), "&lt;a&amp;b&gt;")
}
