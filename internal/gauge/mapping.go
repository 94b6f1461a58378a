package gauge

import "math"

const (
	// SweepStart 转速为0时指针的角度（度）
	SweepStart = 225.0
	// SweepSpan 指针总扫过角度（度）
	SweepSpan = 270.0
)

// Clamp 把 v 限制在闭区间 [lo, hi]
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NeedleAngle 转速对应的指针角度（度，逆时针为正）
//
// 0 转对应 225°，maxRPM 对应 −45°。
func NeedleAngle(rpm, maxRPM int) float64 {
	if maxRPM <= 0 {
		return SweepStart
	}
	rpm = Clamp(rpm, 0, maxRPM)
	return SweepStart - SweepSpan*float64(rpm)/float64(maxRPM)
}

// Polar 以 center 为圆心、radius 为半径，把角度投影到屏幕坐标
func Polar(center Point, radius, angleDeg float64) Point {
	rad := angleDeg * math.Pi / 180
	return Point{
		X: center.X + radius*math.Cos(rad),
		Y: center.Y - radius*math.Sin(rad),
	}
}

// BarX 温度在温度条上的横坐标
func BarX(temp, min, max int, x0, width float64) float64 {
	if max <= min {
		return x0
	}
	temp = Clamp(temp, min, max)
	return x0 + float64(temp-min)/float64(max-min)*width
}

// TemperatureBucket 温度色段
type TemperatureBucket int

const (
	Cold TemperatureBucket = iota
	Normal
	Warm
	Hot
)

// String 色段名称
func (b TemperatureBucket) String() string {
	switch b {
	case Cold:
		return "cold"
	case Normal:
		return "normal"
	case Warm:
		return "warm"
	default:
		return "hot"
	}
}

// BucketFor 温度所在色段，边界为 0、50、100
func BucketFor(temp int) TemperatureBucket {
	switch {
	case temp < 0:
		return Cold
	case temp < 50:
		return Normal
	case temp < 100:
		return Warm
	default:
		return Hot
	}
}
