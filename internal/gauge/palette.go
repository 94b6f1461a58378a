package gauge

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// 仪表配色
var (
	ColorBlack     = mustHex("#000000")
	ColorWhite     = mustHex("#ffffff")
	ColorRed       = mustHex("#ff0000")
	ColorGreen     = mustHex("#008000")
	ColorBlue      = mustHex("#0000ff")
	ColorOrange    = mustHex("#ffa500")
	ColorLightBlue = mustHex("#add8e6")
	ColorDarkBlue  = mustHex("#00008b")
	ColorLightGray = mustHex("#d3d3d3")
	ColorPanel     = mustHex("#2b2b2b")
)

// Color 色段对应的颜色
func (b TemperatureBucket) Color() color.Color {
	switch b {
	case Cold:
		return ColorBlue
	case Normal:
		return ColorGreen
	case Warm:
		return ColorOrange
	default:
		return ColorRed
	}
}

// TemperatureColor 温度指示器颜色
func TemperatureColor(temp int) color.Color {
	return BucketFor(temp).Color()
}

// Hex 把任意颜色转换为 #rrggbb
func Hex(c color.Color) string {
	cc, _ := colorful.MakeColor(c)
	return cc.Hex()
}
