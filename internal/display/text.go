package display

import (
	"image"
	"image/color"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// 点阵字体的标称字号，Text 的 size 按此比例放大
const glyphSize = 8.0

var labelFont = &proggy.TinySZ8pt7b

// rgbaDisplay 把 tinyfont 的像素输出写入 image.RGBA
type rgbaDisplay struct {
	img *image.RGBA
}

func (d *rgbaDisplay) Size() (x, y int16) {
	b := d.img.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

func (d *rgbaDisplay) SetPixel(x, y int16, c color.RGBA) {
	if !(image.Point{X: int(x), Y: int(y)}).In(d.img.Bounds()) {
		return
	}
	d.img.SetRGBA(int(x), int(y), c)
}

func (d *rgbaDisplay) Display() error {
	return nil
}

// textMetrics 返回字符串在标称字号下的宽高
func textMetrics(s string) (w, h int) {
	for _, r := range s {
		w += runeAdvance(r)
	}
	return w, int(labelFont.YAdvance)
}

func runeAdvance(r rune) int {
	if r == '°' {
		return 4
	}
	_, outbox := tinyfont.LineWidth(labelFont, string(r))
	return int(outbox)
}

// rasterize 把文字绘制到透明背景的 RGBA 图像
//
// 字库没有度数符号，'°' 用一个 2x2 的小方块代替。
func rasterize(s string, c color.Color) *image.RGBA {
	w, h := textMetrics(s)
	if w <= 0 {
		w = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	d := &rgbaDisplay{img: img}
	fg := color.RGBAModel.Convert(c).(color.RGBA)

	// 基线距顶部约为行高的 3/4
	baseline := int16(h * 3 / 4)
	x := int16(0)
	for _, r := range s {
		if r == '°' {
			for dy := int16(0); dy < 2; dy++ {
				for dx := int16(0); dx < 2; dx++ {
					d.SetPixel(x+1+dx, baseline-int16(h/2)+dy, fg)
				}
			}
		} else {
			tinyfont.DrawChar(d, labelFont, x, baseline, r, fg)
		}
		x += int16(runeAdvance(r))
	}
	return img
}
