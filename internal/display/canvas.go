package display

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/wfunc/car-dash/internal/gauge"
)

// ebitenCanvas 把仪表组件画到 ebiten 图像上
type ebitenCanvas struct {
	dst   *ebiten.Image
	texts *textCache
}

func (e *ebitenCanvas) Line(from, to gauge.Point, width float64, c color.Color) {
	vector.StrokeLine(e.dst, float32(from.X), float32(from.Y), float32(to.X), float32(to.Y), float32(width), c, true)
}

func (e *ebitenCanvas) StrokeRect(r gauge.Rect, width float64, c color.Color) {
	vector.StrokeRect(e.dst, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), float32(width), c, false)
}

func (e *ebitenCanvas) FillRect(r gauge.Rect, c color.Color) {
	vector.DrawFilledRect(e.dst, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), c, false)
}

func (e *ebitenCanvas) StrokeCircle(center gauge.Point, radius, width float64, c color.Color) {
	vector.StrokeCircle(e.dst, float32(center.X), float32(center.Y), float32(radius), float32(width), c, true)
}

func (e *ebitenCanvas) Text(at gauge.Point, s string, size float64, c color.Color) {
	if s == "" {
		return
	}
	img := e.texts.get(s, c)
	w, h := textMetrics(s)
	x, y, scale := textPlacement(at, w, h, size)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(x, y)
	op.Filter = ebiten.FilterNearest
	e.dst.DrawImage(img, op)
}

// textPlacement 计算以 at 为中心、放大到 size 后文字左上角坐标
func textPlacement(at gauge.Point, w, h int, size float64) (x, y, scale float64) {
	scale = size / glyphSize
	if scale <= 0 {
		scale = 1
	}
	x = at.X - float64(w)*scale/2
	y = at.Y - float64(h)*scale/2
	return x, y, scale
}

type textKey struct {
	text  string
	color string
}

// textCache 缓存已栅格化的文字，标签种类有限
type textCache struct {
	images map[textKey]*ebiten.Image
}

func newTextCache() *textCache {
	return &textCache{images: make(map[textKey]*ebiten.Image)}
}

func (t *textCache) get(s string, c color.Color) *ebiten.Image {
	key := textKey{text: s, color: gauge.Hex(c)}
	if img, ok := t.images[key]; ok {
		return img
	}
	img := ebiten.NewImageFromImage(rasterize(s, c))
	t.images[key] = img
	return img
}
