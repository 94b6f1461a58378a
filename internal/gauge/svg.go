package gauge

import (
	"encoding/xml"
	"fmt"
	"image/color"
	"strings"
)

// SVGCanvas 把绘图指令输出为 SVG 文档
type SVGCanvas struct {
	width, height float64
	body          strings.Builder
}

// NewSVGCanvas 创建指定尺寸的 SVG 画布
func NewSVGCanvas(width, height float64) *SVGCanvas {
	return &SVGCanvas{width: width, height: height}
}

func (s *SVGCanvas) Line(from, to Point, width float64, c color.Color) {
	fmt.Fprintf(&s.body, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%g" stroke-linecap="round"/>`+"\n",
		from.X, from.Y, to.X, to.Y, Hex(c), width)
}

func (s *SVGCanvas) StrokeRect(r Rect, width float64, c color.Color) {
	fmt.Fprintf(&s.body, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="%s" stroke-width="%g"/>`+"\n",
		r.X, r.Y, r.W, r.H, Hex(c), width)
}

func (s *SVGCanvas) FillRect(r Rect, c color.Color) {
	fmt.Fprintf(&s.body, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
		r.X, r.Y, r.W, r.H, Hex(c))
}

func (s *SVGCanvas) StrokeCircle(center Point, radius, width float64, c color.Color) {
	fmt.Fprintf(&s.body, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="%s" stroke-width="%g"/>`+"\n",
		center.X, center.Y, radius, Hex(c), width)
}

func (s *SVGCanvas) Text(at Point, text string, size float64, c color.Color) {
	fmt.Fprintf(&s.body, `<text x="%.1f" y="%.1f" font-family="Arial" font-size="%g" fill="%s" text-anchor="middle" dominant-baseline="central">`,
		at.X, at.Y, size, Hex(c))
	xml.EscapeText(&s.body, []byte(text))
	s.body.WriteString("</text>\n")
}

// String 返回完整的 SVG 文档
func (s *SVGCanvas) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`+"\n",
		s.width, s.height, s.width, s.height)
	b.WriteString(s.body.String())
	b.WriteString("</svg>\n")
	return b.String()
}

// RenderSVG 把布局渲染为 SVG 文档
func RenderSVG(l *Layout) string {
	c := NewSVGCanvas(l.Width, l.Height)
	l.Render(c)
	return c.String()
}
