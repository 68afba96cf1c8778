package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/example/annocanvas/internal/geom"
)

func setThickPixel(img *image.RGBA, x, y, thick int, col color.Color) {
	r := thick / 2
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			px := x + dx
			py := y + dy
			if image.Pt(px, py).In(img.Bounds()) {
				img.Set(px, py, col)
			}
		}
	}
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.Color, thick int) {
	// Skip segments that lie entirely outside the buffer.
	b := img.Bounds().Inset(-thick - 1)
	if (x0 < b.Min.X && x1 < b.Min.X) || (x0 >= b.Max.X && x1 >= b.Max.X) ||
		(y0 < b.Min.Y && y1 < b.Min.Y) || (y0 >= b.Max.Y && y1 >= b.Max.Y) {
		return
	}
	dx := math.Abs(float64(x1 - x0))
	dy := math.Abs(float64(y1 - y0))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		setThickPixel(img, x0, y0, thick, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func drawRect(img *image.RGBA, rect image.Rectangle, col color.Color, thick int) {
	drawLine(img, rect.Min.X, rect.Min.Y, rect.Max.X-1, rect.Min.Y, col, thick)
	drawLine(img, rect.Max.X-1, rect.Min.Y, rect.Max.X-1, rect.Max.Y-1, col, thick)
	drawLine(img, rect.Max.X-1, rect.Max.Y-1, rect.Min.X, rect.Max.Y-1, col, thick)
	drawLine(img, rect.Min.X, rect.Max.Y-1, rect.Min.X, rect.Min.Y, col, thick)
}

func fillRect(img *image.RGBA, rect image.Rectangle, col color.Color) {
	draw.Draw(img, rect, image.NewUniform(col), image.Point{}, draw.Over)
}

// drawCheckerboard fills rect of dst with a checkerboard pattern of the given
// colors. size controls the checker square size.
func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	rect = rect.Intersect(dst.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.Set(x, y, light)
			} else {
				dst.Set(x, y, dark)
			}
		}
	}
}

// fillPolygon blends col over the area enclosed by pts. The rasterizer
// covers the part of the bounding box that lies inside dst.
func fillPolygon(dst *image.RGBA, pts []geom.Point, col color.Color) {
	if len(pts) < 3 {
		return
	}
	br := geom.BoundingRect(pts)
	r := image.Rect(int(math.Floor(br.Min.X)), int(math.Floor(br.Min.Y)),
		int(math.Ceil(br.Max.X))+1, int(math.Ceil(br.Max.Y))+1).Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	z := vector.NewRasterizer(r.Dx(), r.Dy())
	z.DrawOp = draw.Over
	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	z.MoveTo(float32(pts[0].X-ox), float32(pts[0].Y-oy))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	z.ClosePath()
	z.Draw(dst, r, image.NewUniform(col), image.Point{})
}

var labelFace font.Face = basicfont.Face7x13

// drawText writes s with its baseline at (x, y).
func drawText(dst *image.RGBA, x, y int, s string, col color.Color) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: labelFace, Dot: fixed.P(x, y)}
	d.DrawString(s)
}

// drawLabel writes s on a filled box whose top left corner is at (x, y).
func drawLabel(dst *image.RGBA, x, y int, s string, fg, bg color.Color) {
	d := &font.Drawer{Face: labelFace}
	w := d.MeasureString(s).Ceil()
	m := labelFace.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	fillRect(dst, image.Rect(x, y, x+w+4, y+ascent+descent+2), bg)
	drawText(dst, x+2, y+1+ascent, s, fg)
}
