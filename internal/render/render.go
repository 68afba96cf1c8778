// Package render paints a snapshot of the annotation canvas into an RGBA
// buffer. The viewer uses it for every frame and the CLI for PNG export.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/example/annocanvas/internal/canvas"
	"github.com/example/annocanvas/internal/geom"
	"github.com/example/annocanvas/internal/shape"
	"github.com/example/annocanvas/internal/theme"
	"github.com/example/annocanvas/internal/viewport"
)

const (
	vertexSize    = 4
	highlightSize = 8
	// StatusHeight is the height of the status strip at the bottom of a frame.
	StatusHeight = 18
)

// Frame is an immutable copy of everything needed to paint the canvas. It can
// be handed to another goroutine while the canvas keeps changing.
type Frame struct {
	Image image.Image
	View  viewport.Viewport
	// Scroll is subtracted from widget coordinates to get buffer coordinates.
	Scroll image.Point
	Theme  *theme.Theme

	Shapes          []*shape.Shape
	Hidden          map[shape.ID]bool
	HighlightShape  shape.ID
	HighlightVertex int

	Drawing          bool
	Current          *shape.Shape
	CurrentHighlight int
	Preview          [2]geom.Point
	Copies           []*shape.Shape
	Crosshair        geom.Point
	HasCrosshair     bool

	// Status is drawn in a strip along the bottom edge when non-empty.
	Status string
}

// Capture copies the paintable state of c.
func Capture(c *canvas.Canvas, img image.Image, th *theme.Theme) Frame {
	f := Frame{
		Image:            img,
		View:             *c.Viewport(),
		Theme:            th,
		Shapes:           shape.CopyAll(c.Shapes()),
		Hidden:           map[shape.ID]bool{},
		Drawing:          c.Drawing(),
		Preview:          c.Preview(),
		Copies:           shape.CopyAll(c.Copies()),
		CurrentHighlight: -1,
	}
	for _, s := range f.Shapes {
		if !c.IsVisible(s.ID) {
			f.Hidden[s.ID] = true
		}
	}
	f.HighlightShape, f.HighlightVertex = c.Highlighted()
	if cur := c.Current(); cur != nil {
		f.Current = cur.Copy()
		f.CurrentHighlight = cur.Highlight
	}
	f.Crosshair, f.HasCrosshair = c.Crosshair()
	return f
}

// Export renders the shapes of c over img at the image's own resolution.
func Export(c *canvas.Canvas, img image.Image, th *theme.Theme) *image.RGBA {
	f := Capture(c, img, th)
	f.View = *viewport.New(f.View.Width, f.View.Height)
	f.Drawing = false
	f.Current = nil
	f.Copies = nil
	f.HighlightShape = shape.NilID
	for _, s := range f.Shapes {
		s.Selected = false
	}
	dst := image.NewRGBA(image.Rect(0, 0, int(math.Ceil(f.View.Width)), int(math.Ceil(f.View.Height))))
	Render(dst, f)
	return dst
}

// Render paints f over the whole of dst.
func Render(dst *image.RGBA, f Frame) {
	th := f.Theme
	if th == nil {
		th = theme.Default()
	}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(straight(th.Background)), image.Point{}, draw.Src)

	pt := func(p geom.Point) image.Point {
		w := f.View.ToWidget(p)
		return image.Pt(int(math.Round(w.X))-f.Scroll.X, int(math.Round(w.Y))-f.Scroll.Y)
	}
	if f.Image != nil {
		r := image.Rectangle{Min: pt(geom.Pt(0, 0)), Max: pt(geom.Pt(f.View.Width, f.View.Height))}
		drawCheckerboard(dst, r, 8, straight(th.CheckerLight), straight(th.CheckerDark))
		xdraw.NearestNeighbor.Scale(dst, r, f.Image, f.Image.Bounds(), draw.Over, nil)
	}

	for _, s := range f.Shapes {
		if f.Hidden[s.ID] {
			continue
		}
		hv := -1
		if s.ID == f.HighlightShape {
			hv = f.HighlightVertex
		}
		line := th.LabelColor(s.Label)
		if s.Selected {
			fillPolygon(dst, widgetPoints(s, pt), straight(th.SelectedFill))
			line = th.SelectedLine
		}
		paintShape(dst, s, pt, line, th.VertexFill, hv, th)
		if s.Label != "" && s.Len() > 0 {
			p := pt(s.First())
			drawLabel(dst, p.X+highlightSize, p.Y-highlightSize, s.Label, straight(th.Background), straight(line))
		}
	}

	for _, s := range f.Copies {
		paintShape(dst, s, pt, th.CopyLine, th.CopyLine, -1, th)
	}

	if f.Drawing {
		if f.Current != nil {
			paintShape(dst, f.Current, pt, th.DrawingLine, th.DrawingLine, f.CurrentHighlight, th)
			a, b := pt(f.Preview[0]), pt(f.Preview[1])
			drawLine(dst, a.X, a.Y, b.X, b.Y, straight(th.DrawingLine), 1)
		}
		if f.HasCrosshair {
			c := pt(f.Crosshair)
			tl := pt(geom.Pt(0, 0))
			br := pt(geom.Pt(f.View.Width, f.View.Height))
			drawLine(dst, tl.X, c.Y, br.X, c.Y, straight(th.Crosshair), 1)
			drawLine(dst, c.X, tl.Y, c.X, br.Y, straight(th.Crosshair), 1)
		}
	}

	if f.Status != "" {
		b := dst.Bounds()
		strip := image.Rect(b.Min.X, b.Max.Y-StatusHeight, b.Max.X, b.Max.Y)
		draw.Draw(dst, strip, image.NewUniform(straight(th.Background)), image.Point{}, draw.Src)
		drawText(dst, strip.Min.X+4, strip.Max.Y-5, f.Status, straight(th.Foreground))
	}
}

func widgetPoints(s *shape.Shape, pt func(geom.Point) image.Point) []geom.Point {
	out := make([]geom.Point, len(s.Points))
	for i, p := range s.Points {
		q := pt(p)
		out[i] = geom.Pt(float64(q.X), float64(q.Y))
	}
	return out
}

// paintShape draws the edges and vertex handles of s. Vertex hv, when
// non-negative, is drawn enlarged in the highlight colour: filled when it can
// be dragged, outlined when the pointer snaps to it while drawing.
func paintShape(dst *image.RGBA, s *shape.Shape, pt func(geom.Point) image.Point, line, vertex color.RGBA, hv int, th *theme.Theme) {
	lc, vc, hc := straight(line), straight(vertex), straight(th.VertexHighlight)
	n := s.Len()
	for i := 0; i+1 < n; i++ {
		a, b := pt(s.At(i)), pt(s.At(i+1))
		drawLine(dst, a.X, a.Y, b.X, b.Y, lc, 1)
	}
	if s.IsClosed() && n > 2 {
		a, b := pt(s.Last()), pt(s.First())
		drawLine(dst, a.X, a.Y, b.X, b.Y, lc, 1)
	}
	for i := 0; i < n; i++ {
		p := pt(s.At(i))
		if i == hv {
			r := image.Rect(p.X-highlightSize/2, p.Y-highlightSize/2, p.X+highlightSize/2, p.Y+highlightSize/2)
			if s.HighlightMode == shape.NearVertex {
				drawRect(dst, r, hc, 1)
			} else {
				fillRect(dst, r, hc)
			}
			continue
		}
		fillRect(dst, image.Rect(p.X-vertexSize/2, p.Y-vertexSize/2, p.X+vertexSize/2, p.Y+vertexSize/2), vc)
	}
}

// straight reinterprets a theme colour as non-premultiplied so translucent
// hex values blend as written.
func straight(c color.RGBA) color.NRGBA { return color.NRGBA(c) }
