package render

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/annocanvas/internal/canvas"
	"github.com/example/annocanvas/internal/geom"
	"github.com/example/annocanvas/internal/shape"
	"github.com/example/annocanvas/internal/theme"
)

var white = color.RGBA{255, 255, 255, 255}

func whiteImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	return img
}

func rect(x0, y0, x1, y1 float64) *shape.Shape {
	return shape.New(geom.Pt(x0, y0), geom.Pt(x1, y0), geom.Pt(x1, y1), geom.Pt(x0, y1))
}

func setup(t *testing.T, shapes ...*shape.Shape) (*canvas.Canvas, *image.RGBA) {
	t.Helper()
	c := canvas.New(100, 100)
	c.LoadShapes(shapes, true)
	return c, whiteImage(100, 100)
}

func TestExportDrawsOutlines(t *testing.T) {
	th := theme.Default()
	c, img := setup(t, rect(10, 10, 50, 50))
	out := Export(c, img, th)

	require.Equal(t, image.Rect(0, 0, 100, 100), out.Bounds())
	assert.Equal(t, th.ShapeLine, out.RGBAAt(10, 30))
	assert.Equal(t, th.ShapeLine, out.RGBAAt(30, 50))
	assert.Equal(t, th.VertexFill, out.RGBAAt(11, 11))
	assert.Equal(t, white, out.RGBAAt(30, 30))
	assert.Equal(t, white, out.RGBAAt(80, 80))
}

func TestExportUsesLabelColour(t *testing.T) {
	th := theme.Default()
	s := rect(10, 10, 50, 50)
	s.Label = "cat"
	c, img := setup(t, s)
	out := Export(c, img, th)
	assert.Equal(t, th.LabelColor("cat"), out.RGBAAt(30, 50))
}

func TestSelectedShapeFilled(t *testing.T) {
	th := theme.Default()
	s := rect(10, 10, 50, 50)
	c, img := setup(t, s)
	c.SelectShapes([]shape.ID{s.ID})

	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	Render(dst, Capture(c, img, th))
	inside := dst.RGBAAt(30, 30)
	assert.Less(t, inside.R, uint8(255))
	assert.Equal(t, uint8(255), inside.G)
	assert.Equal(t, th.SelectedLine, dst.RGBAAt(10, 30))

	// export never shows the selection
	assert.Equal(t, white, Export(c, img, th).RGBAAt(30, 30))
}

func TestHiddenShapesSkipped(t *testing.T) {
	s := rect(10, 10, 50, 50)
	c, img := setup(t, s)
	c.SetShapeVisible(s.ID, false)
	out := Export(c, img, theme.Default())
	assert.Equal(t, white, out.RGBAAt(10, 30))
}

func TestCrosshairWhileDrawing(t *testing.T) {
	th := theme.Default()
	c, img := setup(t)
	c.SetEditing(false)
	c.HandleEvent(mouse.Event{X: 40, Y: 70})

	f := Capture(c, img, th)
	require.True(t, f.HasCrosshair)
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	Render(dst, f)
	assert.Equal(t, th.Crosshair, dst.RGBAAt(5, 70))
	assert.Equal(t, th.Crosshair, dst.RGBAAt(40, 5))
	assert.Equal(t, white, dst.RGBAAt(5, 5))
}

func TestCurrentShapeAndPreview(t *testing.T) {
	th := theme.Default()
	c, img := setup(t)
	c.SetEditing(false)
	c.HandleEvent(mouse.Event{X: 20, Y: 20, Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	c.HandleEvent(mouse.Event{X: 20, Y: 20, Button: mouse.ButtonLeft, Direction: mouse.DirRelease})
	c.HandleEvent(mouse.Event{X: 80, Y: 20})

	f := Capture(c, img, th)
	require.NotNil(t, f.Current)
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	Render(dst, f)
	assert.Equal(t, th.DrawingLine, dst.RGBAAt(50, 20))
}

func TestCaptureIsDetached(t *testing.T) {
	s := rect(10, 10, 50, 50)
	c, img := setup(t, s)
	f := Capture(c, img, nil)
	s.MoveBy(geom.Pt(5, 5))
	assert.Equal(t, geom.Pt(10, 10), f.Shapes[0].First())
}

func TestScrollAndStatus(t *testing.T) {
	th := theme.Default()
	c, img := setup(t, rect(10, 10, 50, 50))
	f := Capture(c, img, th)
	f.Scroll = image.Pt(5, 0)
	f.Status = "EDIT"

	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	Render(dst, f)
	assert.Equal(t, th.ShapeLine, dst.RGBAAt(5, 30))
	assert.Equal(t, th.Background, dst.RGBAAt(99, 99))
}

func assertRed(t *testing.T, c color.RGBA) {
	t.Helper()
	assert.GreaterOrEqual(t, c.R, uint8(250))
	assert.LessOrEqual(t, c.G, uint8(5))
}

func TestFillPolygon(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	dst := whiteImage(40, 40)
	fillPolygon(dst, []geom.Point{geom.Pt(0, 0), geom.Pt(40, 0), geom.Pt(0, 40)}, red)
	assertRed(t, dst.RGBAAt(5, 5))
	assert.Equal(t, white, dst.RGBAAt(35, 35))
}

func TestFillPolygonClipped(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	dst := whiteImage(20, 20)
	assert.NotPanics(t, func() {
		fillPolygon(dst, []geom.Point{geom.Pt(-30, -30), geom.Pt(10, -30), geom.Pt(10, 10), geom.Pt(-30, 10)}, red)
	})
	assertRed(t, dst.RGBAAt(5, 5))
	assert.Equal(t, white, dst.RGBAAt(15, 15))

	assert.NotPanics(t, func() {
		fillPolygon(dst, []geom.Point{geom.Pt(50, 50), geom.Pt(60, 50), geom.Pt(60, 60)}, red)
	})
}
