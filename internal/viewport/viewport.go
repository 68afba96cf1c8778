// Package viewport maps between widget space and the image space of the
// backing bitmap.
package viewport

import (
	"golang.org/x/image/math/f64"

	"github.com/example/annocanvas/internal/geom"
)

// Viewport describes how the backing bitmap is shown in the widget.
type Viewport struct {
	// Scale is the zoom factor from image pixels to widget pixels.
	Scale float64
	// Size is the widget size in widget pixels.
	Size geom.Point
	// Width and Height of the backing bitmap; all valid image coordinates lie
	// within [0,Width]x[0,Height].
	Width, Height float64
}

// New returns a viewport at scale 1 for a bitmap of the given size.
func New(width, height float64) *Viewport {
	return &Viewport{Scale: 1, Width: width, Height: height, Size: geom.Pt(width, height)}
}

// Bounds returns the valid image-space rectangle.
func (v *Viewport) Bounds() geom.Rect {
	return geom.Rect{Max: geom.Pt(v.Width, v.Height)}
}

// OffsetToCenter returns the image-space offset that centres the scaled bitmap
// along any axis where it is smaller than the widget.
func (v *Viewport) OffsetToCenter() geom.Point {
	s := v.scale()
	w, h := v.Width*s, v.Height*s
	var off geom.Point
	if v.Size.X > w {
		off.X = (v.Size.X - w) / (2 * s)
	}
	if v.Size.Y > h {
		off.Y = (v.Size.Y - h) / (2 * s)
	}
	return off
}

// Transform returns the affine matrix taking widget coordinates to image
// coordinates.
func (v *Viewport) Transform() f64.Aff3 {
	s := v.scale()
	off := v.OffsetToCenter()
	return f64.Aff3{
		1 / s, 0, -off.X,
		0, 1 / s, -off.Y,
	}
}

// Inverse returns the affine matrix taking image coordinates back to widget
// coordinates.
func (v *Viewport) Inverse() f64.Aff3 {
	s := v.scale()
	off := v.OffsetToCenter()
	return f64.Aff3{
		s, 0, off.X * s,
		0, s, off.Y * s,
	}
}

// ToImage converts a widget-space point to image space.
func (v *Viewport) ToImage(p geom.Point) geom.Point {
	return apply(v.Transform(), p)
}

// ToWidget converts an image-space point to widget space.
func (v *Viewport) ToWidget(p geom.Point) geom.Point {
	return apply(v.Inverse(), p)
}

// OutOfBounds reports whether p falls outside the bitmap.
func (v *Viewport) OutOfBounds(p geom.Point) bool {
	return !(0 <= p.X && p.X <= v.Width && 0 <= p.Y && p.Y <= v.Height)
}

// Clamp moves p inside the bitmap bounds.
func (v *Viewport) Clamp(p geom.Point) geom.Point {
	return v.Bounds().Clamp(p)
}

// Snap clamps p and reports whether it had to move.
func (v *Viewport) Snap(p geom.Point) (geom.Point, bool) {
	if !v.OutOfBounds(p) {
		return p, false
	}
	return v.Clamp(p), true
}

// ScaledSize is the size the bitmap occupies in the widget.
func (v *Viewport) ScaledSize() geom.Point {
	s := v.scale()
	return geom.Pt(v.Width*s, v.Height*s)
}

func (v *Viewport) scale() float64 {
	if v.Scale <= 0 {
		return 1
	}
	return v.Scale
}

func apply(m f64.Aff3, p geom.Point) geom.Point {
	return geom.Point{
		X: m[0]*p.X + m[1]*p.Y + m[2],
		Y: m[3]*p.X + m[4]*p.Y + m[5],
	}
}
