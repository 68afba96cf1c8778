package theme

import (
	"embed"
	"hash/fnv"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// EmbeddedThemes holds the themes shipped with the binary.
//
//go:embed defaults/*.theme
var EmbeddedThemes embed.FS

// Theme defines the colour palette used to paint the canvas.
type Theme struct {
	Name string

	// General
	Background color.RGBA // Window background around the image
	Foreground color.RGBA // Status text

	// Canvas backdrop for transparent images
	CheckerLight color.RGBA
	CheckerDark  color.RGBA

	// Shapes
	ShapeLine       color.RGBA // Outline of unselected shapes without a label colour
	SelectedLine    color.RGBA
	SelectedFill    color.RGBA // Usually translucent
	VertexFill      color.RGBA
	VertexHighlight color.RGBA // Vertex under the pointer
	DrawingLine     color.RGBA // In-progress shape and preview line
	Crosshair       color.RGBA
	CopyLine        color.RGBA // Copies following a right drag
}

// Default returns the hardcoded default light theme (fallback).
func Default() *Theme {
	return &Theme{
		Name:            "Default",
		Background:      color.RGBA{220, 220, 220, 255},
		Foreground:      color.RGBA{0, 0, 0, 255},
		CheckerLight:    color.RGBA{220, 220, 220, 255},
		CheckerDark:     color.RGBA{192, 192, 192, 255},
		ShapeLine:       color.RGBA{0, 255, 0, 255},
		SelectedLine:    color.RGBA{255, 255, 255, 255},
		SelectedFill:    color.RGBA{0, 255, 0, 64},
		VertexFill:      color.RGBA{0, 255, 0, 255},
		VertexHighlight: color.RGBA{255, 0, 0, 255},
		DrawingLine:     color.RGBA{255, 0, 0, 255},
		Crosshair:       color.RGBA{0, 0, 0, 255},
		CopyLine:        color.RGBA{0, 128, 255, 255},
	}
}

// LabelColor derives a stable line colour from a label so shapes sharing a
// label share a colour. An empty label gets the theme's ShapeLine.
func (t *Theme) LabelColor(label string) color.RGBA {
	if label == "" {
		return t.ShapeLine
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(label))
	hue := math.Mod(float64(h.Sum32()), 360)
	r, g, b := colorful.Hsv(hue, 0.75, 0.95).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
