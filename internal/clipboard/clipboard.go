// Package clipboard moves annotations and rendered frames through the system
// clipboard. Shapes travel as text in the format of shape.FormatText so they
// can be pasted into other tools or back onto another canvas.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"

	"github.com/example/annocanvas/internal/shape"
)

var (
	// ErrNoShapes is returned by PasteShapes when the clipboard text holds no shape lines.
	ErrNoShapes = errors.New("clipboard does not contain shapes")
	// ErrNoText is returned when the clipboard offers no text.
	ErrNoText = errors.New("clipboard does not contain text")
	// ErrNoDisplay is returned when neither an X11 nor a Wayland display is set.
	ErrNoDisplay = errors.New("no DISPLAY or WAYLAND_DISPLAY to reach the clipboard")
)

func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

// wrap names the clipboard operation that failed.
func wrap(op string, err error) error {
	return fmt.Errorf("clipboard %s: %w", op, err)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, wrap("encode image", err)
	}
	return buf.Bytes(), nil
}

// CopyShapes publishes the given shapes as text.
func CopyShapes(shapes []*shape.Shape) error {
	if len(shapes) == 0 {
		return ErrNoShapes
	}
	return WriteText(shape.FormatText(shapes))
}

// PasteShapes reads shapes from the clipboard text.
func PasteShapes() ([]*shape.Shape, error) {
	text, err := ReadText()
	if err != nil {
		return nil, err
	}
	shapes, err := shape.ParseText(text)
	if err != nil {
		return nil, fmt.Errorf("parse clipboard: %w", err)
	}
	if len(shapes) == 0 {
		return nil, ErrNoShapes
	}
	return shapes, nil
}
