//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && cgo

package clipboard

import (
	"bytes"
	"image"
	"sync"

	"golang.design/x/clipboard"
)

// initOnce guards clipboard.Init; its result is reported by every later call.
var (
	initOnce sync.Once
	initErr  error
)

func ensureInit() error {
	initOnce.Do(func() {
		if !hasDisplay() {
			initErr = ErrNoDisplay
			return
		}
		initErr = clipboard.Init()
	})
	return initErr
}

// WriteImage offers img as image/png.
func WriteImage(img image.Image) error {
	if err := ensureInit(); err != nil {
		return wrap("write image", err)
	}
	data, err := encodePNG(img)
	if err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}

// WriteText offers text as UTF-8.
func WriteText(text string) error {
	if err := ensureInit(); err != nil {
		return wrap("write text", err)
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

// ReadText returns the clipboard text without trailing NUL padding.
func ReadText() (string, error) {
	if err := ensureInit(); err != nil {
		return "", wrap("read text", err)
	}
	data := bytes.TrimRight(clipboard.Read(clipboard.FmtText), "\x00")
	if len(data) == 0 {
		return "", wrap("read text", ErrNoText)
	}
	return string(data), nil
}
