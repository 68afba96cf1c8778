package viewer

import (
	"fmt"
	"image"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/sirupsen/logrus"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/annocanvas/internal/canvas"
	"github.com/example/annocanvas/internal/clipboard"
	"github.com/example/annocanvas/internal/geom"
	"github.com/example/annocanvas/internal/notify"
	"github.com/example/annocanvas/internal/render"
	"github.com/example/annocanvas/internal/shape"
	"github.com/example/annocanvas/internal/theme"
)

const (
	doubleClickTime  = 400 * time.Millisecond
	doubleClickSlop  = 4
	scrollStep       = 40
	minScale         = 0.05
	maxScale         = 20
	messageLifetime  = 2 * time.Second
	defaultZoomRatio = 1.25
)

// pasteResult carries shapes read from the clipboard back to the event loop.
type pasteResult struct {
	shapes []*shape.Shape
	err    error
}

// session is the window-independent part of the viewer: it owns the canvas
// and translates window input into canvas input.
type session struct {
	c     *canvas.Canvas
	img   image.Image
	theme *theme.Theme
	log   *logrus.Logger
	notes *notify.Notifier

	winW, winH int
	scroll     image.Point
	zoomStep   float64

	lastClick   time.Time
	lastClickAt geom.Point
	double      bool

	defaultLabel string
	labelling    bool
	label        string
	created      shape.ID

	zoom         float64
	message      string
	messageUntil time.Time

	now         func() time.Time
	post        func(any)
	copyShapes  func([]*shape.Shape) error
	copyImage   func(image.Image) error
	pasteShapes func() ([]*shape.Shape, error)
}

func newSession(c *canvas.Canvas, img image.Image) *session {
	s := &session{
		c:           c,
		img:         img,
		theme:       theme.Default(),
		log:         logrus.StandardLogger(),
		zoomStep:    defaultZoomRatio,
		now:         time.Now,
		copyShapes:  clipboard.CopyShapes,
		copyImage:   clipboard.WriteImage,
		pasteShapes: clipboard.PasteShapes,
	}
	s.post = func(e any) { s.handle(e) }
	c.AddObserver(canvas.Funcs{
		OnShapeCreated: func(sh *shape.Shape) {
			s.log.WithFields(logrus.Fields{"id": sh.ID, "points": sh.Len()}).Info("shape created")
			s.created = sh.ID
		},
		OnScrollRequested: s.scrollBy,
		OnZoomRequested: func(delta float64) {
			s.zoom += delta
		},
		OnSelectionChanged: func(ids []shape.ID) {
			s.log.WithField("count", len(ids)).Debug("selection changed")
		},
		OnDrawingActive: func(active bool) {
			s.log.WithField("active", active).Debug("drawing")
		},
	})
	return s
}

// resize records the window size and fits the image to it.
func (s *session) resize(w, h int, fit bool) {
	s.winW, s.winH = w, h
	if fit {
		v := s.c.Viewport()
		aw, ah := s.area()
		scale := math.Min(aw/v.Width, ah/v.Height)
		s.c.SetScale(clampScale(scale))
	}
	s.layout()
}

func (s *session) area() (float64, float64) {
	return float64(s.winW), math.Max(1, float64(s.winH-render.StatusHeight))
}

// layout sizes the canvas widget to cover the window and the scaled image,
// and keeps the scroll offset inside the scrollable range.
func (s *session) layout() {
	aw, ah := s.area()
	sz := s.c.Viewport().ScaledSize()
	s.c.SetViewportSize(math.Max(aw, sz.X), math.Max(ah, sz.Y))
	maxX := int(math.Max(0, math.Ceil(sz.X-aw)))
	maxY := int(math.Max(0, math.Ceil(sz.Y-ah)))
	s.scroll.X = min(max(s.scroll.X, 0), maxX)
	s.scroll.Y = min(max(s.scroll.Y, 0), maxY)
}

func (s *session) scrollBy(delta float64, axis canvas.Axis) {
	px := int(math.Round(-delta / canvas.WheelStep * scrollStep))
	if axis == canvas.Horizontal {
		s.scroll.X += px
	} else {
		s.scroll.Y += px
	}
	s.layout()
}

func (s *session) zoomBy(factor float64) {
	s.c.SetScale(clampScale(s.c.Viewport().Scale * factor))
	s.layout()
}

func clampScale(v float64) float64 {
	return math.Min(maxScale, math.Max(minScale, v))
}

// handle processes one window or control event and reports whether the
// window needs repainting and whether it should close.
func (s *session) handle(e any) (repaint, quit bool) {
	switch e := e.(type) {
	case mouse.Event:
		repaint = s.handleMouse(e)
	case key.Event:
		repaint, quit = s.handleKey(e)
	case pasteResult:
		repaint = s.pasted(e)
	case canvas.Command:
		repaint = s.c.HandleEvent(e)
	}
	s.afterEvent()
	return repaint, quit
}

// afterEvent applies work deferred by observers until the canvas call that
// triggered it has returned.
func (s *session) afterEvent() {
	if s.zoom != 0 {
		s.zoomBy(math.Pow(s.zoomStep, s.zoom/canvas.WheelStep))
		s.zoom = 0
	}
	if s.created != shape.NilID && !s.labelling {
		if s.defaultLabel != "" {
			s.created = shape.NilID
			s.c.SetLastLabel(s.defaultLabel)
		} else {
			s.labelling = true
			s.label = ""
		}
	}
}

func (s *session) handleMouse(e mouse.Event) bool {
	if s.labelling {
		return false
	}
	e.X += float32(s.scroll.X)
	e.Y += float32(s.scroll.Y)
	if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
		now := s.now()
		at := geom.Pt(float64(e.X), float64(e.Y))
		s.double = now.Sub(s.lastClick) < doubleClickTime && at.Distance(s.lastClickAt) <= doubleClickSlop
		if s.double {
			s.lastClick = time.Time{}
		} else {
			s.lastClick, s.lastClickAt = now, at
		}
	}
	s.c.HandleEvent(e)
	if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease && s.double {
		s.double = false
		s.c.HandleEvent(canvas.DoubleClick{X: e.X, Y: e.Y})
	}
	return true
}

type viewerShortcut struct {
	keys []canvas.KeyShortcut
	run  func(s *session) bool
}

var viewerShortcuts = []viewerShortcut{
	{[]canvas.KeyShortcut{{Rune: 'w'}}, func(s *session) bool { return s.c.HandleEvent(canvas.ToggleDrawing{}) }},
	{[]canvas.KeyShortcut{{Rune: 'e'}}, func(s *session) bool { s.c.SetEditing(true); return true }},
	{[]canvas.KeyShortcut{{Rune: 's'}}, func(s *session) bool { return s.c.HandleEvent(canvas.SetSquareMode{On: !s.c.Square()}) }},
	{[]canvas.KeyShortcut{{Rune: 'f'}}, func(s *session) bool {
		return s.c.HandleEvent(canvas.SelectStrategy{Strategy: canvas.StrategyFourPoint})
	}},
	{[]canvas.KeyShortcut{{Rune: 'r'}}, func(s *session) bool {
		return s.c.HandleEvent(canvas.SelectStrategy{Strategy: canvas.StrategyRectangle})
	}},
	{[]canvas.KeyShortcut{{Rune: 'p'}}, func(s *session) bool {
		return s.c.HandleEvent(canvas.SelectStrategy{Strategy: canvas.StrategyPolygon})
	}},
	{[]canvas.KeyShortcut{{Rune: 'h'}}, (*session).hideSelected},
	{[]canvas.KeyShortcut{{Rune: 'h', Modifiers: key.ModShift}}, (*session).showAll},
	{[]canvas.KeyShortcut{{Rune: 'u'}}, func(s *session) bool { return s.c.Len() > 0 && s.c.UndoLastLine() }},
	{[]canvas.KeyShortcut{{Rune: 'c', Modifiers: key.ModControl}}, (*session).copySelection},
	{[]canvas.KeyShortcut{{Rune: 'c', Modifiers: key.ModControl | key.ModShift}}, (*session).copyFrame},
	{[]canvas.KeyShortcut{{Rune: 'v', Modifiers: key.ModControl}}, (*session).paste},
}

func (s *session) handleKey(e key.Event) (repaint, quit bool) {
	if e.Direction == key.DirRelease {
		return false, false
	}
	if s.labelling {
		return s.labelKey(e), false
	}
	switch e.Rune {
	case 'q', 'Q':
		if e.Modifiers&^key.ModShift == 0 || e.Modifiers == key.ModControl {
			return false, true
		}
	case '+', '=':
		s.zoomBy(s.zoomStep)
		return true, false
	case '-':
		s.zoomBy(1 / s.zoomStep)
		return true, false
	case '0':
		s.resize(s.winW, s.winH, true)
		return true, false
	}
	for _, sc := range viewerShortcuts {
		for _, k := range sc.keys {
			if k.Matches(e) {
				return sc.run(s), false
			}
		}
	}
	return s.c.HandleEvent(e), false
}

// labelKey edits the label of the shape that was just created. Enter
// confirms it, Escape drops the shape.
func (s *session) labelKey(e key.Event) bool {
	switch e.Code {
	case key.CodeReturnEnter, key.CodeKeypadEnter:
		s.labelling = false
		if text := strings.TrimSpace(s.label); text != "" {
			s.c.SetLastLabel(text)
		} else {
			s.c.Confirm(s.created)
		}
		s.created = shape.NilID
		return true
	case key.CodeEscape:
		s.labelling = false
		s.created = shape.NilID
		s.c.Cancel()
		return true
	case key.CodeDeleteBackspace:
		if r := []rune(s.label); len(r) > 0 {
			s.label = string(r[:len(r)-1])
		}
		return true
	}
	if e.Rune > 0 && unicode.IsPrint(e.Rune) && e.Modifiers&key.ModControl == 0 {
		s.label += string(e.Rune)
		return true
	}
	return false
}

func (s *session) hideSelected() bool {
	ids := s.c.Selected()
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		s.c.HandleEvent(canvas.SetVisibility{ID: id, Visible: false})
	}
	s.c.DeselectShape()
	return true
}

func (s *session) showAll() bool {
	for _, sh := range s.c.Shapes() {
		s.c.HandleEvent(canvas.SetVisibility{ID: sh.ID, Visible: true})
	}
	return true
}

func (s *session) copySelection() bool {
	shapes := s.c.SelectedShapes()
	if len(shapes) == 0 {
		shapes = s.c.Shapes()
	}
	if err := s.copyShapes(shapes); err != nil {
		s.log.Warnf("copy: %v", err)
		s.flash(fmt.Sprintf("copy failed: %v", err))
		return true
	}
	s.notes.Copy(notify.Shapes(len(shapes)))
	s.flash(fmt.Sprintf("copied %s", notify.Shapes(len(shapes))))
	return true
}

func (s *session) copyFrame() bool {
	if s.img == nil {
		return false
	}
	if err := s.copyImage(render.Export(s.c, s.img, s.theme)); err != nil {
		s.log.Warnf("copy frame: %v", err)
		s.flash(fmt.Sprintf("copy failed: %v", err))
		return true
	}
	s.notes.Copy("annotated image")
	s.flash("copied annotated image")
	return true
}

// paste reads the clipboard off the event loop and posts the result back.
func (s *session) paste() bool {
	read := s.pasteShapes
	post := s.post
	go func() {
		shapes, err := read()
		post(pasteResult{shapes: shapes, err: err})
	}()
	return false
}

func (s *session) pasted(r pasteResult) bool {
	if r.err != nil {
		s.log.Warnf("paste: %v", r.err)
		s.flash(fmt.Sprintf("paste failed: %v", r.err))
		return true
	}
	v := s.c.Viewport()
	ids := make([]shape.ID, 0, len(r.shapes))
	for _, sh := range r.shapes {
		for i, p := range sh.Points {
			sh.Points[i] = v.Clamp(p)
		}
		ids = append(ids, sh.ID)
	}
	s.c.HandleEvent(canvas.ReplaceShapes{Shapes: r.shapes, Replace: false})
	s.c.SelectShapes(ids)
	s.notes.Paste(notify.Shapes(len(r.shapes)))
	s.flash(fmt.Sprintf("pasted %s", notify.Shapes(len(r.shapes))))
	return true
}

func (s *session) flash(msg string) {
	s.message = msg
	s.messageUntil = s.now().Add(messageLifetime)
}

// status is the text of the bottom strip.
func (s *session) status() string {
	if s.labelling {
		return "label: " + s.label + "_"
	}
	if s.message != "" && s.now().Before(s.messageUntil) {
		return s.message
	}
	parts := []string{
		s.c.Mode().String(),
		s.c.Strategy().String(),
	}
	if s.c.Square() {
		parts = append(parts, "square")
	}
	parts = append(parts,
		fmt.Sprintf("%d shapes", s.c.Len()),
		fmt.Sprintf("%d selected", len(s.c.Selected())),
		fmt.Sprintf("%.0f%%", s.c.Viewport().Scale*100),
	)
	return strings.Join(parts, " | ")
}

// frame captures the current paint state.
func (s *session) frame() render.Frame {
	f := render.Capture(s.c, s.img, s.theme)
	f.Scroll = s.scroll
	f.Status = s.status()
	return f
}
