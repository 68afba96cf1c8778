// Package viewer hosts an annotation canvas in a shiny window.
package viewer

import (
	"context"
	"image"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/annocanvas/internal/canvas"
	"github.com/example/annocanvas/internal/notify"
	"github.com/example/annocanvas/internal/render"
	"github.com/example/annocanvas/internal/theme"
)

// frameDropThreshold specifies how many consecutive frames can be cancelled
// before one is allowed to finish.
const frameDropThreshold = 10

// Viewer shows an image with its canvas and routes window input to it.
type Viewer struct {
	sess   *session
	title  string
	width  int
	height int
	err    error
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithTheme sets the colours used to paint the canvas.
func WithTheme(t *theme.Theme) Option {
	return func(v *Viewer) {
		if t != nil {
			v.sess.theme = t
		}
	}
}

// WithNotifier sets the desktop notifier used for copy and paste.
func WithNotifier(n *notify.Notifier) Option { return func(v *Viewer) { v.sess.notes = n } }

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(v *Viewer) {
		if l != nil {
			v.sess.log = l
		}
	}
}

// WithSize sets the initial window size.
func WithSize(width, height int) Option {
	return func(v *Viewer) { v.width, v.height = width, height }
}

// WithZoomStep sets the factor applied per zoom key press or wheel notch.
func WithZoomStep(step float64) Option {
	return func(v *Viewer) {
		if step > 1 {
			v.sess.zoomStep = step
		}
	}
}

// WithDefaultLabel labels new shapes without prompting.
func WithDefaultLabel(label string) Option {
	return func(v *Viewer) { v.sess.defaultLabel = label }
}

// WithTitle sets the window title.
func WithTitle(title string) Option { return func(v *Viewer) { v.title = title } }

// New returns a viewer for c painting img underneath the shapes.
func New(c *canvas.Canvas, img image.Image, opts ...Option) *Viewer {
	v := &Viewer{sess: newSession(c, img), title: "annocanvas", width: 1024, height: 768}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Run opens the window and blocks until it is closed.
func (v *Viewer) Run() error {
	driver.Main(func(s screen.Screen) { v.err = v.Main(s) })
	return v.err
}

// Main runs the event loop on an existing screen.
func (v *Viewer) Main(s screen.Screen) error {
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: v.width, Height: v.height, Title: v.title})
	if err != nil {
		return err
	}
	defer w.Release()

	sess := v.sess
	sess.post = func(e any) { w.Send(e) }
	sess.resize(v.width, v.height, true)
	width, height := v.width, v.height
	sized := false

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintJob, 1)
	defer close(paintCh)
	go func() {
		for job := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, s, w, job, sess.log)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()

	for {
		e := w.NextEvent()
		switch e := e.(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				return nil
			}
		case size.Event:
			width, height = e.WidthPx, e.HeightPx
			sess.resize(width, height, !sized)
			sized = true
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			job := paintJob{frame: sess.frame(), size: image.Pt(width, height)}
			select {
			case paintCh <- job:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- job
			}
		case mouse.Event, key.Event, pasteResult:
			repaint, quit := sess.handle(e)
			if quit {
				return nil
			}
			if repaint {
				w.Send(paint.Event{})
			}
		case error:
			sess.log.Errorf("window: %v", e)
		}
	}
}

type paintJob struct {
	frame render.Frame
	size  image.Point
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, job paintJob, log *logrus.Logger) {
	b, err := s.NewBuffer(job.size)
	if err != nil {
		log.Errorf("new buffer: %v", err)
		return
	}
	defer b.Release()
	render.Render(b.RGBA(), job.frame)
	if ctx.Err() != nil {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
