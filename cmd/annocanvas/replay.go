package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/sync/errgroup"

	"github.com/example/annocanvas/internal/canvas"
	"github.com/example/annocanvas/internal/render"
	"github.com/example/annocanvas/internal/shape"
	"github.com/example/annocanvas/internal/theme"
)

// replayCmd runs a script of input events against a canvas without a window.
type replayCmd struct {
	width    int
	height   int
	image    string
	script   string
	shapes   string
	out      string
	strategy string
	square   bool
	stdin    io.Reader
	stdout   io.Writer
	*root
	fs *flag.FlagSet
}

func (p *replayCmd) FlagSet() *flag.FlagSet {
	return p.fs
}

func parseReplayCmd(args []string, r *root) (*replayCmd, error) {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	p := &replayCmd{root: r, fs: fs, stdin: os.Stdin, stdout: os.Stdout}
	fs.IntVar(&p.width, "width", 0, "canvas width in pixels")
	fs.IntVar(&p.height, "height", 0, "canvas height in pixels")
	fs.StringVar(&p.image, "image", "", "background image; sets the canvas size")
	fs.StringVar(&p.script, "script", "-", "script file, - for stdin")
	fs.StringVar(&p.shapes, "shapes", "", "load shapes from a text file before replaying")
	fs.StringVar(&p.out, "out", "", "write the annotated image to this file")
	fs.StringVar(&p.strategy, "strategy", "", "initial drawing strategy (default from config)")
	fs.BoolVar(&p.square, "square", false, "start with the square constraint on")
	fs.Usage = usageFunc(p)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if p.image == "" && (p.width <= 0 || p.height <= 0) {
		return nil, &UsageError{of: p, msg: "either -image or a positive -width and -height is required"}
	}
	if p.strategy != "" {
		if _, err := canvas.ParseStrategy(p.strategy); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *replayCmd) Run() error {
	var bg image.Image
	w, h := p.width, p.height
	if p.image != "" {
		img, err := openImageFn(p.image)
		if err != nil {
			return fmt.Errorf("failed to open image %s: %w", p.image, err)
		}
		bg = img
		w, h = img.Bounds().Dx(), img.Bounds().Dy()
	}

	events, err := p.readScript()
	if err != nil {
		return err
	}

	opts, err := p.config.CanvasOptions()
	if err != nil {
		return err
	}
	opts = append(opts, canvas.WithLogger(p.log))
	if p.strategy != "" {
		s, _ := canvas.ParseStrategy(p.strategy)
		opts = append(opts, canvas.WithStrategy(s))
	}
	if p.square {
		opts = append(opts, canvas.WithSquare(true))
	}
	c := canvas.New(float64(w), float64(h), opts...)
	if p.shapes != "" {
		shapes, err := readShapes(p.shapes)
		if err != nil {
			return err
		}
		c.LoadShapes(shapes, true)
	}

	if err := replay(context.Background(), c, events); err != nil {
		return err
	}
	p.log.WithField("shapes", c.Len()).Info("replay finished")

	if _, err := io.WriteString(p.stdout, shape.FormatText(c.Shapes())); err != nil {
		return err
	}
	if p.out != "" {
		th := p.activeTheme
		if th == nil {
			th = theme.Default()
		}
		if bg == nil {
			bg = imaging.New(w, h, th.Background)
		}
		if err := imaging.Save(render.Export(c, bg, th), p.out); err != nil {
			return fmt.Errorf("failed to export %s: %w", p.out, err)
		}
	}
	return nil
}

func (p *replayCmd) readScript() ([]any, error) {
	if p.script == "-" {
		return parseScript(p.stdin)
	}
	f, err := os.Open(p.script)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()
	events, err := parseScript(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.script, err)
	}
	return events, nil
}

// replay feeds events to c through a queue: one goroutine posts while the
// queue applies them in order.
func replay(ctx context.Context, c *canvas.Canvas, events []any) error {
	q := canvas.NewQueue(c, 16)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer q.Close()
		for _, e := range events {
			if err := q.Post(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
	g.Go(func() error { return q.Run(ctx) })
	return g.Wait()
}

var keyNames = map[string]key.Event{
	"escape":    {Code: key.CodeEscape},
	"enter":     {Code: key.CodeReturnEnter},
	"left":      {Code: key.CodeLeftArrow},
	"right":     {Code: key.CodeRightArrow},
	"up":        {Code: key.CodeUpArrow},
	"down":      {Code: key.CodeDownArrow},
	"delete":    {Code: key.CodeDeleteForward},
	"backspace": {Code: key.CodeDeleteBackspace},
	"undo":      {Rune: 'z', Code: key.CodeZ, Modifiers: key.ModControl},
	"duplicate": {Rune: 'd', Code: key.CodeD, Modifiers: key.ModControl},
}

var wheelNames = map[string]mouse.Button{
	"up":    mouse.ButtonWheelUp,
	"down":  mouse.ButtonWheelDown,
	"left":  mouse.ButtonWheelLeft,
	"right": mouse.ButtonWheelRight,
}

// parseScript reads one input event per line.
func parseScript(r io.Reader) ([]any, error) {
	var events []any
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		e, err := parseCommand(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		events = append(events, e)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func parseCommand(line string) (any, error) {
	fields := strings.Fields(line)
	name, args := strings.ToLower(fields[0]), fields[1:]
	switch name {
	case "press", "release", "move", "dblclick":
		x, y, rest, err := parsePoint(args)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if name == "dblclick" {
			if len(rest) > 0 {
				return nil, fmt.Errorf("dblclick: unexpected %q", rest[0])
			}
			return canvas.DoubleClick{X: x, Y: y}, nil
		}
		if name == "move" && len(rest) > 0 {
			return nil, fmt.Errorf("move: unexpected %q", rest[0])
		}
		e := mouse.Event{X: x, Y: y}
		switch name {
		case "press":
			e.Direction = mouse.DirPress
			e.Button = mouse.ButtonLeft
		case "release":
			e.Direction = mouse.DirRelease
			e.Button = mouse.ButtonLeft
		}
		for _, a := range rest {
			switch strings.ToLower(a) {
			case "left":
				e.Button = mouse.ButtonLeft
			case "right":
				e.Button = mouse.ButtonRight
			case "ctrl":
				e.Modifiers |= key.ModControl
			default:
				return nil, fmt.Errorf("%s: unexpected %q", name, a)
			}
		}
		return e, nil
	case "wheel":
		if len(args) == 0 || len(args) > 2 {
			return nil, fmt.Errorf("wheel: want up|down|left|right [ctrl]")
		}
		b, ok := wheelNames[strings.ToLower(args[0])]
		if !ok {
			return nil, fmt.Errorf("wheel: unknown direction %q", args[0])
		}
		e := mouse.Event{Button: b, Direction: mouse.DirStep}
		if len(args) == 2 {
			if !strings.EqualFold(args[1], "ctrl") {
				return nil, fmt.Errorf("wheel: unexpected %q", args[1])
			}
			e.Modifiers = key.ModControl
		}
		return e, nil
	case "key":
		if len(args) != 1 {
			return nil, fmt.Errorf("key: want one key name")
		}
		e, ok := keyNames[strings.ToLower(args[0])]
		if !ok {
			return nil, fmt.Errorf("key: unknown key %q", args[0])
		}
		e.Direction = key.DirPress
		return e, nil
	case "draw", "square":
		on, err := parseSwitch(args)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if name == "draw" {
			return canvas.SetDrawing{On: on}, nil
		}
		return canvas.SetSquareMode{On: on}, nil
	case "strategy":
		if len(args) != 1 {
			return nil, fmt.Errorf("strategy: want one name")
		}
		s, err := canvas.ParseStrategy(args[0])
		if err != nil {
			return nil, err
		}
		return canvas.SelectStrategy{Strategy: s}, nil
	case "label":
		text := strings.TrimSpace(line[len(fields[0]):])
		if strings.HasPrefix(text, `"`) {
			u, err := strconv.Unquote(text)
			if err != nil {
				return nil, fmt.Errorf("label: %w", err)
			}
			text = u
		}
		if text == "" {
			return nil, fmt.Errorf("label: empty text")
		}
		return canvas.LabelLast{Text: text}, nil
	case "confirm":
		if len(args) != 0 {
			return nil, fmt.Errorf("confirm: takes no arguments")
		}
		return canvas.ConfirmShapes{}, nil
	}
	return nil, fmt.Errorf("unknown command %q", fields[0])
}

func parsePoint(args []string) (x, y float32, rest []string, err error) {
	if len(args) < 2 {
		return 0, 0, nil, fmt.Errorf("want X Y")
	}
	fx, err := strconv.ParseFloat(args[0], 32)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("bad x %q", args[0])
	}
	fy, err := strconv.ParseFloat(args[1], 32)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("bad y %q", args[1])
	}
	return float32(fx), float32(fy), args[2:], nil
}

func parseSwitch(args []string) (bool, error) {
	if len(args) != 1 {
		return false, fmt.Errorf("want on or off")
	}
	switch strings.ToLower(args[0]) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("want on or off, got %q", args[0])
}
