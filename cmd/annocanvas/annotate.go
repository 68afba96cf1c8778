package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/example/annocanvas/internal/canvas"
	"github.com/example/annocanvas/internal/render"
	"github.com/example/annocanvas/internal/shape"
	"github.com/example/annocanvas/internal/viewer"
)

var (
	openImageFn = func(path string) (image.Image, error) {
		return imaging.Open(path, imaging.AutoOrientation(true))
	}
	runViewerFn = func(v *viewer.Viewer) error { return v.Run() }
)

// annotateCmd represents the annotate subcommand.
type annotateCmd struct {
	file     string
	strategy string
	square   bool
	label    string
	shapes   string
	save     string
	export   string
	*root
	fs *flag.FlagSet
}

func (a *annotateCmd) FlagSet() *flag.FlagSet {
	return a.fs
}

func parseAnnotateCmd(args []string, r *root) (*annotateCmd, error) {
	fs := flag.NewFlagSet("annotate", flag.ContinueOnError)
	a := &annotateCmd{root: r, fs: fs}
	fs.StringVar(&a.file, "file", "", "image file to annotate")
	fs.StringVar(&a.strategy, "strategy", "", "drawing strategy: four_point, rectangle or polygon (default from config)")
	fs.BoolVar(&a.square, "square", false, "constrain rectangles and vertex drags to squares")
	fs.StringVar(&a.label, "label", "", "label new shapes with this text instead of prompting")
	fs.StringVar(&a.shapes, "shapes", "", "load shapes from a text file")
	fs.StringVar(&a.save, "save", "", "write shapes to this text file when the window closes")
	fs.StringVar(&a.export, "export", "", "write the annotated image to this file when the window closes")
	fs.Usage = usageFunc(a)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if a.file == "" {
		return nil, &UsageError{of: a, msg: "-file is required"}
	}
	if a.strategy != "" {
		if _, err := canvas.ParseStrategy(a.strategy); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// resolvePath looks for relative image paths in the configured image
// directory when they do not exist in the working directory.
func (a *annotateCmd) resolvePath() string {
	if filepath.IsAbs(a.file) || a.config == nil || a.config.ImageDir == "" {
		return a.file
	}
	if _, err := os.Stat(a.file); err == nil {
		return a.file
	}
	return filepath.Join(a.config.ImageDir, a.file)
}

func (a *annotateCmd) newCanvas(img image.Image) (*canvas.Canvas, error) {
	opts, err := a.config.CanvasOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, canvas.WithLogger(a.log))
	if a.strategy != "" {
		s, err := canvas.ParseStrategy(a.strategy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, canvas.WithStrategy(s))
	}
	if a.square {
		opts = append(opts, canvas.WithSquare(true))
	}
	b := img.Bounds()
	return canvas.New(float64(b.Dx()), float64(b.Dy()), opts...), nil
}

func (a *annotateCmd) Run() error {
	path := a.resolvePath()
	img, err := openImageFn(path)
	if err != nil {
		return fmt.Errorf("failed to open image %s: %w", path, err)
	}
	c, err := a.newCanvas(img)
	if err != nil {
		return err
	}
	if a.shapes != "" {
		shapes, err := readShapes(a.shapes)
		if err != nil {
			return err
		}
		c.LoadShapes(shapes, true)
	}
	a.notifier.Open(path)

	v := viewer.New(c, img,
		viewer.WithTheme(a.activeTheme),
		viewer.WithNotifier(a.notifier),
		viewer.WithLogger(a.log),
		viewer.WithSize(a.config.Viewer.Width, a.config.Viewer.Height),
		viewer.WithZoomStep(a.config.Viewer.ZoomStep),
		viewer.WithDefaultLabel(a.label),
		viewer.WithTitle(fmt.Sprintf("%s - %s", filepath.Base(path), a.program)),
	)
	if err := runViewerFn(v); err != nil {
		return fmt.Errorf("viewer: %w", err)
	}

	if a.save != "" {
		if err := writeShapes(a.save, c.Shapes()); err != nil {
			return err
		}
	}
	if a.export != "" {
		if err := imaging.Save(render.Export(c, img, a.activeTheme), a.export); err != nil {
			return fmt.Errorf("failed to export %s: %w", a.export, err)
		}
	}
	return nil
}

func readShapes(path string) ([]*shape.Shape, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shapes: %w", err)
	}
	shapes, err := shape.ParseText(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return shapes, nil
}

func writeShapes(path string, shapes []*shape.Shape) error {
	if err := os.WriteFile(path, []byte(shape.FormatText(shapes)), 0o644); err != nil {
		return fmt.Errorf("failed to write shapes: %w", err)
	}
	return nil
}
