package config

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"

	"github.com/example/annocanvas/internal/canvas"
	"github.com/example/annocanvas/internal/history"
	"github.com/example/annocanvas/internal/notify"
	"github.com/example/annocanvas/internal/theme"
)

// Canvas holds the interaction settings of the annotation canvas.
type Canvas struct {
	Epsilon    float64 `toml:"epsilon"`
	Strategy   string  `toml:"strategy"`
	Square     bool    `toml:"square"`
	DropAction string  `toml:"drop_action"`
	NudgeStep  float64 `toml:"nudge_step"`
}

// History holds backup stack settings.
type History struct {
	Limit int `toml:"limit"`
}

// Viewer holds window settings.
type Viewer struct {
	Width    int     `toml:"width"`
	Height   int     `toml:"height"`
	ZoomStep float64 `toml:"zoom_step"`
}

// Notify holds notification settings.
type Notify struct {
	Open  bool `toml:"open"`
	Copy  bool `toml:"copy"`
	Paste bool `toml:"paste"`
}

// Config holds the application configuration.
type Config struct {
	Theme    string  `toml:"theme,omitempty"`
	ImageDir string  `toml:"image_dir,omitempty"`
	Canvas   Canvas  `toml:"canvas"`
	History  History `toml:"history"`
	Viewer   Viewer  `toml:"viewer"`
	Notify   Notify  `toml:"notify"`

	Themes map[string]*theme.Theme `toml:"-"`
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme: "", // Default to empty to allow fallback to Env/Default
		Canvas: Canvas{
			Epsilon:    5,
			Strategy:   canvas.StrategyFourPoint.String(),
			DropAction: canvas.DropCopy.String(),
			NudgeStep:  1,
		},
		History: History{Limit: history.DefaultLimit},
		Viewer:  Viewer{Width: 1024, Height: 768, ZoomStep: 1.25},
		Themes:  make(map[string]*theme.Theme),
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if _, err := canvas.ParseStrategy(c.Canvas.Strategy); err != nil {
		return fmt.Errorf("canvas.strategy: %w", err)
	}
	if _, err := canvas.ParseDropAction(c.Canvas.DropAction); err != nil {
		return fmt.Errorf("canvas.drop_action: %w", err)
	}
	if c.Canvas.Epsilon <= 0 {
		return fmt.Errorf("canvas.epsilon must be positive, got %v", c.Canvas.Epsilon)
	}
	if c.Canvas.NudgeStep <= 0 {
		return fmt.Errorf("canvas.nudge_step must be positive, got %v", c.Canvas.NudgeStep)
	}
	if c.History.Limit < 1 {
		return fmt.Errorf("history.limit must be at least 1, got %d", c.History.Limit)
	}
	if c.Viewer.Width < 1 || c.Viewer.Height < 1 {
		return fmt.Errorf("viewer size must be positive, got %dx%d", c.Viewer.Width, c.Viewer.Height)
	}
	if c.Viewer.ZoomStep <= 1 {
		return fmt.Errorf("viewer.zoom_step must be greater than 1, got %v", c.Viewer.ZoomStep)
	}
	return nil
}

// CanvasOptions converts the canvas and history sections to canvas options.
func (c *Config) CanvasOptions() ([]canvas.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	strategy, _ := canvas.ParseStrategy(c.Canvas.Strategy)
	drop, _ := canvas.ParseDropAction(c.Canvas.DropAction)
	return []canvas.Option{
		canvas.WithEpsilon(c.Canvas.Epsilon),
		canvas.WithStrategy(strategy),
		canvas.WithSquare(c.Canvas.Square),
		canvas.WithDropAction(drop),
		canvas.WithNudgeStep(c.Canvas.NudgeStep),
		canvas.WithHistoryLimit(c.History.Limit),
	}, nil
}

// ResolveTheme returns the named theme from the config's own theme blocks,
// falling back to the loader's lookup.
func (c *Config) ResolveTheme(name string, l *theme.Loader) (*theme.Theme, error) {
	if name == "" {
		name = c.Theme
	}
	if t, ok := c.Themes[name]; ok {
		return t, nil
	}
	return l.Load(name)
}

// Notifier returns a notifier with the configured events enabled.
func (c *Config) Notifier(prefs notify.Preferences, log *logrus.Logger) *notify.Notifier {
	n := notify.New(prefs, log)
	n.Enable(notify.EventOpen, c.Notify.Open)
	n.Enable(notify.EventCopy, c.Notify.Copy)
	n.Enable(notify.EventPaste, c.Notify.Paste)
	return n
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	// Root section
	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.ImageDir != "" {
		fmt.Fprintf(&sb, "image_dir = %s\n", c.ImageDir)
	}
	sb.WriteString("\n")

	sb.WriteString("[canvas]\n")
	fmt.Fprintf(&sb, "epsilon = %v\n", c.Canvas.Epsilon)
	fmt.Fprintf(&sb, "strategy = %s\n", c.Canvas.Strategy)
	fmt.Fprintf(&sb, "square = %v\n", c.Canvas.Square)
	fmt.Fprintf(&sb, "drop_action = %s\n", c.Canvas.DropAction)
	fmt.Fprintf(&sb, "nudge_step = %v\n", c.Canvas.NudgeStep)
	sb.WriteString("\n")

	sb.WriteString("[history]\n")
	fmt.Fprintf(&sb, "limit = %d\n", c.History.Limit)
	sb.WriteString("\n")

	sb.WriteString("[viewer]\n")
	fmt.Fprintf(&sb, "width = %d\n", c.Viewer.Width)
	fmt.Fprintf(&sb, "height = %d\n", c.Viewer.Height)
	fmt.Fprintf(&sb, "zoom_step = %v\n", c.Viewer.ZoomStep)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "open = %v\n", c.Notify.Open)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	fmt.Fprintf(&sb, "paste = %v\n", c.Notify.Paste)
	sb.WriteString("\n")

	for _, name := range c.themeNames() {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		for _, f := range theme.Fields(t) {
			fmt.Fprintf(&sb, "%s: %s\n", f.Name, theme.Hex(f.Color))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// TOML renders the configuration as a TOML document. Theme blocks are
// written as [themes.NAME] tables of hex strings.
func (c *Config) TOML() ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if len(c.Themes) == 0 {
		return buf.Bytes(), nil
	}
	themes := make(map[string]map[string]string, len(c.Themes))
	for _, name := range c.themeNames() {
		t := c.Themes[name]
		block := map[string]string{"Name": t.Name}
		for _, f := range theme.Fields(t) {
			block[f.Name] = theme.Hex(f.Color)
		}
		themes[name] = block
	}
	buf.WriteString("\n")
	if err := enc.Encode(tomlThemes{Themes: themes}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type tomlThemes struct {
	Themes map[string]map[string]string `toml:"themes"`
}

func (c *Config) themeNames() []string {
	names := make([]string, 0, len(c.Themes))
	for name := range c.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
