package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/example/annocanvas/internal/config"
	"github.com/example/annocanvas/internal/notify"
	"github.com/example/annocanvas/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs          *flag.FlagSet
	program     string
	config      *config.Config
	notifier    *notify.Notifier
	log         *logrus.Logger
	logLevel    string
	configPath  string
	themeName   string
	openAlerts  bool
	copyAlerts  bool
	pasteAlerts bool
	activeTheme *theme.Theme
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)

	r := &root{
		fs:      flag.NewFlagSet("annocanvas", flag.ExitOnError),
		program: "annocanvas",
		log:     log,
	}
	r.fs.StringVar(&r.logLevel, "log-level", "warning", "log level (debug, info, warning, error)")
	r.fs.StringVar(&r.configPath, "config", configPathOverride, "configuration file (.rc or .toml)")
	r.fs.StringVar(&r.themeName, "theme", "", "color theme to use (default, dark, a theme file, or a [theme.NAME] block)")
	r.fs.BoolVar(&r.openAlerts, "notify-open", false, "show a desktop notification after opening an image")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", false, "show a desktop notification after copying to the clipboard")
	r.fs.BoolVar(&r.pasteAlerts, "notify-paste", false, "show a desktop notification after pasting shapes")
	r.fs.Usage = usageFunc(r)
	return r
}

// setup applies the global flags: log level, configuration, notifications and
// theme. Flags given on the command line win over the configuration file.
func (r *root) setup() error {
	level, err := logrus.ParseLevel(r.logLevel)
	if err != nil {
		return fmt.Errorf("invalid -log-level: %w", err)
	}
	r.log.SetLevel(level)

	cfg, err := config.NewLoader(version, r.configPath).Load()
	if err != nil {
		r.log.Warnf("failed to load config: %v", err)
		cfg = config.New()
	}
	r.config = cfg

	set := map[string]bool{}
	r.fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["notify-open"] {
		cfg.Notify.Open = r.openAlerts
	}
	if set["notify-copy"] {
		cfg.Notify.Copy = r.copyAlerts
	}
	if set["notify-paste"] {
		cfg.Notify.Paste = r.pasteAlerts
	}
	r.notifier = cfg.Notifier(notify.LoadPreferences(), r.log)

	// Precedence: CLI > Env > Config > Default
	name := r.themeName
	if name == "" {
		name = os.Getenv("ANNOCANVAS_THEME")
	}
	t, err := cfg.ResolveTheme(name, theme.NewLoader())
	if err != nil {
		r.log.Warnf("failed to load theme %q: %v, using default", name, err)
		t = theme.Default()
	}
	r.activeTheme = t
	return nil
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if err := r.setup(); err != nil {
		return err
	}

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "annotate":
		cmd, err = parseAnnotateCmd(subArgs, r.subcommand(cmdName))
	case "replay":
		cmd, err = parseReplayCmd(subArgs, r.subcommand(cmdName))
	case "config":
		cmd, err = parseConfigCmd(subArgs, r.subcommand(cmdName))
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func (r *root) subcommand(name string) *root {
	sub := *r
	sub.program = strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
	return &sub
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
