package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/annocanvas/internal/config"
)

type configCmd struct {
	*root
	fs     *flag.FlagSet
	format string
	output string
	stdout io.Writer
}

func (c *configCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseConfigCmd(args []string, r *root) (*configCmd, error) {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	c := &configCmd{root: r, fs: fs, stdout: os.Stdout}
	fs.StringVar(&c.format, "format", "", "output format: rc or toml (default from the file extension, else rc)")
	fs.StringVar(&c.output, "output", "", "file written by save (default: the loaded config file)")
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	switch strings.ToLower(c.format) {
	case "", "rc", "toml":
	default:
		return nil, fmt.Errorf("unknown config format %q", c.format)
	}
	return c, nil
}

func (c *configCmd) Run() error {
	args := c.fs.Args()
	if len(args) < 1 {
		return &UsageError{of: c}
	}

	subCmd := args[0]
	switch subCmd {
	case "print":
		return c.runPrint()
	case "save":
		return c.runSave()
	default:
		return fmt.Errorf("unknown config command: %s", subCmd)
	}
}

// encode renders the configuration, as TOML when format or the target path
// asks for it.
func (c *configCmd) encode(path string) ([]byte, error) {
	format := strings.ToLower(c.format)
	if format == "" && strings.EqualFold(filepath.Ext(path), ".toml") {
		format = "toml"
	}
	if format == "toml" {
		return c.root.config.TOML()
	}
	return []byte(c.root.config.String()), nil
}

func (c *configCmd) runPrint() error {
	data, err := c.encode("")
	if err != nil {
		return err
	}
	_, err = c.stdout.Write(data)
	return err
}

func (c *configCmd) runSave() error {
	path := c.output
	if path == "" {
		// If loader found a config file, save there
		path = config.NewLoader(version, c.configPath).GetConfigPath()
	}
	if path == "" {
		path = config.DefaultPath()
		if strings.EqualFold(c.format, "toml") {
			path = strings.TrimSuffix(path, filepath.Ext(path)) + ".toml"
		}
	}

	data, err := c.encode(path)
	if err != nil {
		return err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}

	c.log.WithField("path", path).Info("configuration saved")
	fmt.Fprintf(os.Stderr, "Configuration saved to %s\n", path)
	return nil
}
