package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Loader handles loading the configuration.
type Loader struct {
	Version      string // Build version, used to determine dev mode
	OverridePath string // Set at compile time or from the command line
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load attempts to load the configuration. Files ending in .toml are read as
// TOML, everything else as RC.
func (l *Loader) Load() (*Config, error) {
	path := l.GetConfigPath()
	if path == "" {
		return New(), nil // No config file found, return defaults
	}
	return LoadFile(path)
}

// LoadFile reads the configuration at path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg *Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		cfg, err = ParseTOML(f)
	} else {
		cfg, err = Parse(f)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPath is where `config save` writes when no path is given.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "annocanvas", "config.rc")
}

// GetConfigPath returns the path to the configuration file, or empty string if not found.
func (l *Loader) GetConfigPath() string {
	// 1. Variable override path
	if l.OverridePath != "" {
		if _, err := os.Stat(l.OverridePath); err == nil {
			return l.OverridePath
		}
	}

	// 2. Local run directory (dev mode)
	if l.Version == "dev" {
		wd, _ := os.Getwd()
		for _, name := range []string{".annocanvasrc", ".annocanvas.toml"} {
			localPath := filepath.Join(wd, name)
			if _, err := os.Stat(localPath); err == nil {
				return localPath
			}
		}
	}

	// 3. XDG Config Path
	home, _ := os.UserHomeDir()
	dir := filepath.Join(home, ".config", "annocanvas")
	for _, name := range []string{"config.rc", "config.toml", "annocanvas.rc"} {
		xdgPath := filepath.Join(dir, name)
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	return ""
}
