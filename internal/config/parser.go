package config

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/example/annocanvas/internal/theme"
)

// Parse reads configuration in RC format from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	// Context for parsing
	var currentSection string
	var currentTheme *theme.Theme

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		// Handle Sections
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			currentTheme = nil

			if themeName, ok := strings.CutPrefix(currentSection, "theme."); ok {
				// Start with defaults so missing keys are fine
				currentTheme = theme.Default()
				currentTheme.Name = themeName
				cfg.Themes[themeName] = currentTheme
			}
			continue
		}

		// Parse Key = Value or Key: Value
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			if key, value, ok = strings.Cut(line, ":"); !ok {
				continue
			}
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		// Remove quotes if present
		if len(value) >= 2 && strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
			value = value[1 : len(value)-1]
		}

		var err error
		switch {
		case currentTheme != nil:
			err = setThemeField(currentTheme, key, value)
		case currentSection == "":
			err = setRootField(cfg, key, value)
		default:
			target, known := sectionTarget(cfg, currentSection)
			if !known {
				continue
			}
			err = setField(target, key, value)
		}
		if err != nil {
			if currentSection == "" {
				return nil, fmt.Errorf("error in root section: %w", err)
			}
			return nil, fmt.Errorf("error in section [%s]: %w", currentSection, err)
		}
	}

	return cfg, scanner.Err()
}

// ParseTOML reads configuration in TOML format. Theme blocks live under
// [themes.NAME] so they do not clash with the root theme key.
func ParseTOML(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cfg := New()
	if err := toml.NewDecoder(bytes.NewReader(data)).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode toml: %w", err)
	}
	var themes tomlThemes
	if err := toml.Unmarshal(data, &themes); err != nil {
		return nil, fmt.Errorf("decode toml themes: %w", err)
	}
	for name, block := range themes.Themes {
		t := theme.Default()
		t.Name = name
		for key, value := range block {
			if err := setThemeField(t, key, value); err != nil {
				return nil, fmt.Errorf("error in [themes.%s]: %w", name, err)
			}
		}
		cfg.Themes[name] = t
	}
	return cfg, nil
}

func setRootField(cfg *Config, key, value string) error {
	switch strings.ToLower(key) {
	case "theme":
		cfg.Theme = value
	case "image_dir":
		cfg.ImageDir = value
	}
	return nil
}

func sectionTarget(cfg *Config, section string) (any, bool) {
	switch section {
	case "canvas":
		return &cfg.Canvas, true
	case "history":
		return &cfg.History, true
	case "viewer":
		return &cfg.Viewer, true
	case "notify":
		return &cfg.Notify, true
	}
	return nil, false
}

// setField assigns value to the field of target whose toml tag matches key.
// Unknown keys are ignored.
func setField(target any, key, value string) error {
	val := reflect.ValueOf(target).Elem()
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		tag, _, _ := strings.Cut(typ.Field(i).Tag.Get("toml"), ",")
		if !strings.EqualFold(tag, key) {
			continue
		}
		field := val.Field(i)
		switch field.Kind() {
		case reflect.String:
			field.SetString(value)
		case reflect.Bool:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid boolean for key %s: %w", key, err)
			}
			field.SetBool(b)
		case reflect.Int:
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid integer for key %s: %w", key, err)
			}
			field.SetInt(int64(n))
		case reflect.Float64:
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("invalid number for key %s: %w", key, err)
			}
			field.SetFloat(f)
		}
		return nil
	}
	return nil
}

func setThemeField(t *theme.Theme, key, value string) error {
	if strings.EqualFold(key, "Name") {
		t.Name = value
		return nil
	}
	// Case-insensitive field lookup
	for _, f := range theme.Fields(t) {
		if strings.EqualFold(f.Name, key) {
			return theme.Set(t, f.Name, value)
		}
	}
	return nil // Ignore unknown fields
}
