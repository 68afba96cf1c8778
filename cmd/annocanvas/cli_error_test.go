package main

import (
	"errors"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/example/annocanvas/internal/config"
	"github.com/example/annocanvas/internal/viewer"
)

func testRoot() *root {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &root{program: "annocanvas", config: config.New(), log: log}
}

func TestAnnotateRequiresFile(t *testing.T) {
	_, err := parseAnnotateCmd(nil, testRoot())
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if want := "-file is required"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
	if want := "Usage: annocanvas -file IMAGE"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected rendered help, got %v", err)
	}
}

func TestAnnotateRejectsStrategy(t *testing.T) {
	_, err := parseAnnotateCmd([]string{"-file", "a.png", "-strategy", "hexagon"}, testRoot())
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "unknown strategy"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
}

func TestAnnotateRunOpenError(t *testing.T) {
	original := openImageFn
	sentinel := errors.New("boom")
	openImageFn = func(string) (image.Image, error) { return nil, sentinel }
	t.Cleanup(func() { openImageFn = original })

	cmd, err := parseAnnotateCmd([]string{"-file", "missing.png"}, testRoot())
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); err == nil {
		t.Fatalf("expected error")
	} else {
		if !errors.Is(err, sentinel) {
			t.Fatalf("expected wrapped error, got %v", err)
		}
		if want := "failed to open image missing.png"; !strings.Contains(err.Error(), want) {
			t.Fatalf("expected message context, got %v", err)
		}
	}
}

func TestAnnotateRunSavesShapes(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(in, []byte("\"cat\" 1,1 20,1 20,20\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	originalOpen, originalRun := openImageFn, runViewerFn
	openImageFn = func(string) (image.Image, error) { return image.NewRGBA(image.Rect(0, 0, 10, 10)), nil }
	var ran bool
	runViewerFn = func(*viewer.Viewer) error {
		ran = true
		return nil
	}
	t.Cleanup(func() { openImageFn, runViewerFn = originalOpen, originalRun })

	cmd, err := parseAnnotateCmd([]string{"-file", "img.png", "-shapes", in, "-save", out}, testRoot())
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !ran {
		t.Fatalf("viewer not run")
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), "\"cat\" 1,1 20,1 20,20\n"; got != want {
		t.Fatalf("saved %q, want %q", got, want)
	}
}

func TestAnnotateUsesImageDir(t *testing.T) {
	r := testRoot()
	r.config.ImageDir = "/srv/images"
	cmd, err := parseAnnotateCmd([]string{"-file", "does-not-exist.png"}, r)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := cmd.resolvePath(), filepath.Join("/srv/images", "does-not-exist.png"); got != want {
		t.Fatalf("resolvePath = %q, want %q", got, want)
	}
}

func TestRootUnknownCommand(t *testing.T) {
	r := newRoot()
	r.configPath = filepath.Join(t.TempDir(), "none.rc")
	err := r.Run([]string{"-config", r.configPath, "frobnicate"})
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if want := "replay"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected command list in help, got %v", err)
	}
}

func TestRootBadLogLevel(t *testing.T) {
	r := newRoot()
	err := r.Run([]string{"-log-level", "loud", "version"})
	if err == nil || !strings.Contains(err.Error(), "invalid -log-level") {
		t.Fatalf("expected log level error, got %v", err)
	}
}

func TestConfigPrintTOML(t *testing.T) {
	r := testRoot()
	r.config.Canvas.Strategy = "polygon"
	cmd, err := parseConfigCmd([]string{"-format", "toml", "print"}, r)
	if err != nil {
		t.Fatal(err)
	}
	var sb strings.Builder
	cmd.stdout = &sb
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}
	if want := "polygon"; !strings.Contains(sb.String(), want) {
		t.Fatalf("expected %q in output:\n%s", want, sb.String())
	}
}

func TestConfigSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	r := testRoot()
	r.config.History.Limit = 4
	cmd, err := parseConfigCmd([]string{"-output", path, "save"}, r)
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.History.Limit != 4 {
		t.Fatalf("history.limit = %d, want 4", cfg.History.Limit)
	}
}

func TestConfigUnknownFormat(t *testing.T) {
	if _, err := parseConfigCmd([]string{"-format", "yaml", "print"}, testRoot()); err == nil {
		t.Fatalf("expected error")
	}
}
