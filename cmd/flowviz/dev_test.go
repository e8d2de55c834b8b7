// ABOUTME: Tests for dev flag parsing: the union of serve, watch, and build flags plus -tui.
// ABOUTME: Parse-only; the combined run path is covered by the devserver and devloop tests.
package main

import (
	"reflect"
	"testing"
	"time"
)

func TestParseDevDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, withTUI, err := parseDev(nil)
	if err != nil {
		t.Fatalf("parseDev: %v", err)
	}

	if withTUI {
		t.Error("expected the TUI off by default")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if !reflect.DeepEqual(cfg.Watch.Paths, []string{"src"}) {
		t.Errorf("expected default paths [src], got %v", cfg.Watch.Paths)
	}
	if cfg.Build.Bundler != "esbuild" {
		t.Errorf("expected default bundler esbuild, got %q", cfg.Build.Bundler)
	}
}

func TestParseDevTUIFlag(t *testing.T) {
	chdirTemp(t)

	_, withTUI, err := parseDev([]string{"-tui"})
	if err != nil {
		t.Fatalf("parseDev: %v", err)
	}
	if !withTUI {
		t.Error("expected -tui to request the dashboard")
	}
}

func TestParseDevUnionOverlay(t *testing.T) {
	chdirTemp(t)

	cfg, _, err := parseDev([]string{
		"-port", "3000",
		"-root", "dist",
		"-path", "src",
		"-path", "shared",
		"-ext", ".tsx,.ts",
		"-debounce", "1s",
		"-entry", "src/app.tsx",
		"-minify",
	})
	if err != nil {
		t.Fatalf("parseDev: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("expected port 3000, got %d", cfg.Server.Port)
	}
	if cfg.Server.Root != "dist" {
		t.Errorf("expected root dist, got %q", cfg.Server.Root)
	}
	if !reflect.DeepEqual(cfg.Watch.Paths, []string{"src", "shared"}) {
		t.Errorf("expected overlaid paths, got %v", cfg.Watch.Paths)
	}
	if !reflect.DeepEqual(cfg.Watch.Extensions, []string{".tsx", ".ts"}) {
		t.Errorf("expected overlaid extensions, got %v", cfg.Watch.Extensions)
	}
	if cfg.Watch.Debounce.Std() != time.Second {
		t.Errorf("expected debounce 1s, got %s", cfg.Watch.Debounce.Std())
	}
	if cfg.Build.Entry != "src/app.tsx" {
		t.Errorf("expected entry src/app.tsx, got %q", cfg.Build.Entry)
	}
	if !cfg.Build.Minify {
		t.Error("expected -minify to carry through")
	}
}

func TestParseDevConfigFileAndFlagMix(t *testing.T) {
	dir := chdirTemp(t)
	writeConfig(t, dir, "server:\n  port: 9000\nbuild:\n  minify: true\n")

	cfg, _, err := parseDev([]string{"-port", "3000"})
	if err != nil {
		t.Fatalf("parseDev: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("expected the flag to beat the file, got %d", cfg.Server.Port)
	}
	if !cfg.Build.Minify {
		t.Error("expected untouched file values to survive the overlay")
	}
}
