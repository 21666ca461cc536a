package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pthm-cable/framebench/layout"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Screen.Width != 1280 || cfg.Screen.Height != 720 {
		t.Errorf("screen: got %dx%d, want 1280x720", cfg.Screen.Width, cfg.Screen.Height)
	}
	if cfg.Derived.Fit != layout.FitContain {
		t.Errorf("fit: got %s, want contain", cfg.Derived.Fit)
	}
	if cfg.Derived.Alignment != layout.Center {
		t.Errorf("alignment: got %+v, want center", cfg.Derived.Alignment)
	}
	if cfg.Harness.StressDraws != 1 {
		t.Errorf("stress draws: got %d, want 1", cfg.Harness.StressDraws)
	}
	if cfg.Derived.LogInterval != 5*time.Second {
		t.Errorf("log interval: got %s, want 5s", cfg.Derived.LogInterval)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	overlay := []byte("layout:\n  fit: cover\nharness:\n  stress_draws: 0\n  output_dir: /tmp/x\n")
	if err := os.WriteFile(path, overlay, 0644); err != nil {
		t.Fatalf("writing overlay: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Derived.Fit != layout.FitCover {
		t.Errorf("fit: got %s, want cover", cfg.Derived.Fit)
	}
	// Fields absent from the overlay keep their defaults.
	if cfg.Layout.Alignment != "center" {
		t.Errorf("alignment: got %q, want center", cfg.Layout.Alignment)
	}
	if cfg.Harness.StressDraws != 1 {
		t.Errorf("stress draws clamp: got %d, want 1", cfg.Harness.StressDraws)
	}
	if cfg.Harness.OutputDir != "/tmp/x" {
		t.Errorf("output dir: got %q", cfg.Harness.OutputDir)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	testCases := map[string]string{
		"fit":       "layout:\n  fit: stretch\n",
		"alignment": "layout:\n  alignment: middle\n",
		"activity":  "headless:\n  activity_rate: 1.5\n",
		"artboard":  "scene:\n  width: 0\n",
	}
	for name, body := range testCases {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatalf("%s: writing overlay: %v", name, err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg.Scene.Shapes = 5

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("reloading: %v", err)
	}
	if loaded.Scene.Shapes != 5 {
		t.Errorf("shapes: got %d, want 5", loaded.Scene.Shapes)
	}
}
