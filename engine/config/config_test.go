package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// isolate runs the test from an empty directory so no stray oxy.yaml or .env is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("OXY_CONFIG", "")
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected defaults, got error: %v", err)
	}
	if cfg.Window.Title != "oxy-tiles" || cfg.Window.Width != 1280 || cfg.Window.Height != 720 {
		t.Errorf("Expected 1280x720 oxy-tiles window, got %+v", cfg.Window)
	}
	if cfg.Renderer.Backend != "wgpu" || !cfg.Renderer.VSync || cfg.Renderer.MaxInstances != 4096 {
		t.Errorf("Expected wgpu with vsync and 4096 instances, got %+v", cfg.Renderer)
	}
	if cfg.Engine.TickRate != 60 || cfg.Camera.PanSpeed != 256 {
		t.Errorf("Expected 60 ticks and 256 px/s, got %v and %v", cfg.Engine.TickRate, cfg.Camera.PanSpeed)
	}
	if cfg.Log.Level != "info" || cfg.Log.MaxSizeMB != 10 || cfg.Log.MaxBackups != 3 || cfg.Log.MaxAgeDays != 7 {
		t.Errorf("Expected default log settings, got %+v", cfg.Log)
	}
}

func TestLoadLayers(t *testing.T) {
	dir := isolate(t)

	yaml := "window:\n  width: 800\n  height: 600\nworld:\n  path: maps/demo.json\nlog:\n  level: debug\n"
	if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, DefaultEnvFile), []byte("OXY_WINDOW_HEIGHT=900\nOXY_LOG_LEVEL=warn\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OXY_LOG_LEVEL", "error")
	t.Setenv("OXY_RENDERER_VSYNC", "false")
	t.Cleanup(func() { os.Unsetenv("OXY_WINDOW_HEIGHT") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected config, got error: %v", err)
	}
	if cfg.Window.Width != 800 {
		t.Errorf("Expected file width 800, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 900 {
		t.Errorf("Expected .env height 900, got %d", cfg.Window.Height)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Expected environment to win over .env, got %s", cfg.Log.Level)
	}
	if cfg.Renderer.VSync {
		t.Error("Expected vsync disabled from the environment")
	}
	if cfg.World.Path != "maps/demo.json" {
		t.Errorf("Expected world path from file, got %q", cfg.World.Path)
	}
}

func TestLoadExplicitFileMustExist(t *testing.T) {
	isolate(t)
	_, err := Load(WithConfigFile("missing.yaml"))
	if !errors.Is(err, ErrConfigFile) {
		t.Errorf("Expected ErrConfigFile, got %v", err)
	}
}

func TestLoadFromConfigEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("engine:\n  tick_rate: 30\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OXY_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected config, got error: %v", err)
	}
	if cfg.Engine.TickRate != 30 {
		t.Errorf("Expected tick rate 30, got %v", cfg.Engine.TickRate)
	}
}

func TestValidate(t *testing.T) {
	isolate(t)
	base, err := Load()
	if err != nil {
		t.Fatalf("Expected defaults, got error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"no instances", func(c *Config) { c.Renderer.MaxInstances = 0 }},
		{"zero tick rate", func(c *Config) { c.Engine.TickRate = 0 }},
		{"negative pan", func(c *Config) { c.Camera.PanSpeed = -1 }},
		{"negative backups", func(c *Config) { c.Log.MaxBackups = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			if err := c.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	t.Setenv("OXY_WINDOW_WIDTH", "-5")
	if _, err := Load(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig from the environment, got %v", err)
	}
}
