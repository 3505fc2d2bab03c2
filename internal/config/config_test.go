package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/talgya/schelling/internal/engine"
	"github.com/talgya/schelling/internal/world"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schelling.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.World.Locations != 90000 {
		t.Errorf("Locations = %d, want 90000", cfg.World.Locations)
	}
	if cfg.World.FracA != 0.25 || cfg.World.FracB != 0.25 {
		t.Errorf("fractions = %v/%v, want 0.25/0.25", cfg.World.FracA, cfg.World.FracB)
	}
	if cfg.Simulation.Threshold != 0.7 {
		t.Errorf("Threshold = %v, want 0.7", cfg.Simulation.Threshold)
	}
	if cfg.Engine.Interval != 450*time.Millisecond {
		t.Errorf("Interval = %v, want 450ms", cfg.Engine.Interval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeFile(t, `
world:
  locations: 2500
  frac_a: 0.3
  layout: noise
simulation:
  threshold: 0.5
  seed: 99
engine:
  interval: 50ms
  stop_on_convergence: true
api:
  enabled: true
  admin_key: ${SCHELLING_TEST_KEY}
logging:
  level: debug
`)
	t.Setenv("SCHELLING_TEST_KEY", "secret-token")

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.World.Locations != 2500 || cfg.World.FracA != 0.3 {
		t.Errorf("World = %+v", cfg.World)
	}
	// Unset keys keep their defaults.
	if cfg.World.FracB != 0.25 {
		t.Errorf("FracB = %v, want default 0.25", cfg.World.FracB)
	}
	if cfg.World.Layout != world.LayoutNoise {
		t.Errorf("Layout = %q, want noise", cfg.World.Layout)
	}
	if cfg.Simulation.Threshold != 0.5 || cfg.Simulation.Seed != 99 {
		t.Errorf("Simulation = %+v", cfg.Simulation)
	}
	if cfg.Engine.Interval != 50*time.Millisecond || !cfg.Engine.StopOnConvergence {
		t.Errorf("Engine = %+v", cfg.Engine)
	}
	if cfg.API.AdminKey != "secret-token" {
		t.Errorf("AdminKey not expanded from environment")
	}
	if cfg.API.Port != 8080 {
		t.Errorf("Port = %d, want default 8080", cfg.API.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFromFile() accepted a missing file")
	}

	path := writeFile(t, "world: [not, a, map]\n")
	if _, err := LoadFromFile(path); err == nil || !strings.Contains(err.Error(), "parsing config file") {
		t.Errorf("LoadFromFile() error = %v, want parse error", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SCHELLING_LOCATIONS", "400")
	t.Setenv("SCHELLING_THRESHOLD", "0.4")
	t.Setenv("SCHELLING_SEED", "7")
	t.Setenv("SCHELLING_API_PORT", "9090")
	t.Setenv("SCHELLING_ADMIN_KEY", "k")
	t.Setenv("SCHELLING_LOG_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.World.Locations != 400 || cfg.Simulation.Threshold != 0.4 || cfg.Simulation.Seed != 7 {
		t.Errorf("overrides not applied: %+v %+v", cfg.World, cfg.Simulation)
	}
	if cfg.API.Port != 9090 || cfg.API.AdminKey != "k" || cfg.Logging.Level != "warn" {
		t.Errorf("overrides not applied: %v %+v", cfg.API, cfg.Logging)
	}
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("SCHELLING_THRESHOLD", "high")
	if _, err := Load(""); err == nil {
		t.Error("Load() accepted a non-numeric threshold")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"non-square locations", func(c *Config) { c.World.Locations = 100001 }, true},
		{"layout file skips world checks", func(c *Config) {
			c.World.Locations = 3
			c.Simulation.LayoutFile = "grid.txt"
		}, false},
		{"fractions over one", func(c *Config) { c.World.FracA = 0.9 }, true},
		{"zero threshold", func(c *Config) { c.Simulation.Threshold = 0 }, true},
		{"negative interval", func(c *Config) { c.Engine.Interval = -time.Second }, true},
		{"negative speed", func(c *Config) { c.Engine.Speed = -1 }, true},
		{"bad port", func(c *Config) { c.API.Enabled = true; c.API.Port = 70000 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_TypedErrors(t *testing.T) {
	cfg := Default()
	cfg.World.Locations = 10
	var sizeErr *world.InvalidSizeError
	if err := cfg.Validate(); !errors.As(err, &sizeErr) {
		t.Errorf("Validate() error = %v, want *world.InvalidSizeError", err)
	}

	cfg = Default()
	cfg.Simulation.Threshold = 2
	var thErr *engine.InvalidThresholdError
	if err := cfg.Validate(); !errors.As(err, &thErr) {
		t.Errorf("Validate() error = %v, want *engine.InvalidThresholdError", err)
	}
}

func TestAPIConfig_StringRedactsKey(t *testing.T) {
	s := APIConfig{AdminKey: "super-secret"}.String()
	if strings.Contains(s, "super-secret") {
		t.Errorf("String() leaked key: %s", s)
	}
}
