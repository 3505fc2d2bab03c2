// Package config provides configuration loading for the simulator.
// Values come from defaults, then an optional YAML file, then environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/schelling/internal/engine"
	"github.com/talgya/schelling/internal/world"
)

// Config contains all simulator settings.
type Config struct {
	// World controls the initial grid.
	World world.GenConfig `yaml:"world"`

	// Simulation controls the update rule and randomness.
	Simulation SimulationConfig `yaml:"simulation"`

	// Engine controls the tick loop.
	Engine EngineConfig `yaml:"engine"`

	// API controls the read-only HTTP surface.
	API APIConfig `yaml:"api"`

	// Logging controls log verbosity.
	Logging LoggingConfig `yaml:"logging"`
}

// SimulationConfig configures the update rule.
type SimulationConfig struct {
	// Threshold is the same-kind neighbour fraction an agent needs. Range: (0, 1].
	Threshold float64 `yaml:"threshold"`

	// Seed fixes the random source. 0 draws a fresh seed per run.
	Seed int64 `yaml:"seed"`

	// ReportEvery logs a progress line every N ticks (0 disables).
	ReportEvery uint64 `yaml:"report_every"`

	// LayoutFile, when set, loads the initial grid from an A/B/. text file
	// instead of generating one.
	LayoutFile string `yaml:"layout_file,omitempty"`
}

// EngineConfig configures the tick loop.
type EngineConfig struct {
	Interval          time.Duration `yaml:"interval"`
	Speed             float64       `yaml:"speed"`
	MaxTicks          uint64        `yaml:"max_ticks"`
	StopOnConvergence bool          `yaml:"stop_on_convergence"`
}

// APIConfig configures the HTTP API.
type APIConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`

	// AdminKey is the bearer token for POST endpoints. Empty disables them.
	// Supports ${VAR} syntax.
	AdminKey string `yaml:"admin_key,omitempty"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	// Level is "debug", "info" (default), "warn" or "error".
	Level string `yaml:"level"`
}

// String implements fmt.Stringer without leaking the admin key.
func (c APIConfig) String() string {
	key := ""
	if c.AdminKey != "" {
		key = "(set)"
	}
	return fmt.Sprintf("APIConfig{Enabled:%t, Port:%d, AdminKey:%s}", c.Enabled, c.Port, key)
}

// Default returns a Config with the classic model parameters.
func Default() *Config {
	return &Config{
		World: world.DefaultGenConfig(),
		Simulation: SimulationConfig{
			Threshold:   engine.DefaultThreshold,
			ReportEvery: 100,
		},
		Engine: EngineConfig{
			Interval: engine.DefaultInterval,
			Speed:    1.0,
		},
		API: APIConfig{
			Enabled: false,
			Port:    8080,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load returns defaults, overlaid by path (if non-empty) and then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		cfg = fileCfg
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.API.AdminKey = expandEnvVars(cfg.API.AdminKey)
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Simulation.LayoutFile == "" {
		if err := c.World.Validate(); err != nil {
			return err
		}
	}
	if err := engine.ValidateThreshold(c.Simulation.Threshold); err != nil {
		return err
	}
	if c.Engine.Interval < 0 {
		return fmt.Errorf("interval must be non-negative, got %v", c.Engine.Interval)
	}
	if c.Engine.Speed < 0 {
		return fmt.Errorf("speed must be non-negative, got %v", c.Engine.Speed)
	}
	if c.API.Enabled && (c.API.Port <= 0 || c.API.Port > 65535) {
		return fmt.Errorf("invalid api port: %d", c.API.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if c.Logging.Level != "" && !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}
	return nil
}

// applyEnvOverrides applies SCHELLING_* environment variables to the config.
func applyEnvOverrides(c *Config) error {
	if v := os.Getenv("SCHELLING_LOCATIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SCHELLING_LOCATIONS: %w", err)
		}
		c.World.Locations = n
	}
	if v := os.Getenv("SCHELLING_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SCHELLING_THRESHOLD: %w", err)
		}
		c.Simulation.Threshold = f
	}
	if v := os.Getenv("SCHELLING_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("SCHELLING_SEED: %w", err)
		}
		c.Simulation.Seed = n
	}
	if v := os.Getenv("SCHELLING_API_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SCHELLING_API_PORT: %w", err)
		}
		c.API.Port = n
	}
	if v := os.Getenv("SCHELLING_ADMIN_KEY"); v != "" {
		c.API.AdminKey = v
	}
	if v := os.Getenv("SCHELLING_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// expandEnvVars expands a whole-value ${VAR} reference.
func expandEnvVars(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	return s
}
