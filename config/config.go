// Package config loads the corridor.yaml settings file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nstehr/corridor/rules"
)

type Config struct {
	LogLevel    string         `yaml:"log_level"`
	Socket      string         `yaml:"socket"`
	MetricsAddr string         `yaml:"metrics_addr"`
	Journal     string         `yaml:"journal"`
	MaxTurns    int            `yaml:"max_turns"`
	Doctrine    rules.Doctrine `yaml:"doctrine"`
}

func Default() Config {
	return Config{
		LogLevel:    "info",
		Socket:      "/tmp/corridor.sock",
		MetricsAddr: ":9464",
		MaxTurns:    100,
		Doctrine:    rules.DefaultDoctrine(),
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
// Keys missing from the file keep their default values.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate rejects settings that cannot be run and clamps the doctrine.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.MaxTurns <= 0 {
		return fmt.Errorf("max_turns must be positive, got %d", c.MaxTurns)
	}
	c.Doctrine.Validate()
	return nil
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
