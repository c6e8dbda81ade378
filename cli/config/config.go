package config

import (
	"fmt"
	"time"
)

// Config represents a sightline.yaml configuration file.
// All values are optional and act as defaults for CLI flags.
// Flags always override config values.
type Config struct {
	Archive     string      `yaml:"archive"`
	SnapshotDir string      `yaml:"snapshot_dir"`
	Host        HostConfig  `yaml:"host"`
	Log         LogConfig   `yaml:"log"`
	Watch       WatchConfig `yaml:"watch"`
}

// HostConfig selects and parameterizes the host backend.
type HostConfig struct {
	Backend string   `yaml:"backend"`
	Scene   string   `yaml:"scene,omitempty"`
	Command string   `yaml:"command,omitempty"`
	Args    []string `yaml:"args,omitempty"`
}

// LogConfig holds logging defaults from the config file.
type LogConfig struct {
	Level string `yaml:"level"`
}

// WatchConfig holds defaults for the watch command.
type WatchConfig struct {
	Debounce Duration `yaml:"debounce"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// Validate rejects values outside their closed choice sets. Zero values
// pass; the command layer applies its own defaults.
func (c *Config) Validate() error {
	switch c.Host.Backend {
	case "", "scene", "bridge", "none":
	default:
		return fmt.Errorf("unknown host backend %q (valid choices: scene, bridge, none)", c.Host.Backend)
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q (valid choices: debug, info, warn, error)", c.Log.Level)
	}
	if c.Watch.Debounce.Duration < 0 {
		return fmt.Errorf("watch debounce must not be negative, got %v", c.Watch.Debounce.Duration)
	}
	return nil
}
