// Package config reads the optional .launchpad.yaml file that sets launcher
// defaults for a repository.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the start directory.
const DefaultFile = ".launchpad.yaml"

// Config holds launcher defaults. Command-line flags override every field.
type Config struct {
	Manifest  string        `yaml:"manifest,omitempty"`
	Runtime   string        `yaml:"runtime,omitempty"`
	Delay     time.Duration `yaml:"delay,omitempty"`
	Dashboard bool          `yaml:"dashboard,omitempty"`
	Ignore    []string      `yaml:"ignore,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Manifest: "package.json",
		Runtime:  "node",
		Delay:    500 * time.Millisecond,
	}
}

// Load reads the config file at path and fills unset fields with defaults.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	if file.Delay < 0 {
		return cfg, fmt.Errorf("invalid configuration %s: negative delay %s", path, file.Delay)
	}

	if file.Manifest != "" {
		cfg.Manifest = file.Manifest
	}
	if file.Runtime != "" {
		cfg.Runtime = file.Runtime
	}
	if file.Delay != 0 {
		cfg.Delay = file.Delay
	}
	cfg.Dashboard = file.Dashboard
	cfg.Ignore = file.Ignore
	return cfg, nil
}

// Write writes the configuration as a YAML file.
func Write(path string, cfg Config) error {
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
