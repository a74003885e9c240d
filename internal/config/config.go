// Package config handles the application configuration file. A
// commented default is written on first use so the data layout is
// discoverable.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when no --config flag is
// given.
const DefaultPath = "brotbacker.yaml"

const defaultConfigYAML = `# brot-backer configuration
version: 1

# Directory holding the JSON data files.
data_dir: daten

# File names inside data_dir.
recipes_file: brote.json
processes_file: backvorgaenge.json
flours_file: mehle.json

# Countdown poll interval in milliseconds.
poll_interval_ms: 250

# Scale factor substituted for invalid input.
default_scale_factor: 1.0

# Log destination ("stderr" logs to the console).
log_file: .brotbacker/brotbacker.log
`

// Config models brotbacker.yaml.
type Config struct {
	Version            int     `yaml:"version"`
	DataDir            string  `yaml:"data_dir"`
	RecipesFile        string  `yaml:"recipes_file"`
	ProcessesFile      string  `yaml:"processes_file"`
	FloursFile         string  `yaml:"flours_file"`
	PollIntervalMS     int     `yaml:"poll_interval_ms"`
	DefaultScaleFactor float64 `yaml:"default_scale_factor"`
	LogFile            string  `yaml:"log_file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Version:            1,
		DataDir:            "daten",
		RecipesFile:        "brote.json",
		ProcessesFile:      "backvorgaenge.json",
		FloursFile:         "mehle.json",
		PollIntervalMS:     250,
		DefaultScaleFactor: 1.0,
		LogFile:            ".brotbacker/brotbacker.log",
	}
}

// Load reads the config file at path. A missing file yields the
// defaults; set fields override them, unset fields keep them.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

// WriteDefault creates the commented default config file unless it
// already exists.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.RecipesFile == "" {
		c.RecipesFile = def.RecipesFile
	}
	if c.ProcessesFile == "" {
		c.ProcessesFile = def.ProcessesFile
	}
	if c.FloursFile == "" {
		c.FloursFile = def.FloursFile
	}
	if c.PollIntervalMS <= 0 {
		c.PollIntervalMS = def.PollIntervalMS
	}
	if c.DefaultScaleFactor <= 0 {
		c.DefaultScaleFactor = def.DefaultScaleFactor
	}
	if c.LogFile == "" {
		c.LogFile = def.LogFile
	}
}

// RecipesPath returns the resolved recipes file path.
func (c Config) RecipesPath() string {
	return filepath.Join(c.DataDir, c.RecipesFile)
}

// ProcessesPath returns the resolved processes file path.
func (c Config) ProcessesPath() string {
	return filepath.Join(c.DataDir, c.ProcessesFile)
}

// FloursPath returns the resolved flours file path.
func (c Config) FloursPath() string {
	return filepath.Join(c.DataDir, c.FloursFile)
}

// PollInterval returns the countdown poll interval.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}
