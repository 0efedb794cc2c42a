// Package config holds the ambient, non-security-relevant settings the
// validator and catalog generator read: clone timeout, worker pool size,
// default paths, and log format. Security-relevant tunables (size caps,
// pattern lists, skip dirs) are Go constants in pattern and walker and
// are never configurable here.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is loaded in increasing precedence: built-in defaults,
// then an optional file ($PLUGINGUARD_CONFIG or ./pluginguard.yaml),
// then CLI flags applied by the caller on top of the returned value.
type Config struct {
	IndexPath    string        `yaml:"indexPath"`
	CatalogPath  string        `yaml:"catalogPath"`
	Workers      int           `yaml:"workers"`
	CloneTimeout time.Duration `yaml:"cloneTimeout"`
	LogFormat    string        `yaml:"logFormat"` // "text" or "json"
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		IndexPath:    "marketplace.json",
		CatalogPath:  "CATALOG.md",
		Workers:      0, // 0 means min(len(entries), runtime.NumCPU())
		CloneTimeout: 120 * time.Second,
		LogFormat:    "text",
	}
}

// Load returns the defaults overlaid with the optional config file, found
// at $PLUGINGUARD_CONFIG or ./pluginguard.yaml. A missing file is not an
// error; a malformed one is.
func Load() (*Config, error) {
	cfg := Default()

	path := os.Getenv("PLUGINGUARD_CONFIG")
	if path == "" {
		path = "pluginguard.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
