// Package config loads assetbuilder.yaml and derives the per-mode asset layout.
package config

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
)

// DefaultConfigFile is the configuration file looked up when -c is not given.
const DefaultConfigFile = "assetbuilder.yaml"

// Config represents the assetbuilder configuration file.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Server  ServerConfig  `yaml:"server"`
	Watch   WatchConfig   `yaml:"watch"`
	Styles  StylesConfig  `yaml:"styles"`
	Scripts ScriptsConfig `yaml:"scripts"`
	Logging LoggingConfig `yaml:"logging"`
}

// PathsConfig names the source tree and the two output roots. All paths are
// slash separated and relative to Root.
type PathsConfig struct {
	Root     string `yaml:"root"`     // Project root; globs are evaluated below it
	Source   string `yaml:"source"`   // Source tree (src)
	Dev      string `yaml:"dev"`      // Development output root (dev)
	Prod     string `yaml:"prod"`     // Production output root (prod)
	Manifest string `yaml:"manifest"` // Sprite manifest (src/svg/svg-dir-map.json)
}

// ServerConfig configures the development server.
type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Metrics     bool   `yaml:"metrics"`      // Expose Prometheus metrics on the dev server
	MetricsPath string `yaml:"metrics_path"` // Defaults to /metrics
}

// WatchConfig configures the development file watcher.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"` // Quiet window before a category task re-runs
}

// StylesConfig configures the style pipeline.
type StylesConfig struct {
	Targets      []string `yaml:"targets"`       // Browser targets for vendor prefixing (chrome58, safari11, ...)
	IncludePaths []string `yaml:"include_paths"` // Extra Sass load paths
	DartSass     string   `yaml:"dart_sass"`     // Dart Sass binary; empty searches PATH
	MinSuffix    string   `yaml:"min_suffix"`    // Suffix of the minified variant
}

// ScriptsConfig configures the script pipeline.
type ScriptsConfig struct {
	Target string `yaml:"target"` // Language level scripts are lowered to (es2015)
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Load loads configuration from path. A missing file is not an error: the
// built-in defaults describe the conventional src/dev/prod layout.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Debug("No configuration file, using defaults", "path", path)
		return Defaults(), nil
	case err != nil:
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "read configuration file").
			Fatal().
			WithContext("path", path).
			Build()
	}
	return Parse(data)
}

// Parse decodes configuration bytes, expanding ${VAR} references against the
// environment, then applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "decode configuration").
			Fatal().
			UserAction().
			Build()
	}

	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Defaults returns a configuration with every default applied.
func Defaults() *Config {
	cfg := &Config{}
	// The default appliers cannot fail on a zero config.
	_ = applyDefaults(cfg)
	return cfg
}
