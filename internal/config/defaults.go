package config

import (
	"path"
	"time"
)

// Default values for the conventional project layout.
const (
	DefaultRoot          = "."
	DefaultSource        = "src"
	DefaultDevRoot       = "dev"
	DefaultProdRoot      = "prod"
	DefaultManifestName  = "svg-dir-map.json"
	DefaultHost          = "localhost"
	DefaultPort          = 3000
	DefaultMetricsPath   = "/metrics"
	DefaultWatchDebounce = 200 * time.Millisecond
	DefaultMinSuffix     = ".min"
	DefaultScriptTarget  = "es2015"
)

// DefaultStyleTargets approximates the browserslist "defaults" query.
var DefaultStyleTargets = []string{"chrome58", "edge16", "firefox57", "safari11", "ios11"}

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// defaultAppliers run in order; later domains may read values set by earlier ones.
var defaultAppliers = []DefaultApplier{
	&pathsDefaultApplier{},
	&serverDefaultApplier{},
	&watchDefaultApplier{},
	&stylesDefaultApplier{},
	&scriptsDefaultApplier{},
	&loggingDefaultApplier{},
}

func applyDefaults(cfg *Config) error {
	for _, applier := range defaultAppliers {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

type pathsDefaultApplier struct{}

func (pathsDefaultApplier) Domain() string { return "paths" }

func (pathsDefaultApplier) ApplyDefaults(cfg *Config) error {
	p := &cfg.Paths
	if p.Root == "" {
		p.Root = DefaultRoot
	}
	if p.Source == "" {
		p.Source = DefaultSource
	}
	if p.Dev == "" {
		p.Dev = DefaultDevRoot
	}
	if p.Prod == "" {
		p.Prod = DefaultProdRoot
	}
	if p.Manifest == "" {
		p.Manifest = path.Join(p.Source, "svg", DefaultManifestName)
	}
	p.Source = path.Clean(p.Source)
	p.Dev = path.Clean(p.Dev)
	p.Prod = path.Clean(p.Prod)
	p.Manifest = path.Clean(p.Manifest)
	return nil
}

type serverDefaultApplier struct{}

func (serverDefaultApplier) Domain() string { return "server" }

func (serverDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Server.MetricsPath == "" {
		cfg.Server.MetricsPath = DefaultMetricsPath
	}
	return nil
}

type watchDefaultApplier struct{}

func (watchDefaultApplier) Domain() string { return "watch" }

func (watchDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
	return nil
}

type stylesDefaultApplier struct{}

func (stylesDefaultApplier) Domain() string { return "styles" }

func (stylesDefaultApplier) ApplyDefaults(cfg *Config) error {
	if len(cfg.Styles.Targets) == 0 {
		cfg.Styles.Targets = append([]string(nil), DefaultStyleTargets...)
	}
	if cfg.Styles.MinSuffix == "" {
		cfg.Styles.MinSuffix = DefaultMinSuffix
	}
	return nil
}

type scriptsDefaultApplier struct{}

func (scriptsDefaultApplier) Domain() string { return "scripts" }

func (scriptsDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Scripts.Target == "" {
		cfg.Scripts.Target = DefaultScriptTarget
	}
	return nil
}

type loggingDefaultApplier struct{}

func (loggingDefaultApplier) Domain() string { return "logging" }

func (loggingDefaultApplier) ApplyDefaults(cfg *Config) error {
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	return nil
}
