package config

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	ferrors "git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
)

var (
	styleTargetPattern = regexp.MustCompile(`^[a-z]+[0-9]+(\.[0-9]+)*$`)
	scriptTargets      = map[string]struct{}{
		"es2015": {}, "es2016": {}, "es2017": {}, "es2018": {}, "es2019": {},
		"es2020": {}, "es2021": {}, "es2022": {}, "es2023": {}, "es2024": {}, "esnext": {},
	}
)

// Validate checks a configuration with defaults already applied.
func Validate(cfg *Config) error {
	validators := []func(*Config) error{
		validatePaths,
		validateServer,
		validateStyles,
		validateScripts,
	}
	for _, v := range validators {
		if err := v(cfg); err != nil {
			return err
		}
	}
	return nil
}

// validatePaths guards the clear step: an output root that is the project
// root or contains the source tree would be wiped before every build.
func validatePaths(cfg *Config) error {
	p := cfg.Paths
	for field, dir := range map[string]string{"paths.dev": p.Dev, "paths.prod": p.Prod} {
		if dir == "." || dir == "/" || strings.HasPrefix(dir, "..") {
			return invalid(field, fmt.Sprintf("output root %q must be a subdirectory of the project", dir))
		}
		if within(p.Source, dir) {
			return invalid(field, fmt.Sprintf("output root %q must not contain the source tree %q", dir, p.Source))
		}
	}
	if p.Dev == p.Prod {
		return invalid("paths.prod", "development and production output roots must differ")
	}
	if within(p.Manifest, p.Dev) || within(p.Manifest, p.Prod) {
		return invalid("paths.manifest", "sprite manifest must live outside the output roots")
	}
	return nil
}

func validateServer(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return invalid("server.port", fmt.Sprintf("port %d out of range", cfg.Server.Port))
	}
	if !strings.HasPrefix(cfg.Server.MetricsPath, "/") {
		return invalid("server.metrics_path", "must start with /")
	}
	return nil
}

func validateStyles(cfg *Config) error {
	for _, t := range cfg.Styles.Targets {
		if !styleTargetPattern.MatchString(strings.ToLower(t)) {
			return invalid("styles.targets", fmt.Sprintf("target %q is not of the form <browser><version>", t))
		}
	}
	return nil
}

func validateScripts(cfg *Config) error {
	cfg.Scripts.Target = strings.ToLower(strings.TrimSpace(cfg.Scripts.Target))
	if _, ok := scriptTargets[cfg.Scripts.Target]; !ok {
		return invalid("scripts.target", fmt.Sprintf("unsupported target %q", cfg.Scripts.Target))
	}
	return nil
}

func invalid(field, reason string) error {
	return ferrors.ConfigError(fmt.Sprintf("invalid %s: %s", field, reason)).
		WithContext("field", field).
		Build()
}

// within reports whether p equals dir or lies below it.
func within(p, dir string) bool {
	p, dir = path.Clean(p), path.Clean(dir)
	return p == dir || strings.HasPrefix(p, dir+"/")
}
