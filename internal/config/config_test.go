package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Paths.Root)
	assert.Equal(t, "src", cfg.Paths.Source)
	assert.Equal(t, "dev", cfg.Paths.Dev)
	assert.Equal(t, "prod", cfg.Paths.Prod)
	assert.Equal(t, "src/svg/svg-dir-map.json", cfg.Paths.Manifest)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultWatchDebounce, cfg.Watch.Debounce)
	assert.Equal(t, DefaultStyleTargets, cfg.Styles.Targets)
	assert.Equal(t, ".min", cfg.Styles.MinSuffix)
	assert.Equal(t, "es2015", cfg.Scripts.Target)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "assetbuilder.yaml")
	t.Setenv("AB_TEST_PORT", "4010")
	require.NoError(t, os.WriteFile(path, []byte(`
paths:
  source: assets
  dev: build/dev
  prod: build/prod
server:
  port: ${AB_TEST_PORT}
  metrics: true
watch:
  debounce: 50ms
styles:
  targets: [chrome90, safari14]
scripts:
  target: ES2018
logging:
  level: DEBUG
  format: json
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "assets", cfg.Paths.Source)
	assert.Equal(t, "assets/svg/svg-dir-map.json", cfg.Paths.Manifest)
	assert.Equal(t, 4010, cfg.Server.Port)
	assert.True(t, cfg.Server.Metrics)
	assert.Equal(t, 50*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, []string{"chrome90", "safari14"}, cfg.Styles.Targets)
	assert.Equal(t, "es2018", cfg.Scripts.Target)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
}

func TestParse_EmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestParse_UnknownFieldRejected(t *testing.T) {
	_, err := Parse([]byte("paths:\n  sauce: src\n"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"dev is project root", "paths:\n  dev: .\n", "paths.dev"},
		{"prod contains source", "paths:\n  source: out/src\n  prod: out\n", "paths.prod"},
		{"same output roots", "paths:\n  dev: out\n  prod: out\n", "paths.prod"},
		{"parent escape", "paths:\n  prod: ../elsewhere\n", "paths.prod"},
		{"manifest in output", "paths:\n  manifest: prod/map.json\n", "paths.manifest"},
		{"port out of range", "server:\n  port: 70000\n", "server.port"},
		{"bad metrics path", "server:\n  metrics_path: metrics\n", "server.metrics_path"},
		{"bad style target", "styles:\n  targets: [netscape]\n", "styles.targets"},
		{"bad script target", "scripts:\n  target: es5\n", "scripts.target"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			classified, ok := ferrors.AsClassified(err)
			require.True(t, ok)
			assert.Equal(t, ferrors.CategoryConfig, classified.Category())
			field, _ := classified.Context().GetString("field")
			assert.Equal(t, tt.field, field)
		})
	}
}

func TestLoggingConfig_SlogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", LoggingConfig{Level: LogLevelInfo}.SlogLevel(true).String())
	assert.Equal(t, "WARN", LoggingConfig{Level: LogLevelWarn}.SlogLevel(false).String())
	assert.Equal(t, "ERROR", LoggingConfig{Level: LogLevelError}.SlogLevel(false).String())
	assert.Equal(t, "INFO", LoggingConfig{}.SlogLevel(false).String())
}
