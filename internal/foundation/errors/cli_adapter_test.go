package errors

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation", err: ValidationError("bad flag").Build(), expected: 2},
		{name: "config", err: ConfigError("bad config").Build(), expected: 7},
		{name: "manifest", err: ManifestError("bad manifest").Build(), expected: 7},
		{name: "transform", err: TransformError("sass failed").Build(), expected: 11},
		{name: "server", err: ServerError("bind failed").Build(), expected: 12},
		{name: "wrapped classified", err: fmt.Errorf("outer: %w", BuildError("graph failed").Build()), expected: 11},
		{name: "unclassified", err: fmt.Errorf("plain"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	err := WrapError(fmt.Errorf("unexpected token"), CategoryManifest, "parse sprite manifest").
		WithContext("path", "src/svg/svg-dir-map.json").
		Build()

	quiet := NewCLIErrorAdapter(false, nil)
	assert.Equal(t, "Error: parse sprite manifest: unexpected token (src/svg/svg-dir-map.json)", quiet.FormatError(err))

	verbose := NewCLIErrorAdapter(true, nil)
	assert.Equal(t, err.Error(), verbose.FormatError(err))

	assert.Equal(t, "Error: boom", quiet.FormatError(fmt.Errorf("boom")))
	assert.Empty(t, quiet.FormatError(nil))
}

func TestCLIErrorAdapter_LogErrorIncludesContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	adapter := NewCLIErrorAdapter(false, logger)

	adapter.logError(BuildError("task failed").WithContext("task", "styles").Build())

	out := buf.String()
	require.Contains(t, out, "task failed")
	assert.Contains(t, out, "category=build")
	assert.Contains(t, out, "task=styles")
	assert.Contains(t, out, "level=ERROR")
}
