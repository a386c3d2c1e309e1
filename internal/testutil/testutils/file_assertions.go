package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// FileAssertions checks the state of a build output below a base directory.
type FileAssertions struct {
	t       *testing.T
	baseDir string
}

// NewFileAssertions creates a new file assertions helper.
func NewFileAssertions(t *testing.T, baseDir string) *FileAssertions {
	return &FileAssertions{t: t, baseDir: baseDir}
}

func (fa *FileAssertions) path(rel string) string {
	return filepath.Join(fa.baseDir, filepath.FromSlash(rel))
}

// Exists reports whether rel is present.
func (fa *FileAssertions) Exists(rel string) bool {
	_, err := os.Stat(fa.path(rel))
	return err == nil
}

// AssertFileExists validates that a file exists.
func (fa *FileAssertions) AssertFileExists(rel string) *FileAssertions {
	fa.t.Helper()
	assert.FileExists(fa.t, fa.path(rel))
	return fa
}

// AssertNotExists validates that nothing exists at rel.
func (fa *FileAssertions) AssertNotExists(rel string) *FileAssertions {
	fa.t.Helper()
	assert.NoFileExists(fa.t, fa.path(rel))
	assert.NoDirExists(fa.t, fa.path(rel))
	return fa
}

// AssertFileContains validates that a file contains expected content.
func (fa *FileAssertions) AssertFileContains(rel, expected string) *FileAssertions {
	fa.t.Helper()
	assert.Contains(fa.t, fa.Read(rel), expected, rel)
	return fa
}

// Read returns the contents of rel, or "" when it cannot be read.
func (fa *FileAssertions) Read(rel string) string {
	fa.t.Helper()
	data, err := os.ReadFile(fa.path(rel))
	if err != nil {
		fa.t.Errorf("read %s: %v", rel, err)
		return ""
	}
	return string(data)
}
