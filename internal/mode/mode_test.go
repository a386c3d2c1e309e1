package mode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantMode   Mode
		wantBuild  bool
		wantSprite bool
	}{
		{"no args", nil, Development, false, false},
		{"build only", []string{"build"}, Development, true, false},
		{"build production", []string{"build", "--production"}, Production, true, true},
		{"flag before command", []string{"--production", "build"}, Production, true, true},
		{"production without build", []string{"sprite-map", "--production"}, Production, false, false},
		{"flag value is not a flag", []string{"build", "--config", "--production.yaml"}, Development, true, false},
		{"verbose noise", []string{"-v", "build", "-c", "x.yaml"}, Development, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := Resolve(tt.args)
			assert.Equal(t, tt.wantMode, inv.Mode)
			assert.Equal(t, tt.wantBuild, inv.BuildEntry)
			assert.Equal(t, tt.wantSprite, inv.GeneratesSprites())
		})
	}
}

func TestModeFeatures(t *testing.T) {
	assert.Equal(t, "development", Development.String())
	assert.Equal(t, "production", Production.String())

	assert.True(t, Development.SourceMaps())
	assert.True(t, Development.LiveReload())
	assert.False(t, Development.IsProduction())

	assert.False(t, Production.SourceMaps())
	assert.False(t, Production.LiveReload())
	assert.True(t, Production.IsProduction())
}
