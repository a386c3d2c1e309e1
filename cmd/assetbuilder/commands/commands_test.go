package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/assetbuilder/internal/assets"
	"git.home.luguber.info/inful/assetbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/manifest"
	"git.home.luguber.info/inful/assetbuilder/internal/mode"
	"git.home.luguber.info/inful/assetbuilder/internal/testutil/testutils"
)

type echoCompiler struct{}

func (echoCompiler) Compile(_ context.Context, in assets.SassInput) (assets.SassOutput, error) {
	return assets.SassOutput{CSS: in.Source}, nil
}

const icon = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 8 8"><path d="M0 0h8v8H0z"/></svg>`

func project(t *testing.T, files map[string]string) *config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.Paths.Root = testutils.Project(t, files)
	return cfg
}

func exists(t *testing.T, cfg *config.Config, p string) bool {
	return testutils.NewFileAssertions(t, cfg.Paths.Root).Exists(p)
}

func TestCLI_Parse(t *testing.T) {
	tests := []struct {
		args    []string
		command string
	}{
		{[]string{"build"}, "build"},
		{[]string{"build", "--production"}, "build"},
		{[]string{"-v", "-c", "custom.yaml", "sprite-map"}, "sprite-map"},
		{[]string{"version"}, "version"},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			var cli CLI
			parser, err := kong.New(&cli)
			require.NoError(t, err)
			ctx, err := parser.Parse(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.command, ctx.Command())
		})
	}

	var cli CLI
	parser, err := kong.New(&cli)
	require.NoError(t, err)
	_, err = parser.Parse([]string{"build", "--production"})
	require.NoError(t, err)
	assert.True(t, cli.Build.Production)
	assert.Equal(t, mode.Production, mode.Resolve([]string{"build", "--production"}).Mode)
}

func TestSpriteMapThenProductionBuild(t *testing.T) {
	cfg := project(t, map[string]string{
		"src/svg/icons/home.svg":      icon,
		"src/svg/icons/user.svg":      icon,
		"src/svg/flags/nested/de.svg": icon,
		"src/index.html":              "<p>home</p>",
	})
	ctx := context.Background()

	require.NoError(t, WriteSpriteMap(ctx, cfg))
	groups, ok, err := manifest.Read(filepath.Join(cfg.Paths.Root, "src", "svg", manifest.FileName))
	require.NoError(t, err)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"flags", "icons"}, groups)

	inv := mode.Resolve([]string{"build", "--production"})
	require.NoError(t, RunBuild(ctx, nil, cfg, inv, echoCompiler{}))

	assert.True(t, exists(t, cfg, "prod/img/icons.svg"))
	assert.True(t, exists(t, cfg, "prod/index.html"))
	assert.False(t, exists(t, cfg, "src/svg/"+manifest.FileName))
	assert.False(t, exists(t, cfg, "dev"))
}

func TestRunBuild_ProductionFailureExitCode(t *testing.T) {
	cfg := project(t, map[string]string{"src/js/app.js": "let = ;"})

	err := RunBuild(context.Background(), nil, cfg, mode.Resolve([]string{"build", "--production"}), echoCompiler{})
	require.Error(t, err)
	assert.Equal(t, 11, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestRunBuild_BrokenManifestExitCode(t *testing.T) {
	cfg := project(t, map[string]string{"src/svg/" + manifest.FileName: "{"})

	err := RunBuild(context.Background(), nil, cfg, mode.Resolve([]string{"build", "--production"}), echoCompiler{})
	require.Error(t, err)
	assert.Equal(t, 7, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
	assert.False(t, exists(t, cfg, "prod"))
}

func TestRunBuild_WithMetricsEnabled(t *testing.T) {
	cfg := project(t, map[string]string{"src/lib/css/reset.css": "a{}"})
	cfg.Server.Metrics = true

	require.NoError(t, RunBuild(context.Background(), nil, cfg, mode.Resolve([]string{"build", "--production"}), echoCompiler{}))
	assert.True(t, exists(t, cfg, "prod/lib/css/reset.css"))
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	g := &Global{}
	cfg, err := loadConfig(g, &CLI{Config: filepath.Join(t.TempDir(), "missing.yaml")})
	require.NoError(t, err)
	assert.Equal(t, config.DefaultDevRoot, cfg.Paths.Dev)
	assert.NotNil(t, g.Logger)
}

func TestPrintVersion(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, PrintVersion(&out, t.TempDir()))
	assert.Contains(t, out.String(), "assetbuilder unknown")
	assert.Contains(t, out.String(), "project revision: none")
}
