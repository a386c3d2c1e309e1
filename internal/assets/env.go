package assets

import (
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
)

// Env is the immutable input every asset task closes over.
type Env struct {
	Layout   config.Layout
	Styles   config.StylesConfig
	Scripts  config.ScriptsConfig
	Compiler Compiler

	engines      []api.Engine
	scriptTarget api.Target
}

// NewEnv resolves browser and language targets once so tasks never fail on
// configuration.
func NewEnv(layout config.Layout, styles config.StylesConfig, scripts config.ScriptsConfig, compiler Compiler) (*Env, error) {
	engines, err := ParseEngines(styles.Targets)
	if err != nil {
		return nil, err
	}
	target, err := ParseScriptTarget(scripts.Target)
	if err != nil {
		return nil, err
	}
	return &Env{
		Layout:       layout,
		Styles:       styles,
		Scripts:      scripts,
		Compiler:     compiler,
		engines:      engines,
		scriptTarget: target,
	}, nil
}

func (e *Env) includePaths() []string {
	paths := make([]string, 0, len(e.Styles.IncludePaths))
	for _, p := range e.Styles.IncludePaths {
		if filepath.IsAbs(p) {
			paths = append(paths, p)
			continue
		}
		if abs, err := filepath.Abs(filepath.Join(e.Layout.Root, filepath.FromSlash(p))); err == nil {
			paths = append(paths, abs)
		}
	}
	return paths
}
