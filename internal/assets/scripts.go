package assets

import (
	"context"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
)

var scriptTargets = map[string]api.Target{
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"es2023": api.ES2023,
	"es2024": api.ES2024,
	"esnext": api.ESNext,
}

// ParseScriptTarget maps a language level such as "es2015" to esbuild's.
func ParseScriptTarget(s string) (api.Target, error) {
	t, ok := scriptTargets[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return api.DefaultTarget, errors.ConfigError(fmt.Sprintf("unknown script target %q", s)).Build()
	}
	return t, nil
}

// TranspileJS lowers scripts to the configured language level. In
// development an inline source map is attached.
func TranspileJS(env *Env) Transform {
	return func(_ context.Context, f *File) ([]*File, error) {
		sourcemap := api.SourceMapNone
		if env.Layout.Mode.SourceMaps() {
			sourcemap = api.SourceMapInline
		}
		res := api.Transform(string(f.Contents), api.TransformOptions{
			Loader:         api.LoaderJS,
			Target:         env.scriptTarget,
			Sourcemap:      sourcemap,
			Sourcefile:     f.Origin,
			SourcesContent: api.SourcesContentInclude,
			LogLevel:       api.LogLevelSilent,
		})
		if len(res.Errors) > 0 {
			return nil, esbuildError("script transpilation failed", f.Origin, res.Errors)
		}
		return []*File{{Base: f.Base, Rel: f.Rel, Origin: f.Origin, Contents: res.Code}}, nil
	}
}
