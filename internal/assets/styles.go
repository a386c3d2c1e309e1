package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"

	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/observability"
)

const cssMediaType = "text/css"

// keepURLs leaves url() references, root-absolute paths and remote imports
// as written. Relative @import rules still resolve and are bundled.
var keepURLs = api.Plugin{
	Name: "keep-urls",
	Setup: func(build api.PluginBuild) {
		build.OnResolve(api.OnResolveOptions{Filter: `.*`},
			func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				if args.Kind == api.ResolveCSSURLToken || strings.HasPrefix(args.Path, "/") ||
					strings.Contains(args.Path, "://") {
					return api.OnResolveResult{Path: args.Path, External: true}, nil
				}
				return api.OnResolveResult{}, nil
			})
	},
}

var targetRe = regexp.MustCompile(`^([a-z]+)([0-9]+(?:\.[0-9]+)*)$`)

var engineNames = map[string]api.EngineName{
	"chrome":  api.EngineChrome,
	"edge":    api.EngineEdge,
	"firefox": api.EngineFirefox,
	"ie":      api.EngineIE,
	"ios":     api.EngineIOS,
	"node":    api.EngineNode,
	"opera":   api.EngineOpera,
	"safari":  api.EngineSafari,
}

// ParseEngines converts browser targets such as "chrome58" or "safari11.1"
// into esbuild engines.
func ParseEngines(targets []string) ([]api.Engine, error) {
	engines := make([]api.Engine, 0, len(targets))
	for _, t := range targets {
		m := targetRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(t)))
		if m == nil {
			return nil, errors.ConfigError(fmt.Sprintf("invalid browser target %q", t)).Build()
		}
		name, ok := engineNames[m[1]]
		if !ok {
			return nil, errors.ConfigError(fmt.Sprintf("unknown browser %q in target %q", m[1], t)).Build()
		}
		engines = append(engines, api.Engine{Name: name, Version: m[2]})
	}
	return engines, nil
}

// IsPartial reports whether f is a Sass partial (_name.scss).
func IsPartial(f *File) bool {
	return strings.HasPrefix(path.Base(f.Rel), "_")
}

// CompileSass compiles .scss and .sass files to .css. Compile errors in a
// stylesheet are logged and the file is dropped.
func CompileSass(env *Env) Transform {
	return func(ctx context.Context, f *File) ([]*File, error) {
		syntax := SyntaxSCSS
		if f.Ext() == ".sass" {
			syntax = SyntaxSass
		}
		abs, err := filepath.Abs(filepath.Join(env.Layout.Root, filepath.FromSlash(f.Origin)))
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve stylesheet path").Build()
		}

		out, err := env.Compiler.Compile(ctx, SassInput{
			Path:         abs,
			Source:       string(f.Contents),
			Syntax:       syntax,
			IncludePaths: env.includePaths(),
			SourceMap:    env.Layout.Mode.SourceMaps(),
		})
		if err != nil {
			var ce *CompileError
			if asCompileError(err, &ce) {
				observability.Logger(ctx).Error("Sass compilation failed, file skipped",
					logfields.Path(f.Origin), logfields.Error(ce.Err))
				return nil, nil
			}
			return nil, err
		}

		contents := []byte(out.CSS)
		if out.SourceMap != "" {
			contents = appendInlineSourceMap(contents, []byte(out.SourceMap))
		}
		return []*File{f.Derive("", ".css", contents)}, nil
	}
}

// PostProcessCSS inlines plain .css imports, adds vendor prefixes for the
// configured targets and merges longhand properties into shorthands.
func PostProcessCSS(env *Env) Transform {
	return func(ctx context.Context, f *File) ([]*File, error) {
		root, err := filepath.Abs(env.Layout.Root)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve project root").Build()
		}
		dir := filepath.Join(root, filepath.FromSlash(path.Dir(f.Origin)))

		sourcemap := api.SourceMapNone
		if env.Layout.Mode.SourceMaps() {
			sourcemap = api.SourceMapInline
		}
		res := api.Build(api.BuildOptions{
			Stdin: &api.StdinOptions{
				Contents:   string(f.Contents),
				ResolveDir: dir,
				Sourcefile: path.Base(f.Origin),
				Loader:     api.LoaderCSS,
			},
			AbsWorkingDir: root,
			Bundle:        true,
			Write:         false,
			Plugins:       []api.Plugin{keepURLs},
			Engines:       env.engines,
			MinifySyntax:  true,
			Sourcemap:     sourcemap,
			LogLevel:      api.LogLevelSilent,
		})
		if len(res.Errors) > 0 {
			return nil, esbuildError("css post-processing failed", f.Origin, res.Errors)
		}
		if len(res.OutputFiles) == 0 {
			return nil, errors.TransformError("css post-processing produced no output").
				WithContext("path", f.Origin).Build()
		}
		return []*File{{Base: f.Base, Rel: f.Rel, Origin: f.Origin, Contents: res.OutputFiles[0].Contents}}, nil
	}
}

// MinifiedVariant replaces each stylesheet by its minified copy named
// <stem><suffix>.css. With sourceMaps the copy is minified by esbuild, which
// chains the inline map of its input; otherwise tdewolff/minify is used and
// map comments are dropped.
func MinifiedVariant(suffix string, sourceMaps bool) Transform {
	m := minify.New()
	m.AddFunc(cssMediaType, css.Minify)
	return func(_ context.Context, f *File) ([]*File, error) {
		if sourceMaps {
			res := api.Transform(string(f.Contents), api.TransformOptions{
				Loader:           api.LoaderCSS,
				Sourcefile:       path.Base(f.Rel),
				Sourcemap:        api.SourceMapInline,
				MinifyWhitespace: true,
				MinifySyntax:     true,
				LogLevel:         api.LogLevelSilent,
			})
			if len(res.Errors) > 0 {
				return nil, esbuildError("css minification failed", f.Origin, res.Errors)
			}
			return []*File{f.Derive(suffix, ".css", res.Code)}, nil
		}

		out, err := m.Bytes(cssMediaType, stripSourceMap(f.Contents))
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryTransform, "css minification failed").
				WithContext("path", f.Origin).Build()
		}
		return []*File{f.Derive(suffix, ".css", out)}, nil
	}
}

const sourceMapMarker = "/*# sourceMappingURL="

func appendInlineSourceMap(css, sourceMap []byte) []byte {
	var b bytes.Buffer
	b.Grow(len(css) + base64.StdEncoding.EncodedLen(len(sourceMap)) + 64)
	b.Write(bytes.TrimRight(css, "\n"))
	b.WriteString("\n" + sourceMapMarker + "data:application/json;base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(sourceMap))
	b.WriteString(" */\n")
	return b.Bytes()
}

func stripSourceMap(css []byte) []byte {
	if i := bytes.LastIndex(css, []byte(sourceMapMarker)); i >= 0 {
		return bytes.TrimRight(css[:i], "\n")
	}
	return css
}

func esbuildError(msg, origin string, messages []api.Message) error {
	details := make([]string, 0, len(messages))
	for _, m := range messages {
		if m.Location != nil {
			details = append(details, m.Location.File+":"+strconv.Itoa(m.Location.Line)+":"+
				strconv.Itoa(m.Location.Column)+": "+m.Text)
			continue
		}
		details = append(details, m.Text)
	}
	return errors.TransformError(msg+": "+strings.Join(details, "; ")).
		WithContext("path", origin).Build()
}
