package assets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/bep/godartsass/v2"

	ferrors "git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
)

// SassSyntax is the input syntax of a stylesheet.
type SassSyntax string

const (
	SyntaxSCSS SassSyntax = "scss"
	SyntaxSass SassSyntax = "sass"
)

// SassInput is one stylesheet to compile.
type SassInput struct {
	Path         string // Absolute path; relative imports resolve against it
	Source       string
	Syntax       SassSyntax
	IncludePaths []string
	SourceMap    bool
}

// SassOutput is the compiled stylesheet and, when requested, its source map.
type SassOutput struct {
	CSS       string
	SourceMap string
}

// Compiler compiles Sass sources.
type Compiler interface {
	Compile(ctx context.Context, in SassInput) (SassOutput, error)
}

// CompileError reports a problem in the stylesheet itself. Styles tasks log
// it and skip the file; any other compiler error fails the task.
type CompileError struct {
	Path string
	Err  error
}

func (e *CompileError) Error() string { return fmt.Sprintf("sass: %s: %v", e.Path, e.Err) }
func (e *CompileError) Unwrap() error { return e.Err }

// DartSass compiles through the Dart Sass embedded protocol. The sass process
// is started on first use and shared by all compilations.
type DartSass struct {
	binary string
	logger *slog.Logger

	once     sync.Once
	mu       sync.Mutex
	t        *godartsass.Transpiler
	startErr error
}

// NewDartSass returns a compiler running binary ("sass" from PATH when empty).
func NewDartSass(binary string, logger *slog.Logger) *DartSass {
	if logger == nil {
		logger = slog.Default()
	}
	return &DartSass{binary: binary, logger: logger}
}

func (d *DartSass) start() (*godartsass.Transpiler, error) {
	d.once.Do(func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.t, d.startErr = godartsass.Start(godartsass.Options{
			DartSassEmbeddedFilename: d.binary,
			LogEventHandler: func(e godartsass.LogEvent) {
				d.logger.Warn("Sass", slog.Any("type", e.Type), slog.String("message", e.Message))
			},
		})
	})
	if d.startErr != nil {
		return nil, ferrors.WrapError(d.startErr, ferrors.CategoryBuild, "failed to start dart sass").
			Fatal().UserAction().WithContext("binary", d.binary).Build()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.t == nil {
		return nil, ferrors.NewError(ferrors.CategoryBuild, "dart sass compiler is closed").Build()
	}
	return d.t, nil
}

// Compile implements Compiler.
func (d *DartSass) Compile(ctx context.Context, in SassInput) (SassOutput, error) {
	if err := ctx.Err(); err != nil {
		return SassOutput{}, err
	}
	t, err := d.start()
	if err != nil {
		return SassOutput{}, err
	}

	syntax := godartsass.SourceSyntaxSCSS
	if in.Syntax == SyntaxSass {
		syntax = godartsass.SourceSyntaxSASS
	}
	includes := append([]string{filepath.Dir(in.Path)}, in.IncludePaths...)

	res, err := t.Execute(godartsass.Args{
		Source:                  in.Source,
		URL:                     "file://" + filepath.ToSlash(in.Path),
		SourceSyntax:            syntax,
		OutputStyle:             godartsass.OutputStyleExpanded,
		IncludePaths:            includes,
		EnableSourceMap:         in.SourceMap,
		SourceMapIncludeSources: in.SourceMap,
	})
	if err != nil {
		if errors.Is(err, godartsass.ErrShutdown) {
			return SassOutput{}, ferrors.WrapError(err, ferrors.CategoryBuild, "dart sass is not running").Build()
		}
		return SassOutput{}, &CompileError{Path: in.Path, Err: err}
	}
	return SassOutput{CSS: res.CSS, SourceMap: res.SourceMap}, nil
}

// Close stops the sass process if it was started.
func (d *DartSass) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.t == nil {
		return nil
	}
	err := d.t.Close()
	d.t = nil
	return err
}

func asCompileError(err error, target **CompileError) bool {
	return errors.As(err, target)
}
