package assets

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/observability"
)

// Transform maps one file to zero or more files. Returning nil drops the file.
type Transform func(ctx context.Context, f *File) ([]*File, error)

// Pipeline is a source glob followed by transforms.
type Pipeline struct {
	Root       string
	Pattern    string
	Transforms []Transform
}

// Run reads the sources and pushes them through every transform in order.
// The first transform error aborts the run.
func (p Pipeline) Run(ctx context.Context) error {
	log := observability.Logger(ctx)
	files, err := Source(ctx, p.Root, p.Pattern)
	if err != nil {
		return err
	}
	log.Debug("Sources matched", slog.String("pattern", p.Pattern), logfields.Files(len(files)))

	for _, tr := range p.Transforms {
		next := make([]*File, 0, len(files))
		for _, f := range files {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := tr(ctx, f)
			if err != nil {
				return err
			}
			next = append(next, out...)
		}
		files = next
	}
	return nil
}

// Dest writes every file below root/dir and passes it on.
func Dest(root, dir string) Transform {
	return func(_ context.Context, f *File) ([]*File, error) {
		if err := Write(root, dir, f); err != nil {
			return nil, err
		}
		return []*File{f}, nil
	}
}

// Skip drops files for which drop reports true.
func Skip(drop func(*File) bool) Transform {
	return func(_ context.Context, f *File) ([]*File, error) {
		if drop(f) {
			return nil, nil
		}
		return []*File{f}, nil
	}
}
