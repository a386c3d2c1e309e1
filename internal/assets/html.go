package assets

import (
	"context"
	"path/filepath"

	"git.home.luguber.info/inful/assetbuilder/internal/fileinclude"
)

// IncludeHTML expands @@include directives relative to each page.
func IncludeHTML(env *Env, p *fileinclude.Processor) Transform {
	return func(_ context.Context, f *File) ([]*File, error) {
		src := filepath.Join(env.Layout.Root, filepath.FromSlash(f.Origin))
		out, err := p.Process(src, f.Contents)
		if err != nil {
			return nil, err
		}
		return []*File{{Base: f.Base, Rel: f.Rel, Origin: f.Origin, Contents: out}}, nil
	}
}
