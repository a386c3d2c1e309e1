package assets

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
)

// File is one file flowing through a pipeline.
type File struct {
	Base     string // Glob base, slash separated and relative to the project root
	Rel      string // Path below Base; preserved in the destination
	Origin   string // Source path relative to the project root
	Contents []byte
}

// Path is the file's current slash separated path relative to the root.
func (f *File) Path() string { return path.Join(f.Base, f.Rel) }

// Ext returns the lower-cased extension of Rel.
func (f *File) Ext() string { return strings.ToLower(path.Ext(f.Rel)) }

// Stem is the base name of Rel without extension.
func (f *File) Stem() string {
	b := path.Base(f.Rel)
	return strings.TrimSuffix(b, path.Ext(b))
}

// Derive returns a copy of f renamed to stem+ext in the same directory and
// holding contents.
func (f *File) Derive(stemSuffix, ext string, contents []byte) *File {
	dir := path.Dir(f.Rel)
	return &File{
		Base:     f.Base,
		Rel:      path.Join(dir, f.Stem()+stemSuffix+ext),
		Origin:   f.Origin,
		Contents: contents,
	}
}

// Source reads every file matching pattern below root. Matches are sorted.
// A pattern whose base directory does not exist yields no files.
func Source(ctx context.Context, root, pattern string) ([]*File, error) {
	base, _ := doublestar.SplitPattern(pattern)
	if base == "." {
		base = ""
	}

	matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "invalid source glob").
			WithContext("pattern", pattern).Build()
	}
	sort.Strings(matches)

	files := make([]*File, 0, len(matches))
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(m)))
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read source file").
				WithContext("path", m).Build()
		}
		rel := strings.TrimPrefix(m, base)
		rel = strings.TrimPrefix(rel, "/")
		files = append(files, &File{Base: base, Rel: rel, Origin: m, Contents: data})
	}
	return files, nil
}

// Write stores f below root/dir, creating directories as needed.
func Write(root, dir string, f *File) error {
	target := filepath.Join(root, filepath.FromSlash(dir), filepath.FromSlash(f.Rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", target).Build()
	}
	if err := os.WriteFile(target, f.Contents, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write output file").
			WithContext("path", target).Build()
	}
	return nil
}
