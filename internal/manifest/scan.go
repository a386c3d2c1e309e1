package manifest

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/observability"
)

// IconPattern selects the files that make a directory a sprite group.
const IconPattern = "**/*.svg"

// Map is the decoded directory map: directory path -> child name -> true.
type Map map[string]map[string]bool

// Add records every directory on the way from the root to the directory
// holding file (a slash separated path relative to the root).
func (m Map) Add(file string) {
	dir := path.Dir(path.Clean(file))
	if dir == "." {
		return
	}
	parent := RootKey
	for _, name := range splitDir(dir) {
		children, ok := m[parent]
		if !ok {
			children = make(map[string]bool)
			m[parent] = children
		}
		children[name] = true
		parent = path.Join(parent, name)
	}
}

// Groups returns the root entry's keys, sorted.
func (m Map) Groups() []string {
	groups := make([]string, 0, len(m[RootKey]))
	for k := range m[RootKey] {
		groups = append(groups, k)
	}
	sort.Strings(groups)
	return groups
}

func splitDir(dir string) []string {
	var parts []string
	for dir != "." && dir != "/" && dir != "" {
		parts = append([]string{path.Base(dir)}, parts...)
		dir = path.Dir(dir)
	}
	return parts
}

// Scan walks root and maps every directory holding an SVG. Unreadable entries
// are logged and skipped.
func Scan(ctx context.Context, root string) (Map, error) {
	log := observability.Logger(ctx)
	m := make(Map)
	files := 0

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if walkErr != nil {
			if p == root {
				return walkErr
			}
			log.Warn("Skipping unreadable entry", logfields.Path(p), logfields.Error(walkErr))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			log.Warn("Skipping entry outside root", logfields.Path(p), logfields.Error(err))
			return nil
		}
		rel = filepath.ToSlash(rel)
		if ok, _ := doublestar.Match(IconPattern, rel); !ok {
			return nil
		}
		m.Add(rel)
		files++
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to scan svg directory").
			WithContext("path", root).Build()
	}

	log.Info("Scanned svg directory", logfields.Path(root), logfields.Files(files),
		logfields.Group(strings.Join(m.Groups(), ",")))
	return m, nil
}
