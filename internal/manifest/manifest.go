package manifest

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
)

// FileName is the manifest's base name inside the SVG source root.
const FileName = "svg-dir-map.json"

// RootKey identifies the entry describing the SVG source root itself.
const RootKey = ""

// RootGroups returns the keys of the root entry in document order. A missing
// or null root entry yields an empty list. The data must be JSON; it is
// walked as a YAML node tree only to keep key order.
func RootGroups(data []byte) ([]string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.ManifestError("sprite manifest is empty").Build()
	}
	if !json.Valid(data) {
		return nil, errors.ManifestError("sprite manifest is not valid JSON").UserAction().Build()
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapError(err, errors.CategoryManifest, "failed to parse sprite manifest").
			Fatal().UserAction().Build()
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.ManifestError("sprite manifest has no document").Build()
	}
	top := doc.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, errors.ManifestError("sprite manifest must be an object").Build()
	}

	root := lookup(top, RootKey)
	if root == nil || root.Tag == "!!null" {
		return nil, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, errors.ManifestError("sprite manifest root entry must be an object").
			WithContext("line", root.Line).Build()
	}

	groups := make([]string, 0, len(root.Content)/2)
	seen := make(map[string]struct{}, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		groups = append(groups, key)
	}
	return groups, nil
}

// lookup returns the value node for key in a mapping node. The first
// occurrence wins.
func lookup(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		k := mapping.Content[i]
		if k.Kind == yaml.ScalarNode && k.Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// Read loads the manifest at path. A missing file reports exists=false and no
// error.
func Read(path string) (groups []string, exists bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.WrapError(err, errors.CategoryManifest, "failed to read sprite manifest").
			Fatal().WithContext("path", path).Build()
	}
	groups, err = RootGroups(data)
	if err != nil {
		if ce, ok := errors.AsClassified(err); ok {
			return nil, true, ce.WithContext("path", path)
		}
		return nil, true, err
	}
	return groups, true, nil
}

// Exists reports whether a manifest file is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Write stores m at path, creating the parent directory when needed.
func Write(path string, m Map) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to encode sprite manifest").Build()
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create manifest directory").
			WithContext("path", path).Build()
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write sprite manifest").
			WithContext("path", path).Build()
	}
	return nil
}

// Remove deletes the manifest. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to remove sprite manifest").
			WithContext("path", path).Build()
	}
	return nil
}

// Path joins the SVG source root and the manifest file name.
func Path(svgRoot string) string {
	return filepath.Join(svgRoot, FileName)
}
