package sprite

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/svg"

	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/observability"
)

const svgMediaType = "image/svg+xml"

// stackStyle shows only the icon addressed by the URL fragment.
const stackStyle = `:root>svg{display:none}:root>svg:target{display:block}`

// Icon is one source SVG.
type Icon struct {
	Name string
	Data []byte
}

// Packer builds stack sprites.
type Packer struct {
	min *minify.M
}

// NewPacker returns a Packer that minifies every icon before nesting it.
func NewPacker() *Packer {
	m := minify.New()
	m.AddFunc(svgMediaType, svg.Minify)
	m.AddFunc("text/css", css.Minify)
	return &Packer{min: m}
}

// Pack nests icons, in the given order, under one root svg.
func (p *Packer) Pack(icons []Icon) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	buf.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink">`)
	buf.WriteString(`<style>` + stackStyle + `</style>`)

	used := make(map[string]bool, len(icons))
	for _, icon := range icons {
		data, err := p.min.Bytes(svgMediaType, icon.Data)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryTransform, "failed to optimise svg").
				WithContext("path", icon.Name).Build()
		}
		attrs, inner, err := splitRoot(data)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryTransform, "invalid svg").
				WithContext("path", icon.Name).Build()
		}

		id := uniqueID(SymbolID(icon.Name), used)

		buf.WriteString(`<svg id="`)
		_ = xml.EscapeText(&buf, []byte(id))
		buf.WriteByte('"')
		for _, a := range attrs {
			buf.WriteByte(' ')
			buf.WriteString(a.Name.Local)
			buf.WriteString(`="`)
			_ = xml.EscapeText(&buf, []byte(a.Value))
			buf.WriteByte('"')
		}
		buf.WriteByte('>')
		buf.Write(inner)
		buf.WriteString(`</svg>`)
	}
	buf.WriteString(`</svg>`)
	return buf.Bytes(), nil
}

// uniqueID returns base, or base-N with the lowest free N >= 2, and marks
// the result as used.
func uniqueID(base string, used map[string]bool) string {
	id := base
	for n := 2; used[id]; n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	used[id] = true
	return id
}

// splitRoot returns the root element's own attributes (namespace
// declarations and id removed) and the raw markup between its tags.
func splitRoot(data []byte) ([]xml.Attr, []byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			return nil, nil, fmt.Errorf("no svg element")
		}
		if err != nil {
			return nil, nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "svg" {
			return nil, nil, fmt.Errorf("root element is <%s>, want <svg>", start.Name.Local)
		}

		var attrs []xml.Attr
		for _, a := range start.Attr {
			if a.Name.Space == "xmlns" || (a.Name.Space == "" && (a.Name.Local == "xmlns" || a.Name.Local == "id" || a.Name.Local == "version")) {
				continue
			}
			if a.Name.Space != "" {
				a.Name.Local = a.Name.Space + ":" + a.Name.Local
			}
			attrs = append(attrs, a)
		}

		open := int(dec.InputOffset())
		if bytes.HasSuffix(bytes.TrimSpace(data[:open]), []byte("/>")) {
			return attrs, nil, nil
		}
		end := bytes.LastIndex(data, []byte("</svg"))
		if end < open {
			return nil, nil, fmt.Errorf("unterminated svg element")
		}
		return attrs, bytes.TrimSpace(data[open:end]), nil
	}
}

// PackDir packs dir/*.svg (sorted by name) into dest. When the directory holds
// no icons nothing is written and written is false.
func (p *Packer) PackDir(ctx context.Context, dir, dest string) (written bool, err error) {
	log := observability.Logger(ctx)

	matches, err := doublestar.Glob(os.DirFS(dir), "*.svg", doublestar.WithFilesOnly())
	if err != nil && !os.IsNotExist(err) {
		return false, errors.WrapError(err, errors.CategoryFileSystem, "failed to list icons").
			WithContext("path", dir).Build()
	}
	sort.Strings(matches)
	if len(matches) == 0 {
		log.Warn("No icons found, sprite not written", logfields.Path(dir))
		return false, nil
	}

	icons := make([]Icon, 0, len(matches))
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		data, err := os.ReadFile(filepath.Join(dir, m))
		if err != nil {
			return false, errors.WrapError(err, errors.CategoryFileSystem, "failed to read icon").
				WithContext("path", filepath.Join(dir, m)).Build()
		}
		icons = append(icons, Icon{Name: m, Data: data})
	}

	out, err := p.Pack(icons)
	if err != nil {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return false, errors.WrapError(err, errors.CategoryFileSystem, "failed to create sprite directory").
			WithContext("path", dest).Build()
	}
	if err := os.WriteFile(dest, out, 0o644); err != nil {
		return false, errors.WrapError(err, errors.CategoryFileSystem, "failed to write sprite").
			WithContext("path", dest).Build()
	}
	log.Info("Sprite written", logfields.Path(dest), logfields.Files(len(icons)))
	return true, nil
}
