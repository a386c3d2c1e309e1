package config

import (
	"path"

	"git.home.luguber.info/inful/assetbuilder/internal/mode"
)

// Category names one of the per-asset tasks.
type Category string

const (
	CategoryHTML    Category = "html"
	CategoryStyles  Category = "styles"
	CategoryScripts Category = "scripts"
	CategoryJSLib   Category = "js-lib"
	CategoryCSSLib  Category = "css-lib"
	CategoryImages  Category = "images"
	CategoryFonts   Category = "fonts"
)

// Categories lists the per-asset tasks in their canonical order.
var Categories = []Category{
	CategoryHTML,
	CategoryStyles,
	CategoryScripts,
	CategoryJSLib,
	CategoryCSSLib,
	CategoryImages,
	CategoryFonts,
}

// AssetSpec is the source glob and destination of one asset category.
type AssetSpec struct {
	Category Category
	Pattern  string // Glob relative to the project root; the part before the first meta character is the base
	Dest     string // Output directory relative to the project root
}

// WatchSpec maps a watch glob to the category task it re-runs.
type WatchSpec struct {
	Category Category
	Pattern  string
}

// Layout is the mode-resolved view of the project: what each task reads and
// where it writes. It is computed once and shared read-only by every task.
type Layout struct {
	Mode     mode.Mode
	Root     string
	Source   string
	Output   string // Mode output root (dev or prod)
	Manifest string

	SpriteSource string // Directory holding one subdirectory per sprite group
	SpriteDest   string // Directory sprites are written to

	Assets map[Category]AssetSpec
	Watch  []WatchSpec
}

// Asset returns the spec for category c.
func (l Layout) Asset(c Category) AssetSpec {
	return l.Assets[c]
}

// Layout resolves the asset layout for mode m.
func (c *Config) Layout(m mode.Mode) Layout {
	src := c.Paths.Source
	out := c.Paths.Dev
	if m.IsProduction() {
		out = c.Paths.Prod
	}
	srcGlob := func(p string) string { return path.Join(src, p) }
	prodOr := func(prod, dev string) string {
		if m.IsProduction() {
			return prod
		}
		return dev
	}

	l := Layout{
		Mode:         m,
		Root:         c.Paths.Root,
		Source:       src,
		Output:       out,
		Manifest:     c.Paths.Manifest,
		SpriteSource: srcGlob("svg"),
		SpriteDest:   srcGlob("img"),
		Assets: map[Category]AssetSpec{
			CategoryHTML: {
				Category: CategoryHTML,
				Pattern:  srcGlob(prodOr("**/*.html", "*.html")),
				Dest:     out,
			},
			CategoryStyles: {
				Category: CategoryStyles,
				Pattern:  srcGlob(prodOr("components/**/*.{scss,sass}", "scss/*.{scss,sass}")),
				Dest:     path.Join(out, prodOr("components", "css")),
			},
			CategoryScripts: {
				Category: CategoryScripts,
				Pattern:  srcGlob(prodOr("js/**/*.js", "js/*.js")),
				Dest:     path.Join(out, "js"),
			},
			CategoryJSLib: {
				Category: CategoryJSLib,
				Pattern:  srcGlob("lib/js/**/*.js"),
				Dest:     path.Join(out, "lib", "js"),
			},
			CategoryCSSLib: {
				Category: CategoryCSSLib,
				Pattern:  srcGlob("lib/css/**/*.css"),
				Dest:     path.Join(out, "lib", "css"),
			},
			CategoryImages: {
				Category: CategoryImages,
				Pattern:  srcGlob("img/*.{png,svg,jpg,jpeg}"),
				Dest:     path.Join(out, "img"),
			},
			CategoryFonts: {
				Category: CategoryFonts,
				Pattern:  srcGlob("font/*.{eot,ttf,otf,otc,ttc,woff,woff2,svg}"),
				Dest:     path.Join(out, "font"),
			},
		},
	}

	if m.LiveReload() {
		l.Watch = []WatchSpec{
			{Category: CategoryHTML, Pattern: srcGlob("**/*.html")},
			{Category: CategoryStyles, Pattern: srcGlob("**/*.scss")},
			{Category: CategoryScripts, Pattern: srcGlob("**/*.js")},
			{Category: CategoryImages, Pattern: srcGlob("**/*.{png,svg,jpg,jpeg}")},
			{Category: CategoryFonts, Pattern: srcGlob("**/*.{eot,ttf,otf,otc,ttc,woff,woff2,svg}")},
		}
	}
	return l
}
