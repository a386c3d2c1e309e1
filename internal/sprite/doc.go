// Package sprite packs a directory of SVG icons into a single "stack" sprite:
// one outer svg holding every icon as a nested svg with an id, where only the
// icon named by the URL fragment is displayed.
package sprite
