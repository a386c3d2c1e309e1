// Package fontconv converts between web font containers. Fonts are held in
// their sfnt form; WOFF, WOFF2 and EOT inputs are unwrapped with
// github.com/tdewolff/font and written back out as WOFF (zlib), WOFF2
// (brotli, glyf/loca untransformed) or EOT.
//
// Only containers are converted: glyph outlines are never rewritten, so a CFF
// based OpenType font cannot become a .ttf.
package fontconv
