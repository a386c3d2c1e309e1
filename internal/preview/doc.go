// Package preview serves the development output with live reload and watches
// the source tree, re-running the category task a change belongs to.
package preview
