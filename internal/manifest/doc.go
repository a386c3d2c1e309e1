// Package manifest reads and writes the sprite directory map: a JSON object
// keyed by directory path relative to the SVG source root ("" is the root)
// whose values map child directory names to true. Only the root entry drives
// sprite generation; its keys are returned in document order.
package manifest
