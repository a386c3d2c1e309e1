// Package assets implements the per-asset build tasks. Each task reads the
// files matched by its source glob, passes every file through an ordered list
// of transforms and writes the results below its destination directory,
// preserving the path below the glob base.
//
// A transform maps one file to zero or more files. Dest is itself a transform
// that writes and passes files through, so a pipeline can write intermediate
// results (the plain stylesheet before its minified variant, for example).
package assets
