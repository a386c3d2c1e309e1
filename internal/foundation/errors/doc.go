// Package errors provides the classified error primitives used across assetbuilder.
//
// Errors carry a category (config, manifest, transform, ...), a severity and
// free-form context. The CLI adapter turns them into exit codes and log lines.
//
// Example usage:
//
//	err := errors.WrapError(parseErr, errors.CategoryManifest, "parse sprite manifest").
//		Fatal().
//		WithContext("path", manifestPath).
//		Build()
package errors
