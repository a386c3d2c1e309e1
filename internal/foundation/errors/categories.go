package errors

import "maps"

// ErrorCategory groups failures by what the user has to fix. The CLI maps
// each category to an exit code.
type ErrorCategory string

const (
	// Bad input: assetbuilder.yaml, flags, or src/svg/svg-dir-map.json.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryManifest   ErrorCategory = "manifest"

	// A task failed while producing output under dev/ or prod/.
	CategoryBuild      ErrorCategory = "build"
	CategoryTransform  ErrorCategory = "transform"
	CategoryFileSystem ErrorCategory = "filesystem"

	// The live-reload server or watcher, or the process itself.
	CategoryServer   ErrorCategory = "server"
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity sets the log level the CLI reports an error at.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // build aborted
	SeverityError   ErrorSeverity = "error"   // one task failed
	SeverityWarning ErrorSeverity = "warning" // output written, possibly incomplete
)

// RetryStrategy tells a caller whether running again can help. Builds never
// retry on their own; RetryUserAction marks errors that need an edit first.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"
	RetryUserAction RetryStrategy = "user"
)

// ErrorContext holds structured details such as "path", "task" or "addr".
type ErrorContext map[string]any

// Set stores value under key, allocating the map if needed.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

func (c ErrorContext) Get(key string) (any, bool) {
	value, ok := c[key]
	return value, ok
}

// GetString returns the value under key when it is a string.
func (c ErrorContext) GetString(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok
}

// Merge returns a new context with other's keys taking precedence. Neither
// input is modified.
func (c ErrorContext) Merge(other ErrorContext) ErrorContext {
	result := make(ErrorContext, len(c)+len(other))
	maps.Copy(result, c)
	maps.Copy(result, other)
	return result
}
