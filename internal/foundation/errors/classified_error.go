package errors

import (
	stderrors "errors"
	"fmt"
)

// ClassifiedError is the error every assetbuilder package returns when the
// failure has a meaning beyond its text: a manifest that does not parse, a
// stylesheet that does not compile, an output root that cannot be removed.
// The category picks the exit code, the context carries the offending path.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	retry    RetryStrategy
	message  string
	cause    error
	context  ErrorContext
}

// Error renders "[category:severity] message: cause".
func (e *ClassifiedError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("[%s:%s] %s", e.category, e.severity, e.message)
	}
	return fmt.Sprintf("[%s:%s] %s: %v", e.category, e.severity, e.message, e.cause)
}

func (e *ClassifiedError) Unwrap() error { return e.cause }

func (e *ClassifiedError) Category() ErrorCategory      { return e.category }
func (e *ClassifiedError) Severity() ErrorSeverity      { return e.severity }
func (e *ClassifiedError) RetryStrategy() RetryStrategy { return e.retry }
func (e *ClassifiedError) Message() string              { return e.message }
func (e *ClassifiedError) Cause() error                 { return e.cause }
func (e *ClassifiedError) Context() ErrorContext        { return e.context }

// IsFatal reports whether the error stops the build rather than one task.
func (e *ClassifiedError) IsFatal() bool { return e.severity == SeverityFatal }

// WithContext returns a copy of e with key set; e is left untouched so a
// shared sentinel can be annotated per task.
func (e *ClassifiedError) WithContext(key string, value any) *ClassifiedError {
	c := *e
	c.context = e.context.Merge(ErrorContext{key: value})
	return &c
}

// Is matches on category and message, ignoring context and cause.
func (e *ClassifiedError) Is(target error) bool {
	other, ok := target.(*ClassifiedError)
	return ok && e.category == other.category && e.message == other.message
}

// AsClassified finds the first ClassifiedError in err's chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var classified *ClassifiedError
	if stderrors.As(err, &classified) {
		return classified, true
	}
	return nil, false
}

// HasCategory reports whether the first ClassifiedError in err's chain has
// category. Task errors wrapped by the graph runner still match.
func HasCategory(err error, category ErrorCategory) bool {
	classified, ok := AsClassified(err)
	return ok && classified.category == category
}

// GetCategory returns the category of err, CategoryInternal when err carries
// none.
func GetCategory(err error) ErrorCategory {
	if classified, ok := AsClassified(err); ok {
		return classified.category
	}
	return CategoryInternal
}

// GetSeverity returns the severity of err, SeverityError when err carries
// none.
func GetSeverity(err error) ErrorSeverity {
	if classified, ok := AsClassified(err); ok {
		return classified.severity
	}
	return SeverityError
}
