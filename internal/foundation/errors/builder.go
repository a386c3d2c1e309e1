package errors

// ErrorBuilder assembles a ClassifiedError:
//
//	errors.TransformError("woff2 compression failed").WithContext("path", origin).Build()
type ErrorBuilder struct {
	err ClassifiedError
}

// NewError starts a non-fatal error that is never retried.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{err: ClassifiedError{
		category: category,
		severity: SeverityError,
		retry:    RetryNever,
		message:  message,
		context:  make(ErrorContext),
	}}
}

// WrapError starts an error with err as its cause.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	b := NewError(category, message)
	b.err.cause = err
	return b
}

func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.err.context = b.err.context.Set(key, value)
	return b
}

// Fatal marks the error as aborting the whole build.
func (b *ErrorBuilder) Fatal() *ErrorBuilder {
	b.err.severity = SeverityFatal
	return b
}

// UserAction marks the error as fixable only by editing input or config.
func (b *ErrorBuilder) UserAction() *ErrorBuilder {
	b.err.retry = RetryUserAction
	return b
}

// Build returns the error. The builder may be reused; later changes do not
// affect errors already built.
func (b *ErrorBuilder) Build() *ClassifiedError {
	e := b.err
	e.context = ErrorContext{}.Merge(b.err.context)
	return &e
}

// Category shortcuts. Input errors are fatal and need the user; task errors
// only fail their task.

func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal().UserAction()
}

func ValidationError(message string) *ErrorBuilder {
	return NewError(CategoryValidation, message).Fatal().UserAction()
}

// ManifestError reports an unreadable sprite manifest; graph construction stops.
func ManifestError(message string) *ErrorBuilder {
	return NewError(CategoryManifest, message).Fatal().UserAction()
}

func BuildError(message string) *ErrorBuilder {
	return NewError(CategoryBuild, message).Fatal()
}

func TransformError(message string) *ErrorBuilder {
	return NewError(CategoryTransform, message)
}

func FileSystemError(message string) *ErrorBuilder {
	return NewError(CategoryFileSystem, message)
}

func ServerError(message string) *ErrorBuilder {
	return NewError(CategoryServer, message).Fatal()
}
