package errors

import "maps"

// ErrorCategory is the broad class of an error, used to pick exit codes and log levels.
type ErrorCategory string

const (
	// CategoryConfig covers unreadable or malformed configuration.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// CategoryTransform covers library transforms: sass, css, js, html, images.
	CategoryTransform  ErrorCategory = "transform"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryPipeline   ErrorCategory = "pipeline"

	// CategoryServer covers the dev server and file watcher.
	CategoryServer   ErrorCategory = "server"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // stops the pipeline
	SeverityError   ErrorSeverity = "error"   // fails the current task
	SeverityWarning ErrorSeverity = "warning" // logged, task output skipped
	SeverityInfo    ErrorSeverity = "info"
)

// ErrorContext carries structured key/value details for an error.
type ErrorContext map[string]any

// Set adds or updates a context value.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// Get retrieves a context value.
func (c ErrorContext) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c[key]
	return v, ok
}

// Merge combines two contexts, other wins on conflicts.
func (c ErrorContext) Merge(other ErrorContext) ErrorContext {
	if c == nil {
		return other
	}
	if other == nil {
		return c
	}
	out := make(ErrorContext, len(c)+len(other))
	maps.Copy(out, c)
	maps.Copy(out, other)
	return out
}
