// Package errors provides the classified error type used across assetflow.
//
// Errors carry a category (config, transform, filesystem, server, ...), a
// severity and structured context. The CLI adapter maps them to exit codes.
//
// Example usage:
//
//	err := errors.TransformError("minify bundle").
//		WithCause(cause).
//		WithContext("path", "dev/scripts/script.min.js").
//		Build()
package errors
