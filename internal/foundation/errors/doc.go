// Package errors provides the classified error type shared by every pipeline stage.
//
// Categories follow the build's failure taxonomy (config, filesystem, template,
// render, validation, sync, codegen). Every error is fatal for the current
// command: nothing in the pipeline retries or recovers per document.
//
// Example usage:
//
//	err := errors.IOError("read document").
//		WithCause(readErr).
//		WithPath(path).
//		Build()
package errors
