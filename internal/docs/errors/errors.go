package errors

// Package errors provides sentinel errors for source discovery.
// They sit at the bottom of the cause chain of the classified errors returned by docs.Walk.

import "errors"

var (
	// ErrSourceNotFound indicates the content directory does not exist.
	ErrSourceNotFound = errors.New("source directory not found")

	// ErrSourceNotDir indicates the content root is a regular file.
	ErrSourceNotDir = errors.New("source path is not a directory")

	// ErrWalkFailed indicates traversal of the content directory failed.
	ErrWalkFailed = errors.New("source directory walk failed")

	// ErrFileReadFailed indicates reading a discovered document failed.
	ErrFileReadFailed = errors.New("document read failed")

	// ErrInvalidFrontMatter indicates a document's front matter could not be decoded.
	ErrInvalidFrontMatter = errors.New("invalid front matter")
)
