package content

import "errors"

var (
	// ErrRootNotFound indicates the configured content root does not exist.
	ErrRootNotFound = errors.New("content root not found")

	// ErrDirWalkFailed indicates filesystem traversal of a content directory failed.
	ErrDirWalkFailed = errors.New("content directory walk failed")

	// ErrFileReadFailed indicates reading a discovered source file failed.
	ErrFileReadFailed = errors.New("source file read failed")
)
