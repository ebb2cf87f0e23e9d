package source

import (
	"errors"
	"fmt"
)

var (
	// ErrResourceNotFound is returned when no bundle entry matches a requested name.
	ErrResourceNotFound = errors.New("resource not found")
	// ErrInvalidURL is returned when a download URL cannot yield an archive file name.
	ErrInvalidURL = errors.New("invalid download url")
)

// ResolutionError reports that a source could not resolve its archive.
type ResolutionError struct {
	// Source is "remote" or "bundled".
	Source string
	// Name is the URL or resource name that failed to resolve.
	Name string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s source %q: %v", e.Source, e.Name, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }
