package fetch

import (
	"errors"
	"fmt"
)

var (
	// ErrFetchFailed is matched by every transfer failure other than cancellation.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrCancelled is returned when the context ends before the transfer completes.
	ErrCancelled = errors.New("fetch cancelled")
)

// StatusError reports a non-success HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetching %s: server returned %s", e.URL, e.Status)
}

// Unwrap lets errors.Is(err, ErrFetchFailed) match.
func (e *StatusError) Unwrap() error { return ErrFetchFailed }
