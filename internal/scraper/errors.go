package scraper

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedStatus is wrapped by FetchError for non-2xx responses.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrBodyTooLarge is wrapped by FetchError when a response exceeds the
	// body size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrUnexpectedStructure is wrapped by FetchError when a page lacks the
	// element the scraper looks for.
	ErrUnexpectedStructure = errors.New("unexpected page structure")
)

// FetchError reports a failed read of a wiki URL. It covers network errors,
// HTTP error statuses and pages that do not have the expected structure.
type FetchError struct {
	URL string
	Err error
}

// Error implements error.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}
