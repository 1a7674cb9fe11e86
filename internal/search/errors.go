package search

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidUsername = errors.New("username must be a string")
	ErrEmptyUsername   = errors.New("username must not be empty")
	ErrInvalidPattern  = errors.New("pattern must be a valid regular expression")
	ErrTooManyPages    = errors.New("upstream listing exceeded the maximum number of pages")
)

// NotFoundError is returned when the upstream API reports a 404 for a user.
type NotFoundError struct {
	Username string
	Message  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("user %q not found: %s", e.Username, e.Message)
}

// UpstreamError wraps any other failure while listing gists. StatusCode is
// zero for transport failures, Message is empty when the body could not be decoded.
type UpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream error: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// FetchError is returned when the raw content of a gist file could not be retrieved.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("cannot fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
