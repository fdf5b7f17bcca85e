package parentpanel

import (
	"errors"
	"fmt"
)

// ErrTokenMissing is returned, before any network traffic, by calls that
// need an auth token when none is on the context.
var ErrTokenMissing = errors.New("parent panel: auth token required")

// ErrQueueRejected is wrapped when the backend answers the join-queue call
// with success:false.
var ErrQueueRejected = errors.New("parent panel: join queue rejected")

// APIError is a non-2xx answer from the backend. Message is the backend's
// own "message" field and may be empty.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("parent panel: request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("parent panel: status %d: %s", e.StatusCode, e.Message)
}

// Message returns the backend-supplied message carried by err, if any.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var rejected *rejectedError
	if errors.As(err, &rejected) {
		return rejected.message
	}
	return ""
}

type rejectedError struct {
	message string
}

func (e *rejectedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrQueueRejected, e.message)
}

func (e *rejectedError) Unwrap() error { return ErrQueueRejected }
