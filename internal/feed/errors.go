package feed

import (
	"errors"
	"fmt"
)

// ErrNoUpdates signals that a fetch succeeded but yielded zero parsable
// entries. It is informational: callers report an empty state rather
// than failing the pass.
var ErrNoUpdates = errors.New("source yielded no parsable updates")

// TransportError indicates a failed network fetch or a non-success HTTP
// status. It is fatal to the current pass and is not retried.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RenderEnvironmentError indicates the headless-browser engine failed
// to launch or navigate. Hint carries a remediation suggestion for the
// operator.
type RenderEnvironmentError struct {
	Hint string
	Err  error
}

func (e *RenderEnvironmentError) Error() string {
	return fmt.Sprintf("headless render failed: %v (%s)", e.Err, e.Hint)
}

func (e *RenderEnvironmentError) Unwrap() error {
	return e.Err
}
