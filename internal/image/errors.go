package image

import (
	"context"
	"errors"
	"fmt"
)

// HTTPError is returned when the webhook answers with a non-2xx status.
type HTTPError struct {
	StatusCode int
	StatusText string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("Failed to generate image: %s", e.StatusText)
}

// TransportError is returned when the request never produced a usable response:
// connection failures, timeouts, or a body that could not be read.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return "transport error"
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request was cut short by a deadline.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}
