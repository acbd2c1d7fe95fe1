package agent

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks request validation failures: malformed or
// out-of-range fields rejected before any external call is made. Callers
// match it with errors.Is and translate it to a 400-class response.
var ErrInvalidInput = errors.New("invalid input")

// UpstreamError wraps a failure from an external service (embedding,
// retrieval, or generation). It is never silently substituted with fabricated
// data; callers translate it to a 502-class response.
type UpstreamError struct {
	// Stage names the pipeline stage that failed (e.g. "retrieval", "generation").
	Stage string
	// Err is the underlying failure.
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("agent: %s failed: %v", e.Stage, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsUpstream reports whether err is (or wraps) an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
