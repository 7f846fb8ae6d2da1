package llm

import (
	"errors"
	"fmt"
	"time"
)

// TimeoutError reports that the upstream model produced no response
// within the configured deadline. The underlying request is aborted.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("upstream timeout after %s", e.Timeout)
}

// UpstreamError reports a non-success response from the model service.
// Body carries the response body for diagnostics.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("upstream error (status %d): %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("upstream error: %s", e.Body)
}

// MalformedResponseError reports that the model replied but its output
// did not contain a parseable JSON object of the expected shape.
type MalformedResponseError struct {
	Output string
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed model response: %s", e.Reason)
}

// IsUpstream reports whether err is one of the gateway error kinds.
// Callers use it to decide between degraded fallback and propagation.
func IsUpstream(err error) bool {
	var te *TimeoutError
	var ue *UpstreamError
	var me *MalformedResponseError
	return errors.As(err, &te) || errors.As(err, &ue) || errors.As(err, &me)
}
