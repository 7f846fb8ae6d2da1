// Package command holds the domain types shared across the pipeline:
// the tool call shape, execution outcome, and the error taxonomy every
// failure is mapped into before it crosses a component boundary.
package command

// ToolCall is a fully-resolved request against one catalog operation.
type ToolCall struct {
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters"`
}

// ErrorKind is the stable failure classification surfaced to callers.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation_error"
	KindNotFound      ErrorKind = "not_found"
	KindExecution     ErrorKind = "execution_failure"
	KindNothingToUndo ErrorKind = "nothing_to_undo"

	// Language-model layer kinds. Converted to degraded results inside
	// the pipeline, surfaced only in diagnostics.
	KindUpstreamTimeout   ErrorKind = "upstream_timeout"
	KindUpstreamError     ErrorKind = "upstream_error"
	KindMalformedResponse ErrorKind = "malformed_response"
)

// ExecutionResult is the outcome of one dispatched command. Message is
// always user-presentable; raw internal errors never cross here.
type ExecutionResult struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	ErrorKind ErrorKind `json:"error_kind,omitempty"`
	Message   string    `json:"message"`
}
