// Package gate maps interpretation confidence and completeness to one
// of execute, clarify, or reject. Decide is a pure function; the
// thresholds are configuration. It never routes to execute on a guess:
// low confidence or any missing required field blocks execution.
package gate

import (
	"fmt"
	"strings"

	"stockhand/internal/interpret"
)

// Routes a turn can take after interpretation.
type Route string

const (
	RouteExecute Route = "execute"
	RouteClarify Route = "clarify"
	RouteReject  Route = "reject"
)

// Thresholds are the minimum stage confidences that allow execution.
type Thresholds struct {
	Stage1 float64
	Stage2 float64
}

// DefaultThresholds returns the stock cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{Stage1: 0.7, Stage2: 0.7}
}

// Decision is the gate outcome with a human-readable reason.
type Decision struct {
	Route  Route
	Reason string
}

// Decide evaluates the routing rules in order:
//
//  1. no operation recognized -> reject
//  2. either stage degraded by upstream failure -> reject (asking the
//     user questions cannot fix an unavailable model)
//  3. stage 1 asked for clarification -> clarify
//  4. either confidence below threshold -> clarify
//  5. any missing required field -> clarify
//  6. otherwise -> execute
func Decide(t Thresholds, stage1 interpret.ClassificationResult, stage2 interpret.ExtractionResult) Decision {
	if stage1.Action == interpret.ActionNone {
		return Decision{Route: RouteReject, Reason: "no inventory operation recognized"}
	}
	if stage1.UsedFallback || stage2.UsedFallback {
		return Decision{Route: RouteReject, Reason: "language model unavailable, try again shortly"}
	}
	if stage1.Action == interpret.ActionClarify {
		reason := stage1.Reasoning
		if reason == "" {
			reason = "the request is ambiguous"
		}
		return Decision{Route: RouteClarify, Reason: reason}
	}
	if stage1.Confidence < t.Stage1 {
		return Decision{
			Route:  RouteClarify,
			Reason: fmt.Sprintf("not confident this means %s (%.2f)", stage1.Action, stage1.Confidence),
		}
	}
	if stage2.Confidence < t.Stage2 {
		return Decision{
			Route:  RouteClarify,
			Reason: fmt.Sprintf("not confident in the extracted arguments (%.2f)", stage2.Confidence),
		}
	}
	if len(stage2.MissingRequired) > 0 {
		return Decision{
			Route:  RouteClarify,
			Reason: "missing required fields: " + strings.Join(stage2.MissingRequired, ", "),
		}
	}
	return Decision{Route: RouteExecute, Reason: "confident and complete"}
}
