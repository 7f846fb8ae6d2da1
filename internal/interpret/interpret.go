// Package interpret is the two-stage interpretation pipeline: intent
// classification (which catalog operation the user means) and parameter
// extraction (the operation's arguments). Both stages delegate language
// understanding to the model gateway and degrade to zero-confidence
// results when it is unavailable, so a turn never crashes on upstream
// failure.
package interpret

// Stage-1 actions that are not catalog operations.
const (
	ActionNone    = "none"
	ActionClarify = "clarify"
)

// ClassificationResult is the Stage-1 output.
type ClassificationResult struct {
	Action     string  `json:"action"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`

	UsedFallback   bool   `json:"-"`
	FallbackReason string `json:"-"`
}

// ExtractionResult is the Stage-2 output. Parameters carries the merge
// of previously collected and newly extracted values. MissingRequired
// is recomputed deterministically from the tool spec, never trusted
// from the model.
type ExtractionResult struct {
	Parameters      map[string]any `json:"parameters"`
	Confidence      float64        `json:"confidence"`
	MissingRequired []string       `json:"missing_required"`

	UsedFallback   bool   `json:"-"`
	FallbackReason string `json:"-"`
}

// Exchange is one past turn kept as bounded conversation context for
// reference resolution ("do that again").
type Exchange struct {
	UserText string
	Outcome  string
}

func clampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
