package interpret

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"stockhand/internal/catalog"
	"stockhand/internal/llm"
)

// Extractor pulls a chosen operation's arguments out of raw text.
type Extractor struct {
	completer llm.Completer
	opts      llm.Options
}

// NewExtractor constructs the Stage-2 extractor.
func NewExtractor(completer llm.Completer, opts llm.Options) *Extractor {
	return &Extractor{completer: completer, opts: opts}
}

const extractorInstructions = `You extract arguments for the inventory operation %q from the user's message.

Argument schema:
%s

Already known arguments (keep unless the message changes them):
%s

Reply with exactly one JSON object and nothing else. Omit arguments the message does not supply; never invent values:
{"parameters": {...}, "confidence": <0.0-1.0>}`

// modelExtraction is the raw shape the model replies with. Its
// confidence is advisory; missing-field detection is never read from it.
type modelExtraction struct {
	Parameters map[string]any `json:"parameters"`
	Confidence float64        `json:"confidence"`
}

// Extract runs Stage 2 for one utterance against spec, merging over any
// parameters collected in earlier clarification turns. Gateway failures
// degrade to zero confidence with every still-missing required field
// reported.
func (e *Extractor) Extract(ctx context.Context, text string, spec catalog.ToolSpec, collected map[string]any) ExtractionResult {
	schema, err := spec.SchemaJSON()
	if err != nil {
		// Specs are compiled at catalog construction, so this cannot
		// happen for catalog tools.
		schema = "{}"
	}

	known := "(none)"
	if len(collected) > 0 {
		if raw, err := json.Marshal(collected); err == nil {
			known = string(raw)
		}
	}

	messages := []llm.Message{
		llm.System(fmt.Sprintf(extractorInstructions, spec.Name, schema, known)),
		llm.User(text),
	}

	raw, err := llm.CompleteStructured[modelExtraction](ctx, e.completer, messages, e.opts)
	if err != nil {
		log.Warn().Err(err).Str("tool", spec.Name).Msg("extract: upstream failure, degrading")
		merged := mergeParameters(collected, nil)
		return ExtractionResult{
			Parameters:      merged,
			Confidence:      0,
			MissingRequired: missingRequired(spec, merged),
			UsedFallback:    true,
			FallbackReason:  err.Error(),
		}
	}

	merged := mergeParameters(collected, raw.Parameters)
	return ExtractionResult{
		Parameters:      merged,
		Confidence:      clampConfidence(raw.Confidence),
		MissingRequired: missingRequired(spec, merged),
	}
}

// mergeParameters overlays extracted values onto collected ones. New
// non-null values fill or overwrite; nothing already collected is ever
// dropped.
func mergeParameters(collected, extracted map[string]any) map[string]any {
	merged := make(map[string]any, len(collected)+len(extracted))
	for k, v := range collected {
		merged[k] = v
	}
	for k, v := range extracted {
		if isMissingValue(v) {
			continue
		}
		merged[k] = v
	}
	return merged
}

// missingRequired diffs the tool's required fields against parameters
// present with non-null values. Computed here deterministically because
// execution safety depends on it; the model's self-report is ignored.
func missingRequired(spec catalog.ToolSpec, params map[string]any) []string {
	var missing []string
	for _, name := range spec.RequiredFields() {
		v, ok := params[name]
		if !ok || isMissingValue(v) {
			missing = append(missing, name)
		}
	}
	return missing
}

func isMissingValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	default:
		return false
	}
}
