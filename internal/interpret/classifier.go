package interpret

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"stockhand/internal/catalog"
	"stockhand/internal/llm"
)

// Classifier decides which catalog operation (or none/clarify) a raw
// utterance means.
type Classifier struct {
	completer llm.Completer
	catalog   *catalog.Catalog
	opts      llm.Options
}

// NewClassifier constructs the Stage-1 classifier.
func NewClassifier(completer llm.Completer, cat *catalog.Catalog, opts llm.Options) *Classifier {
	return &Classifier{completer: completer, catalog: cat, opts: opts}
}

const classifierInstructions = `You classify inventory commands. Choose exactly one action for the user's latest message.

Available actions:
%s
Special actions:
  none - the message is not an inventory command
  clarify - it is an inventory command but you cannot tell which operation

Reply with exactly one JSON object and nothing else:
{"action": "<action>", "confidence": <0.0-1.0>, "reasoning": "<one sentence>"}`

func (c *Classifier) buildPrompt() string {
	var b strings.Builder
	for _, spec := range c.catalog.Specs() {
		fmt.Fprintf(&b, "  %s - %s\n", spec.Name, spec.Description)
	}
	return fmt.Sprintf(classifierInstructions, b.String())
}

// Classify runs Stage 1 for one utterance. Gateway failures never
// propagate: they yield a degraded clarify result with zero confidence
// and the fallback flag set.
func (c *Classifier) Classify(ctx context.Context, text string, history []Exchange) ClassificationResult {
	messages := make([]llm.Message, 0, 2*len(history)+2)
	messages = append(messages, llm.System(c.buildPrompt()))
	for _, ex := range history {
		messages = append(messages, llm.User(ex.UserText), llm.Assistant(ex.Outcome))
	}
	messages = append(messages, llm.User(text))

	result, err := llm.CompleteStructured[ClassificationResult](ctx, c.completer, messages, c.opts)
	if err != nil {
		log.Warn().Err(err).Msg("classify: upstream failure, degrading")
		return ClassificationResult{
			Action:         ActionClarify,
			Confidence:     0,
			Reasoning:      "upstream unavailable",
			UsedFallback:   true,
			FallbackReason: err.Error(),
		}
	}

	result.Action = strings.TrimSpace(result.Action)
	result.Confidence = clampConfidence(result.Confidence)

	if result.Action != ActionNone && result.Action != ActionClarify {
		if _, known := c.catalog.Lookup(result.Action); !known {
			// Hallucinated operations never reach dispatch.
			log.Warn().Str("action", result.Action).Msg("classify: unknown action from model")
			return ClassificationResult{
				Action:     ActionClarify,
				Confidence: 0,
				Reasoning:  fmt.Sprintf("model proposed unknown operation %q", result.Action),
			}
		}
	}
	return result
}
