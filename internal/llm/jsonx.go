package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON locates the first balanced {...} span in the model output
// and returns it verbatim. Models wrap JSON in markdown fences, preamble
// or trailing chatter; the scanner is string- and escape-aware so braces
// inside string values do not break the balance count.
func ExtractJSON(output string) ([]byte, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return nil, fmt.Errorf("empty output")
	}

	start := strings.IndexByte(output, '{')
	if start < 0 {
		return nil, fmt.Errorf("no JSON object in output")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(output); i++ {
		c := output[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					span := output[start : i+1]
					if !json.Valid([]byte(span)) {
						return nil, fmt.Errorf("unparseable JSON object")
					}
					return []byte(span), nil
				}
			}
		}
	}

	return nil, fmt.Errorf("unbalanced JSON object")
}
