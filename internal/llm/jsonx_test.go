package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		want    map[string]any
	}{
		{
			name:  "clean JSON",
			input: `{"action":"transfer_stock","confidence":0.9}`,
			want:  map[string]any{"action": "transfer_stock", "confidence": 0.9},
		},
		{
			name:  "surrounding whitespace",
			input: "   {\"action\":\"none\"}  \n",
			want:  map[string]any{"action": "none"},
		},
		{
			name:  "markdown json fence",
			input: "```json\n{\"action\":\"check_stock\"}\n```",
			want:  map[string]any{"action": "check_stock"},
		},
		{
			name:  "preamble and postamble",
			input: "Here is my answer:\n{\"action\":\"adjust_stock\"}\nHope this helps!",
			want:  map[string]any{"action": "adjust_stock"},
		},
		{
			name:  "braces inside string value",
			input: `{"reasoning":"user wrote {qty}","action":"none"}`,
			want:  map[string]any{"reasoning": "user wrote {qty}", "action": "none"},
		},
		{
			name:  "escaped quotes inside string value",
			input: `{"reasoning":"they said \"move it\"","action":"none"}`,
			want:  map[string]any{"reasoning": `they said "move it"`, "action": "none"},
		},
		{
			name:  "nested object",
			input: `{"parameters":{"quantity":10,"product_id":"widget-A"},"confidence":0.8}`,
			want: map[string]any{
				"parameters": map[string]any{"quantity": 10.0, "product_id": "widget-A"},
				"confidence": 0.8,
			},
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			input:   "  \t\n ",
			wantErr: true,
		},
		{
			name:    "plain prose",
			input:   "I could not determine what you meant.",
			wantErr: true,
		},
		{
			name:    "unquoted keys",
			input:   "{action: transfer_stock}",
			wantErr: true,
		},
		{
			name:    "unbalanced object",
			input:   `{"action":"none"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := ExtractJSON(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			var got map[string]any
			require.NoError(t, json.Unmarshal(raw, &got))
			require.Equal(t, tt.want, got)
		})
	}
}
