package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverJSON_DirectParse(t *testing.T) {
	got := RecoverJSON(`{"name": "Acme", "category": "Drone Services"}`)
	assert.Equal(t, "Acme", got["name"])
	assert.Equal(t, "Drone Services", got["category"])
}

func TestRecoverJSON_CodeFence(t *testing.T) {
	got := RecoverJSON("```json\n{\"name\": \"Acme\"}\n```")
	assert.Equal(t, "Acme", got["name"])
}

func TestRecoverJSON_BareFence(t *testing.T) {
	got := RecoverJSON("```\n{\"name\": \"Acme\"}\n```")
	assert.Equal(t, "Acme", got["name"])
}

func TestRecoverJSON_EmbeddedInCommentary(t *testing.T) {
	// Well-formed JSON inside commentary parses identically to the JSON alone.
	embedded := `Sure! Here is the extracted data:

{"name": "SkyHawk", "emails": ["a@x.com"]}

Let me know if you need anything else.`

	var direct map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"name": "SkyHawk", "emails": ["a@x.com"]}`), &direct))

	assert.Equal(t, direct, RecoverJSON(embedded))
}

func TestRecoverJSON_RepairsTrailingComma(t *testing.T) {
	got := RecoverJSON(`{"name": "Acme", "category": "Drone Parts",}`)
	assert.Equal(t, "Acme", got["name"])
	assert.Equal(t, "Drone Parts", got["category"])
}

func TestRecoverJSON_FallbackRawText(t *testing.T) {
	for _, input := range []string{
		"no json here at all",
		"",
		"{{{{",
	} {
		got := RecoverJSON(input)
		require.Len(t, got, 1, "input %q", input)
		assert.Equal(t, input, got[RawTextKey])
	}
}

func TestJSONSpan(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain object", `{"a": 1}`, `{"a": 1}`},
		{"leading text", `noise {"a": 1} trailing`, `{"a": 1}`},
		{"greedy to last brace", `{"a": {"b": 2}} extra`, `{"a": {"b": 2}}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"no braces", "nothing", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, jsonSpan(tt.input))
		})
	}
}
