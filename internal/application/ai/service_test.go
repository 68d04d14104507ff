package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		want  string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[1,2]\n```", `[1,2]`},
		{"prose around", "Sure! Here it is: {\"a\":{\"b\":2}} Enjoy.", `{"a":{"b":2}}`},
		{"array", "result: [\"x\"]", `["x"]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := extractJSON(tc.reply)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractJSONFailures(t *testing.T) {
	_, err := extractJSON("I cannot help with that.")
	assert.Error(t, err)

	_, err = extractJSON("} broken {")
	assert.Error(t, err)
}

func TestDecodeReply(t *testing.T) {
	var v struct {
		Items []string `json:"items"`
	}
	require.NoError(t, decodeReply("```json\n{\"items\":[\"milk\"]}\n```", &v))
	assert.Equal(t, []string{"milk"}, v.Items)

	assert.Error(t, decodeReply(`{"items": [}`, &v))
}

func TestCleanLines(t *testing.T) {
	assert.Equal(t, []string{"1 egg", "2 cups flour"}, cleanLines([]string{" 1 egg ", "", "  ", "2 cups flour"}))
}
