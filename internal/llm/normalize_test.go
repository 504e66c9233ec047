package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		rawFallback bool
		expected    string
	}{
		{
			name:     "single candidate text",
			raw:      `{"candidates":[{"text":"hello"}]}`,
			expected: "hello",
		},
		{
			name:     "output field wins over text",
			raw:      `{"candidates":[{"output":"first","text":"second"}]}`,
			expected: "first",
		},
		{
			name:     "candidates joined by newline and trimmed",
			raw:      `{"candidates":[{"text":"  one"},{"output":"two  "}]}`,
			expected: "one\ntwo",
		},
		{
			name:     "candidate content parts",
			raw:      `{"candidates":[{"content":{"role":"model","parts":[{"text":"Hello"},{"text":"world"}]}}]}`,
			expected: "Hello\nworld",
		},
		{
			name:     "candidate without known text field",
			raw:      `{"candidates":[{"finishReason":"SAFETY"},{"text":"kept"}]}`,
			expected: "kept",
		},
		{
			name:     "output content parts",
			raw:      `{"output":[{"content":[{"text":"a"},"b"]}]}`,
			expected: "a\nb",
		},
		{
			name:     "empty candidates falls through to output",
			raw:      `{"candidates":[],"output":[{"content":[{"text":"from output"}]}]}`,
			expected: "from output",
		},
		{
			name:     "no text uses fixed fallback",
			raw:      `{"promptFeedback":{"blockReason":"OTHER"}}`,
			expected: NoTextFallback,
		},
		{
			name:        "no text uses raw dump when permissive",
			raw:         "{ \"usage\": { \"tokens\": 3 } }",
			rawFallback: true,
			expected:    `{"usage":{"tokens":3}}`,
		},
		{
			name:     "non object body uses fallback",
			raw:      `["unexpected"]`,
			expected: NoTextFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize([]byte(tt.raw), tt.rawFallback)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalize_RawDumpIsTruncated(t *testing.T) {
	raw := `{"debug":"` + strings.Repeat("x", 3000) + `"}`

	got, err := Normalize([]byte(raw), true)

	require.NoError(t, err)
	assert.Len(t, got, RawDumpLimit)
	assert.True(t, strings.HasPrefix(got, `{"debug":"xxx`))
}

func TestNormalize_InvalidJSON(t *testing.T) {
	got, err := Normalize([]byte("<html>bad gateway</html>"), false)

	assert.Empty(t, got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse upstream response")
}
