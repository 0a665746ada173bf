package lenientjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type verdict struct {
	IsMenu     bool   `json:"is_menu"`
	Confidence int    `json:"confidence"`
	Reason     string `json:"reason"`
}

func TestParse_StrictJSON(t *testing.T) {
	var v verdict
	err := Parse(`{"is_menu": true, "confidence": 90, "reason": "prices everywhere"}`, &v)

	require.NoError(t, err)
	assert.True(t, v.IsMenu)
	assert.Equal(t, 90, v.Confidence)
}

func TestParse_MarkdownFence(t *testing.T) {
	var v verdict
	err := Parse("```json\n{\"is_menu\": false, \"confidence\": 20}\n```", &v)

	require.NoError(t, err)
	assert.False(t, v.IsMenu)
	assert.Equal(t, 20, v.Confidence)
}

func TestParse_ProseWrappedWithBareKeysAndTrailingComma(t *testing.T) {
	var v verdict
	err := Parse(`Sure! Here is my verdict: {is_menu: true, confidence: 80,}`, &v)

	require.NoError(t, err)
	assert.True(t, v.IsMenu)
	assert.Equal(t, 80, v.Confidence)
}

func TestParse_TruncatedObject(t *testing.T) {
	var parsed struct {
		MenuURLs []struct {
			URL        string `json:"url"`
			Confidence int    `json:"confidence"`
		} `json:"menu_urls"`
	}
	text := `{"menu_urls": [{"url": "https://x.test/menu", "confidence": 85}, {"url": "https://x.test/din`

	err := Parse(text, &parsed)

	require.NoError(t, err)
	require.NotEmpty(t, parsed.MenuURLs)
	assert.Equal(t, "https://x.test/menu", parsed.MenuURLs[0].URL)
}

func TestParse_ControlCharsInStrings(t *testing.T) {
	var v verdict
	err := Parse("{\"is_menu\": true, \"confidence\": 70, \"reason\": \"line one\nline two\"}", &v)

	require.NoError(t, err)
	assert.Contains(t, v.Reason, "line one")
}

func TestParse_Unrecoverable(t *testing.T) {
	var v verdict
	assert.Error(t, Parse("I could not determine anything about this page.", &v))
}

func TestClean_IsolatesObjectFromProse(t *testing.T) {
	out := Clean(`The answer is {"a": 1} as requested.`)
	assert.Equal(t, `{"a": 1}`, out)
}

func TestClean_ArrayBeforeObject(t *testing.T) {
	out := Clean(`[{"a": 1}, {"b": 2}]`)
	assert.Equal(t, `[{"a": 1}, {"b": 2}]`, out)
}
