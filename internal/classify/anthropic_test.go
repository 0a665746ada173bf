package classify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plateworks/menuscan/internal/config"
	"github.com/plateworks/menuscan/pkg/anthropic"
)

// mockAnthropicClient returns canned replies.
type mockAnthropicClient struct {
	reply string
	err   error
	calls int
}

func (m *mockAnthropicClient) CreateMessage(_ context.Context, _ anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: m.reply}},
	}, nil
}

func testCfg() config.AnthropicConfig {
	return config.AnthropicConfig{Model: "claude-haiku-4-5-20251001", TimeoutSecs: 5, MaxTokens: 1024}
}

func TestAnthropicClassifyPage_ParsesSloppyReply(t *testing.T) {
	client := &mockAnthropicClient{reply: `Sure! Here is my verdict: {is_menu: true, confidence: 80,}`}
	c := NewAnthropicClassifier(client, testCfg())

	v, err := c.ClassifyPage(context.Background(), "Pizza $10.00 Pasta $12.00", "https://x.test/menu")

	require.NoError(t, err)
	assert.True(t, v.IsMenu)
	assert.Equal(t, 80, v.Confidence)
}

func TestAnthropicClassifyPage_UnavailableOnAPIError(t *testing.T) {
	client := &mockAnthropicClient{err: assert.AnError}
	c := NewAnthropicClassifier(client, testCfg())

	_, err := c.ClassifyPage(context.Background(), "text", "https://x.test")

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestAnthropicClassifyPage_ClampsConfidence(t *testing.T) {
	client := &mockAnthropicClient{reply: `{"is_menu": true, "confidence": 250}`}
	c := NewAnthropicClassifier(client, testCfg())

	v, err := c.ClassifyPage(context.Background(), "text", "https://x.test")

	require.NoError(t, err)
	assert.Equal(t, 100, v.Confidence)
}

func TestAnthropicFindMenuLinks_ResolvesRelativeURLs(t *testing.T) {
	client := &mockAnthropicClient{reply: `{"menu_urls": [
{"url": "/menu", "confidence": 85, "reason": "nav link", "type": "direct"},
{"url": "https://cdn.x.test/dinner.pdf", "confidence": 70, "type": "pdf"},
{"url": "/weird", "confidence": 30, "type": "something-else"}
]}`}
	c := NewAnthropicClassifier(client, testCfg())

	html := `<html><body><a href="/menu">Menu</a></body></html>`
	links, err := c.FindMenuLinks(context.Background(), html, "https://x.test/")

	require.NoError(t, err)
	require.Len(t, links, 3)
	assert.Equal(t, "https://x.test/menu", links[0].URL)
	assert.Equal(t, LinkPDF, links[1].Type)
	// Unknown types default to direct.
	assert.Equal(t, LinkDirect, links[2].Type)
	// Sorted by confidence.
	assert.Equal(t, 85, links[0].Confidence)
	assert.Equal(t, 30, links[2].Confidence)
}

func TestAnthropicFindMenuLinks_NoAnchors(t *testing.T) {
	client := &mockAnthropicClient{reply: `{"menu_urls": []}`}
	c := NewAnthropicClassifier(client, testCfg())

	links, err := c.FindMenuLinks(context.Background(), "<html><body></body></html>", "https://x.test")

	require.NoError(t, err)
	assert.Empty(t, links)
	assert.Zero(t, client.calls)
}
