package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grsix/outreach/pkg/ai/llm"
)

// mockCompleter is a fake completion service for testing
type mockCompleter struct {
	ChatFunc func(ctx context.Context, messages []llm.ChatMessage) (string, error)
	lastMsgs []llm.ChatMessage
}

func (m *mockCompleter) Chat(ctx context.Context, messages []llm.ChatMessage) (string, error) {
	m.lastMsgs = messages
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, messages)
	}
	return "generated text", nil
}

func TestGenerateColdEmail(t *testing.T) {
	longText := strings.Repeat("Acme builds industrial robots. ", 10)

	t.Run("Success", func(t *testing.T) {
		mock := &mockCompleter{ChatFunc: func(ctx context.Context, messages []llm.ChatMessage) (string, error) {
			return "  Hi Acme Team, ...  ", nil
		}}
		g := NewGenerator(mock)

		email, err := g.GenerateColdEmail(context.Background(), longText)
		require.NoError(t, err)
		assert.Equal(t, "Hi Acme Team, ...", email)
		require.Len(t, mock.lastMsgs, 1)
		assert.Contains(t, mock.lastMsgs[0].Content, longText)
	})

	t.Run("Rejects short website text without calling the model", func(t *testing.T) {
		mock := &mockCompleter{ChatFunc: func(ctx context.Context, messages []llm.ChatMessage) (string, error) {
			t.Fatal("completion service should not be called")
			return "", nil
		}}
		g := NewGenerator(mock)

		_, err := g.GenerateColdEmail(context.Background(), "too short")
		assert.Error(t, err)
	})

	t.Run("Propagates completion errors", func(t *testing.T) {
		mock := &mockCompleter{ChatFunc: func(ctx context.Context, messages []llm.ChatMessage) (string, error) {
			return "", errors.New("rate limited")
		}}
		g := NewGenerator(mock)

		_, err := g.GenerateColdEmail(context.Background(), longText)
		assert.Error(t, err)
	})
}

func TestGenerateCallScript(t *testing.T) {
	mock := &mockCompleter{}
	g := NewGenerator(mock)

	_, err := g.GenerateCallScript(context.Background(), "Acme", "Acme sells widgets.")
	require.NoError(t, err)

	require.Len(t, mock.lastMsgs, 1)
	assert.Contains(t, mock.lastMsgs[0].Content, `calling on behalf of "Acme"`)
	assert.Contains(t, mock.lastMsgs[0].Content, "Acme sells widgets.")
}

func TestImproveKnowledgeBase(t *testing.T) {
	mock := &mockCompleter{}
	g := NewGenerator(mock)

	_, err := g.ImproveKnowledgeBase(context.Background(), "old base", "add pricing details")
	require.NoError(t, err)

	require.Len(t, mock.lastMsgs, 2)
	assert.Equal(t, "system", mock.lastMsgs[0].Role)
	assert.Contains(t, mock.lastMsgs[1].Content, "old base")
	assert.Contains(t, mock.lastMsgs[1].Content, "add pricing details")
}
