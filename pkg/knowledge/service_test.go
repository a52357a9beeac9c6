package knowledge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grsix/outreach/pkg/ai"
	"github.com/grsix/outreach/pkg/ai/llm"
	"github.com/grsix/outreach/pkg/store"
)

// echoCompleter is a fake completion service for testing
type echoCompleter struct {
	reply string
}

func (e *echoCompleter) Chat(ctx context.Context, msgs []llm.ChatMessage) (string, error) {
	return e.reply, nil
}

func newTestService(t *testing.T, completer ai.Completer) (*Service, *store.Store) {
	t.Helper()

	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	var generator *ai.Generator
	if completer != nil {
		generator = ai.NewGenerator(completer)
	}
	return New(st, NewScraper(nil), generator, nil), st
}

func TestSanitizeCompanyName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Acme Realty", "acme-realty"},
		{"  GRSIX AI!  ", "grsix-ai"},
		{"one--two", "one-two"},
		{"-edge-", "edge"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeCompanyName(tt.input))
	}
}

func TestSaveManualAndGetByName(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	id, err := svc.SaveManual(ctx, "Acme Realty", "Acme sells premium flats in Pune.")
	require.NoError(t, err)
	assert.Positive(t, id)

	kb, err := svc.GetByName(ctx, "Acme Realty")
	require.NoError(t, err)
	assert.Equal(t, "acme-realty", kb.Name)
	assert.Equal(t, SourceManual, kb.SourceType)
	assert.Equal(t, "Acme sells premium flats in Pune.", kb.Content)
}

func TestSaveValidation(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.SaveManual(ctx, "", "content")
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.SaveManual(ctx, "Acme", "")
	assert.ErrorIs(t, err, ErrMissingFields)

	_, _, err = svc.SaveFromURL(ctx, "Acme", "")
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestUpdateContent(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.SaveManual(ctx, "Acme", "old content")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateContent(ctx, "Acme", "new content"))

	kb, err := svc.GetByName(ctx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, "new content", kb.Content)
}

func TestImprove(t *testing.T) {
	svc, _ := newTestService(t, &echoCompleter{reply: "Acme sells flats. Now with clearer pricing."})
	ctx := context.Background()

	_, err := svc.SaveManual(ctx, "Acme", "Acme sells flats.")
	require.NoError(t, err)

	improved, err := svc.Improve(ctx, "Acme", "add pricing details")
	require.NoError(t, err)
	assert.Equal(t, "Acme sells flats. Now with clearer pricing.", improved)

	kb, err := svc.GetByName(ctx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, improved, kb.Content, "revision is persisted")
}

func TestImproveUnknownCompany(t *testing.T) {
	svc, _ := newTestService(t, &echoCompleter{reply: "anything"})

	_, err := svc.Improve(context.Background(), "Nobody", "rewrite")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
