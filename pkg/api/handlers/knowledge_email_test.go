package handlers

import (
	"bytes"
	"encoding/json"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grsix/outreach/pkg/ai"
	"github.com/grsix/outreach/pkg/email"
	"github.com/grsix/outreach/pkg/knowledge"
	"github.com/grsix/outreach/pkg/logger"
	"github.com/grsix/outreach/pkg/store"
)

func newKnowledgeEcho(t *testing.T, st *store.Store, completer *cannedCompleter) *echo.Echo {
	t.Helper()
	e := newEcho()
	svc := knowledge.New(st, knowledge.NewScraper(log.Default()), ai.NewGenerator(completer), logger.Default())
	NewKnowledgeHandler(svc, logger.Default()).Register(e.Group("/api/knowledge-base"))
	return e
}

func uploadKnowledgeBase(e *echo.Echo, companyName, content string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("companyName", companyName)
	fw, _ := w.CreateFormFile("file", "kb.txt")
	_, _ = fw.Write([]byte(content))
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/knowledge-base/upload", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestKnowledgeBaseUploadAndFetch(t *testing.T) {
	st := newTestStore(t)
	e := newKnowledgeEcho(t, st, &cannedCompleter{reply: "improved"})

	rec := uploadKnowledgeBase(e, "Acme_Corp!", "Acme builds anvils.")
	require.Equal(t, http.StatusOK, rec.Code)

	// The company name is sanitized into the lookup key.
	rec = doJSON(e, http.MethodGet, "/api/knowledge-base/Acme_Corp!", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var kb store.KnowledgeBase
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &kb))
	assert.Equal(t, "acme-corp", kb.Name)
	assert.Equal(t, "Acme builds anvils.", kb.Content)

	// Update the content in place.
	rec = doJSON(e, http.MethodPost, "/api/knowledge-base/acme-corp", map[string]any{
		"content": "Acme builds anvils and rockets.",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/knowledge-base/acme-corp", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &kb))
	assert.Contains(t, kb.Content, "rockets")
}

func TestKnowledgeBaseImprove(t *testing.T) {
	st := newTestStore(t)
	e := newKnowledgeEcho(t, st, &cannedCompleter{reply: "the improved knowledge base"})

	rec := uploadKnowledgeBase(e, "acme", "Original content.")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/knowledge-base/acme/improve", map[string]any{
		"instruction": "mention pricing",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "the improved knowledge base")

	// The revision is persisted.
	var kb store.KnowledgeBase
	rec = doJSON(e, http.MethodGet, "/api/knowledge-base/acme", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &kb))
	assert.Equal(t, "the improved knowledge base", kb.Content)
}

func TestKnowledgeBaseNotFound(t *testing.T) {
	st := newTestStore(t)
	e := newKnowledgeEcho(t, st, &cannedCompleter{reply: "x"})

	rec := doJSON(e, http.MethodGet, "/api/knowledge-base/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/knowledge-base/ghost/improve", map[string]any{
		"instruction": "anything",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmailLeadRoutes(t *testing.T) {
	st := newTestStore(t)
	svc := email.NewService(st, knowledge.NewScraper(log.Default()), ai.NewGenerator(&cannedCompleter{reply: "x"}),
		"from@grsix.ai", "GRSIX AI", "", log.Default())

	e := newEcho()
	NewEmailHandler(svc, logger.Default()).Register(e.Group("/api"))

	rec := doJSON(e, http.MethodPost, "/api/leads/email", map[string]any{
		"email":   "prospect@example.com",
		"subject": "Boost ACME with Smart AI Follow-Ups",
		"content": "Hi team, quick note about follow-ups.",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var saved struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	require.NotZero(t, saved.ID)

	rec = doJSON(e, http.MethodGet, "/api/leads/email", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var leads []store.EmailLead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &leads))
	require.Len(t, leads, 1)
	assert.Equal(t, "prospect@example.com", leads[0].Email)
	assert.NotEmpty(t, leads[0].Time)

	rec = doJSON(e, http.MethodDelete, "/api/leads/email/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/leads/email", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &leads))
	assert.Empty(t, leads)
}

func TestSendEmailValidation(t *testing.T) {
	st := newTestStore(t)
	svc := email.NewService(st, knowledge.NewScraper(log.Default()), ai.NewGenerator(&cannedCompleter{reply: "x"}),
		"from@grsix.ai", "GRSIX AI", "", log.Default())

	e := newEcho()
	NewEmailHandler(svc, logger.Default()).Register(e.Group("/api"))

	rec := doJSON(e, http.MethodPost, "/api/send-email", map[string]any{
		"url": "https://example.com",
		"to":  "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
