package knowledge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Acme</title><style>body { color: red }</style></head>
<body>
  <nav>Home About Pricing Contact and lots of other navigation words here</nav>
  <header>Acme header banner with a long marketing strapline in it today</header>
  <p>Acme builds AI-powered follow-up automation for real estate teams across India.</p>
  <p>Our platform tracks every lead and never lets a follow-up slip through the cracks.</p>
  <p>Short.</p>
  <script>console.log("this is definitely not product content at all, ever");</script>
  <footer>Copyright Acme, all rights reserved, registered office somewhere long</footer>
</body>
</html>`

func TestExtractText(t *testing.T) {
	text, err := ExtractText(strings.NewReader(samplePage))
	require.NoError(t, err)

	assert.Contains(t, text, "Acme builds AI-powered follow-up automation")
	assert.Contains(t, text, "never lets a follow-up slip")

	assert.NotContains(t, text, "navigation words")
	assert.NotContains(t, text, "header banner")
	assert.NotContains(t, text, "console.log")
	assert.NotContains(t, text, "Copyright")
	assert.NotContains(t, text, "Short.", "tiny text nodes are dropped")
}

func TestExtractWebsiteText(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(samplePage))
	}))
	t.Cleanup(server.Close)

	s := NewScraper(nil)
	text, err := s.ExtractWebsiteText(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, text, "follow-up automation")
	assert.Contains(t, gotUA, "Mozilla/5.0")
}

func TestExtractWebsiteTextTooShort(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>tiny</p></body></html>"))
	}))
	t.Cleanup(server.Close)

	s := NewScraper(nil)
	_, err := s.ExtractWebsiteText(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrContentTooShort)
}

func TestExtractWebsiteTextHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	s := NewScraper(nil)
	_, err := s.ExtractWebsiteText(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
