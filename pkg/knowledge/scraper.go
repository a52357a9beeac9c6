package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// ErrContentTooShort is returned when a page yields fewer than 30 characters
// of visible text, which almost always means a bot wall or a blank SPA shell.
var ErrContentTooShort = errors.New("knowledge: website content too short or failed to extract")

const (
	scraperUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.1 Safari/605.1.15"

	// Text nodes shorter than this are navigation crumbs, not content.
	minTextNodeLen = 40

	minContentLen = 30
)

// Chrome, headers, footers and forms carry no product facts.
var unwantedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"header":   true,
	"footer":   true,
	"nav":      true,
	"form":     true,
}

// Scraper fetches a company website and extracts its visible text for use as
// knowledge base content.
type Scraper struct {
	httpClient *http.Client
	logger     *log.Logger
}

// NewScraper creates a website scraper.
func NewScraper(logger *log.Logger) *Scraper {
	if logger == nil {
		logger = log.Default()
	}
	return &Scraper{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

// ExtractWebsiteText fetches url and returns its readable body text, one
// substantial text node per line.
func (s *Scraper) ExtractWebsiteText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", scraperUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Printf("❌ Scraper error: %v", err)
		return "", fmt.Errorf("failed to fetch website: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		s.logger.Printf("❌ Scraper error: %s returned %s", url, resp.Status)
		return "", fmt.Errorf("website returned %s", resp.Status)
	}

	text, err := ExtractText(resp.Body)
	if err != nil {
		return "", err
	}

	s.logger.Printf("🔍 Extracted text length: %d", len(text))

	if len(strings.TrimSpace(text)) < minContentLen {
		return "", ErrContentTooShort
	}
	return text, nil
}

// ExtractText walks an HTML document and collects substantial visible text
// nodes, skipping script, style and page-chrome subtrees.
func ExtractText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && unwantedTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); len(text) > minTextNodeLen {
				b.WriteString(text)
				b.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return b.String(), nil
}
