package knowledge

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/grsix/outreach/pkg/ai"
	"github.com/grsix/outreach/pkg/logger"
	"github.com/grsix/outreach/pkg/store"
)

// Knowledge base source types.
const (
	SourceManual  = "manual"
	SourceWebsite = "website"
)

// ErrMissingFields is returned when a save request lacks a company name or
// content.
var ErrMissingFields = errors.New("knowledge: company name and content are required")

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Service manages company knowledge bases: uploaded documents, scraped
// websites and AI-refined revisions.
type Service struct {
	store     *store.Store
	scraper   *Scraper
	generator *ai.Generator
	logger    logger.Logger
}

// New creates a knowledge base service. generator may be nil if AI
// refinement is disabled.
func New(st *store.Store, scraper *Scraper, generator *ai.Generator, log logger.Logger) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{store: st, scraper: scraper, generator: generator, logger: log}
}

// SanitizeCompanyName normalizes a display name into a stable KB key.
func SanitizeCompanyName(name string) string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

// SaveManual stores uploaded or pasted content under the company's key.
func (s *Service) SaveManual(ctx context.Context, companyName, content string) (int64, error) {
	return s.save(ctx, companyName, SourceManual, content)
}

// SaveGenerated stores AI-produced content under the company's key.
func (s *Service) SaveGenerated(ctx context.Context, companyName, content string) (int64, error) {
	return s.save(ctx, companyName, SourceWebsite, content)
}

// SaveFromURL scrapes the company website and stores its readable text as the
// knowledge base. The extracted content is returned for preview.
func (s *Service) SaveFromURL(ctx context.Context, companyName, website string) (int64, string, error) {
	if companyName == "" || website == "" {
		return 0, "", ErrMissingFields
	}

	content, err := s.scraper.ExtractWebsiteText(ctx, website)
	if err != nil {
		return 0, "", err
	}

	id, err := s.save(ctx, companyName, SourceWebsite, content)
	if err != nil {
		return 0, "", err
	}
	return id, content, nil
}

func (s *Service) save(ctx context.Context, companyName, sourceType, content string) (int64, error) {
	if companyName == "" || content == "" {
		return 0, ErrMissingFields
	}

	name := SanitizeCompanyName(companyName)
	id, err := s.store.SaveKnowledgeBase(ctx, store.KnowledgeBase{
		Name:       name,
		SourceType: sourceType,
		Content:    content,
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("knowledge base saved", "name", name, "source", sourceType, "bytes", len(content))
	return id, nil
}

// List returns all knowledge bases.
func (s *Service) List(ctx context.Context) ([]store.KnowledgeBase, error) {
	return s.store.ListKnowledgeBases(ctx)
}

// Get loads a knowledge base by id.
func (s *Service) Get(ctx context.Context, id int64) (*store.KnowledgeBase, error) {
	return s.store.GetKnowledgeBase(ctx, id)
}

// GetByName loads a knowledge base by its company key.
func (s *Service) GetByName(ctx context.Context, companyName string) (*store.KnowledgeBase, error) {
	return s.store.GetKnowledgeBaseByName(ctx, SanitizeCompanyName(companyName))
}

// UpdateContent replaces a knowledge base's content.
func (s *Service) UpdateContent(ctx context.Context, companyName, content string) error {
	if content == "" {
		return ErrMissingFields
	}
	return s.store.UpdateKnowledgeBaseContent(ctx, SanitizeCompanyName(companyName), content)
}

// Improve rewrites a knowledge base with the given instruction and persists
// the revision. The new content is returned.
func (s *Service) Improve(ctx context.Context, companyName, instruction string) (string, error) {
	kb, err := s.GetByName(ctx, companyName)
	if err != nil {
		return "", err
	}

	improved, err := s.generator.ImproveKnowledgeBase(ctx, kb.Content, instruction)
	if err != nil {
		return "", err
	}

	if err := s.store.UpdateKnowledgeBaseContent(ctx, kb.Name, improved); err != nil {
		return "", err
	}

	s.logger.Info("knowledge base improved", "name", kb.Name)
	return improved, nil
}
