package email

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/grsix/outreach/pkg/ai"
	"github.com/grsix/outreach/pkg/knowledge"
	"github.com/grsix/outreach/pkg/store"
)

const previewLen = 50

// Service generates and delivers cold outreach emails and keeps the email
// lead log.
type Service struct {
	store       *store.Store
	scraper     *knowledge.Scraper
	generator   *ai.Generator
	fromEmail   string
	fromName    string
	sendGridKey string
	useSendGrid bool
	logger      *log.Logger
}

// NewService creates an email service.
// If sendGridAPIKey is provided, emails will be sent via SendGrid.
// Otherwise, emails will be logged to console (development mode).
func NewService(st *store.Store, scraper *knowledge.Scraper, generator *ai.Generator, fromEmail, fromName, sendGridAPIKey string, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}

	useSendGrid := sendGridAPIKey != ""
	if useSendGrid {
		logger.Printf("✅ Email service initialized with SendGrid")
	} else {
		logger.Printf("⚠️  Email service in console-only mode (set SENDGRID_API_KEY for production)")
	}

	return &Service{
		store:       st,
		scraper:     scraper,
		generator:   generator,
		fromEmail:   fromEmail,
		fromName:    fromName,
		sendGridKey: sendGridAPIKey,
		useSendGrid: useSendGrid,
		logger:      logger,
	}
}

// GenerateColdEmail scrapes the prospect's website and writes a personalized
// cold email body from its content.
func (s *Service) GenerateColdEmail(ctx context.Context, websiteURL string) (string, error) {
	text, err := s.scraper.ExtractWebsiteText(ctx, websiteURL)
	if err != nil {
		return "", err
	}
	return s.generator.GenerateColdEmail(ctx, text)
}

// SendColdEmail generates a cold email for the website, delivers it and
// records the lead. The stored lead is returned.
func (s *Service) SendColdEmail(ctx context.Context, websiteURL, to string) (*store.EmailLead, error) {
	body, err := s.GenerateColdEmail(ctx, websiteURL)
	if err != nil {
		return nil, err
	}

	subject := fmt.Sprintf("Boost %s with Smart AI Follow-Ups", BrandFromURL(websiteURL))

	if err := s.SendRawEmail(to, "", subject, body); err != nil {
		return nil, err
	}

	lead := store.EmailLead{
		Email:          to,
		Subject:        subject,
		Preview:        preview(body),
		Content:        body,
		Category:       "MEDIUM",
		FollowUpStatus: "pending",
		Time:           time.Now().UTC().Format(time.RFC3339),
	}
	id, err := s.store.SaveEmailLead(ctx, lead)
	if err != nil {
		return nil, err
	}
	lead.ID = id

	s.logger.Printf("✅ Cold email sent to %s", to)
	return &lead, nil
}

// SaveLead records an externally composed email lead.
func (s *Service) SaveLead(ctx context.Context, lead store.EmailLead) (int64, error) {
	if lead.Time == "" {
		lead.Time = time.Now().UTC().Format(time.RFC3339)
	}
	return s.store.SaveEmailLead(ctx, lead)
}

// ListLeads returns all recorded email leads.
func (s *Service) ListLeads(ctx context.Context) ([]store.EmailLead, error) {
	return s.store.ListEmailLeads(ctx)
}

// DeleteLead removes an email lead.
func (s *Service) DeleteLead(ctx context.Context, id int64) error {
	return s.store.DeleteEmailLead(ctx, id)
}

// SendRawEmail sends an email with custom subject and plain-text body.
// Uses SendGrid in production, logs to console in development.
func (s *Service) SendRawEmail(toEmail, toName, subject, body string) error {
	if s.useSendGrid {
		return s.sendViaSendGrid(toEmail, toName, subject, body)
	}

	s.logger.Printf("📧 [EMAIL] %s", subject)
	s.logger.Printf("   To: %s <%s>", toName, toEmail)
	s.logger.Printf("   From: %s <%s>", s.fromName, s.fromEmail)
	s.logger.Printf("   ⚠️  Email NOT sent (development mode)")
	return nil
}

// sendViaSendGrid sends email using the SendGrid API
func (s *Service) sendViaSendGrid(toEmail, toName, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)

	message := mail.NewSingleEmail(from, subject, to, body, "")

	client := sendgrid.NewSendClient(s.sendGridKey)
	response, err := client.Send(message)
	if err != nil {
		s.logger.Printf("❌ SendGrid error: %v", err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	if response.StatusCode >= 400 {
		s.logger.Printf("❌ SendGrid returned error status %d: %s", response.StatusCode, response.Body)
		return fmt.Errorf("sendgrid returned error status: %d", response.StatusCode)
	}

	s.logger.Printf("✅ Email sent successfully to %s (SendGrid status: %d)", toEmail, response.StatusCode)
	return nil
}

// BrandFromURL derives a display brand from a website URL: the first host
// label, upper-cased, with any www. prefix dropped.
func BrandFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "YOUR BRAND"
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	if i := strings.IndexByte(host, '.'); i > 0 {
		host = host[:i]
	}
	return strings.ToUpper(host)
}

func preview(body string) string {
	if len(body) <= previewLen {
		return body
	}
	return body[:previewLen]
}
