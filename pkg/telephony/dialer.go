package telephony

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultAPIBase = "https://api.twilio.com"

// Config holds the Twilio credentials and the public base URL the voice
// webhooks are reachable under.
type Config struct {
	AccountSID  string
	AuthToken   string
	FromNumber  string
	WebhookBase string
}

// TwilioDialer places outbound calls through the Twilio REST API. Each call
// is pointed at the conversation webhook for its agent.
type TwilioDialer struct {
	httpClient  *http.Client
	apiBase     string
	accountSID  string
	authToken   string
	fromNumber  string
	webhookBase string
	logger      *log.Logger
}

// NewTwilioDialer creates a dialer. All config values are required.
func NewTwilioDialer(cfg Config, logger *log.Logger) (*TwilioDialer, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.FromNumber == "" || cfg.WebhookBase == "" {
		return nil, errors.New("telephony: TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN, TWILIO_PHONE_NUMBER and PUBLIC_BASE_URL are all required")
	}
	if logger == nil {
		logger = log.Default()
	}

	return &TwilioDialer{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		apiBase:     defaultAPIBase,
		accountSID:  cfg.AccountSID,
		authToken:   cfg.AuthToken,
		fromNumber:  cfg.FromNumber,
		webhookBase: strings.TrimRight(cfg.WebhookBase, "/"),
		logger:      logger,
	}, nil
}

// PlaceCall asks Twilio to dial the number and fetch call instructions from
// the agent's voice webhook. It returns the provider call SID on success.
func (d *TwilioDialer) PlaceCall(ctx context.Context, agentID int64, phoneNumber string) (string, error) {
	form := url.Values{}
	form.Set("To", phoneNumber)
	form.Set("From", d.fromNumber)
	form.Set("Url", fmt.Sprintf("%s/api/twilio/%d", d.webhookBase, agentID))
	form.Set("Method", http.MethodPost)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls.json", d.apiBase, d.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(d.accountSID, d.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.logger.Printf("❌ Failed to initiate AI call: %v", err)
		return "", fmt.Errorf("failed to place call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		d.logger.Printf("❌ Twilio rejected call to %s: %s", phoneNumber, resp.Status)
		return "", fmt.Errorf("twilio returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var call struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(body, &call); err != nil {
		return "", fmt.Errorf("failed to decode twilio response: %w", err)
	}

	d.logger.Printf("✅ Conversational AI call initiated to %s: %s", phoneNumber, call.SID)
	return call.SID, nil
}
