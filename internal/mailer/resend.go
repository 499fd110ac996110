// Package mailer sends notification email through the Resend API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/musicweb/listing-scout/internal/listing"
)

// ResendConfig holds credentials and addressing for the Resend client.
type ResendConfig struct {
	APIKey   string
	Endpoint string
	From     string
	Timeout  time.Duration
}

// Resend implements listing.Mailer against the Resend REST API.
type Resend struct {
	cfg    ResendConfig
	client *http.Client
}

// NewResend builds a Resend mailer.
func NewResend(cfg ResendConfig) *Resend {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.resend.com/emails"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Resend{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Configured reports whether an API key is present.
func (m *Resend) Configured() bool {
	return m.cfg.APIKey != ""
}

type resendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Send posts one email. Non-2xx responses surface as a NotificationError.
func (m *Resend) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	if !m.Configured() {
		return &listing.NotificationError{Err: listing.ErrMailerNotConfigured}
	}

	payload, err := json.Marshal(resendPayload{
		From:    m.cfg.From,
		To:      to,
		Subject: subject,
		HTML:    htmlBody,
	})
	if err != nil {
		return &listing.NotificationError{Err: fmt.Errorf("marshal payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return &listing.NotificationError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return &listing.NotificationError{Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &listing.NotificationError{
			Err: fmt.Errorf("resend returned status %d: %s", resp.StatusCode, snippet),
		}
	}
	return nil
}
