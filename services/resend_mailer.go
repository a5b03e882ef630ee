package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const DefaultResendBaseURL = "https://api.resend.com"

// Email is one outbound message. From falls back to the mailer's configured sender.
type Email struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
	ReplyTo string
}

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, email Email) (string, error)
}

type ResendConfig struct {
	APIKey    string
	FromEmail string
	BaseURL   string
	Timeout   time.Duration
}

// resendEmailRequest represents the request payload for Resend API
type resendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type resendEmailResponse struct {
	ID string `json:"id"`
}

type resendErrorResponse struct {
	Message string `json:"message"`
}

// ResendMailer sends email through the Resend HTTP API.
type ResendMailer struct {
	cfg    ResendConfig
	client *http.Client
	logger zerolog.Logger
}

// NewResendMailer returns a mailer for cfg. A nil client gets one bounded by cfg.Timeout.
func NewResendMailer(cfg ResendConfig, client *http.Client) (*ResendMailer, error) {
	if cfg.APIKey == "" {
		return nil, eris.New("resend API key is required")
	}
	if cfg.FromEmail == "" {
		return nil, eris.New("resend sender address is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultResendBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &ResendMailer{
		cfg:    cfg,
		client: client,
		logger: log.With().Str("service", "resend").Logger(),
	}, nil
}

// Send posts email to Resend and returns the provider's message id.
func (m *ResendMailer) Send(ctx context.Context, email Email) (string, error) {
	if len(email.To) == 0 {
		return "", eris.New("at least one recipient is required")
	}
	from := email.From
	if from == "" {
		from = m.cfg.FromEmail
	}

	jsonPayload, err := json.Marshal(resendEmailRequest{
		From:    from,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		ReplyTo: email.ReplyTo,
	})
	if err != nil {
		return "", eris.Wrap(err, "failed to marshal email payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.BaseURL+"/emails", bytes.NewReader(jsonPayload))
	if err != nil {
		return "", eris.Wrap(err, "failed to create Resend API request")
	}
	req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "failed to send request to Resend API")
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", eris.Wrap(err, "failed to read Resend API response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errorResp resendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil && errorResp.Message != "" {
			return "", fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, errorResp.Message)
		}
		return "", fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var emailResponse resendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
		return "", nil
	}
	m.logger.Info().Str("emailId", emailResponse.ID).Msg("Successfully sent email via Resend")
	return emailResponse.ID, nil
}
