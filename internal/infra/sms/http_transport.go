// Package sms sends text messages through an HTTP SMS gateway.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"storehub/config"
	"storehub/internal/domain/service"

	"github.com/pkg/errors"
)

const defaultTimeout = 10 * time.Second

// ErrNotConfigured is returned when the gateway is disabled or lacks credentials.
var ErrNotConfigured = errors.New("sms transport is not configured")

type sendRequest struct {
	To   string `json:"to"`
	From string `json:"from"`
	Text string `json:"text"`
}

type httpTransport struct {
	enabled    bool
	apiURL     string
	apiKey     string
	senderID   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPTransport creates an SMSTransport from the sms config section.
// A missing section yields a transport that reports itself unconfigured.
func NewHTTPTransport(cfg *config.Config, logger *slog.Logger) service.SMSTransport {
	t := &httpTransport{
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
	if cfg.SMS == nil {
		return t
	}

	t.enabled = cfg.SMS.Enabled
	t.apiURL = cfg.SMS.APIURL
	t.apiKey = cfg.SMS.APIKey
	t.senderID = cfg.SMS.SenderID
	if cfg.SMS.Timeout > 0 {
		t.httpClient.Timeout = cfg.SMS.Timeout
	}

	return t
}

func (t *httpTransport) Configured() bool {
	return t.enabled && t.apiURL != "" && t.apiKey != ""
}

// Send posts {to, from, text} with bearer authentication.
func (t *httpTransport) Send(ctx context.Context, to, text string) error {
	if !t.Configured() {
		return ErrNotConfigured
	}

	body, err := json.Marshal(sendRequest{To: to, From: t.senderID, Text: text})
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiURL, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "sms gateway request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return errors.Errorf("sms gateway returned status %d: %s", resp.StatusCode, snippet)
	}

	t.logger.DebugContext(ctx, "SMS sent", slog.Int("status", resp.StatusCode))

	return nil
}
