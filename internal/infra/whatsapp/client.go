// Package whatsapp sends documents through a WhatsApp Business style HTTP API.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"storehub/config"
	"storehub/internal/domain/service"

	"github.com/pkg/errors"
)

const defaultTimeout = 30 * time.Second

var phonePattern = regexp.MustCompile(`^\+[0-9]{10,15}$`)

type documentPayload struct {
	Filename string `json:"filename"`
	Caption  string `json:"caption"`
	Document string `json:"document"`
}

type sendRequest struct {
	MessagingProduct string          `json:"messaging_product"`
	RecipientType    string          `json:"recipient_type"`
	To               string          `json:"to"`
	Type             string          `json:"type"`
	Document         documentPayload `json:"document"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a MessagingService from the whatsapp config section.
func NewClient(cfg *config.Config, logger *slog.Logger) service.MessagingService {
	c := &client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
	if cfg.WhatsApp != nil {
		c.apiURL = cfg.WhatsApp.APIURL
		c.apiKey = cfg.WhatsApp.APIKey
		if cfg.WhatsApp.Timeout > 0 {
			c.httpClient.Timeout = cfg.WhatsApp.Timeout
		}
	}

	return c
}

// ValidPhone reports whether the number is accepted by the transport.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// SendDocument posts the document base64-encoded. Malformed numbers and a
// missing endpoint or key fail before any network I/O. A 4xx answer other than
// 408 and 429 wraps service.ErrRequestRejected.
func (c *client) SendDocument(ctx context.Context, to string, doc service.Document) (string, error) {
	if !ValidPhone(to) {
		return "", errors.Wrapf(service.ErrInvalidRecipient, "phone %q", to)
	}
	if c.apiURL == "" || c.apiKey == "" {
		return "", errors.Wrap(service.ErrTransportNotConfigured, "whatsapp")
	}

	body, err := json.Marshal(sendRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "document",
		Document: documentPayload{
			Filename: doc.Filename,
			Caption:  doc.Caption,
			Document: base64.StdEncoding.EncodeToString(doc.Content),
		},
	})
	if err != nil {
		return "", errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "whatsapp request failed")
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if rejected(resp.StatusCode) {
			return "", errors.Wrapf(service.ErrRequestRejected, "whatsapp api returned status %d: %s", resp.StatusCode, truncate(respBody, 512))
		}

		return "", errors.Errorf("whatsapp api returned status %d: %s", resp.StatusCode, truncate(respBody, 512))
	}

	var parsed sendResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil || len(parsed.Messages) == 0 {
		c.logger.WarnContext(ctx, "WhatsApp response without message id", slog.Int("status", resp.StatusCode))

		return "", nil
	}

	return parsed.Messages[0].ID, nil
}

// rejected reports client errors that will not change on resend.
func rejected(status int) bool {
	if status == http.StatusRequestTimeout || status == http.StatusTooManyRequests {
		return false
	}

	return status >= 400 && status < 500
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}

	return string(b)
}
