package sms

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"storehub/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newConfig(url string) *config.Config {
	return &config.Config{SMS: &config.SMSConfig{
		Enabled:  true,
		APIURL:   url,
		APIKey:   "secret-key",
		SenderID: "StoreHub",
	}}
}

func TestHTTPTransport_Send(t *testing.T) {
	var got sendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transport := NewHTTPTransport(newConfig(server.URL), discardLogger())
	require.True(t, transport.Configured())
	require.NoError(t, transport.Send(context.Background(), "+966512345678", "Your code is 123456"))

	assert.Equal(t, sendRequest{To: "+966512345678", From: "StoreHub", Text: "Your code is 123456"}, got)
}

func TestHTTPTransport_NonSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	transport := NewHTTPTransport(newConfig(server.URL), discardLogger())
	err := transport.Send(context.Background(), "+966512345678", "hi")
	assert.ErrorContains(t, err, "502")
}

func TestHTTPTransport_Unconfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{name: "no section", cfg: &config.Config{}},
		{name: "disabled", cfg: &config.Config{SMS: &config.SMSConfig{APIURL: "http://x", APIKey: "k"}}},
		{name: "missing url", cfg: &config.Config{SMS: &config.SMSConfig{Enabled: true, APIKey: "k"}}},
		{name: "missing key", cfg: &config.Config{SMS: &config.SMSConfig{Enabled: true, APIURL: "http://x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := NewHTTPTransport(tt.cfg, discardLogger())
			assert.False(t, transport.Configured())
			assert.ErrorIs(t, transport.Send(context.Background(), "+966512345678", "hi"), ErrNotConfigured)
		})
	}
}
