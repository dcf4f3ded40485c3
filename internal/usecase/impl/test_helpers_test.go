package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"storehub/config"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{
		Auth: &config.AuthConfig{
			BcryptCost: 4,
			TwoFactor:  config.TwoFactorConfig{LegacyNullChannel: true},
		},
	}
	cfg.SecretKey.Session = "session-secret-for-tests"
	cfg.SecretKey.Challenge = "challenge-secret-for-tests"
	cfg.ApplyDefaults()

	return cfg
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// recordingHandler keeps every log record for assertions.
type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	h.records = append(h.records, r.Clone())
	h.mu.Unlock()

	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *recordingHandler) WithGroup(string) slog.Handler { return h }

// messages returns the messages logged at exactly the given level.
func (h *recordingHandler) messages(level slog.Level) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []string
	for _, r := range h.records {
		if r.Level == level {
			out = append(out, r.Message)
		}
	}

	return out
}
