package redis

import (
	"log/slog"
	"testing"

	"storehub/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func TestNewClient_NotConfigured(t *testing.T) {
	client, err := NewClient(ClientParams{Lc: fxtest.NewLifecycle(t), Config: &config.Config{}, Logger: slog.Default()})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewClient_InvalidURL(t *testing.T) {
	cfg := &config.Config{Redis: &config.RedisConfig{URL: "not-a-url"}}

	_, err := NewClient(ClientParams{Lc: fxtest.NewLifecycle(t), Config: cfg, Logger: slog.Default()})
	assert.Error(t, err)
}

func TestNewClient_PingsOnStart(t *testing.T) {
	srv := miniredis.RunT(t)
	lc := fxtest.NewLifecycle(t)
	cfg := &config.Config{Redis: &config.RedisConfig{URL: "redis://" + srv.Addr()}}

	client, err := NewClient(ClientParams{Lc: lc, Config: cfg, Logger: slog.Default()})
	require.NoError(t, err)
	require.NotNil(t, client)

	lc.RequireStart()
	lc.RequireStop()
}
