package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/geoduel/internal/apierr"
	"github.com/Seednode/geoduel/internal/config"
	"github.com/Seednode/geoduel/internal/kv"
)

func TestAllowWithinBudget(t *testing.T) {
	cfg := &config.Config{LobbyRateLimit: 3, LobbyRateLimitWindow: time.Minute}
	l := New(cfg, kv.NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Allow(ctx, "lobby_create", "1.2.3.4"))
	}
}

func TestAllowRejectsOverBudget(t *testing.T) {
	cfg := &config.Config{LobbyRateLimit: 2, LobbyRateLimitWindow: time.Minute}
	l := New(cfg, kv.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, l.Allow(ctx, "lobby_create", "1.2.3.4"))
	require.NoError(t, l.Allow(ctx, "lobby_create", "1.2.3.4"))

	err := l.Allow(ctx, "lobby_create", "1.2.3.4")
	require.Error(t, err)
	apiErr, ok := err.(*apierr.Error)
	require.True(t, ok)
	assert.Equal(t, apierr.KindRateLimited, apiErr.Kind)
}

func TestAllowTracksIPsIndependently(t *testing.T) {
	cfg := &config.Config{LobbyRateLimit: 1, LobbyRateLimitWindow: time.Minute}
	l := New(cfg, kv.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, l.Allow(ctx, "lobby_create", "1.1.1.1"))
	require.NoError(t, l.Allow(ctx, "lobby_create", "2.2.2.2"))
}
