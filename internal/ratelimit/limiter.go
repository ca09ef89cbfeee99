/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

// Package ratelimit implements the per-endpoint HTTP rate limiter
// (spec.md §6): a fixed-window counter in the Ephemeral KV, keyed by
// endpoint and caller IP. Grounded on the same Redis counter pattern
// internal/kv documents from sonastea-WizardWarriors/pkg/hub/hub.go
// (atomic increment + first-write TTL).
package ratelimit

import (
	"context"

	"github.com/Seednode/geoduel/internal/apierr"
	"github.com/Seednode/geoduel/internal/config"
	"github.com/Seednode/geoduel/internal/kv"
)

// Limiter enforces cfg.LobbyRateLimit requests per cfg.LobbyRateLimitWindow
// per (endpoint, ip) pair (spec.md §6's "10/min" limits on lobby
// create/join).
type Limiter struct {
	cfg *config.Config
	kv  kv.Store
}

func New(cfg *config.Config, kvStore kv.Store) *Limiter {
	return &Limiter{cfg: cfg, kv: kvStore}
}

// Allow increments the counter for (endpoint, ip) and returns
// apierr.RateLimited once the window's budget is exhausted.
func (l *Limiter) Allow(ctx context.Context, endpoint, ip string) error {
	count, err := l.kv.Incr(ctx, kv.RateLimitKey(endpoint, ip), l.cfg.LobbyRateLimitWindow)
	if err != nil {
		return apierr.Transient("rate limiter unavailable: " + err.Error())
	}
	if count > int64(l.cfg.LobbyRateLimit) {
		return apierr.RateLimited("rate limit exceeded for " + endpoint)
	}
	return nil
}
