/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

// Package kv implements the Ephemeral KV (spec.md §2, §6): per-lobby game
// snapshots and disconnect markers with TTLs that survive a process crash
// only for the TTL, plus the leaderboard cache and rate-limit counters.
package kv

import (
	"context"
	"errors"
	"time"
)

var ErrMiss = errors.New("kv: key not found")

// Store is the minimal KV surface every component needs: string payloads
// with TTLs, and an atomic counter for rate limiting. Two implementations
// exist: Redis (production) and an in-memory map (local/dev/testing),
// mirroring the Redis-or-fake duality in sonastea-WizardWarriors'
// pkg/hub/hub.go (its cfg.IsAPIServer branch).
type Store interface {
	// Set writes value under key with the given TTL. ttl <= 0 means no
	// expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get returns ErrMiss if the key does not exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, key string) error
	// Incr atomically increments key by 1, setting ttl on first creation,
	// and returns the new value. Used by internal/ratelimit.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

const (
	GameSnapshotTTL   = 3600 * time.Second
	DisconnectMarkTTL = 180 * time.Second
	LeaderboardTTL    = 300 * time.Second
)

func GameKey(lobbyCode string) string {
	return "game:" + lobbyCode
}

func DisconnectKey(lobbyCode, userID string) string {
	return "disconnect:" + lobbyCode + ":" + userID
}

const LeaderboardKey = "leaderboard:top5"

func RateLimitKey(endpoint, ip string) string {
	return "rl:" + endpoint + ":" + ip
}
