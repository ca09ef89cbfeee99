/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

// Package disconnect implements the Disconnect/Reconnect Supervisor
// (spec.md §4.4): a cancellable grace-window kick task per (lobby, user),
// backed by a disconnect mark in the Ephemeral KV so the mark survives a
// process restart for its TTL. Grounded on the teacher's celebrity.go
// reaper (scheduleRemoval: sleep, then re-check liveness under lock before
// mutating state), generalized into a cancellable timer since spec.md §5
// requires the grace timer to be stoppable on reconnect rather than a bare
// time.Sleep the teacher uses for its own (uncancellable) idle reaper.
package disconnect

import (
	"context"
	"sync"
	"time"

	"github.com/Seednode/geoduel/internal/config"
	"github.com/Seednode/geoduel/internal/engine"
	"github.com/Seednode/geoduel/internal/kv"
	"github.com/Seednode/geoduel/internal/session"
)

// Leaver is the subset of *engine.Engine the supervisor needs to finalize
// a permanent leave once the grace window elapses without a reconnect.
type Leaver interface {
	OnPlayerLeave(ctx context.Context, lobbyCode, userID string, client *session.Client)
}

type markKey struct {
	lobbyCode string
	userID    string
}

type pendingKick struct {
	stop   func()
	client *session.Client
}

// Supervisor tracks one pending kick task per disconnected (lobby, user)
// pair (spec.md §4.4).
type Supervisor struct {
	cfg      *config.Config
	kvStore  kv.Store
	registry *session.Registry
	engine   Leaver

	mu      sync.Mutex
	pending map[markKey]*pendingKick
}

func New(cfg *config.Config, kvStore kv.Store, registry *session.Registry, eng Leaver) *Supervisor {
	return &Supervisor{
		cfg:      cfg,
		kvStore:  kvStore,
		registry: registry,
		engine:   eng,
		pending:  make(map[markKey]*pendingKick),
	}
}

// OnDisconnect records a disconnect mark in the Ephemeral KV and starts a
// grace-window timer. If the timer fires without an intervening
// OnReconnect, the connection's owner is permanently removed via
// engine.OnPlayerLeave (spec.md §4.4).
func (s *Supervisor) OnDisconnect(ctx context.Context, lobbyCode, userID string, client *session.Client) {
	_ = s.kvStore.Set(ctx, kv.DisconnectKey(lobbyCode, userID), []byte("1"), kv.DisconnectMarkTTL)

	key := markKey{lobbyCode, userID}
	timer := time.AfterFunc(s.cfg.DisconnectGrace, func() {
		s.fireKick(lobbyCode, userID)
	})

	s.mu.Lock()
	if old, ok := s.pending[key]; ok {
		old.stop()
	}
	s.pending[key] = &pendingKick{stop: func() { timer.Stop() }, client: client}
	s.mu.Unlock()

	s.registry.Broadcast(lobbyCode, PlayerDisconnectedMsg{
		Type:         "player_disconnected",
		UserID:       userID,
		GraceSeconds: int(s.cfg.DisconnectGrace / time.Second),
	})

	s.cfg.Logf("DISCONNECT: %s in lobby %s entered grace window (%s)", userID, lobbyCode, s.cfg.DisconnectGrace)
}

func (s *Supervisor) fireKick(lobbyCode, userID string) {
	key := markKey{lobbyCode, userID}

	s.mu.Lock()
	kick, ok := s.pending[key]
	if ok {
		delete(s.pending, key)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	ctx := context.Background()
	_ = s.kvStore.Del(ctx, kv.DisconnectKey(lobbyCode, userID))
	s.cfg.Logf("DISCONNECT: grace window elapsed for %s in lobby %s, treating as permanent leave", userID, lobbyCode)
	s.engine.OnPlayerLeave(ctx, lobbyCode, userID, kick.client)
}

// OnReconnect cancels any pending kick for (lobbyCode, userID), atomically
// swaps in the new connection via the Session Registry, and returns a
// reconnect_success payload built from the engine's current snapshot
// (spec.md §4.4).
func (s *Supervisor) OnReconnect(ctx context.Context, lobbyCode, userID string, conn session.Conn, snap *engine.Snapshot) *ReconnectSuccessMsg {
	key := markKey{lobbyCode, userID}

	s.mu.Lock()
	if kick, ok := s.pending[key]; ok {
		kick.stop()
		delete(s.pending, key)
	}
	s.mu.Unlock()

	_ = s.kvStore.Del(ctx, kv.DisconnectKey(lobbyCode, userID))

	fresh := s.registry.ReplaceConnection(lobbyCode, userID, conn)
	if fresh == nil {
		fresh = s.registry.Attach(lobbyCode, userID, conn)
	}

	msg := &ReconnectSuccessMsg{
		Type:         "reconnect_success",
		Round:        snap.Round,
		Latitude:     snap.Latitude,
		Longitude:    snap.Longitude,
		URL:          snap.URL,
		RemainingSec: snap.RemainingSeconds,
		HP:           snap.HP,
		SoloScore:    snap.SoloScore,
		HasGuessed:   snap.HasGuessed,
		UsersGuessed: snap.UsersGuessed,
	}

	s.registry.Broadcast(lobbyCode, PlayerReconnectedMsg{Type: "player_reconnected", UserID: userID})

	return msg
}

// IsMarkedDisconnected reports whether a disconnect mark is currently live
// for (lobbyCode, userID) — used by internal/wsapi's player handler to
// route a returning player through OnReconnect instead of a plain join.
func (s *Supervisor) IsMarkedDisconnected(ctx context.Context, lobbyCode, userID string) bool {
	_, err := s.kvStore.Get(ctx, kv.DisconnectKey(lobbyCode, userID))
	return err == nil
}

// PlayerDisconnectedMsg is broadcast to the remaining participant the
// instant a connection drops (before the grace window starts counting
// down), so the UI can show "opponent disconnected" (spec.md §6).
type PlayerDisconnectedMsg struct {
	Type         string `json:"type"`
	UserID       string `json:"user_id"`
	GraceSeconds int    `json:"grace_seconds"`
}

// PlayerReconnectedMsg is broadcast to the other participant once a
// disconnected player's connection is restored.
type PlayerReconnectedMsg struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

// ReconnectSuccessMsg is sent directly to the reconnecting client only,
// carrying enough of the current round to rebuild its UI (spec.md §4.4).
type ReconnectSuccessMsg struct {
	Type         string         `json:"type"`
	Round        int            `json:"round"`
	Latitude     float64        `json:"latitude"`
	Longitude    float64        `json:"longitude"`
	URL          string         `json:"url"`
	RemainingSec int            `json:"remaining_seconds"`
	HP           map[string]int `json:"hp,omitempty"`
	SoloScore    int            `json:"solo_score,omitempty"`
	HasGuessed   bool           `json:"has_guessed"`
	UsersGuessed []string       `json:"users_guessed"`
}
