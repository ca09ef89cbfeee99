/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

// Package matchmaking implements the Matchmaker (spec.md §4.5): an
// XP-bounded queue drained by a periodic ticker loop, grounded on
// vimsent-L3/matchmaker/main.go's runMatchLoop/tryCreateMatch shape
// (periodic scan over a mutex-guarded queue, atomic match-and-remove,
// requeue on dispatch failure) adapted from that teacher's gRPC pairing to
// the XP-gap linear scan spec.md §4.5 specifies.
package matchmaking

import (
	"context"
	"sync"
	"time"

	"github.com/Seednode/geoduel/internal/config"
	"github.com/Seednode/geoduel/internal/session"
	"github.com/Seednode/geoduel/internal/store"
)

// LobbyCreator is the subset of *engine.Engine the matchmaker needs: the
// ability to stand up a fresh duel lobby once two players are paired.
type LobbyCreator interface {
	CreateDuelLobby(ctx context.Context, hostUserID string) (*store.Lobby, error)
}

type entry struct {
	userID string
	xp     int
	rank   string
	name   string
	conn   session.Conn
}

// Matchmaker holds the queue of players awaiting a duel opponent
// (spec.md §4.5). All queue mutation is serialized through mu; this is
// the "single writer" spec.md §5 calls for.
type Matchmaker struct {
	cfg     *config.Config
	users   store.UserStore
	lobbies LobbyCreator

	mu    sync.Mutex
	queue []*entry
}

func New(cfg *config.Config, users store.UserStore, lobbies LobbyCreator) *Matchmaker {
	return &Matchmaker{cfg: cfg, users: users, lobbies: lobbies}
}

// Enqueue adds userID to the matchmaking queue. conn receives match_found
// and, after the redirect delay, redirect (spec.md §4.5).
func (m *Matchmaker) Enqueue(ctx context.Context, userID string, conn session.Conn) error {
	u, err := m.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.queue {
		if e.userID == userID {
			e.conn = conn
			return nil
		}
	}
	m.queue = append(m.queue, &entry{userID: userID, xp: u.XP, rank: u.Rank, name: u.DisplayName, conn: conn})
	m.cfg.Logf("MATCHMAKING: %s entered the queue (xp=%d)", userID, u.XP)
	return nil
}

// Position reports userID's 1-indexed place in the queue, or 0 if userID
// is not queued (spec.md §6 queue_joined).
func (m *Matchmaker) Position(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.queue {
		if e.userID == userID {
			return i + 1
		}
	}
	return 0
}

// Dequeue removes userID from the queue without pairing it
// (spec.md §4.5 stop_matchmaking).
func (m *Matchmaker) Dequeue(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.queue[:0]
	for _, e := range m.queue {
		if e.userID != userID {
			out = append(out, e)
		}
	}
	m.queue = out
}

// Run drives the periodic pairing scan until ctx is cancelled
// (spec.md §4.5's tick interval).
func (m *Matchmaker) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.MatchmakerTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

// tick pairs every pair of queued entries whose XP differs by at most
// MatchmakerXPGap, oldest-queued first, and dispatches match_found then
// (after RedirectDelay) redirect to both (spec.md §4.5).
func (m *Matchmaker) tick(ctx context.Context) {
	pairs := m.pullPairs()
	for _, p := range pairs {
		m.dispatch(ctx, p[0], p[1])
	}
}

func (m *Matchmaker) pullPairs() [][2]*entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	var pairs [][2]*entry
	used := make(map[int]bool)

	for i := 0; i < len(m.queue); i++ {
		if used[i] {
			continue
		}
		for j := i + 1; j < len(m.queue); j++ {
			if used[j] {
				continue
			}
			gap := m.queue[i].xp - m.queue[j].xp
			if gap < 0 {
				gap = -gap
			}
			if gap <= m.cfg.MatchmakerXPGap {
				pairs = append(pairs, [2]*entry{m.queue[i], m.queue[j]})
				used[i], used[j] = true, true
				break
			}
		}
	}

	if len(pairs) == 0 {
		return nil
	}

	remaining := m.queue[:0]
	for i, e := range m.queue {
		if !used[i] {
			remaining = append(remaining, e)
		}
	}
	m.queue = remaining

	return pairs
}

func (m *Matchmaker) dispatch(ctx context.Context, a, b *entry) {
	lobby, err := m.lobbies.CreateDuelLobby(ctx, a.userID)
	if err != nil {
		m.cfg.Logf("MATCHMAKING: failed to create lobby for %s/%s: %v", a.userID, b.userID, err)
		m.requeue(a, b)
		return
	}

	send(a.conn, MatchFoundMsg{Type: "match_found", LobbyCode: lobby.Code, Opponent: opponentInfoOf(b)})
	send(b.conn, MatchFoundMsg{Type: "match_found", LobbyCode: lobby.Code, Opponent: opponentInfoOf(a)})

	m.cfg.Logf("MATCHMAKING: paired %s and %s into lobby %s", a.userID, b.userID, lobby.Code)

	time.AfterFunc(m.cfg.RedirectDelay, func() {
		send(a.conn, RedirectMsg{Type: "redirect", LobbyCode: lobby.Code})
		send(b.conn, RedirectMsg{Type: "redirect", LobbyCode: lobby.Code})
	})
}

func (m *Matchmaker) requeue(a, b *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, a, b)
}

func opponentInfoOf(e *entry) OpponentInfo {
	return OpponentInfo{UserID: e.userID, DisplayName: e.name, XP: e.xp, Rank: e.rank}
}

func send(conn session.Conn, payload any) {
	if conn == nil {
		return
	}
	_ = conn.Send(payload)
}
