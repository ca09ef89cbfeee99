package matchmaking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/geoduel/internal/config"
	"github.com/Seednode/geoduel/internal/store"
)

type recordingConn struct {
	mu   sync.Mutex
	sent []any
}

func (c *recordingConn) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, v)
	return nil
}

func (c *recordingConn) Close(code int, reason string) error { return nil }

func (c *recordingConn) messages() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]any(nil), c.sent...)
}

type fakeLobbyCreator struct {
	mu      sync.Mutex
	created int
}

func (f *fakeLobbyCreator) CreateDuelLobby(_ context.Context, hostUserID string) (*store.Lobby, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
	return &store.Lobby{Code: "LOBBY1", HostUserID: hostUserID, Mode: store.ModeDuel}, nil
}

func newTestMatchmaker(t *testing.T, xpGap int, tick time.Duration) (*Matchmaker, *store.MemoryStore, *fakeLobbyCreator) {
	t.Helper()
	cfg := &config.Config{MatchmakerTick: tick, MatchmakerXPGap: xpGap, RedirectDelay: 10 * time.Millisecond}
	users := store.NewMemoryStore()
	lobbies := &fakeLobbyCreator{}
	return New(cfg, users, lobbies), users, lobbies
}

func TestPairsWithinXPGap(t *testing.T) {
	mm, users, lobbies := newTestMatchmaker(t, 200, time.Hour)
	ctx := context.Background()

	users.PutUser(&store.User{ID: "alice", XP: 1000, DisplayName: "Alice"})
	users.PutUser(&store.User{ID: "bob", XP: 1100, DisplayName: "Bob"})

	aConn, bConn := &recordingConn{}, &recordingConn{}
	require.NoError(t, mm.Enqueue(ctx, "alice", aConn))
	require.NoError(t, mm.Enqueue(ctx, "bob", bConn))

	mm.tick(ctx)

	assert.Equal(t, 1, lobbies.created)
	require.Len(t, aConn.messages(), 1)
	found, ok := aConn.messages()[0].(MatchFoundMsg)
	require.True(t, ok)
	assert.Equal(t, "LOBBY1", found.LobbyCode)
	assert.Equal(t, "bob", found.Opponent.UserID)

	require.Eventually(t, func() bool {
		return len(aConn.messages()) == 2 && len(bConn.messages()) == 2
	}, time.Second, time.Millisecond)
}

func TestDoesNotPairOutsideXPGap(t *testing.T) {
	mm, users, lobbies := newTestMatchmaker(t, 50, time.Hour)
	ctx := context.Background()

	users.PutUser(&store.User{ID: "alice", XP: 0})
	users.PutUser(&store.User{ID: "bob", XP: 1000})

	require.NoError(t, mm.Enqueue(ctx, "alice", &recordingConn{}))
	require.NoError(t, mm.Enqueue(ctx, "bob", &recordingConn{}))

	mm.tick(ctx)

	assert.Equal(t, 0, lobbies.created)
	assert.Len(t, mm.queue, 2)
}

func TestDequeueRemovesFromQueue(t *testing.T) {
	mm, users, _ := newTestMatchmaker(t, 200, time.Hour)
	ctx := context.Background()
	users.PutUser(&store.User{ID: "alice", XP: 0})

	require.NoError(t, mm.Enqueue(ctx, "alice", &recordingConn{}))
	require.Len(t, mm.queue, 1)

	mm.Dequeue("alice")
	assert.Len(t, mm.queue, 0)
}
