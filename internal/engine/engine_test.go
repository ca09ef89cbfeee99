package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/geoduel/internal/config"
	"github.com/Seednode/geoduel/internal/geo"
	"github.com/Seednode/geoduel/internal/kv"
	"github.com/Seednode/geoduel/internal/session"
	"github.com/Seednode/geoduel/internal/store"
)

type testConn struct {
	mu   sync.Mutex
	sent []any
}

func (c *testConn) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, v)
	return nil
}

func (c *testConn) Close(code int, reason string) error { return nil }

func (c *testConn) last() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sent) == 0 {
		return nil
	}
	return c.sent[len(c.sent)-1]
}

func (c *testConn) messages() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]any(nil), c.sent...)
}

// parisLocation reproduces spec.md §8's S1 scenario: true location in
// central Paris; the tests' guess at (48.8566, 3.0) lands ~47km away.
var parisLocation = geo.Location{Latitude: 48.8566, Longitude: 2.3522, Region: "Ile-de-France", Country: "FR", URL: "https://example.test/paris"}

func newTestEngine(t *testing.T, roundsPerGame int) (*Engine, *store.MemoryStore, *fakeClock) {
	t.Helper()

	cfg := &config.Config{
		DuelRoundTimer:    240 * time.Second,
		ClanWarRoundTimer: 120 * time.Second,
		InterRoundDelay:   5 * time.Second,
		StartingHP:        6000,
		RoundsPerGame:     roundsPerGame,
	}
	catalog := geo.NewCatalog([]geo.Location{parisLocation})
	users := store.NewMemoryStore()
	registry := session.NewRegistry(cfg)
	kvStore := kv.NewMemoryStore()

	eng := New(cfg, catalog, users, users, kvStore, registry)
	fc := newFakeClock()
	eng.clk = fc

	return eng, users, fc
}

func seedUser(s *store.MemoryStore, id string) {
	s.PutUser(&store.User{ID: id, DisplayName: id, Rank: store.RankForXP(0)})
}

func TestDuelRoundResolvesOnBothGuesses(t *testing.T) {
	eng, users, _ := newTestEngine(t, 1)
	ctx := context.Background()

	seedUser(users, "alice")
	seedUser(users, "bob")

	lobby, err := eng.CreateDuelLobby(ctx, "alice")
	require.NoError(t, err)

	aConn, bConn := &testConn{}, &testConn{}
	_, err = eng.OnPlayerJoin(ctx, lobby.Code, "alice", aConn)
	require.NoError(t, err)
	_, err = eng.OnPlayerJoin(ctx, lobby.Code, "bob", bConn)
	require.NoError(t, err)

	require.NoError(t, eng.OnGameStart(ctx, lobby.Code))

	require.NoError(t, eng.OnGuess(ctx, lobby.Code, "alice", 48.8566, 3.0))
	require.NoError(t, eng.OnGuess(ctx, lobby.Code, "bob", 40.0, 3.0))

	require.Eventually(t, func() bool {
		for _, m := range aConn.messages() {
			if _, ok := m.(GameEndedMsg); ok {
				return true
			}
		}
		return false
	}, time.Second, time.Millisecond)

	aliceUser, err := users.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Greater(t, aliceUser.XP, 0, "winner should receive XP")

	_, err = eng.lobbies.GetLobby(ctx, lobby.Code)
	assert.ErrorIs(t, err, store.ErrNotFound, "lobby should be deleted after game end")
}

func TestDuplicateGuessIgnored(t *testing.T) {
	eng, users, _ := newTestEngine(t, 1)
	ctx := context.Background()

	seedUser(users, "alice")
	seedUser(users, "bob")

	lobby, err := eng.CreateDuelLobby(ctx, "alice")
	require.NoError(t, err)

	_, err = eng.OnPlayerJoin(ctx, lobby.Code, "alice", &testConn{})
	require.NoError(t, err)
	_, err = eng.OnPlayerJoin(ctx, lobby.Code, "bob", &testConn{})
	require.NoError(t, err)
	require.NoError(t, eng.OnGameStart(ctx, lobby.Code))

	require.NoError(t, eng.OnGuess(ctx, lobby.Code, "alice", 48.8566, 2.3522))
	require.NoError(t, eng.OnGuess(ctx, lobby.Code, "alice", 10, 10))

	eng.mu.Lock()
	actor := eng.actors[lobby.Code]
	eng.mu.Unlock()
	require.NotNil(t, actor)

	actor.mu.Lock()
	defer actor.mu.Unlock()
	assert.Len(t, actor.state.Guesses[0], 1, "second guess from the same user must not be recorded")
}

func TestDuelRoundTimesOutWithNoGuesses(t *testing.T) {
	eng, users, fc := newTestEngine(t, 1)
	ctx := context.Background()

	seedUser(users, "alice")
	seedUser(users, "bob")

	lobby, err := eng.CreateDuelLobby(ctx, "alice")
	require.NoError(t, err)

	aConn := &testConn{}
	_, err = eng.OnPlayerJoin(ctx, lobby.Code, "alice", aConn)
	require.NoError(t, err)
	_, err = eng.OnPlayerJoin(ctx, lobby.Code, "bob", &testConn{})
	require.NoError(t, err)
	require.NoError(t, eng.OnGameStart(ctx, lobby.Code))

	fc.advance(241 * time.Second)

	require.Eventually(t, func() bool {
		for _, m := range aConn.messages() {
			if _, ok := m.(GameEndedMsg); ok {
				return true
			}
		}
		return false
	}, time.Second, time.Millisecond)

	var sawTimedOut bool
	for _, m := range aConn.messages() {
		if to, ok := m.(RoundTimedOutMsg); ok {
			sawTimedOut = true
			assert.Equal(t, 5500, to.HP["alice"])
			assert.Equal(t, 5500, to.HP["bob"])
		}
	}
	assert.True(t, sawTimedOut, "expected a round_timedout broadcast")
}

func TestClanWarSoloRoundAccumulatesScore(t *testing.T) {
	eng, users, _ := newTestEngine(t, 1)
	ctx := context.Background()

	seedUser(users, "carol")

	var notified struct {
		lobbyCode, warID, userID string
		score                    int
	}
	eng.SetClanWarNotifier(notifierFunc(func(_ context.Context, lobbyCode, warID, userID string, score int) {
		notified.lobbyCode, notified.warID, notified.userID, notified.score = lobbyCode, warID, userID, score
	}))

	lobby, err := eng.CreateClanWarLobby(ctx, "war-1", "carol")
	require.NoError(t, err)
	assert.Equal(t, store.ModeClanWar, lobby.Mode)

	_, err = eng.OnPlayerJoin(ctx, lobby.Code, "carol", &testConn{})
	require.NoError(t, err)
	require.NoError(t, eng.OnGameStart(ctx, lobby.Code))
	require.NoError(t, eng.OnGuess(ctx, lobby.Code, "carol", 48.8566, 2.3522))

	require.Eventually(t, func() bool { return notified.userID == "carol" }, time.Second, time.Millisecond)
	assert.Equal(t, "war-1", notified.warID)
	assert.Equal(t, 5000, notified.score, "a guess at the true location scores the maximum 5000 points")
}

type notifierFunc func(ctx context.Context, lobbyCode, warID, userID string, score int)

func (f notifierFunc) OnClanWarGameEnd(ctx context.Context, lobbyCode, warID, userID string, score int) {
	f(ctx, lobbyCode, warID, userID, score)
}
