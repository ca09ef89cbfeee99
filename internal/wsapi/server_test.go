package wsapi

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/geoduel/internal/config"
	"github.com/Seednode/geoduel/internal/disconnect"
	"github.com/Seednode/geoduel/internal/engine"
	"github.com/Seednode/geoduel/internal/geo"
	"github.com/Seednode/geoduel/internal/identity"
	"github.com/Seednode/geoduel/internal/kv"
	"github.com/Seednode/geoduel/internal/matchmaking"
	"github.com/Seednode/geoduel/internal/session"
	"github.com/Seednode/geoduel/internal/store"
)

var tokyoLocation = geo.Location{Latitude: 35.6762, Longitude: 139.6503, Region: "Kanto", Country: "JP", URL: "https://example.test/tokyo.jpg"}

type testHarness struct {
	server    *httptest.Server
	identity  *identity.Gateway
	users     *store.MemoryStore
	engine    *engine.Engine
	sup       *disconnect.Supervisor
	mm        *matchmaking.Matchmaker
	registry  *session.Registry
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	cfg := &config.Config{
		DuelRoundTimer:    240 * time.Second,
		ClanWarRoundTimer: 120 * time.Second,
		InterRoundDelay:   5 * time.Second,
		StartingHP:        6000,
		RoundsPerGame:     1,
		DisconnectGrace:   50 * time.Millisecond,
		MatchmakerTick:    time.Hour,
		MatchmakerXPGap:   200,
		RedirectDelay:     10 * time.Millisecond,
	}

	users := store.NewMemoryStore()
	catalog := geo.NewCatalog([]geo.Location{tokyoLocation})
	registry := session.NewRegistry(cfg)
	kvStore := kv.NewMemoryStore()

	eng := engine.New(cfg, catalog, users, users, kvStore, registry)
	sup := disconnect.New(cfg, kvStore, registry, eng)
	mm := matchmaking.New(cfg, users, eng)
	ident := identity.NewGateway("test-secret")

	srv := New(cfg, ident, users, users, eng, sup, mm, registry)
	mux := httprouter.New()
	srv.Routes(mux)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return &testHarness{server: ts, identity: ident, users: users, engine: eng, sup: sup, mm: mm, registry: registry}
}

func (h *testHarness) wsURL(path string) string {
	return "ws" + strings.TrimPrefix(h.server.URL, "http") + path
}

func seedPlayer(t *testing.T, h *testHarness, id string) string {
	t.Helper()
	h.users.PutUser(&store.User{ID: id, DisplayName: id, XP: 0, Rank: "Ashborn"})
	tok, err := h.identity.IssueToken(id)
	require.NoError(t, err)
	return tok
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestPlayerHandlerJoinsLobbyAndReceivesRoster(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	lobby, err := h.engine.CreateDuelLobby(ctx, "alice")
	require.NoError(t, err)

	tok := seedPlayer(t, h, "alice")
	conn := dial(t, h.wsURL("/ws/"+lobby.Code+"?token="+tok))

	var msg struct {
		Type    string `json:"type"`
		Players []any  `json:"players"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "player_joined", msg.Type)
	require.Len(t, msg.Players, 1)
}

func TestPlayerHandlerRejectsInvalidToken(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	lobby, err := h.engine.CreateDuelLobby(ctx, "alice")
	require.NoError(t, err)

	conn := dial(t, h.wsURL("/ws/"+lobby.Code+"?token=garbage"))

	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok)
	require.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
	require.Equal(t, "Invalid token", closeErr.Text)
}

func TestPlayerHandlerSubmitGuessResolvesRound(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	lobby, err := h.engine.CreateDuelLobby(ctx, "alice")
	require.NoError(t, err)

	aliceTok := seedPlayer(t, h, "alice")
	bobTok := seedPlayer(t, h, "bob")

	aliceConn := dial(t, h.wsURL("/ws/"+lobby.Code+"?token="+aliceTok))
	var joined map[string]any
	require.NoError(t, aliceConn.ReadJSON(&joined))

	bobConn := dial(t, h.wsURL("/ws/"+lobby.Code+"?token="+bobTok))
	require.NoError(t, aliceConn.ReadJSON(&joined)) // alice sees bob join
	require.NoError(t, bobConn.ReadJSON(&joined))   // bob sees the roster too

	require.NoError(t, aliceConn.WriteJSON(map[string]any{"type": "game_start"}))

	var gameStarted map[string]any
	require.NoError(t, aliceConn.ReadJSON(&gameStarted))
	require.Equal(t, "game_started", gameStarted["type"])
	require.NoError(t, bobConn.ReadJSON(&gameStarted))

	var roundStarted map[string]any
	require.NoError(t, aliceConn.ReadJSON(&roundStarted))
	require.Equal(t, "round_started", roundStarted["type"])
	require.NoError(t, bobConn.ReadJSON(&roundStarted))

	require.NoError(t, aliceConn.WriteJSON(map[string]any{"type": "submit_guess", "lat": 35.6762, "lon": 139.6503}))

	var guessed map[string]any
	require.NoError(t, aliceConn.ReadJSON(&guessed))
	require.Equal(t, "player_guessed", guessed["type"])
	require.NoError(t, bobConn.ReadJSON(&guessed))

	require.NoError(t, bobConn.WriteJSON(map[string]any{"type": "submit_guess", "lat": 0.0, "lon": 0.0}))

	var bobGuessed map[string]any
	require.NoError(t, aliceConn.ReadJSON(&bobGuessed))
	require.Equal(t, "player_guessed", bobGuessed["type"])

	var roundEnded map[string]any
	require.NoError(t, aliceConn.ReadJSON(&roundEnded))
	require.Equal(t, "round_ended", roundEnded["type"])
}

func TestSpectatorHandlerReceivesSnapshot(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	lobby, err := h.engine.CreateDuelLobby(ctx, "alice")
	require.NoError(t, err)
	h.users.PutUser(&store.User{ID: "alice", DisplayName: "alice"})
	_, err = h.engine.OnPlayerJoin(ctx, lobby.Code, "alice", discardConn{})
	require.NoError(t, err)
	require.NoError(t, h.engine.OnGameStart(ctx, lobby.Code))

	specTok := seedPlayer(t, h, "watcher")
	specConn := dial(t, h.wsURL("/ws/"+lobby.Code+"/spectate?token="+specTok))

	var playerJoined map[string]any
	require.NoError(t, specConn.ReadJSON(&playerJoined))
	require.Equal(t, "player_joined", playerJoined["type"])

	var roundStarted map[string]any
	require.NoError(t, specConn.ReadJSON(&roundStarted))
	require.Equal(t, "round_started", roundStarted["type"])
}

func TestMatchmakingHandlerReceivesQueueJoined(t *testing.T) {
	h := newTestHarness(t)
	tok := seedPlayer(t, h, "alice")

	conn := dial(t, h.wsURL("/matchmaking/?token="+tok))

	var msg struct {
		Type     string `json:"type"`
		Position int    `json:"position"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "queue_joined", msg.Type)
	require.Equal(t, 1, msg.Position)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "stop_matchmaking"}))
}

// discardConn is a no-op session.Conn used to attach a participant without
// a real socket, for tests that only need the spectator-facing broadcasts.
type discardConn struct{}

func (discardConn) Send(v any) error               { return nil }
func (discardConn) Close(code int, reason string) error { return nil }
