/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

// Package wsapi wires the three WebSocket endpoints spec.md §6 defines
// (player, spectator, matchmaking) onto the Auth/Identity Gateway, the
// Round State Machine, the Disconnect Supervisor, and the Matchmaker.
// Structurally grounded on the teacher's celebrity.go serveWSForManager:
// upgrade, then a single blocking read loop per connection dispatching by a
// `type` field, with writes owned entirely by the Session Registry's
// per-client writer goroutine.
package wsapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/Seednode/geoduel/internal/apierr"
	"github.com/Seednode/geoduel/internal/config"
	"github.com/Seednode/geoduel/internal/disconnect"
	"github.com/Seednode/geoduel/internal/engine"
	"github.com/Seednode/geoduel/internal/identity"
	"github.com/Seednode/geoduel/internal/matchmaking"
	"github.com/Seednode/geoduel/internal/session"
	"github.com/Seednode/geoduel/internal/store"
)

// Server holds every component a WebSocket connection needs to be
// authenticated, attached, and driven.
type Server struct {
	cfg      *config.Config
	identity *identity.Gateway
	users    store.UserStore
	lobbies  store.LobbyStore

	engine        *engine.Engine
	disconnectSup *disconnect.Supervisor
	matchmaker    *matchmaking.Matchmaker
	registry      *session.Registry
}

func New(
	cfg *config.Config,
	ident *identity.Gateway,
	users store.UserStore,
	lobbies store.LobbyStore,
	eng *engine.Engine,
	sup *disconnect.Supervisor,
	mm *matchmaking.Matchmaker,
	registry *session.Registry,
) *Server {
	return &Server{
		cfg:           cfg,
		identity:      ident,
		users:         users,
		lobbies:       lobbies,
		engine:        eng,
		disconnectSup: sup,
		matchmaker:    mm,
		registry:      registry,
	}
}

// Routes registers the three WebSocket endpoints on mux (spec.md §6).
func (s *Server) Routes(mux *httprouter.Router) {
	mux.GET("/ws/:lobby_code", s.PlayerHandler)
	mux.GET("/ws/:lobby_code/spectate", s.SpectatorHandler)
	mux.GET("/matchmaking/", s.MatchmakingHandler)
}

// authenticateConn extracts and validates the bearer token and resolves it
// to a known user, closing conn with the appropriate 1008 reason on any
// failure (spec.md §4.7, §6 close codes).
func (s *Server) authenticateConn(conn *wsConn, r *http.Request) (string, error) {
	token := identity.ExtractToken(r)
	userID, err := s.identity.ValidateToken(token)
	if err != nil {
		s.closeWithError(conn, err)
		return "", err
	}

	if _, err := s.users.GetUser(r.Context(), userID); err != nil {
		wrapped := apierr.NotFound("user not found", apierr.CloseUserNotFound)
		s.closeWithError(conn, wrapped)
		return "", wrapped
	}

	return userID, nil
}

func closeReasonFor(err error) string {
	var ae *apierr.Error
	if errors.As(err, &ae) && ae.CloseReason != "" {
		return ae.CloseReason
	}
	if errors.Is(err, store.ErrNotFound) {
		return apierr.CloseUserNotFound
	}
	return "internal error"
}

func (s *Server) closeWithError(conn *wsConn, err error) {
	_ = conn.Close(apierr.CloseCode, closeReasonFor(err))
}

// PlayerHandler serves GET /ws/{lobby_code}?token=… (spec.md §6).
func (s *Server) PlayerHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	lobbyCode := ps.ByName("lobby_code")

	raw, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.cfg.Logf("WSAPI: upgrade failed for lobby %s: %v", lobbyCode, err)
		return
	}
	conn := newWSConn(raw)

	userID, err := s.authenticateConn(conn, r)
	if err != nil {
		return
	}

	ctx := context.Background()

	var client *session.Client
	if s.disconnectSup.IsMarkedDisconnected(ctx, lobbyCode, userID) {
		client, err = s.reconnectPlayer(ctx, lobbyCode, userID, conn)
	} else {
		client, err = s.engine.OnPlayerJoin(ctx, lobbyCode, userID, conn)
	}
	if err != nil {
		s.closeWithError(conn, err)
		return
	}

	s.readPlayerLoop(raw, lobbyCode, userID, client)
}

// reconnectPlayer hands an already-active game's snapshot to a returning
// player via the Disconnect Supervisor. If the game is not active (the
// disconnect mark outlived the game, or it never started), it falls back
// to a plain join (spec.md §4.4).
func (s *Server) reconnectPlayer(ctx context.Context, lobbyCode, userID string, conn *wsConn) (*session.Client, error) {
	snap, err := s.engine.SnapshotFor(ctx, lobbyCode, userID)
	if err != nil {
		return s.engine.OnPlayerJoin(ctx, lobbyCode, userID, conn)
	}

	msg := s.disconnectSup.OnReconnect(ctx, lobbyCode, userID, conn, snap)

	client := s.registry.FindByUser(lobbyCode, userID)
	if client == nil {
		return nil, apierr.NotFound("lobby not found", apierr.CloseLobbyNotFound)
	}
	s.registry.SendTo(client, msg)

	return client, nil
}

// readPlayerLoop blocks reading inbound frames until the socket closes,
// dispatching each by its type field, then notifies the Disconnect
// Supervisor (spec.md §4.4).
func (s *Server) readPlayerLoop(raw *websocket.Conn, lobbyCode, userID string, client *session.Client) {
	defer s.disconnectSup.OnDisconnect(context.Background(), lobbyCode, userID, client)

	for {
		_, data, err := raw.ReadMessage()
		if err != nil {
			return
		}

		var env inboundEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.cfg.Logf("WSAPI: malformed message from %s in %s: %v", userID, lobbyCode, err)
			continue
		}

		s.dispatchPlayerMessage(lobbyCode, userID, env.Type, data)
	}
}

// dispatchPlayerMessage implements spec.md §6's type dispatch table.
// Message types that only ever originate from the server (player_joined,
// player_left, round_started, round_ended, game_end) are recognized but
// inert when received from a client, same as a genuinely unknown type:
// logged and dropped.
func (s *Server) dispatchPlayerMessage(lobbyCode, userID, msgType string, data []byte) {
	ctx := context.Background()

	switch msgType {
	case "game_start":
		if err := s.engine.OnGameStart(ctx, lobbyCode); err != nil {
			s.cfg.Logf("WSAPI: game_start from %s in %s: %v", userID, lobbyCode, err)
		}

	case "submit_guess":
		var m submitGuessMsg
		if err := json.Unmarshal(data, &m); err != nil {
			s.cfg.Logf("WSAPI: malformed submit_guess from %s in %s: %v", userID, lobbyCode, err)
			return
		}
		if m.Latitude < -90 || m.Latitude > 90 || m.Longitude < -180 || m.Longitude > 180 {
			s.cfg.Logf("WSAPI: out-of-bounds guess from %s in %s", userID, lobbyCode)
			return
		}
		if err := s.engine.OnGuess(ctx, lobbyCode, userID, m.Latitude, m.Longitude); err != nil {
			s.cfg.Logf("WSAPI: submit_guess from %s in %s: %v", userID, lobbyCode, err)
		}

	case "broadcast":
		var m broadcastInMsg
		if err := json.Unmarshal(data, &m); err != nil {
			s.cfg.Logf("WSAPI: malformed broadcast from %s in %s: %v", userID, lobbyCode, err)
			return
		}
		name := userID
		if u, err := s.users.GetUser(ctx, userID); err == nil {
			name = u.DisplayName
		}
		s.registry.Broadcast(lobbyCode, broadcastOutMsg{Type: "broadcast", Player: name, Message: m.Message})

	default:
		s.cfg.Logf("WSAPI: dropped unrecognized message type %q from %s in %s", msgType, userID, lobbyCode)
	}
}

// SpectatorHandler serves GET /ws/{lobby_code}/spectate?token=… (spec.md §6):
// a read-only observer that receives an initial player_joined/round_started
// snapshot, then each later round_started. No other lobby event
// (game_started, player_guessed, round_timedout, round_ended, game_ended)
// is sent to spectators, so they never receive the HP map.
func (s *Server) SpectatorHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	lobbyCode := ps.ByName("lobby_code")

	raw, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.cfg.Logf("WSAPI: spectator upgrade failed for lobby %s: %v", lobbyCode, err)
		return
	}
	conn := newWSConn(raw)

	if _, err := s.authenticateConn(conn, r); err != nil {
		return
	}

	ctx := context.Background()
	client := s.registry.SpectatorAttach(lobbyCode, conn)

	s.sendSpectatorSnapshot(ctx, lobbyCode, client)

	for {
		if _, _, err := raw.ReadMessage(); err != nil {
			s.registry.SpectatorDetach(lobbyCode, client)
			return
		}
		// Read-only observer; inbound spectate{} reselects which table to
		// mirror, a no-op while a lobby seats only one ongoing game.
	}
}

func (s *Server) sendSpectatorSnapshot(ctx context.Context, lobbyCode string, client *session.Client) {
	if lobby, err := s.lobbies.GetLobby(ctx, lobbyCode); err == nil {
		s.registry.SendTo(client, engine.PlayerJoinedMsg{
			Type:    "player_joined",
			Players: s.loadPlayerInfos(ctx, lobby.Participants),
		})
	}

	if snap, err := s.engine.SnapshotFor(ctx, lobbyCode, ""); err == nil {
		s.registry.SendTo(client, engine.RoundStartedMsg{
			Type:           "round_started",
			Round:          snap.Round,
			Latitude:       snap.Latitude,
			Longitude:      snap.Longitude,
			URL:            snap.URL,
			TimerSeconds:   snap.RemainingSeconds,
			RoundStartedMS: snap.RoundStartedMS,
		})
	}
}

func (s *Server) loadPlayerInfos(ctx context.Context, userIDs []string) []engine.PlayerInfo {
	out := make([]engine.PlayerInfo, 0, len(userIDs))
	for _, id := range userIDs {
		u, err := s.users.GetUser(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, engine.PlayerInfo{
			UserID:      u.ID,
			DisplayName: u.DisplayName,
			AvatarURL:   u.AvatarURL,
			XP:          u.XP,
			Rank:        u.Rank,
		})
	}
	return out
}

// MatchmakingHandler serves GET /matchmaking/?token=… (spec.md §4.5, §6).
func (s *Server) MatchmakingHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	raw, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.cfg.Logf("WSAPI: matchmaking upgrade failed: %v", err)
		return
	}
	conn := newWSConn(raw)

	userID, err := s.authenticateConn(conn, r)
	if err != nil {
		return
	}

	ctx := context.Background()
	if err := s.matchmaker.Enqueue(ctx, userID, conn); err != nil {
		s.closeWithError(conn, err)
		return
	}
	_ = conn.Send(queueJoinedMsg{Type: "queue_joined", Position: s.matchmaker.Position(userID)})

	for {
		_, data, err := raw.ReadMessage()
		if err != nil {
			s.matchmaker.Dequeue(userID)
			return
		}

		var env inboundEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		if env.Type == "stop_matchmaking" {
			s.matchmaker.Dequeue(userID)
		}
	}
}
