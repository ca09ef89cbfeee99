/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package engine

import (
	"context"
	"crypto/rand"
	"sort"
	"sync"
	"time"

	"github.com/Seednode/geoduel/internal/apierr"
	"github.com/Seednode/geoduel/internal/config"
	"github.com/Seednode/geoduel/internal/geo"
	"github.com/Seednode/geoduel/internal/kv"
	"github.com/Seednode/geoduel/internal/session"
	"github.com/Seednode/geoduel/internal/store"
)

// ClanWarNotifier receives the final solo_score of a clan-war lobby once its
// single-player game ends, so internal/clanwar can record it against the
// owning WarPair (spec.md §4.6). The engine depends on this interface
// rather than the clanwar package directly, to avoid an import cycle —
// clanwar creates clan-war lobbies through the engine.
type ClanWarNotifier interface {
	OnClanWarGameEnd(ctx context.Context, lobbyCode, warID, userID string, score int)
}

// Engine owns every in-memory GameState and the goroutine-safe transitions
// between them (spec.md §4.3). One lobbyActor per lobby code; the actor's
// own mutex is the unit of serialization (spec.md §5(a)), mirroring the
// teacher's per-Hub sync.RWMutex plus ...Locked() helpers.
type Engine struct {
	cfg      *config.Config
	catalog  *geo.Catalog
	users    store.UserStore
	lobbies  store.LobbyStore
	kvStore  kv.Store
	registry *session.Registry
	clk      clock

	mu       sync.Mutex
	actors   map[string]*lobbyActor
	notifier ClanWarNotifier
}

type lobbyActor struct {
	mu        sync.Mutex
	code      string
	lobby     *store.Lobby
	state     *GameState
	roundStop func() bool
}

func New(cfg *config.Config, catalog *geo.Catalog, users store.UserStore, lobbies store.LobbyStore, kvStore kv.Store, registry *session.Registry) *Engine {
	return &Engine{
		cfg:      cfg,
		catalog:  catalog,
		users:    users,
		lobbies:  lobbies,
		kvStore:  kvStore,
		registry: registry,
		clk:      realClock{},
		actors:   make(map[string]*lobbyActor),
	}
}

// SetClanWarNotifier wires the clan-war controller in after construction,
// since it in turn depends on the engine to create clan-war lobbies.
func (e *Engine) SetClanWarNotifier(n ClanWarNotifier) {
	e.notifier = n
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// newLobbyCode generates an 8-character crypto-random lobby code, grounded
// on the teacher's newGameID (celebrity.go).
func newLobbyCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, 8)
	for i := range out {
		out[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}
	return string(out), nil
}

func geoToStoreLocations(locs []geo.Location) []store.LobbyLocation {
	out := make([]store.LobbyLocation, len(locs))
	for i, l := range locs {
		out[i] = store.LobbyLocation{
			Latitude:  l.Latitude,
			Longitude: l.Longitude,
			Region:    l.Region,
			Country:   l.Country,
			URL:       l.URL,
		}
	}
	return out
}

// CreateDuelLobby creates a 2-participant duel lobby (spec.md §4.5
// match_found, or direct lobby creation via the HTTP surface).
func (e *Engine) CreateDuelLobby(ctx context.Context, hostUserID string) (*store.Lobby, error) {
	return e.createLobby(ctx, store.ModeDuel, "", hostUserID)
}

// CreateClanWarLobby creates a single-participant clan-war lobby for one
// side of a WarPair (spec.md §4.6 play_war: each side of a pair plays its
// own solo lobby; the controller compares solo_score once both finish).
func (e *Engine) CreateClanWarLobby(ctx context.Context, warID, userID string) (*store.Lobby, error) {
	return e.createLobby(ctx, store.ModeClanWar, warID, userID)
}

func (e *Engine) createLobby(ctx context.Context, mode store.Mode, warID, hostUserID string) (*store.Lobby, error) {
	locs, err := e.catalog.RandomLocations(e.cfg.RoundsPerGame)
	if err != nil {
		return nil, apierr.Transient("could not draw locations: " + err.Error())
	}

	var code string
	for attempt := 0; attempt < 5; attempt++ {
		c, err := newLobbyCode()
		if err != nil {
			return nil, apierr.Transient("could not generate lobby code: " + err.Error())
		}
		if _, err := e.lobbies.GetLobby(ctx, c); err == store.ErrNotFound {
			code = c
			break
		}
	}
	if code == "" {
		return nil, apierr.Transient("could not allocate a unique lobby code")
	}

	timer := e.cfg.DuelRoundTimer
	if mode == store.ModeClanWar {
		timer = e.cfg.ClanWarRoundTimer
	}

	lobby := &store.Lobby{
		Code:         code,
		HostUserID:   hostUserID,
		Participants: nil,
		RoundTimer:   timer,
		Locations:    geoToStoreLocations(locs),
		Mode:         mode,
		WarID:        warID,
	}
	if err := e.lobbies.CreateLobby(ctx, lobby); err != nil {
		return nil, apierr.Transient("could not persist lobby: " + err.Error())
	}

	e.mu.Lock()
	e.actors[code] = &lobbyActor{code: code, lobby: lobby}
	e.mu.Unlock()

	return lobby, nil
}

// getOrCreateActor returns the in-memory actor for lobbyCode, rehydrating
// it from the Ephemeral KV snapshot if the process restarted mid-game
// (spec.md §3: GameState persists to the KV on every mutation).
func (e *Engine) getOrCreateActor(ctx context.Context, lobbyCode string) (*lobbyActor, error) {
	e.mu.Lock()
	if a, ok := e.actors[lobbyCode]; ok {
		e.mu.Unlock()
		return a, nil
	}
	e.mu.Unlock()

	lobby, err := e.lobbies.GetLobby(ctx, lobbyCode)
	if err != nil {
		return nil, apierr.NotFound("lobby not found", apierr.CloseLobbyNotFound)
	}

	actor := &lobbyActor{code: lobbyCode, lobby: lobby}

	if raw, err := e.kvStore.Get(ctx, kv.GameKey(lobbyCode)); err == nil {
		state, err := unmarshalState(raw)
		if err != nil {
			e.cfg.Logf("ENGINE: corrupt snapshot for lobby %s, discarding: %v", lobbyCode, err)
			_ = e.kvStore.Del(ctx, kv.GameKey(lobbyCode))
		} else {
			actor.state = state
			e.rearmTimer(actor)
		}
	}

	e.mu.Lock()
	if existing, ok := e.actors[lobbyCode]; ok {
		e.mu.Unlock()
		return existing, nil
	}
	e.actors[lobbyCode] = actor
	e.mu.Unlock()

	return actor, nil
}

// rearmTimer re-schedules the round timer for a rehydrated GameState based
// on remaining time since round_start. If the round's time has already
// elapsed, the round is resolved immediately.
func (e *Engine) rearmTimer(actor *lobbyActor) {
	s := actor.state
	if s == nil || s.EndedRounds[s.CurrentIndex] {
		return
	}
	timer := e.roundTimerFor(s.Mode)
	elapsed := e.clk.nowMS() - s.RoundStartMS
	remaining := timer - elapsed
	idx := s.CurrentIndex
	if remaining <= 0 {
		go e.onTimerFire(actor.code, idx)
		return
	}
	actor.roundStop = e.clk.afterFunc(msToDuration(remaining), func() { e.onTimerFire(actor.code, idx) })
}

func (e *Engine) removeActor(lobbyCode string) {
	e.mu.Lock()
	delete(e.actors, lobbyCode)
	e.mu.Unlock()
}

func (e *Engine) persist(ctx context.Context, state *GameState) {
	data, err := marshalState(state)
	if err != nil {
		e.cfg.Logf("ENGINE: failed to marshal snapshot for lobby %s: %v", state.LobbyCode, err)
		return
	}
	if err := e.kvStore.Set(ctx, kv.GameKey(state.LobbyCode), data, kv.GameSnapshotTTL); err != nil {
		e.cfg.Logf("ENGINE: failed to persist snapshot for lobby %s: %v", state.LobbyCode, err)
	}
}

// OnPlayerJoin attaches a connection to a lobby and broadcasts the updated
// roster (spec.md §4.3 on_player_join, §4.2).
func (e *Engine) OnPlayerJoin(ctx context.Context, lobbyCode, userID string, conn session.Conn) (*session.Client, error) {
	actor, err := e.getOrCreateActor(ctx, lobbyCode)
	if err != nil {
		return nil, err
	}

	actor.mu.Lock()
	capacity := 2
	if actor.lobby.Mode == store.ModeClanWar {
		capacity = 1
	}
	already := false
	for _, p := range actor.lobby.Participants {
		if p == userID {
			already = true
			break
		}
	}
	if !already && len(actor.lobby.Participants) >= capacity {
		actor.mu.Unlock()
		return nil, apierr.ConflictClose("lobby is full", apierr.CloseLobbyFull)
	}
	if !already {
		actor.lobby.Participants = append(actor.lobby.Participants, userID)
		_ = e.lobbies.UpdateParticipants(ctx, lobbyCode, actor.lobby.Participants)
	}
	participants := append([]string(nil), actor.lobby.Participants...)
	actor.mu.Unlock()

	client := e.registry.Attach(lobbyCode, userID, conn)

	players := e.loadPlayers(ctx, participants)
	e.registry.Broadcast(lobbyCode, PlayerJoinedMsg{Type: "player_joined", Players: players})

	return client, nil
}

// ReserveSeat adds userID to a lobby's roster without attaching a live
// connection, for the HTTP join endpoint (spec.md §6 PUT
// /lobbies/{code}/members) that precedes a player opening its WebSocket.
// Idempotent if userID already holds a seat.
func (e *Engine) ReserveSeat(ctx context.Context, lobbyCode, userID string) error {
	actor, err := e.getOrCreateActor(ctx, lobbyCode)
	if err != nil {
		return err
	}

	actor.mu.Lock()
	defer actor.mu.Unlock()

	capacity := 2
	if actor.lobby.Mode == store.ModeClanWar {
		capacity = 1
	}
	for _, p := range actor.lobby.Participants {
		if p == userID {
			return nil
		}
	}
	if len(actor.lobby.Participants) >= capacity {
		return apierr.ConflictClose("lobby is full", apierr.CloseLobbyFull)
	}

	actor.lobby.Participants = append(actor.lobby.Participants, userID)
	return e.lobbies.UpdateParticipants(ctx, lobbyCode, actor.lobby.Participants)
}

// RemoveSeat drops userID from a lobby's roster for the HTTP leave endpoint
// (spec.md §6 DELETE /lobbies/{code}/members). If no connections remain
// attached and the roster is now empty, the lobby is torn down the same
// way a final OnPlayerLeave would.
func (e *Engine) RemoveSeat(ctx context.Context, lobbyCode, userID string) error {
	actor, err := e.getOrCreateActor(ctx, lobbyCode)
	if err != nil {
		return err
	}

	actor.mu.Lock()
	remaining := make([]string, 0, len(actor.lobby.Participants))
	for _, p := range actor.lobby.Participants {
		if p != userID {
			remaining = append(remaining, p)
		}
	}
	actor.lobby.Participants = remaining
	_ = e.lobbies.UpdateParticipants(ctx, lobbyCode, remaining)
	actor.mu.Unlock()

	if len(remaining) == 0 && !e.registry.HasAnyConnection(lobbyCode) {
		_ = e.kvStore.Del(ctx, kv.GameKey(lobbyCode))
		_ = e.lobbies.DeleteLobby(ctx, lobbyCode)
		e.removeActor(lobbyCode)
	}
	return nil
}

func (e *Engine) loadPlayers(ctx context.Context, userIDs []string) []PlayerInfo {
	out := make([]PlayerInfo, 0, len(userIDs))
	for _, id := range userIDs {
		u, err := e.users.GetUser(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, playerInfo(u))
	}
	return out
}

// OnPlayerLeave removes a specific connection from a lobby (spec.md §4.3
// on_player_leave). If other connections remain, the user is dropped from
// the roster and player_left is broadcast; if none remain, the ephemeral
// snapshot and Lobby row are cleared.
func (e *Engine) OnPlayerLeave(ctx context.Context, lobbyCode, userID string, client *session.Client) {
	e.registry.Detach(lobbyCode, client)

	if e.registry.HasAnyConnection(lobbyCode) {
		actor, err := e.getOrCreateActor(ctx, lobbyCode)
		if err != nil {
			return
		}
		actor.mu.Lock()
		remaining := make([]string, 0, len(actor.lobby.Participants))
		for _, p := range actor.lobby.Participants {
			if p != userID {
				remaining = append(remaining, p)
			}
		}
		actor.lobby.Participants = remaining
		_ = e.lobbies.UpdateParticipants(ctx, lobbyCode, remaining)
		actor.mu.Unlock()

		players := e.loadPlayers(ctx, remaining)
		e.registry.Broadcast(lobbyCode, PlayerLeftMsg{Type: "player_left", UserID: userID, Players: players})
		return
	}

	_ = e.kvStore.Del(ctx, kv.GameKey(lobbyCode))
	_ = e.lobbies.DeleteLobby(ctx, lobbyCode)
	e.removeActor(lobbyCode)
}

// OnGameStart transitions a lobby from IDLE into round 0 (spec.md §4.3).
// Idempotent: a no-op if the game already started.
func (e *Engine) OnGameStart(ctx context.Context, lobbyCode string) error {
	actor, err := e.getOrCreateActor(ctx, lobbyCode)
	if err != nil {
		return err
	}

	actor.mu.Lock()
	defer actor.mu.Unlock()

	if actor.state != nil {
		return nil
	}

	actor.state = newGameState(lobbyCode, actor.lobby.Mode, actor.lobby.WarID, actor.lobby.Locations, actor.lobby.Participants, e.cfg.StartingHP)

	e.registry.Broadcast(lobbyCode, GameStartedMsg{
		Type:  "game_started",
		HP:    actor.state.HP,
		Timer: int(e.roundTimerFor(actor.state.Mode) / 1000),
	})

	e.onRoundStartLocked(ctx, actor)
	return nil
}

func (e *Engine) roundTimerFor(mode store.Mode) int64 {
	if mode == store.ModeClanWar {
		return e.cfg.ClanWarRoundTimer.Milliseconds()
	}
	return e.cfg.DuelRoundTimer.Milliseconds()
}

func msToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// onRoundStartLocked arms round i's timer and broadcasts round_started.
// Idempotent per round index (spec.md §4.3 started_rounds set).
func (e *Engine) onRoundStartLocked(ctx context.Context, actor *lobbyActor) {
	s := actor.state
	idx := s.CurrentIndex
	if s.StartedRounds[idx] {
		return
	}
	s.StartedRounds[idx] = true
	s.RoundStartMS = e.clk.nowMS()

	loc := s.Locations[idx]
	timerMS := e.roundTimerFor(s.Mode)

	msg := RoundStartedMsg{
		Type:           "round_started",
		Round:          idx,
		Latitude:       loc.Latitude,
		Longitude:      loc.Longitude,
		URL:            loc.URL,
		TimerSeconds:   int(timerMS / 1000),
		RoundStartedMS: s.RoundStartMS,
	}
	e.registry.Broadcast(s.LobbyCode, msg)
	e.registry.BroadcastSpectators(s.LobbyCode, msg)

	e.persist(ctx, s)

	lobbyCode := s.LobbyCode
	actor.roundStop = e.clk.afterFunc(msToDuration(timerMS), func() { e.onTimerFire(lobbyCode, idx) })
}

// onTimerFire is the round timer callback. It re-acquires the actor lock
// and only resolves the round if it is still the live round (guards
// against a stale timer firing after the round already ended by guesses).
func (e *Engine) onTimerFire(lobbyCode string, roundIdx int) {
	ctx := context.Background()
	actor, err := e.getOrCreateActor(ctx, lobbyCode)
	if err != nil {
		return
	}

	actor.mu.Lock()
	defer actor.mu.Unlock()

	if actor.state == nil || actor.state.CurrentIndex != roundIdx || actor.state.EndedRounds[roundIdx] {
		return
	}
	e.onRoundEndLocked(ctx, actor)
}

// OnGuess records one participant's guess for the current round and
// resolves the round early once every expected guess has arrived
// (spec.md §4.3 on_guess).
func (e *Engine) OnGuess(ctx context.Context, lobbyCode, userID string, lat, lon float64) error {
	actor, err := e.getOrCreateActor(ctx, lobbyCode)
	if err != nil {
		return err
	}

	actor.mu.Lock()
	defer actor.mu.Unlock()

	s := actor.state
	if s == nil {
		return apierr.Conflict("game has not started")
	}
	idx := s.CurrentIndex
	if s.EndedRounds[idx] {
		return nil
	}
	if s.hasGuessed(idx, userID) {
		return nil
	}

	loc := s.Locations[idx]
	dist := geo.DistanceMeters(loc.Latitude, loc.Longitude, lat, lon)

	s.Guesses[idx] = append(s.Guesses[idx], Guess{
		UserID:    userID,
		DistanceM: dist,
		Latitude:  lat,
		Longitude: lon,
		Country:   loc.Country,
	})

	e.registry.Broadcast(lobbyCode, PlayerGuessedMsg{Type: "player_guessed", UserID: userID})
	e.persist(ctx, s)

	if len(s.Guesses[idx]) >= s.guessThreshold() {
		if actor.roundStop != nil {
			actor.roundStop()
			actor.roundStop = nil
		}
		e.onRoundEndLocked(ctx, actor)
	}

	return nil
}

// onRoundEndLocked resolves the current round per spec.md §4.3's behavior
// table, then either ends the game or schedules the next round after the
// inter-round delay.
func (e *Engine) onRoundEndLocked(ctx context.Context, actor *lobbyActor) {
	s := actor.state
	idx := s.CurrentIndex
	if s.EndedRounds[idx] {
		return
	}
	s.EndedRounds[idx] = true

	if actor.roundStop != nil {
		actor.roundStop()
		actor.roundStop = nil
	}

	var gameOver bool
	if s.Mode == store.ModeClanWar {
		gameOver = e.resolveClanWarRound(s)
	} else {
		gameOver = e.resolveDuelRound(s)
	}

	e.persist(ctx, s)

	if gameOver {
		e.onGameEndLocked(ctx, actor)
		return
	}

	s.CurrentIndex++
	lobbyCode := s.LobbyCode
	actor.roundStop = e.clk.afterFunc(e.cfg.InterRoundDelay, func() {
		e.advanceRound(lobbyCode)
	})
}

func (e *Engine) advanceRound(lobbyCode string) {
	ctx := context.Background()
	actor, err := e.getOrCreateActor(ctx, lobbyCode)
	if err != nil {
		return
	}
	actor.mu.Lock()
	defer actor.mu.Unlock()
	if actor.state == nil {
		return
	}
	e.onRoundStartLocked(ctx, actor)
}

// resolveDuelRound applies spec.md §4.3's duel behavior table and reports
// whether the game is now over (HP exhausted or round list exhausted).
func (e *Engine) resolveDuelRound(s *GameState) bool {
	idx := s.CurrentIndex
	guesses := s.Guesses[idx]

	switch len(guesses) {
	case 0:
		for _, u := range s.Participants {
			s.HP[u] -= 500
		}
		e.engineBroadcastTimedOut(s, idx, 0)
	case 1:
		guesser := guesses[0].UserID
		for _, u := range s.Participants {
			if u != guesser {
				s.HP[u] -= 1000
			}
		}
		e.engineBroadcastTimedOut(s, idx, 1)
	default:
		a, b := guesses[0], guesses[1]
		pa, pb := geo.Points(a.DistanceM), geo.Points(b.DistanceM)
		s.Guesses[idx][0].Points = pa
		s.Guesses[idx][1].Points = pb

		var winner string
		damage := pa - pb
		loser := b.UserID
		if pb > pa {
			winner = b.UserID
			loser = a.UserID
			damage = pb - pa
		} else if pa > pb {
			winner = a.UserID
		}
		if damage < 0 {
			damage = -damage
		}
		if winner != "" {
			if _, ok := s.HP[loser]; ok {
				s.HP[loser] -= damage
			} else {
				e.cfg.Logf("ENGINE: lobby %s has no HP entry for %s; damage not applied", s.LobbyCode, loser)
			}
		}

		e.registry.Broadcast(s.LobbyCode, RoundEndedMsg{
			Type:         "round_ended",
			Round:        idx,
			WinnerUserID: winner,
			Damage:       damage,
			HP:           s.HP,
			Results: []GuessResult{
				{UserID: a.UserID, DistanceM: a.DistanceM, Points: pa},
				{UserID: b.UserID, DistanceM: b.DistanceM, Points: pb},
			},
			Latitude:  s.Locations[idx].Latitude,
			Longitude: s.Locations[idx].Longitude,
		})
	}

	for _, u := range s.Participants {
		if s.HP[u] <= 0 {
			return true
		}
	}
	return idx+1 >= len(s.Locations)
}

func (e *Engine) engineBroadcastTimedOut(s *GameState, idx, numGuesses int) {
	e.registry.Broadcast(s.LobbyCode, RoundTimedOutMsg{
		Type:       "round_timedout",
		Round:      idx,
		HP:         s.HP,
		NumGuesses: numGuesses,
	})
}

// resolveClanWarRound applies the single-player clan-war variant of the
// behavior table: it advances on any outcome, accumulating solo_score.
func (e *Engine) resolveClanWarRound(s *GameState) bool {
	idx := s.CurrentIndex
	guesses := s.Guesses[idx]

	msg := ClanWarRoundEndedMsg{
		Type:      "round_ended",
		Round:     idx,
		Latitude:  s.Locations[idx].Latitude,
		Longitude: s.Locations[idx].Longitude,
	}
	if len(guesses) == 1 {
		pts := geo.Points(guesses[0].DistanceM)
		s.Guesses[idx][0].Points = pts
		s.SoloScore += pts
		msg.DistanceM = guesses[0].DistanceM
		msg.Points = pts
		msg.Guessed = true
	}
	msg.TotalScore = s.SoloScore
	e.registry.Broadcast(s.LobbyCode, msg)

	return idx+1 >= len(s.Locations)
}

// onGameEndLocked closes out a finished lobby: XP/rank updates, country
// stats, ephemeral cleanup, and (for clan-war lobbies) notifying the
// clan-war controller (spec.md §4.3 on_game_end).
func (e *Engine) onGameEndLocked(ctx context.Context, actor *lobbyActor) {
	s := actor.state

	var winner string
	if s.Mode == store.ModeDuel && len(s.Participants) > 0 {
		best := s.Participants[0]
		for _, u := range s.Participants {
			if s.HP[u] > s.HP[best] || (s.HP[u] == s.HP[best] && u < best) {
				best = u
			}
		}
		winner = best
	}

	totals := s.totalDistances()
	players := e.loadPlayers(ctx, s.Participants)

	e.registry.Broadcast(s.LobbyCode, GameEndedMsg{
		Type:           "game_ended",
		WinnerUserID:   winner,
		TotalDistances: totals,
		TotalScore:     s.SoloScore,
		Players:        players,
	})

	var rankUps []RankUpEntry
	for _, u := range s.Participants {
		before, err := e.users.GetUser(ctx, u)
		if err != nil {
			continue
		}
		delta := 10
		if u == winner {
			delta += 50
		}
		newXP, err := e.users.UpdateXP(ctx, u, delta)
		if err != nil {
			continue
		}
		newRank := store.RankForXP(newXP)
		if newRank != before.Rank {
			_ = e.users.SetRank(ctx, u, newRank)
			rankUps = append(rankUps, RankUpEntry{UserID: u, OldRank: before.Rank, NewRank: newRank})
		}
	}
	if len(rankUps) > 0 {
		e.registry.Broadcast(s.LobbyCode, RankUpMsg{Type: "rank_up", RankUps: rankUps})
	}

	for _, g := range s.allGuesses() {
		nearby := g.DistanceM <= 500
		distant := g.DistanceM > 2000
		_ = e.users.RecordGuess(ctx, g.UserID, g.Country, nearby, distant)
	}

	_ = e.kvStore.Del(ctx, kv.GameKey(s.LobbyCode))
	_ = e.lobbies.DeleteLobby(ctx, s.LobbyCode)
	e.removeActor(s.LobbyCode)

	if s.Mode == store.ModeClanWar && e.notifier != nil && len(s.Participants) == 1 {
		e.notifier.OnClanWarGameEnd(ctx, s.LobbyCode, s.WarID, s.Participants[0], s.SoloScore)
	}
}

// Snapshot returns the current round view used to rebuild a reconnecting
// client's UI (spec.md §4.4 reconnect_success).
type Snapshot struct {
	Round            int
	Latitude         float64
	Longitude        float64
	URL              string
	RoundStartedMS   int64
	RemainingSeconds int
	HP               map[string]int
	SoloScore        int
	HasGuessed       bool
	UsersGuessed     []string
}

func (e *Engine) SnapshotFor(ctx context.Context, lobbyCode, userID string) (*Snapshot, error) {
	actor, err := e.getOrCreateActor(ctx, lobbyCode)
	if err != nil {
		return nil, err
	}

	actor.mu.Lock()
	defer actor.mu.Unlock()

	s := actor.state
	if s == nil {
		return nil, apierr.Conflict("game has not started")
	}

	idx := s.CurrentIndex
	loc := s.Locations[idx]
	timerMS := e.roundTimerFor(s.Mode)
	remaining := int((timerMS - (e.clk.nowMS() - s.RoundStartMS)) / 1000)
	if remaining < 0 {
		remaining = 0
	}

	guessed := make([]string, 0, len(s.Guesses[idx]))
	hasGuessed := false
	for _, g := range s.Guesses[idx] {
		guessed = append(guessed, g.UserID)
		if g.UserID == userID {
			hasGuessed = true
		}
	}
	sort.Strings(guessed)

	return &Snapshot{
		Round:            idx,
		Latitude:         loc.Latitude,
		Longitude:        loc.Longitude,
		URL:              loc.URL,
		RoundStartedMS:   s.RoundStartMS,
		RemainingSeconds: remaining,
		HP:               s.HP,
		SoloScore:        s.SoloScore,
		HasGuessed:       hasGuessed,
		UsersGuessed:     guessed,
	}, nil
}
