/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

// Package engine implements the Round/Duel State Machine (spec.md §4.3):
// per-lobby in-memory game state, timers, guess collection, and round/game
// lifecycle, for both the duel and clan-war variants.
package engine

import (
	"github.com/Seednode/geoduel/internal/store"
)

// Guess is a single player's submission for one round (spec.md §3).
type Guess struct {
	UserID     string
	DistanceM  float64
	Latitude   float64
	Longitude  float64
	Country    string
	Points     int
}

// GameState is the engine-owned, ephemeral per-lobby game state
// (spec.md §3).
type GameState struct {
	LobbyCode    string
	Mode         store.Mode
	WarID        string
	Locations    []store.LobbyLocation
	Participants []string

	CurrentIndex  int
	Guesses       map[int][]Guess
	HP            map[string]int
	StartedRounds map[int]bool
	EndedRounds   map[int]bool
	RoundStartMS  int64

	// SoloScore accumulates points for the clan-war single-player variant
	// (spec.md §3, §4.3).
	SoloScore int
}

func newGameState(lobbyCode string, mode store.Mode, warID string, locations []store.LobbyLocation, participants []string, startingHP int) *GameState {
	hp := make(map[string]int, len(participants))
	if mode == store.ModeDuel {
		for _, u := range participants {
			hp[u] = startingHP
		}
	}
	return &GameState{
		LobbyCode:     lobbyCode,
		Mode:          mode,
		WarID:         warID,
		Locations:     locations,
		Participants:  append([]string(nil), participants...),
		Guesses:       make(map[int][]Guess),
		HP:            hp,
		StartedRounds: make(map[int]bool),
		EndedRounds:   make(map[int]bool),
	}
}

// guessThreshold is the number of guesses needed before a round resolves
// early (spec.md §4.3 behavior table): 2 for duel, 1 for clan_war.
func (s *GameState) guessThreshold() int {
	if s.Mode == store.ModeClanWar {
		return 1
	}
	return 2
}

// hasGuessed reports whether userID already has a guess recorded for round
// idx (spec.md §3 invariant: at most one guess per user per round).
func (s *GameState) hasGuessed(idx int, userID string) bool {
	for _, g := range s.Guesses[idx] {
		if g.UserID == userID {
			return true
		}
	}
	return false
}

// totalDistances sums each participant's guessed distance across every
// round played so far (spec.md §4.3 on_game_end step 1).
func (s *GameState) totalDistances() map[string]float64 {
	totals := make(map[string]float64, len(s.Participants))
	for _, u := range s.Participants {
		totals[u] = 0
	}
	for _, guesses := range s.Guesses {
		for _, g := range guesses {
			totals[g.UserID] += g.DistanceM
		}
	}
	return totals
}

// allGuesses flattens every guess made across the whole game, used for the
// country close/far histogram (spec.md §4.3 step 6).
func (s *GameState) allGuesses() []Guess {
	var out []Guess
	for idx := 0; idx < len(s.Locations); idx++ {
		out = append(out, s.Guesses[idx]...)
	}
	return out
}
