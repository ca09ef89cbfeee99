/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package engine

import (
	"encoding/json"
	"strconv"

	"github.com/Seednode/geoduel/internal/store"
)

// persistedState is GameState's wire shape for the Ephemeral KV. Round
// indices become string map keys, since JSON object keys are always
// strings (spec.md §6 numeric contract).
type persistedState struct {
	LobbyCode     string                 `json:"lobby_code"`
	Mode          store.Mode             `json:"mode"`
	WarID         string                 `json:"war_id,omitempty"`
	Locations     []store.LobbyLocation  `json:"locations"`
	Participants  []string               `json:"participants"`
	CurrentIndex  int                    `json:"current_index"`
	Guesses       map[string][]Guess     `json:"guesses"`
	HP            map[string]int         `json:"hp,omitempty"`
	StartedRounds []int                  `json:"started_rounds"`
	EndedRounds   []int                  `json:"ended_rounds"`
	RoundStartMS  int64                  `json:"round_start_ms"`
	SoloScore     int                    `json:"solo_score,omitempty"`
}

func marshalState(s *GameState) ([]byte, error) {
	p := &persistedState{
		LobbyCode:    s.LobbyCode,
		Mode:         s.Mode,
		WarID:        s.WarID,
		Locations:    s.Locations,
		Participants: s.Participants,
		CurrentIndex: s.CurrentIndex,
		Guesses:      make(map[string][]Guess, len(s.Guesses)),
		HP:           s.HP,
		RoundStartMS: s.RoundStartMS,
		SoloScore:    s.SoloScore,
	}
	for idx, guesses := range s.Guesses {
		p.Guesses[strconv.Itoa(idx)] = guesses
	}
	for idx, done := range s.StartedRounds {
		if done {
			p.StartedRounds = append(p.StartedRounds, idx)
		}
	}
	for idx, done := range s.EndedRounds {
		if done {
			p.EndedRounds = append(p.EndedRounds, idx)
		}
	}
	return json.Marshal(p)
}

// unmarshalState reverses marshalState. A malformed payload is a Fatal
// condition (spec.md §7); the caller is responsible for deleting the key
// and falling back to no in-memory state.
func unmarshalState(data []byte) (*GameState, error) {
	var p persistedState
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}

	s := &GameState{
		LobbyCode:     p.LobbyCode,
		Mode:          p.Mode,
		WarID:         p.WarID,
		Locations:     p.Locations,
		Participants:  p.Participants,
		CurrentIndex:  p.CurrentIndex,
		Guesses:       make(map[int][]Guess, len(p.Guesses)),
		HP:            p.HP,
		StartedRounds: make(map[int]bool, len(p.StartedRounds)),
		EndedRounds:   make(map[int]bool, len(p.EndedRounds)),
		RoundStartMS:  p.RoundStartMS,
		SoloScore:     p.SoloScore,
	}
	for key, guesses := range p.Guesses {
		idx, err := strconv.Atoi(key)
		if err != nil {
			return nil, err
		}
		s.Guesses[idx] = guesses
	}
	for _, idx := range p.StartedRounds {
		s.StartedRounds[idx] = true
	}
	for _, idx := range p.EndedRounds {
		s.EndedRounds[idx] = true
	}
	if s.HP == nil {
		s.HP = make(map[string]int)
	}
	return s, nil
}
