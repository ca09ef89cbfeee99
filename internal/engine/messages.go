/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package engine

import "github.com/Seednode/geoduel/internal/store"

// PlayerInfo is the public, broadcast-safe view of a store.User
// (spec.md §6).
type PlayerInfo struct {
	UserID      string `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	XP          int    `json:"xp"`
	Rank        string `json:"rank"`
}

func playerInfo(u *store.User) PlayerInfo {
	return PlayerInfo{
		UserID:      u.ID,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		XP:          u.XP,
		Rank:        u.Rank,
	}
}

// PlayerJoinedMsg is broadcast to every attached connection when a new
// participant joins (spec.md §6).
type PlayerJoinedMsg struct {
	Type    string       `json:"type"`
	Players []PlayerInfo `json:"players"`
}

// PlayerLeftMsg is broadcast when a participant leaves while at least one
// connection remains (spec.md §4.3 on_player_leave).
type PlayerLeftMsg struct {
	Type    string       `json:"type"`
	UserID  string       `json:"user_id"`
	Players []PlayerInfo `json:"players"`
}

// GameStartedMsg announces the HP each participant begins with and the
// per-round timer (spec.md §4.3 on_game_start).
type GameStartedMsg struct {
	Type  string         `json:"type"`
	HP    map[string]int `json:"hp,omitempty"`
	Timer int            `json:"timer_seconds"`
}

// RoundStartedMsg carries the location to guess and the round deadline
// (spec.md §4.3 on_round_start). Spectators receive the same payload; it
// is the only round event they are sent, and it carries no HP map.
type RoundStartedMsg struct {
	Type           string `json:"type"`
	Round          int    `json:"round"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	URL            string  `json:"url"`
	TimerSeconds   int     `json:"timer_seconds"`
	RoundStartedMS int64   `json:"round_started_ms"`
}

// PlayerGuessedMsg tells the other participant a guess was made, without
// revealing its contents (spec.md §4.3 on_guess).
type PlayerGuessedMsg struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

// RoundTimedOutMsg reports a round resolved by timeout with fewer than the
// full complement of guesses (spec.md §4.3 behavior table, duel 0/1 case).
type RoundTimedOutMsg struct {
	Type       string         `json:"type"`
	Round      int            `json:"round"`
	HP         map[string]int `json:"hp"`
	NumGuesses int            `json:"num_guesses"`
}

// GuessResult is one participant's resolved guess for a duel round
// (spec.md §4.3 behavior table, duel 2-guess case).
type GuessResult struct {
	UserID    string  `json:"user_id"`
	DistanceM float64 `json:"distance_m"`
	Points    int     `json:"points"`
}

// RoundEndedMsg reports a fully-resolved duel round (both players guessed).
type RoundEndedMsg struct {
	Type         string         `json:"type"`
	Round        int            `json:"round"`
	WinnerUserID string         `json:"winner_user_id,omitempty"`
	Damage       int            `json:"damage"`
	HP           map[string]int `json:"hp"`
	Results      []GuessResult  `json:"results"`
	Latitude     float64        `json:"latitude"`
	Longitude    float64        `json:"longitude"`
}

// ClanWarRoundEndedMsg reports a resolved clan-war (single-player) round.
type ClanWarRoundEndedMsg struct {
	Type       string  `json:"type"`
	Round      int     `json:"round"`
	DistanceM  float64 `json:"distance_m,omitempty"`
	Points     int     `json:"points"`
	TotalScore int     `json:"total_score"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Guessed    bool    `json:"guessed"`
}

// GameEndedMsg reports a finished game: distances guessed by each player
// across the whole round list, and (for duel mode) the HP winner
// (spec.md §4.3 on_game_end).
type GameEndedMsg struct {
	Type           string             `json:"type"`
	WinnerUserID   string             `json:"winner_user_id,omitempty"`
	TotalDistances map[string]float64 `json:"total_distances"`
	TotalScore     int                `json:"total_score,omitempty"`
	Players        []PlayerInfo       `json:"players"`
}

// RankUpEntry is one participant's rank transition from on_game_end's XP
// award (spec.md §6).
type RankUpEntry struct {
	UserID  string `json:"user_id"`
	OldRank string `json:"old_rank"`
	NewRank string `json:"new_rank"`
}

// RankUpMsg is broadcast after on_game_end if any participant's rank
// changed (spec.md §6).
type RankUpMsg struct {
	Type    string        `json:"type"`
	RankUps []RankUpEntry `json:"rank_ups"`
}
