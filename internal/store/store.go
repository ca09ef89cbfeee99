/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// UserStore is the read-through interface the engine uses for durable
// user attributes (spec.md §2, §3: "Read by engine; XP/rank/country stats
// are written back on game end").
type UserStore interface {
	GetUser(ctx context.Context, id string) (*User, error)
	// UpdateXP adds delta to the user's XP and returns the new total.
	UpdateXP(ctx context.Context, id string, delta int) (int, error)
	SetRank(ctx context.Context, id string, rank string) error
	RecordGuess(ctx context.Context, id string, country string, close, far bool) error
	Leaderboard(ctx context.Context, limit int) ([]*User, error)
}

// LobbyStore is the read-through/write-back interface for Lobby rows
// (spec.md §3).
type LobbyStore interface {
	CreateLobby(ctx context.Context, l *Lobby) error
	GetLobby(ctx context.Context, code string) (*Lobby, error)
	UpdateParticipants(ctx context.Context, code string, participants []string) error
	DeleteLobby(ctx context.Context, code string) error
}

// ClanWarStore is the read-through/write-back interface for ClanWar rows
// (spec.md §3, §4.6).
type ClanWarStore interface {
	GetWar(ctx context.Context, id string) (*ClanWar, error)
	SaveWar(ctx context.Context, w *ClanWar) error
	// AdjustClan applies a reputation/xp/wars delta to a clan's aggregate
	// record. wonDelta/lostDelta increment wars_won/wars_lost.
	AdjustClan(ctx context.Context, clanID string, reputationDelta, xpDelta int, wonDelta, lostDelta int) error
}
