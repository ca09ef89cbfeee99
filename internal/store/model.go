/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

// Package store defines the durable entities spec.md §3 assigns to the
// external User/Lobby/ClanWar Store, plus read-through interfaces the
// engine consumes. The store itself (Postgres-backed, migrations, etc.) is
// explicitly out of core (spec.md §1); this package only holds the shapes
// the engine depends on and an in-process fake good enough to run and test
// the engine end to end.
package store

import "time"

// CountryStat tracks how often a player's guesses landed close to or far
// from the correct location for a given country (spec.md §3, §9).
type CountryStat struct {
	Close int
	Far   int
}

// User is the external, durable player profile (spec.md §3).
type User struct {
	ID           string
	DisplayName  string
	XP           int
	Rank         string
	AvatarURL    string
	ClanID       string
	CountryStats map[string]CountryStat
	Banned       bool
}

// Mode distinguishes the two variants of the Round State Machine
// (spec.md §4.3).
type Mode string

const (
	ModeDuel    Mode = "duel"
	ModeClanWar Mode = "clan_war"
)

// Lobby is the engine/store-owned container for a duel (spec.md §3).
type Lobby struct {
	Code         string
	HostUserID   string
	Participants []string
	RoundTimer   time.Duration
	Locations    []LobbyLocation
	Mode         Mode
	WarID        string
}

// LobbyLocation is the immutable per-lobby copy of a geo.Location, kept
// here (rather than importing internal/geo) so the store package has no
// dependency on the engine's location provider.
type LobbyLocation struct {
	Latitude  float64
	Longitude float64
	Region    string
	Country   string
	URL       string
}

// ClanWarStatus is the lifecycle state of a ClanWar (spec.md §3).
type ClanWarStatus string

const (
	WarPending   ClanWarStatus = "pending"
	WarOngoing   ClanWarStatus = "ongoing"
	WarCompleted ClanWarStatus = "completed"
	WarDeclaimed ClanWarStatus = "declaimed"
)

// PairStatus is the lifecycle state of a single duel-pair within a war.
type PairStatus string

const (
	PairPending   PairStatus = "pending"
	PairOngoing   PairStatus = "ongoing"
	PairCompleted PairStatus = "completed"
	PairDeclaimed PairStatus = "declaimed"
)

// WarPair is one 1v1 matchup within a ClanWar's bracket (spec.md §3, §4.6).
type WarPair struct {
	Index        int
	Clan1UserID  string
	Clan2UserID  string
	LobbyCode    string
	Clan1Score   *int
	Clan2Score   *int
	Status       PairStatus
	WinnerUserID string
}

// ClanWar is the external + engine-owned war aggregate (spec.md §3).
type ClanWar struct {
	ID          string
	Clan1ID     string
	Clan2ID     string
	Clan1Roster []string
	Clan2Roster []string
	Pairs       []WarPair
	Status      ClanWarStatus
	Clan1Score  int
	Clan2Score  int
	WinnerClan  string
	StartedAt   time.Time
	CompletedAt time.Time
}

// RankEntry is one row of the rank threshold table (spec.md §6).
type RankEntry struct {
	Threshold int
	Name      string
}

// RankTable is spec.md §6's ordered, inclusive-lower-bound rank thresholds.
var RankTable = []RankEntry{
	{0, "Ashborn"},
	{100, "Fog Runner"},
	{300, "Tin Sight"},
	{600, "Brass Deceiver"},
	{1000, "Steel Pusher"},
	{1600, "Iron Puller"},
	{2500, "Atium Shadow"},
	{4000, "Mistborn"},
	{6500, "Lord Mistborn"},
}

// RankForXP returns the name of the highest (threshold, rank) entry with
// threshold <= xp (spec.md §6, §8 property 7).
func RankForXP(xp int) string {
	name := RankTable[0].Name
	for _, e := range RankTable {
		if e.Threshold <= xp {
			name = e.Name
		} else {
			break
		}
	}
	return name
}
