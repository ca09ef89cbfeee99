/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process fake implementing UserStore, LobbyStore and
// ClanWarStore, standing in for the external Postgres-backed store that is
// out of scope for this repo (spec.md §1). It is good enough to run and
// test the engine end to end.
type MemoryStore struct {
	mu     sync.Mutex
	users  map[string]*User
	lobbys map[string]*Lobby
	wars   map[string]*ClanWar

	clanReputation map[string]int
	clanXP         map[string]int
	clanWarsWon    map[string]int
	clanWarsLost   map[string]int
	clanWarsTotal  map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:          make(map[string]*User),
		lobbys:         make(map[string]*Lobby),
		wars:           make(map[string]*ClanWar),
		clanReputation: make(map[string]int),
		clanXP:         make(map[string]int),
		clanWarsWon:    make(map[string]int),
		clanWarsLost:   make(map[string]int),
		clanWarsTotal:  make(map[string]int),
	}
}

// PutUser seeds a user record; used by tests and by startup fixtures.
func (m *MemoryStore) PutUser(u *User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.CountryStats == nil {
		u.CountryStats = make(map[string]CountryStat)
	}
	m.users[u.ID] = u
}

func (m *MemoryStore) GetUser(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	cp.CountryStats = make(map[string]CountryStat, len(u.CountryStats))
	for k, v := range u.CountryStats {
		cp.CountryStats[k] = v
	}
	return &cp, nil
}

func (m *MemoryStore) UpdateXP(_ context.Context, id string, delta int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return 0, ErrNotFound
	}
	u.XP += delta
	return u.XP, nil
}

func (m *MemoryStore) SetRank(_ context.Context, id string, rank string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Rank = rank
	return nil
}

func (m *MemoryStore) RecordGuess(_ context.Context, id string, country string, close, far bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	if u.CountryStats == nil {
		u.CountryStats = make(map[string]CountryStat)
	}
	stat := u.CountryStats[country]
	if close {
		stat.Close++
	}
	if far {
		stat.Far++
	}
	u.CountryStats[country] = stat
	return nil
}

func (m *MemoryStore) Leaderboard(_ context.Context, limit int) ([]*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make([]*User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].XP > all[j].XP })
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (m *MemoryStore) CreateLobby(_ context.Context, l *Lobby) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	cp.Participants = append([]string(nil), l.Participants...)
	m.lobbys[l.Code] = &cp
	return nil
}

func (m *MemoryStore) GetLobby(_ context.Context, code string) (*Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lobbys[code]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *l
	cp.Participants = append([]string(nil), l.Participants...)
	return &cp, nil
}

func (m *MemoryStore) UpdateParticipants(_ context.Context, code string, participants []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lobbys[code]
	if !ok {
		return ErrNotFound
	}
	l.Participants = append([]string(nil), participants...)
	return nil
}

func (m *MemoryStore) DeleteLobby(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lobbys, code)
	return nil
}

func (m *MemoryStore) GetWar(_ context.Context, id string) (*ClanWar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wars[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *w
	cp.Pairs = append([]WarPair(nil), w.Pairs...)
	return &cp, nil
}

func (m *MemoryStore) SaveWar(_ context.Context, w *ClanWar) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *w
	cp.Pairs = append([]WarPair(nil), w.Pairs...)
	m.wars[w.ID] = &cp
	return nil
}

func (m *MemoryStore) AdjustClan(_ context.Context, clanID string, reputationDelta, xpDelta int, wonDelta, lostDelta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clanReputation[clanID] += reputationDelta
	m.clanXP[clanID] += xpDelta
	m.clanWarsWon[clanID] += wonDelta
	m.clanWarsLost[clanID] += lostDelta
	m.clanWarsTotal[clanID] += wonDelta + lostDelta
	return nil
}

// ClanStats is a snapshot accessor used by tests to assert on reward
// application (spec.md §4.6's reward table).
func (m *MemoryStore) ClanStats(clanID string) (reputation, xp, won, lost, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clanReputation[clanID], m.clanXP[clanID], m.clanWarsWon[clanID], m.clanWarsLost[clanID], m.clanWarsTotal[clanID]
}
