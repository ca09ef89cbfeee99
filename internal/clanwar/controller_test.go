package clanwar

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/geoduel/internal/config"
	"github.com/Seednode/geoduel/internal/store"
)

type fakeLobbyCreator struct{ n int }

func (f *fakeLobbyCreator) CreateClanWarLobby(_ context.Context, warID, userID string) (*store.Lobby, error) {
	f.n++
	return &store.Lobby{Code: "WARLOBBY", Mode: store.ModeClanWar, WarID: warID, HostUserID: userID}, nil
}

func seedWar(s *store.MemoryStore, id string) {
	_ = s.SaveWar(context.Background(), &store.ClanWar{ID: id, Clan1ID: "clan1", Clan2ID: "clan2", Status: store.WarPending})
}

func xpTable() map[string]int {
	return map[string]int{
		"a1": 100, "a2": 300, "a3": 50, "a4": 500, "a5": 10,
		"b1": 90, "b2": 280, "b3": 60, "b4": 490, "b5": 5,
	}
}

func TestSetParticipantsBuildsPairsWhenBothSidesReady(t *testing.T) {
	users := store.NewMemoryStore()
	seedWar(users, "war1")
	ctrl := New(&config.Config{}, users, &fakeLobbyCreator{})
	ctx := context.Background()

	xp := xpTable()
	require.NoError(t, ctrl.SetParticipants(ctx, "war1", "clan1", []string{"a1", "a2", "a3", "a4", "a5"}, xp))

	war, err := users.GetWar(ctx, "war1")
	require.NoError(t, err)
	assert.Equal(t, store.WarPending, war.Status, "status should stay pending until both rosters arrive")

	require.NoError(t, ctrl.SetParticipants(ctx, "war1", "clan2", []string{"b1", "b2", "b3", "b4", "b5"}, xp))

	war, err = users.GetWar(ctx, "war1")
	require.NoError(t, err)
	assert.Equal(t, store.WarOngoing, war.Status)
	require.Len(t, war.Pairs, 5)
	// pair 0 should hold each side's highest-XP player: a4 (500) and b4 (490)
	assert.Equal(t, "a4", war.Pairs[0].Clan1UserID)
	assert.Equal(t, "b4", war.Pairs[0].Clan2UserID)
}

func TestSubmitScoreCompletesPairAndWar(t *testing.T) {
	users := store.NewMemoryStore()
	seedWar(users, "war1")
	lobbies := &fakeLobbyCreator{}
	ctrl := New(&config.Config{}, users, lobbies)
	ctx := context.Background()

	xp := xpTable()
	require.NoError(t, ctrl.SetParticipants(ctx, "war1", "clan1", []string{"a1", "a2", "a3", "a4", "a5"}, xp))
	require.NoError(t, ctrl.SetParticipants(ctx, "war1", "clan2", []string{"b1", "b2", "b3", "b4", "b5"}, xp))

	war, err := users.GetWar(ctx, "war1")
	require.NoError(t, err)

	for _, p := range war.Pairs {
		code, err := ctrl.PlayWar(ctx, "war1", p.Clan1UserID)
		require.NoError(t, err)
		assert.Equal(t, "WARLOBBY", code)

		require.NoError(t, ctrl.SubmitScore(ctx, "war1", p.Clan1UserID, 3000))
		require.NoError(t, ctrl.SubmitScore(ctx, "war1", p.Clan2UserID, 1000))
	}

	war, err = users.GetWar(ctx, "war1")
	require.NoError(t, err)
	assert.Equal(t, store.WarCompleted, war.Status)
	assert.Equal(t, "clan1", war.WinnerClan)
	assert.Equal(t, 5, war.Clan1Score)
	assert.Equal(t, 0, war.Clan2Score)
	assert.False(t, war.CompletedAt.IsZero())

	rep1, xp1, won1, lost1, total1 := users.ClanStats("clan1")
	assert.Equal(t, 10, rep1)
	assert.Equal(t, 50, xp1)
	assert.Equal(t, 1, won1)
	assert.Equal(t, 0, lost1)
	assert.Equal(t, 1, total1)

	rep2, xp2, won2, lost2, total2 := users.ClanStats("clan2")
	assert.Equal(t, -5, rep2)
	assert.Equal(t, 10, xp2)
	assert.Equal(t, 0, won2)
	assert.Equal(t, 1, lost2)
	assert.Equal(t, 1, total2)
}

func TestDeclaimAppliesHarsherPenalty(t *testing.T) {
	users := store.NewMemoryStore()
	seedWar(users, "war1")
	ctrl := New(&config.Config{}, users, &fakeLobbyCreator{})
	ctx := context.Background()

	xp := xpTable()
	require.NoError(t, ctrl.SetParticipants(ctx, "war1", "clan1", []string{"a1", "a2", "a3", "a4", "a5"}, xp))
	require.NoError(t, ctrl.SetParticipants(ctx, "war1", "clan2", []string{"b1", "b2", "b3", "b4", "b5"}, xp))

	require.NoError(t, ctrl.Declaim(ctx, "war1", "clan2"))

	war, err := users.GetWar(ctx, "war1")
	require.NoError(t, err)
	assert.Equal(t, store.WarDeclaimed, war.Status)
	assert.Equal(t, "clan1", war.WinnerClan)
	assert.False(t, war.CompletedAt.IsZero())

	rep2, xp2, _, lost2, total2 := users.ClanStats("clan2")
	assert.Equal(t, -10, rep2)
	assert.Equal(t, -25, xp2)
	assert.Equal(t, 1, lost2)
	assert.Equal(t, 1, total2)
}
