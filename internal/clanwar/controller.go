/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

// Package clanwar implements the Clan War Controller (spec.md §4.6): pair
// formation once both clans have submitted a 5-player roster, spawning one
// solo duel lobby per pair side, aggregating scores, and finalizing the
// war. Idempotent-transition discipline (guard-then-mutate under the war's
// lock) is grounded on the teacher's celebrity.go ...Locked() convention,
// the same idiom internal/engine's round transitions follow.
package clanwar

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Seednode/geoduel/internal/apierr"
	"github.com/Seednode/geoduel/internal/config"
	"github.com/Seednode/geoduel/internal/store"
)

// LobbyCreator is the subset of *engine.Engine the controller needs: one
// solo clan-war lobby per pair side (spec.md §4.6 play_war).
type LobbyCreator interface {
	CreateClanWarLobby(ctx context.Context, warID, userID string) (*store.Lobby, error)
}

// Reward is one side's reputation/xp/win-loss delta for a finished or
// declaimed war (spec.md §4.6's reward table).
type Reward struct {
	ReputationDelta int
	XPDelta         int
	WonDelta        int
	LostDelta       int
}

var (
	winnerReward         = Reward{ReputationDelta: 10, XPDelta: 50, WonDelta: 1}
	loserReward          = Reward{ReputationDelta: -5, XPDelta: 10, LostDelta: 1}
	declaimedLoserReward = Reward{ReputationDelta: -10, XPDelta: -25, LostDelta: 1}
)

// Controller serializes every mutation to a single war behind a per-war
// mutex (spec.md §5: "clan-war fan-in serialization").
type Controller struct {
	cfg     *config.Config
	wars    store.ClanWarStore
	lobbies LobbyCreator

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(cfg *config.Config, wars store.ClanWarStore, lobbies LobbyCreator) *Controller {
	return &Controller{cfg: cfg, wars: wars, lobbies: lobbies, locks: make(map[string]*sync.Mutex)}
}

func (c *Controller) lockFor(warID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[warID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[warID] = l
	}
	return l
}

// CreateWar opens a new pending war between two clans, used by the HTTP
// clan-war lifecycle surface (spec.md §6 `/clans/war/*`) before either side
// can call SetParticipants. The war id is a uuid rather than the short
// human-facing alphabet newLobbyCode draws from, since it never appears in
// a join link.
func (c *Controller) CreateWar(ctx context.Context, clan1ID, clan2ID string) (*store.ClanWar, error) {
	if clan1ID == clan2ID {
		return nil, apierr.Validation("a clan cannot declare war on itself")
	}

	war := &store.ClanWar{
		ID:        uuid.NewString(),
		Clan1ID:   clan1ID,
		Clan2ID:   clan2ID,
		Status:    store.WarPending,
		StartedAt: time.Now(),
	}
	if err := c.wars.SaveWar(ctx, war); err != nil {
		return nil, apierr.Transient("could not persist clan war: " + err.Error())
	}
	return war, nil
}

// SetParticipants stores clanID's 5-player roster for war. Once both sides
// have a roster, pairs are built by sorting each side's roster by XP
// descending and zipping them, and the war transitions pending -> ongoing
// (spec.md §4.6 set_participants).
func (c *Controller) SetParticipants(ctx context.Context, warID, clanID string, players []string, xpByUser map[string]int) error {
	if len(players) != 5 {
		return apierr.Validation("a clan-war roster must have exactly 5 players")
	}

	lock := c.lockFor(warID)
	lock.Lock()
	defer lock.Unlock()

	war, err := c.wars.GetWar(ctx, warID)
	if err != nil {
		return apierr.NotFound("clan war not found", "")
	}

	switch clanID {
	case war.Clan1ID:
		war.Clan1Roster = players
	case war.Clan2ID:
		war.Clan2Roster = players
	default:
		return apierr.Validation("clan is not a participant in this war")
	}

	if len(war.Clan1Roster) == 5 && len(war.Clan2Roster) == 5 {
		war.Pairs = buildPairs(war.Clan1ID, war.Clan2ID, war.Clan1Roster, war.Clan2Roster, xpByUser)
		war.Status = store.WarOngoing
	}

	return c.wars.SaveWar(ctx, war)
}

// buildPairs sorts each roster by XP descending and zips them into
// index-aligned pairs (spec.md §4.6).
func buildPairs(clan1ID, clan2ID string, roster1, roster2 []string, xp map[string]int) []store.WarPair {
	r1 := sortByXPDesc(roster1, xp)
	r2 := sortByXPDesc(roster2, xp)

	pairs := make([]store.WarPair, len(r1))
	for i := range r1 {
		pairs[i] = store.WarPair{
			Index:       i,
			Clan1UserID: r1[i],
			Clan2UserID: r2[i],
			Status:      store.PairPending,
		}
	}
	return pairs
}

func sortByXPDesc(users []string, xp map[string]int) []string {
	out := append([]string(nil), users...)
	sort.SliceStable(out, func(i, j int) bool { return xp[out[i]] > xp[out[j]] })
	return out
}

// PlayWar locates the pair containing user and creates its solo lobby on
// first call, returning the lobby invite code (spec.md §4.6 play_war).
func (c *Controller) PlayWar(ctx context.Context, warID, userID string) (string, error) {
	lock := c.lockFor(warID)
	lock.Lock()
	defer lock.Unlock()

	war, err := c.wars.GetWar(ctx, warID)
	if err != nil {
		return "", apierr.NotFound("clan war not found", "")
	}

	idx := findPairIndex(war.Pairs, userID)
	if idx < 0 {
		return "", apierr.Conflict("user is not part of any pair in this war")
	}
	pair := &war.Pairs[idx]

	if pair.LobbyCode == "" {
		lobby, err := c.lobbies.CreateClanWarLobby(ctx, warID, userID)
		if err != nil {
			return "", err
		}
		pair.LobbyCode = lobby.Code
		pair.Status = store.PairOngoing
		if err := c.wars.SaveWar(ctx, war); err != nil {
			return "", err
		}
	}

	return pair.LobbyCode, nil
}

func findPairIndex(pairs []store.WarPair, userID string) int {
	for i, p := range pairs {
		if p.Clan1UserID == userID || p.Clan2UserID == userID {
			return i
		}
	}
	return -1
}

// SubmitScore records user's final solo_score for their pair. Once both
// sides are recorded, the pair winner is decided (ties favor clan_1), the
// clan aggregate score is updated, and the pair is marked completed. If
// this was the war's last pending pair, the war is finalized
// (spec.md §4.6 submit_score).
func (c *Controller) SubmitScore(ctx context.Context, warID, userID string, score int) error {
	lock := c.lockFor(warID)
	lock.Lock()
	defer lock.Unlock()

	war, err := c.wars.GetWar(ctx, warID)
	if err != nil {
		return apierr.NotFound("clan war not found", "")
	}

	idx := findPairIndex(war.Pairs, userID)
	if idx < 0 {
		return apierr.Conflict("user is not part of any pair in this war")
	}
	pair := &war.Pairs[idx]

	s := score
	switch userID {
	case pair.Clan1UserID:
		pair.Clan1Score = &s
	case pair.Clan2UserID:
		pair.Clan2Score = &s
	}

	if pair.Clan1Score != nil && pair.Clan2Score != nil && pair.Status != store.PairCompleted {
		c.completePair(war, pair)
	}

	if err := c.wars.SaveWar(ctx, war); err != nil {
		return err
	}

	if allPairsDone(war.Pairs) && war.Status == store.WarOngoing {
		return c.finalize(ctx, war, false)
	}
	return nil
}

func (c *Controller) completePair(war *store.ClanWar, pair *store.WarPair) {
	pair.Status = store.PairCompleted
	if *pair.Clan1Score >= *pair.Clan2Score {
		pair.WinnerUserID = pair.Clan1UserID
		war.Clan1Score++
	} else {
		pair.WinnerUserID = pair.Clan2UserID
		war.Clan2Score++
	}
}

func allPairsDone(pairs []store.WarPair) bool {
	for _, p := range pairs {
		if p.Status != store.PairCompleted && p.Status != store.PairDeclaimed {
			return false
		}
	}
	return true
}

// Declaim marks the war as refused by clanID before all pairs complete,
// applying the harsher declaim reward asymmetry to the refusing side
// (spec.md §4.6).
func (c *Controller) Declaim(ctx context.Context, warID, clanID string) error {
	lock := c.lockFor(warID)
	lock.Lock()
	defer lock.Unlock()

	war, err := c.wars.GetWar(ctx, warID)
	if err != nil {
		return apierr.NotFound("clan war not found", "")
	}
	if war.Status != store.WarPending && war.Status != store.WarOngoing {
		return apierr.Conflict("war is not in a declaimable state")
	}

	for i := range war.Pairs {
		if war.Pairs[i].Status == store.PairPending {
			war.Pairs[i].Status = store.PairDeclaimed
		}
	}
	war.Status = store.WarDeclaimed

	if clanID == war.Clan1ID {
		war.WinnerClan = war.Clan2ID
	} else {
		war.WinnerClan = war.Clan1ID
	}

	return c.finalize(ctx, war, true)
}

// finalize sets the war winner by aggregate score (or by the declaiming
// side, for a declaim) and applies the reward table to both clans
// (spec.md §4.6).
func (c *Controller) finalize(ctx context.Context, war *store.ClanWar, declaimed bool) error {
	if !declaimed {
		war.Status = store.WarCompleted
		if war.Clan1Score >= war.Clan2Score {
			war.WinnerClan = war.Clan1ID
		} else {
			war.WinnerClan = war.Clan2ID
		}
	}
	war.CompletedAt = time.Now()

	loserClan := war.Clan1ID
	if war.WinnerClan == war.Clan1ID {
		loserClan = war.Clan2ID
	}

	loser := loserReward
	if declaimed {
		loser = declaimedLoserReward
	}

	if err := c.wars.AdjustClan(ctx, war.WinnerClan, winnerReward.ReputationDelta, winnerReward.XPDelta, winnerReward.WonDelta, winnerReward.LostDelta); err != nil {
		c.cfg.Logf("CLANWAR: failed to apply winner reward for war %s: %v", war.ID, err)
	}
	if err := c.wars.AdjustClan(ctx, loserClan, loser.ReputationDelta, loser.XPDelta, loser.WonDelta, loser.LostDelta); err != nil {
		c.cfg.Logf("CLANWAR: failed to apply loser reward for war %s: %v", war.ID, err)
	}

	return c.wars.SaveWar(ctx, war)
}

// OnClanWarGameEnd implements engine.ClanWarNotifier: once a participant's
// solo clan-war lobby finishes, its final solo_score is submitted on their
// behalf (spec.md §4.3/§4.6 hand-off between the Round State Machine and
// the Clan War Controller).
func (c *Controller) OnClanWarGameEnd(ctx context.Context, lobbyCode, warID, userID string, score int) {
	if err := c.SubmitScore(ctx, warID, userID, score); err != nil {
		c.cfg.Logf("CLANWAR: failed to submit score for %s in war %s (lobby %s): %v", userID, warID, lobbyCode, err)
	}
}
