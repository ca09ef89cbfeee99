/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/Seednode/geoduel/internal/kv"
	"github.com/Seednode/geoduel/internal/store"
)

type profileResponse struct {
	ID           string                       `json:"id"`
	DisplayName  string                       `json:"display_name"`
	XP           int                          `json:"xp"`
	Rank         string                       `json:"rank"`
	AvatarURL    string                       `json:"avatar_url"`
	ClanID       string                       `json:"clan_id,omitempty"`
	CountryStats map[string]store.CountryStat `json:"country_stats,omitempty"`
}

func toProfileResponse(u *store.User) profileResponse {
	return profileResponse{
		ID:           u.ID,
		DisplayName:  u.DisplayName,
		XP:           u.XP,
		Rank:         u.Rank,
		AvatarURL:    u.AvatarURL,
		ClanID:       u.ClanID,
		CountryStats: u.CountryStats,
	}
}

// ProfileHandler serves GET /profile/me (spec.md §6).
func (s *Server) ProfileHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, err := s.authenticate(r)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(user))
}

// LeaderboardHandler serves GET /profile/leaderboard, TTL-cached 300s in
// the Ephemeral KV (spec.md §6, §9 leaderboard cache policy).
func (s *Server) LeaderboardHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if _, err := s.authenticate(r); err != nil {
		writeError(w, err)
		return
	}

	if raw, err := s.kv.Get(r.Context(), kv.LeaderboardKey); err == nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("X-Cache", "HIT")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(raw)
		return
	}

	top, err := s.users.Leaderboard(r.Context(), 5)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]profileResponse, len(top))
	for i, u := range top {
		out[i] = toProfileResponse(u)
	}

	raw, err := json.Marshal(out)
	if err != nil {
		writeError(w, err)
		return
	}
	_ = s.kv.Set(r.Context(), kv.LeaderboardKey, raw, kv.LeaderboardTTL)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Cache", "MISS")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
