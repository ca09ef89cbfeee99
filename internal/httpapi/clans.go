/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package httpapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/Seednode/geoduel/internal/apierr"
)

// CreateWarHandler serves POST /clans/war, opening a pending war between
// two clans ahead of either side submitting a roster (spec.md §6
// `/clans/war/*`).
func (s *Server) CreateWarHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if _, err := s.authenticate(r); err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Clan1ID string `json:"clan1_id"`
		Clan2ID string `json:"clan2_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	war, err := s.clanwar.CreateWar(r.Context(), body.Clan1ID, body.Clan2ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": war.ID})
}

// SetWarParticipantsHandler serves POST /clans/war/{id}/participants
// (spec.md §4.6 set_participants). Each roster entry's XP is looked up
// fresh from the Store so pairing (highest XP vs highest XP) reflects
// current standing rather than a client-supplied value.
func (s *Server) SetWarParticipantsHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if _, err := s.authenticate(r); err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		ClanID  string   `json:"clan_id"`
		Players []string `json:"players"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	xpByUser := make(map[string]int, len(body.Players))
	for _, id := range body.Players {
		u, err := s.users.GetUser(r.Context(), id)
		if err != nil {
			writeError(w, apierr.NotFound("player not found: "+id, ""))
			return
		}
		xpByUser[id] = u.XP
	}

	warID := ps.ByName("id")
	if err := s.clanwar.SetParticipants(r.Context(), warID, body.ClanID, body.Players, xpByUser); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PlayWarHandler serves POST /clans/war/{id}/play (spec.md §4.6 play_war):
// returns the invite code of the caller's solo clan-war lobby, creating it
// on first call.
func (s *Server) PlayWarHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, err := s.authenticate(r)
	if err != nil {
		writeError(w, err)
		return
	}

	code, err := s.clanwar.PlayWar(r.Context(), ps.ByName("id"), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"lobby_code": code})
}

// DeclaimWarHandler serves POST /clans/war/{id}/declaim (spec.md §4.6):
// a clan forfeits before the war completes.
func (s *Server) DeclaimWarHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if _, err := s.authenticate(r); err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		ClanID string `json:"clan_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	if err := s.clanwar.Declaim(r.Context(), ps.ByName("id"), body.ClanID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
