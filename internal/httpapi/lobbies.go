/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package httpapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/Seednode/geoduel/internal/apierr"
)

type lobbyResponse struct {
	Code         string   `json:"code"`
	HostUserID   string   `json:"host_user_id"`
	Participants []string `json:"participants"`
	Mode         string   `json:"mode"`
}

// CreateLobbyHandler serves POST /lobbies/ (spec.md §6, rate limit 10/min).
func (s *Server) CreateLobbyHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := s.limiter.Allow(r.Context(), "lobby_create", realIP(r)); err != nil {
		writeError(w, err)
		return
	}

	user, err := s.authenticate(r)
	if err != nil {
		writeError(w, err)
		return
	}

	lobby, err := s.engine.CreateDuelLobby(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, lobbyResponse{
		Code:         lobby.Code,
		HostUserID:   lobby.HostUserID,
		Participants: lobby.Participants,
		Mode:         string(lobby.Mode),
	})
}

// JoinLobbyHandler serves PUT /lobbies/{code}/members (spec.md §6, rate
// limit 10/min). It reserves the caller a seat in the Store without
// attaching a connection; the player's subsequent WebSocket join finds the
// seat already held and just attaches.
func (s *Server) JoinLobbyHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := s.limiter.Allow(r.Context(), "lobby_join", realIP(r)); err != nil {
		writeError(w, err)
		return
	}

	user, err := s.authenticate(r)
	if err != nil {
		writeError(w, err)
		return
	}

	code := ps.ByName("code")
	if err := s.engine.ReserveSeat(r.Context(), code, user.ID); err != nil {
		writeError(w, err)
		return
	}

	lobby, err := s.lobbies.GetLobby(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lobbyResponse{
		Code:         lobby.Code,
		HostUserID:   lobby.HostUserID,
		Participants: lobby.Participants,
		Mode:         string(lobby.Mode),
	})
}

// LeaveLobbyHandler serves DELETE /lobbies/{code}/members (spec.md §6).
func (s *Server) LeaveLobbyHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, err := s.authenticate(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.engine.RemoveSeat(r.Context(), ps.ByName("code"), user.ID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type locationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Region    string  `json:"region"`
	Country   string  `json:"country"`
	URL       string  `json:"url"`
}

// RandomLocationHandler serves GET /lobbies/random: a single random
// location for solo practice, no lobby or game state involved
// (spec.md §6, supplemented from original_source/lobby_service.py).
func (s *Server) RandomLocationHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if _, err := s.authenticate(r); err != nil {
		writeError(w, err)
		return
	}

	locs, err := s.catalog.RandomLocations(1)
	if err != nil || len(locs) == 0 {
		writeError(w, apierr.Transient("no locations available"))
		return
	}

	loc := locs[0]
	writeJSON(w, http.StatusOK, locationResponse{
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Region:    loc.Region,
		Country:   loc.Country,
		URL:       loc.URL,
	})
}
