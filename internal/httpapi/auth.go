/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Seednode/geoduel/internal/apierr"
	"github.com/Seednode/geoduel/internal/store"
)

// errBanned is a local sentinel rather than an apierr.Kind: spec.md §4.7's
// 403-for-banned-users rule applies only at the HTTP boundary (a banned
// user's bearer token is still accepted on sockets), so it has no home in
// apierr's shared Kind enum.
var errBanned = errors.New("user is banned")

// extractHTTPToken reads the bearer token from the access_token cookie or
// an Authorization: Bearer … header (spec.md §6: "authentication by cookie
// access_token or Authorization: Bearer … unless noted").
func extractHTTPToken(r *http.Request) string {
	if c, err := r.Cookie("access_token"); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// authenticate resolves the caller's user id from the request, then looks
// it up in the Store. Banned users are rejected with 403 at the HTTP
// boundary (spec.md §4.7).
func (s *Server) authenticate(r *http.Request) (*store.User, error) {
	token := extractHTTPToken(r)
	userID, err := s.identity.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetUser(r.Context(), userID)
	if err != nil {
		return nil, apierr.NotFound("user not found", "")
	}
	if u.Banned {
		return nil, errBanned
	}
	return u, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an apierr.Error (or a raw store.ErrNotFound) to the HTTP
// status spec.md §7 assigns it.
func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errBanned) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "user is banned"})
		return
	}
	var ae *apierr.Error
	if errors.As(err, &ae) {
		writeJSON(w, ae.HTTPStatus(), map[string]string{"error": ae.Message})
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apierr.Validation("malformed request body: " + err.Error())
	}
	return nil
}
