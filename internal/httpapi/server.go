/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

// Package httpapi implements spec.md §6's HTTP surface: lobby create/join/
// leave, solo practice locations, the clan-war lifecycle, and read-only
// profile/leaderboard endpoints. Grounded on the teacher's web.go: the same
// httprouter skeleton, security headers, and realIP helper, generalized
// from partybox's per-game page registration to this spec's routes. The
// ws and http surfaces share one listener (cmd/geoduel/main.go), so this
// package exposes its middleware and panic handler for that shared mux
// instead of owning an http.Server itself.
package httpapi

import (
	"net"
	"net/http"
	"net/http/pprof"

	"github.com/julienschmidt/httprouter"

	"github.com/Seednode/geoduel/internal/clanwar"
	"github.com/Seednode/geoduel/internal/config"
	"github.com/Seednode/geoduel/internal/engine"
	"github.com/Seednode/geoduel/internal/geo"
	"github.com/Seednode/geoduel/internal/identity"
	"github.com/Seednode/geoduel/internal/kv"
	"github.com/Seednode/geoduel/internal/ratelimit"
	"github.com/Seednode/geoduel/internal/store"
)

// Server holds every component an HTTP handler needs to serve spec.md §6's
// surface.
type Server struct {
	cfg      *config.Config
	identity *identity.Gateway
	users    store.UserStore
	lobbies  store.LobbyStore
	wars     store.ClanWarStore

	engine  *engine.Engine
	clanwar *clanwar.Controller
	catalog *geo.Catalog
	limiter *ratelimit.Limiter
	kv      kv.Store
}

func New(
	cfg *config.Config,
	ident *identity.Gateway,
	users store.UserStore,
	lobbies store.LobbyStore,
	wars store.ClanWarStore,
	eng *engine.Engine,
	cw *clanwar.Controller,
	catalog *geo.Catalog,
	limiter *ratelimit.Limiter,
	kvStore kv.Store,
) *Server {
	return &Server{
		cfg:      cfg,
		identity: ident,
		users:    users,
		lobbies:  lobbies,
		wars:     wars,
		engine:   eng,
		clanwar:  cw,
		catalog:  catalog,
		limiter:  limiter,
		kv:       kvStore,
	}
}

// Routes registers every handler on mux (spec.md §6).
func (s *Server) Routes(mux *httprouter.Router) {
	mux.POST("/lobbies/", s.CreateLobbyHandler)
	mux.PUT("/lobbies/:code/members", s.JoinLobbyHandler)
	mux.DELETE("/lobbies/:code/members", s.LeaveLobbyHandler)
	mux.GET("/lobbies/random", s.RandomLocationHandler)

	mux.POST("/clans/war", s.CreateWarHandler)
	mux.POST("/clans/war/:id/participants", s.SetWarParticipantsHandler)
	mux.POST("/clans/war/:id/play", s.PlayWarHandler)
	mux.POST("/clans/war/:id/declaim", s.DeclaimWarHandler)

	mux.GET("/profile/me", s.ProfileHandler)
	mux.GET("/profile/leaderboard", s.LeaderboardHandler)

	if s.cfg.Profile {
		registerProfileHandlers(s.cfg, mux)
	}
}

func registerProfileHandlers(cfg *config.Config, mux *httprouter.Router) {
	mux.Handler("GET", cfg.Prefix+"/pprof/allocs", pprof.Handler("allocs"))
	mux.Handler("GET", cfg.Prefix+"/pprof/block", pprof.Handler("block"))
	mux.Handler("GET", cfg.Prefix+"/pprof/goroutine", pprof.Handler("goroutine"))
	mux.Handler("GET", cfg.Prefix+"/pprof/heap", pprof.Handler("heap"))
	mux.Handler("GET", cfg.Prefix+"/pprof/mutex", pprof.Handler("mutex"))
	mux.Handler("GET", cfg.Prefix+"/pprof/threadcreate", pprof.Handler("threadcreate"))
	mux.HandlerFunc("GET", cfg.Prefix+"/pprof/cmdline", pprof.Cmdline)
	mux.HandlerFunc("GET", cfg.Prefix+"/pprof/profile", pprof.Profile)
	mux.HandlerFunc("GET", cfg.Prefix+"/pprof/symbol", pprof.Symbol)
	mux.HandlerFunc("GET", cfg.Prefix+"/pprof/trace", pprof.Trace)
}

func securityHeaders(cfg *config.Config, w http.ResponseWriter) {
	w.Header().Set("Cross-Origin-Embedder-Policy", "require-corp")
	w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
	w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	if cfg.Scheme() == "https" {
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
	}
}

// realIP resolves the caller's address for rate-limit keys, preferring
// CF-Connecting-IP / X-Real-IP over RemoteAddr.
func realIP(r *http.Request) string {
	host, _, _ := net.SplitHostPort(r.RemoteAddr)
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	} else if ip := r.Header.Get("X-Real-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	}
	return host
}

// WithSecurityHeaders wraps next so every response, ws upgrades included,
// carries the teacher's ambient security header set before the handler
// runs (Cross-Origin-*, Referrer-Policy, X-Content-Type-Options, and HSTS
// when serving over TLS).
func WithSecurityHeaders(cfg *config.Config, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		securityHeaders(cfg, w)
		next.ServeHTTP(w, r)
	})
}

// PanicHandler recovers a handler panic to a 500, for installation on the
// shared mux's httprouter.Router.PanicHandler field.
func PanicHandler(cfg *config.Config) func(http.ResponseWriter, *http.Request, any) {
	return func(w http.ResponseWriter, r *http.Request, _ any) {
		securityHeaders(cfg, w)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
