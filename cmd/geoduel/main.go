/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"log"

	"github.com/julienschmidt/httprouter"
	"github.com/spf13/cobra"

	"github.com/Seednode/geoduel/internal/clanwar"
	"github.com/Seednode/geoduel/internal/config"
	"github.com/Seednode/geoduel/internal/disconnect"
	"github.com/Seednode/geoduel/internal/engine"
	"github.com/Seednode/geoduel/internal/geo"
	"github.com/Seednode/geoduel/internal/httpapi"
	"github.com/Seednode/geoduel/internal/identity"
	"github.com/Seednode/geoduel/internal/kv"
	"github.com/Seednode/geoduel/internal/matchmaking"
	"github.com/Seednode/geoduel/internal/ratelimit"
	"github.com/Seednode/geoduel/internal/session"
	"github.com/Seednode/geoduel/internal/store"
	"github.com/Seednode/geoduel/internal/wsapi"
)

func main() {
	log.SetFlags(0)
	cfg := &config.Config{}
	cobra.CheckErr(config.NewCommand(cfg, func(cmd *cobra.Command, args []string) error {
		return run(cfg)
	}).Execute())
}

// loadCatalog builds the Location Provider's catalog from --locations-file
// if given, otherwise the embedded seed list (spec.md §4.1).
func loadCatalog(cfg *config.Config) (*geo.Catalog, error) {
	if cfg.LocationsFile == "" {
		return geo.NewCatalog(defaultLocations), nil
	}

	raw, err := os.ReadFile(cfg.LocationsFile)
	if err != nil {
		return nil, err
	}

	var locs []geo.Location
	if err := json.Unmarshal(raw, &locs); err != nil {
		return nil, err
	}
	return geo.NewCatalog(locs), nil
}

// run wires every component spec.md §2 names together and serves both the
// WebSocket and HTTP surfaces on one listener, matching the teacher's single
// ServePage call generalized across two route sets instead of one.
func run(cfg *config.Config) error {
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	users := store.NewMemoryStore()

	var kvStore kv.Store
	if cfg.RedisAddr != "" {
		kvStore = kv.NewRedisStore(cfg.RedisAddr, cfg.RedisDB)
	} else {
		kvStore = kv.NewMemoryStore()
	}

	registry := session.NewRegistry(cfg)
	ident := identity.NewGateway(cfg.JWTSecret)
	limiter := ratelimit.New(cfg, kvStore)

	eng := engine.New(cfg, catalog, users, users, kvStore, registry)
	cw := clanwar.New(cfg, users, eng)
	eng.SetClanWarNotifier(cw)
	sup := disconnect.New(cfg, kvStore, registry, eng)
	mm := matchmaking.New(cfg, users, eng)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go mm.Run(ctx)

	wsSrv := wsapi.New(cfg, ident, users, users, eng, sup, mm, registry)
	httpSrv := httpapi.New(cfg, ident, users, users, users, eng, cw, catalog, limiter, kvStore)

	mux := httprouter.New()
	cfg.Prefix = strings.TrimSuffix(cfg.Prefix, "/")
	wsSrv.Routes(mux)
	httpSrv.Routes(mux)
	mux.PanicHandler = httpapi.PanicHandler(cfg)

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Bind, strconv.Itoa(cfg.Port)),
		Handler:           httpapi.WithSecurityHeaders(cfg, mux),
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		cfg.Logf("GEODUEL: listening on %s://%s%s/", cfg.Scheme(), srv.Addr, cfg.Prefix)
		var err error
		if cfg.TLSCert != "" && cfg.TLSKey != "" {
			err = srv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if closer, ok := kvStore.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
