/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

// Package config holds the process-wide Config struct and its cobra/viper
// wiring, in the same shape the teacher's config.go uses for partybox.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds every flag/env-bound setting the server needs.
type Config struct {
	Bind   string
	Port   int
	Prefix string

	TLSCert string
	TLSKey  string

	Verbose bool
	Profile bool

	// JWT signing secret for the Auth/Identity Gateway (spec.md §4.7).
	JWTSecret string

	// Redis address backing the Ephemeral KV (spec.md §2, §6).
	RedisAddr string
	RedisDB   int

	// Round/game tuning (spec.md §4.3).
	DuelRoundTimer    time.Duration
	ClanWarRoundTimer time.Duration
	InterRoundDelay   time.Duration
	StartingHP        int
	RoundsPerGame     int

	// Matchmaker tuning (spec.md §4.5).
	MatchmakerTick  time.Duration
	MatchmakerXPGap int
	RedirectDelay   time.Duration

	// Disconnect/reconnect tuning (spec.md §4.4).
	DisconnectGrace time.Duration

	// HTTP rate limiting (spec.md §6).
	LobbyRateLimit       int
	LobbyRateLimitWindow time.Duration

	// LocationsFile optionally overrides the Location Provider's built-in
	// catalog with a JSON file of the same shape (spec.md §4.1).
	LocationsFile string
}

func (c *Config) Validate() error {
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.JWTSecret == "" {
		return errors.New("--jwt-secret is required")
	}
	return nil
}

func (c *Config) Scheme() string {
	if c.TLSCert != "" && c.TLSKey != "" {
		return "https"
	}
	return "http"
}

// NewCommand builds the root cobra command, binding flags through viper
// with the GEODUEL_ env prefix, matching the teacher's newCmd wiring.
func NewCommand(cfg *Config, run func(cmd *cobra.Command, args []string) error) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("GEODUEL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "geoduel",
		Short:         "Realtime backend for a two-player location-guessing duel game.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: GEODUEL_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", 8080, "port to listen on (env: GEODUEL_PORT)")
	fs.StringVar(&cfg.Prefix, "prefix", "", "path to prepend to all URLs (env: GEODUEL_PREFIX)")
	fs.StringVar(&cfg.TLSCert, "tls-cert", "", "path to tls certificate (env: GEODUEL_TLS_CERT)")
	fs.StringVar(&cfg.TLSKey, "tls-key", "", "path to tls keyfile (env: GEODUEL_TLS_KEY)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "display additional output (env: GEODUEL_VERBOSE)")
	fs.BoolVar(&cfg.Profile, "profile", false, "register net/http/pprof handlers (env: GEODUEL_PROFILE)")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", "", "HMAC secret used to validate bearer tokens (env: GEODUEL_JWT_SECRET)")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", "127.0.0.1:6379", "address of the ephemeral KV (env: GEODUEL_REDIS_ADDR)")
	fs.IntVar(&cfg.RedisDB, "redis-db", 0, "redis logical db index (env: GEODUEL_REDIS_DB)")
	fs.DurationVar(&cfg.DuelRoundTimer, "duel-round-timer", 240*time.Second, "seconds allotted per duel round (env: GEODUEL_DUEL_ROUND_TIMER)")
	fs.DurationVar(&cfg.ClanWarRoundTimer, "clan-war-round-timer", 120*time.Second, "seconds allotted per clan-war round (env: GEODUEL_CLAN_WAR_ROUND_TIMER)")
	fs.DurationVar(&cfg.InterRoundDelay, "inter-round-delay", 5*time.Second, "delay between round resolution and the next round start (env: GEODUEL_INTER_ROUND_DELAY)")
	fs.IntVar(&cfg.StartingHP, "starting-hp", 6000, "HP each duel participant starts with (env: GEODUEL_STARTING_HP)")
	fs.IntVar(&cfg.RoundsPerGame, "rounds-per-game", 5, "number of locations drawn per lobby (env: GEODUEL_ROUNDS_PER_GAME)")
	fs.DurationVar(&cfg.MatchmakerTick, "matchmaker-tick", 3*time.Second, "matchmaker pairing loop interval (env: GEODUEL_MATCHMAKER_TICK)")
	fs.IntVar(&cfg.MatchmakerXPGap, "matchmaker-xp-gap", 200, "maximum XP delta allowed between paired players (env: GEODUEL_MATCHMAKER_XP_GAP)")
	fs.DurationVar(&cfg.RedirectDelay, "redirect-delay", 2*time.Second, "delay between match_found and redirect (env: GEODUEL_REDIRECT_DELAY)")
	fs.DurationVar(&cfg.DisconnectGrace, "disconnect-grace", 180*time.Second, "grace window before a disconnected participant is treated as a permanent leave (env: GEODUEL_DISCONNECT_GRACE)")
	fs.IntVar(&cfg.LobbyRateLimit, "lobby-rate-limit", 10, "max lobby create/join requests per window per IP (env: GEODUEL_LOBBY_RATE_LIMIT)")
	fs.DurationVar(&cfg.LobbyRateLimitWindow, "lobby-rate-limit-window", time.Minute, "window for the lobby rate limit (env: GEODUEL_LOBBY_RATE_LIMIT_WINDOW)")
	fs.StringVar(&cfg.LocationsFile, "locations-file", "", "JSON file of locations overriding the built-in catalog (env: GEODUEL_LOCATIONS_FILE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("geoduel v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

const releaseVersion = "0.1.0"

// Logf is the ambient logging helper, gated by cfg.Verbose, matching the
// teacher's logf(cfg, format, args...) idiom.
func (c *Config) Logf(format string, args ...any) {
	if !c.Verbose {
		return
	}
	logPrintf(format, args...)
}
