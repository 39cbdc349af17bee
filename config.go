/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Seednode/wordparty/games/taboo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind           string
	maxRounds      int
	playerTimeout  time.Duration
	port           int
	prefix         string
	profile        bool
	sessionTimeout time.Duration
	tickInterval   time.Duration
	tlsCert        string
	tlsKey         string
	turnTime       time.Duration
	verbose        bool
	version        bool
	voteWindow     time.Duration
	wordCount      int
	words          string
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.maxRounds < 1 || c.maxRounds > 20 {
		return fmt.Errorf("invalid max rounds (must be between 1-20 inclusive): %d", c.maxRounds)
	}
	if c.wordCount < 1 || c.wordCount > 50 {
		return fmt.Errorf("invalid word count (must be between 1-50 inclusive): %d", c.wordCount)
	}

	for flag, d := range map[string]time.Duration{
		"--player-timeout":  c.playerTimeout,
		"--session-timeout": c.sessionTimeout,
		"--tick-interval":   c.tickInterval,
		"--turn-time":       c.turnTime,
		"--vote-window":     c.voteWindow,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive: %s", flag, d)
		}
	}

	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// settings translates the flags into room tuning parameters.
func (c *Config) settings() taboo.Settings {
	s := taboo.DefaultSettings()

	s.TurnTime = c.turnTime
	s.MaxRounds = c.maxRounds
	s.WordCount = c.wordCount
	s.TickInterval = c.tickInterval
	s.VoteWindow = c.voteWindow
	s.GracePeriod = c.playerTimeout
	s.IdleTimeout = c.sessionTimeout

	return s
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("WORDPARTY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "wordparty",
		Short:         "A team word-guessing party game, served over websockets.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}

			if err := initLogger(cfg); err != nil {
				return err
			}

			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: WORDPARTY_BIND)")
	fs.IntVar(&cfg.maxRounds, "max-rounds", 3, "rounds per game (env: WORDPARTY_MAX_ROUNDS)")
	fs.DurationVar(&cfg.playerTimeout, "player-timeout", 2*time.Minute, "time a disconnected player is held before removal (env: WORDPARTY_PLAYER_TIMEOUT)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: WORDPARTY_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: WORDPARTY_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: WORDPARTY_PROFILE)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle rooms are closed (env: WORDPARTY_SESSION_TIMEOUT)")
	fs.DurationVar(&cfg.tickInterval, "tick-interval", time.Second, "interval between turn timer broadcasts (env: WORDPARTY_TICK_INTERVAL)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: WORDPARTY_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: WORDPARTY_TLS_KEY)")
	fs.DurationVar(&cfg.turnTime, "turn-time", 60*time.Second, "length of each turn (env: WORDPARTY_TURN_TIME)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: WORDPARTY_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: WORDPARTY_VERSION)")
	fs.DurationVar(&cfg.voteWindow, "vote-window", 30*time.Second, "time allowed for round-end taboo votes (env: WORDPARTY_VOTE_WINDOW)")
	fs.IntVar(&cfg.wordCount, "word-count", 10, "words dealt per turn (env: WORDPARTY_WORD_COUNT)")
	fs.StringVar(&cfg.words, "words", "", "path to a json word list, replacing the built-in one (env: WORDPARTY_WORDS)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("wordparty v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
