/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Seednode/recall/games"
)

type Config struct {
	author         string
	bind           string
	fetchTimeout   time.Duration
	port           int
	prefix         string
	profile        bool
	roundDuration  time.Duration
	sessionTimeout time.Duration
	title          string
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
	words          string
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.roundDuration <= 0 {
		return fmt.Errorf("invalid round duration (must be positive): %s", c.roundDuration)
	}
	if c.sessionTimeout < 0 {
		return fmt.Errorf("invalid session timeout (must not be negative): %s", c.sessionTimeout)
	}
	if c.fetchTimeout < 0 {
		return fmt.Errorf("invalid fetch timeout (must not be negative): %s", c.fetchTimeout)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func (c *Config) round() games.Config {
	return games.Config{
		Duration: c.roundDuration,
		Title:    c.title,
		Author:   c.author,
	}
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("RECALL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "recall",
		Short:         "A word-recall game: name as many words from a play as you can in a minute.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVar(&cfg.author, "author", games.DefaultAuthor, "author named in the final score (env: RECALL_AUTHOR)")
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: RECALL_BIND)")
	fs.DurationVar(&cfg.fetchTimeout, "fetch-timeout", 10*time.Second, "time allowed to fetch a remote word list (env: RECALL_FETCH_TIMEOUT)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: RECALL_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: RECALL_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: RECALL_PROFILE)")
	fs.DurationVar(&cfg.roundDuration, "round-duration", games.DefaultDuration, "time allowed per round, counted from the first word (env: RECALL_ROUND_DURATION)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle game sessions are ended (env: RECALL_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.title, "title", games.DefaultTitle, "title of the play named in the final score (env: RECALL_TITLE)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: RECALL_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: RECALL_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: RECALL_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: RECALL_VERSION)")
	fs.StringVarP(&cfg.words, "words", "w", "", "word list file or http(s) URL, JSON or YAML (default: embedded sample Romeo and Juliet list, with illustrative counts) (env: RECALL_WORDS)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("recall v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
