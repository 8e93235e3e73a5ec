/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"strings"
	"testing"
	"time"

	"github.com/Seednode/recall/games"
)

func validConfig() *Config {
	return &Config{
		bind:           "127.0.0.1",
		port:           8080,
		roundDuration:  time.Minute,
		sessionTimeout: time.Hour,
		fetchTimeout:   10 * time.Second,
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "port zero", mutate: func(c *Config) { c.port = 0 }, wantErr: true},
		{name: "port too high", mutate: func(c *Config) { c.port = 65536 }, wantErr: true},
		{name: "cert without key", mutate: func(c *Config) { c.tlsCert = "cert.pem" }, wantErr: true},
		{name: "key without cert", mutate: func(c *Config) { c.tlsKey = "key.pem" }, wantErr: true},
		{name: "cert and key", mutate: func(c *Config) { c.tlsCert, c.tlsKey = "cert.pem", "key.pem" }},
		{name: "zero round duration", mutate: func(c *Config) { c.roundDuration = 0 }, wantErr: true},
		{name: "negative session timeout", mutate: func(c *Config) { c.sessionTimeout = -time.Second }, wantErr: true},
		{name: "disabled session timeout", mutate: func(c *Config) { c.sessionTimeout = 0 }},
		{name: "negative fetch timeout", mutate: func(c *Config) { c.fetchTimeout = -time.Second }, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr && err == nil {
				t.Error("expected an error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfigScheme(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if got := cfg.scheme(); got != "http" {
		t.Errorf("expected http, got %s", got)
	}

	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	if got := cfg.scheme(); got != "https" {
		t.Errorf("expected https, got %s", got)
	}
}

func TestNewCmdDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	_ = newCmd(cfg)

	if cfg.port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.port)
	}
	if cfg.roundDuration != games.DefaultDuration {
		t.Errorf("expected default round duration %v, got %v", games.DefaultDuration, cfg.roundDuration)
	}
	if cfg.title != games.DefaultTitle || cfg.author != games.DefaultAuthor {
		t.Errorf("unexpected title/author %q/%q", cfg.title, cfg.author)
	}
	if cfg.words != "" {
		t.Errorf("expected embedded word list by default, got %q", cfg.words)
	}
}

func TestWordsFlagNamesSampleList(t *testing.T) {
	t.Parallel()

	usage := newCmd(&Config{}).Flags().Lookup("words").Usage
	if !strings.Contains(usage, "sample") || !strings.Contains(usage, "illustrative counts") {
		t.Errorf("expected --words help to describe the embedded sample list, got %q", usage)
	}
}

func TestNewCmdEnv(t *testing.T) {
	t.Setenv("RECALL_ROUND_DURATION", "30s")
	t.Setenv("RECALL_PORT", "9090")
	t.Setenv("RECALL_TITLE", "Hamlet")

	cfg := &Config{}
	_ = newCmd(cfg)

	if cfg.roundDuration != 30*time.Second {
		t.Errorf("expected round duration from env, got %v", cfg.roundDuration)
	}
	if cfg.port != 9090 {
		t.Errorf("expected port from env, got %d", cfg.port)
	}
	if cfg.title != "Hamlet" {
		t.Errorf("expected title from env, got %q", cfg.title)
	}
}

func TestNewCmdFlags(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	cmd := newCmd(cfg)

	if err := cmd.ParseFlags([]string{"--round_duration", "90s", "-w", "words.yaml"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.roundDuration != 90*time.Second {
		t.Errorf("expected underscores to normalize to dashes, got %v", cfg.roundDuration)
	}
	if cfg.words != "words.yaml" {
		t.Errorf("expected words source from flag, got %q", cfg.words)
	}
}
