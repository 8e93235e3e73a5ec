/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/Seednode/recall/words"
)

func testList() words.List {
	return words.List{
		{Word: "love", Count: 10},
		{Word: "death", Count: 5},
	}
}

func newTestRouter(t *testing.T, cfg *Config) *httprouter.Router {
	t.Helper()

	errs := make(chan error, 64)
	mux, gm := newRouter(cfg, testList(), errs)
	t.Cleanup(gm.Close)

	return mux
}

func TestRoutes(t *testing.T) {
	t.Parallel()

	mux := newTestRouter(t, validConfig())

	tests := []struct {
		name        string
		path        string
		wantStatus  int
		wantType    string
		wantBody    string
		wantLocPref string
	}{
		{name: "health", path: "/healthz", wantStatus: http.StatusOK, wantBody: "Ok\n"},
		{name: "version", path: "/version", wantStatus: http.StatusOK, wantBody: "recall v" + releaseVersion},
		{name: "robots", path: "/robots.txt", wantStatus: http.StatusOK, wantBody: "Disallow: /recall/"},
		{name: "home links to game", path: "/", wantStatus: http.StatusOK, wantType: "text/html", wantBody: `href="/recall"`},
		{name: "new game redirects", path: "/recall", wantStatus: http.StatusTemporaryRedirect, wantLocPref: "/recall/"},
		{name: "game page", path: "/recall/ABCDefgh", wantStatus: http.StatusOK, wantType: "text/html", wantBody: "app.js"},
		{name: "bad game id", path: "/recall/nope", wantStatus: http.StatusNotFound},
		{name: "script", path: "/assets/recall/app.js", wantStatus: http.StatusOK, wantType: "text/javascript", wantBody: "WebSocket"},
		{name: "stylesheet", path: "/assets/recall/app.css", wantStatus: http.StatusOK, wantType: "text/css"},
		{name: "missing asset", path: "/assets/recall/nope.js", wantStatus: http.StatusNotFound},
		{name: "qr code", path: "/recall/ABCDefgh/qr", wantStatus: http.StatusOK, wantType: "image/png"},
		{name: "qr code bad id", path: "/recall/x/qr", wantStatus: http.StatusBadRequest},
		{name: "favicon", path: "/favicon.svg", wantStatus: http.StatusOK, wantType: "image/svg+xml"},
		{name: "favicon dir", path: "/favicons/site.webmanifest", wantStatus: http.StatusOK, wantType: "application/manifest+json"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantType != "" && !strings.HasPrefix(rec.Header().Get("Content-Type"), tt.wantType) {
				t.Errorf("expected content type %q, got %q", tt.wantType, rec.Header().Get("Content-Type"))
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("expected body to contain %q", tt.wantBody)
			}
			if tt.wantLocPref != "" && !strings.HasPrefix(rec.Header().Get("Location"), tt.wantLocPref) {
				t.Errorf("expected redirect to %q..., got %q", tt.wantLocPref, rec.Header().Get("Location"))
			}
		})
	}
}

func TestHomePage(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.title = "Hamlet & Ophelia"

	page := homePage(cfg)
	if !strings.Contains(page, "<h1>Hamlet &amp; Ophelia</h1>") {
		t.Errorf("expected escaped title in home page, got %q", page)
	}
	if !strings.Contains(page, "1m0s") {
		t.Errorf("expected round duration in home page, got %q", page)
	}
}

func TestNewGameID(t *testing.T) {
	t.Parallel()

	mux := newTestRouter(t, validConfig())

	req := httptest.NewRequest(http.MethodGet, "/recall", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	id := strings.TrimPrefix(rec.Header().Get("Location"), "/recall/")
	if !validGameID(id) {
		t.Errorf("expected a valid game id, got %q", id)
	}
}

func TestGamePageSetsPlayerCookie(t *testing.T) {
	t.Parallel()

	mux := newTestRouter(t, validConfig())

	req := httptest.NewRequest(http.MethodGet, "/recall/ABCDefgh", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == playerCookieName && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected a player cookie to be set")
	}
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	mux := newTestRouter(t, validConfig())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("expected nosniff, got %q", got)
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("expected no HSTS header over plain http")
	}
}

func TestPrefix(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.prefix = "/games/"
	mux := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/games/recall", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/games/recall/") {
		t.Errorf("expected prefixed redirect, got %q", loc)
	}

	req = httptest.NewRequest(http.MethodGet, "/games/", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), `href="/games/recall"`) {
		t.Errorf("expected home page to link to the prefixed game, got %q", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/games/assets/recall/app.css", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected prefixed asset to be served, got %d", rec.Code)
	}
}

func TestProfileHandlers(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.profile = true
	mux := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/pprof/cmdline", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected pprof handler, got %d", rec.Code)
	}
}

func TestLoadWords(t *testing.T) {
	t.Parallel()

	t.Run("embedded", func(t *testing.T) {
		t.Parallel()

		list, err := loadWords(context.Background(), validConfig())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(list) == 0 {
			t.Error("expected embedded words")
		}
	})

	t.Run("missing file is reported", func(t *testing.T) {
		t.Parallel()

		cfg := validConfig()
		cfg.words = filepath.Join(t.TempDir(), "missing.json")

		if _, err := loadWords(context.Background(), cfg); !errors.Is(err, words.ErrFetch) {
			t.Errorf("expected ErrFetch, got %v", err)
		}
	})

	t.Run("file", func(t *testing.T) {
		t.Parallel()

		p := filepath.Join(t.TempDir(), "list.yml")
		if err := os.WriteFile(p, []byte("- word: love\n  count: 10\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		cfg := validConfig()
		cfg.words = p

		list, err := loadWords(context.Background(), cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(list) != 1 {
			t.Errorf("expected one word, got %d", len(list))
		}
	})
}

func TestServePageFailsOnBadWordList(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.port = 0
	cfg.words = filepath.Join(t.TempDir(), "missing.json")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := ServePage(ctx, cfg, nil); !errors.Is(err, words.ErrFetch) {
		t.Errorf("expected ServePage to fail with ErrFetch, got %v", err)
	}
}

func TestHumanReadableSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int64
		want string
	}{
		{in: 0, want: "0 B"},
		{in: 999, want: "999 B"},
		{in: 1000, want: "1.0 kB"},
		{in: 1500000, want: "1.5 MB"},
	}

	for _, tt := range tests {
		if got := humanReadableSize(tt.in); got != tt.want {
			t.Errorf("humanReadableSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := wordListSize(testList()); got != 9 {
		t.Errorf("expected 9 bytes of words, got %d", got)
	}
}
