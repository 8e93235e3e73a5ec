// Recall Game
//
// A player gets one minute to type as many words from a play as they can
// remember. Each recalled word is shown with how often it appears in the play,
// newest first, and the round ends with the share of the vocabulary recalled.
//
// Features:
// - WebSockets per game ID: /path/:gameid and /path/:gameid/ws
// - Every game gets its own copy of the word list loaded at startup
// - Words are committed when the input loses focus or Enter is pressed
// - The clock starts on the first committed word and cannot be restarted
// - Rounds can be paused, resumed, or reset from any connected browser
// - Every browser watching a game sees the same results and clock
// - Games auto-reaped after configurable idle timeout, cancelling their clock
// - Random 8-char game IDs via crypto/rand, with server-side collision check
// - In-browser QR button to share the current session, backed by go-qrcode

package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"github.com/Seednode/recall/games"
	"github.com/Seednode/recall/words"
)

const (
	gameIDLength   = 8
	maxMessageSize = 4096
)

// Messages coming from clients
type ClientMessage struct {
	Type string `json:"type"`           // "commit", "pause", "resume", "reset"
	Word string `json:"word,omitempty"` // commit
}

// SessionInfoMessage is sent on connect, and to everyone after a reset, so
// the client can draw the whole round at once.
type SessionInfoMessage struct {
	Type        string         `json:"type"` // "session_info"
	GameID      string         `json:"game_id"`
	Title       string         `json:"title"`
	Total       int            `json:"total"`
	DurationMs  int64          `json:"duration_ms"`
	RemainingMs int64          `json:"remaining_ms"`
	Started     bool           `json:"started"`
	Paused      bool           `json:"paused"`
	Finished    bool           `json:"finished"`
	Results     []games.Result `json:"results"`
	Score       *games.Score   `json:"score,omitempty"`
	Message     string         `json:"message,omitempty"`
}

// ResultMessage carries one recalled word, to be shown at the top of the list.
type ResultMessage struct {
	Type    string `json:"type"` // "result"
	Word    string `json:"word"`
	Count   int    `json:"count"`
	Matched int    `json:"matched"` // words recalled so far
}

// GameStateMessage announces clock changes.
type GameStateMessage struct {
	Type        string `json:"type"` // "game_state"
	Started     bool   `json:"started"`
	Paused      bool   `json:"paused"`
	Finished    bool   `json:"finished"`
	RemainingMs int64  `json:"remaining_ms"`
}

// GameOverMessage is broadcast once when the clock runs out.
type GameOverMessage struct {
	Type     string  `json:"type"` // "game_over"
	Matched  int     `json:"matched"`
	Total    int     `json:"total"`
	Coverage float64 `json:"coverage"`
	Message  string  `json:"message"`
}

// SimpleMessage is for notifications sent to a single client ("error").
type SimpleMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
}

type commitRequest struct {
	client *Client
	word   string
}

type controlRequest struct {
	client *Client
	msg    ClientMessage
}

type Hub struct {
	id      string
	cfg     *Config
	list    words.List
	round   *games.Round
	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	commits  chan commitRequest
	controls chan controlRequest
	expired  chan games.Score
	done     chan struct{}
	stop     sync.Once

	mu         sync.RWMutex
	createdAt  time.Time
	lastActive time.Time
}

func newHub(cfg *Config, gameID string, list words.List) *Hub {
	now := time.Now()
	h := &Hub{
		id:         gameID,
		cfg:        cfg,
		list:       list,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		commits:    make(chan commitRequest),
		controls:   make(chan controlRequest),
		expired:    make(chan games.Score),
		done:       make(chan struct{}),
		createdAt:  now,
		lastActive: now,
	}
	h.round = games.NewRound(list, cfg.round(), h.onExpire)

	return h
}

// onExpire runs on the round's timer goroutine and hands the score to the
// run loop.
func (h *Hub) onExpire(score games.Score) {
	select {
	case h.expired <- score:
	case <-h.done:
	}
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.touch()
			h.clients[c] = true
			h.sendTo(c, h.sessionInfo())

		case c := <-h.unreg:
			h.touch()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case req := <-h.commits:
			h.touch()
			h.handleCommit(req)

		case req := <-h.controls:
			h.touch()
			h.handleControl(req)

		case score := <-h.expired:
			h.touch()
			h.handleExpired(score)

		case <-h.done:
			h.round.Close()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
				_ = c.conn.Close()
			}
			return
		}
	}
}

func (h *Hub) touch() {
	h.mu.Lock()
	h.lastActive = time.Now()
	h.mu.Unlock()
}

func (h *Hub) idleSince() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.lastActive
}

// handleCommit runs one committed word through the round.
func (h *Hub) handleCommit(req commitRequest) {
	commit, err := h.round.Commit(req.word)
	switch {
	case errors.Is(err, games.ErrRoundOver):
		h.sendTo(req.client, SimpleMessage{Type: "error", Message: "Time is up, no more words can be added."})
		return
	case errors.Is(err, games.ErrRoundPaused):
		h.sendTo(req.client, SimpleMessage{Type: "error", Message: "The round is paused."})
		return
	case err != nil:
		h.sendTo(req.client, SimpleMessage{Type: "error", Message: err.Error()})
		return
	}

	if commit.Started {
		logf(h.cfg, "GAMES: Started round in game %s", h.id)
		h.broadcast(h.gameState())
	}

	if !commit.Matched {
		return
	}

	st := h.round.State()

	logf(h.cfg, "GAMES: Player %s recalled %q in game %s (%d/%d)",
		shortID(req.client.playerID), commit.Result.Word, h.id, len(st.Results), st.Total)

	h.broadcast(ResultMessage{
		Type:    "result",
		Word:    commit.Result.Word,
		Count:   commit.Result.Count,
		Matched: len(st.Results),
	})
}

// handleControl processes pause, resume and reset requests.
func (h *Hub) handleControl(req controlRequest) {
	switch req.msg.Type {
	case "pause":
		if h.round.Pause() {
			logf(h.cfg, "GAMES: Paused round in game %s", h.id)
			h.broadcast(h.gameState())
		}
	case "resume":
		if h.round.Resume() {
			logf(h.cfg, "GAMES: Resumed round in game %s", h.id)
			h.broadcast(h.gameState())
		}
	case "reset":
		h.round.Reset(h.list)
		logf(h.cfg, "GAMES: Reset round in game %s", h.id)
		h.broadcast(h.sessionInfo())
	}
}

func (h *Hub) handleExpired(score games.Score) {
	// A reset may have raced the timer.
	if !h.round.State().Finished {
		return
	}

	cfg := h.round.Config()

	logf(h.cfg, "GAMES: Round over in game %s, %d of %d words (%.2f%%)",
		h.id, score.Matched, score.Total, score.Coverage)

	h.broadcast(GameOverMessage{
		Type:     "game_over",
		Matched:  score.Matched,
		Total:    score.Total,
		Coverage: score.Coverage,
		Message:  score.Message(cfg.Title, cfg.Author),
	})
}

func (h *Hub) sessionInfo() SessionInfoMessage {
	st := h.round.State()

	msg := SessionInfoMessage{
		Type:        "session_info",
		GameID:      h.id,
		Title:       h.round.Config().Title,
		Total:       st.Total,
		DurationMs:  st.Duration.Milliseconds(),
		RemainingMs: st.Remaining.Milliseconds(),
		Started:     st.Started,
		Paused:      st.Paused,
		Finished:    st.Finished,
		Results:     st.Results,
	}
	if st.Finished {
		score := st.Score
		msg.Score = &score
		msg.Message = st.Message
	}

	return msg
}

func (h *Hub) gameState() GameStateMessage {
	st := h.round.State()

	return GameStateMessage{
		Type:        "game_state",
		Started:     st.Started,
		Paused:      st.Paused,
		Finished:    st.Finished,
		RemainingMs: st.Remaining.Milliseconds(),
	}
}

// sendTo queues msg for one client, dropping the client if it cannot keep up.
func (h *Hub) sendTo(c *Client, msg any) {
	if _, ok := h.clients[c]; !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) broadcast(msg any) {
	for c := range h.clients {
		h.sendTo(c, msg)
	}
}

// close stops the run loop, which disconnects every client.
func (h *Hub) close() {
	h.stop.Do(func() { close(h.done) })
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const playerCookieName = "recall_id"

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		errorf("rand.Read: %v", err)
		return ""
	}
	id := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// validGameID reports whether id looks like one of ours.
func validGameID(id string) bool {
	if len(id) != gameIDLength {
		return false
	}
	for _, r := range id {
		if !strings.ContainsRune(gameIDLetters, r) {
			return false
		}
	}
	return true
}

const gameIDLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GameManager holds a set of hubs keyed by game ID, so each $path/$gameid
// is its own isolated session.
type GameManager struct {
	mu          sync.Mutex
	cfg         *Config
	list        words.List
	hubs        map[string]*Hub
	idleTimeout time.Duration
	done        chan struct{}
	stop        sync.Once
}

func newGameManager(cfg *Config, list words.List, idleTimeout time.Duration) *GameManager {
	gm := &GameManager{
		cfg:         cfg,
		list:        list,
		hubs:        make(map[string]*Hub),
		idleTimeout: idleTimeout,
		done:        make(chan struct{}),
	}
	if idleTimeout > 0 {
		go gm.reaperLoop()
	}
	return gm
}

func (gm *GameManager) getHub(gameID string) *Hub {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if hub, ok := gm.hubs[gameID]; ok {
		return hub
	}

	hub := newHub(gm.cfg, gameID, gm.list)
	gm.hubs[gameID] = hub
	go hub.run()
	return hub
}

// newGameID generates a crypto-random game ID and ensures it doesn't
// collide with existing games.
func (gm *GameManager) newGameID() string {
	for {
		buf := make([]byte, gameIDLength)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, gameIDLength)
		for i := range out {
			out[i] = gameIDLetters[int(buf[i])%len(gameIDLetters)]
		}
		id := string(out)

		gm.mu.Lock()
		_, exists := gm.hubs[id]
		gm.mu.Unlock()

		if !exists {
			return id
		}
	}
}

// reap removes hubs that have been idle since before cutoff.
func (gm *GameManager) reap(cutoff time.Time) int {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	n := 0
	for id, hub := range gm.hubs {
		if hub.idleSince().Before(cutoff) {
			delete(gm.hubs, id)
			hub.close()
			n++
		}
	}
	return n
}

// reaperLoop periodically removes hubs that have been idle longer than idleTimeout.
func (gm *GameManager) reaperLoop() {
	ticker := time.NewTicker(gm.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := gm.reap(time.Now().Add(-gm.idleTimeout)); n > 0 {
				logf(gm.cfg, "GAMES: Reaped %d idle game(s)", n)
			}
		case <-gm.done:
			return
		}
	}
}

// Close ends every game and stops the reaper.
func (gm *GameManager) Close() {
	gm.stop.Do(func() { close(gm.done) })
	gm.reap(time.Now().Add(time.Hour))
}

// WebSocket handler that picks the hub based on :gameid
func serveWSForManager(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID := ps.ByName("gameid")
		if !validGameID(gameID) {
			http.Error(w, "invalid game id", http.StatusBadRequest)
			return
		}

		playerID := getOrSetPlayerID(w, r)
		if playerID == "" {
			http.Error(w, "unable to assign player id", http.StatusInternalServerError)
			return
		}

		hub := gm.getHub(gameID)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ERROR: websocket upgrade for game %s: %v", gameID, err)
			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan any, 16),
			playerID: playerID,
		}

		select {
		case hub.register <- client:
		case <-hub.done:
			_ = conn.Close()
			return
		}

		logf(cfg, "GAMES: Player %s joined game %s from %s", shortID(playerID), gameID, realIP(r))

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "commit":
			select {
			case h.commits <- commitRequest{client: c, word: msg.Word}:
			case <-h.done:
				return
			}
		case "pause", "resume", "reset":
			select {
			case h.controls <- controlRequest{client: c, msg: msg}:
			case <-h.done:
				return
			}
		default:
			// ignore unknown types
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code for the current game URL using go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	gameID := ps.ByName("gameid")
	if !validGameID(gameID) {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../:gameid/qr; strip trailing "/qr" to get the game URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func getIndexHandler(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !validGameID(ps.ByName("gameid")) {
			http.NotFound(w, r)
			return
		}

		data, err := assets.ReadFile("assets/recall/index.html")
		if err != nil {
			errs <- err
			http.Error(w, "page unavailable", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		securityHeaders(cfg, w)

		_ = getOrSetPlayerID(w, r)

		if _, err := w.Write(data); err != nil {
			errs <- err
		}
	}
}

// redirectNewGame handles GET /path by generating a new random game ID
// (with server-side collision detection) and redirecting to /path/:gameid.
func redirectNewGame(cfg *Config, path string, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gameID := gm.newGameID()
		logf(cfg, "GAMES: Created game %s/%s", path, gameID)
		http.Redirect(w, r, cfg.prefix+path+"/"+gameID, http.StatusTemporaryRedirect)
	}
}

// registerRecallGame sets up routes so that:
//   - $path                  → redirects to new random game (8-char ID)
//   - $path/:gameid          → HTML client
//   - $path/:gameid/ws       → WebSocket for that game
//   - $path/:gameid/qr       → PNG QR code for that game URL
func registerRecallGame(cfg *Config, path string, list words.List, mux *httprouter.Router, errs chan<- error) *GameManager {
	gm := newGameManager(cfg, list, cfg.sessionTimeout)

	// Root path → redirect to new random game
	mux.GET(cfg.prefix+path, redirectNewGame(cfg, path, gm))

	// Per-game client view (HTML)
	mux.GET(cfg.prefix+path+"/:gameid", getIndexHandler(cfg, errs))

	// Shared assets (no gameid in route)
	mux.GET(cfg.prefix+"/assets/*filepath", serveAssets(cfg, errs))

	// Per-game websocket
	mux.GET(cfg.prefix+path+"/:gameid/ws", serveWSForManager(cfg, gm))

	// Per-game QR code
	mux.GET(cfg.prefix+path+"/:gameid/qr", qrHandler)

	return gm
}
