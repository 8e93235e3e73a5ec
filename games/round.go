/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import (
	"errors"
	"sync"
	"time"

	"github.com/Seednode/recall/words"
)

const (
	DefaultDuration = 60 * time.Second
	DefaultTitle    = "Romeo and Juliet"
	DefaultAuthor   = "Shakespeare"
)

var (
	ErrRoundOver   = errors.New("round is over")
	ErrRoundPaused = errors.New("round is paused")
)

// Config describes a round.
type Config struct {
	Duration time.Duration
	Title    string
	Author   string
}

func (c Config) withDefaults() Config {
	if c.Duration <= 0 {
		c.Duration = DefaultDuration
	}
	if c.Title == "" {
		c.Title = DefaultTitle
	}
	if c.Author == "" {
		c.Author = DefaultAuthor
	}

	return c
}

// Commit is the outcome of one committed input.
type Commit struct {
	Started bool   // this input started the round
	Matched bool   // a word was recalled
	Result  Result // the rendered result, if Matched
}

// State is a snapshot of a round.
type State struct {
	Total     int
	Duration  time.Duration
	Remaining time.Duration
	Started   bool
	Paused    bool
	Finished  bool
	Results   []Result
	Score     Score
	Message   string
}

// Round is the state of one game: its own copy of the word list, what has
// been recalled so far, and the countdown.
type Round struct {
	mu sync.Mutex

	cfg      Config
	list     words.List
	results  Results
	timer    *Timer
	gen      int
	started  bool
	paused   bool
	finished bool
	score    Score
	total    int
	onExpire func(Score)
}

// NewRound prepares a round over a fresh copy of list. onExpire, if set,
// is called once when the round's time runs out.
func NewRound(list words.List, cfg Config, onExpire func(Score)) *Round {
	r := &Round{
		cfg:      cfg.withDefaults(),
		onExpire: onExpire,
	}
	r.resetLocked(list)

	return r
}

func (r *Round) Config() Config {
	return r.cfg
}

// Commit handles one committed input. The first accepted input starts the
// countdown. Blank input is ignored.
func (r *Round) Commit(candidate string) (Commit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finished || r.timer.Fired() {
		return Commit{}, ErrRoundOver
	}
	if r.paused {
		return Commit{}, ErrRoundPaused
	}
	if words.Normalize(candidate) == "" {
		return Commit{}, nil
	}

	var c Commit
	if !r.started {
		r.startLocked()
		c.Started = true
	}

	e, ok := r.list.Match(candidate)
	if !ok {
		return c, nil
	}
	c.Matched = true
	c.Result = r.results.Render(e.Word, e.Count)

	return c, nil
}

func (r *Round) startLocked() {
	r.started = true
	r.timer.Start()
}

// Expire ends the round and returns its score. Later calls return the same
// score without notifying again.
func (r *Round) Expire() Score {
	r.mu.Lock()
	gen := r.gen
	r.mu.Unlock()

	score, _ := r.expire(gen)

	return score
}

func (r *Round) expire(gen int) (Score, bool) {
	r.mu.Lock()
	if gen != r.gen {
		r.mu.Unlock()
		return Score{}, false
	}
	if r.finished {
		score := r.score
		r.mu.Unlock()
		return score, false
	}

	r.timer.Stop()
	r.started = false
	r.paused = false
	r.finished = true
	r.score = NewScore(r.results.Len(), r.total)
	score := r.score
	notify := r.onExpire
	r.mu.Unlock()

	if notify != nil {
		notify(score)
	}

	return score, true
}

// Pause stops the countdown of a running round.
func (r *Round) Pause() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started || r.finished || r.paused {
		return false
	}
	r.paused = r.timer.Pause()

	return r.paused
}

// Resume continues a paused round.
func (r *Round) Resume() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.paused {
		return false
	}
	if !r.timer.Resume() {
		return false
	}
	r.paused = false

	return true
}

// Reset discards the round and starts over with a fresh copy of list.
func (r *Round) Reset(list words.List) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.timer.Stop()
	r.resetLocked(list)
}

// Close cancels the countdown without scoring the round.
func (r *Round) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.timer.Stop()
	r.gen++
}

func (r *Round) resetLocked(list words.List) {
	r.gen++
	gen := r.gen

	r.list = list.Fresh()
	r.total = r.list.Distinct()
	r.results = Results{}
	r.started = false
	r.paused = false
	r.finished = false
	r.score = Score{}
	r.timer = NewTimer(r.cfg.Duration, func() { r.expire(gen) })
}

// State returns a snapshot of the round.
func (r *Round) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := State{
		Total:     r.total,
		Duration:  r.cfg.Duration,
		Remaining: r.timer.Remaining(),
		Started:   r.started,
		Paused:    r.paused,
		Finished:  r.finished,
		Results:   r.results.Items(),
	}
	if r.finished {
		s.Remaining = 0
		s.Score = r.score
		s.Message = r.score.Message(r.cfg.Title, r.cfg.Author)
	}

	return s
}
