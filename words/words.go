/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package words holds the known vocabulary of a play and the lookup used to
// recall it. Entries carry their frequency count and a used flag that flips
// at most once per round.
package words

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Entry is one known word with the number of times it occurs in the play.
type Entry struct {
	Word  string `json:"word" yaml:"word"`
	Count int    `json:"count" yaml:"count"`
	Used  bool   `json:"-" yaml:"-"`
}

// List is an ordered word list. Only the Used flag of its entries changes
// after load.
type List []Entry

// Normalize trims surrounding whitespace and lowercases s.
func Normalize(s string) string {
	// cases.Caser is stateful, so each call gets its own.
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

// Match looks up candidate and marks the entry as used on success.
//
// The scan stops at the first entry whose text equals the normalized
// candidate. If that entry has already been used there is no match, so a
// word listed twice can still only be recalled once.
func (l List) Match(candidate string) (Entry, bool) {
	word := Normalize(candidate)
	if word == "" {
		return Entry{}, false
	}

	for i := range l {
		if l[i].Word != word {
			continue
		}
		if l[i].Used {
			return Entry{}, false
		}
		l[i].Used = true

		return l[i], true
	}

	return Entry{}, false
}

// Fresh returns an independent, normalized copy of l with every entry unused.
func (l List) Fresh() List {
	out := make(List, len(l))
	for i, e := range l {
		out[i] = Entry{Word: Normalize(e.Word), Count: e.Count}
	}

	return out
}

// Distinct counts the different words in l. Only the first entry for a word
// can be matched, so this is the number of words a player can recall.
func (l List) Distinct() int {
	seen := make(map[string]struct{}, len(l))
	for _, e := range l {
		if w := Normalize(e.Word); w != "" {
			seen[w] = struct{}{}
		}
	}

	return len(seen)
}

// UsedCount reports how many entries have been matched.
func (l List) UsedCount() int {
	n := 0
	for _, e := range l {
		if e.Used {
			n++
		}
	}

	return n
}
