/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import (
	"fmt"
	"math"
	"slices"
)

// Result is a recalled word as shown to the player.
type Result struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Results is the displayed result list, most recent first.
type Results struct {
	items []Result
}

// Render puts word at the front of the list.
func (r *Results) Render(word string, count int) Result {
	res := Result{Word: word, Count: count}
	r.items = slices.Insert(r.items, 0, res)

	return res
}

func (r *Results) Len() int {
	return len(r.items)
}

// Items returns a copy of the list in display order.
func (r *Results) Items() []Result {
	if len(r.items) == 0 {
		return []Result{}
	}

	return slices.Clone(r.items)
}

// Score summarizes a finished round.
type Score struct {
	Matched  int     `json:"matched"`
	Total    int     `json:"total"`
	Coverage float64 `json:"coverage"`
}

func NewScore(matched, total int) Score {
	return Score{
		Matched:  matched,
		Total:    total,
		Coverage: Coverage(matched, total),
	}
}

// Coverage returns matched as a percentage of total, rounded to two
// decimal places.
func Coverage(matched, total int) float64 {
	if total <= 0 {
		return 0
	}

	return math.Round(float64(matched)/float64(total)*10000) / 100
}

// Message renders the end-of-round text for a play by author.
func (s Score) Message(title, author string) string {
	return fmt.Sprintf("Congratulations! You remembered %d words from %s. These are ~ %.2f percent of all unique words %s used to write the play!",
		s.Matched,
		title,
		s.Coverage,
		author,
	)
}
