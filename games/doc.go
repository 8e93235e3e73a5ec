// Package games holds the rules of a recall round.
//
// How to play
// - A word list from a play is loaded once, each word with how often it occurs
// - The player types words they remember from the play, one at a time
// - The first word typed starts the clock (one minute by default)
// - Every recalled word is shown at the top of the list, with its count
// - A word can only be recalled once, and typing it again does nothing
// - When time runs out, no more words are accepted and the player is told how
//   many words they remembered, and what share of the vocabulary that is
//
// Implementation details:
// - A Round owns its own copy of the word list, so rounds never share used flags
// - The countdown is a Timer that can be paused, resumed, or cancelled on reset
// - Rounds are safe for concurrent use, though the web hub serializes access anyway
package games
