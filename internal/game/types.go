// internal/game/types.go
//
// Core type definitions for the guessing game engines.
// Defines:
//   - Kind: which game a session plays (hangman / number).
//   - Session: state shared by every game variant.
//   - Move, Result, Outcome, Effect: the input and output of one transition.
//   - Score: the record emitted when a session terminates.
//   - Snapshot: flat, copyable form of any variant (persistence + API).

package game

import (
	"errors"
	"time"
)

// Kind identifies a game variant.
type Kind string

const (
	KindHangman Kind = "hangman"
	KindNumber  Kind = "number"
)

// Kinds lists every supported variant in a stable order.
var Kinds = []Kind{KindHangman, KindNumber}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindHangman, KindNumber:
		return Kind(s), nil
	}
	return "", ErrUnknownKind
}

var (
	// ErrGameOver is returned when a move targets a session that is over or cancelled.
	ErrGameOver = errors.New("game is already over")
	// ErrNotCancellable is returned by Cancel on a terminal session.
	ErrNotCancellable = errors.New("game cannot be cancelled")
	// ErrInvalidMove is returned for a payload the engine cannot interpret at all.
	ErrInvalidMove = errors.New("invalid move")
	// ErrUnknownKind is returned for an unsupported game kind.
	ErrUnknownKind = errors.New("unknown game kind")
)

// Session holds the fields every game variant shares.
type Session struct {
	ID                string    // Opaque handle issued at creation.
	Owner             string    // User ID of the player.
	Kind              Kind      // Which engine drives this session.
	AttemptsAllowed   int       // Fixed budget for the game.
	AttemptsRemaining int       // Counts down; never negative.
	History           []string  // Every guess, in order.
	Over              bool      // True once won or lost.
	Won               bool      // True if Over via a win.
	Cancelled         bool      // True if abandoned before Over.
	CreatedAt         time.Time // Creation time (UTC).
}

// Terminal reports whether no further guesses may be applied.
func (s *Session) Terminal() bool { return s.Over || s.Cancelled }

// Move is a decoded guess. Hangman reads Input, number-guess reads Digits.
// At stamps any Score the move produces; zero means time.Now().
type Move struct {
	Input  string
	Digits []int
	At     time.Time
}

// Outcome summarises what a move did to the session.
type Outcome string

const (
	OutcomeContinue Outcome = "continue"
	OutcomeWon      Outcome = "won"
	OutcomeLost     Outcome = "lost"
	OutcomeNoop     Outcome = "noop"
)

// EffectKind names a side effect the caller must carry out.
type EffectKind int

const (
	EffectSaveSession EffectKind = iota + 1
	EffectEmitScore
)

// Effect is an intent produced by a transition. Score is set for EffectEmitScore.
type Effect struct {
	Kind  EffectKind
	Score *Score
}

// Result is the outcome of one transition plus the side effects to execute.
type Result struct {
	Outcome Outcome
	Message string
	Effects []Effect
}

// Score is created exactly once, when a session is won or lost.
type Score struct {
	ID      string    // Assigned by the store.
	Owner   string    // User ID.
	Kind    Kind      // Game variant.
	Date    time.Time // Day of termination (UTC midnight).
	Won     bool
	Guesses int // AttemptsAllowed - AttemptsRemaining at termination.
}

// Snapshot is a detached copy of a session and its variant state.
type Snapshot struct {
	Session
	Target   string // Hangman word.
	Revealed string // Hangman masked word.
	Digits   []int  // Number-guess target.
}
