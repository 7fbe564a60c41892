// internal/game/engine.go
//
// Engine is the capability both variants implement. The engine is pure:
// it mutates in-memory state and returns effects, it never touches storage.
//
// Notes:
//   - Source supplies targets (see the words package); tests inject fixed ones.
//   - Restore rebuilds a variant from a Snapshot loaded by a store.
package game

import (
	"fmt"
	"strings"
	"time"
)

// Engine is implemented by *Hangman and *NumberGuess.
type Engine interface {
	// ApplyGuess runs one transition.
	ApplyGuess(m Move) (Result, error)
	// IsOver reports whether the game finished with a win or loss.
	IsOver() bool
	// Snapshot returns a detached copy of the state.
	Snapshot() Snapshot
	// Session exposes the shared fields for in-place transitions (cancel).
	Session() *Session
	// Welcome is the message shown when the game starts.
	Welcome() string
}

// Source supplies random targets for new games.
type Source interface {
	Word() string
	Digits() [3]int
}

// New starts a game of the given kind.
func New(kind Kind, id, owner string, src Source, now time.Time) (Engine, error) {
	switch kind {
	case KindHangman:
		return NewHangman(id, owner, src.Word(), now), nil
	case KindNumber:
		return NewNumberGuess(id, owner, src.Digits(), now), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Restore rebuilds the variant described by s.
func Restore(s Snapshot) (Engine, error) {
	sess := s.Session.clone()
	switch s.Kind {
	case KindHangman:
		if s.Target == "" || len(s.Revealed) != len(s.Target) {
			return nil, fmt.Errorf("restore hangman %s: revealed/target mismatch", s.ID)
		}
		return &Hangman{sess: sess, Target: strings.ToLower(s.Target), Revealed: s.Revealed}, nil
	case KindNumber:
		if len(s.Digits) != 3 {
			return nil, fmt.Errorf("restore number %s: want 3 digits, got %d", s.ID, len(s.Digits))
		}
		return &NumberGuess{sess: sess, Target: [3]int{s.Digits[0], s.Digits[1], s.Digits[2]}}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
}
