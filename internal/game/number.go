// internal/game/number.go
//
// Guess-a-Number: find three distinct digits in order.
//
// Each guess is judged as strikes (right digit, right place) and balls (digit
// present elsewhere). Every guess costs an attempt, including the winning one.
//
//	Target 234:  234 → 3 strike (win)   235 → 2 strike 0 ball
//	             423 → 0 strike 3 ball  782 → 0 strike 1 ball

package game

import (
	"fmt"
	"slices"
	"time"
)

// NumberAttempts is the attempt budget of a new Guess-a-Number game.
const NumberAttempts = 10

// consumed replaces a strike-matched target digit so it cannot count as a ball.
const consumed = -1

// NumberGuess is the digit-guess variant.
type NumberGuess struct {
	sess   Session
	Target [3]int
}

// NewNumberGuess constructs a game for target.
func NewNumberGuess(id, owner string, target [3]int, now time.Time) *NumberGuess {
	return &NumberGuess{
		sess: Session{
			ID:                id,
			Owner:             owner,
			Kind:              KindNumber,
			AttemptsAllowed:   NumberAttempts,
			AttemptsRemaining: NumberAttempts,
			History:           []string{},
			CreatedAt:         now.UTC(),
		},
		Target: target,
	}
}

// ApplyGuess judges a three-digit guess. On a terminal session it returns a
// no-op result and leaves the state untouched.
func (n *NumberGuess) ApplyGuess(m Move) (Result, error) {
	if n.sess.Terminal() {
		return Result{Outcome: OutcomeNoop, Message: "Game already over!"}, nil
	}
	if len(m.Digits) != 3 {
		return Result{}, fmt.Errorf("%w: want 3 digits, got %d", ErrInvalidMove, len(m.Digits))
	}
	var guess [3]int
	for i, d := range m.Digits {
		if d < 0 || d > 9 {
			return Result{}, fmt.Errorf("%w: digit %d out of range", ErrInvalidMove, d)
		}
		guess[i] = d
	}

	strike, ball := Judge(n.Target, guess)
	n.sess.spend()
	n.sess.record(fmt.Sprintf("Guess: %d%d%d, result: %d strike and %d ball",
		guess[0], guess[1], guess[2], strike, ball))

	if strike == 3 {
		return conclude(&n.sess, true, m.At, "You win!"), nil
	}
	msg := fmt.Sprintf("%d strike and %d ball!", strike, ball)
	if n.sess.exhausted() {
		return conclude(&n.sess, false, m.At, msg+" Game over!"), nil
	}
	return proceed(msg), nil
}

// Judge counts strikes and balls of guess against target.
func Judge(target, guess [3]int) (strike, ball int) {
	left := target
	for i := range guess {
		if guess[i] == left[i] {
			strike++
			left[i] = consumed
		}
	}
	for i, d := range guess {
		if target[i] == d {
			continue
		}
		if slices.Contains(left[:], d) {
			ball++
		}
	}
	return strike, ball
}

// IsOver reports whether the game was won or lost.
func (n *NumberGuess) IsOver() bool { return n.sess.Over }

// Session exposes the shared fields.
func (n *NumberGuess) Session() *Session { return &n.sess }

// Snapshot returns a detached copy.
func (n *NumberGuess) Snapshot() Snapshot {
	return Snapshot{Session: n.sess.clone(), Digits: []int{n.Target[0], n.Target[1], n.Target[2]}}
}

// Welcome greets the player.
func (n *NumberGuess) Welcome() string { return "Good luck playing Guess a Number!" }
