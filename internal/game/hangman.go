// internal/game/hangman.go
//
// Hangman: guess a word one letter at a time, or all at once.
//
// Rules:
//   - Input is trimmed and lowercased. Anything that is not a single letter or
//     a word of the target's length is a wasted attempt, not a rejection.
//   - A whole-word guess equal to the target wins at once.
//   - A correct letter reveals every matching position. It still costs an
//     attempt unless it completes the word.
//   - A wrong letter or wrong word costs an attempt.
//   - Repeated guesses are accepted; the message points them out.
//   - The game is lost when attempts reach zero.

package game

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// HangmanAttempts is the attempt budget of a new Hangman game.
const HangmanAttempts = 6

const placeholder = '_'

// Hangman is the word-guess variant.
type Hangman struct {
	sess     Session
	Target   string // Lowercase word.
	Revealed string // Same length as Target, '_' where still hidden.
}

// NewHangman constructs a game for target.
func NewHangman(id, owner, target string, now time.Time) *Hangman {
	target = strings.ToLower(target)
	return &Hangman{
		sess: Session{
			ID:                id,
			Owner:             owner,
			Kind:              KindHangman,
			AttemptsAllowed:   HangmanAttempts,
			AttemptsRemaining: HangmanAttempts,
			History:           []string{},
			CreatedAt:         now.UTC(),
		},
		Target:   target,
		Revealed: strings.Repeat(string(placeholder), len(target)),
	}
}

// ApplyGuess applies one guess. A terminal session fails with ErrGameOver and
// is left untouched.
func (h *Hangman) ApplyGuess(m Move) (Result, error) {
	if h.sess.Terminal() {
		return Result{}, ErrGameOver
	}
	guess := strings.ToLower(strings.TrimSpace(m.Input))
	switch {
	case !isLetters(guess) || (len(guess) != 1 && len(guess) != len(h.Target)):
		return h.miss(guess, m.At, fmt.Sprintf(
			"Please enter valid input: a single letter or a %d-letter word. ", len(h.Target))), nil
	case len(guess) == len(h.Target):
		return h.guessWord(guess, m.At), nil
	default:
		return h.guessLetter(guess, m.At), nil
	}
}

func (h *Hangman) guessWord(guess string, at time.Time) Result {
	if guess == h.Target {
		h.sess.record(guess)
		h.Revealed = h.Target
		return conclude(&h.sess, true, at, h.winMessage())
	}
	return h.miss(guess, at, fmt.Sprintf("%s is not the word. ", guess))
}

func (h *Hangman) guessLetter(c string, at time.Time) Result {
	repeat := slices.Contains(h.sess.History, c)
	if !strings.Contains(h.Target, c) {
		return h.miss(c, at, repeatNote(repeat, c)+c+" is not in the target. ")
	}

	h.reveal(c[0])
	h.sess.record(c)
	if h.Revealed == h.Target {
		return conclude(&h.sess, true, at, h.winMessage())
	}
	h.sess.spend()
	if h.sess.exhausted() {
		return conclude(&h.sess, false, at, h.loseMessage())
	}
	return proceed(repeatNote(repeat, c) + "You got it! " + h.status())
}

// miss spends an attempt on a guess that revealed nothing.
func (h *Hangman) miss(guess string, at time.Time, prefix string) Result {
	h.sess.spend()
	h.sess.record(guess)
	if h.sess.exhausted() {
		return conclude(&h.sess, false, at, h.loseMessage())
	}
	return proceed(prefix + h.status())
}

func (h *Hangman) reveal(c byte) {
	b := []byte(h.Revealed)
	for i := 0; i < len(h.Target); i++ {
		if h.Target[i] == c {
			b[i] = c
		}
	}
	h.Revealed = string(b)
}

func (h *Hangman) status() string {
	return fmt.Sprintf("Current state is %s, history is [%s].", h.Revealed, strings.Join(h.sess.History, ", "))
}

func (h *Hangman) winMessage() string  { return fmt.Sprintf("You win! The target was %s.", h.Target) }
func (h *Hangman) loseMessage() string { return fmt.Sprintf("You lose! The target was %s.", h.Target) }

// IsOver reports whether the game was won or lost.
func (h *Hangman) IsOver() bool { return h.sess.Over }

// Session exposes the shared fields.
func (h *Hangman) Session() *Session { return &h.sess }

// Snapshot returns a detached copy.
func (h *Hangman) Snapshot() Snapshot {
	return Snapshot{Session: h.sess.clone(), Target: h.Target, Revealed: h.Revealed}
}

// Welcome describes the word to guess.
func (h *Hangman) Welcome() string {
	return fmt.Sprintf("You got %s, a word with %d letters. Guess the word!", h.Revealed, len(h.Target))
}

func repeatNote(repeat bool, c string) string {
	if !repeat {
		return ""
	}
	return fmt.Sprintf("You already guessed '%s'. ", c)
}

// isLetters reports whether s is non-empty and all lowercase a–z.
func isLetters(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
