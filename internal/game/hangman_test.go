package game

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC)

func move(input string) Move { return Move{Input: input, At: testNow} }

func scoreOf(t *testing.T, r Result) *Score {
	t.Helper()
	var found *Score
	for _, e := range r.Effects {
		if e.Kind == EffectEmitScore {
			if found != nil {
				t.Fatalf("more than one score effect: %+v", r.Effects)
			}
			found = e.Score
		}
	}
	return found
}

func TestHangmanLettersRevealAndWin(t *testing.T) {
	h := NewHangman("g1", "u1", "apple", testNow)
	for _, c := range []string{"a", "p", "l"} {
		r, err := h.ApplyGuess(move(c))
		if err != nil {
			t.Fatalf("guess %s: %v", c, err)
		}
		if r.Outcome != OutcomeContinue {
			t.Fatalf("guess %s: outcome %s", c, r.Outcome)
		}
		if scoreOf(t, r) != nil {
			t.Fatalf("guess %s: unexpected score", c)
		}
	}
	if h.Revealed != "appl_" {
		t.Fatalf("revealed = %q, want appl_", h.Revealed)
	}
	// Correct letters still cost an attempt.
	if got := h.Session().AttemptsRemaining; got != 3 {
		t.Fatalf("attempts remaining = %d, want 3", got)
	}

	r, err := h.ApplyGuess(move("E"))
	if err != nil {
		t.Fatal(err)
	}
	if r.Outcome != OutcomeWon || !h.IsOver() || !h.Session().Won {
		t.Fatalf("expected win, got %s (over=%v)", r.Outcome, h.IsOver())
	}
	if h.Revealed != "apple" {
		t.Fatalf("revealed = %q", h.Revealed)
	}
	// The completing letter is free.
	if got := h.Session().AttemptsRemaining; got != 3 {
		t.Fatalf("attempts remaining = %d, want 3", got)
	}
	s := scoreOf(t, r)
	if s == nil || !s.Won || s.Guesses != 3 || s.Owner != "u1" || s.Kind != KindHangman {
		t.Fatalf("score = %+v", s)
	}
	if want := []string{"a", "p", "l", "e"}; strings.Join(h.Session().History, ",") != strings.Join(want, ",") {
		t.Fatalf("history = %v", h.Session().History)
	}
}

func TestHangmanCoveringAllLettersWins(t *testing.T) {
	for _, word := range []string{"student", "teacher", "pineapple", "apple", "flower"} {
		t.Run(word, func(t *testing.T) {
			h := NewHangman("g", "u", word, testNow)
			seen := map[rune]bool{}
			var r Result
			for _, c := range word {
				if seen[c] {
					continue
				}
				seen[c] = true
				var err error
				r, err = h.ApplyGuess(move(string(c)))
				if err != nil {
					t.Fatal(err)
				}
			}
			if r.Outcome != OutcomeWon || h.Revealed != word || !h.IsOver() {
				t.Fatalf("outcome=%s revealed=%q over=%v", r.Outcome, h.Revealed, h.IsOver())
			}
		})
	}
}

func TestHangmanFullWordWinsImmediately(t *testing.T) {
	h := NewHangman("g", "u", "flower", testNow)
	r, err := h.ApplyGuess(move(" Flower "))
	if err != nil {
		t.Fatal(err)
	}
	if r.Outcome != OutcomeWon || h.Revealed != "flower" {
		t.Fatalf("outcome=%s revealed=%q", r.Outcome, h.Revealed)
	}
	s := scoreOf(t, r)
	if s == nil || s.Guesses != 0 {
		t.Fatalf("score = %+v, want 0 guesses", s)
	}
	if s.Date != time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("score date = %v", s.Date)
	}
}

func TestHangmanFullWordWinsOnLastAttempt(t *testing.T) {
	h := NewHangman("g", "u", "apple", testNow)
	h.Session().AttemptsRemaining = 1
	r, err := h.ApplyGuess(move("apple"))
	if err != nil {
		t.Fatal(err)
	}
	if r.Outcome != OutcomeWon {
		t.Fatalf("outcome = %s", r.Outcome)
	}
}

func TestHangmanWastedAttempts(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"empty", "", "valid input"},
		{"digit", "7", "valid input"},
		{"punctuation", "!", "valid input"},
		{"wrong length word", "ab", "valid input"},
		{"wrong word", "grape", "not the word"},
		{"missing letter", "z", "not in the target"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHangman("g", "u", "apple", testNow)
			r, err := h.ApplyGuess(move(tt.input))
			if err != nil {
				t.Fatal(err)
			}
			if r.Outcome != OutcomeContinue {
				t.Fatalf("outcome = %s", r.Outcome)
			}
			if !strings.Contains(r.Message, tt.msg) {
				t.Fatalf("message %q does not contain %q", r.Message, tt.msg)
			}
			if got := h.Session().AttemptsRemaining; got != HangmanAttempts-1 {
				t.Fatalf("attempts remaining = %d", got)
			}
			if h.Revealed != "_____" {
				t.Fatalf("revealed = %q", h.Revealed)
			}
			if len(h.Session().History) != 1 {
				t.Fatalf("history = %v", h.Session().History)
			}
		})
	}
}

func TestHangmanLosesWhenAttemptsRunOut(t *testing.T) {
	h := NewHangman("g", "u", "apple", testNow)
	prev := h.Session().AttemptsRemaining
	var r Result
	for i, c := range []string{"z", "1", "y", "x", "w", "v"} {
		var err error
		r, err = h.ApplyGuess(move(c))
		if err != nil {
			t.Fatalf("guess %d: %v", i, err)
		}
		cur := h.Session().AttemptsRemaining
		if cur > prev || cur < 0 {
			t.Fatalf("attempts went from %d to %d", prev, cur)
		}
		prev = cur
	}
	if r.Outcome != OutcomeLost || !h.IsOver() || h.Session().Won {
		t.Fatalf("outcome=%s over=%v", r.Outcome, h.IsOver())
	}
	if !strings.Contains(r.Message, "apple") {
		t.Fatalf("loss message should reveal target: %q", r.Message)
	}
	s := scoreOf(t, r)
	if s == nil || s.Won || s.Guesses != HangmanAttempts {
		t.Fatalf("score = %+v", s)
	}
	if h.Session().AttemptsRemaining != 0 {
		t.Fatalf("attempts remaining = %d", h.Session().AttemptsRemaining)
	}
}

func TestHangmanCorrectLetterCanExhaustAttempts(t *testing.T) {
	h := NewHangman("g", "u", "student", testNow)
	h.Session().AttemptsRemaining = 1
	r, err := h.ApplyGuess(move("s"))
	if err != nil {
		t.Fatal(err)
	}
	if r.Outcome != OutcomeLost {
		t.Fatalf("outcome = %s", r.Outcome)
	}
	if h.Revealed != "s______" {
		t.Fatalf("revealed = %q", h.Revealed)
	}
}

func TestHangmanRepeatIsAcceptedAndFlagged(t *testing.T) {
	h := NewHangman("g", "u", "apple", testNow)
	if _, err := h.ApplyGuess(move("p")); err != nil {
		t.Fatal(err)
	}
	r, err := h.ApplyGuess(move("p"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(r.Message, "already guessed") {
		t.Fatalf("message = %q", r.Message)
	}
	if got := h.Session().AttemptsRemaining; got != HangmanAttempts-2 {
		t.Fatalf("attempts remaining = %d", got)
	}
	if len(h.Session().History) != 2 {
		t.Fatalf("history = %v", h.Session().History)
	}
}

func TestHangmanRejectsMovesOnTerminalSession(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mutate func(*Session)
	}{
		{"over", func(s *Session) { s.Over = true }},
		{"cancelled", func(s *Session) { s.Cancelled = true }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHangman("g", "u", "apple", testNow)
			tc.mutate(h.Session())
			before := h.Snapshot()
			_, err := h.ApplyGuess(move("a"))
			if !errors.Is(err, ErrGameOver) {
				t.Fatalf("err = %v, want ErrGameOver", err)
			}
			after := h.Snapshot()
			if after.AttemptsRemaining != before.AttemptsRemaining || len(after.History) != 0 || after.Revealed != before.Revealed {
				t.Fatalf("state mutated: %+v", after)
			}
		})
	}
}
