// internal/game/session.go
//
// Rules shared by every variant: spending attempts, recording history,
// termination (the only producer of Score), cancellation and the
// average-attempts statistic.

package game

import (
	"fmt"
	"time"
)

// spend consumes one attempt, clamped at zero.
func (s *Session) spend() {
	if s.AttemptsRemaining > 0 {
		s.AttemptsRemaining--
	}
}

func (s *Session) exhausted() bool { return s.AttemptsRemaining <= 0 }

func (s *Session) record(entry string) { s.History = append(s.History, entry) }

func (s *Session) clone() Session {
	c := *s
	c.History = append([]string(nil), s.History...)
	return c
}

// EndGame marks the session over and returns the effects to persist it and
// emit its Score. Callers must reach it at most once per session.
func EndGame(s *Session, won bool, at time.Time) []Effect {
	if at.IsZero() {
		at = time.Now()
	}
	s.Over = true
	s.Won = won
	score := &Score{
		Owner:   s.Owner,
		Kind:    s.Kind,
		Date:    day(at),
		Won:     won,
		Guesses: s.AttemptsAllowed - s.AttemptsRemaining,
	}
	return []Effect{{Kind: EffectSaveSession}, {Kind: EffectEmitScore, Score: score}}
}

// Cancel flags a live session as cancelled. No Score is emitted.
func Cancel(s *Session) ([]Effect, error) {
	if s.Terminal() {
		return nil, ErrNotCancellable
	}
	s.Cancelled = true
	return []Effect{{Kind: EffectSaveSession}}, nil
}

// ComputeAverage returns the mean AttemptsRemaining over the non-terminal
// sessions given. ok is false when there are none.
func ComputeAverage(sessions []Session) (avg float64, ok bool) {
	var sum, n int
	for i := range sessions {
		if sessions[i].Terminal() {
			continue
		}
		sum += sessions[i].AttemptsRemaining
		n++
	}
	if n == 0 {
		return 0, false
	}
	return float64(sum) / float64(n), true
}

// FormatAverage renders the cached statistic string.
func FormatAverage(avg float64) string {
	return fmt.Sprintf("The average moves remaining is %.2f", avg)
}

func conclude(s *Session, won bool, at time.Time, msg string) Result {
	out := OutcomeLost
	if won {
		out = OutcomeWon
	}
	return Result{Outcome: out, Message: msg, Effects: EndGame(s, won, at)}
}

func proceed(msg string) Result {
	return Result{Outcome: OutcomeContinue, Message: msg, Effects: []Effect{{Kind: EffectSaveSession}}}
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
