package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/guessgames/internal/store"
)

const reminderSubject = "This is a reminder!"

// Reminder emails every user who has a game in progress.
type Reminder struct {
	Store  store.Store
	Mailer Mailer
}

// Report summarises one reminder run.
type Report struct {
	Eligible int // users with an email and an active game
	Sent     int
	Failed   int
}

// Run scans active sessions of every kind and mails each owner once.
// A failed send is logged and counted; the run carries on.
func (r *Reminder) Run(ctx context.Context) (Report, error) {
	var rep Report
	active, err := r.Store.ActiveGames(ctx, "")
	if err != nil {
		return rep, fmt.Errorf("list active games: %w", err)
	}

	seen := make(map[string]bool)
	for _, g := range active {
		if seen[g.Owner] {
			continue
		}
		seen[g.Owner] = true

		u, err := r.Store.UserByID(ctx, g.Owner)
		if err != nil {
			log.Warn().Err(err).Str("user_id", g.Owner).Msg("reminder: owner lookup failed")
			continue
		}
		if u.Email == "" {
			continue
		}
		rep.Eligible++

		body := fmt.Sprintf("Hello %s, you have a game in progress. Come back and finish it!", u.Name)
		if err := r.Mailer.Send(ctx, u.Email, reminderSubject, body); err != nil {
			rep.Failed++
			log.Error().Err(err).Str("user", u.Name).Msg("reminder: send failed")
			continue
		}
		rep.Sent++
	}
	return rep, nil
}
