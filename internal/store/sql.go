// internal/store/sql.go
//
// SQL implementation of Store over database.DB (sqlite, postgres, mysql).
//
// Notes:
//   - Timestamps are fixed-width UTC text so they sort lexically.
//   - History is a JSON array in a TEXT column.
//   - Number-guess targets are stored as their digit string ("234").
//   - UpdateGame runs in one transaction; postgres/mysql lock the row with
//     SELECT ... FOR UPDATE, sqlite serialises writers itself.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robalobadob/guessgames/internal/database"
	"github.com/robalobadob/guessgames/internal/game"
)

const (
	timeLayout = "2006-01-02T15:04:05.000000000Z"
	dateLayout = "2006-01-02"
)

const gameColumns = `id, kind, user_id, target, revealed, attempts_allowed, attempts_remaining,
	history, game_over, won, cancelled, created_at`

// SQL is a database-backed Store.
type SQL struct {
	db  *database.DB
	now func() time.Time
}

// NewSQL wraps an open, migrated database.
func NewSQL(db *database.DB) *SQL {
	return &SQL{db: db, now: time.Now}
}

var _ Store = (*SQL)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

// ------------------------------- users -------------------------------------

func (s *SQL) CreateUser(ctx context.Context, name, email string) (*User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, s.db.Rebind(`SELECT 1 FROM users WHERE name=?`), name).Scan(&exists)
	if err == nil {
		return nil, ErrConflict
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check user: %w", err)
	}

	u := &User{ID: NewID(), Name: name, Email: email, CreatedAt: s.now().UTC()}
	if _, err := tx.ExecContext(ctx, s.db.Rebind(`INSERT INTO users (id, name, email, created_at) VALUES (?,?,?,?)`),
		u.ID, u.Name, u.Email, u.CreatedAt.Format(timeLayout)); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *SQL) UserByName(ctx context.Context, name string) (*User, error) {
	row := s.db.QueryRowContext(ctx, s.db.Rebind(`SELECT id, name, email, created_at FROM users WHERE name=?`), name)
	return scanUser(row)
}

func (s *SQL) UserByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, s.db.Rebind(`SELECT id, name, email, created_at FROM users WHERE id=?`), id)
	return scanUser(row)
}

func (s *SQL) Users(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, email, created_at FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func scanUser(row rowScanner) (*User, error) {
	var u User
	var created string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.CreatedAt, _ = time.Parse(timeLayout, created)
	return &u, nil
}

// ------------------------------- games -------------------------------------

func (s *SQL) CreateGame(ctx context.Context, g game.Snapshot) error {
	target, history, err := encodeGame(g)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO games (`+gameColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`),
		g.ID, string(g.Kind), g.Owner, target, g.Revealed, g.AttemptsAllowed, g.AttemptsRemaining,
		history, g.Over, g.Won, g.Cancelled, g.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

func (s *SQL) Game(ctx context.Context, id string) (game.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, s.db.Rebind(`SELECT `+gameColumns+` FROM games WHERE id=?`), id)
	return scanGame(row)
}

func (s *SQL) GamesByOwner(ctx context.Context, ownerID string, kind game.Kind, activeOnly bool) ([]game.Snapshot, error) {
	q := `SELECT ` + gameColumns + ` FROM games WHERE user_id=?`
	args := []any{ownerID}
	if kind != "" {
		q += ` AND kind=?`
		args = append(args, string(kind))
	}
	if activeOnly {
		q += ` AND game_over=? AND cancelled=?`
		args = append(args, false, false)
	}
	return s.queryGames(ctx, q+` ORDER BY created_at, id`, args...)
}

func (s *SQL) ActiveGames(ctx context.Context, kind game.Kind) ([]game.Snapshot, error) {
	q := `SELECT ` + gameColumns + ` FROM games WHERE game_over=? AND cancelled=?`
	args := []any{false, false}
	if kind != "" {
		q += ` AND kind=?`
		args = append(args, string(kind))
	}
	return s.queryGames(ctx, q+` ORDER BY created_at, id`, args...)
}

func (s *SQL) queryGames(ctx context.Context, q string, args ...any) ([]game.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []game.Snapshot{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *SQL) UpdateGame(ctx context.Context, id string, fn Mutator) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, s.db.Rebind(`SELECT `+gameColumns+` FROM games WHERE id=?`+s.db.ForUpdate()), id)
	snap, err := scanGame(row)
	if err != nil {
		return err
	}
	e, err := game.Restore(snap)
	if err != nil {
		return err
	}
	effects, err := fn(e)
	if err != nil {
		return err
	}

	for _, eff := range effects {
		switch eff.Kind {
		case game.EffectSaveSession:
			if err := s.saveGame(ctx, tx, e.Snapshot()); err != nil {
				return err
			}
		case game.EffectEmitScore:
			sc := eff.Score
			if _, err := tx.ExecContext(ctx, s.db.Rebind(`INSERT INTO scores (id, user_id, kind, played_on, won, guesses, created_at)
				VALUES (?,?,?,?,?,?,?)`),
				NewID(), sc.Owner, string(sc.Kind), sc.Date.Format(dateLayout), sc.Won, sc.Guesses,
				s.now().UTC().Format(timeLayout)); err != nil {
				return fmt.Errorf("insert score: %w", err)
			}
		}
	}
	return tx.Commit()
}

func (s *SQL) saveGame(ctx context.Context, tx *sql.Tx, g game.Snapshot) error {
	_, history, err := encodeGame(g)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, s.db.Rebind(`UPDATE games
		SET revealed=?, attempts_remaining=?, history=?, game_over=?, won=?, cancelled=?
		WHERE id=?`),
		g.Revealed, g.AttemptsRemaining, history, g.Over, g.Won, g.Cancelled, g.ID)
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	return nil
}

func encodeGame(g game.Snapshot) (target, history string, err error) {
	target = g.Target
	if g.Kind == game.KindNumber {
		var b strings.Builder
		for _, d := range g.Digits {
			b.WriteString(strconv.Itoa(d))
		}
		target = b.String()
	}
	h := g.History
	if h == nil {
		h = []string{}
	}
	raw, err := json.Marshal(h)
	if err != nil {
		return "", "", fmt.Errorf("encode history: %w", err)
	}
	return target, string(raw), nil
}

func scanGame(row rowScanner) (game.Snapshot, error) {
	var (
		g                game.Snapshot
		kind, target     string
		history, created string
	)
	err := row.Scan(&g.ID, &kind, &g.Owner, &target, &g.Revealed, &g.AttemptsAllowed, &g.AttemptsRemaining,
		&history, &g.Over, &g.Won, &g.Cancelled, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return game.Snapshot{}, ErrNotFound
		}
		return game.Snapshot{}, err
	}
	g.Kind = game.Kind(kind)
	g.CreatedAt, _ = time.Parse(timeLayout, created)
	if err := json.Unmarshal([]byte(history), &g.History); err != nil {
		return game.Snapshot{}, fmt.Errorf("decode history of %s: %w", g.ID, err)
	}
	if g.Kind == game.KindNumber {
		for _, r := range target {
			g.Digits = append(g.Digits, int(r-'0'))
		}
	} else {
		g.Target = target
	}
	return g, nil
}

// ------------------------------- scores ------------------------------------

func (s *SQL) Scores(ctx context.Context, q ScoreQuery) ([]game.Score, error) {
	query := `SELECT id, user_id, kind, played_on, won, guesses FROM scores WHERE 1=1`
	var args []any
	if q.Kind != "" {
		query += ` AND kind=?`
		args = append(args, string(q.Kind))
	}
	if q.OwnerID != "" {
		query += ` AND user_id=?`
		args = append(args, q.OwnerID)
	}
	if q.OrderByGuesses {
		query += ` ORDER BY guesses ASC, created_at ASC, id ASC`
	} else {
		query += ` ORDER BY created_at ASC, id ASC`
	}
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []game.Score{}
	for rows.Next() {
		var (
			sc         game.Score
			kind, date string
		)
		if err := rows.Scan(&sc.ID, &sc.Owner, &kind, &date, &sc.Won, &sc.Guesses); err != nil {
			return nil, err
		}
		sc.Kind = game.Kind(kind)
		sc.Date, _ = time.Parse(dateLayout, date)
		out = append(out, sc)
	}
	return out, rows.Err()
}
