// internal/store/store.go
//
// Persistence for users, game sessions and scores.
//
// Implementations:
//   - memory (this package): maps behind an RWMutex, lost on restart.
//   - SQL (sql.go): sqlite / postgres / mysql through database/sql.
//
// UpdateGame is the only way to change a stored session. It loads the
// session, runs the engine transition and executes the returned effects as
// one atomic step, so two concurrent moves on the same handle cannot lose
// an update and a Score is never written without its terminal session.

package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/guessgames/internal/game"
)

var (
	// ErrNotFound is returned for unknown users or handles.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a user name is already taken.
	ErrConflict = errors.New("already exists")
)

// User is a registered player.
type User struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// ScoreQuery filters and orders Scores. Zero values mean "any" / "no limit".
type ScoreQuery struct {
	Kind           game.Kind
	OwnerID        string
	OrderByGuesses bool // ascending; ties keep insertion order
	Limit          int
}

// Mutator runs an engine transition and returns the effects to persist.
// Returning an error aborts the update without writing anything.
type Mutator func(e game.Engine) ([]game.Effect, error)

// Store defines the persistence interface.
type Store interface {
	// CreateUser registers a user; ErrConflict if the name is taken.
	CreateUser(ctx context.Context, name, email string) (*User, error)
	UserByName(ctx context.Context, name string) (*User, error)
	UserByID(ctx context.Context, id string) (*User, error)
	// Users lists every user in creation order.
	Users(ctx context.Context) ([]User, error)

	// CreateGame persists a new session.
	CreateGame(ctx context.Context, s game.Snapshot) error
	// Game loads a session by handle; ErrNotFound if missing.
	Game(ctx context.Context, id string) (game.Snapshot, error)
	// GamesByOwner lists a user's sessions of kind, oldest first.
	GamesByOwner(ctx context.Context, ownerID string, kind game.Kind, activeOnly bool) ([]game.Snapshot, error)
	// ActiveGames lists non-terminal sessions; an empty kind means all kinds.
	ActiveGames(ctx context.Context, kind game.Kind) ([]game.Snapshot, error)
	// UpdateGame applies fn to the session under a per-handle guard.
	UpdateGame(ctx context.Context, id string, fn Mutator) error

	// Scores lists scores matching q.
	Scores(ctx context.Context, q ScoreQuery) ([]game.Score, error)
}

// NewID returns a fresh opaque handle.
func NewID() string { return uuid.NewString() }

func active(s *game.Session) bool { return !s.Terminal() }
