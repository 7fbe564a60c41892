// internal/store/memory.go
//
// In-memory implementation of Store.
// Used for tests and for running without a database.
//
// Characteristics:
//   - Sessions are stored as detached Snapshots, never as live engines.
//   - Concurrency-safe via RWMutex; UpdateGame holds the write lock for the
//     whole read-modify-write.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/robalobadob/guessgames/internal/game"
)

type memory struct {
	mu     sync.RWMutex
	users  []User
	byName map[string]int           // name → index in users
	games  map[string]game.Snapshot // keyed by Session.ID
	order  []string                 // game IDs in creation order
	scores []game.Score
	now    func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{
		byName: make(map[string]int),
		games:  make(map[string]game.Snapshot),
		now:    time.Now,
	}
}

func (m *memory) CreateUser(ctx context.Context, name, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byName[name]; ok {
		return nil, ErrConflict
	}
	u := User{ID: NewID(), Name: name, Email: email, CreatedAt: m.now().UTC()}
	m.byName[name] = len(m.users)
	m.users = append(m.users, u)
	return &u, nil
}

func (m *memory) UserByName(ctx context.Context, name string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.byName[name]
	if !ok {
		return nil, ErrNotFound
	}
	u := m.users[i]
	return &u, nil
}

func (m *memory) UserByID(ctx context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memory) Users(ctx context.Context) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]User(nil), m.users...), nil
}

func (m *memory) CreateGame(ctx context.Context, s game.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[s.ID]; ok {
		return ErrConflict
	}
	m.games[s.ID] = detach(s)
	m.order = append(m.order, s.ID)
	return nil
}

func (m *memory) Game(ctx context.Context, id string) (game.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.games[id]
	if !ok {
		return game.Snapshot{}, ErrNotFound
	}
	return detach(s), nil
}

func (m *memory) GamesByOwner(ctx context.Context, ownerID string, kind game.Kind, activeOnly bool) ([]game.Snapshot, error) {
	return m.filter(func(s *game.Snapshot) bool {
		return s.Owner == ownerID && (kind == "" || s.Kind == kind) && (!activeOnly || active(&s.Session))
	}), nil
}

func (m *memory) ActiveGames(ctx context.Context, kind game.Kind) ([]game.Snapshot, error) {
	return m.filter(func(s *game.Snapshot) bool {
		return (kind == "" || s.Kind == kind) && active(&s.Session)
	}), nil
}

func (m *memory) filter(keep func(*game.Snapshot) bool) []game.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []game.Snapshot{}
	for _, id := range m.order {
		s := m.games[id]
		if keep(&s) {
			out = append(out, detach(s))
		}
	}
	return out
}

// UpdateGame restores a private engine from the stored snapshot, so a failing
// mutator leaves the stored state untouched.
func (m *memory) UpdateGame(ctx context.Context, id string, fn Mutator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.games[id]
	if !ok {
		return ErrNotFound
	}
	e, err := game.Restore(s)
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
			m.games[id] = e.Snapshot()
		case game.EffectEmitScore:
			sc := *eff.Score
			sc.ID = NewID()
			m.scores = append(m.scores, sc)
		}
	}
	return nil
}

func (m *memory) Scores(ctx context.Context, q ScoreQuery) ([]game.Score, error) {
	m.mu.RLock()
	out := []game.Score{}
	for _, sc := range m.scores {
		if (q.Kind == "" || sc.Kind == q.Kind) && (q.OwnerID == "" || sc.Owner == q.OwnerID) {
			out = append(out, sc)
		}
	}
	m.mu.RUnlock()

	if q.OrderByGuesses {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Guesses < out[j].Guesses })
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func detach(s game.Snapshot) game.Snapshot {
	s.History = append([]string(nil), s.History...)
	s.Digits = append([]int(nil), s.Digits...)
	return s
}
