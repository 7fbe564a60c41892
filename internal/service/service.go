// internal/service/service.go
//
// Game service: the operations behind the HTTP API.
//
// Responsibilities:
//   - Resolve user names and handles through the Store.
//   - Start games with targets from the configured Source.
//   - Run moves and cancellations inside Store.UpdateGame so the engine's
//     effects are persisted atomically.
//   - Score listings, high scores, rankings and the cached average.
//
// Every operation is scoped to one game kind; a handle of another kind is
// reported as store.ErrNotFound.

package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/guessgames/internal/cache"
	"github.com/robalobadob/guessgames/internal/game"
	"github.com/robalobadob/guessgames/internal/store"
	"github.com/robalobadob/guessgames/internal/tasks"
)

// ErrBadRequest is returned for missing or malformed request fields.
var ErrBadRequest = errors.New("bad request")

// Enqueuer accepts background jobs; *tasks.Queue implements it.
type Enqueuer interface {
	Enqueue(name string, fn tasks.Func) bool
}

// GameView is a session snapshot decorated for the API.
type GameView struct {
	game.Snapshot
	UserName string
	Message  string
}

// ScoreView is a Score with its owner's name resolved.
type ScoreView struct {
	game.Score
	UserName string
}

// Rank is one row of the user rankings.
type Rank struct {
	UserName  string
	WinNumber int
}

// Service implements the game operations.
type Service struct {
	store  store.Store
	cache  cache.Cache
	source game.Source
	queue  Enqueuer
	now    func() time.Time
}

// New wires a Service. queue may be nil, in which case new games do not
// schedule a cache refresh.
func New(st store.Store, c cache.Cache, src game.Source, queue Enqueuer) *Service {
	return &Service{store: st, cache: c, source: src, queue: queue, now: time.Now}
}

// ------------------------------- users -------------------------------------

// CreateUser registers a user. Names are unique and case-sensitive.
func (s *Service) CreateUser(ctx context.Context, name, email string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: user_name is required", ErrBadRequest)
	}
	if _, err := s.store.CreateUser(ctx, name, email); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return "", fmt.Errorf("a user with that name already exists: %w", err)
		}
		return "", err
	}
	log.Info().Str("user", name).Msg("user created")
	return fmt.Sprintf("User %s created!", name), nil
}

// -------------------------------- games ------------------------------------

// NewGame starts a game of kind for the named user.
func (s *Service) NewGame(ctx context.Context, kind game.Kind, userName string) (GameView, error) {
	u, err := s.userByName(ctx, userName)
	if err != nil {
		return GameView{}, err
	}
	e, err := game.New(kind, store.NewID(), u.ID, s.source, s.now())
	if err != nil {
		return GameView{}, err
	}
	snap := e.Snapshot()
	if err := s.store.CreateGame(ctx, snap); err != nil {
		return GameView{}, fmt.Errorf("create game: %w", err)
	}
	log.Info().Str("kind", string(kind)).Str("game", snap.ID).Str("user", u.Name).Msg("game started")

	if s.queue != nil {
		s.queue.Enqueue("cache_average_attempts:"+string(kind), func(ctx context.Context) error {
			return s.RefreshAverage(ctx, kind)
		})
	}
	return GameView{Snapshot: snap, UserName: u.Name, Message: e.Welcome()}, nil
}

// GetGame returns the current state of a game.
func (s *Service) GetGame(ctx context.Context, kind game.Kind, id string) (GameView, error) {
	return s.view(ctx, kind, id, "Time to make a move!")
}

// GameHistory returns a game with its move history.
func (s *Service) GameHistory(ctx context.Context, kind game.Kind, id string) (GameView, error) {
	return s.view(ctx, kind, id, "Please check Game history!")
}

func (s *Service) view(ctx context.Context, kind game.Kind, id, msg string) (GameView, error) {
	snap, err := s.load(ctx, kind, id)
	if err != nil {
		return GameView{}, err
	}
	return s.decorate(ctx, snap, msg)
}

// MakeMove applies one guess. Hangman moves on a finished game fail with
// game.ErrGameOver; number-guess moves return a no-op message instead.
func (s *Service) MakeMove(ctx context.Context, kind game.Kind, id string, m game.Move) (GameView, error) {
	if m.At.IsZero() {
		m.At = s.now()
	}
	var (
		res  game.Result
		snap game.Snapshot
	)
	err := s.store.UpdateGame(ctx, id, func(e game.Engine) ([]game.Effect, error) {
		if e.Session().Kind != kind {
			return nil, store.ErrNotFound
		}
		r, err := e.ApplyGuess(m)
		if err != nil {
			return nil, err
		}
		res, snap = r, e.Snapshot()
		return r.Effects, nil
	})
	if err != nil {
		return GameView{}, err
	}
	if res.Outcome == game.OutcomeWon || res.Outcome == game.OutcomeLost {
		log.Info().Str("kind", string(kind)).Str("game", id).Str("outcome", string(res.Outcome)).Msg("game over")
	}
	return s.decorate(ctx, snap, res.Message)
}

// CancelGame abandons a game in progress. Finished or already cancelled
// games fail with game.ErrNotCancellable.
func (s *Service) CancelGame(ctx context.Context, kind game.Kind, id string) (string, error) {
	err := s.store.UpdateGame(ctx, id, func(e game.Engine) ([]game.Effect, error) {
		if e.Session().Kind != kind {
			return nil, store.ErrNotFound
		}
		return game.Cancel(e.Session())
	})
	if err != nil {
		return "", err
	}
	return "Current game has been cancelled!", nil
}

// UserActiveGames lists the user's games of kind that are still in progress.
func (s *Service) UserActiveGames(ctx context.Context, kind game.Kind, userName string) ([]GameView, error) {
	return s.userGames(ctx, kind, userName, true, "Active games of %s")
}

// UserAllGames lists every game of kind the user has played.
func (s *Service) UserAllGames(ctx context.Context, kind game.Kind, userName string) ([]GameView, error) {
	return s.userGames(ctx, kind, userName, false, "All games of %s")
}

func (s *Service) userGames(ctx context.Context, kind game.Kind, userName string, activeOnly bool, format string) ([]GameView, error) {
	u, err := s.userByName(ctx, userName)
	if err != nil {
		return nil, err
	}
	games, err := s.store.GamesByOwner(ctx, u.ID, kind, activeOnly)
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf(format, u.Name)
	out := make([]GameView, 0, len(games))
	for _, g := range games {
		out = append(out, GameView{Snapshot: g, UserName: u.Name, Message: msg})
	}
	return out, nil
}

// ------------------------------- scores ------------------------------------

// Scores lists every score of kind.
func (s *Service) Scores(ctx context.Context, kind game.Kind) ([]ScoreView, error) {
	return s.scores(ctx, store.ScoreQuery{Kind: kind})
}

// UserScores lists the named user's scores of kind.
func (s *Service) UserScores(ctx context.Context, kind game.Kind, userName string) ([]ScoreView, error) {
	u, err := s.userByName(ctx, userName)
	if err != nil {
		return nil, err
	}
	return s.scores(ctx, store.ScoreQuery{Kind: kind, OwnerID: u.ID})
}

// HighScores lists scores of kind by ascending guesses. limit <= 0 means all.
func (s *Service) HighScores(ctx context.Context, kind game.Kind, limit int) ([]ScoreView, error) {
	return s.scores(ctx, store.ScoreQuery{Kind: kind, OrderByGuesses: true, Limit: limit})
}

func (s *Service) scores(ctx context.Context, q store.ScoreQuery) ([]ScoreView, error) {
	scores, err := s.store.Scores(ctx, q)
	if err != nil {
		return nil, err
	}
	names, err := s.userNames(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ScoreView, 0, len(scores))
	for _, sc := range scores {
		out = append(out, ScoreView{Score: sc, UserName: names[sc.Owner]})
	}
	return out, nil
}

// UserRankings ranks every user by wins at kind.
func (s *Service) UserRankings(ctx context.Context, kind game.Kind) ([]Rank, error) {
	users, err := s.store.Users(ctx)
	if err != nil {
		return nil, err
	}
	scores, err := s.store.Scores(ctx, store.ScoreQuery{Kind: kind})
	if err != nil {
		return nil, err
	}
	return Rankings(users, scores), nil
}

// Rankings counts wins per user and sorts descending. Users keep their
// given order among equal win counts, and users without scores rank at 0.
func Rankings(users []store.User, scores []game.Score) []Rank {
	wins := make(map[string]int, len(users))
	for _, sc := range scores {
		if sc.Won {
			wins[sc.Owner]++
		}
	}
	out := make([]Rank, 0, len(users))
	for _, u := range users {
		out = append(out, Rank{UserName: u.Name, WinNumber: wins[u.ID]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].WinNumber > out[j].WinNumber })
	return out
}

// ---------------------------- average cache --------------------------------

// AverageAttempts returns the cached statistic for kind, or "" if never computed.
func (s *Service) AverageAttempts(ctx context.Context, kind game.Kind) (string, error) {
	return s.cache.Get(ctx, cache.AverageKey(kind))
}

// RefreshAverage recomputes the average attempts remaining over the games
// of kind still in progress. With no such games the cached value is kept.
func (s *Service) RefreshAverage(ctx context.Context, kind game.Kind) error {
	games, err := s.store.ActiveGames(ctx, kind)
	if err != nil {
		return fmt.Errorf("list active %s games: %w", kind, err)
	}
	sessions := make([]game.Session, len(games))
	for i := range games {
		sessions[i] = games[i].Session
	}
	avg, ok := game.ComputeAverage(sessions)
	if !ok {
		log.Debug().Str("kind", string(kind)).Msg("average: no active games")
		return nil
	}
	return s.cache.Set(ctx, cache.AverageKey(kind), game.FormatAverage(avg))
}

// ------------------------------- helpers -----------------------------------

func (s *Service) userByName(ctx context.Context, name string) (*store.User, error) {
	u, err := s.store.UserByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("a user with that name does not exist: %w", err)
		}
		return nil, err
	}
	return u, nil
}

// load fetches a handle and hides games of other kinds.
func (s *Service) load(ctx context.Context, kind game.Kind, id string) (game.Snapshot, error) {
	snap, err := s.store.Game(ctx, id)
	if err != nil {
		return game.Snapshot{}, err
	}
	if snap.Kind != kind {
		return game.Snapshot{}, store.ErrNotFound
	}
	return snap, nil
}

func (s *Service) decorate(ctx context.Context, snap game.Snapshot, msg string) (GameView, error) {
	u, err := s.store.UserByID(ctx, snap.Owner)
	if err != nil {
		return GameView{}, fmt.Errorf("owner of %s: %w", snap.ID, err)
	}
	return GameView{Snapshot: snap, UserName: u.Name, Message: msg}, nil
}

func (s *Service) userNames(ctx context.Context) (map[string]string, error) {
	users, err := s.store.Users(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}
