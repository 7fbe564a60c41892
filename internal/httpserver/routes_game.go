// internal/httpserver/routes_game.go
//
// Game API routes, mounted once per kind:
//   - POST /user                          → create user
//   - POST /game                          → start a game
//   - GET  /game/highscores               → scores by ascending guesses (?number_of_results=N)
//   - GET  /game/{key}                    → current state
//   - PUT  /game/{key}/move               → make a move
//   - PUT  /game/{key}/cancel             → cancel a game in progress
//   - GET  /game/{key}/history            → state with move history
//   - GET  /scores, /scores/user/{name}   → score listings
//   - GET  /games/average_attempts        → cached statistic
//   - GET  /games/user/active|all/{name}  → a user's games
//   - GET  /user/rankings                 → users by wins
//
// Move bodies: {"guess":"a"} for hangman,
// {"first_digit":2,"second_digit":3,"third_digit":4} for number.

package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/guessgames/internal/game"
	"github.com/robalobadob/guessgames/internal/service"
)

// gameRoutes serves one game kind.
type gameRoutes struct {
	svc  *service.Service
	kind game.Kind
}

func (s *Server) mountGame(r chi.Router, kind game.Kind) {
	g := &gameRoutes{svc: s.svc, kind: kind}
	r.Post("/user", g.handleCreateUser)
	r.Post("/game", g.handleNewGame)
	r.Get("/game/highscores", g.handleHighScores)
	r.Get("/game/{key}", g.handleGetGame)
	r.Put("/game/{key}/move", g.handleMove)
	r.Put("/game/{key}/cancel", g.handleCancel)
	r.Get("/game/{key}/history", g.handleHistory)
	r.Get("/scores", g.handleScores)
	r.Get("/scores/user/{user_name}", g.handleUserScores)
	r.Get("/games/average_attempts", g.handleAverage)
	r.Get("/games/user/active/{user_name}", g.handleUserGames(true))
	r.Get("/games/user/all/{user_name}", g.handleUserGames(false))
	r.Get("/user/rankings", g.handleRankings)
}

// ------------------------------- forms -------------------------------------

type gameForm struct {
	URLSafeKey        string   `json:"urlsafe_key"`
	Kind              string   `json:"kind"`
	UserName          string   `json:"user_name"`
	Target            any      `json:"target"`
	State             string   `json:"state,omitempty"`
	GameOver          bool     `json:"game_over"`
	Won               bool     `json:"won"`
	Cancelled         bool     `json:"cancelled"`
	AttemptsAllowed   int      `json:"attempts_allowed"`
	AttemptsRemaining int      `json:"attempts_remaining"`
	GameHistory       []string `json:"game_history"`
	Message           string   `json:"message"`
}

func toGameForm(v service.GameView) gameForm {
	f := gameForm{
		URLSafeKey:        v.ID,
		Kind:              string(v.Kind),
		UserName:          v.UserName,
		GameOver:          v.Over,
		Won:               v.Won,
		Cancelled:         v.Cancelled,
		AttemptsAllowed:   v.AttemptsAllowed,
		AttemptsRemaining: v.AttemptsRemaining,
		GameHistory:       v.History,
		Message:           v.Message,
	}
	if f.GameHistory == nil {
		f.GameHistory = []string{}
	}
	if v.Kind == game.KindNumber {
		f.Target = v.Digits
	} else {
		f.Target, f.State = v.Target, v.Revealed
	}
	return f
}

type gameForms struct {
	Items []gameForm `json:"items"`
}

type scoreForm struct {
	UserName string `json:"user_name"`
	Date     string `json:"date"`
	Won      bool   `json:"won"`
	Guesses  int    `json:"guesses"`
}

type scoreForms struct {
	Items []scoreForm `json:"items"`
}

func toScoreForms(scores []service.ScoreView) scoreForms {
	out := scoreForms{Items: make([]scoreForm, 0, len(scores))}
	for _, sc := range scores {
		out.Items = append(out.Items, scoreForm{
			UserName: sc.UserName,
			Date:     sc.Date.Format("2006-01-02"),
			Won:      sc.Won,
			Guesses:  sc.Guesses,
		})
	}
	return out
}

type userRank struct {
	UserName  string `json:"user_name"`
	WinNumber int    `json:"win_number"`
}

type userRanks struct {
	Items []userRank `json:"items"`
}

// ------------------------------ requests -----------------------------------

type userReq struct {
	UserName string `json:"user_name"`
	Email    string `json:"email"`
}

type newGameReq struct {
	UserName string `json:"user_name"`
}

// moveReq carries either variant's payload; digits are pointers so a
// missing field is distinguishable from 0.
type moveReq struct {
	Guess       string `json:"guess"`
	FirstDigit  *int   `json:"first_digit"`
	SecondDigit *int   `json:"second_digit"`
	ThirdDigit  *int   `json:"third_digit"`
}

func (m moveReq) toMove(kind game.Kind) (game.Move, error) {
	if kind == game.KindHangman {
		return game.Move{Input: m.Guess}, nil
	}
	if m.FirstDigit == nil || m.SecondDigit == nil || m.ThirdDigit == nil {
		return game.Move{}, fmt.Errorf("%w: first_digit, second_digit and third_digit are required", game.ErrInvalidMove)
	}
	return game.Move{Digits: []int{*m.FirstDigit, *m.SecondDigit, *m.ThirdDigit}}, nil
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body", service.ErrBadRequest)
	}
	return nil
}

// ------------------------------ handlers -----------------------------------

func (g *gameRoutes) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userReq
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	msg, err := g.svc.CreateUser(r.Context(), req.UserName, req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stringMessage{Message: msg})
}

func (g *gameRoutes) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	v, err := g.svc.NewGame(r.Context(), g.kind, req.UserName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGameForm(v))
}

func (g *gameRoutes) handleGetGame(w http.ResponseWriter, r *http.Request) {
	v, err := g.svc.GetGame(r.Context(), g.kind, chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGameForm(v))
}

func (g *gameRoutes) handleHistory(w http.ResponseWriter, r *http.Request) {
	v, err := g.svc.GameHistory(r.Context(), g.kind, chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGameForm(v))
}

func (g *gameRoutes) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveReq
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	m, err := req.toMove(g.kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	v, err := g.svc.MakeMove(r.Context(), g.kind, chi.URLParam(r, "key"), m)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGameForm(v))
}

func (g *gameRoutes) handleCancel(w http.ResponseWriter, r *http.Request) {
	msg, err := g.svc.CancelGame(r.Context(), g.kind, chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stringMessage{Message: msg})
}

func (g *gameRoutes) handleScores(w http.ResponseWriter, r *http.Request) {
	scores, err := g.svc.Scores(r.Context(), g.kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toScoreForms(scores))
}

func (g *gameRoutes) handleUserScores(w http.ResponseWriter, r *http.Request) {
	scores, err := g.svc.UserScores(r.Context(), g.kind, chi.URLParam(r, "user_name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toScoreForms(scores))
}

func (g *gameRoutes) handleHighScores(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if q := r.URL.Query().Get("number_of_results"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			writeError(w, r, fmt.Errorf("%w: number_of_results must be a non-negative integer", service.ErrBadRequest))
			return
		}
		limit = n
	}
	scores, err := g.svc.HighScores(r.Context(), g.kind, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toScoreForms(scores))
}

func (g *gameRoutes) handleAverage(w http.ResponseWriter, r *http.Request) {
	msg, err := g.svc.AverageAttempts(r.Context(), g.kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stringMessage{Message: msg})
}

func (g *gameRoutes) handleUserGames(activeOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := g.svc.UserAllGames
		if activeOnly {
			list = g.svc.UserActiveGames
		}
		views, err := list(r.Context(), g.kind, chi.URLParam(r, "user_name"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		out := gameForms{Items: make([]gameForm, 0, len(views))}
		for _, v := range views {
			out.Items = append(out.Items, toGameForm(v))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (g *gameRoutes) handleRankings(w http.ResponseWriter, r *http.Request) {
	ranks, err := g.svc.UserRankings(r.Context(), g.kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := userRanks{Items: make([]userRank, 0, len(ranks))}
	for _, rk := range ranks {
		out.Items = append(out.Items, userRank{UserName: rk.UserName, WinNumber: rk.WinNumber})
	}
	writeJSON(w, http.StatusOK, out)
}
