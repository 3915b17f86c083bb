package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/akinori114514/game/internal/advisor"
	"github.com/akinori114514/game/internal/config"
	"github.com/akinori114514/game/internal/game"
	"github.com/akinori114514/game/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// GameLister reports stored games for the index route.
type GameLister interface {
	ListGames(ctx context.Context, limit int) ([]store.Summary, error)
}

type Adviser interface {
	Advise(ctx context.Context, s game.GameState) advisor.Advice
}

type Server struct {
	cfg     config.APIConfig
	log     *slog.Logger
	game    *game.Service
	games   GameLister
	advisor Adviser
	mux     *chi.Mux
}

func New(cfg config.APIConfig, logger *slog.Logger, gameSvc *game.Service, games GameLister, adv Adviser) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		log:     logger,
		game:    gameSvc,
		games:   games,
		advisor: adv,
		mux:     chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/turn-stages", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"stages": game.TurnStageNames()})
		})
		r.Post("/games", s.handleCreateGame)
		r.Get("/games", s.handleListGames)

		r.Route("/games/{id}", func(r chi.Router) {
			r.Get("/", s.handleGameState)
			r.Delete("/", s.handleAbandonGame)
			r.Post("/actions", s.handleAction)
			r.Post("/turn", s.handleNextTurn)
			r.Get("/deals", s.handleDeals)
			r.Get("/financials", s.handleFinancials)
			r.Get("/ending", s.handleEnding)
			r.Get("/advice", s.handleAdvice)
			r.Post("/negotiation/cards/{card}", s.handlePlayCard)
			r.Post("/bonuses/golden-lead", s.handleGoldenLead)
			r.Post("/bonuses/incident", s.handleIncident)
			r.Post("/sync/replay", s.handleSyncReplay)
		})
	})
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	id, st, err := s.game.NewGame(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "state": st})
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	if s.games == nil {
		writeJSON(w, http.StatusOK, map[string]any{"games": []store.Summary{}})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := s.games.ListGames(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": list})
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	st, err := s.game.State(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleAbandonGame(w http.ResponseWriter, r *http.Request) {
	if err := s.game.Abandon(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var a game.Action
	if err := decodeJSON(r, &a); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if a.IdempotencyKey == "" {
		a.IdempotencyKey = idempotencyKey(r)
	}
	s.apply(w, r, a)
}

func (s *Server) handleNextTurn(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, game.Action{Kind: game.ActionNextTurn, IdempotencyKey: idempotencyKey(r)})
}

func (s *Server) apply(w http.ResponseWriter, r *http.Request, a game.Action) {
	id := chi.URLParam(r, "id")
	st, err := s.game.Do(r.Context(), id, a)
	if err != nil {
		s.log.Debug("action rejected", "game_id", id, "kind", a.Kind, "err", err)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleDeals(w http.ResponseWriter, r *http.Request) {
	st, err := s.game.State(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deals": game.DealBoard(st), "deck": game.BuildDeck(st)})
}

func (s *Server) handleFinancials(w http.ResponseWriter, r *http.Request) {
	b, err := s.game.Financials(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleEnding(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, err := s.game.State(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !st.IsGameOver {
		writeError(w, http.StatusConflict, "game is still running")
		return
	}
	ending, err := s.game.Ending(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ending)
}

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	st, err := s.game.State(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if s.advisor == nil {
		writeJSON(w, http.StatusOK, advisor.Advice{Text: advisor.OfflineMissingKey, Offline: true})
		return
	}
	writeJSON(w, http.StatusOK, s.advisor.Advise(r.Context(), st))
}

func (s *Server) handlePlayCard(w http.ResponseWriter, r *http.Request) {
	st, res, err := s.game.PlayCard(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "card"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": res, "state": st})
}

func (s *Server) handleGoldenLead(w http.ResponseWriter, r *http.Request) {
	b, err := s.game.GoldenLeadHit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleIncident(w http.ResponseWriter, r *http.Request) {
	b, err := s.game.ResolveIncident(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleSyncReplay(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Actions []game.Action `json:"actions"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	results, st, err := s.game.Replay(r.Context(), chi.URLParam(r, "id"), in.Actions)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results, "state": st})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrGameNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrDuplicateIdempotency),
		errors.Is(err, game.ErrGameOver),
		errors.Is(err, game.ErrNegotiationActive),
		errors.Is(err, game.ErrSubsidyClaimed):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrCommandLocked), errors.Is(err, game.ErrDealUnavailable):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, game.ErrInsufficientFunds),
		errors.Is(err, game.ErrInsufficientSanity),
		errors.Is(err, game.ErrInsufficientMoves):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, game.ErrInvalidInput),
		errors.Is(err, game.ErrEmployeeNotFound),
		errors.Is(err, game.ErrManagerCycle),
		errors.Is(err, game.ErrSelfManager),
		errors.Is(err, game.ErrNoActiveEvent),
		errors.Is(err, game.ErrUnknownChoice),
		errors.Is(err, game.ErrNoActiveMajorEvent),
		errors.Is(err, game.ErrNoNegotiation),
		errors.Is(err, game.ErrUnknownCard):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}

func idempotencyKey(r *http.Request) string {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key != "" {
		return key
	}
	return uuid.NewString()
}
