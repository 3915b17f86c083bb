package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	mathrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SnapshotStore persists game snapshots between sessions.
type SnapshotStore interface {
	SaveGame(ctx context.Context, id string, s GameState) error
	LoadGame(ctx context.Context, id string) (GameState, error)
	DeleteGame(ctx context.Context, id string) error
}

type session struct {
	state   GameState
	bonuses TurnBonuses
	claimed map[string]struct{}
}

// Service owns the authoritative copy of every running game. Each operation applies a
// pure transition and commits the result as a whole.
type Service struct {
	store SnapshotStore
	log   *slog.Logger
	mu    sync.Mutex
	rand  *mathrand.Rand
	games map[string]*session
}

// NewService builds a controller over store. A zero seed uses the clock.
func NewService(store SnapshotStore, logger *slog.Logger, seed int64) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Service{
		store: store,
		log:   logger,
		rand:  mathrand.New(mathrand.NewSource(seed)),
		games: make(map[string]*session),
	}
}

func (s *Service) NewGame(ctx context.Context) (string, GameState, error) {
	id := uuid.NewString()
	st := NewGameState()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.SaveGame(ctx, id, st); err != nil {
		return "", GameState{}, fmt.Errorf("save new game: %w", err)
	}
	s.games[id] = &session{state: st, claimed: map[string]struct{}{}}
	s.log.Info("game created", "game_id", id)
	return id, st.Clone(), nil
}

func (s *Service) State(ctx context.Context, id string) (GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.sessionLocked(ctx, id)
	if err != nil {
		return GameState{}, err
	}
	return sess.state.Clone(), nil
}

// sessionLocked returns the in-memory session, loading it from the store on first use.
func (s *Service) sessionLocked(ctx context.Context, id string) (*session, error) {
	if sess, ok := s.games[id]; ok {
		return sess, nil
	}
	st, err := s.store.LoadGame(ctx, id)
	if err != nil {
		if errors.Is(err, ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("load game: %w", err)
	}
	sess := &session{state: st, claimed: map[string]struct{}{}}
	s.games[id] = sess
	return sess, nil
}

func (sess *session) checkKey(key string) error {
	if _, dup := sess.claimed[strings.TrimSpace(key)]; dup {
		return ErrDuplicateIdempotency
	}
	return nil
}

// claim records key once the action it guards has been committed.
func (sess *session) claim(key string) {
	if key = strings.TrimSpace(key); key != "" {
		sess.claimed[key] = struct{}{}
	}
}

func (s *Service) commitLocked(ctx context.Context, id string, sess *session, next GameState) error {
	if next.IsGameOver {
		if err := s.store.DeleteGame(ctx, id); err != nil && !errors.Is(err, ErrGameNotFound) {
			return fmt.Errorf("delete finished game: %w", err)
		}
		if !sess.state.IsGameOver {
			s.log.Info("game over", "game_id", id, "week", next.Week, "cash", next.Cash)
		}
	} else if err := s.store.SaveGame(ctx, id, next); err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	sess.state = next
	return nil
}

// Do applies one action. An action carrying an idempotency key that was already
// claimed for this game is rejected with ErrDuplicateIdempotency.
func (s *Service) Do(ctx context.Context, id string, a Action) (GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.sessionLocked(ctx, id)
	if err != nil {
		return GameState{}, err
	}
	next, err := s.applyLocked(ctx, id, sess, a)
	if err != nil {
		return sess.state.Clone(), err
	}
	return next.Clone(), nil
}

func (s *Service) applyLocked(ctx context.Context, id string, sess *session, a Action) (GameState, error) {
	if err := sess.checkKey(a.IdempotencyKey); err != nil {
		return GameState{}, err
	}
	if a.Kind == ActionNextTurn || a.Kind == ActionClientWork {
		a.Bonuses.GoldenLeadHit = a.Bonuses.GoldenLeadHit || sess.bonuses.GoldenLeadHit
		a.Bonuses.IncidentsResolved += sess.bonuses.IncidentsResolved
	}
	next, err := Apply(sess.state, a, s.rand)
	if err != nil {
		return GameState{}, err
	}
	if err := s.commitLocked(ctx, id, sess, next); err != nil {
		return GameState{}, err
	}
	sess.claim(a.IdempotencyKey)
	if a.Kind == ActionNextTurn || a.Kind == ActionClientWork {
		sess.bonuses = TurnBonuses{}
	}
	s.log.Debug("action applied", "game_id", id, "kind", a.Kind, "week", next.Week)
	return next, nil
}

// PlayCard plays one negotiation card and reports whether the session settled.
func (s *Service) PlayCard(ctx context.Context, id, cardID string) (GameState, NegotiationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.sessionLocked(ctx, id)
	if err != nil {
		return GameState{}, NegotiationResult{}, err
	}
	next, res, err := PlayCard(sess.state, cardID, s.rand)
	if err != nil {
		return sess.state.Clone(), NegotiationResult{}, err
	}
	if err := s.commitLocked(ctx, id, sess, next); err != nil {
		return sess.state.Clone(), NegotiationResult{}, err
	}
	if res.Settled {
		s.log.Info("negotiation settled", "game_id", id, "won", res.Won, "mrr", res.MRR)
	}
	return next.Clone(), res, nil
}

// GoldenLeadHit records the click bonus for the next turn only.
func (s *Service) GoldenLeadHit(ctx context.Context, id string) (TurnBonuses, error) {
	return s.updateBonuses(ctx, id, func(b *TurnBonuses) { b.GoldenLeadHit = true })
}

func (s *Service) ResolveIncident(ctx context.Context, id string) (TurnBonuses, error) {
	return s.updateBonuses(ctx, id, func(b *TurnBonuses) { b.IncidentsResolved++ })
}

func (s *Service) updateBonuses(ctx context.Context, id string, fn func(*TurnBonuses)) (TurnBonuses, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.sessionLocked(ctx, id)
	if err != nil {
		return TurnBonuses{}, err
	}
	if sess.state.IsGameOver {
		return sess.bonuses, ErrGameOver
	}
	fn(&sess.bonuses)
	return sess.bonuses, nil
}

type ReplayResult struct {
	Kind           ActionKind `json:"kind"`
	IdempotencyKey string     `json:"idempotency_key,omitempty"`
	Status         string     `json:"status"`
	Error          string     `json:"error,omitempty"`
	Week           int        `json:"week"`
}

// Replay applies queued actions in order. Failures are reported per action and do not
// stop the batch; duplicates are skipped.
func (s *Service) Replay(ctx context.Context, id string, actions []Action) ([]ReplayResult, GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.sessionLocked(ctx, id)
	if err != nil {
		return nil, GameState{}, err
	}
	results := make([]ReplayResult, 0, len(actions))
	for _, a := range actions {
		r := ReplayResult{Kind: a.Kind, IdempotencyKey: a.IdempotencyKey, Status: "applied"}
		if _, err := s.applyLocked(ctx, id, sess, a); err != nil {
			r.Status = "rejected"
			if errors.Is(err, ErrDuplicateIdempotency) {
				r.Status = "duplicate"
			}
			r.Error = err.Error()
		}
		r.Week = sess.state.Week
		results = append(results, r)
	}
	s.log.Info("replayed actions", "game_id", id, "count", len(actions), "week", sess.state.Week)
	return results, sess.state.Clone(), nil
}

func (s *Service) Ending(ctx context.Context, id string) (Ending, error) {
	st, err := s.State(ctx, id)
	if err != nil {
		return Ending{}, err
	}
	return ClassifyEnding(st), nil
}

func (s *Service) Financials(ctx context.Context, id string) (RevenueBreakdown, error) {
	st, err := s.State(ctx, id)
	if err != nil {
		return RevenueBreakdown{}, err
	}
	return RevenueBreakdownFor(st), nil
}

// Abandon forgets the game in memory and in the store.
func (s *Service) Abandon(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.sessionLocked(ctx, id); err != nil {
		return err
	}
	delete(s.games, id)
	if err := s.store.DeleteGame(ctx, id); err != nil && !errors.Is(err, ErrGameNotFound) {
		return fmt.Errorf("delete game: %w", err)
	}
	s.log.Info("game abandoned", "game_id", id)
	return nil
}
