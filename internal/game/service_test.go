package game

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapStore struct {
	mu    sync.Mutex
	games map[string]GameState
	fail  error
}

func newMapStore() *mapStore { return &mapStore{games: map[string]GameState{}} }

func (m *mapStore) SaveGame(_ context.Context, id string, s GameState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.games[id] = s.Clone()
	return nil
}

func (m *mapStore) LoadGame(_ context.Context, id string) (GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.games[id]
	if !ok {
		return GameState{}, ErrGameNotFound
	}
	return s.Clone(), nil
}

func (m *mapStore) DeleteGame(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; !ok {
		return ErrGameNotFound
	}
	delete(m.games, id)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	svc := NewService(store, quietLogger(), 1)

	id, st, err := svc.NewGame(ctx)
	require.NoError(t, err)
	assert.Equal(t, StartingCash, st.Cash)
	require.Contains(t, store.games, id)

	st, err = svc.Do(ctx, id, Action{Kind: ActionHire, Role: RoleEngineer})
	require.NoError(t, err)
	assert.Equal(t, 1, st.Employees.Len())

	st, err = svc.Do(ctx, id, Action{Kind: ActionNextTurn})
	require.NoError(t, err)
	assert.Equal(t, 1, st.Week)
	assert.Equal(t, 1, store.games[id].Week, "committed state is persisted")

	_, err = svc.State(ctx, "missing")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestServiceRejectedActionKeepsState(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMapStore(), quietLogger(), 1)
	id, _, err := svc.NewGame(ctx)
	require.NoError(t, err)

	st, err := svc.Do(ctx, id, Action{Kind: ActionFire, EmployeeID: "nobody"})
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
	assert.Equal(t, StartingCash, st.Cash)

	_, err = svc.Do(ctx, id, Action{Kind: "teleport"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestServiceIdempotencyKeys(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMapStore(), quietLogger(), 1)
	id, _, err := svc.NewGame(ctx)
	require.NoError(t, err)

	_, err = svc.Do(ctx, id, Action{Kind: ActionInterview, IdempotencyKey: "k1"})
	require.NoError(t, err)
	st, err := svc.Do(ctx, id, Action{Kind: ActionInterview, IdempotencyKey: "k1"})
	assert.ErrorIs(t, err, ErrDuplicateIdempotency)
	assert.Equal(t, 5, st.PMFScore, "duplicate not applied")

	// A rejected action does not burn its key.
	_, err = svc.Do(ctx, id, Action{Kind: ActionFire, EmployeeID: "x", IdempotencyKey: "k2"})
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
	_, err = svc.Do(ctx, id, Action{Kind: ActionInterview, IdempotencyKey: "k2"})
	assert.NoError(t, err)
}

func TestServiceBonusesResetAfterTurn(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMapStore(), quietLogger(), 1)
	id, _, err := svc.NewGame(ctx)
	require.NoError(t, err)

	_, err = svc.GoldenLeadHit(ctx, id)
	require.NoError(t, err)
	b, err := svc.ResolveIncident(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, TurnBonuses{GoldenLeadHit: true, IncidentsResolved: 1}, b)

	_, err = svc.Do(ctx, id, Action{Kind: ActionNextTurn})
	require.NoError(t, err)
	b, err = svc.ResolveIncident(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, TurnBonuses{IncidentsResolved: 1}, b)
}

func TestServiceClientWorkSpendsBankedBonuses(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	gig := NewGameState()
	gig.Week = 10
	gig.Flags.IsSideGigUnlocked = true
	gig.KPI.MRR = 1_000_000
	gig.Employees.Add(Employee{ID: "cs", Role: RoleCS})
	store.games["gig"] = gig

	svc := NewService(store, quietLogger(), 1)
	for range 3 {
		_, err := svc.ResolveIncident(ctx, "gig")
		require.NoError(t, err)
	}

	st, err := svc.Do(ctx, "gig", Action{Kind: ActionClientWork})
	require.NoError(t, err)
	// 0.02 base + 0.005 tech debt + 0.05 CS shortage + 0.01 PLG, minus 0.01 per incident.
	assert.InDelta(t, 0.055, st.KPI.ChurnRate, 1e-9)

	b, err := svc.GoldenLeadHit(ctx, "gig")
	require.NoError(t, err)
	assert.Equal(t, TurnBonuses{GoldenLeadHit: true}, b, "incidents were consumed by the week")
}

func TestServiceGameOverDropsSnapshot(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	svc := NewService(store, quietLogger(), 1)
	id, _, err := svc.NewGame(ctx)
	require.NoError(t, err)

	var st GameState
	for i := 0; i < 100 && !st.IsGameOver; i++ {
		st, err = svc.Do(ctx, id, Action{Kind: ActionNextTurn})
		require.NoError(t, err)
	}
	require.True(t, st.IsGameOver)
	assert.NotContains(t, store.games, id)

	_, err = svc.Do(ctx, id, Action{Kind: ActionNextTurn})
	assert.ErrorIs(t, err, ErrGameOver)

	ending, err := svc.Ending(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, st.Week, ending.Week)
}

func TestServiceReplay(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMapStore(), quietLogger(), 3)
	id, _, err := svc.NewGame(ctx)
	require.NoError(t, err)

	results, st, err := svc.Replay(ctx, id, []Action{
		{Kind: ActionInterview, IdempotencyKey: "a"},
		{Kind: ActionInterview, IdempotencyKey: "a"},
		{Kind: ActionFire, EmployeeID: "nobody", IdempotencyKey: "b"},
		{Kind: ActionNextTurn, IdempotencyKey: "c"},
	})
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, "applied", results[0].Status)
	assert.Equal(t, "duplicate", results[1].Status)
	assert.Equal(t, "rejected", results[2].Status)
	assert.Equal(t, "applied", results[3].Status)
	assert.Equal(t, 1, results[3].Week)
	assert.Equal(t, 5, st.PMFScore)
}

func TestServiceLoadsFromStore(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	first := NewService(store, quietLogger(), 1)
	id, _, err := first.NewGame(ctx)
	require.NoError(t, err)
	_, err = first.Do(ctx, id, Action{Kind: ActionSubsidy})
	require.NoError(t, err)

	second := NewService(store, quietLogger(), 1)
	st, err := second.State(ctx, id)
	require.NoError(t, err)
	assert.True(t, st.Flags.HasReceivedSubsidy)
}

func TestServiceSaveFailureDoesNotCommit(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	svc := NewService(store, quietLogger(), 1)
	id, _, err := svc.NewGame(ctx)
	require.NoError(t, err)

	store.fail = errors.New("disk full")
	_, err = svc.Do(ctx, id, Action{Kind: ActionSubsidy})
	require.Error(t, err)

	store.fail = nil
	st, err := svc.State(ctx, id)
	require.NoError(t, err)
	assert.False(t, st.Flags.HasReceivedSubsidy)
}

func TestServicePlayCard(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMapStore(), quietLogger(), 1)
	id, _, err := svc.NewGame(ctx)
	require.NoError(t, err)

	_, err = svc.Do(ctx, id, Action{Kind: ActionStartPitch, Target: TargetFriends})
	require.NoError(t, err)
	st, res, err := svc.PlayCard(ctx, id, "base_2")
	require.NoError(t, err)
	assert.True(t, res.Won)
	assert.Equal(t, 10_000.0, st.KPI.MRR)
}
