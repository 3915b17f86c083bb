package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/akinori114514/game/internal/api"
	"github.com/akinori114514/game/internal/config"
	"github.com/akinori114514/game/internal/game"
	"github.com/akinori114514/game/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPI(t *testing.T) *Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mem := store.NewMemory()
	svc := game.NewService(mem, logger, 9)
	srv := httptest.NewServer(api.New(config.APIConfig{}, logger, svc, mem, nil).Handler())
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/")
}

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newAPI(t)

	created, err := c.CreateGame(ctx)
	require.NoError(t, err)

	st, err := c.Do(ctx, created.ID, game.Action{Kind: game.ActionHire, Role: game.RoleSales})
	require.NoError(t, err)
	assert.Equal(t, 1, st.Employees.Len())

	st, err = c.NextTurn(ctx, created.ID, "turn-1")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Week)

	_, err = c.NextTurn(ctx, created.ID, "turn-1")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.False(t, IsOffline(err))

	deals, err := c.Deals(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, deals.Deals, len(game.SalesTargets))

	games, err := c.ListGames(ctx)
	require.NoError(t, err)
	require.Len(t, games, 1)

	adv, err := c.Advice(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, adv.Offline)

	require.NoError(t, c.Abandon(ctx, created.ID))
	_, err = c.State(ctx, created.ID)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestIsOffline(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	_, err := c.State(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, IsOffline(err))
	assert.False(t, IsOffline(nil))
	assert.False(t, IsOffline(&APIError{Status: 400}))
}

func TestSessionFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := LoadSession()
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, SaveSession(Session{GameID: "g-1"}))
	s, err := LoadSession()
	require.NoError(t, err)
	assert.Equal(t, "g-1", s.GameID)

	require.NoError(t, ClearSession())
	_, err = LoadSession()
	assert.ErrorIs(t, err, ErrNoSession)
	require.NoError(t, ClearSession())
}

func TestQueueTakesOnlyOneGame(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	items, err := LoadQueue()
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, Enqueue("a", game.Action{Kind: game.ActionInterview, IdempotencyKey: "1"}))
	require.NoError(t, Enqueue("b", game.Action{Kind: game.ActionNextTurn, IdempotencyKey: "2"}))
	require.NoError(t, Enqueue("a", game.Action{Kind: game.ActionNextTurn, IdempotencyKey: "3"}))

	got, err := TakeQueued("a")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].IdempotencyKey)
	assert.Equal(t, "3", got[1].IdempotencyKey)

	rest, err := LoadQueue()
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "b", rest[0].GameID)
}

func TestQueueReplaysThroughAPI(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	ctx := context.Background()
	c := newAPI(t)
	created, err := c.CreateGame(ctx)
	require.NoError(t, err)

	require.NoError(t, Enqueue(created.ID, game.Action{Kind: game.ActionNextTurn, IdempotencyKey: "n1"}))
	require.NoError(t, Enqueue(created.ID, game.Action{Kind: game.ActionNextTurn, IdempotencyKey: "n1"}))
	actions, err := TakeQueued(created.ID)
	require.NoError(t, err)

	view, err := c.Replay(ctx, created.ID, actions)
	require.NoError(t, err)
	require.Len(t, view.Results, 2)
	assert.Equal(t, "applied", view.Results[0].Status)
	assert.Equal(t, "duplicate", view.Results[1].Status)
	assert.Equal(t, 1, view.State.Week)
}

func TestSaveFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	s := game.NewGameState()
	s.Week = 12
	s.Employees.Add(game.Employee{ID: "emp-1", Name: "Mio", Role: game.RoleCS})

	require.NoError(t, WriteSave(path, 77, s))
	sf, err := ReadSave(path)
	require.NoError(t, err)
	assert.Equal(t, int64(77), sf.Seed)
	assert.Equal(t, 12, sf.State.Week)
	assert.Equal(t, s.Employees.List(), sf.State.Employees.List())

	_, err = ReadSave(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
