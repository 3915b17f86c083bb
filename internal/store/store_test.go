package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/akinori114514/game/internal/config"
	"github.com/akinori114514/game/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() game.GameState {
	s := game.NewGameState()
	s.Week = 7
	s.Cash = 3_250_000
	s.Phase = game.PhaseSeriesA
	s.PMFScore = 42
	s.Employees.Add(game.Employee{ID: "emp-1", Name: "Aiko", Role: game.RoleEngineer, Salary: 600_000})
	s.Employees.Add(game.Employee{ID: "emp-2", Name: "Ren", Role: game.RoleSales, Salary: 600_000, ManagerID: "emp-1"})
	return s
}

func exerciseStore(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()

	_, err := st.LoadGame(ctx, "missing")
	require.ErrorIs(t, err, game.ErrGameNotFound)

	want := sampleState()
	require.NoError(t, st.SaveGame(ctx, "g1", want))

	got, err := st.LoadGame(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, want.Week, got.Week)
	assert.Equal(t, want.Cash, got.Cash)
	assert.Equal(t, want.Phase, got.Phase)
	assert.Equal(t, want.Employees.List(), got.Employees.List())

	want.Week = 8
	require.NoError(t, st.SaveGame(ctx, "g1", want))
	got, err = st.LoadGame(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 8, got.Week, "save overwrites")

	require.NoError(t, st.SaveGame(ctx, "g2", game.NewGameState()))
	list, err := st.ListGames(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, st.DeleteGame(ctx, "g1"))
	assert.ErrorIs(t, st.DeleteGame(ctx, "g1"), game.ErrGameNotFound)
	_, err = st.LoadGame(ctx, "g1")
	assert.ErrorIs(t, err, game.ErrGameNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryStoreIsolatesCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	s := sampleState()
	require.NoError(t, m.SaveGame(ctx, "g", s))
	s.Employees.Add(game.Employee{ID: "emp-3", Role: game.RoleCS})

	got, err := m.LoadGame(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Employees.Len())
}

func TestMemoryListOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { clock = clock.Add(time.Minute); return clock }

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, m.SaveGame(ctx, id, game.NewGameState()))
	}
	list, err := m.ListGames(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "burnrate.db")
	st, err := OpenSQL(context.Background(), DialectSQLite, path)
	require.NoError(t, err)
	defer st.Close()
	exerciseStore(t, st)
}

func TestSQLiteMigrationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "burnrate.db")
	first, err := OpenSQL(ctx, DialectSQLite, path)
	require.NoError(t, err)
	require.NoError(t, first.SaveGame(ctx, "keep", sampleState()))
	require.NoError(t, first.Close())

	second, err := OpenSQL(ctx, DialectSQLite, path)
	require.NoError(t, err)
	defer second.Close()
	got, err := second.LoadGame(ctx, "keep")
	require.NoError(t, err)
	assert.Equal(t, 7, got.Week)

	var n int
	require.NoError(t, second.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM schema_migrations").Scan(&n))
	assert.Equal(t, 2, n)
}

func TestOpenSelectsStore(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, config.StoreConfig{Kind: config.StoreMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, st)

	st, err = Open(ctx, config.StoreConfig{Kind: config.StoreSQLite, SQLitePath: filepath.Join(t.TempDir(), "x.db")}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQL{}, st)
	require.NoError(t, st.Close())

	_, err = Open(ctx, config.StoreConfig{Kind: "redis"}, nil)
	assert.Error(t, err)

	_, err = OpenSQL(ctx, Dialect("oracle"), "x")
	assert.Error(t, err)
}

func TestStoreWorksWithService(t *testing.T) {
	ctx := context.Background()
	st, err := OpenSQL(ctx, DialectSQLite, filepath.Join(t.TempDir(), "svc.db"))
	require.NoError(t, err)
	defer st.Close()

	svc := game.NewService(st, nil, 5)
	id, _, err := svc.NewGame(ctx)
	require.NoError(t, err)
	_, err = svc.Do(ctx, id, game.Action{Kind: game.ActionNextTurn})
	require.NoError(t, err)

	reloaded := game.NewService(st, nil, 5)
	s, err := reloaded.State(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Week)
}
