package store

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/akinori114514/game/internal/config"
	"github.com/akinori114514/game/internal/game"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFS embed.FS

// Store persists game snapshots and can list what it holds.
type Store interface {
	game.SnapshotStore
	ListGames(ctx context.Context, limit int) ([]Summary, error)
	Close() error
}

type Summary struct {
	ID        string     `json:"id"`
	Week      int        `json:"week"`
	Phase     game.Phase `json:"phase"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Open returns the store selected by cfg.Kind.
func Open(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		st  Store
		err error
	)
	switch cfg.Kind {
	case config.StoreMemory, "":
		st = NewMemory()
	case config.StoreSQLite:
		st, err = OpenSQL(ctx, DialectSQLite, cfg.SQLitePath)
	case config.StorePostgres:
		st, err = OpenSQL(ctx, DialectPostgres, cfg.DatabaseURL)
	case config.StorePGX:
		st, err = OpenPG(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported store %q", cfg.Kind)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("store opened", "kind", cfg.Kind)
	return st, nil
}

type migration struct {
	version string
	sql     string
}

func migrationsFor(dialect Dialect) ([]migration, error) {
	files, err := fs.Glob(migrationFS, fmt.Sprintf("migrations/%s/*.sql", dialect))
	if err != nil {
		return nil, fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(files)
	out := make([]migration, 0, len(files))
	for _, file := range files {
		b, err := migrationFS.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", file, err)
		}
		out = append(out, migration{version: filepath.Base(file), sql: string(b)})
	}
	return out, nil
}

func encodeState(s game.GameState) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode game state: %w", err)
	}
	return b, nil
}

func decodeState(b []byte) (game.GameState, error) {
	var s game.GameState
	if err := json.Unmarshal(b, &s); err != nil {
		return game.GameState{}, fmt.Errorf("decode game state: %w", err)
	}
	return s, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 100
	}
	return limit
}
