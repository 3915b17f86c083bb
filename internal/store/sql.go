package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akinori114514/game/internal/game"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// SQL stores snapshots through database/sql. SQLite is served by modernc.org/sqlite and
// postgres by the pgx stdlib driver.
type SQL struct {
	dialect Dialect
	db      *sql.DB
	now     func() time.Time
}

func OpenSQL(ctx context.Context, dialect Dialect, dsn string) (*SQL, error) {
	var driverName string
	switch dialect {
	case DialectSQLite:
		driverName = "sqlite"
		if strings.TrimSpace(dsn) == "" {
			return nil, errors.New("sqlite store requires a path")
		}
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
	case DialectPostgres:
		driverName = "pgx"
		if strings.TrimSpace(dsn) == "" {
			return nil, errors.New("postgres store requires DATABASE_URL")
		}
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", dialect, err)
	}

	s := &SQL{dialect: dialect, db: db, now: time.Now}
	if err := s.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQL) bind(pos int) string {
	if s.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", pos)
	}
	return "?"
}

func (s *SQL) binds(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = s.bind(i + 1)
	}
	return out
}

func (s *SQL) applyMigrations(ctx context.Context) error {
	create := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL
		)
	`
	if _, err := s.db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied := map[string]bool{}
	rows, err := s.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("read schema_migrations: %w", err)
	}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return fmt.Errorf("scan schema migration: %w", err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate schema migrations: %w", err)
	}
	rows.Close()

	migrations, err := migrationsFor(s.dialect)
	if err != nil {
		return err
	}
	record := fmt.Sprintf("INSERT INTO schema_migrations (version, applied_at) VALUES (%s, %s)", s.binds(2)...)
	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration tx %s: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, record, m.version, s.now().UTC()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", m.version, err)
		}
	}
	return nil
}

func (s *SQL) SaveGame(ctx context.Context, id string, st game.GameState) error {
	body, err := encodeState(st)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`
		INSERT INTO games (id, week, phase, state, updated_at)
		VALUES (%s, %s, %s, %s, %s)
		ON CONFLICT (id) DO UPDATE SET
			week = excluded.week,
			phase = excluded.phase,
			state = excluded.state,
			updated_at = excluded.updated_at
	`, s.binds(5)...)
	if _, err := s.db.ExecContext(ctx, q, id, st.Week, string(st.Phase), string(body), s.now().UTC()); err != nil {
		return fmt.Errorf("save game %s: %w", id, err)
	}
	return nil
}

func (s *SQL) LoadGame(ctx context.Context, id string) (game.GameState, error) {
	var body string
	q := fmt.Sprintf("SELECT state FROM games WHERE id = %s", s.bind(1))
	if err := s.db.QueryRowContext(ctx, q, id).Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return game.GameState{}, game.ErrGameNotFound
		}
		return game.GameState{}, fmt.Errorf("load game %s: %w", id, err)
	}
	return decodeState([]byte(body))
}

func (s *SQL) DeleteGame(ctx context.Context, id string) error {
	q := fmt.Sprintf("DELETE FROM games WHERE id = %s", s.bind(1))
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete game %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return game.ErrGameNotFound
	}
	return nil
}

func (s *SQL) ListGames(ctx context.Context, limit int) ([]Summary, error) {
	q := fmt.Sprintf("SELECT id, week, phase, updated_at FROM games ORDER BY updated_at DESC, id LIMIT %s", s.bind(1))
	rows, err := s.db.QueryContext(ctx, q, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum   Summary
			phase string
		)
		if err := rows.Scan(&sum.ID, &sum.Week, &phase, &sum.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan game summary: %w", err)
		}
		sum.Phase = game.Phase(phase)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}
	return out, nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}
