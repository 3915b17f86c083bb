package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akinori114514/game/internal/db"
	"github.com/akinori114514/game/internal/game"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PG stores snapshots in postgres over a pgx connection pool.
type PG struct {
	pool *pgxpool.Pool
}

func OpenPG(ctx context.Context, databaseURL string) (*PG, error) {
	pool, err := db.Connect(ctx, databaseURL, db.DefaultPoolOptions())
	if err != nil {
		return nil, err
	}
	s := NewPG(pool)
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewPG wraps an existing pool. The caller is responsible for migrations.
func NewPG(pool *pgxpool.Pool) *PG {
	return &PG{pool: pool}
}

func (s *PG) migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	migrations, err := migrationsFor(DialectPostgres)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
		if err != nil {
			return fmt.Errorf("begin migration tx %s: %w", m.version, err)
		}
		cmd, err := tx.Exec(ctx, `
			INSERT INTO schema_migrations (version, applied_at)
			VALUES ($1, now())
			ON CONFLICT (version) DO NOTHING
		`, m.version)
		if err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("record migration %s: %w", m.version, err)
		}
		if cmd.RowsAffected() == 0 {
			_ = tx.Rollback(ctx)
			continue
		}
		if _, err := tx.Exec(ctx, m.sql); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("apply migration %s: %w", m.version, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit migration %s: %w", m.version, err)
		}
	}
	return nil
}

func (s *PG) SaveGame(ctx context.Context, id string, st game.GameState) error {
	body, err := encodeState(st)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO games (id, week, phase, state, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (id) DO UPDATE SET
			week = excluded.week,
			phase = excluded.phase,
			state = excluded.state,
			updated_at = excluded.updated_at
	`, id, st.Week, string(st.Phase), body)
	if err != nil {
		return fmt.Errorf("save game %s: %w", id, err)
	}
	return nil
}

func (s *PG) LoadGame(ctx context.Context, id string) (game.GameState, error) {
	var body []byte
	err := s.pool.QueryRow(ctx, `SELECT state FROM games WHERE id = $1`, id).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return game.GameState{}, game.ErrGameNotFound
	}
	if err != nil {
		return game.GameState{}, fmt.Errorf("load game %s: %w", id, err)
	}
	return decodeState(body)
}

func (s *PG) DeleteGame(ctx context.Context, id string) error {
	cmd, err := s.pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete game %s: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return game.ErrGameNotFound
	}
	return nil
}

func (s *PG) ListGames(ctx context.Context, limit int) ([]Summary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, week, phase, updated_at
		FROM games
		ORDER BY updated_at DESC, id
		LIMIT $1
	`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum     Summary
			phase   string
			updated time.Time
		)
		if err := rows.Scan(&sum.ID, &sum.Week, &phase, &updated); err != nil {
			return nil, fmt.Errorf("scan game summary: %w", err)
		}
		sum.Phase = game.Phase(phase)
		sum.UpdatedAt = updated.UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *PG) Close() error {
	s.pool.Close()
	return nil
}
