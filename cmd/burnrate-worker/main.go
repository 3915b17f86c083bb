package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akinori114514/game/internal/autoplay"
	"github.com/akinori114514/game/internal/config"
	"github.com/akinori114514/game/internal/game"
	"github.com/akinori114514/game/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadWorkerFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	policy, err := autoplay.ParsePolicy(cfg.Policy)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	st, err := store.Open(ctx, cfg.Store, logger)
	if err != nil {
		logger.Error("store open failed", "err", err)
		os.Exit(1)
	}
	defer st.Close()

	svc := game.NewService(st, logger, cfg.Seed)
	batch := autoplay.BatchConfig{
		Games:     cfg.Games,
		MaxWeeks:  cfg.MaxWeeks,
		Policy:    policy,
		KeepGames: cfg.KeepGames,
	}

	run := func() error {
		started := time.Now()
		sum, err := autoplay.RunBatch(ctx, svc, batch, logger)
		if err != nil {
			return err
		}
		logger.Info("simulation batch complete",
			"games", sum.Games,
			"game_overs", sum.GameOvers,
			"avg_weeks", sum.AvgWeeks,
			"best_mrr", sum.BestMRR,
			"archetypes", sum.Archetypes,
			"phases", sum.Phases,
			"took", time.Since(started).String(),
		)
		return nil
	}

	if cfg.RunOnce {
		if err := run(); err != nil {
			logger.Error("simulation failed", "err", err)
			os.Exit(1)
		}
		logger.Info("worker run-once completed")
		return
	}

	ticker := time.NewTicker(cfg.RunEvery)
	defer ticker.Stop()

	logger.Info("worker started", "run_every", cfg.RunEvery.String(), "policy", policy, "games", cfg.Games)
	if err := run(); err != nil {
		logger.Error("simulation failed", "err", err)
	}
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutdown")
			return
		case <-ticker.C:
			if err := run(); err != nil {
				logger.Error("simulation failed", "err", err)
			}
		}
	}
}
