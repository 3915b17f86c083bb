package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akinori114514/game/internal/advisor"
	"github.com/akinori114514/game/internal/api"
	"github.com/akinori114514/game/internal/config"
	"github.com/akinori114514/game/internal/game"
	"github.com/akinori114514/game/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadAPIFromEnv()
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

	adv, err := advisor.New(ctx, cfg.Advisor, logger)
	if err != nil {
		logger.Error("advisor init failed", "err", err)
		os.Exit(1)
	}
	defer adv.Close()

	gameSvc := game.NewService(st, logger, cfg.Seed)
	server := api.New(cfg, logger, gameSvc, st, adv)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("api listening", "addr", cfg.Addr, "store", cfg.Store.Kind, "advisor_online", cfg.Advisor.GeminiAPIKey != "")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("api server failed", "err", err)
		os.Exit(1)
	}
	logger.Info("api shutdown")
}
