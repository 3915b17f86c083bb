package autoplay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/akinori114514/game/internal/game"
)

type BatchConfig struct {
	Games     int
	MaxWeeks  int
	Policy    Policy
	KeepGames bool
}

type Summary struct {
	Games      int                    `json:"games"`
	GameOvers  int                    `json:"game_overs"`
	AvgWeeks   float64                `json:"avg_weeks"`
	BestMRR    float64                `json:"best_mrr"`
	Archetypes map[game.Archetype]int `json:"archetypes"`
	Phases     map[game.Phase]int     `json:"phases"`
}

// RunBatch plays cfg.Games fresh games and aggregates how they ended. Unless KeepGames
// is set, games still running at the week cap are abandoned afterwards.
func RunBatch(ctx context.Context, svc *game.Service, cfg BatchConfig, logger *slog.Logger) (Summary, error) {
	if logger == nil {
		logger = slog.Default()
	}
	planner := NewPlanner(cfg.Policy)
	sum := Summary{
		Archetypes: make(map[game.Archetype]int),
		Phases:     make(map[game.Phase]int),
	}
	totalWeeks := 0
	for i := 0; i < cfg.Games; i++ {
		id, _, err := svc.NewGame(ctx)
		if err != nil {
			return sum, fmt.Errorf("create game %d: %w", i, err)
		}
		out, err := Run(ctx, svc, id, planner, cfg.MaxWeeks)
		if err != nil {
			return sum, fmt.Errorf("run game %s: %w", id, err)
		}
		logger.Info("simulation finished",
			"game_id", id,
			"policy", out.Policy,
			"week", out.Weeks,
			"game_over", out.GameOver,
			"cash", out.Cash,
			"mrr", out.MRR,
			"phase", out.Phase,
			"archetype", out.Ending.Archetype,
			"rejected", out.Rejected,
		)

		sum.Games++
		totalWeeks += out.Weeks
		if out.GameOver {
			sum.GameOvers++
		}
		sum.BestMRR = max(sum.BestMRR, out.MRR)
		sum.Archetypes[out.Ending.Archetype]++
		sum.Phases[out.Phase]++

		if !cfg.KeepGames && !out.GameOver {
			if err := svc.Abandon(ctx, id); err != nil {
				logger.Warn("abandon simulated game", "game_id", id, "err", err)
			}
		}
	}
	if sum.Games > 0 {
		sum.AvgWeeks = float64(totalWeeks) / float64(sum.Games)
	}
	return sum, nil
}
