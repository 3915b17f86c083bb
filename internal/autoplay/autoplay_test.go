package autoplay

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/akinori114514/game/internal/game"
	"github.com/akinori114514/game/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicy(t *testing.T) {
	for _, raw := range []string{"balanced", " Growth ", "FRUGAL"} {
		if _, err := ParsePolicy(raw); err != nil {
			t.Fatalf("ParsePolicy(%q): %v", raw, err)
		}
	}
	if _, err := ParsePolicy("yolo"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

func TestPlannerOpeningMoves(t *testing.T) {
	s := game.NewGameState()
	p := NewPlanner(PolicyGrowth)

	a := p.Next(s, 0)
	assert.Equal(t, game.ActionCoFounder, a.Kind)
	assert.Equal(t, game.CoFounderHustler, a.CoFounder)

	s.CoFounder = &game.CoFounder{Name: "Takashi", Type: game.CoFounderHustler}
	assert.Equal(t, game.ActionSubsidy, p.Next(s, 1).Kind)

	assert.Equal(t, game.ActionNextTurn, p.Next(s, p.ActionsPerWeek).Kind)
}

func TestPlannerResolvesEventsFirst(t *testing.T) {
	s := game.NewGameState()
	s.ActiveEvent = &game.NarrativeEvent{
		ID: "ev",
		Choices: []game.Choice{
			{ID: "cash", Effects: []game.Effect{{Kind: game.EffectCash, Amount: 600_000}, {Kind: game.EffectTechDebt, Amount: 20}}},
			{ID: "calm", Effects: []game.Effect{{Kind: game.EffectSanity, Amount: 5}, {Kind: game.EffectPMF, Amount: 2}}},
		},
	}
	a := NewPlanner(PolicyFrugal).Next(s, 99)
	assert.Equal(t, game.ActionResolveEvent, a.Kind)
	assert.Equal(t, "calm", a.ChoiceID)

	a = NewPlanner(PolicyGrowth).Next(s, 0)
	assert.Equal(t, "cash", a.ChoiceID, "growth shrugs off tech debt")
}

func TestPickCard(t *testing.T) {
	s := game.NewGameState()
	s.Negotiation = &game.Negotiation{
		Moves: 3,
		Deck: []game.SalesCard{
			{ID: "weak", Cost: 1, Power: 20},
			{ID: "pricey", Cost: 1, Power: 50, CashCost: 50_000},
			{ID: "heavy", Cost: 4, Power: 200},
		},
	}
	card, ok := pickCard(s, PolicyBalanced)
	require.True(t, ok)
	assert.Equal(t, "pricey", card)

	card, ok = pickCard(s, PolicyFrugal)
	require.True(t, ok)
	assert.Equal(t, "weak", card)

	s.Negotiation.Moves = 0
	_, ok = pickCard(s, PolicyBalanced)
	assert.False(t, ok)
}

func TestRunTerminates(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, policy := range Policies {
		svc := game.NewService(store.NewMemory(), logger, 11)
		id, _, err := svc.NewGame(ctx)
		require.NoError(t, err)

		out, err := Run(ctx, svc, id, NewPlanner(policy), 40)
		require.NoError(t, err, policy)
		assert.LessOrEqual(t, out.Weeks, 40)
		assert.True(t, out.GameOver || out.Weeks == 40, "%s stopped early at week %d", policy, out.Weeks)
		assert.Greater(t, out.Actions, 0)
		assert.NotEmpty(t, out.Ending.Archetype)
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := game.NewService(store.NewMemory(), nil, 1)
	id, _, err := svc.NewGame(context.Background())
	require.NoError(t, err)
	_, err = Run(ctx, svc, id, NewPlanner(PolicyBalanced), 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunBatch(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	svc := game.NewService(mem, slog.New(slog.NewTextHandler(io.Discard, nil)), 3)

	sum, err := RunBatch(ctx, svc, BatchConfig{Games: 3, MaxWeeks: 20, Policy: PolicyBalanced}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Games)
	assert.LessOrEqual(t, sum.AvgWeeks, 20.0)

	total := 0
	for _, n := range sum.Archetypes {
		total += n
	}
	assert.Equal(t, 3, total)

	left, err := mem.ListGames(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, left, "finished or capped games are not kept")
}
