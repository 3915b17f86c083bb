package game

import (
	mathrand "math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnStageOrder(t *testing.T) {
	names := TurnStageNames()
	require.Len(t, names, 14)
	assert.Equal(t, "machine_mode", names[0])
	assert.Equal(t, "sales_throughput", names[4])
	assert.Equal(t, "narrative", names[12])
	assert.Equal(t, "mode_transitions", names[13])
}

func TestBootstrapDeathSpiral(t *testing.T) {
	rng := mathrand.New(mathrand.NewSource(7))
	s := NewGameState()

	turns := 0
	for !s.IsGameOver && turns < 200 {
		s = AdvanceTurn(s, TurnBonuses{}, rng)
		turns++
		if !s.IsGameOver {
			require.GreaterOrEqual(t, s.Cash, 0.0, "turn %d", turns)
		}
	}
	// 310,000 a month is 77,500 a week against 5,000,000 of cash.
	assert.Equal(t, 65, turns)
	assert.True(t, s.IsGameOver)
	assert.InDelta(t, 5_000_000-65*77_500.0, s.Cash, 1e-6)
	assert.Equal(t, 65, s.Week)
	assert.Equal(t, "2021-06-30", s.Date)

	after := AdvanceTurn(s, TurnBonuses{}, rng)
	assert.Equal(t, s, after, "advancing a finished game is a no-op")
}

func TestAdvanceTurnDoesNotMutateInput(t *testing.T) {
	s := NewGameState()
	s.Employees.Add(Employee{ID: "e1", Role: RoleSales, Salary: 600_000})
	s.Leads = 40
	before := s.Clone()

	next := AdvanceTurn(s, TurnBonuses{GoldenLeadHit: true}, mathrand.New(mathrand.NewSource(1)))
	assert.Equal(t, before, s)
	assert.NotEqual(t, s.Week, next.Week)
}

func TestAdvanceTurnIsReproducible(t *testing.T) {
	s := NewGameState()
	s.PMFScore = 70
	s.KPI.MRR = 400_000
	s.MarketingBudget = 300_000
	s.Employees.Add(Employee{ID: "s1", Role: RoleSales, Salary: 600_000})

	run := func() GameState {
		rng := mathrand.New(mathrand.NewSource(42))
		st := s
		for i := 0; i < 20; i++ {
			st = NextTurn(st, TurnBonuses{}, rng)
		}
		return st
	}
	assert.Equal(t, run(), run())
}

func TestLeadRollover(t *testing.T) {
	s := NewGameState()
	s.Leads = 30
	s.Flags.MarketTrendWeeksLeft = 5

	next := AdvanceTurn(s, TurnBonuses{}, &scriptedRand{def: 0.5})
	// SEED founder capacity is 5 with no sales staff.
	assert.Equal(t, 5, next.PipelineMetrics.SalesCapacity)
	assert.Equal(t, 5, next.PipelineMetrics.LeadsProcessed)
	assert.Equal(t, 25, next.PipelineMetrics.LeadsLost)
	assert.Equal(t, 25, next.Leads)
}

func TestPMFFrozenStopsSalesForOneTurn(t *testing.T) {
	s := NewGameState()
	s.Leads = 10
	s.Flags.PMFFrozen = true

	next := AdvanceTurn(s, TurnBonuses{}, &scriptedRand{def: 0.5})
	assert.Equal(t, 0, next.PipelineMetrics.SalesCapacity)
	assert.Equal(t, 10, next.Leads)
	assert.False(t, next.Flags.PMFFrozen)
}

func TestChurnFloor(t *testing.T) {
	s := NewGameState()
	s.KPI.MRR = 1_000_000
	s.Employees.Add(Employee{ID: "cs", Role: RoleCS})

	for _, incidents := range []int{0, 3, 50, 10_000} {
		next := AdvanceTurn(s, TurnBonuses{IncidentsResolved: incidents}, &scriptedRand{def: 0.5})
		assert.GreaterOrEqual(t, next.KPI.ChurnRate, minChurn, "incidents=%d", incidents)
	}
	huge := AdvanceTurn(s, TurnBonuses{IncidentsResolved: 10_000}, &scriptedRand{def: 0.5})
	assert.Equal(t, minChurn, huge.KPI.ChurnRate)
}

func TestMachineModeTrigger(t *testing.T) {
	s := NewGameState()
	s.Sanity = 5

	worked, err := DoPrivateAction(s, PrivateWork)
	require.NoError(t, err)
	assert.Equal(t, 0, worked.Sanity)

	next := AdvanceTurn(worked, TurnBonuses{}, &scriptedRand{def: 0.5})
	assert.True(t, next.IsMachineMode)
	assert.Equal(t, 0, next.Sanity)

	// The founder's doubled productivity shows up in capacity.
	assert.Equal(t, 10, next.PipelineMetrics.SalesCapacity)
}

func TestOneWayFlagsAndMonotonicPhase(t *testing.T) {
	rng := mathrand.New(mathrand.NewSource(99))
	s := NewGameState()
	s.Sanity = 0
	s.Phase = PhaseSeriesA
	s.Cash = 3_000_000_000
	s.PMFScore = 60

	machineSeen := false
	for i := 0; i < 60; i++ {
		prev := s
		s = NextTurn(s, TurnBonuses{}, rng)
		if s.ActiveEvent != nil && len(s.ActiveEvent.Choices) > 0 {
			next, err := ResolveEvent(s, s.ActiveEvent.Choices[0].ID)
			require.NoError(t, err)
			s = next
		}
		if prev.IsMachineMode {
			machineSeen = true
			require.True(t, s.IsMachineMode, "machine mode reverted at turn %d", i)
		}
		require.GreaterOrEqual(t, s.Phase.Rank(), prev.Phase.Rank(), "phase regressed at turn %d", i)
		if prev.IsGameOver {
			require.True(t, s.IsGameOver)
		}
		if prev.Flags.IsSideGigUnlocked {
			require.True(t, s.Flags.IsSideGigUnlocked)
		}
	}
	assert.True(t, machineSeen)
}

func TestModeTransitions(t *testing.T) {
	t.Run("low runway forces decision mode", func(t *testing.T) {
		s := NewGameState()
		s.Cash = 300_000
		next := AdvanceTurn(s, TurnBonuses{}, &scriptedRand{def: 0.5})
		assert.True(t, next.IsDecisionMode)
		assert.False(t, next.IsGameOver)
	})
	t.Run("recovery clears decision mode", func(t *testing.T) {
		s := NewGameState()
		s.IsDecisionMode = true
		s.Week = 10
		next := AdvanceTurn(s, TurnBonuses{}, &scriptedRand{def: 0.5})
		assert.False(t, next.IsDecisionMode)
	})
	t.Run("low sanity forces decision mode", func(t *testing.T) {
		s := NewGameState()
		s.Sanity = 15
		s.Week = 10
		next := AdvanceTurn(s, TurnBonuses{}, &scriptedRand{def: 0.5})
		assert.True(t, next.IsDecisionMode)
	})
	t.Run("critical event forces decision mode", func(t *testing.T) {
		s := NewGameState()
		s.Week = 7
		next := AdvanceTurn(s, TurnBonuses{}, &scriptedRand{def: 0.5})
		require.NotNil(t, next.ActiveEvent)
		assert.Equal(t, "mentor_choice", next.ActiveEvent.ID)
		assert.True(t, next.IsDecisionMode)
	})
}

func TestForcedMajorEventPerPhase(t *testing.T) {
	s := NewGameState()
	next := AdvanceTurn(s, TurnBonuses{}, &scriptedRand{def: 0.5})
	require.NotNil(t, next.ActiveMajorEvent)
	assert.Equal(t, PhaseSeed, next.ActiveMajorEvent.Phase)
	assert.Equal(t, 1, next.MajorEventCountByPhase[PhaseSeed])

	// Pending narrative events hold the major event back.
	s.Week = 2
	held := AdvanceTurn(s, TurnBonuses{}, &scriptedRand{def: 0.5})
	require.NotNil(t, held.ActiveEvent)
	assert.Nil(t, held.ActiveMajorEvent)
}

func TestMarketTrendRotation(t *testing.T) {
	tests := []struct {
		roll  float64
		trend MarketTrend
		weeks int
	}{
		{0.1, TrendSaaSBoom, 6},
		{0.4, TrendRecession, 8},
		{0.7, TrendCompetitorFUD, 4},
		{0.9, TrendNormal, 8},
	}
	for _, tc := range tests {
		s := NewGameState()
		s.Flags.MarketTrendWeeksLeft = 0
		next := AdvanceTurn(s, TurnBonuses{}, &scriptedRand{floats: []float64{tc.roll}, def: 0.5})
		if next.MarketTrend != tc.trend || next.Flags.MarketTrendWeeksLeft != tc.weeks {
			t.Fatalf("roll %v: got %s/%d want %s/%d", tc.roll, next.MarketTrend, next.Flags.MarketTrendWeeksLeft, tc.trend, tc.weeks)
		}
	}
}

func TestNextTurnUpkeep(t *testing.T) {
	s := NewGameState()
	s.Week = 2
	s.DifficultyModifier = &DifficultyModifier{RemainingWeeks: 1, Modifier: 0.1}

	next := NextTurn(s, TurnBonuses{}, &scriptedRand{def: 0.5})
	assert.Equal(t, 3, next.Week)
	assert.True(t, next.Flags.IsSideGigUnlocked)
	assert.False(t, next.Flags.IsRecruitUnlocked)
	assert.Nil(t, next.DifficultyModifier)
	assert.Equal(t, 88, next.FamilyRelationship)

	s.IsMachineMode = true
	s.Sanity = 0
	assert.Equal(t, 85, NextTurn(s, TurnBonuses{}, &scriptedRand{def: 0.5}).FamilyRelationship)
}

func TestFamilyInvestorRestoresSanity(t *testing.T) {
	s := NewGameState()
	s.setInvestorType(InvestorFamily)
	s.Sanity = 50
	s.Week = 10
	next := AdvanceTurn(s, TurnBonuses{}, &scriptedRand{def: 0.5})
	assert.Equal(t, 52, next.Sanity)
}
