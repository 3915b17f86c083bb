package game

import (
	"errors"
	"testing"
)

func TestEvaluateTriggers(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*GameState)
		want  string
	}{
		{name: "quiet week", setup: func(s *GameState) { s.Week = 4 }, want: ""},
		{name: "side gig", setup: func(s *GameState) { s.Week = 3 }, want: "tut_side_gig"},
		{name: "recruit", setup: func(s *GameState) { s.Week = 6 }, want: "tut_recruit"},
		{name: "mentor", setup: func(s *GameState) { s.Week = 8 }, want: "mentor_choice"},
		{name: "mentor already chosen", setup: func(s *GameState) {
			s.Week = 8
			s.MentorType = InvestorBlitz
		}, want: ""},
		{name: "tutorials only in seed", setup: func(s *GameState) {
			s.Week = 3
			s.Phase = PhaseSeriesA
		}, want: ""},
		{name: "series b", setup: func(s *GameState) {
			s.Week = 30
			s.Phase = PhaseSeriesA
			s.KPI.MRR = 5_000_000
		}, want: "series_b_round"},
		{name: "series b below threshold", setup: func(s *GameState) {
			s.Phase = PhaseSeriesA
			s.KPI.MRR = 4_999_999
		}, want: ""},
	}
	for _, tc := range tests {
		s := NewGameState()
		tc.setup(&s)
		ev := EvaluateTriggers(s)
		got := ""
		if ev != nil {
			got = ev.ID
		}
		if got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, got, tc.want)
		}
	}
}

func TestResolveMentorChoice(t *testing.T) {
	s := NewGameState()
	s.Week = 8
	s.ActiveEvent = EvaluateTriggers(s)
	s.IsDecisionMode = true

	next, err := ResolveEvent(s, "mentor_blitz")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if next.Phase != PhaseSeriesA || next.InvestorType != InvestorBlitz || next.MentorType != InvestorBlitz {
		t.Fatalf("mentor choice not applied: phase=%s investor=%s", next.Phase, next.InvestorType)
	}
	if next.Investors[0].Type != InvestorBlitz {
		t.Fatalf("controlling investor not synced: %+v", next.Investors)
	}
	if next.Cash != s.Cash+300_000_000 || next.MarketingBudget != 1_000_000 || next.Sanity != 70 {
		t.Fatalf("effects wrong: cash=%v budget=%v sanity=%d", next.Cash, next.MarketingBudget, next.Sanity)
	}
	if next.Philosophy.Ruthlessness != 10 || next.Philosophy.Loneliness != 5 {
		t.Fatalf("philosophy not merged: %+v", next.Philosophy)
	}
	if next.ActiveEvent != nil || next.IsDecisionMode {
		t.Fatalf("event should be cleared and decision mode lifted")
	}
	if s.ActiveEvent == nil || s.Phase != PhaseSeed {
		t.Fatalf("input state mutated")
	}
}

func TestResolveEventErrorsLeaveStateUntouched(t *testing.T) {
	s := NewGameState()
	if _, err := ResolveEvent(s, "anything"); !errors.Is(err, ErrNoActiveEvent) {
		t.Fatalf("want ErrNoActiveEvent, got %v", err)
	}
	s.Week = 3
	s.ActiveEvent = EvaluateTriggers(s)
	got, err := ResolveEvent(s, "nope")
	if !errors.Is(err, ErrUnknownChoice) {
		t.Fatalf("want ErrUnknownChoice, got %v", err)
	}
	if got.ActiveEvent == nil {
		t.Fatalf("event dropped on error")
	}
}

func TestResolveEventPhaseNeverRegresses(t *testing.T) {
	s := NewGameState()
	s.Phase = PhaseSeriesB
	s.ActiveEvent = &NarrativeEvent{
		ID: "custom",
		Choices: []Choice{{
			ID:      "back",
			Effects: []Effect{{Kind: EffectSetPhase, Phase: PhaseSeed}, {Kind: EffectSanity, Amount: -500}},
		}},
	}
	next, err := ResolveEvent(s, "back")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if next.Phase != PhaseSeriesB {
		t.Fatalf("phase regressed to %s", next.Phase)
	}
	if next.Sanity != 0 || !next.IsMachineMode {
		t.Fatalf("sanity floor or machine mode missing: sanity=%d machine=%v", next.Sanity, next.IsMachineMode)
	}
}

func TestResolveEventDecisionModeOnNegativeCash(t *testing.T) {
	s := NewGameState()
	s.Week = 6
	s.Cash = 100_000
	s.ActiveEvent = EvaluateTriggers(s)

	next, err := ResolveEvent(s, "tut_hire_yes")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !next.IsDecisionMode {
		t.Fatalf("pushing cash below zero should force decision mode")
	}
	if _, ok := next.Employees.Get("star_eng"); !ok {
		t.Fatalf("star engineer not hired")
	}
	if next.PMFScore != 20 {
		t.Fatalf("pmf = %d", next.PMFScore)
	}
}
