package game

import "fmt"

type DealProfile struct {
	Target        SalesTarget `json:"target" yaml:"target"`
	Label         string      `json:"label" yaml:"label"`
	Resistance    float64     `json:"resistance" yaml:"resistance"`
	Moves         int         `json:"moves" yaml:"moves"`
	MRR           float64     `json:"mrr" yaml:"mrr"`
	MinPhase      Phase       `json:"min_phase" yaml:"min_phase"`
	MinPMF        int         `json:"min_pmf" yaml:"min_pmf"`
	RequiresSales bool        `json:"requires_sales" yaml:"requires_sales"`
}

type dealTier struct {
	label         string
	moves         int
	minPhase      Phase
	minPMF        int
	requiresSales bool
	resistance    map[Phase]float64
	mrr           map[Phase]float64
}

var dealTiers = map[SalesTarget]dealTier{
	TargetFriends: {
		label:      "Friends & Acquaintances",
		moves:      3,
		minPhase:   PhaseSeed,
		resistance: map[Phase]float64{PhaseSeed: 30, PhaseSeriesA: 40, PhaseSeriesB: 50},
		mrr:        map[Phase]float64{PhaseSeed: 10_000, PhaseSeriesA: 20_000, PhaseSeriesB: 40_000},
	},
	TargetStartup: {
		label:      "Startup",
		moves:      3,
		minPhase:   PhaseSeed,
		minPMF:     25,
		resistance: map[Phase]float64{PhaseSeed: 60, PhaseSeriesA: 70, PhaseSeriesB: 80},
		mrr:        map[Phase]float64{PhaseSeed: 50_000, PhaseSeriesA: 100_000, PhaseSeriesB: 150_000},
	},
	TargetEnterprise: {
		label:         "Enterprise",
		moves:         4,
		minPhase:      PhaseSeriesA,
		minPMF:        50,
		requiresSales: true,
		resistance:    map[Phase]float64{PhaseSeriesA: 140, PhaseSeriesB: 120},
		mrr:           map[Phase]float64{PhaseSeriesA: 350_000, PhaseSeriesB: 700_000},
	},
	TargetWhale: {
		label:         "Mega Conglomerate (WHALE)",
		moves:         5,
		minPhase:      PhaseSeriesB,
		minPMF:        70,
		requiresSales: true,
		resistance:    map[Phase]float64{PhaseSeriesB: 220},
		mrr:           map[Phase]float64{PhaseSeriesB: 2_500_000},
	},
}

// SalesTargets lists negotiation targets from easiest to hardest.
var SalesTargets = []SalesTarget{TargetFriends, TargetStartup, TargetEnterprise, TargetWhale}

// DealProfileFor resolves the target's profile for phase. ok is false when the
// target is not offered in that phase.
func DealProfileFor(target SalesTarget, phase Phase) (DealProfile, bool) {
	tier, ok := dealTiers[target]
	if !ok || phase.Rank() < tier.minPhase.Rank() {
		return DealProfile{}, false
	}
	resistance, ok := tier.resistance[phase]
	if !ok {
		return DealProfile{}, false
	}
	return DealProfile{
		Target:        target,
		Label:         tier.label,
		Resistance:    resistance,
		Moves:         tier.moves,
		MRR:           tier.mrr[phase],
		MinPhase:      tier.minPhase,
		MinPMF:        tier.minPMF,
		RequiresSales: tier.requiresSales,
	}, true
}

type DealGateInput struct {
	Target   SalesTarget `json:"target"`
	Phase    Phase       `json:"phase"`
	PMFScore int         `json:"pmf_score"`
	HasSales bool        `json:"has_sales"`
}

// DealGateMessage returns the first reason the deal is locked, or "" when it is open.
func DealGateMessage(in DealGateInput) string {
	tier, known := dealTiers[in.Target]
	if !known {
		return fmt.Sprintf("Unknown deal target %q", in.Target)
	}
	profile, ok := DealProfileFor(in.Target, in.Phase)
	if !ok {
		if in.Phase.Rank() < tier.minPhase.Rank() {
			return fmt.Sprintf("Phase too early: requires %s", tier.minPhase)
		}
		return "Not offered in the current phase"
	}
	if in.PMFScore < profile.MinPMF {
		return fmt.Sprintf("PMF %d+ required", profile.MinPMF)
	}
	if profile.RequiresSales && !in.HasSales {
		return "Sales staff required"
	}
	return ""
}

func dealGateFor(s GameState, target SalesTarget) string {
	return DealGateMessage(DealGateInput{
		Target:   target,
		Phase:    s.Phase,
		PMFScore: s.PMFScore,
		HasSales: s.Employees.Has(RoleSales),
	})
}

type DealOffer struct {
	Target  SalesTarget  `json:"target" yaml:"target"`
	Profile *DealProfile `json:"profile,omitempty" yaml:"profile,omitempty"`
	Locked  string       `json:"locked,omitempty" yaml:"locked,omitempty"`
}

// DealBoard lists every target with its profile for the current phase and the gate
// message when it cannot be pitched yet.
func DealBoard(s GameState) []DealOffer {
	out := make([]DealOffer, 0, len(SalesTargets))
	for _, target := range SalesTargets {
		offer := DealOffer{Target: target, Locked: dealGateFor(s, target)}
		if p, ok := DealProfileFor(target, s.Phase); ok {
			offer.Profile = &p
		}
		out = append(out, offer)
	}
	return out
}
