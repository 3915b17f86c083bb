package game

import (
	"fmt"
	"math"
)

type MajorEventType string

const (
	MajorBigDeal MajorEventType = "BIG_DEAL"
	MajorBrand   MajorEventType = "BRAND"
	MajorRandom  MajorEventType = "RANDOM"
)

type MajorEvent struct {
	ID                   string         `json:"id" yaml:"id"`
	Label                string         `json:"label" yaml:"label"`
	Type                 MajorEventType `json:"type" yaml:"type"`
	Phase                Phase          `json:"phase" yaml:"phase"`
	Resistance           float64        `json:"resistance" yaml:"resistance"`
	RewardMRR            float64        `json:"reward_mrr" yaml:"reward_mrr"`
	RewardBuffTurns      int            `json:"reward_buff_turns,omitempty" yaml:"reward_buff_turns,omitempty"`
	RewardBuffModifier   float64        `json:"reward_buff_modifier,omitempty" yaml:"reward_buff_modifier,omitempty"`
	EventSuccessModifier float64        `json:"event_success_modifier" yaml:"event_success_modifier"`
	Moves                int            `json:"moves" yaml:"moves"`
	FavoredBy            []InvestorType `json:"favored_by,omitempty" yaml:"favored_by,omitempty"`
	DislikedBy           []InvestorType `json:"disliked_by,omitempty" yaml:"disliked_by,omitempty"`
	FailureCostSales     float64        `json:"failure_cost_sales,omitempty" yaml:"failure_cost_sales,omitempty"`
	FailureCostDev       int            `json:"failure_cost_dev,omitempty" yaml:"failure_cost_dev,omitempty"`
}

var majorEventPools = map[Phase][]MajorEvent{
	PhaseSeed: {
		{
			ID: "seed_collab", Label: "Emergency collab with a mega-venture", Type: MajorBrand, Phase: PhaseSeed,
			Resistance: 70, RewardMRR: 60_000, RewardBuffTurns: 3, RewardBuffModifier: 0.15,
			EventSuccessModifier: 1.05, Moves: 4,
			FavoredBy: []InvestorType{InvestorProduct, InvestorFamily},
		},
		{
			ID: "seed_bigdeal", Label: "Slipping into a government contract", Type: MajorBigDeal, Phase: PhaseSeed,
			Resistance: 90, RewardMRR: 90_000, RewardBuffTurns: 2, RewardBuffModifier: 0.12,
			EventSuccessModifier: 1.0, Moves: 4,
			DislikedBy: []InvestorType{InvestorFamily},
		},
	},
	PhaseSeriesA: {
		{
			ID: "seriesA_brand", Label: "TV exposure and brand tie-up", Type: MajorBrand, Phase: PhaseSeriesA,
			Resistance: 130, RewardMRR: 220_000, RewardBuffTurns: 4, RewardBuffModifier: 0.18,
			EventSuccessModifier: 0.9, Moves: 5,
			FavoredBy: []InvestorType{InvestorProduct, InvestorFamily},
		},
		{
			ID: "seriesA_deal", Label: "Annual contract with a listed company", Type: MajorBigDeal, Phase: PhaseSeriesA,
			Resistance: 150, RewardMRR: 320_000, RewardBuffTurns: 3, RewardBuffModifier: 0.15,
			EventSuccessModifier: 0.85, Moves: 5,
			DislikedBy: []InvestorType{InvestorProduct},
		},
	},
	PhaseSeriesB: {
		{
			ID: "seriesB_whale", Label: "Overseas conglomerate deal", Type: MajorBigDeal, Phase: PhaseSeriesB,
			Resistance: 210, RewardMRR: 650_000, RewardBuffTurns: 4, RewardBuffModifier: 0.2,
			EventSuccessModifier: 0.75, Moves: 5,
			FavoredBy: []InvestorType{InvestorBlitz},
		},
		{
			ID: "seriesB_brand", Label: "Joint announcement with a global brand", Type: MajorBrand, Phase: PhaseSeriesB,
			Resistance: 180, RewardMRR: 400_000, RewardBuffTurns: 5, RewardBuffModifier: 0.22,
			EventSuccessModifier: 0.85, Moves: 5,
			FavoredBy: []InvestorType{InvestorProduct, InvestorFamily},
		},
		{
			ID: "seriesB_random", Label: "Unpredictable viral moment", Type: MajorRandom, Phase: PhaseSeriesB,
			Resistance: 190, RewardMRR: 360_000, RewardBuffTurns: 3, RewardBuffModifier: 0.18,
			EventSuccessModifier: 0.9, Moves: 5, FailureCostSales: 200_000, FailureCostDev: 8,
			DislikedBy: []InvestorType{InvestorFamily},
		},
	},
}

var (
	maxMajorEvents = map[Phase]int{PhaseSeed: 1, PhaseSeriesA: 1, PhaseSeriesB: 2}
	minMajorEvents = map[Phase]int{PhaseSeed: 1, PhaseSeriesA: 1, PhaseSeriesB: 1}
)

func MajorEventPool(phase Phase) []MajorEvent {
	return append([]MajorEvent(nil), majorEventPools[phase]...)
}

func MajorEventByID(id string) (MajorEvent, bool) {
	for _, pool := range majorEventPools {
		for _, ev := range pool {
			if ev.ID == id {
				return ev, true
			}
		}
	}
	return MajorEvent{}, false
}

// TriggerMajorEvent picks the next major event for phase, or nil. A forced trigger
// skips the probability roll but still honours the active-event and cap rules.
func TriggerMajorEvent(phase Phase, s GameState, force bool, rng Rand) *MajorEvent {
	if s.ActiveMajorEvent != nil {
		return nil
	}
	count := s.MajorEventCountByPhase[phase]
	if count >= maxMajorEvents[phase] {
		return nil
	}
	if !force {
		if count < minMajorEvents[phase] {
			return nil
		}
		if rng.Float64() < 0.5 {
			return nil
		}
	}
	pool := majorEventPools[phase]
	if len(pool) == 0 {
		return nil
	}
	ev := pool[rng.Intn(len(pool))]
	return &ev
}

type PlayerCapability struct {
	PMF            int     `json:"pmf"`
	SalesCount     int     `json:"sales_count"`
	ProductQuality int     `json:"product_quality"`
	ModifierSum    float64 `json:"modifier_sum"`
}

func capabilityOf(s GameState, modifierSum float64) PlayerCapability {
	return PlayerCapability{
		PMF:            s.PMFScore,
		SalesCount:     s.Employees.Count(RoleSales),
		ProductQuality: ProductQuality(s),
		ModifierSum:    modifierSum,
	}
}

func MajorEventSuccess(ev MajorEvent, p PlayerCapability) float64 {
	chance := DealSuccessChance(float64(p.PMF), p.SalesCount, float64(p.ProductQuality), p.ModifierSum, ev.Resistance)
	return clampFloat(chance*ev.EventSuccessModifier, MinDealChance, MaxDealChance)
}

// ApplyMajorEventOutcome settles a major event and updates every investor's reputation.
func ApplyMajorEventOutcome(s GameState, ev MajorEvent, success bool) GameState {
	next := s.Clone()
	if success {
		next.KPI.MRR += ev.RewardMRR
		if ev.RewardBuffTurns > 0 && ev.RewardBuffModifier != 0 {
			next = ApplyTemporaryModifier(next, ev.RewardBuffTurns, ev.RewardBuffModifier)
		}
		next.appendLog(fmt.Sprintf("Major event won: %s (MRR +%.0f)", ev.Label, ev.RewardMRR), LogSuccess)
	} else {
		if ev.FailureCostSales > 0 && next.Cash > 0 {
			next.Cash = math.Max(0, next.Cash-ev.FailureCostSales)
		}
		next.TechDebt += ev.FailureCostDev
		next.appendLog(fmt.Sprintf("Major event lost: %s", ev.Label), LogWarning)
	}
	next.Investors = UpdateAllReputations(next.Investors, ev.Type, success)
	if next.ActiveMajorEvent != nil && next.ActiveMajorEvent.ID == ev.ID {
		next.ActiveMajorEvent = nil
	}
	return next
}
