package game

import (
	"fmt"
	"math"
	"slices"
)

type SalesCard struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Cost        int     `json:"cost" yaml:"cost"`
	Power       float64 `json:"power" yaml:"power"`
	CashCost    float64 `json:"cash_cost,omitempty" yaml:"cash_cost,omitempty"`
	SanityCost  int     `json:"sanity_cost,omitempty" yaml:"sanity_cost,omitempty"`
	TechDebt    int     `json:"tech_debt,omitempty" yaml:"tech_debt,omitempty"`
}

// SideEffects are the costs a negotiation accumulated, settled when it ends.
type SideEffects struct {
	TechDebt   int     `json:"tech_debt" yaml:"tech_debt"`
	SanityCost int     `json:"sanity_cost" yaml:"sanity_cost"`
	CashCost   float64 `json:"cash_cost" yaml:"cash_cost"`
}

type Negotiation struct {
	Target        SalesTarget `json:"target,omitempty" yaml:"target,omitempty"`
	MajorEventID  string      `json:"major_event_id,omitempty" yaml:"major_event_id,omitempty"`
	Label         string      `json:"label" yaml:"label"`
	Resistance    float64     `json:"resistance" yaml:"resistance"`
	MaxResistance float64     `json:"max_resistance" yaml:"max_resistance"`
	Moves         int         `json:"moves" yaml:"moves"`
	RewardMRR     float64     `json:"reward_mrr" yaml:"reward_mrr"`
	Deck          []SalesCard `json:"deck" yaml:"deck"`
	Costs         SideEffects `json:"costs" yaml:"costs"`
	SuccessBonus  float64     `json:"success_bonus" yaml:"success_bonus"`
	Log           []string    `json:"log" yaml:"log"`
}

func (n Negotiation) clone() Negotiation {
	out := n
	out.Deck = slices.Clone(n.Deck)
	out.Log = slices.Clone(n.Log)
	return out
}

func (n Negotiation) IsMajor() bool { return n.MajorEventID != "" }

func (n Negotiation) card(id string) (SalesCard, bool) {
	for _, c := range n.Deck {
		if c.ID == id {
			return c, true
		}
	}
	return SalesCard{}, false
}

const (
	minDeckSize       = 4
	lostDealSanity    = 10
	majorBonusDivisor = 10
)

// BuildDeck deals the founder's cards plus whatever the team and co-founder bring.
func BuildDeck(s GameState) []SalesCard {
	deck := []SalesCard{
		{ID: "base_1", Name: "Passion", Description: "Tell them what you believe in", Cost: 1, Power: 20},
		{ID: "base_2", Name: "Grovel", Description: "Swallow your pride", Cost: 1, Power: 40, SanityCost: 10},
	}
	if cf := s.CoFounder; cf != nil {
		switch cf.Type {
		case CoFounderHustler:
			deck = append(deck, SalesCard{ID: "co_1", Name: "Hard push", Description: "Never take no for an answer", Cost: 1, Power: 35})
		case CoFounderHacker:
			deck = append(deck, SalesCard{ID: "co_2", Name: "Prototype", Description: "Show something that runs", Cost: 1, Power: 30})
		}
	}
	if s.Employees.Has(RoleSales) {
		deck = append(deck,
			SalesCard{ID: "sales_1", Name: "Wining and dining", Description: "Close it over premium barbecue", Cost: 1, Power: 50, CashCost: 50_000},
			SalesCard{ID: "sales_2", Name: "Overpromise", Description: "\"We'll ship it next month!\"", Cost: 1, Power: 80, TechDebt: 10},
		)
	}
	if s.Employees.Has(RoleEngineer) {
		deck = append(deck, SalesCard{ID: "eng_1", Name: "Facade", Description: "A mock-up that only looks real", Cost: 1, Power: 60, TechDebt: 5})
	}
	if s.Employees.Has(RoleCS) {
		deck = append(deck, SalesCard{ID: "cs_1", Name: "Reassurance", Description: "Pitch the support team", Cost: 2, Power: 40})
	}
	if len(deck) < minDeckSize {
		deck = append(deck, SalesCard{ID: "gen_1", Name: "Discount", Description: "Trade margin for a yes", Cost: 1, Power: 15})
	}
	return deck
}

// StartNegotiation opens a pitch against target after checking its gate.
func StartNegotiation(s GameState, target SalesTarget) (GameState, error) {
	if s.IsGameOver {
		return s, ErrGameOver
	}
	if s.Negotiation != nil {
		return s, ErrNegotiationActive
	}
	if !CanUseCommand(s, CommandSales) {
		return s, ErrCommandLocked
	}
	if msg := dealGateFor(s, target); msg != "" {
		return s, fmt.Errorf("%w: %s", ErrDealUnavailable, msg)
	}
	profile, _ := DealProfileFor(target, s.Phase)
	resistance := EffectiveResistance(profile.Resistance, s.DifficultyModifier)
	next := s.Clone()
	next.Negotiation = &Negotiation{
		Target:        target,
		Label:         profile.Label,
		Resistance:    resistance,
		MaxResistance: resistance,
		Moves:         profile.Moves,
		RewardMRR:     profile.MRR,
		Deck:          BuildDeck(s),
		Log:           []string{fmt.Sprintf("Pitch opened: %s, expected MRR %.0f", profile.Label, profile.MRR)},
	}
	return next, nil
}

// StartMajorNegotiation opens a negotiation for the pending major event.
func StartMajorNegotiation(s GameState) (GameState, error) {
	if s.IsGameOver {
		return s, ErrGameOver
	}
	if s.Negotiation != nil {
		return s, ErrNegotiationActive
	}
	if s.ActiveMajorEvent == nil {
		return s, ErrNoActiveMajorEvent
	}
	ev := *s.ActiveMajorEvent
	resistance := EffectiveResistance(ev.Resistance, s.DifficultyModifier)
	next := s.Clone()
	next.Negotiation = &Negotiation{
		MajorEventID:  ev.ID,
		Label:         ev.Label,
		Resistance:    resistance,
		MaxResistance: resistance,
		Moves:         ev.Moves,
		RewardMRR:     ev.RewardMRR,
		Deck:          BuildDeck(s),
		Log:           []string{fmt.Sprintf("Major negotiation opened: %s", ev.Label)},
	}
	return next, nil
}

// NegotiationResult reports how a settled negotiation ended. Settled is false while
// the session is still open.
type NegotiationResult struct {
	Settled bool    `json:"settled"`
	Won     bool    `json:"won"`
	Chance  float64 `json:"chance,omitempty"`
	MRR     float64 `json:"mrr,omitempty"`
}

// PlayCard spends the card's moves and resources. The session settles when resistance
// reaches zero or the moves run out.
func PlayCard(s GameState, cardID string, rng Rand) (GameState, NegotiationResult, error) {
	if s.IsGameOver {
		return s, NegotiationResult{}, ErrGameOver
	}
	if s.Negotiation == nil {
		return s, NegotiationResult{}, ErrNoNegotiation
	}
	n := s.Negotiation
	c, ok := n.card(cardID)
	if !ok {
		return s, NegotiationResult{}, ErrUnknownCard
	}
	if n.Moves < c.Cost {
		return s, NegotiationResult{}, ErrInsufficientMoves
	}
	if c.CashCost > 0 && s.Cash-n.Costs.CashCost < c.CashCost {
		return s, NegotiationResult{}, ErrInsufficientFunds
	}
	if c.SanityCost > 0 && s.Sanity-n.Costs.SanityCost < c.SanityCost {
		return s, NegotiationResult{}, ErrInsufficientSanity
	}

	next := s.Clone()
	neg := next.Negotiation
	neg.Costs.CashCost += c.CashCost
	neg.Costs.SanityCost += c.SanityCost
	neg.Costs.TechDebt += c.TechDebt
	neg.Resistance = math.Max(0, neg.Resistance-c.Power)
	neg.Moves -= c.Cost
	if neg.IsMajor() {
		neg.SuccessBonus += c.Power / majorBonusDivisor
	}
	neg.Log = append(neg.Log, fmt.Sprintf("Played %s: resistance -%.0f", c.Name, c.Power))

	if neg.Resistance > 0 && neg.Moves > 0 {
		return next, NegotiationResult{}, nil
	}
	if neg.IsMajor() {
		return settleMajor(next, rng)
	}
	won := neg.Resistance == 0
	costs := neg.Costs
	if !won {
		costs.SanityCost += lostDealSanity
	}
	target := neg.Target
	next.Negotiation = nil
	settled := CompleteSalesPitch(next, target, won, costs)
	res := NegotiationResult{Settled: true, Won: won}
	if won {
		res.MRR = settled.KPI.MRR - next.KPI.MRR
	}
	return settled, res, nil
}

func settleMajor(s GameState, rng Rand) (GameState, NegotiationResult, error) {
	neg := *s.Negotiation
	s.Negotiation = nil
	ev, ok := MajorEventByID(neg.MajorEventID)
	if !ok {
		return s, NegotiationResult{}, ErrNoActiveMajorEvent
	}
	s.Cash -= neg.Costs.CashCost
	s.addSanity(-neg.Costs.SanityCost)
	s.TechDebt += neg.Costs.TechDebt

	ev.Resistance = neg.Resistance
	mod := ModifierSum(TierBaseModifier(s.Phase), neg.SuccessBonus, s.DifficultyModifier)
	chance := MajorEventSuccess(ev, capabilityOf(s, mod))
	won := rng.Float64() < chance
	next := ApplyMajorEventOutcome(s, ev, won)
	next.enterMachineModeIfDepleted()
	res := NegotiationResult{Settled: true, Won: won, Chance: chance}
	if won {
		res.MRR = ev.RewardMRR
	}
	return next, res, nil
}

// AbandonNegotiation walks away from an open session. Costs already spent are settled
// as a lost deal; an abandoned major event stays pending.
func AbandonNegotiation(s GameState) (GameState, error) {
	if s.Negotiation == nil {
		return s, ErrNoNegotiation
	}
	next := s.Clone()
	neg := *next.Negotiation
	next.Negotiation = nil
	if neg.IsMajor() {
		next.Cash -= neg.Costs.CashCost
		next.addSanity(-neg.Costs.SanityCost)
		next.TechDebt += neg.Costs.TechDebt
		next.appendLog(fmt.Sprintf("Walked away from %s", neg.Label), LogWarning)
		next.enterMachineModeIfDepleted()
		return next, nil
	}
	return CompleteSalesPitch(next, neg.Target, false, neg.Costs), nil
}
