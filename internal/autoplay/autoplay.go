// Package autoplay drives games without a human: a Planner picks the next action
// from the visible state and Run feeds those actions through a game.Service.
package autoplay

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/akinori114514/game/internal/game"
)

type Policy string

const (
	PolicyBalanced Policy = "balanced"
	PolicyGrowth   Policy = "growth"
	PolicyFrugal   Policy = "frugal"
)

var Policies = []Policy{PolicyBalanced, PolicyGrowth, PolicyFrugal}

func ParsePolicy(raw string) (Policy, error) {
	p := Policy(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Policies {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown policy %q", raw)
}

const defaultActionsPerWeek = 4

type Planner struct {
	Policy         Policy
	ActionsPerWeek int
}

func NewPlanner(p Policy) Planner {
	return Planner{Policy: p, ActionsPerWeek: defaultActionsPerWeek}
}

type weights struct {
	cash, sanity, pmf, debt float64
	investor                game.InvestorType
	hireRunway              float64
	maxHeadcount            int
	familyBelow             int
}

func (p Planner) weights() weights {
	switch p.Policy {
	case PolicyGrowth:
		return weights{cash: 1, sanity: 0.2, pmf: 1, debt: 0.1, investor: game.InvestorBlitz, hireRunway: 3, maxHeadcount: 12, familyBelow: 20}
	case PolicyFrugal:
		return weights{cash: 2, sanity: 1, pmf: 0.5, debt: 0.5, investor: game.InvestorFamily, hireRunway: 12, maxHeadcount: 3, familyBelow: 45}
	default:
		return weights{cash: 1, sanity: 0.6, pmf: 1, debt: 0.3, investor: game.InvestorProduct, hireRunway: 6, maxHeadcount: 6, familyBelow: 35}
	}
}

// Next returns the action to take given how many actions were already taken this week.
func (p Planner) Next(s game.GameState, taken int) game.Action {
	w := p.weights()
	limit := p.ActionsPerWeek
	if limit <= 0 {
		limit = defaultActionsPerWeek
	}

	if s.ActiveEvent != nil && len(s.ActiveEvent.Choices) > 0 {
		return game.Action{Kind: game.ActionResolveEvent, ChoiceID: pickChoice(*s.ActiveEvent, w)}
	}
	if s.Negotiation != nil {
		if card, ok := pickCard(s, p.Policy); ok {
			return game.Action{Kind: game.ActionPlayCard, CardID: card}
		}
		return game.Action{Kind: game.ActionAbandon}
	}
	if taken >= limit {
		return game.Action{Kind: game.ActionNextTurn}
	}
	if s.ActiveMajorEvent != nil {
		return game.Action{Kind: game.ActionStartMajor}
	}
	if s.CoFounder == nil {
		t := game.CoFounderHacker
		if p.Policy == PolicyGrowth {
			t = game.CoFounderHustler
		}
		return game.Action{Kind: game.ActionCoFounder, CoFounder: t}
	}
	if !s.Flags.HasReceivedSubsidy {
		return game.Action{Kind: game.ActionSubsidy}
	}
	if s.Sanity < w.familyBelow && !s.IsMachineMode && taken == 0 {
		return game.Action{Kind: game.ActionPrivate, Private: game.PrivateFamily}
	}
	if taken == 0 && s.Flags.IsInterviewUnlocked && s.PMFScore < 60 && s.Cash > 1_000_000 {
		return game.Action{Kind: game.ActionInterview}
	}
	if taken <= 1 {
		if role, ok := p.nextHire(s, w); ok {
			return game.Action{Kind: game.ActionHire, Role: role}
		}
	}
	if target, ok := bestOpenDeal(s); ok && taken <= 2 {
		return game.Action{Kind: game.ActionStartPitch, Target: target}
	}
	return game.Action{Kind: game.ActionNextTurn}
}

func (p Planner) nextHire(s game.GameState, w weights) (game.Role, bool) {
	if s.Employees.Len() >= w.maxHeadcount || s.RunwayMonths < w.hireRunway || s.HiringFriction > 0 {
		return "", false
	}
	switch {
	case s.Employees.Count(game.RoleEngineer) == 0:
		return game.RoleEngineer, true
	case s.InvestorType != game.InvestorProduct && s.Employees.Count(game.RoleSales) == 0:
		return game.RoleSales, true
	case s.Employees.Count(game.RoleCS) == 0 && s.KPI.MRR > 100_000:
		return game.RoleCS, true
	case p.Policy == PolicyGrowth && s.Employees.Count(game.RoleMarketer) == 0:
		return game.RoleMarketer, true
	}
	return game.RoleEngineer, true
}

func pickChoice(ev game.NarrativeEvent, w weights) string {
	best, bestScore := ev.Choices[0].ID, -1e18
	for _, c := range ev.Choices {
		score := 0.0
		for _, e := range c.Effects {
			switch e.Kind {
			case game.EffectCash:
				score += w.cash * e.Amount / 100_000
			case game.EffectSanity:
				score += w.sanity * e.Amount
			case game.EffectPMF:
				score += w.pmf * e.Amount
			case game.EffectTechDebt:
				score -= w.debt * e.Amount
			case game.EffectSetInvestor:
				if e.Investor == w.investor {
					score += 50
				}
			case game.EffectHire:
				score += 5
			}
		}
		if score > bestScore {
			best, bestScore = c.ID, score
		}
	}
	return best
}

// pickCard plays the card with the most resistance per move the player can still afford.
func pickCard(s game.GameState, policy Policy) (string, bool) {
	n := s.Negotiation
	best, bestScore := "", 0.0
	for _, c := range n.Deck {
		if c.Cost > n.Moves || c.Cost <= 0 {
			continue
		}
		if c.CashCost > 0 && (s.Cash-n.Costs.CashCost < c.CashCost || policy == PolicyFrugal) {
			continue
		}
		if c.SanityCost > 0 && s.Sanity-n.Costs.SanityCost <= c.SanityCost+10 {
			continue
		}
		score := c.Power / float64(c.Cost)
		if score > bestScore {
			best, bestScore = c.ID, score
		}
	}
	return best, best != ""
}

func bestOpenDeal(s game.GameState) (game.SalesTarget, bool) {
	if !game.CanUseCommand(s, game.CommandSales) {
		return "", false
	}
	var (
		best game.SalesTarget
		mrr  float64
	)
	for _, offer := range game.DealBoard(s) {
		if offer.Locked != "" || offer.Profile == nil {
			continue
		}
		if offer.Profile.MRR > mrr {
			best, mrr = offer.Target, offer.Profile.MRR
		}
	}
	return best, best != ""
}

type Outcome struct {
	GameID   string      `json:"game_id"`
	Policy   Policy      `json:"policy"`
	Weeks    int         `json:"weeks"`
	GameOver bool        `json:"game_over"`
	Cash     float64     `json:"cash"`
	MRR      float64     `json:"mrr"`
	Phase    game.Phase  `json:"phase"`
	Actions  int         `json:"actions"`
	Rejected int         `json:"rejected"`
	Ending   game.Ending `json:"ending"`
}

// Run plays game id until it ends or reaches maxWeeks.
func Run(ctx context.Context, svc *game.Service, id string, planner Planner, maxWeeks int) (Outcome, error) {
	st, err := svc.State(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{GameID: id, Policy: planner.Policy}
	week, taken := st.Week, 0
	forceTurn := false

	for !st.IsGameOver && st.Week < maxWeeks {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		a := planner.Next(st, taken)
		if forceTurn {
			a = game.Action{Kind: game.ActionNextTurn}
		}
		next, err := svc.Do(ctx, id, a)
		out.Actions++
		switch {
		case errors.Is(err, game.ErrGameOver):
			st = next
		case err != nil && a.Kind == game.ActionNextTurn:
			return out, fmt.Errorf("advance week %d: %w", st.Week, err)
		case err != nil:
			out.Rejected++
			forceTurn = true
			if a.Kind == game.ActionPlayCard {
				next, err = svc.Do(ctx, id, game.Action{Kind: game.ActionAbandon})
				if err != nil {
					return out, fmt.Errorf("abandon negotiation: %w", err)
				}
			}
			st = next
			continue
		default:
			st = next
		}
		if st.Week != week {
			week, taken, forceTurn = st.Week, 0, false
		} else if a.Kind != game.ActionPlayCard && a.Kind != game.ActionResolveEvent {
			taken++
		}
	}

	out.Weeks = st.Week
	out.GameOver = st.IsGameOver
	out.Cash = st.Cash
	out.MRR = st.KPI.MRR
	out.Phase = st.Phase
	out.Ending = game.ClassifyEnding(st)
	return out, nil
}
