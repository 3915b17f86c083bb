package game

import (
	"fmt"
	"slices"
)

type EffectKind string

const (
	EffectCash            EffectKind = "cash"
	EffectTechDebt        EffectKind = "tech_debt"
	EffectSanity          EffectKind = "sanity"
	EffectPMF             EffectKind = "pmf"
	EffectMarketingBudget EffectKind = "marketing_budget"
	EffectSetTechDebt     EffectKind = "set_tech_debt"
	EffectSetSanity       EffectKind = "set_sanity"
	EffectSetPhase        EffectKind = "set_phase"
	EffectSetInvestor     EffectKind = "set_investor"
	EffectHire            EffectKind = "hire"
)

// Effect is one serialisable state delta carried by a narrative choice.
type Effect struct {
	Kind     EffectKind   `json:"kind" yaml:"kind"`
	Amount   float64      `json:"amount,omitempty" yaml:"amount,omitempty"`
	Phase    Phase        `json:"phase,omitempty" yaml:"phase,omitempty"`
	Investor InvestorType `json:"investor,omitempty" yaml:"investor,omitempty"`
	Employee *Employee    `json:"employee,omitempty" yaml:"employee,omitempty"`
}

type Choice struct {
	ID          string     `json:"id" yaml:"id"`
	Label       string     `json:"label" yaml:"label"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Effects     []Effect   `json:"effects" yaml:"effects"`
	Philosophy  Philosophy `json:"philosophy_delta" yaml:"philosophy_delta"`
}

type NarrativeEvent struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Severity    Severity `json:"severity" yaml:"severity"`
	Choices     []Choice `json:"choices" yaml:"choices"`
}

func (ev NarrativeEvent) clone() NarrativeEvent {
	out := ev
	out.Choices = slices.Clone(ev.Choices)
	for i, c := range out.Choices {
		c.Effects = slices.Clone(c.Effects)
		for j, e := range c.Effects {
			if e.Employee != nil {
				emp := *e.Employee
				c.Effects[j].Employee = &emp
			}
		}
		out.Choices[i] = c
	}
	return out
}

func (ev NarrativeEvent) choice(id string) (Choice, bool) {
	for _, c := range ev.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return Choice{}, false
}

const seriesBThresholdMRR = 5_000_000

// EvaluateTriggers returns the first narrative event whose conditions hold, or nil.
func EvaluateTriggers(s GameState) *NarrativeEvent {
	for _, trig := range narrativeTriggers {
		if trig.when(s) {
			ev := trig.event()
			return &ev
		}
	}
	return nil
}

type narrativeTrigger struct {
	when  func(GameState) bool
	event func() NarrativeEvent
}

var narrativeTriggers = []narrativeTrigger{
	{
		when:  func(s GameState) bool { return s.Week == 3 && s.Phase == PhaseSeed },
		event: sideGigEvent,
	},
	{
		when:  func(s GameState) bool { return s.Week == 6 && s.Phase == PhaseSeed },
		event: recruitEvent,
	},
	{
		when: func(s GameState) bool {
			return s.Week == 8 && s.Phase == PhaseSeed && s.MentorType == InvestorNone
		},
		event: mentorChoiceEvent,
	},
	{
		when: func(s GameState) bool {
			return s.Phase == PhaseSeriesA && s.KPI.MRR >= seriesBThresholdMRR
		},
		event: seriesBRoundEvent,
	},
}

func sideGigEvent() NarrativeEvent {
	return NarrativeEvent{
		ID:          "tut_side_gig",
		Title:       "A practical choice",
		Description: "Cash is draining. An old acquaintance offers 600,000 for three days of web work.",
		Severity:    SeverityNormal,
		Choices: []Choice{
			{
				ID:          "tut_gig_yes",
				Label:       "Take it (+600k cash, more tech debt)",
				Description: "Beggars can't be choosers. Product work stops.",
				Effects: []Effect{
					{Kind: EffectCash, Amount: 600_000},
					{Kind: EffectTechDebt, Amount: 20},
					{Kind: EffectSanity, Amount: -5},
				},
			},
			{
				ID:          "tut_gig_no",
				Label:       "Decline (keep sanity)",
				Description: "Focus on the product. No money.",
				Effects: []Effect{
					{Kind: EffectSanity, Amount: 5},
					{Kind: EffectPMF, Amount: 2},
				},
			},
		},
	}
}

func recruitEvent() NarrativeEvent {
	star := Employee{
		ID:         "star_eng",
		Name:       "Star Engineer",
		Role:       RoleEngineer,
		Stats:      EmployeeStats{Tech: 90, Sales: 10, Management: 20},
		Salary:     800_000,
		Motivation: 100,
		Culture:    CultureInnovation,
	}
	return NarrativeEvent{
		ID:          "tut_recruit",
		Title:       "A friend who codes",
		Description: "A brilliant university friend is thinking about a move. He is good, and expensive.",
		Severity:    SeverityNormal,
		Choices: []Choice{
			{
				ID:          "tut_hire_yes",
				Label:       "Hire him (higher burn, faster PMF)",
				Description: "800k a month. Development speed doubles.",
				Effects: []Effect{
					{Kind: EffectHire, Employee: &star},
					{Kind: EffectCash, Amount: -500_000},
					{Kind: EffectPMF, Amount: 20},
				},
			},
			{
				ID:          "tut_hire_no",
				Label:       "Pass",
				Description: "This is not the time to raise fixed costs.",
				Effects:     []Effect{{Kind: EffectSanity, Amount: -5}},
			},
		},
	}
}

func mentorChoiceEvent() NarrativeEvent {
	return NarrativeEvent{
		ID:          "mentor_choice",
		Title:       "Series A: the fateful choice",
		Description: "Three investors want in. Whoever you pick rewrites the company's operating system.",
		Severity:    SeverityCritical,
		Choices: []Choice{
			{
				ID:          "mentor_blitz",
				Label:       "Hyper-growth fund (BLITZ)",
				Description: "300M now. 30% monthly growth, no excuses.",
				Philosophy:  Philosophy{Ruthlessness: 10, Loneliness: 5},
				Effects: []Effect{
					{Kind: EffectSetInvestor, Investor: InvestorBlitz},
					{Kind: EffectSetPhase, Phase: PhaseSeriesA},
					{Kind: EffectCash, Amount: 300_000_000},
					{Kind: EffectMarketingBudget, Amount: 1_000_000},
					{Kind: EffectSanity, Amount: -10},
				},
			},
			{
				ID:          "mentor_product",
				Label:       "Engineer VC (PRODUCT)",
				Description: "200M. Don't hire sales. Write code.",
				Philosophy:  Philosophy{Craftsmanship: 15, Ruthlessness: -5},
				Effects: []Effect{
					{Kind: EffectSetInvestor, Investor: InvestorProduct},
					{Kind: EffectSetPhase, Phase: PhaseSeriesA},
					{Kind: EffectCash, Amount: 200_000_000},
					{Kind: EffectSetTechDebt, Amount: 0},
					{Kind: EffectPMF, Amount: 10},
				},
			},
			{
				ID:          "mentor_family",
				Label:       "Regional bank (FAMILY)",
				Description: "A 100M loan. Take care of your people.",
				Philosophy:  Philosophy{Ruthlessness: -10, Craftsmanship: -5},
				Effects: []Effect{
					{Kind: EffectSetInvestor, Investor: InvestorFamily},
					{Kind: EffectSetPhase, Phase: PhaseSeriesA},
					{Kind: EffectCash, Amount: 100_000_000},
					{Kind: EffectSetSanity, Amount: 100},
				},
			},
		},
	}
}

func seriesBRoundEvent() NarrativeEvent {
	return NarrativeEvent{
		ID:          "series_b_round",
		Title:       "Series B: growing pains",
		Description: "MRR passed 5M. The org is past thirty people and nobody knows everyone anymore.",
		Severity:    SeverityCritical,
		Choices: []Choice{
			{
				ID:    "series_b_go",
				Label: "Aim higher",
				Effects: []Effect{
					{Kind: EffectSetPhase, Phase: PhaseSeriesB},
					{Kind: EffectCash, Amount: 500_000_000},
					{Kind: EffectSanity, Amount: -20},
				},
			},
		},
	}
}

func (s *GameState) applyEffect(e Effect) {
	switch e.Kind {
	case EffectCash:
		s.Cash += e.Amount
	case EffectTechDebt:
		s.TechDebt += int(e.Amount)
	case EffectSanity:
		s.addSanity(int(e.Amount))
	case EffectPMF:
		s.addPMF(int(e.Amount))
	case EffectMarketingBudget:
		s.MarketingBudget += e.Amount
		if s.MarketingBudget < 0 {
			s.MarketingBudget = 0
		}
	case EffectSetTechDebt:
		s.TechDebt = int(e.Amount)
	case EffectSetSanity:
		s.Sanity = clampInt(int(e.Amount), 0, MaxSanity)
	case EffectSetPhase:
		s.advancePhase(e.Phase)
	case EffectSetInvestor:
		s.MentorType = e.Investor
		s.setInvestorType(e.Investor)
	case EffectHire:
		if e.Employee != nil {
			s.Employees.Add(*e.Employee)
		}
	}
}

// ResolveEvent applies the chosen option of the active narrative event.
func ResolveEvent(s GameState, choiceID string) (GameState, error) {
	if s.ActiveEvent == nil {
		return s, ErrNoActiveEvent
	}
	choice, ok := s.ActiveEvent.choice(choiceID)
	if !ok {
		return s, ErrUnknownChoice
	}
	next := s.Clone()
	cashBefore := next.Cash
	for _, e := range choice.Effects {
		next.applyEffect(e)
	}
	next.Philosophy = next.Philosophy.Add(choice.Philosophy)
	next.ActiveEvent = nil
	next.IsDecisionMode = next.Cash < 0 && next.Cash != cashBefore
	next.appendLog(fmt.Sprintf("Decision: %s", choice.Label), LogWarning)
	next.enterMachineModeIfDepleted()
	return next, nil
}
