package game

import "fmt"

type ActionKind string

const (
	ActionNextTurn      ActionKind = "next_turn"
	ActionHire          ActionKind = "hire"
	ActionFire          ActionKind = "fire"
	ActionAssignManager ActionKind = "assign_manager"
	ActionInterview     ActionKind = "interview"
	ActionClientWork    ActionKind = "client_work"
	ActionPrivate       ActionKind = "private"
	ActionMarketing     ActionKind = "marketing"
	ActionPricing       ActionKind = "pricing"
	ActionCoFounder     ActionKind = "cofounder"
	ActionSubsidy       ActionKind = "subsidy"
	ActionResolveEvent  ActionKind = "resolve_event"
	ActionStartPitch    ActionKind = "start_pitch"
	ActionStartMajor    ActionKind = "start_major"
	ActionPlayCard      ActionKind = "play_card"
	ActionAbandon       ActionKind = "abandon_negotiation"
	ActionMarkRead      ActionKind = "mark_read"
)

// Action is one serialisable player intent. Only the fields its Kind uses are read.
type Action struct {
	Kind           ActionKind      `json:"kind" yaml:"kind"`
	Role           Role            `json:"role,omitempty" yaml:"role,omitempty"`
	EmployeeID     string          `json:"employee_id,omitempty" yaml:"employee_id,omitempty"`
	ManagerID      string          `json:"manager_id,omitempty" yaml:"manager_id,omitempty"`
	Target         SalesTarget     `json:"target,omitempty" yaml:"target,omitempty"`
	CardID         string          `json:"card_id,omitempty" yaml:"card_id,omitempty"`
	ChoiceID       string          `json:"choice_id,omitempty" yaml:"choice_id,omitempty"`
	Pricing        PricingStrategy `json:"pricing,omitempty" yaml:"pricing,omitempty"`
	CoFounder      CoFounderType   `json:"cofounder,omitempty" yaml:"cofounder,omitempty"`
	Private        PrivateAction   `json:"private,omitempty" yaml:"private,omitempty"`
	Amount         float64         `json:"amount,omitempty" yaml:"amount,omitempty"`
	Bonuses        TurnBonuses     `json:"bonuses,omitempty" yaml:"bonuses,omitempty"`
	IdempotencyKey string          `json:"idempotency_key,omitempty" yaml:"idempotency_key,omitempty"`
}

// Apply dispatches a to its handler.
func Apply(s GameState, a Action, rng Rand) (GameState, error) {
	switch a.Kind {
	case ActionNextTurn:
		if s.IsGameOver {
			return s, ErrGameOver
		}
		return NextTurn(s, a.Bonuses, rng), nil
	case ActionHire:
		return Hire(s, a.Role, rng)
	case ActionFire:
		return Fire(s, a.EmployeeID)
	case ActionAssignManager:
		return AssignManager(s, a.EmployeeID, a.ManagerID)
	case ActionInterview:
		return CustomerInterview(s)
	case ActionClientWork:
		return ClientWork(s, a.Bonuses, rng)
	case ActionPrivate:
		return DoPrivateAction(s, a.Private)
	case ActionMarketing:
		return AdjustMarketingBudget(s, a.Amount), nil
	case ActionPricing:
		return SetPricingStrategy(s, a.Pricing)
	case ActionCoFounder:
		return ChooseCoFounder(s, a.CoFounder)
	case ActionSubsidy:
		return ApplyForSubsidy(s)
	case ActionResolveEvent:
		return ResolveEvent(s, a.ChoiceID)
	case ActionStartPitch:
		return StartNegotiation(s, a.Target)
	case ActionStartMajor:
		return StartMajorNegotiation(s)
	case ActionPlayCard:
		next, _, err := PlayCard(s, a.CardID, rng)
		return next, err
	case ActionAbandon:
		return AbandonNegotiation(s)
	case ActionMarkRead:
		return MarkNotificationsRead(s), nil
	default:
		return s, fmt.Errorf("%w: action %q", ErrInvalidInput, a.Kind)
	}
}
