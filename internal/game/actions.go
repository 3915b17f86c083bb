package game

import (
	"fmt"
	"math"
)

const (
	hireCashFloor     = 500_000.0
	hireSigningCost   = 300_000.0
	hireSalary        = 600_000.0
	hireSalaryBlitz   = 900_000.0
	hireSalaryManager = 800_000.0
	hireFrictionWeeks = 4

	fireSeverance  = 1_000_000.0
	fireSanityCost = 15

	interviewCost = 50_000.0
	clientWorkPay = 600_000.0
	subsidyAmount = 2_000_000.0

	lowPMFThreshold = 30
	lowPMFDealScale = 0.1
)

// CanUseCommand reports whether unlock flags and the controlling investor allow cmd.
func CanUseCommand(s GameState, cmd Command) bool {
	switch {
	case cmd == CommandRecruit && !s.Flags.IsRecruitUnlocked:
		return false
	case cmd == CommandSideGig && !s.Flags.IsSideGigUnlocked:
		return false
	case s.InvestorType == InvestorProduct && cmd == CommandSales:
		return false
	case s.InvestorType == InvestorFamily && cmd == CommandFire:
		return false
	}
	return true
}

func validRole(r Role) bool {
	switch r {
	case RoleEngineer, RoleSales, RoleCS, RoleMarketer, RoleManager:
		return true
	}
	return false
}

func Hire(s GameState, role Role, rng Rand) (GameState, error) {
	if s.IsGameOver {
		return s, ErrGameOver
	}
	if !validRole(role) {
		return s, fmt.Errorf("%w: role %q", ErrInvalidInput, role)
	}
	if s.Cash < hireCashFloor {
		return s, ErrInsufficientFunds
	}
	salary := hireSalary
	if s.InvestorType == InvestorBlitz {
		salary = hireSalaryBlitz
	}
	if role == RoleManager {
		salary = hireSalaryManager
	}
	threshold := 0.7
	if role == RoleCS || role == RoleManager {
		threshold = 0.3
	}
	culture := CultureInnovation
	if rng.Float64() > threshold {
		culture = CultureStability
	}

	next := s.Clone()
	id := next.mintID("emp")
	next.Employees.Add(Employee{
		ID:         id,
		Name:       fmt.Sprintf("New Hire #%d", next.Seq),
		Role:       role,
		Stats:      EmployeeStats{Tech: 50, Sales: 50, Management: 50},
		Salary:     salary,
		Motivation: 80,
		IsNewHire:  true,
		Culture:    culture,
	})
	next.Cash -= hireSigningCost
	next.HiringFriction = hireFrictionWeeks
	next.appendLog(fmt.Sprintf("Hired a %s (salary %.0f/month)", role, salary), LogInfo)
	next.notify(NotifySlack, fmt.Sprintf("New %s joined the team!", role))
	return next, nil
}

// Fire removes the employee; their direct reports move under the founder. Severance
// may push cash below zero.
func Fire(s GameState, employeeID string) (GameState, error) {
	if s.IsGameOver {
		return s, ErrGameOver
	}
	if !CanUseCommand(s, CommandFire) {
		return s, ErrCommandLocked
	}
	next := s.Clone()
	emp, ok := next.Employees.Remove(employeeID)
	if !ok {
		return s, ErrEmployeeNotFound
	}
	next.FiredEmployeesHistory = append(next.FiredEmployeesHistory, FiredEmployee{Name: emp.Name, Role: emp.Role, Date: next.Date})
	next.addSanity(-fireSanityCost)
	next.Cash -= fireSeverance
	next.Philosophy = next.Philosophy.Add(Philosophy{Ruthlessness: 10, Loneliness: 5})
	next.enterMachineModeIfDepleted()
	next.appendLog(fmt.Sprintf("Let %s go. The team is shaken.", emp.Name), LogCritical)
	return next, nil
}

// AssignManager sets who employeeID reports to; an empty managerID means the founder.
func AssignManager(s GameState, employeeID, managerID string) (GameState, error) {
	next := s.Clone()
	if err := next.Employees.SetManager(employeeID, managerID); err != nil {
		return s, err
	}
	emp, _ := next.Employees.Get(employeeID)
	if mgr, ok := next.Employees.Get(managerID); ok {
		next.appendLog(fmt.Sprintf("%s now reports to %s", emp.Name, mgr.Name), LogInfo)
	} else {
		next.appendLog(fmt.Sprintf("%s now reports to the CEO", emp.Name), LogInfo)
	}
	return next, nil
}

func CustomerInterview(s GameState) (GameState, error) {
	if s.IsGameOver {
		return s, ErrGameOver
	}
	if !s.Flags.IsInterviewUnlocked {
		return s, ErrCommandLocked
	}
	if s.Cash < interviewCost {
		return s, ErrInsufficientFunds
	}
	next := s.Clone()
	next.Cash -= interviewCost
	next.addPMF(5)
	next.addSanity(5)
	next.Philosophy.Craftsmanship += 2
	next.appendLog("Ran customer interviews. Signs of PMF.", LogSuccess)
	next.notify(NotifySlack, "Good insights from user interview!")
	return next, nil
}

// ClientWork takes contract work for quick cash and then closes the week with the
// bonuses banked so far.
func ClientWork(s GameState, bonuses TurnBonuses, rng Rand) (GameState, error) {
	if s.IsGameOver {
		return s, ErrGameOver
	}
	if !CanUseCommand(s, CommandSideGig) {
		return s, ErrCommandLocked
	}
	next := s.Clone()
	next.Cash += clientWorkPay
	next.TechDebt += 5
	next.Flags.PMFFrozen = true
	next.addSanity(-10)
	next.Philosophy = next.Philosophy.Add(Philosophy{Craftsmanship: -2, Dishonesty: 2})
	next.enterMachineModeIfDepleted()
	next.appendLog("Took contract work to get by (+600,000, tech debt +5)", LogWarning)
	return NextTurn(next, bonuses, rng), nil
}

func DoPrivateAction(s GameState, action PrivateAction) (GameState, error) {
	if s.IsGameOver {
		return s, ErrGameOver
	}
	next := s.Clone()
	switch action {
	case PrivateWork:
		next.addSanity(-10)
		next.Leads += 5
		next.Philosophy.Loneliness += 2
		next.appendLog("Worked through the weekend.", LogInfo)
		next.enterMachineModeIfDepleted()
	case PrivateFamily:
		if s.IsMachineMode {
			return s, ErrCommandLocked
		}
		next.addSanity(20)
		next.FamilyRelationship = min(100, next.FamilyRelationship+15)
		next.Philosophy.Loneliness = max(0, next.Philosophy.Loneliness-5)
		next.appendLog("Spent time with family.", LogInfo)
	default:
		return s, fmt.Errorf("%w: private action %q", ErrInvalidInput, action)
	}
	return next, nil
}

func AdjustMarketingBudget(s GameState, delta float64) GameState {
	next := s.Clone()
	next.MarketingBudget = math.Max(0, next.MarketingBudget+delta)
	return next
}

func SetPricingStrategy(s GameState, p PricingStrategy) (GameState, error) {
	switch p {
	case PricingPLG, PricingEnterprise, PricingBlitz:
	default:
		return s, fmt.Errorf("%w: pricing %q", ErrInvalidInput, p)
	}
	next := s.Clone()
	next.PricingStrategy = p
	return next, nil
}

func ChooseCoFounder(s GameState, t CoFounderType) (GameState, error) {
	var name string
	switch t {
	case CoFounderHacker:
		name = "Ken"
	case CoFounderHustler:
		name = "Takashi"
	default:
		return s, fmt.Errorf("%w: co-founder %q", ErrInvalidInput, t)
	}
	next := s.Clone()
	next.CoFounder = &CoFounder{Name: name, Type: t, Relationship: 100}
	next.appendLog(fmt.Sprintf("%s joined as co-founder (%s)", name, t), LogSuccess)
	return next, nil
}

func ApplyForSubsidy(s GameState) (GameState, error) {
	if s.Flags.HasReceivedSubsidy {
		return s, ErrSubsidyClaimed
	}
	next := s.Clone()
	next.Cash += subsidyAmount
	next.Flags.HasReceivedSubsidy = true
	next.appendLog("Government subsidy approved (+2,000,000)", LogSuccess)
	return next, nil
}

// CompleteSalesPitch books a finished pitch: MRR on a win plus the side effects either way.
func CompleteSalesPitch(s GameState, target SalesTarget, won bool, fx SideEffects) GameState {
	next := s.Clone()
	gain := 0.0
	if won {
		if p, ok := DealProfileFor(target, s.Phase); ok {
			gain = p.MRR
		}
		if s.PMFScore < lowPMFThreshold && target != TargetWhale && target != TargetFriends {
			gain = math.Floor(gain * lowPMFDealScale)
		}
	}
	next.KPI.MRR += gain
	next.TechDebt += fx.TechDebt
	next.Cash -= fx.CashCost
	next.addSanity(-fx.SanityCost)
	if won {
		next.appendLog(fmt.Sprintf("Deal closed (%s): MRR +%.0f", target, gain), LogSuccess)
	} else {
		next.appendLog(fmt.Sprintf("Deal lost (%s)", target), LogWarning)
	}
	next.enterMachineModeIfDepleted()
	return next
}
