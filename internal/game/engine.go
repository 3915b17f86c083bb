package game

import (
	"fmt"
	"math"
)

// turn carries the working state and the values derived by earlier stages.
type turn struct {
	prev    GameState
	next    GameState
	bonuses TurnBonuses
	rng     Rand

	monthlyBurn  float64
	productivity float64

	techBonus       float64
	salesBonus      float64
	frictionPenalty float64

	arpu             float64
	currentCustomers int
	virality         float64
	paidLeads        int
	organicLeads     int
	totalLeads       int

	salesCapacity int
	processed     int
	lost          int

	conversion float64
	newDeals   int
	newMRR     float64

	csCapacity     int
	customersAfter int
	churn          float64
	finalMRR       float64

	weeklyBurn float64
	netBurn    float64
}

type turnStage struct {
	name string
	run  func(*turn)
}

var turnStages = []turnStage{
	{"machine_mode", stageMachineMode},
	{"market_trend", stageMarketTrend},
	{"role_bonuses", stageRoleBonuses},
	{"lead_generation", stageLeadGeneration},
	{"sales_throughput", stageSalesThroughput},
	{"conversion", stageConversion},
	{"churn", stageChurn},
	{"cash_runway", stageCashAndRunway},
	{"monthly_aggregation", stageMonthly},
	{"drift", stageDrift},
	{"reset_pmf_freeze", stageResetFreeze},
	{"pipeline_metrics", stagePipelineMetrics},
	{"narrative", stageNarrative},
	{"mode_transitions", stageModeTransitions},
}

// TurnStageNames reports the engine's stage order.
func TurnStageNames() []string {
	names := make([]string, len(turnStages))
	for i, st := range turnStages {
		names[i] = st.name
	}
	return names
}

// AdvanceTurn computes the next weekly state. It never mutates s and is a no-op once
// the game is over.
func AdvanceTurn(s GameState, bonuses TurnBonuses, rng Rand) GameState {
	if s.IsGameOver {
		return s
	}
	t := &turn{
		prev:         s,
		next:         s.Clone(),
		bonuses:      bonuses,
		rng:          rng,
		monthlyBurn:  MonthlyBurn(s),
		productivity: 1,
	}
	for _, st := range turnStages {
		st.run(t)
	}
	t.next.Product = productSnapshot(t.next, s.PMFScore)
	return t.next
}

func stageMachineMode(t *turn) {
	if t.next.Sanity <= 0 && !t.next.IsMachineMode {
		t.next.Sanity = 0
		t.next.IsMachineMode = true
		t.next.appendLog("Sanity depleted. Machine mode engaged.", LogCritical)
	}
	if t.next.IsMachineMode {
		t.productivity = 2
	}
}

func rollMarketTrend(roll float64) (MarketTrend, int) {
	switch {
	case roll < 0.3:
		return TrendSaaSBoom, 6
	case roll < 0.6:
		return TrendRecession, 8
	case roll < 0.8:
		return TrendCompetitorFUD, 4
	default:
		return TrendNormal, 8
	}
}

func stageMarketTrend(t *turn) {
	if t.next.Flags.MarketTrendWeeksLeft > 0 {
		t.next.Flags.MarketTrendWeeksLeft--
		return
	}
	trend, weeks := rollMarketTrend(t.rng.Float64())
	if trend != t.next.MarketTrend {
		t.next.notify(NotifyNews, fmt.Sprintf("Market shift: %s for the next %d weeks", trend, weeks))
	}
	t.next.MarketTrend = trend
	t.next.Flags.MarketTrendWeeksLeft = weeks
}

func stageRoleBonuses(t *turn) {
	t.techBonus, t.salesBonus, t.frictionPenalty = 1, 1, 1
	if cf := t.next.CoFounder; cf != nil {
		switch cf.Type {
		case CoFounderHacker:
			t.techBonus = 1.5
		case CoFounderHustler:
			t.salesBonus = 1.5
		}
	}
	switch t.next.InvestorType {
	case InvestorFamily:
		if !t.next.IsMachineMode {
			t.next.Sanity = min(MaxSanity, t.next.Sanity+2)
		}
	case InvestorProduct:
		t.techBonus *= 1.2
	}
	if t.next.HiringFriction > 0 {
		t.frictionPenalty = 0.9
		t.next.HiringFriction--
	}
}

func arpuFor(phase Phase, pricing PricingStrategy) float64 {
	m := 1.0
	switch phase {
	case PhaseSeriesA:
		m = 1.6
	case PhaseSeriesB:
		m = 2.4
	}
	switch pricing {
	case PricingPLG:
		return 12_000 * m
	case PricingEnterprise:
		return 120_000 * m
	case PricingBlitz:
		return 0
	default:
		return 50_000 * m
	}
}

func stageLeadGeneration(t *turn) {
	s := &t.next
	efficiency := 1.0
	if s.InvestorType == InvestorBlitz {
		efficiency = 1 + s.MarketingBudget/5_000_000
	}
	if s.MarketTrend == TrendCompetitorFUD {
		efficiency *= 0.7
	}
	t.paidLeads = int(math.Floor(s.MarketingBudget / 10_000 * efficiency * t.productivity))

	t.arpu = arpuFor(t.prev.Phase, t.prev.PricingStrategy)
	divisor := t.arpu
	if divisor == 0 {
		divisor = 1
	}
	t.currentCustomers = max(1, int(math.Floor(t.prev.KPI.MRR/divisor)))

	virality := 0.0
	if s.PMFScore > 40 {
		virality = float64(s.PMFScore-40) / 600
	}
	if s.InvestorType == InvestorBlitz {
		virality *= 1.2
	}
	switch s.PricingStrategy {
	case PricingPLG:
		virality *= 1.5
	case PricingBlitz:
		virality *= 2
	}
	if s.MarketTrend == TrendSaaSBoom {
		virality *= 1.5
	}
	t.virality = virality
	t.organicLeads = int(math.Floor(float64(t.currentCustomers) * virality))
	t.totalLeads = s.Leads + t.paidLeads + t.organicLeads
}

func founderCapacity(phase Phase) float64 {
	switch phase {
	case PhaseSeriesA:
		return 2
	case PhaseSeriesB:
		return 0
	default:
		return 5
	}
}

func stageSalesThroughput(t *turn) {
	s := &t.next
	sales := float64(s.Employees.Count(RoleSales))
	capacity := int(math.Floor((sales*10*t.salesBonus + founderCapacity(s.Phase)) * t.frictionPenalty * t.productivity))
	if s.Flags.PMFFrozen {
		capacity = 0
	}
	t.salesCapacity = capacity
	t.processed = min(t.totalLeads, capacity)
	t.lost = max(0, t.totalLeads-capacity)
	// Unprocessed leads roll over once as next turn's carry-over.
	s.Leads = t.lost
}

func stageConversion(t *turn) {
	s := &t.next
	rate := 0.0
	gated := s.InvestorType == InvestorProduct && (s.TechDebt > 30 || s.PMFScore < 40)
	if !gated {
		rate = 0.05 * float64(s.PMFScore) / 100
		switch s.PricingStrategy {
		case PricingPLG:
			rate *= 1.5
		case PricingEnterprise:
			rate *= 0.5
		case PricingBlitz:
			rate *= 3
		}
		switch s.MarketTrend {
		case TrendSaaSBoom:
			rate *= 1.3
		case TrendRecession:
			rate *= 0.7
		}
		if s.TechDebt > 30 {
			rate *= 0.8
		}
	}
	if t.bonuses.GoldenLeadHit {
		rate += 0.15
	}
	t.conversion = rate
	t.newDeals = int(math.Floor(float64(t.processed) * rate))
	t.newMRR = float64(t.newDeals) * t.arpu
}

const minChurn = 0.005

func stageChurn(t *turn) {
	s := &t.next
	effectiveArpu := t.arpu
	if effectiveArpu == 0 {
		effectiveArpu = 100
	}
	t.customersAfter = int(math.Floor((t.prev.KPI.MRR + t.newMRR) / effectiveArpu))
	t.csCapacity = int(math.Floor(float64(s.Employees.Count(RoleCS)) * 20 * t.frictionPenalty * t.productivity))

	churn := 0.02 + float64(s.TechDebt)/1000
	if s.Sanity < 20 && !s.IsMachineMode {
		churn += 0.01
	}
	if t.customersAfter > 0 && t.csCapacity < t.customersAfter {
		churn += 0.05
	}
	if s.Flags.CompetitorAttacked {
		churn *= 2
	}
	switch s.PricingStrategy {
	case PricingPLG:
		churn += 0.01
	case PricingBlitz:
		churn += 0.03
	}
	switch s.MarketTrend {
	case TrendRecession:
		churn += 0.015
	case TrendSaaSBoom:
		churn -= 0.005
	}
	if s.InvestorType == InvestorFamily {
		churn *= 0.8
	}
	churn = math.Max(minChurn, churn-0.01*float64(t.bonuses.IncidentsResolved))
	t.churn = churn

	churned := t.prev.KPI.MRR * churn
	t.finalMRR = math.Max(0, t.prev.KPI.MRR+t.newMRR-churned)
	s.KPI.MRR = t.finalMRR
	s.KPI.ChurnRate = churn
}

func stageCashAndRunway(t *turn) {
	s := &t.next
	t.weeklyBurn = t.monthlyBurn / 4
	s.Cash += -t.weeklyBurn + t.finalMRR/4
	s.Week++
	s.Date = addDays(s.Date, 7)
	t.netBurn = t.weeklyBurn*4 - t.finalMRR
	s.RunwayMonths = Runway(s.Cash, t.netBurn)
}

func stageMonthly(t *turn) {
	s := &t.next
	if s.Week%4 != 0 {
		return
	}
	prevMRR := s.LastMonthMRR
	if prevMRR == 0 {
		prevMRR = 1
	}
	growth := (t.finalMRR - prevMRR) / prevMRR
	s.KPI.GrowthRateMoM = growth
	s.LastMonthMRR = t.finalMRR

	switch s.InvestorType {
	case InvestorBlitz:
		if growth < 0.2 && !s.IsMachineMode {
			s.Sanity = max(0, s.Sanity-10)
			s.appendLog("The fund is furious about growth under 20%.", LogWarning)
		}
	case InvestorFamily:
		if t.netBurn > 0 {
			s.Flags.BoiledFrogMonths++
		} else {
			s.Flags.BoiledFrogMonths = 0
		}
	}
}

func stageDrift(t *turn) {
	s := &t.next
	if !s.Flags.PMFFrozen && s.Employees.Len() > 0 && s.Phase != PhaseSeed && t.rng.Float64() > 0.7 {
		s.TechDebt++
	}
	if s.Phase != PhaseSeed && !s.WhaleOpportunity && t.rng.Float64() > 0.98 {
		s.WhaleOpportunity = true
		s.notify(NotifyAlert, "WHALE DETECTED: big opportunity incoming")
	}
}

func stageResetFreeze(t *turn) {
	t.next.Flags.PMFFrozen = false
}

func stagePipelineMetrics(t *turn) {
	incidents := 0
	if t.rng.Float64() > 0.8 {
		incidents = 1
	}
	t.next.PipelineMetrics = PipelineMetrics{
		LeadsGenerated:      t.paidLeads,
		SalesCapacity:       t.salesCapacity,
		LeadsProcessed:      t.processed,
		LeadsLost:           t.lost,
		NewDeals:            t.newDeals,
		CSCapacity:          t.csCapacity,
		RequiredCS:          t.customersAfter,
		ActiveIncidents:     incidents,
		GoldenLeadsActive:   t.rng.Float64() > 0.85,
		OrganicGrowthFactor: t.virality,
	}
	if t.next.Leads > 10 {
		t.next.notify(NotifySlack, fmt.Sprintf("Leads are piling up (%d)", t.next.Leads))
	}
}

func stageNarrative(t *turn) {
	s := &t.next
	if ev := EvaluateTriggers(*s); ev != nil {
		s.ActiveEvent = ev
		s.appendLog(fmt.Sprintf("Event: %s", ev.Title), LogEvent)
		if ev.Severity == SeverityCritical {
			s.IsDecisionMode = true
		}
	}
	if s.ActiveEvent != nil || s.ActiveMajorEvent != nil || s.Negotiation != nil {
		return
	}
	force := s.MajorEventCountByPhase[s.Phase] == 0
	if me := TriggerMajorEvent(s.Phase, *s, force, t.rng); me != nil {
		s.ActiveMajorEvent = me
		s.MajorEventCountByPhase[s.Phase]++
		s.notify(NotifyAlert, fmt.Sprintf("Major opportunity: %s", me.Label))
	}
}

func stageModeTransitions(t *turn) {
	s := &t.next
	if s.RunwayMonths < 1.5 && s.Cash > 0 {
		s.IsDecisionMode = true
	}
	if s.Sanity <= 0 {
		s.Sanity = 0
		s.IsMachineMode = true
	}
	if s.Sanity > 0 && s.Sanity < 20 {
		s.IsDecisionMode = true
	}
	if s.ActiveEvent == nil && s.RunwayMonths > 2 && s.Sanity > 30 {
		s.IsDecisionMode = false
	}
	if s.Cash < 0 {
		s.IsGameOver = true
		s.appendLog("Cash ran out. Game over.", LogCritical)
	}
}

// NextTurn is the full weekly step: the engine pass, the modifier tick and the weekly
// upkeep that lives outside the engine.
func NextTurn(s GameState, bonuses TurnBonuses, rng Rand) GameState {
	if s.IsGameOver {
		return s
	}
	next := TickModifier(AdvanceTurn(s, bonuses, rng))
	if next.Week >= sideGigUnlockWeek {
		next.Flags.IsSideGigUnlocked = true
	}
	if next.Week >= recruitUnlockWeek {
		next.Flags.IsRecruitUnlocked = true
	}
	next.FamilyRelationship = max(0, next.FamilyRelationship-familyDecay(s))
	if next.FamilyRelationship < 30 && s.FamilyRelationship >= 30 {
		next.notify(NotifyFamilyDM, "We need to talk. Are you coming home this week?")
	}
	next.appendLog(fmt.Sprintf("Week %d closed. Cash %.0f, MRR %.0f", next.Week, next.Cash, next.KPI.MRR), LogInfo)
	return next
}

const (
	sideGigUnlockWeek = 3
	recruitUnlockWeek = 6
)

// familyDecay reads the state the week started from. SERIES_B outranks machine mode.
func familyDecay(s GameState) int {
	switch {
	case s.Phase == PhaseSeriesB:
		return 3
	case s.IsMachineMode:
		return 5
	default:
		return 2
	}
}
