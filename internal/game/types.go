package game

type EmployeeStats struct {
	Tech       int `json:"tech" yaml:"tech"`
	Sales      int `json:"sales" yaml:"sales"`
	Management int `json:"management" yaml:"management"`
}

type Employee struct {
	ID         string        `json:"id" yaml:"id"`
	Name       string        `json:"name" yaml:"name"`
	Role       Role          `json:"role" yaml:"role"`
	Stats      EmployeeStats `json:"stats" yaml:"stats"`
	Salary     float64       `json:"salary" yaml:"salary"`
	Motivation int           `json:"motivation" yaml:"motivation"`
	IsNewHire  bool          `json:"is_new_hire" yaml:"is_new_hire"`
	// Empty means the employee reports to the founder.
	ManagerID string      `json:"manager_id,omitempty" yaml:"manager_id,omitempty"`
	Culture   CultureType `json:"culture" yaml:"culture"`
}

type CoFounder struct {
	Name         string        `json:"name" yaml:"name"`
	Type         CoFounderType `json:"type" yaml:"type"`
	Relationship int           `json:"relationship" yaml:"relationship"`
}

type KPI struct {
	MRR           float64 `json:"mrr" yaml:"mrr"`
	ChurnRate     float64 `json:"churn_rate" yaml:"churn_rate"`
	CAC           float64 `json:"cac" yaml:"cac"`
	LTV           float64 `json:"ltv" yaml:"ltv"`
	GrowthRateMoM float64 `json:"growth_rate_mom" yaml:"growth_rate_mom"`
}

type PipelineMetrics struct {
	LeadsGenerated      int     `json:"leads_generated" yaml:"leads_generated"`
	SalesCapacity       int     `json:"sales_capacity" yaml:"sales_capacity"`
	LeadsProcessed      int     `json:"leads_processed" yaml:"leads_processed"`
	LeadsLost           int     `json:"leads_lost" yaml:"leads_lost"`
	NewDeals            int     `json:"new_deals" yaml:"new_deals"`
	CSCapacity          int     `json:"cs_capacity" yaml:"cs_capacity"`
	RequiredCS          int     `json:"required_cs" yaml:"required_cs"`
	ActiveIncidents     int     `json:"active_incidents" yaml:"active_incidents"`
	GoldenLeadsActive   bool    `json:"golden_leads_active" yaml:"golden_leads_active"`
	OrganicGrowthFactor float64 `json:"organic_growth_factor" yaml:"organic_growth_factor"`
}

type Flags struct {
	HasReceivedSubsidy   bool `json:"has_received_subsidy" yaml:"has_received_subsidy"`
	CompetitorAttacked   bool `json:"competitor_attacked" yaml:"competitor_attacked"`
	PMFFrozen            bool `json:"pmf_frozen" yaml:"pmf_frozen"`
	BoiledFrogMonths     int  `json:"boiled_frog_months" yaml:"boiled_frog_months"`
	MarketTrendWeeksLeft int  `json:"market_trend_weeks_left" yaml:"market_trend_weeks_left"`
	IsInterviewUnlocked  bool `json:"is_interview_unlocked" yaml:"is_interview_unlocked"`
	IsSideGigUnlocked    bool `json:"is_side_gig_unlocked" yaml:"is_side_gig_unlocked"`
	IsRecruitUnlocked    bool `json:"is_recruit_unlocked" yaml:"is_recruit_unlocked"`
}

type Philosophy struct {
	Ruthlessness  int `json:"ruthlessness" yaml:"ruthlessness"`
	Craftsmanship int `json:"craftsmanship" yaml:"craftsmanship"`
	Dishonesty    int `json:"dishonesty" yaml:"dishonesty"`
	Loneliness    int `json:"loneliness" yaml:"loneliness"`
}

func (p Philosophy) Add(d Philosophy) Philosophy {
	return Philosophy{
		Ruthlessness:  p.Ruthlessness + d.Ruthlessness,
		Craftsmanship: p.Craftsmanship + d.Craftsmanship,
		Dishonesty:    p.Dishonesty + d.Dishonesty,
		Loneliness:    p.Loneliness + d.Loneliness,
	}
}

type LogEntry struct {
	ID      string  `json:"id" yaml:"id"`
	Week    int     `json:"week" yaml:"week"`
	Date    string  `json:"date" yaml:"date"`
	Message string  `json:"message" yaml:"message"`
	Type    LogType `json:"type" yaml:"type"`
}

type Notification struct {
	ID      string           `json:"id" yaml:"id"`
	Week    int              `json:"week" yaml:"week"`
	Type    NotificationType `json:"type" yaml:"type"`
	Message string           `json:"message" yaml:"message"`
	IsRead  bool             `json:"is_read" yaml:"is_read"`
}

type Investor struct {
	Type       InvestorType `json:"type" yaml:"type"`
	Reputation int          `json:"reputation" yaml:"reputation"`
}

type DifficultyModifier struct {
	RemainingWeeks int     `json:"remaining_weeks" yaml:"remaining_weeks"`
	Modifier       float64 `json:"modifier" yaml:"modifier"`
}

type FiredEmployee struct {
	Name string `json:"name" yaml:"name"`
	Role Role   `json:"role" yaml:"role"`
	Date string `json:"date" yaml:"date"`
}

type ProductSnapshot struct {
	Quality          int          `json:"quality" yaml:"quality"`
	Phase            ProductPhase `json:"phase" yaml:"phase"`
	AverageUnitPrice float64      `json:"average_unit_price" yaml:"average_unit_price"`
	LastPMFDelta     int          `json:"last_pmf_delta" yaml:"last_pmf_delta"`
}

type TurnBonuses struct {
	GoldenLeadHit     bool `json:"golden_lead_hit" yaml:"golden_lead_hit"`
	IncidentsResolved int  `json:"incidents_resolved" yaml:"incidents_resolved"`
}

type GameState struct {
	Date           string  `json:"date" yaml:"date"`
	Week           int     `json:"week" yaml:"week"`
	Cash           float64 `json:"cash" yaml:"cash"`
	RunwayMonths   float64 `json:"runway_months" yaml:"runway_months"`
	Sanity         int     `json:"sanity" yaml:"sanity"`
	Phase          Phase   `json:"phase" yaml:"phase"`
	PMFScore       int     `json:"pmf_score" yaml:"pmf_score"`
	TechDebt       int     `json:"tech_debt" yaml:"tech_debt"`
	HiringFriction int     `json:"hiring_friction_weeks" yaml:"hiring_friction_weeks"`

	CoFounder *CoFounder `json:"co_founder,omitempty" yaml:"co_founder,omitempty"`
	Employees Team       `json:"employees" yaml:"employees"`
	KPI       KPI        `json:"kpi" yaml:"kpi"`

	MarketingBudget float64         `json:"marketing_budget" yaml:"marketing_budget"`
	Leads           int             `json:"leads" yaml:"leads"`
	PricingStrategy PricingStrategy `json:"pricing_strategy" yaml:"pricing_strategy"`
	MarketTrend     MarketTrend     `json:"market_trend" yaml:"market_trend"`

	MentorType   InvestorType `json:"mentor_type" yaml:"mentor_type"`
	InvestorType InvestorType `json:"investor_type" yaml:"investor_type"`
	Investors    []Investor   `json:"investors" yaml:"investors"`
	LastMonthMRR float64      `json:"last_month_mrr" yaml:"last_month_mrr"`

	Flags           Flags           `json:"flags" yaml:"flags"`
	PipelineMetrics PipelineMetrics `json:"pipeline_metrics" yaml:"pipeline_metrics"`
	Product         ProductSnapshot `json:"product" yaml:"product"`

	ActiveEvent            *NarrativeEvent     `json:"active_event,omitempty" yaml:"active_event,omitempty"`
	ActiveMajorEvent       *MajorEvent         `json:"active_major_event,omitempty" yaml:"active_major_event,omitempty"`
	MajorEventCountByPhase map[Phase]int       `json:"major_event_count_by_phase" yaml:"major_event_count_by_phase"`
	DifficultyModifier     *DifficultyModifier `json:"difficulty_modifier,omitempty" yaml:"difficulty_modifier,omitempty"`
	Negotiation            *Negotiation        `json:"negotiation,omitempty" yaml:"negotiation,omitempty"`

	Philosophy         Philosophy `json:"philosophy" yaml:"philosophy"`
	FamilyRelationship int        `json:"family_relationship" yaml:"family_relationship"`

	IsMachineMode  bool `json:"is_machine_mode" yaml:"is_machine_mode"`
	IsDecisionMode bool `json:"is_decision_mode" yaml:"is_decision_mode"`
	IsGameOver     bool `json:"is_game_over" yaml:"is_game_over"`

	WhaleOpportunity      bool            `json:"whale_opportunity" yaml:"whale_opportunity"`
	FiredEmployeesHistory []FiredEmployee `json:"fired_employees_history" yaml:"fired_employees_history"`

	Notifications []Notification `json:"notifications" yaml:"notifications"`
	Logs          []LogEntry     `json:"logs" yaml:"logs"`

	// Seq mints log, notification and employee ids so replays stay reproducible.
	Seq int64 `json:"seq" yaml:"seq"`
}
