package game

import "math"

const (
	SalesCoefficient   = 8.0
	QualityCoefficient = 0.4

	MinDealChance = 0.05
	MaxDealChance = 0.95

	// Difficulty modifiers are fractions; the deal formula works in points.
	ModifierPointScale = 100.0
)

// DealSuccessChance is the shared success formula for negotiations and major events.
func DealSuccessChance(pmf float64, salesHeadcount int, productQuality, modifierSum, resistance float64) float64 {
	if resistance <= 0 {
		return MaxDealChance
	}
	numerator := pmf + float64(salesHeadcount)*SalesCoefficient + productQuality*QualityCoefficient + modifierSum
	return clampFloat(numerator/resistance, MinDealChance, MaxDealChance)
}

func ModifierSum(tierBase, successBonus float64, mod *DifficultyModifier) float64 {
	sum := tierBase + successBonus
	if mod != nil && mod.RemainingWeeks > 0 {
		sum += mod.Modifier * ModifierPointScale
	}
	return sum
}

func EffectiveResistance(resistance float64, mod *DifficultyModifier) float64 {
	if mod == nil || mod.RemainingWeeks <= 0 {
		return resistance
	}
	return math.Max(0, resistance*(1-mod.Modifier))
}

// TierBaseModifier is the flat bonus a phase grants to negotiations held in it.
func TierBaseModifier(phase Phase) float64 {
	switch phase {
	case PhaseSeriesA:
		return 5
	case PhaseSeriesB:
		return 0
	default:
		return 10
	}
}

type ProductPhase string

const (
	ProductPrototype  ProductPhase = "PROTOTYPE"
	ProductValidation ProductPhase = "VALIDATION"
	ProductEarlyPMF   ProductPhase = "EARLY_PMF"
	ProductPMF        ProductPhase = "PMF"
	ProductScale      ProductPhase = "SCALE"
)

type ProductPhaseMeta struct {
	ID              ProductPhase `json:"id"`
	Label           string       `json:"label"`
	Min             int          `json:"min"`
	Max             int          `json:"max"`
	PriceMultiplier float64      `json:"price_multiplier"`
}

var productPhases = []ProductPhaseMeta{
	{ID: ProductPrototype, Label: "Prototype", Min: 0, Max: 20, PriceMultiplier: 0.65},
	{ID: ProductValidation, Label: "Validation", Min: 20, Max: 40, PriceMultiplier: 0.85},
	{ID: ProductEarlyPMF, Label: "Early PMF", Min: 40, Max: 60, PriceMultiplier: 1.1},
	{ID: ProductPMF, Label: "PMF", Min: 60, Max: 80, PriceMultiplier: 1.4},
	{ID: ProductScale, Label: "Scale", Min: 80, Max: 101, PriceMultiplier: 1.9},
}

func DetermineProductPhase(pmf int) ProductPhaseMeta {
	score := clampInt(pmf, 0, MaxPMF)
	for _, p := range productPhases {
		if score >= p.Min && score < p.Max {
			return p
		}
	}
	return productPhases[len(productPhases)-1]
}

func ProductQuality(s GameState) int {
	if s.TechDebt >= 100 {
		return 0
	}
	return 100 - s.TechDebt
}

const (
	baseUnitPrice = 50_000.0
	mrrPerCS      = 80_000.0
)

func csShortageRatio(s GameState) float64 {
	required := s.KPI.MRR / mrrPerCS
	if required <= 0 {
		return 0
	}
	return clampFloat((required-float64(s.Employees.Count(RoleCS)))/required, 0, 1)
}

func AverageUnitPrice(s GameState) float64 {
	q := float64(ProductQuality(s))
	phase := DetermineProductPhase(s.PMFScore)
	qualityFactor := clampFloat(0.6+q/100, 0.6, 1.5)
	salesFactor := clampFloat(1+float64(s.Employees.Count(RoleSales))*0.06, 1, 1.35)
	csFactor := clampFloat(1-0.25*csShortageRatio(s), 0.6, 1)
	return math.Round(baseUnitPrice * phase.PriceMultiplier * qualityFactor * salesFactor * csFactor)
}

func productSnapshot(s GameState, pmfBaseline int) ProductSnapshot {
	return ProductSnapshot{
		Quality:          ProductQuality(s),
		Phase:            DetermineProductPhase(s.PMFScore).ID,
		AverageUnitPrice: AverageUnitPrice(s),
		LastPMFDelta:     s.PMFScore - pmfBaseline,
	}
}

type RevenueBreakdown struct {
	EngineerGrowth   float64 `json:"engineer_growth"`
	SalesGrowth      float64 `json:"sales_growth"`
	MarketingBonus   float64 `json:"marketing_bonus"`
	CSPenalty        float64 `json:"cs_penalty"`
	ProjectedMRR     float64 `json:"projected_mrr"`
	MonthlyBurn      float64 `json:"monthly_burn"`
	NetMonthlyBurn   float64 `json:"net_monthly_burn"`
	ProductQuality   int     `json:"product_quality"`
	AverageUnitPrice float64 `json:"average_unit_price"`
}

// RevenueBreakdownFor projects next month's MRR from team composition and product quality.
func RevenueBreakdownFor(s GameState) RevenueBreakdown {
	q := float64(ProductQuality(s)) / 100
	b := RevenueBreakdown{
		EngineerGrowth:   1000 * float64(s.Employees.Count(RoleEngineer)) * q,
		SalesGrowth:      5000 * float64(s.Employees.Count(RoleSales)),
		MarketingBonus:   50 * float64(s.Employees.Count(RoleMarketer)) * q,
		CSPenalty:        s.KPI.MRR * 0.015 * csShortageRatio(s),
		MonthlyBurn:      MonthlyBurn(s),
		ProductQuality:   ProductQuality(s),
		AverageUnitPrice: AverageUnitPrice(s),
	}
	b.ProjectedMRR = math.Max(0, s.KPI.MRR+b.EngineerGrowth+b.SalesGrowth+b.MarketingBonus-b.CSPenalty)
	b.NetMonthlyBurn = b.MonthlyBurn - s.KPI.MRR
	return b
}

func officeRent(phase Phase) float64 {
	switch phase {
	case PhaseSeriesA:
		return 500_000
	case PhaseSeriesB:
		return 3_000_000
	default:
		return 0
	}
}

func MonthlyBurn(s GameState) float64 {
	server := BaseServerCost + s.KPI.MRR*ServerCostPerMRR
	return FounderSalary + s.Employees.TotalSalary() + officeRent(s.Phase) + server + s.MarketingBudget
}

func Runway(cash, netMonthlyBurn float64) float64 {
	if netMonthlyBurn <= 0 {
		return InfiniteRunway
	}
	return cash / netMonthlyBurn
}
