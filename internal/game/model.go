package game

import (
	"errors"
	"math"
)

type Role string

const (
	RoleEngineer Role = "ENGINEER"
	RoleSales    Role = "SALES"
	RoleCS       Role = "CS"
	RoleMarketer Role = "MARKETER"
	RoleManager  Role = "MANAGER"
)

type Phase string

const (
	PhaseSeed    Phase = "SEED"
	PhaseSeriesA Phase = "SERIES_A"
	PhaseSeriesB Phase = "SERIES_B"
)

// Rank orders phases so progression checks stay monotonic.
func (p Phase) Rank() int {
	switch p {
	case PhaseSeriesA:
		return 1
	case PhaseSeriesB:
		return 2
	default:
		return 0
	}
}

type CoFounderType string

const (
	CoFounderHacker  CoFounderType = "HACKER"
	CoFounderHustler CoFounderType = "HUSTLER"
)

type InvestorType string

const (
	InvestorNone    InvestorType = "NONE"
	InvestorBlitz   InvestorType = "BLITZ"
	InvestorProduct InvestorType = "PRODUCT"
	InvestorFamily  InvestorType = "FAMILY"
)

type PricingStrategy string

const (
	PricingPLG        PricingStrategy = "PLG"
	PricingEnterprise PricingStrategy = "ENTERPRISE"
	PricingBlitz      PricingStrategy = "BLITZ"
)

type CultureType string

const (
	CultureInnovation CultureType = "INNOVATION"
	CultureStability  CultureType = "STABILITY"
)

type MarketTrend string

const (
	TrendNormal        MarketTrend = "NORMAL"
	TrendSaaSBoom      MarketTrend = "SAAS_BOOM"
	TrendRecession     MarketTrend = "RECESSION"
	TrendCompetitorFUD MarketTrend = "COMPETITOR_FUD"
)

type Severity string

const (
	SeverityNormal   Severity = "NORMAL"
	SeverityCritical Severity = "CRITICAL"
)

type LogType string

const (
	LogInfo     LogType = "INFO"
	LogSuccess  LogType = "SUCCESS"
	LogWarning  LogType = "WARNING"
	LogCritical LogType = "CRITICAL"
	LogEvent    LogType = "EVENT"
)

type NotificationType string

const (
	NotifySlack    NotificationType = "SLACK"
	NotifySystem   NotificationType = "SYSTEM"
	NotifyNews     NotificationType = "NEWS"
	NotifyAlert    NotificationType = "ALERT"
	NotifyFamilyDM NotificationType = "FAMILY_DM"
)

type SalesTarget string

const (
	TargetFriends    SalesTarget = "FRIENDS"
	TargetStartup    SalesTarget = "STARTUP"
	TargetEnterprise SalesTarget = "ENTERPRISE"
	TargetWhale      SalesTarget = "WHALE"
)

type Command string

const (
	CommandSales   Command = "SALES"
	CommandFire    Command = "FIRE"
	CommandPivot   Command = "PIVOT"
	CommandRecruit Command = "RECRUIT"
	CommandSideGig Command = "SIDE_GIG"
)

type PrivateAction string

const (
	PrivateWork   PrivateAction = "WORK"
	PrivateFamily PrivateAction = "FAMILY"
)

const (
	StartingCash     = 5_000_000.0
	FounderSalary    = 300_000.0
	BaseServerCost   = 10_000.0
	ServerCostPerMRR = 0.05

	InfiniteRunway = 99.9

	MaxSanity = 100
	MaxPMF    = 100

	NotificationLimit = 20
)

var (
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientSanity   = errors.New("insufficient sanity")
	ErrInsufficientMoves    = errors.New("no negotiation moves left")
	ErrCommandLocked        = errors.New("command locked")
	ErrGameOver             = errors.New("game is over")
	ErrEmployeeNotFound     = errors.New("employee not found")
	ErrManagerCycle         = errors.New("manager assignment would create a cycle")
	ErrSelfManager          = errors.New("employee cannot manage themselves")
	ErrNoActiveEvent        = errors.New("no active event")
	ErrUnknownChoice        = errors.New("unknown event choice")
	ErrNoActiveMajorEvent   = errors.New("no active major event")
	ErrDealUnavailable      = errors.New("deal unavailable")
	ErrNegotiationActive    = errors.New("negotiation already in progress")
	ErrNoNegotiation        = errors.New("no negotiation in progress")
	ErrUnknownCard          = errors.New("unknown card")
	ErrSubsidyClaimed       = errors.New("subsidy already received")
	ErrInvalidInput         = errors.New("invalid input")
	ErrGameNotFound         = errors.New("game not found")
	ErrDuplicateIdempotency = errors.New("duplicate idempotency key")
)

// Rand is the random source consumed by the engine. *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
