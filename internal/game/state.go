package game

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

const dateLayout = "2006-01-02"

func NewGameState() GameState {
	s := GameState{
		Date:            "2020-04-01",
		Week:            0,
		Cash:            StartingCash,
		RunwayMonths:    6,
		Sanity:          80,
		Phase:           PhaseSeed,
		Employees:       NewTeam(),
		KPI:             KPI{ChurnRate: 0.02},
		PricingStrategy: PricingPLG,
		MarketTrend:     TrendNormal,
		MentorType:      InvestorNone,
		InvestorType:    InvestorNone,
		Investors:       []Investor{{Type: InvestorNone}},
		Flags: Flags{
			MarketTrendWeeksLeft: 8,
			IsInterviewUnlocked:  true,
		},
		MajorEventCountByPhase: map[Phase]int{},
		FamilyRelationship:     90,
		FiredEmployeesHistory:  []FiredEmployee{},
		Notifications:          []Notification{},
		Logs:                   []LogEntry{},
	}
	s.Product = productSnapshot(s, s.PMFScore)
	s.appendLog("Company founded. Burn rate is ticking.", LogInfo)
	return s
}

// Clone returns a deep copy; every transition works on a clone so callers keep their snapshot.
func (s GameState) Clone() GameState {
	out := s
	out.Employees = s.Employees.Clone()
	if s.CoFounder != nil {
		cf := *s.CoFounder
		out.CoFounder = &cf
	}
	out.Investors = slices.Clone(s.Investors)
	out.MajorEventCountByPhase = make(map[Phase]int, len(s.MajorEventCountByPhase))
	maps.Copy(out.MajorEventCountByPhase, s.MajorEventCountByPhase)
	if s.ActiveEvent != nil {
		ev := s.ActiveEvent.clone()
		out.ActiveEvent = &ev
	}
	if s.ActiveMajorEvent != nil {
		me := *s.ActiveMajorEvent
		out.ActiveMajorEvent = &me
	}
	if s.DifficultyModifier != nil {
		dm := *s.DifficultyModifier
		out.DifficultyModifier = &dm
	}
	if s.Negotiation != nil {
		n := s.Negotiation.clone()
		out.Negotiation = &n
	}
	out.FiredEmployeesHistory = slices.Clone(s.FiredEmployeesHistory)
	out.Notifications = slices.Clone(s.Notifications)
	out.Logs = slices.Clone(s.Logs)
	return out
}

func (s *GameState) mintID(prefix string) string {
	s.Seq++
	return fmt.Sprintf("%s-%d", prefix, s.Seq)
}

func (s *GameState) appendLog(message string, typ LogType) {
	s.Logs = append(s.Logs, LogEntry{
		ID:      s.mintID("log"),
		Week:    s.Week,
		Date:    s.Date,
		Message: message,
		Type:    typ,
	})
}

func (s *GameState) notify(typ NotificationType, message string) {
	n := Notification{
		ID:      s.mintID("notif"),
		Week:    s.Week,
		Type:    typ,
		Message: message,
	}
	s.Notifications = append(s.Notifications, n)
	if over := len(s.Notifications) - NotificationLimit; over > 0 {
		s.Notifications = append([]Notification(nil), s.Notifications[over:]...)
	}
}

// MarkNotificationsRead returns a copy with every notification flagged read.
func MarkNotificationsRead(s GameState) GameState {
	next := s.Clone()
	for i := range next.Notifications {
		next.Notifications[i].IsRead = true
	}
	return next
}

func (s GameState) UnreadNotifications() int {
	n := 0
	for _, note := range s.Notifications {
		if !note.IsRead {
			n++
		}
	}
	return n
}

func (s *GameState) setInvestorType(t InvestorType) {
	s.InvestorType = t
	if len(s.Investors) == 0 {
		s.Investors = []Investor{{Type: t}}
		return
	}
	s.Investors[0].Type = t
}

func (s *GameState) advancePhase(p Phase) {
	if p.Rank() > s.Phase.Rank() {
		s.Phase = p
	}
}

func (s *GameState) addSanity(delta int) {
	s.Sanity = clampInt(s.Sanity+delta, 0, MaxSanity)
}

func (s *GameState) addPMF(delta int) {
	s.PMFScore = clampInt(s.PMFScore+delta, 0, MaxPMF)
}

// enterMachineModeIfDepleted flips the one-way machine mode once sanity is gone.
func (s *GameState) enterMachineModeIfDepleted() {
	if s.Sanity <= 0 {
		s.Sanity = 0
		s.IsMachineMode = true
	}
}

func addDays(date string, days int) string {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, days).Format(dateLayout)
}
