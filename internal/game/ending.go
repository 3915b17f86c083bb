package game

type Archetype string

const (
	ArchetypeTyrantKing Archetype = "TYRANT_KING"
	ArchetypeFraud      Archetype = "FRAUD"
	ArchetypeDreamer    Archetype = "DREAMER"
	ArchetypeSaint      Archetype = "SAINT"
	ArchetypeMixed      Archetype = "MIXED"
)

type Ending struct {
	Archetype   Archetype    `json:"archetype"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Rich        bool         `json:"rich"`
	Phase       Phase        `json:"phase"`
	Investor    InvestorType `json:"investor_type"`
	Cash        float64      `json:"cash"`
	MRR         float64      `json:"mrr"`
	Week        int          `json:"week"`
	Philosophy  Philosophy   `json:"philosophy"`
}

const (
	richCash       = 50_000_000.0
	richMRR        = 5_000_000.0
	traitThreshold = 30
	lonelyCutoff   = 40
)

// ClassifyEnding reads the founder's archetype off their wealth and philosophy scores.
func ClassifyEnding(s GameState) Ending {
	p := s.Philosophy
	rich := s.Cash > richCash || s.KPI.MRR > richMRR
	ruthless := p.Ruthlessness > traitThreshold
	craftsman := p.Craftsmanship > traitThreshold
	dishonest := p.Dishonesty > traitThreshold
	lonely := p.Loneliness > lonelyCutoff

	e := Ending{
		Rich:       rich,
		Phase:      s.Phase,
		Investor:   s.InvestorType,
		Cash:       s.Cash,
		MRR:        s.KPI.MRR,
		Week:       s.Week,
		Philosophy: p,
	}
	switch {
	case rich && ruthless:
		e.Archetype, e.Title = ArchetypeTyrantKing, "The Tyrant King"
		e.Description = "You built a fortune and nobody stayed around to share it."
	case rich && dishonest:
		e.Archetype, e.Title = ArchetypeFraud, "The Fraud"
		e.Description = "The numbers never lied, but you lied about the numbers. Until the audit."
	case !rich && craftsman:
		e.Archetype, e.Title = ArchetypeDreamer, "The Dreamer"
		e.Description = "The company folded. Some of the code lives on as open source, and a few people still love it."
	case !rich && !ruthless && !lonely:
		e.Archetype, e.Title = ArchetypeSaint, "The Saint"
		e.Description = "No unicorn. Your alumni reunions are still full of people who smile when they see you."
	default:
		e.Archetype, e.Title = ArchetypeMixed, "A Founder's Record"
		e.Description = "You tried, you fought, you burned out."
	}
	return e
}
