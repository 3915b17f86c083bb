package game

const (
	reputationFavor   = 6
	reputationNeutral = 2
	reputationDislike = 4

	MinReputation = -100
	MaxReputation = 100
)

type investorPreference struct {
	favored  map[MajorEventType]bool
	disliked map[MajorEventType]bool
}

var investorPreferences = map[InvestorType]investorPreference{
	InvestorNone: {},
	InvestorBlitz: {
		favored:  map[MajorEventType]bool{MajorBigDeal: true},
		disliked: map[MajorEventType]bool{MajorRandom: true},
	},
	InvestorProduct: {
		favored:  map[MajorEventType]bool{MajorBrand: true},
		disliked: map[MajorEventType]bool{MajorBigDeal: true},
	},
	InvestorFamily: {
		favored:  map[MajorEventType]bool{MajorBrand: true},
		disliked: map[MajorEventType]bool{MajorRandom: true},
	},
}

func reputationDelta(t InvestorType, ev MajorEventType, success bool) int {
	pref := investorPreferences[t]
	favored, disliked := pref.favored[ev], pref.disliked[ev]
	switch {
	case success && favored:
		return reputationFavor
	case success && disliked:
		return 0
	case success:
		return reputationNeutral
	case favored:
		return -reputationFavor
	case disliked:
		return -reputationDislike
	default:
		return -reputationNeutral
	}
}

func UpdateReputation(inv Investor, ev MajorEventType, success bool) Investor {
	inv.Reputation = clampInt(inv.Reputation+reputationDelta(inv.Type, ev, success), MinReputation, MaxReputation)
	return inv
}

func UpdateAllReputations(investors []Investor, ev MajorEventType, success bool) []Investor {
	out := make([]Investor, len(investors))
	for i, inv := range investors {
		out[i] = UpdateReputation(inv, ev, success)
	}
	return out
}
