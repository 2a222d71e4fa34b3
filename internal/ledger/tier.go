package ledger

import "github.com/shopspring/decimal"

// Tier is the investor badge derived from the total invested.
type Tier int

const (
	Bronze Tier = iota
	Silver
	Gold
	Diamond
)

var (
	silverThreshold  = decimal.NewFromInt(25000)
	goldThreshold    = decimal.NewFromInt(50000)
	diamondThreshold = decimal.NewFromInt(100000)
)

var tierNames = [...]string{"Bronze", "Silver", "Gold", "Diamond"}

func (t Tier) String() string {
	if t < Bronze || t > Diamond {
		return "Unknown"
	}
	return tierNames[t]
}

// TierFor returns the tier for a total invested amount.
func TierFor(total decimal.Decimal) Tier {
	switch {
	case total.GreaterThanOrEqual(diamondThreshold):
		return Diamond
	case total.GreaterThanOrEqual(goldThreshold):
		return Gold
	case total.GreaterThanOrEqual(silverThreshold):
		return Silver
	default:
		return Bronze
	}
}

// Next returns the tier above t and the total needed to reach it.
// ok is false for Diamond.
func (t Tier) Next() (next Tier, threshold decimal.Decimal, ok bool) {
	switch t {
	case Bronze:
		return Silver, silverThreshold, true
	case Silver:
		return Gold, goldThreshold, true
	case Gold:
		return Diamond, diamondThreshold, true
	default:
		return t, decimal.Zero, false
	}
}
