package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is a point-in-time copy of the ledger, safe to hand to views.
type Snapshot struct {
	WalletAddress string                `json:"walletAddress,omitempty"`
	TotalInvested decimal.Decimal       `json:"totalInvested"`
	CurrentValue  decimal.Decimal       `json:"currentValue"`
	Investments   map[Category]Position `json:"investments"`
	Transactions  []Transaction         `json:"transactions"`
	BadgeLevel    Tier                  `json:"badgeLevel"`
	Badge         string                `json:"badge"`
}

// TotalChangePercent is the gain of the current value over the total
// invested, in percent. Zero when nothing is invested.
func (s Snapshot) TotalChangePercent() decimal.Decimal {
	if !s.TotalInvested.IsPositive() {
		return decimal.Zero
	}
	return s.CurrentValue.Sub(s.TotalInvested).Div(s.TotalInvested).Mul(hundred).Round(2)
}

// MonthlyFlow is the net amount moved in a calendar month.
type MonthlyFlow struct {
	Month string          `json:"month"` // 2006-01
	Label string          `json:"label"` // Jan
	Net   decimal.Decimal `json:"value"`
}

// MonthlyNetFlow sums deposits minus withdrawals per month, oldest month
// first. Months are taken in UTC.
func MonthlyNetFlow(txs []Transaction) []MonthlyFlow {
	byMonth := make(map[string]*MonthlyFlow)
	for _, tx := range txs {
		ts := tx.Timestamp.UTC()
		key := ts.Format("2006-01")
		flow, ok := byMonth[key]
		if !ok {
			flow = &MonthlyFlow{Month: key, Label: ts.Format("Jan"), Net: decimal.Zero}
			byMonth[key] = flow
		}
		flow.Net = flow.Net.Add(tx.Signed())
	}

	out := make([]MonthlyFlow, 0, len(byMonth))
	for _, f := range byMonth {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// Since keeps the transactions at or after t.
func Since(txs []Transaction, t time.Time) []Transaction {
	var out []Transaction
	for _, tx := range txs {
		if !tx.Timestamp.Before(t) {
			out = append(out, tx)
		}
	}
	return out
}
