package ledger

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category is a bucket of the portfolio breakdown.
type Category string

const (
	Undeployed Category = "undeployed"
	Crypto     Category = "crypto"
	Stocks     Category = "stocks"
	RealEstate Category = "realEstate"
)

// Categories lists every category in display order.
var Categories = []Category{Undeployed, Crypto, Stocks, RealEstate}

var (
	ErrUnknownCategory   = errors.New("unknown category")
	ErrInsufficientFunds = errors.New("insufficient undeployed funds")
	ErrInvalidAmount     = errors.New("amount must be positive")
)

// ParseCategory accepts the canonical names plus a few spellings users type
// into chat ("real_estate", "RealEstate").
func ParseCategory(s string) (Category, error) {
	key := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(s))
	for _, c := range Categories {
		if strings.ToLower(string(c)) == key {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Position is the amount put into a category and what it is worth now.
// Change is a percentage.
type Position struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrentValue decimal.Decimal `json:"currentValue"`
	Change       decimal.Decimal `json:"change"`
}

var hundred = decimal.NewFromInt(100)

func (p *Position) recompute() {
	if p.Amount.IsZero() {
		p.Change = decimal.Zero
		return
	}
	p.Change = p.CurrentValue.Sub(p.Amount).Div(p.Amount).Mul(hundred).Round(2)
}

type TxType string

const (
	Deposit    TxType = "deposit"
	Withdrawal TxType = "withdrawal"
)

const StatusCompleted = "Completed"

// Transaction is an entry of the append-only log.
type Transaction struct {
	ID        string          `json:"id"`
	Type      TxType          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
	Status    string          `json:"status"`
	Address   string          `json:"address,omitempty"`
	Reference string          `json:"reference,omitempty"`
}

// Signed returns the amount with withdrawals negative.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == Withdrawal {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Ledger is the investment aggregate of one wallet session. It is safe for
// concurrent use.
type Ledger struct {
	mu  sync.RWMutex
	now func() time.Time

	wallet        string
	totalInvested decimal.Decimal
	positions     map[Category]*Position
	// oldest first; readers reverse
	transactions []Transaction
	tier         Tier
}

type Option func(*Ledger)

// WithClock replaces time.Now for transaction timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithOpening opens the ledger with existing positions. Their amounts count
// toward the total invested.
func WithOpening(positions map[Category]Position) Option {
	return func(l *Ledger) {
		for c, p := range positions {
			pos, ok := l.positions[c]
			if !ok {
				continue
			}
			pos.Amount = p.Amount
			pos.CurrentValue = p.CurrentValue
			pos.recompute()
			l.totalInvested = l.totalInvested.Add(p.Amount)
		}
	}
}

// DemoPortfolio is the sample portfolio shown by the dashboard before any
// activity.
func DemoPortfolio() map[Category]Position {
	return map[Category]Position{
		Crypto:     {Amount: decimal.NewFromInt(25000), CurrentValue: decimal.NewFromInt(28000)},
		Stocks:     {Amount: decimal.NewFromInt(30000), CurrentValue: decimal.NewFromInt(31500)},
		RealEstate: {Amount: decimal.NewFromInt(20000), CurrentValue: decimal.NewFromInt(23000)},
	}
}

func New(opts ...Option) *Ledger {
	l := &Ledger{
		now:       time.Now,
		positions: make(map[Category]*Position, len(Categories)),
	}
	for _, c := range Categories {
		l.positions[c] = &Position{}
	}
	for _, opt := range opts {
		opt(l)
	}
	l.tier = TierFor(l.totalInvested)
	return l
}

// SetWallet binds the ledger to a wallet address. An empty address means
// disconnected.
func (l *Ledger) SetWallet(address string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.wallet = address
}

func (l *Ledger) Wallet() (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.wallet, l.wallet != ""
}

// RecordDeposit appends a completed deposit and credits undeployed funds.
// The caller has already checked the amount and the wallet.
func (l *Ledger) RecordDeposit(amount decimal.Decimal, address, reference string) Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx := l.appendLocked(Deposit, amount, address, reference)
	l.totalInvested = l.totalInvested.Add(amount)
	l.adjustLocked(Undeployed, amount)
	l.tier = TierFor(l.totalInvested)
	return tx
}

// RecordWithdrawal appends a completed withdrawal and debits undeployed
// funds. The tier follows the new total, so it can drop.
func (l *Ledger) RecordWithdrawal(amount decimal.Decimal, address, reference string) Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx := l.appendLocked(Withdrawal, amount, address, reference)
	l.totalInvested = l.totalInvested.Sub(amount)
	l.adjustLocked(Undeployed, amount.Neg())
	l.tier = TierFor(l.totalInvested)
	return tx
}

// Allocate moves undeployed funds into a category.
func (l *Ledger) Allocate(category Category, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.positions[category]; !ok || category == Undeployed {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	if l.positions[Undeployed].Amount.LessThan(amount) {
		return ErrInsufficientFunds
	}
	l.adjustLocked(Undeployed, amount.Neg())
	l.adjustLocked(category, amount)
	return nil
}

// Revalue sets the market value of a category and recomputes its change.
func (l *Ledger) Revalue(category Category, value decimal.Decimal) error {
	if value.IsNegative() {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.positions[category]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	pos.CurrentValue = value
	pos.recompute()
	return nil
}

// Available returns the undeployed amount that can be withdrawn.
func (l *Ledger) Available() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.positions[Undeployed].Amount
}

func (l *Ledger) Tier() Tier {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tier
}

// Transactions returns the log newest first. A non-empty filter keeps only
// that type.
func (l *Ledger) Transactions(filter TxType) []Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.transactionsLocked(filter)
}

func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Snapshot{
		WalletAddress: l.wallet,
		TotalInvested: l.totalInvested,
		CurrentValue:  decimal.Zero,
		Investments:   make(map[Category]Position, len(l.positions)),
		Transactions:  l.transactionsLocked(""),
		BadgeLevel:    l.tier,
		Badge:         l.tier.String(),
	}
	for c, p := range l.positions {
		s.Investments[c] = *p
		s.CurrentValue = s.CurrentValue.Add(p.CurrentValue)
	}
	return s
}

func (l *Ledger) appendLocked(typ TxType, amount decimal.Decimal, address, reference string) Transaction {
	tx := Transaction{
		ID:        uuid.New().String(),
		Type:      typ,
		Amount:    amount,
		Timestamp: l.now(),
		Status:    StatusCompleted,
		Address:   address,
		Reference: reference,
	}
	l.transactions = append(l.transactions, tx)
	return tx
}

func (l *Ledger) adjustLocked(category Category, delta decimal.Decimal) {
	pos := l.positions[category]
	pos.Amount = pos.Amount.Add(delta)
	pos.CurrentValue = pos.CurrentValue.Add(delta)
	pos.recompute()
}

func (l *Ledger) transactionsLocked(filter TxType) []Transaction {
	out := make([]Transaction, 0, len(l.transactions))
	for i := len(l.transactions) - 1; i >= 0; i-- {
		tx := l.transactions[i]
		if filter != "" && tx.Type != filter {
			continue
		}
		out = append(out, tx)
	}
	return out
}
