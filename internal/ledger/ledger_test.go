package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func TestTotalInvestedMatchesTransactionLog(t *testing.T) {
	l := New()
	ops := []struct {
		typ    TxType
		amount int64
	}{
		{Deposit, 1000},
		{Deposit, 250},
		{Withdrawal, 400},
		{Deposit, 30000},
		{Withdrawal, 50},
	}

	for _, op := range ops {
		if op.typ == Deposit {
			l.RecordDeposit(d(op.amount), "0xabc", "")
		} else {
			l.RecordWithdrawal(d(op.amount), "0xabc", "")
		}

		snap := l.Snapshot()
		sum := decimal.Zero
		for _, tx := range snap.Transactions {
			sum = sum.Add(tx.Signed())
		}
		assert.True(t, snap.TotalInvested.Equal(sum), "total %s, log sum %s", snap.TotalInvested, sum)
	}
	assert.True(t, l.Snapshot().TotalInvested.Equal(d(30800)))
}

func TestDepositCreditsUndeployed(t *testing.T) {
	l := New()
	l.RecordDeposit(d(500), "0xabc", "")

	before := l.Snapshot().Investments[Undeployed]
	tx := l.RecordDeposit(d(1234), "0xabc", "ref-1")
	after := l.Snapshot().Investments[Undeployed]

	assert.True(t, after.Amount.Sub(before.Amount).Equal(d(1234)))
	assert.True(t, after.CurrentValue.Sub(before.CurrentValue).Equal(d(1234)))
	assert.Equal(t, Deposit, tx.Type)
	assert.Equal(t, StatusCompleted, tx.Status)
	assert.Equal(t, "0xabc", tx.Address)
	assert.Equal(t, "ref-1", tx.Reference)
	assert.NotEmpty(t, tx.ID)
}

func TestWithdrawalDebitsUndeployed(t *testing.T) {
	l := New()
	l.RecordDeposit(d(1000), "0xabc", "")
	tx := l.RecordWithdrawal(d(300), "0xabc", "")

	snap := l.Snapshot()
	assert.Equal(t, Withdrawal, tx.Type)
	assert.True(t, snap.Investments[Undeployed].Amount.Equal(d(700)))
	assert.True(t, snap.Investments[Undeployed].CurrentValue.Equal(d(700)))
	assert.True(t, snap.TotalInvested.Equal(d(700)))
	assert.Len(t, snap.Transactions, 2)
}

func TestTransactionsNewestFirst(t *testing.T) {
	clock := &stepClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := New(WithClock(clock.now))

	first := l.RecordDeposit(d(10), "0xabc", "")
	second := l.RecordDeposit(d(20), "0xabc", "")
	third := l.RecordWithdrawal(d(5), "0xabc", "")

	txs := l.Transactions("")
	require.Len(t, txs, 3)
	assert.Equal(t, third.ID, txs[0].ID)
	assert.Equal(t, second.ID, txs[1].ID)
	assert.Equal(t, first.ID, txs[2].ID)
	assert.True(t, txs[0].Timestamp.After(txs[1].Timestamp))

	withdrawals := l.Transactions(Withdrawal)
	require.Len(t, withdrawals, 1)
	assert.Equal(t, third.ID, withdrawals[0].ID)
}

func TestTierFollowsTotal(t *testing.T) {
	l := New()
	l.RecordDeposit(d(24999), "0xabc", "")
	assert.Equal(t, Bronze, l.Tier())

	l.RecordDeposit(d(1), "0xabc", "")
	assert.Equal(t, Silver, l.Tier())

	l.RecordDeposit(d(75000), "0xabc", "")
	assert.Equal(t, Diamond, l.Tier())

	l.RecordWithdrawal(d(50001), "0xabc", "")
	assert.Equal(t, Silver, l.Tier(), "withdrawals recompute the tier")
}

func TestAllocate(t *testing.T) {
	l := New()
	l.RecordDeposit(d(1000), "0xabc", "")

	require.NoError(t, l.Allocate(Crypto, d(600)))
	snap := l.Snapshot()
	assert.True(t, snap.Investments[Undeployed].Amount.Equal(d(400)))
	assert.True(t, snap.Investments[Crypto].Amount.Equal(d(600)))
	assert.True(t, snap.TotalInvested.Equal(d(1000)), "allocation does not change the total")

	assert.ErrorIs(t, l.Allocate(Stocks, d(401)), ErrInsufficientFunds)
	assert.ErrorIs(t, l.Allocate(Undeployed, d(1)), ErrUnknownCategory)
	assert.ErrorIs(t, l.Allocate(Category("bonds"), d(1)), ErrUnknownCategory)
	assert.ErrorIs(t, l.Allocate(Stocks, d(0)), ErrInvalidAmount)
}

func TestRevalueRecomputesChange(t *testing.T) {
	l := New()
	l.RecordDeposit(d(1000), "0xabc", "")
	require.NoError(t, l.Allocate(Stocks, d(1000)))

	require.NoError(t, l.Revalue(Stocks, d(1150)))
	snap := l.Snapshot()
	assert.Equal(t, "15", snap.Investments[Stocks].Change.String())
	assert.True(t, snap.CurrentValue.Equal(d(1150)))
	assert.Equal(t, "15", snap.TotalChangePercent().String())

	assert.ErrorIs(t, l.Revalue(Stocks, d(-1)), ErrInvalidAmount)
	assert.ErrorIs(t, l.Revalue(Category("gold"), d(1)), ErrUnknownCategory)
}

func TestDemoPortfolio(t *testing.T) {
	l := New(WithOpening(DemoPortfolio()))
	snap := l.Snapshot()

	assert.True(t, snap.TotalInvested.Equal(d(75000)))
	assert.True(t, snap.CurrentValue.Equal(d(82500)))
	assert.Equal(t, Gold, snap.BadgeLevel)
	assert.Equal(t, "Gold", snap.Badge)
	assert.Equal(t, "12", snap.Investments[Crypto].Change.String())
	assert.Equal(t, "5", snap.Investments[Stocks].Change.String())
	assert.Equal(t, "15", snap.Investments[RealEstate].Change.String())
	assert.Empty(t, snap.Transactions)
}

func TestSnapshotIsACopy(t *testing.T) {
	l := New()
	l.RecordDeposit(d(100), "0xabc", "")
	snap := l.Snapshot()

	snap.Transactions[0].Amount = d(999)
	pos := snap.Investments[Undeployed]
	pos.Amount = d(999)
	snap.Investments[Undeployed] = pos

	fresh := l.Snapshot()
	assert.True(t, fresh.Transactions[0].Amount.Equal(d(100)))
	assert.True(t, fresh.Investments[Undeployed].Amount.Equal(d(100)))
}

func TestWallet(t *testing.T) {
	l := New()
	_, ok := l.Wallet()
	assert.False(t, ok)

	l.SetWallet("0x123...abc")
	addr, ok := l.Wallet()
	assert.True(t, ok)
	assert.Equal(t, "0x123...abc", addr)

	l.SetWallet("")
	_, ok = l.Wallet()
	assert.False(t, ok)
}

func TestParseCategory(t *testing.T) {
	cases := map[string]Category{
		"crypto":      Crypto,
		"Stocks":      Stocks,
		"real_estate": RealEstate,
		"RealEstate":  RealEstate,
		"undeployed":  Undeployed,
	}
	for in, want := range cases {
		got, err := ParseCategory(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseCategory("bonds")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}
