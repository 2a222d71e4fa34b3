package discord

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/NgigiN/fundfusion/internal/cooldown"
	"github.com/NgigiN/fundfusion/internal/funds"
	"github.com/NgigiN/fundfusion/internal/ledger"
	"github.com/NgigiN/fundfusion/internal/wallet"
)

func newTestBot(t *testing.T) *Bot {
	t.Helper()
	logger := zap.NewNop()
	svc := funds.NewService(
		ledger.New(),
		cooldown.NewGate(&cooldown.MemoryStore{}, cooldown.DefaultWindow),
		wallet.NewMockClient("0xfeed", 0, 0, logger),
		logger,
	)
	return &Bot{funds: svc, timeout: time.Second, logger: logger}
}

func TestReplyIgnoresChatter(t *testing.T) {
	b := newTestBot(t)
	assert.Empty(t, b.reply(context.Background(), "good morning"))
}

func TestReplyFlow(t *testing.T) {
	b := newTestBot(t)
	ctx := context.Background()

	assert.Contains(t, b.reply(ctx, "!deposit 100"), "connect a wallet first")
	assert.Equal(t, "Connected: 0xfeed", b.reply(ctx, "!connect"))

	reply := b.reply(ctx, "!deposit 30,000")
	assert.Contains(t, reply, "Deposit successful! $30,000.00 from 0xfeed")
	assert.Contains(t, reply, "Silver Investor")

	reply = b.reply(ctx, "!withdraw 10")
	assert.Contains(t, reply, "Withdrawal not allowed")
	assert.Contains(t, reply, "5m0s")

	assert.Contains(t, b.reply(ctx, "!cooldown"), "Withdrawals open in")

	reply = b.reply(ctx, "!portfolio")
	assert.Contains(t, reply, "Silver Investor")
	assert.Contains(t, reply, "**Total Invested**: $30,000.00")
	assert.Contains(t, reply, "$20,000.00 more to reach Gold")

	reply = b.reply(ctx, "!history")
	assert.Contains(t, reply, "Transaction History")
	assert.Contains(t, reply, "Completed")
	assert.Equal(t, "No transactions found.", b.reply(ctx, "!history withdrawals"))

	assert.Contains(t, b.reply(ctx, "!allocate bonds 5"), "Use: crypto, stocks, realEstate")
	assert.Equal(t, "Allocated $5,000.00 to crypto", b.reply(ctx, "!allocate crypto 5000"))

	assert.Equal(t, "Wallet disconnected.", b.reply(ctx, "!disconnect"))
	assert.Equal(t, "No wallet connected. Use !connect", b.reply(ctx, "!portfolio"))
}

func TestReplyInvalidCommand(t *testing.T) {
	b := newTestBot(t)
	assert.Contains(t, b.reply(context.Background(), "!deposit lots"), "Invalid command")
	assert.Contains(t, b.reply(context.Background(), "!help"), "!withdraw <amount>")
}

func TestBatchMessage(t *testing.T) {
	b := newTestBot(t)
	msg := "!connect\n!deposit 500\nnot a command\n!withdraw 100\n!deposit nope"

	assert.True(t, isBatchMessage(msg))
	assert.False(t, isBatchMessage("!connect"))

	reply := b.reply(context.Background(), msg)
	assert.Contains(t, reply, "Batch Processing Complete")
	assert.Contains(t, reply, "**Succeeded**: 2 commands")
	assert.Contains(t, reply, "**Failed**: 2 commands")
	assert.Contains(t, reply, "Line 4: ❌ Withdrawal not allowed")
	assert.Contains(t, reply, "Line 5: invalid usage")
}

func TestFormatHistoryLimit(t *testing.T) {
	var txs []ledger.Transaction
	for i := 0; i < 13; i++ {
		txs = append(txs, ledger.Transaction{
			Type:      ledger.Withdrawal,
			Amount:    decimal.NewFromInt(int64(i + 1)),
			Timestamp: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
			Status:    ledger.StatusCompleted,
			Address:   "0xfeed",
		})
	}
	out := formatHistory(txs, "withdrawal")
	assert.True(t, strings.HasPrefix(out, "📜 **Withdrawal History**"))
	assert.Equal(t, 10, strings.Count(out, "• "))
	assert.Contains(t, out, "... and 3 more transactions")
}

func TestMoney(t *testing.T) {
	cases := map[string]string{
		"0":           "0.00",
		"5":           "5.00",
		"999.5":       "999.50",
		"1000":        "1,000.00",
		"1234567.891": "1,234,567.89",
		"-25000":      "-25,000.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, money(decimal.RequireFromString(in)), in)
	}
}
