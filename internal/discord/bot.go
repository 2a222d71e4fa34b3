package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/NgigiN/fundfusion/internal/command"
	"github.com/NgigiN/fundfusion/internal/cooldown"
	"github.com/NgigiN/fundfusion/internal/funds"
	"github.com/NgigiN/fundfusion/internal/ledger"
)

// Funds is what the bot needs from the funds service.
type Funds interface {
	Connect(ctx context.Context) (string, error)
	Disconnect(ctx context.Context) error
	Deposit(ctx context.Context, amount decimal.Decimal) (ledger.Transaction, error)
	Withdraw(ctx context.Context, amount decimal.Decimal) (ledger.Transaction, error)
	Allocate(category string, amount decimal.Decimal) error
	Portfolio() ledger.Snapshot
	History(filter ledger.TxType) []ledger.Transaction
	CooldownRemaining(ctx context.Context) (time.Duration, error)
}

type Bot struct {
	session   *discordgo.Session
	funds     Funds
	channelID string
	timeout   time.Duration
	logger    *zap.Logger
}

func NewBot(token, channelID string, svc Funds, logger *zap.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	bot := &Bot{
		session:   session,
		funds:     svc,
		channelID: channelID,
		timeout:   30 * time.Second,
		logger:    logger.Named("discord"),
	}

	session.AddHandler(bot.handleMessage)
	session.Identify.Intents = discordgo.IntentGuildMessages | discordgo.IntentMessageContent

	return bot, nil
}

func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	b.logger.Info("Discord bot connected", zap.String("channel", b.channelID))
	return nil
}

func (b *Bot) Stop() error {
	return b.session.Close()
}

// Connected reports whether the gateway session is up.
func (b *Bot) Connected() bool {
	return b.session != nil && b.session.State != nil && b.session.State.User != nil
}

func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID {
		return //bot's messages
	}

	if m.ChannelID != b.channelID {
		return //specific to the channel
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	reply := b.reply(ctx, m.Content)
	if reply == "" {
		return
	}
	if _, err := s.ChannelMessageSend(m.ChannelID, reply); err != nil {
		b.logger.Warn("Failed to send reply", zap.Error(err))
	}
}

// reply turns a message into the bot's answer. Non-command chatter gets no
// answer.
func (b *Bot) reply(ctx context.Context, content string) string {
	if isBatchMessage(content) {
		return b.handleBatch(ctx, content)
	}

	cmd, err := command.Parse(content)
	if errors.Is(err, command.ErrNotCommand) {
		return ""
	}
	if err != nil {
		return fmt.Sprintf("Invalid command: %v", err)
	}
	return b.run(ctx, cmd)
}

func (b *Bot) run(ctx context.Context, cmd *command.Command) string {
	switch cmd.Kind {
	case command.Connect:
		addr, err := b.funds.Connect(ctx)
		if err != nil {
			return fmt.Sprintf("Failed to connect wallet: %v", err)
		}
		return fmt.Sprintf("Connected: %s", addr)

	case command.Disconnect:
		if err := b.funds.Disconnect(ctx); err != nil {
			return fmt.Sprintf("Failed to disconnect wallet: %v", err)
		}
		return "Wallet disconnected."

	case command.Deposit:
		tx, err := b.funds.Deposit(ctx, cmd.Amount)
		if err != nil {
			return describeError("Deposit", err)
		}
		return fmt.Sprintf("✅ Deposit successful! $%s from %s\nBadge: **%s Investor**",
			money(tx.Amount), tx.Address, b.funds.Portfolio().Badge)

	case command.Withdraw:
		tx, err := b.funds.Withdraw(ctx, cmd.Amount)
		if err != nil {
			return describeError("Withdrawal", err)
		}
		return fmt.Sprintf("✅ Withdrawal successful! $%s to %s", money(tx.Amount), tx.Address)

	case command.Allocate:
		if err := b.funds.Allocate(cmd.Category, cmd.Amount); err != nil {
			return describeError("Allocation", err)
		}
		return fmt.Sprintf("Allocated $%s to %s", money(cmd.Amount), cmd.Category)

	case command.Portfolio:
		return formatPortfolio(b.funds.Portfolio())

	case command.History:
		return formatHistory(b.funds.History(ledger.TxType(cmd.Filter)), cmd.Filter)

	case command.Cooldown:
		left, err := b.funds.CooldownRemaining(ctx)
		if err != nil {
			return fmt.Sprintf("Failed to read cooldown: %v", err)
		}
		if left == 0 {
			return "Withdrawals are open."
		}
		return fmt.Sprintf("Withdrawals open in %s.", left.Round(time.Second))
	}
	return helpText()
}

func describeError(what string, err error) string {
	var active *cooldown.ActiveError
	switch {
	case errors.As(err, &active):
		return fmt.Sprintf("❌ %s not allowed. Please wait %s after your last deposit before withdrawing.",
			what, active.Remaining.Round(time.Second))
	case errors.Is(err, funds.ErrNotConnected):
		return fmt.Sprintf("❌ %s failed: connect a wallet first with !connect", what)
	case errors.Is(err, funds.ErrInsufficientFunds):
		return fmt.Sprintf("❌ %s failed: %v", what, err)
	case errors.Is(err, ledger.ErrUnknownCategory):
		return fmt.Sprintf("❌ %s failed: %v. Use: crypto, stocks, realEstate", what, err)
	}
	return fmt.Sprintf("❌ %s failed: %v", what, err)
}

func formatPortfolio(s ledger.Snapshot) string {
	if s.WalletAddress == "" {
		return "No wallet connected. Use !connect"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 **%s Investor** (%s)\n\n", s.Badge, s.WalletAddress)
	fmt.Fprintf(&sb, "**Total Invested**: $%s\n", money(s.TotalInvested))
	fmt.Fprintf(&sb, "**Current Value**: $%s (%s%%)\n\n", money(s.CurrentValue), s.TotalChangePercent().StringFixed(2))

	for _, c := range ledger.Categories {
		p := s.Investments[c]
		fmt.Fprintf(&sb, "**%s**: $%s (%s%%)\n", c, money(p.CurrentValue), p.Change.StringFixed(2))
	}

	if next, threshold, ok := s.BadgeLevel.Next(); ok {
		fmt.Fprintf(&sb, "\n$%s more to reach %s", money(threshold.Sub(s.TotalInvested)), next)
	}
	return sb.String()
}

func formatHistory(txs []ledger.Transaction, filter string) string {
	if len(txs) == 0 {
		return "No transactions found."
	}

	title := "Transaction History"
	if filter == string(ledger.Withdrawal) {
		title = "Withdrawal History"
	} else if filter == string(ledger.Deposit) {
		title = "Deposit History"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📜 **%s**\n\n", title)

	// Show last 10 transactions
	limit := 10
	if len(txs) < limit {
		limit = len(txs)
	}
	for _, tx := range txs[:limit] {
		fmt.Fprintf(&sb, "• **$%s** %s %s\n  %s - %s\n",
			money(tx.Amount), tx.Type, tx.Address,
			tx.Timestamp.Format("Jan 2, 2006 3:04 PM"),
			tx.Status)
	}
	if len(txs) > limit {
		fmt.Fprintf(&sb, "\n... and %d more transactions", len(txs)-limit)
	}
	return sb.String()
}

func helpText() string {
	lines := []string{"**Commands**"}
	for _, k := range []command.Kind{
		command.Connect, command.Disconnect, command.Deposit, command.Withdraw,
		command.Allocate, command.Portfolio, command.History, command.Cooldown,
	} {
		lines = append(lines, command.Usage[k])
	}
	return strings.Join(lines, "\n")
}

func money(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var out []byte
	for i := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, intPart[i])
	}
	res := string(out) + "." + frac
	if neg {
		res = "-" + res
	}
	return res
}
