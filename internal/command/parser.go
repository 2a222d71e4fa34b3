package command

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	Connect    Kind = "connect"
	Disconnect Kind = "disconnect"
	Deposit    Kind = "deposit"
	Withdraw   Kind = "withdraw"
	Allocate   Kind = "allocate"
	Portfolio  Kind = "portfolio"
	History    Kind = "history"
	Cooldown   Kind = "cooldown"
	Help       Kind = "help"
)

const Prefix = "!"

var (
	ErrNotCommand = errors.New("not a command")
	ErrUsage      = errors.New("invalid usage")
)

// Command is a parsed chat command.
type Command struct {
	Kind     Kind
	Amount   decimal.Decimal
	Category string
	// Filter is "deposit", "withdrawal" or empty for History.
	Filter string
}

// Amounts look like 1500, 1,500.50, $25,000 or 25000 USD.
var amountPattern = regexp.MustCompile(`(?i)^\$?\s*(\d{1,3}(?:,\d{3})+|\d+)(\.\d+)?\s*(?:usd)?$`)

// ParseAmount reads a positive money amount as users type it.
func ParseAmount(s string) (decimal.Decimal, error) {
	matches := amountPattern.FindStringSubmatch(strings.TrimSpace(s))
	if matches == nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not an amount", ErrUsage, s)
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(matches[1], ",", "") + matches[2])
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount: %w", err)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive", ErrUsage)
	}
	return amount, nil
}

// Parse reads one command line such as "!deposit 1,500".
func Parse(msg string) (*Command, error) {
	msg = strings.TrimSpace(msg)
	if !strings.HasPrefix(msg, Prefix) {
		return nil, ErrNotCommand
	}
	fields := strings.Fields(strings.TrimPrefix(msg, Prefix))
	if len(fields) == 0 {
		return nil, ErrNotCommand
	}
	kind, args := Kind(strings.ToLower(fields[0])), fields[1:]

	switch kind {
	case Connect, Disconnect, Portfolio, Cooldown, Help:
		if len(args) != 0 {
			return nil, usage(kind)
		}
		return &Command{Kind: kind}, nil

	case Deposit, Withdraw:
		// "!deposit $ 500" splits the currency sign off
		if len(args) == 0 {
			return nil, usage(kind)
		}
		amount, err := ParseAmount(strings.Join(args, " "))
		if err != nil {
			return nil, err
		}
		return &Command{Kind: kind, Amount: amount}, nil

	case Allocate:
		if len(args) < 2 {
			return nil, usage(kind)
		}
		amount, err := ParseAmount(strings.Join(args[1:], " "))
		if err != nil {
			return nil, err
		}
		return &Command{Kind: kind, Category: args[0], Amount: amount}, nil

	case History:
		cmd := &Command{Kind: kind}
		if len(args) > 1 {
			return nil, usage(kind)
		}
		if len(args) == 1 {
			switch strings.ToLower(args[0]) {
			case "deposit", "deposits":
				cmd.Filter = "deposit"
			case "withdrawal", "withdrawals", "withdraw":
				cmd.Filter = "withdrawal"
			case "all":
			default:
				return nil, usage(kind)
			}
		}
		return cmd, nil
	}
	return nil, fmt.Errorf("%w: unknown command %q", ErrUsage, fields[0])
}

func usage(kind Kind) error {
	return fmt.Errorf("%w: %s", ErrUsage, Usage[kind])
}

// Usage is the help line per command.
var Usage = map[Kind]string{
	Connect:    "!connect",
	Disconnect: "!disconnect",
	Deposit:    "!deposit <amount>",
	Withdraw:   "!withdraw <amount>",
	Allocate:   "!allocate <crypto|stocks|realEstate> <amount>",
	Portfolio:  "!portfolio",
	History:    "!history [deposits|withdrawals]",
	Cooldown:   "!cooldown",
	Help:       "!help",
}
