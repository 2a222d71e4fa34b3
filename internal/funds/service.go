package funds

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/NgigiN/fundfusion/internal/cooldown"
	"github.com/NgigiN/fundfusion/internal/ledger"
	"github.com/NgigiN/fundfusion/internal/wallet"
)

const DefaultWalletTimeout = 10 * time.Second

var (
	ErrMissingInput  = errors.New("missing input")
	ErrNotConnected  = fmt.Errorf("%w: wallet not connected", ErrMissingInput)
	ErrInvalidAmount = fmt.Errorf("%w: amount must be positive", ErrMissingInput)

	ErrInsufficientFunds = ledger.ErrInsufficientFunds
	ErrCooldownActive    = cooldown.ErrCooldownActive
)

// WalletError wraps a failed wallet provider call.
type WalletError struct {
	Op  string
	Err error
}

func (e *WalletError) Error() string { return fmt.Sprintf("wallet %s: %v", e.Op, e.Err) }

func (e *WalletError) Unwrap() error { return e.Err }

// Service applies user actions to the ledger. It owns the checks the ledger
// leaves to its caller: input, cooldown and balance. Mutations run one at a
// time.
type Service struct {
	mu sync.Mutex

	ledger  *ledger.Ledger
	gate    *cooldown.Gate
	wallet  wallet.Client
	timeout time.Duration
	logger  *zap.Logger
	metrics *Metrics
}

type Option func(*Service)

func WithWalletTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(l *ledger.Ledger, gate *cooldown.Gate, client wallet.Client, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		ledger:  l,
		gate:    gate,
		wallet:  client,
		timeout: DefaultWalletTimeout,
		logger:  logger.Named("funds"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.observe()
	return s
}

// Connect asks the wallet for an address and binds it to the ledger.
func (s *Service) Connect(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	addr, err := s.wallet.Connect(ctx)
	s.observeLatency("connect", start)
	if err != nil {
		s.count("connect", err)
		return "", &WalletError{Op: "connect", Err: err}
	}

	s.ledger.SetWallet(addr)
	s.count("connect", nil)
	s.logger.Info("Wallet connected", zap.String("address", addr))
	return addr, nil
}

func (s *Service) Disconnect(ctx context.Context) error {
	addr, ok := s.ledger.Wallet()
	if !ok {
		return nil
	}
	if err := s.wallet.Disconnect(ctx); err != nil {
		return &WalletError{Op: "disconnect", Err: err}
	}
	s.ledger.SetWallet("")
	s.logger.Info("Wallet disconnected", zap.String("address", addr))
	return nil
}

// Deposit sends amount from the connected wallet and credits undeployed
// funds. The cooldown starts before the transfer is sent, so a deposit that
// fails in flight still blocks withdrawals for the window.
func (s *Service) Deposit(ctx context.Context, amount decimal.Decimal) (ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	addr, err := s.checkInput(amount)
	if err != nil {
		s.count("deposit", err)
		return ledger.Transaction{}, err
	}

	if err := s.gate.Start(ctx); err != nil {
		s.count("deposit", err)
		return ledger.Transaction{}, err
	}

	receipt, err := s.submit(ctx, wallet.Transfer{From: addr, Direction: wallet.Inbound, Amount: amount})
	if err != nil {
		s.count("deposit", err)
		return ledger.Transaction{}, err
	}

	tx := s.ledger.RecordDeposit(amount, addr, receipt.Hash)
	s.count("deposit", nil)
	s.observe()
	s.logger.Info("Deposit recorded",
		zap.String("id", tx.ID),
		zap.String("amount", amount.String()),
		zap.String("address", addr),
		zap.Stringer("tier", s.ledger.Tier()))
	return tx, nil
}

// Withdraw sends amount back to the wallet. It fails with an error matching
// ErrCooldownActive inside the cooldown window and ErrInsufficientFunds when
// undeployed funds do not cover it. Neither changes the ledger.
func (s *Service) Withdraw(ctx context.Context, amount decimal.Decimal) (ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	addr, err := s.checkInput(amount)
	if err != nil {
		s.count("withdrawal", err)
		return ledger.Transaction{}, err
	}

	if err := s.gate.Check(ctx); err != nil {
		s.count("withdrawal", err)
		s.logger.Info("Withdrawal blocked", zap.Error(err))
		return ledger.Transaction{}, err
	}

	if available := s.ledger.Available(); available.LessThan(amount) {
		s.count("withdrawal", ErrInsufficientFunds)
		return ledger.Transaction{}, fmt.Errorf("%w: requested %s, available %s", ErrInsufficientFunds, amount, available)
	}

	receipt, err := s.submit(ctx, wallet.Transfer{From: addr, Direction: wallet.Outbound, Amount: amount})
	if err != nil {
		s.count("withdrawal", err)
		return ledger.Transaction{}, err
	}

	tx := s.ledger.RecordWithdrawal(amount, addr, receipt.Hash)
	s.count("withdrawal", nil)
	s.observe()
	s.logger.Info("Withdrawal recorded",
		zap.String("id", tx.ID),
		zap.String("amount", amount.String()),
		zap.String("address", addr),
		zap.Stringer("tier", s.ledger.Tier()))
	return tx, nil
}

// Allocate moves undeployed funds into the named category.
func (s *Service) Allocate(category string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := ledger.ParseCategory(category)
	if err != nil {
		return err
	}
	if err := s.ledger.Allocate(c, amount); err != nil {
		s.count("allocate", err)
		return err
	}
	s.count("allocate", nil)
	return nil
}

// Revalue marks the named category to market.
func (s *Service) Revalue(category string, value decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := ledger.ParseCategory(category)
	if err != nil {
		return err
	}
	return s.ledger.Revalue(c, value)
}

func (s *Service) Portfolio() ledger.Snapshot {
	return s.ledger.Snapshot()
}

func (s *Service) History(filter ledger.TxType) []ledger.Transaction {
	return s.ledger.Transactions(filter)
}

// MonthlyFlow is the net flow per month for transactions at or after since.
// A zero since covers the whole log.
func (s *Service) MonthlyFlow(since time.Time) []ledger.MonthlyFlow {
	return ledger.MonthlyNetFlow(ledger.Since(s.ledger.Transactions(""), since))
}

func (s *Service) CooldownRemaining(ctx context.Context) (time.Duration, error) {
	return s.gate.Remaining(ctx)
}

func (s *Service) checkInput(amount decimal.Decimal) (string, error) {
	if !amount.IsPositive() {
		return "", ErrInvalidAmount
	}
	addr, ok := s.ledger.Wallet()
	if !ok {
		return "", ErrNotConnected
	}
	return addr, nil
}

func (s *Service) submit(ctx context.Context, t wallet.Transfer) (wallet.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	receipt, err := s.wallet.Submit(ctx, t)
	s.observeLatency("submit", start)
	if err != nil {
		s.logger.Warn("Transfer failed",
			zap.String("direction", string(t.Direction)),
			zap.String("amount", t.Amount.String()),
			zap.Error(err))
		return wallet.Receipt{}, &WalletError{Op: "submit", Err: err}
	}
	return receipt, nil
}

func (s *Service) count(op string, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.Operations.WithLabelValues(op, resultLabel(err)).Inc()
}

func (s *Service) observeLatency(op string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.WalletLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (s *Service) observe() {
	if s.metrics == nil {
		return
	}
	snap := s.ledger.Snapshot()
	s.metrics.TotalInvested.Set(snap.TotalInvested.InexactFloat64())
	s.metrics.Tier.Set(float64(snap.BadgeLevel))
}

func resultLabel(err error) string {
	var walletErr *WalletError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMissingInput):
		return "missing_input"
	case errors.Is(err, ErrCooldownActive):
		return "cooldown"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.As(err, &walletErr):
		return "wallet_error"
	default:
		return "error"
	}
}
