package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrRejected means the user or provider refused the request. It is never retried.
	ErrRejected = errors.New("wallet request rejected")
	// ErrUnavailable is a transient provider failure.
	ErrUnavailable = errors.New("wallet provider unavailable")
)

type Direction string

const (
	Inbound  Direction = "deposit"
	Outbound Direction = "withdrawal"
)

// Transfer is a funds movement to be signed and sent by the wallet.
type Transfer struct {
	From      string
	Direction Direction
	Amount    decimal.Decimal
}

// Receipt identifies a submitted transfer.
type Receipt struct {
	Hash        string
	SubmittedAt time.Time
}

// Client is the boundary to a browser wallet and its chain RPC.
type Client interface {
	Connect(ctx context.Context) (string, error)
	Disconnect(ctx context.Context) error
	Submit(ctx context.Context, t Transfer) (Receipt, error)
}

type retryingClient struct {
	next     Client
	maxTries uint
	logger   *zap.Logger
}

// WithRetry retries connects and submits that fail with anything but
// ErrRejected, using exponential backoff.
func WithRetry(next Client, maxTries uint, logger *zap.Logger) Client {
	if maxTries == 0 {
		maxTries = 1
	}
	return &retryingClient{next: next, maxTries: maxTries, logger: logger.Named("wallet_retry")}
}

func (c *retryingClient) Connect(ctx context.Context) (string, error) {
	return retry(ctx, c, "connect", func() (string, error) {
		return c.next.Connect(ctx)
	})
}

func (c *retryingClient) Disconnect(ctx context.Context) error {
	return c.next.Disconnect(ctx)
}

func (c *retryingClient) Submit(ctx context.Context, t Transfer) (Receipt, error) {
	return retry(ctx, c, "submit", func() (Receipt, error) {
		return c.next.Submit(ctx, t)
	})
}

func retry[T any](ctx context.Context, c *retryingClient, op string, fn func() (T, error)) (T, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 2 * time.Second

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("Wallet call failed, retrying",
			zap.String("op", op), zap.Error(err), zap.Duration("backoff", wait))
	}

	operation := func() (T, error) {
		v, err := fn()
		if errors.Is(err, ErrRejected) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(notify))
}
