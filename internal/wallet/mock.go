package wallet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultAddress        = "0x123...abc"
	DefaultConnectLatency = time.Second
	DefaultSubmitLatency  = 1500 * time.Millisecond
)

// MockClient stands in for a browser wallet. Every call takes a fixed
// latency and always succeeds unless the context ends first.
type MockClient struct {
	Address        string
	ConnectLatency time.Duration
	SubmitLatency  time.Duration

	logger *zap.Logger
}

func NewMockClient(address string, connectLatency, submitLatency time.Duration, logger *zap.Logger) *MockClient {
	if address == "" {
		address = DefaultAddress
	}
	return &MockClient{
		Address:        address,
		ConnectLatency: connectLatency,
		SubmitLatency:  submitLatency,
		logger:         logger.Named("mock_wallet"),
	}
}

func (m *MockClient) Connect(ctx context.Context) (string, error) {
	if err := wait(ctx, m.ConnectLatency); err != nil {
		return "", fmt.Errorf("connect: %w", err)
	}
	m.logger.Debug("Wallet connected", zap.String("address", m.Address))
	return m.Address, nil
}

func (m *MockClient) Disconnect(context.Context) error {
	m.logger.Debug("Wallet disconnected", zap.String("address", m.Address))
	return nil
}

func (m *MockClient) Submit(ctx context.Context, t Transfer) (Receipt, error) {
	if err := wait(ctx, m.SubmitLatency); err != nil {
		return Receipt{}, fmt.Errorf("submit %s: %w", t.Direction, err)
	}
	hash := "0x" + strings.ReplaceAll(uuid.New().String(), "-", "")
	m.logger.Debug("Transfer submitted",
		zap.String("direction", string(t.Direction)),
		zap.String("amount", t.Amount.String()),
		zap.String("hash", hash))
	return Receipt{Hash: hash, SubmittedAt: time.Now()}, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
