package cooldown

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultWindow is how long withdrawals stay blocked after a deposit.
const DefaultWindow = 5 * time.Minute

var ErrCooldownActive = errors.New("withdrawal cooldown active")

// ActiveError reports how long until withdrawals open again.
type ActiveError struct {
	Remaining time.Duration
}

func (e *ActiveError) Error() string {
	return fmt.Sprintf("%s: wait %s after your last deposit", ErrCooldownActive, e.Remaining.Round(time.Second))
}

func (e *ActiveError) Is(target error) bool { return target == ErrCooldownActive }

// Store persists the time of the last deposit.
type Store interface {
	LastDeposit(ctx context.Context) (time.Time, bool, error)
	SetLastDeposit(ctx context.Context, t time.Time) error
}

// Gate blocks withdrawals inside the window after a deposit. It keeps no
// timers; every check reads the clock.
type Gate struct {
	store  Store
	window time.Duration
	now    func() time.Time
}

func NewGate(store Store, window time.Duration) *Gate {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Gate{store: store, window: window, now: time.Now}
}

// WithClock replaces the clock used by Check.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

func (g *Gate) Window() time.Duration { return g.window }

// Remaining returns the time left before a withdrawal is allowed, zero when
// it already is.
func (g *Gate) Remaining(ctx context.Context) (time.Duration, error) {
	last, ok, err := g.store.LastDeposit(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read last deposit time: %w", err)
	}
	if !ok {
		return 0, nil
	}
	left := g.window - g.now().Sub(last)
	if left < 0 {
		return 0, nil
	}
	return left, nil
}

// Check returns an *ActiveError while the cooldown runs.
func (g *Gate) Check(ctx context.Context) error {
	left, err := g.Remaining(ctx)
	if err != nil {
		return err
	}
	if left > 0 {
		return &ActiveError{Remaining: left}
	}
	return nil
}

// MarkDeposit starts a new cooldown at t.
func (g *Gate) MarkDeposit(ctx context.Context, t time.Time) error {
	if err := g.store.SetLastDeposit(ctx, t); err != nil {
		return fmt.Errorf("failed to save last deposit time: %w", err)
	}
	return nil
}

// Start starts a new cooldown now.
func (g *Gate) Start(ctx context.Context) error {
	return g.MarkDeposit(ctx, g.now())
}

// MemoryStore keeps the timestamp in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	last time.Time
	set  bool
}

func (m *MemoryStore) LastDeposit(context.Context) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.set, nil
}

func (m *MemoryStore) SetLastDeposit(_ context.Context, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last, m.set = t, true
	return nil
}
