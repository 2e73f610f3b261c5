package database

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// State is the connection state reported by a Manager.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateRetrying     State = "retrying"
)

// Pinger checks that the underlying database answers.
type Pinger func(ctx context.Context) error

// SQLPinger adapts a *sql.DB to a Pinger.
func SQLPinger(db *sql.DB) Pinger {
	return db.PingContext
}

// ManagerOption customises a Manager.
type ManagerOption func(*Manager)

// WithMaxRetries bounds the number of connection attempts per cycle; 0 means unbounded.
func WithMaxRetries(n int) ManagerOption {
	return func(m *Manager) {
		if n > 0 {
			m.maxTries = uint(n)
		}
	}
}

// WithBackOff replaces the exponential backoff used between attempts.
func WithBackOff(fn func() backoff.BackOff) ManagerOption {
	return func(m *Manager) { m.newBackOff = fn }
}

// WithPingTimeout bounds every single ping.
func WithPingTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) { m.pingTimeout = d }
}

// Manager owns the connection state of one database. Readiness is observed
// through Ready or Wait instead of a shared flag.
type Manager struct {
	name        string
	ping        Pinger
	log         *zap.Logger
	maxTries    uint
	pingTimeout time.Duration
	newBackOff  func() backoff.BackOff

	mu      sync.RWMutex
	state   State
	ready   chan struct{}
	closed  bool
	lastErr error
}

// NewManager returns a Manager in the disconnected state.
func NewManager(name string, ping Pinger, log *zap.Logger, opts ...ManagerOption) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		name:        name,
		ping:        ping,
		log:         log.With(zap.String("component", "database"), zap.String("db", name)),
		pingTimeout: 5 * time.Second,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 30 * time.Second
			return b
		},
		state: StateDisconnected,
		ready: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the label used in logs and health output.
func (m *Manager) Name() string { return m.name }

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// LastError returns the error of the most recent failed attempt, if any.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// Ready returns a channel that is closed while the database is connected.
// After a lost connection a new, open channel is handed out.
func (m *Manager) Ready() <-chan struct{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ready
}

// Wait blocks until the database is connected or ctx is done.
func (m *Manager) Wait(ctx context.Context) error {
	select {
	case <-m.Ready():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ping runs a single bounded ping without changing state.
func (m *Manager) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.pingTimeout)
	defer cancel()
	return m.ping(ctx)
}

// Start connects with exponential backoff. It returns once connected, or with the
// last error when the attempts are exhausted or ctx is cancelled.
func (m *Manager) Start(ctx context.Context) error {
	m.setState(StateConnecting, nil)
	return m.connect(ctx)
}

func (m *Manager) connect(ctx context.Context) error {
	start := time.Now()
	attempt := 0
	op := func() (struct{}, error) {
		attempt++
		return struct{}{}, m.Ping(ctx)
	}
	opts := []backoff.RetryOption{
		backoff.WithBackOff(m.newBackOff()),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			m.setState(StateRetrying, err)
			m.log.Warn("db_connect_retry",
				zap.Int("attempt", attempt),
				zap.Duration("next_in", next),
				zap.Error(err),
			)
		}),
	}
	if m.maxTries > 0 {
		opts = append(opts, backoff.WithMaxTries(m.maxTries))
	}

	if _, err := backoff.Retry(ctx, op, opts...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = errors.Join(ctxErr, err)
		}
		m.setState(StateDisconnected, err)
		m.log.Error("db_connect_failed",
			zap.Int("attempts", attempt),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.Error(err),
		)
		return err
	}

	m.setConnected()
	m.log.Info("db_connected",
		zap.Int("attempts", attempt),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}

// Monitor pings every interval until ctx is done. A failed ping moves the manager
// to retrying, replaces the ready channel and reconnects. A manager left
// disconnected by an exhausted reconnect cycle starts a new cycle on the next tick.
func (m *Manager) Monitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		switch m.State() {
		case StateConnected:
			err := m.Ping(ctx)
			if err == nil {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			m.log.Warn("db_connection_lost", zap.Error(err))
			m.setLost(err)
		case StateDisconnected:
			m.setState(StateConnecting, nil)
		default:
			continue
		}
		_ = m.connect(ctx)
	}
}

func (m *Manager) setState(s State, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
	if err != nil {
		m.lastErr = err
	}
}

func (m *Manager) setConnected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateConnected
	m.lastErr = nil
	if !m.closed {
		close(m.ready)
		m.closed = true
	}
}

func (m *Manager) setLost(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateRetrying
	m.lastErr = err
	if m.closed {
		m.ready = make(chan struct{})
		m.closed = false
	}
}
