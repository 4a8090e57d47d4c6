package channel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// BreakerState tracks the circuit breaker state machine.
//
//	Closed -> Open:      failure count reaches the threshold
//	Open -> HalfOpen:    recovery timeout elapsed, allow one probe
//	HalfOpen -> Closed:  probe succeeded
//	HalfOpen -> Open:    probe failed
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrBreakerOpen is returned when the breaker rejects a call to protect
// a failing push platform.
var ErrBreakerOpen = errors.New("push circuit breaker is open")

// BreakerConfig tunes the circuit breaker.
type BreakerConfig struct {
	MaxFailures     int           // consecutive failures before opening
	RecoveryTimeout time.Duration // time in Open before a probe is allowed
}

// Breaker protects the push platform from cascade failures: once it
// starts failing, calls fail fast instead of stacking up behind the
// scheduler's single-flight delivery.
type Breaker struct {
	mu     sync.Mutex
	cfg    BreakerConfig
	logger *zap.Logger

	state        BreakerState
	failureCount int
	lastFailure  time.Time
	probing      bool

	totalFailures  int64
	totalSuccesses int64
	totalRejected  int64
}

// NewBreaker creates a circuit breaker with defaults filled in.
func NewBreaker(cfg BreakerConfig, logger *zap.Logger) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.RecoveryTimeout <= 0 {
		cfg.RecoveryTimeout = 30 * time.Second
	}
	return &Breaker{
		cfg:    cfg,
		logger: logger,
		state:  BreakerClosed,
	}
}

// allow reports whether a call may proceed.
func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		return true

	case BreakerOpen:
		if time.Since(b.lastFailure) >= b.cfg.RecoveryTimeout {
			b.state = BreakerHalfOpen
			b.probing = true
			b.logger.Info("push breaker allowing probe")
			return true
		}
		b.totalRejected++
		return false

	case BreakerHalfOpen:
		if !b.probing {
			b.probing = true
			return true
		}
		b.totalRejected++
		return false

	default:
		return false
	}
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.totalSuccesses++
	b.failureCount = 0

	if b.state == BreakerHalfOpen {
		b.state = BreakerClosed
		b.probing = false
		b.logger.Info("push breaker closed, platform recovered")
	}
}

func (b *Breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.totalFailures++
	b.failureCount++
	b.lastFailure = time.Now()

	switch b.state {
	case BreakerClosed:
		if b.failureCount >= b.cfg.MaxFailures {
			b.state = BreakerOpen
			b.logger.Warn("push breaker opened",
				zap.Int("failures", b.failureCount),
			)
		}
	case BreakerHalfOpen:
		b.state = BreakerOpen
		b.probing = false
		b.logger.Warn("push breaker re-opened, probe failed")
	}
}

// State returns the current breaker state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// BreakerStats is a snapshot for the stats endpoint.
type BreakerStats struct {
	State          string `json:"state"`
	FailureCount   int    `json:"failure_count"`
	TotalFailures  int64  `json:"total_failures"`
	TotalSuccesses int64  `json:"total_successes"`
	TotalRejected  int64  `json:"total_rejected"`
}

// Stats returns a snapshot of the breaker counters.
func (b *Breaker) Stats() BreakerStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BreakerStats{
		State:          b.state.String(),
		FailureCount:   b.failureCount,
		TotalFailures:  b.totalFailures,
		TotalSuccesses: b.totalSuccesses,
		TotalRejected:  b.totalRejected,
	}
}

// ProtectedPusher decorates a Pusher with circuit breaker protection.
// Permission handling passes through untouched; only Send is gated.
type ProtectedPusher struct {
	pusher  Pusher
	breaker *Breaker
	logger  *zap.Logger
}

// NewProtectedPusher wraps a pusher with the given breaker.
func NewProtectedPusher(pusher Pusher, breaker *Breaker, logger *zap.Logger) *ProtectedPusher {
	return &ProtectedPusher{
		pusher:  pusher,
		breaker: breaker,
		logger:  logger,
	}
}

func (p *ProtectedPusher) Permission() Permission {
	return p.pusher.Permission()
}

func (p *ProtectedPusher) RequestPermission(ctx context.Context) (Permission, error) {
	return p.pusher.RequestPermission(ctx)
}

// Send attempts a push through the breaker. An open breaker fails fast
// with ErrBreakerOpen, which the delivery coordinator discards like any
// other channel error.
func (p *ProtectedPusher) Send(ctx context.Context, push Push) error {
	if !p.breaker.allow() {
		p.logger.Warn("push rejected by breaker",
			zap.String("state", p.breaker.State().String()),
			zap.String("tag", push.Tag),
		)
		return fmt.Errorf("%w", ErrBreakerOpen)
	}

	if err := p.pusher.Send(ctx, push); err != nil {
		p.breaker.recordFailure()
		return err
	}

	p.breaker.recordSuccess()
	return nil
}

// Breaker exposes the underlying breaker for stats.
func (p *ProtectedPusher) Breaker() *Breaker {
	return p.breaker
}
