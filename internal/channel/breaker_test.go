package channel

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

type stubPusher struct {
	permission Permission
	sendErr    error
	sends      int
}

func (s *stubPusher) Permission() Permission { return s.permission }

func (s *stubPusher) RequestPermission(ctx context.Context) (Permission, error) {
	return s.permission, nil
}

func (s *stubPusher) Send(ctx context.Context, p Push) error {
	s.sends++
	return s.sendErr
}

func TestBreakerOpensAfterMaxFailures(t *testing.T) {
	b := NewBreaker(BreakerConfig{MaxFailures: 3, RecoveryTimeout: time.Minute}, zap.NewNop())

	for i := 0; i < 3; i++ {
		if !b.allow() {
			t.Fatalf("breaker rejected call %d while closed", i)
		}
		b.recordFailure()
	}

	if b.State() != BreakerOpen {
		t.Fatalf("state = %s, want open", b.State())
	}
	if b.allow() {
		t.Error("open breaker must reject calls")
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker(BreakerConfig{MaxFailures: 3, RecoveryTimeout: time.Minute}, zap.NewNop())

	b.recordFailure()
	b.recordFailure()
	b.recordSuccess()
	b.recordFailure()
	b.recordFailure()

	if b.State() != BreakerClosed {
		t.Errorf("state = %s, want closed (success reset the streak)", b.State())
	}
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	b := NewBreaker(BreakerConfig{MaxFailures: 1, RecoveryTimeout: 10 * time.Millisecond}, zap.NewNop())

	b.recordFailure()
	if b.State() != BreakerOpen {
		t.Fatalf("state = %s, want open", b.State())
	}

	time.Sleep(20 * time.Millisecond)

	if !b.allow() {
		t.Fatal("breaker should allow a probe after the recovery timeout")
	}
	if b.State() != BreakerHalfOpen {
		t.Fatalf("state = %s, want half-open", b.State())
	}
	// Only one probe at a time.
	if b.allow() {
		t.Error("half-open breaker must reject a second call while probing")
	}

	b.recordSuccess()
	if b.State() != BreakerClosed {
		t.Errorf("state = %s, want closed after successful probe", b.State())
	}
}

func TestBreakerReopensOnFailedProbe(t *testing.T) {
	b := NewBreaker(BreakerConfig{MaxFailures: 1, RecoveryTimeout: 10 * time.Millisecond}, zap.NewNop())

	b.recordFailure()
	time.Sleep(20 * time.Millisecond)
	if !b.allow() {
		t.Fatal("probe not allowed")
	}
	b.recordFailure()

	if b.State() != BreakerOpen {
		t.Errorf("state = %s, want open after failed probe", b.State())
	}
}

func TestProtectedPusherFailsFastWhenOpen(t *testing.T) {
	stub := &stubPusher{permission: PermissionGranted, sendErr: errors.New("platform down")}
	b := NewBreaker(BreakerConfig{MaxFailures: 2, RecoveryTimeout: time.Minute}, zap.NewNop())
	p := NewProtectedPusher(stub, b, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := p.Send(ctx, Push{Tag: "system"}); err == nil {
			t.Fatal("expected send error")
		}
	}

	err := p.Send(ctx, Push{Tag: "system"})
	if !errors.Is(err, ErrBreakerOpen) {
		t.Fatalf("err = %v, want ErrBreakerOpen", err)
	}
	if stub.sends != 2 {
		t.Errorf("platform called %d times, want 2 (open breaker short-circuits)", stub.sends)
	}

	stats := b.Stats()
	if stats.State != "open" {
		t.Errorf("stats state = %s, want open", stats.State)
	}
	if stats.TotalRejected != 1 {
		t.Errorf("rejected = %d, want 1", stats.TotalRejected)
	}
}

func TestProtectedPusherPermissionPassThrough(t *testing.T) {
	stub := &stubPusher{permission: PermissionDenied}
	b := NewBreaker(BreakerConfig{}, zap.NewNop())
	p := NewProtectedPusher(stub, b, zap.NewNop())

	if p.Permission() != PermissionDenied {
		t.Error("permission must pass through untouched")
	}
	perm, err := p.RequestPermission(context.Background())
	if err != nil || perm != PermissionDenied {
		t.Errorf("request permission = %s, %v", perm, err)
	}
}
