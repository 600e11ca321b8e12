package pinguard

import (
	"testing"
	"time"

	"verify-station/apperr"
)

func newTestGuard(secret string) (*Guard, *time.Time) {
	g := New(secret)
	now := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }
	return g, &now
}

func TestVerifyCorrectPIN(t *testing.T) {
	g, _ := newTestGuard("1234")
	if err := g.Verify("1234", "10.0.0.1"); err != nil {
		t.Fatalf("Verify with correct PIN failed: %v", err)
	}
}

func TestVerifyWrongPIN(t *testing.T) {
	g, _ := newTestGuard("1234")
	err := g.Verify("0000", "10.0.0.1")
	if apperr.KindOf(err) != apperr.Forbidden {
		t.Fatalf("expected Forbidden, got %v", err)
	}
}

func TestLockoutAfterMaxFailures(t *testing.T) {
	g, _ := newTestGuard("1234")

	for i := 0; i < DefaultMaxAttempts; i++ {
		if err := g.Verify("WRONG", "10.0.0.1"); apperr.KindOf(err) != apperr.Forbidden {
			t.Fatalf("attempt %d expected Forbidden, got %v", i+1, err)
		}
	}

	// 6th attempt is rejected even with the correct PIN
	err := g.Verify("1234", "10.0.0.1")
	if apperr.KindOf(err) != apperr.TooManyAttempts {
		t.Fatalf("expected TooManyAttempts, got %v", err)
	}
}

func TestLockoutExpiresWithWindow(t *testing.T) {
	g, now := newTestGuard("1234")

	for i := 0; i < DefaultMaxAttempts; i++ {
		g.Verify("WRONG", "10.0.0.1")
	}
	if allowed, _ := g.Check("10.0.0.1"); allowed {
		t.Fatal("expected lockout after max failures")
	}

	*now = now.Add(DefaultWindow + time.Second)
	if allowed, _ := g.Check("10.0.0.1"); !allowed {
		t.Fatal("expected lockout to expire after window")
	}
	if err := g.Verify("1234", "10.0.0.1"); err != nil {
		t.Fatalf("Verify after window failed: %v", err)
	}
}

func TestLockoutIsPerClient(t *testing.T) {
	g, _ := newTestGuard("1234")

	for i := 0; i < DefaultMaxAttempts; i++ {
		g.Verify("WRONG", "10.0.0.1")
	}
	if err := g.Verify("1234", "10.0.0.2"); err != nil {
		t.Fatalf("other client should not be locked out: %v", err)
	}
}

func TestSuccessDoesNotConsumeBudget(t *testing.T) {
	g, _ := newTestGuard("1234")

	for i := 0; i < 20; i++ {
		if err := g.Verify("1234", "10.0.0.1"); err != nil {
			t.Fatalf("success %d unexpectedly failed: %v", i+1, err)
		}
	}
}

func TestRetryAfterReported(t *testing.T) {
	g, _ := newTestGuard("1234")

	for i := 0; i < DefaultMaxAttempts; i++ {
		g.Verify("WRONG", "10.0.0.1")
	}
	allowed, retryAfter := g.Check("10.0.0.1")
	if allowed {
		t.Fatal("expected lockout")
	}
	if retryAfter <= 0 || retryAfter > DefaultWindow {
		t.Fatalf("retryAfter out of range: %v", retryAfter)
	}
}
