package breaker

import (
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker() (*Breaker, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	b := NewWithClock(DefaultConfig(), clock.now)
	return b, clock
}

func TestOpensAtFailureThreshold(t *testing.T) {
	b, _ := newTestBreaker()

	for i := 0; i < 4; i++ {
		b.RecordFailure()
		if got := b.State(); got != Closed {
			t.Fatalf("after %d failures: expected CLOSED, got %s", i+1, got)
		}
	}
	b.RecordFailure()
	if got := b.State(); got != Open {
		t.Fatalf("expected OPEN at threshold, got %s", got)
	}
	if b.Allow() {
		t.Fatal("open breaker must not allow calls")
	}
}

func TestFailuresOutsideWindowDoNotTrip(t *testing.T) {
	b, clock := newTestBreaker()

	for i := 0; i < 4; i++ {
		b.RecordFailure()
	}
	clock.advance(121 * time.Second)
	b.RecordFailure()
	if got := b.State(); got != Closed {
		t.Fatalf("stale failures should have aged out, got %s", got)
	}
}

func TestHalfOpenAfterRecoveryTimeout(t *testing.T) {
	b, clock := newTestBreaker()

	for i := 0; i < 5; i++ {
		b.RecordFailure()
	}
	clock.advance(59 * time.Second)
	if got := b.State(); got != Open {
		t.Fatalf("expected OPEN before recovery timeout, got %s", got)
	}
	clock.advance(2 * time.Second)
	if got := b.State(); got != HalfOpen {
		t.Fatalf("expected HALF_OPEN after recovery timeout, got %s", got)
	}
	if !b.Allow() {
		t.Fatal("half-open breaker should allow a probe")
	}
}

func TestHalfOpenClosesAfterConsecutiveSuccesses(t *testing.T) {
	b, clock := newTestBreaker()

	for i := 0; i < 5; i++ {
		b.RecordFailure()
	}
	clock.advance(61 * time.Second)

	b.RecordSuccess()
	if got := b.State(); got != HalfOpen {
		t.Fatalf("one success should keep HALF_OPEN, got %s", got)
	}
	b.RecordSuccess()
	if got := b.State(); got != Closed {
		t.Fatalf("expected CLOSED after two successes, got %s", got)
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	b, clock := newTestBreaker()

	for i := 0; i < 5; i++ {
		b.RecordFailure()
	}
	clock.advance(61 * time.Second)
	if got := b.State(); got != HalfOpen {
		t.Fatalf("expected HALF_OPEN, got %s", got)
	}

	b.RecordFailure()
	if got := b.State(); got != Open {
		t.Fatalf("expected OPEN after half-open failure, got %s", got)
	}
	// The reopened breaker needs a fresh recovery timeout.
	clock.advance(61 * time.Second)
	if got := b.State(); got != HalfOpen {
		t.Fatalf("expected HALF_OPEN after second recovery, got %s", got)
	}
}

func TestSetCreatesPerTierBreakers(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	s := NewSetWithClock(DefaultConfig(), clock.now)

	a := s.For("tier-a")
	if got := s.For("tier-a"); got != a {
		t.Fatal("expected same breaker instance per tier")
	}
	for i := 0; i < 5; i++ {
		a.RecordFailure()
	}
	if got := s.For("tier-a").State(); got != Open {
		t.Fatalf("tier-a should be OPEN, got %s", got)
	}
	if got := s.For("tier-b").State(); got != Closed {
		t.Fatalf("tier-b should be isolated and CLOSED, got %s", got)
	}

	snaps := s.Snapshots()
	if snaps["tier-a"].State != Open || snaps["tier-b"].State != Closed {
		t.Fatalf("unexpected snapshots: %+v", snaps)
	}
}
