// Package breaker implements a per-tier failure-isolation state machine.
// A tier whose breaker is open is skipped by the cascade router exactly
// as if it were unavailable.
package breaker

import (
	"sync"
	"time"
)

// State is the breaker's position in the CLOSED/OPEN/HALF_OPEN cycle.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

// String returns the canonical state name.
func (s State) String() string {
	switch s {
	case Closed:
		return "CLOSED"
	case Open:
		return "OPEN"
	case HalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Config holds the transition thresholds.
type Config struct {
	FailureThreshold  int           // failures within FailureWindow that trip the breaker
	FailureWindow     time.Duration // rolling window for counting failures
	RecoveryTimeout   time.Duration // open duration before probing half-open
	HalfOpenSuccesses int           // consecutive successes that close the breaker
}

// DefaultConfig returns the stock thresholds: 5 failures in 120s trip the
// breaker, recovery probes after 60s, and 2 successes close it again.
func DefaultConfig() Config {
	return Config{
		FailureThreshold:  5,
		FailureWindow:     120 * time.Second,
		RecoveryTimeout:   60 * time.Second,
		HalfOpenSuccesses: 2,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.FailureWindow <= 0 {
		c.FailureWindow = d.FailureWindow
	}
	if c.RecoveryTimeout <= 0 {
		c.RecoveryTimeout = d.RecoveryTimeout
	}
	if c.HalfOpenSuccesses <= 0 {
		c.HalfOpenSuccesses = d.HalfOpenSuccesses
	}
	return c
}

// Breaker guards one tier. All transitions happen under the mutex so two
// concurrent failures cannot double-trigger a transition.
type Breaker struct {
	mu             sync.Mutex
	cfg            Config
	now            func() time.Time
	state          State
	failures       []time.Time
	halfOpenOK     int
	lastTransition time.Time
}

// Snapshot is a read-only view of breaker state for observability.
type Snapshot struct {
	State          State
	Failures       int
	LastTransition time.Time
}

// New creates a closed breaker with the given config.
func New(cfg Config) *Breaker {
	return &Breaker{cfg: cfg.withDefaults(), now: time.Now}
}

// NewWithClock creates a breaker with an injected clock, for tests.
func NewWithClock(cfg Config, now func() time.Time) *Breaker {
	b := New(cfg)
	b.now = now
	return b
}

// Allow reports whether a call may be attempted. An open breaker whose
// recovery timeout has elapsed moves to half-open and allows a probe.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh()
	return b.state != Open
}

// State returns the current state, applying the open-to-half-open
// transition if the recovery timeout has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh()
	return b.state
}

// RecordSuccess notes a successful call against the breaker.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh()
	switch b.state {
	case HalfOpen:
		b.halfOpenOK++
		if b.halfOpenOK >= b.cfg.HalfOpenSuccesses {
			b.transition(Closed)
		}
	case Closed:
		// Success in a closed breaker clears nothing: failures age out of
		// the rolling window on their own.
	}
}

// RecordFailure notes a failed call. Reaching the failure threshold inside
// the window opens the breaker; any failure while half-open reopens it.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh()
	switch b.state {
	case HalfOpen:
		b.transition(Open)
	case Closed:
		now := b.now()
		b.failures = append(b.failures, now)
		b.prune(now)
		if len(b.failures) >= b.cfg.FailureThreshold {
			b.transition(Open)
		}
	}
}

// Snapshot returns the current state and failure count.
func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh()
	b.prune(b.now())
	return Snapshot{State: b.state, Failures: len(b.failures), LastTransition: b.lastTransition}
}

// refresh applies the time-based OPEN -> HALF_OPEN transition. Callers
// must hold the mutex.
func (b *Breaker) refresh() {
	if b.state == Open && b.now().Sub(b.lastTransition) >= b.cfg.RecoveryTimeout {
		b.transition(HalfOpen)
	}
}

func (b *Breaker) transition(to State) {
	b.state = to
	b.lastTransition = b.now()
	b.halfOpenOK = 0
	if to == Open || to == Closed {
		b.failures = nil
	}
}

func (b *Breaker) prune(now time.Time) {
	cutoff := now.Add(-b.cfg.FailureWindow)
	kept := b.failures[:0]
	for _, t := range b.failures {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	b.failures = kept
}

// Set manages one breaker per tier, created lazily with a shared config.
type Set struct {
	mu       sync.Mutex
	cfg      Config
	now      func() time.Time
	breakers map[string]*Breaker
}

// NewSet creates a breaker set with the given config.
func NewSet(cfg Config) *Set {
	return &Set{cfg: cfg.withDefaults(), now: time.Now, breakers: make(map[string]*Breaker)}
}

// NewSetWithClock creates a breaker set with an injected clock.
func NewSetWithClock(cfg Config, now func() time.Time) *Set {
	s := NewSet(cfg)
	s.now = now
	return s
}

// For returns the breaker for a tier, creating it on first use.
func (s *Set) For(tier string) *Breaker {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.breakers[tier]
	if !ok {
		b = NewWithClock(s.cfg, s.now)
		s.breakers[tier] = b
	}
	return b
}

// Snapshots returns the state of every breaker created so far.
func (s *Set) Snapshots() map[string]Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Snapshot, len(s.breakers))
	for tier, b := range s.breakers {
		out[tier] = b.Snapshot()
	}
	return out
}
