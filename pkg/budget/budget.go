// Package budget accumulates per-call spend emitted by the cascade
// router and derives the coarse budget state that reweights tier
// selection. The router itself never persists cost; this collaborator
// owns the running total.
package budget

import (
	"sync"
	"time"

	"github.com/zen-systems/cascade/pkg/cascade"
	"github.com/zen-systems/cascade/pkg/schema"
)

// CallRecord is one completed cascade call's spend.
type CallRecord struct {
	ChainID   string    `json:"chain_id"`
	Tier      string    `json:"tier"`
	Cost      float64   `json:"cost"`
	Timestamp time.Time `json:"timestamp"`
}

// Report summarizes accumulated spend.
type Report struct {
	TotalUSD     float64            `json:"total_usd"`
	SoftLimitUSD float64            `json:"soft_limit_usd"`
	HardLimitUSD float64            `json:"hard_limit_usd"`
	State        schema.BudgetState `json:"state"`
	Calls        []CallRecord       `json:"calls"`
}

// Tracker derives the budget state from accumulated spend against soft
// and hard limits: under the soft limit the state is normal, between the
// limits it is reduce, and at or past the hard limit it is pause.
type Tracker struct {
	mu    sync.Mutex
	soft  float64
	hard  float64
	total float64
	calls []CallRecord
	now   func() time.Time
}

// NewTracker creates a tracker with the given spend limits in USD.
func NewTracker(softLimit, hardLimit float64) *Tracker {
	return &Tracker{soft: softLimit, hard: hardLimit, now: time.Now}
}

// State returns the current budget posture.
func (t *Tracker) State() schema.BudgetState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked()
}

func (t *Tracker) stateLocked() schema.BudgetState {
	switch {
	case t.hard > 0 && t.total >= t.hard:
		return schema.BudgetPause
	case t.soft > 0 && t.total >= t.soft:
		return schema.BudgetReduce
	default:
		return schema.BudgetNormal
	}
}

// Record adds one call's cost to the running total.
func (t *Tracker) Record(chainID, tier string, cost float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total += cost
	t.calls = append(t.calls, CallRecord{ChainID: chainID, Tier: tier, Cost: cost, Timestamp: t.now()})
}

// Report returns a snapshot of accumulated spend.
func (t *Tracker) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	calls := make([]CallRecord, len(t.calls))
	copy(calls, t.calls)
	return Report{
		TotalUSD:     t.total,
		SoftLimitUSD: t.soft,
		HardLimitUSD: t.hard,
		State:        t.stateLocked(),
		Calls:        calls,
	}
}

// StepCompleted implements cascade.Listener. Per-step spend is already
// folded into the completion cost, so individual steps are not counted.
func (t *Tracker) StepCompleted(cascade.StepEvent) {}

// CascadeCompleted implements cascade.Listener, consuming the per-call
// cost the router emits.
func (t *Tracker) CascadeCompleted(e cascade.CompleteEvent) {
	t.Record(e.ChainID, e.FinalTier, e.Cost)
}
