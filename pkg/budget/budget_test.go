package budget

import (
	"testing"

	"github.com/zen-systems/cascade/pkg/cascade"
	"github.com/zen-systems/cascade/pkg/schema"
)

func TestStateTransitions(t *testing.T) {
	tr := NewTracker(25, 50)

	if got := tr.State(); got != schema.BudgetNormal {
		t.Fatalf("fresh tracker state %s, want normal", got)
	}

	tr.Record("frugal", "cheap-model", 20)
	if got := tr.State(); got != schema.BudgetNormal {
		t.Fatalf("under soft limit: %s, want normal", got)
	}

	tr.Record("frugal", "cheap-model", 5)
	if got := tr.State(); got != schema.BudgetReduce {
		t.Fatalf("at soft limit: %s, want reduce", got)
	}

	tr.Record("quality", "top-model", 25)
	if got := tr.State(); got != schema.BudgetPause {
		t.Fatalf("at hard limit: %s, want pause", got)
	}
}

func TestZeroLimitsNeverRestrict(t *testing.T) {
	tr := NewTracker(0, 0)
	tr.Record("frugal", "cheap-model", 10000)
	if got := tr.State(); got != schema.BudgetNormal {
		t.Fatalf("unlimited tracker state %s, want normal", got)
	}
}

func TestReportSnapshot(t *testing.T) {
	tr := NewTracker(25, 50)
	tr.Record("frugal", "cheap-model", 1.50)
	tr.Record("code", "mid-model", 2.25)

	rep := tr.Report()
	if rep.TotalUSD != 3.75 {
		t.Fatalf("total %.2f, want 3.75", rep.TotalUSD)
	}
	if rep.State != schema.BudgetNormal {
		t.Fatalf("state %s, want normal", rep.State)
	}
	if len(rep.Calls) != 2 {
		t.Fatalf("expected 2 call records, got %d", len(rep.Calls))
	}
	if rep.Calls[1].ChainID != "code" || rep.Calls[1].Tier != "mid-model" {
		t.Fatalf("unexpected second record: %+v", rep.Calls[1])
	}

	// The returned slice is a copy, not a live view.
	rep.Calls[0].Cost = 999
	if tr.Report().Calls[0].Cost != 1.50 {
		t.Fatal("report mutated tracker state")
	}
}

func TestTrackerConsumesCompleteEvents(t *testing.T) {
	tr := NewTracker(25, 50)
	var listener cascade.Listener = tr

	listener.StepCompleted(cascade.StepEvent{Tier: "cheap-model", Quality: 0.4})
	if rep := tr.Report(); rep.TotalUSD != 0 {
		t.Fatalf("step events must not add spend, total %.2f", rep.TotalUSD)
	}

	listener.CascadeCompleted(cascade.CompleteEvent{ChainID: "frugal", FinalTier: "cheap-model", Cost: 0.42})
	rep := tr.Report()
	if rep.TotalUSD != 0.42 {
		t.Fatalf("total %.2f, want 0.42", rep.TotalUSD)
	}
	if rep.Calls[0].ChainID != "frugal" || rep.Calls[0].Tier != "cheap-model" {
		t.Fatalf("unexpected record: %+v", rep.Calls[0])
	}
}
