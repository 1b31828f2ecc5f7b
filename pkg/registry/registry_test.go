package registry

import "testing"

func buildRegistry(t *testing.T) *Registry {
	t.Helper()
	r := New()
	for _, tier := range []struct {
		id   string
		rank int
	}{
		{"haiku", 1},
		{"gemini", 2},
		{"gpt", 3},
		{"sonnet", 3}, // registered after gpt, same rank
		{"opus", 4},
	} {
		if err := r.Register(tier.id, tier.rank); err != nil {
			t.Fatalf("register %s: %v", tier.id, err)
		}
	}
	return r
}

func TestRegisterEmptyID(t *testing.T) {
	r := New()
	if err := r.Register("", 1); err == nil {
		t.Fatal("expected error for empty tier id")
	}
}

func TestListAvailableOrder(t *testing.T) {
	r := buildRegistry(t)
	got := r.ListAvailable()
	want := []string{"opus", "sonnet", "gpt", "gemini", "haiku"}
	if len(got) != len(want) {
		t.Fatalf("expected %d tiers, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
}

func TestEqualRankPrefersLaterRegistration(t *testing.T) {
	r := buildRegistry(t)
	tier, ok := r.BestAtOrBelow(3)
	if !ok {
		t.Fatal("expected a tier")
	}
	if tier != "sonnet" {
		t.Fatalf("expected sonnet (registered after gpt at equal rank), got %s", tier)
	}

	// Re-registering gpt makes it the newer revision.
	if err := r.Register("gpt", 3); err != nil {
		t.Fatalf("re-register: %v", err)
	}
	tier, _ = r.BestAtOrBelow(3)
	if tier != "gpt" {
		t.Fatalf("expected gpt after re-registration, got %s", tier)
	}
}

func TestAvailability(t *testing.T) {
	r := buildRegistry(t)
	if !r.IsAvailable("opus") {
		t.Fatal("opus should start available")
	}
	if err := r.SetAvailability("opus", false); err != nil {
		t.Fatalf("set availability: %v", err)
	}
	if r.IsAvailable("opus") {
		t.Fatal("opus should be unavailable")
	}
	if got := r.ListAvailable()[0].ID; got != "sonnet" {
		t.Fatalf("expected sonnet at top with opus down, got %s", got)
	}
	if err := r.SetAvailability("nope", true); err == nil {
		t.Fatal("expected error for unknown tier")
	}
	if r.IsAvailable("nope") {
		t.Fatal("unknown tier should not be available")
	}
}

func TestCheapest(t *testing.T) {
	r := buildRegistry(t)
	tier, ok := r.Cheapest()
	if !ok || tier != "haiku" {
		t.Fatalf("expected haiku, got %s (ok=%v)", tier, ok)
	}
	tier, ok = r.CheapestAbove()
	if !ok || tier != "gemini" {
		t.Fatalf("expected gemini, got %s (ok=%v)", tier, ok)
	}

	if err := r.SetAvailability("haiku", false); err != nil {
		t.Fatalf("set availability: %v", err)
	}
	tier, _ = r.Cheapest()
	if tier != "gemini" {
		t.Fatalf("expected gemini as cheapest with haiku down, got %s", tier)
	}
}

func TestBestAtOrBelowFallsBackToCheapest(t *testing.T) {
	r := buildRegistry(t)
	for _, id := range []string{"haiku", "gemini"} {
		if err := r.SetAvailability(id, false); err != nil {
			t.Fatalf("set availability: %v", err)
		}
	}
	// Ceiling below every remaining tier's rank: fall back to cheapest.
	tier, ok := r.BestAtOrBelow(1)
	if !ok || tier != "gpt" {
		t.Fatalf("expected gpt fallback, got %s (ok=%v)", tier, ok)
	}
}
