package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/zen-systems/cascade/pkg/config"
)

func testPricing() config.PricingConfig {
	return config.PricingConfig{
		"mock": {
			"priced-model": {PromptPer1K: 3.0, CompletionPer1K: 15.0},
			"default":      {PromptPer1K: 1.0, CompletionPer1K: 2.0},
		},
	}
}

func TestProviderForModel(t *testing.T) {
	reg := NewRegistry(testPricing())
	reg.Register(NewMockProvider("model-a", "model-b"))

	p, err := reg.ProviderForModel("model-a")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if p.Name() != "mock" {
		t.Fatalf("provider name %q, want mock", p.Name())
	}

	if _, err := reg.ProviderForModel("model-z"); !errors.Is(err, ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider, got %v", err)
	}
}

func TestCompleteStampsMetadata(t *testing.T) {
	reg := NewRegistry(testPricing())
	mock := NewMockProvider("priced-model").WithResponse("priced-model", "hi there")
	reg.Register(mock)

	comp, err := reg.Complete(context.Background(), "priced-model", []Message{{Role: "user", Content: "hi"}}, 0)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if comp.Tier != "priced-model" || comp.Provider != "mock" {
		t.Fatalf("missing identity stamps: %+v", comp)
	}
	if comp.Duration < 0 {
		t.Fatalf("negative duration: %v", comp.Duration)
	}

	// Mock reports 10 input and 10 output tokens.
	want := (10.0/1000.0)*3.0 + (10.0/1000.0)*15.0
	if comp.Cost != want {
		t.Fatalf("cost %.4f, want %.4f", comp.Cost, want)
	}
}

func TestCompleteFallsBackToDefaultPricing(t *testing.T) {
	reg := NewRegistry(testPricing())
	reg.Register(NewMockProvider("unpriced-model"))

	comp, err := reg.Complete(context.Background(), "unpriced-model", []Message{{Role: "user", Content: "hi"}}, 0)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	want := (10.0/1000.0)*1.0 + (10.0/1000.0)*2.0
	if comp.Cost != want {
		t.Fatalf("cost %.4f, want %.4f from default pricing", comp.Cost, want)
	}
}

func TestCompleteWithoutPricingCostsZero(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(NewMockProvider("free-model"))

	comp, err := reg.Complete(context.Background(), "free-model", []Message{{Role: "user", Content: "hi"}}, 0)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if comp.Cost != 0 {
		t.Fatalf("cost %.4f, want 0 with no pricing tables", comp.Cost)
	}
}

func TestLaterRegistrationClaimsModel(t *testing.T) {
	reg := NewRegistry(nil)

	first := NewMockProvider("shared-model")
	reg.Register(first)

	second := NewMockProvider("shared-model")
	second.name = "mock-two"
	reg.Register(second)

	p, err := reg.ProviderForModel("shared-model")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if p.Name() != "mock-two" {
		t.Fatalf("expected the later registration to win, got %q", p.Name())
	}
}

func TestCompletePropagatesProviderError(t *testing.T) {
	reg := NewRegistry(nil)
	upstream := &Error{Status: 429, Err: errors.New("rate limited")}
	reg.Register(NewMockProvider("model-a").WithError("model-a", upstream))

	_, err := reg.Complete(context.Background(), "model-a", []Message{{Role: "user", Content: "hi"}}, 0)
	var provErr *Error
	if !errors.As(err, &provErr) || provErr.Status != 429 {
		t.Fatalf("expected the wrapped provider error, got %v", err)
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"rate limited", &Error{Status: 429}, true},
		{"server error", &Error{Status: 503}, true},
		{"temporary flag", &Error{Status: 400, Temporary: true}, true},
		{"bad request", &Error{Status: 400}, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Fatalf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
