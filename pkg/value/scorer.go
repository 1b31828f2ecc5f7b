// Package value computes a 0-100 value score for a request from its
// complexity and situational inputs, reweighted by the current budget
// state, and recommends a model tier along the registry's capability
// ranking.
package value

import (
	"fmt"
	"strings"

	"github.com/zen-systems/cascade/pkg/config"
	"github.com/zen-systems/cascade/pkg/registry"
	"github.com/zen-systems/cascade/pkg/schema"
)

// Input carries the situational factors for one scoring call. All 0-10
// fields are clamped into range before use.
type Input struct {
	Complexity        schema.Complexity `json:"complexity"`
	Category          schema.Category   `json:"category"`
	Stakes            float64           `json:"stakes"`             // 0-10
	QualityPriority   float64           `json:"quality_priority"`   // 0-10
	BudgetPressure    float64           `json:"budget_pressure"`    // 0-10
	HistoricalPerf    float64           `json:"historical_perf"`    // 0-10
	SecuritySensitive bool              `json:"security_sensitive"`
}

// Result is the outcome of one scoring call: the clamped 0-100 score, the
// recommended tier, the weight vector actually applied, and reasoning
// text for auditability.
type Result struct {
	Score     float64             `json:"score"`
	Tier      string              `json:"tier"`
	Weights   config.WeightVector `json:"weights"`
	Reasoning string              `json:"reasoning"`
}

// Scorer is a pure function of its inputs plus the current budget state;
// it holds no hidden state beyond the registry it reads tiers from.
type Scorer struct {
	reg   *registry.Registry
	cfg   config.ValueConfig
	vocab config.Vocabulary
}

// NewScorer creates a scorer over the given tier registry.
func NewScorer(reg *registry.Registry, cfg config.ValueConfig, vocab config.Vocabulary) *Scorer {
	return &Scorer{reg: reg, cfg: cfg, vocab: vocab}
}

// ClassifyComplexity is the simpler, keyword-weighted complexity variant
// used independently of the full classifier. It is additive: each
// detected trait adds points, and the sum buckets into a complexity
// level.
func (s *Scorer) ClassifyComplexity(content string, category schema.Category) schema.Complexity {
	if category == schema.CategoryHeartbeat || category == schema.CategoryParseCommand {
		return schema.ComplexityTrivial
	}

	text := strings.ToLower(content)
	points := 0
	if hasAny(text, s.vocab.Security) {
		points += 3
	}
	if category == schema.CategorySecurity {
		points += 2
	}
	if hasAny(text, s.vocab.Reasoning) {
		points += 2
	}
	if hasAny(text, s.vocab.CodeGen) {
		points += 2
	}
	if multiStep(text) {
		points++
	}
	if len(content)/4 > 10000 {
		points++
	}

	switch {
	case points == 0:
		return schema.ComplexityTrivial
	case points == 1:
		return schema.ComplexitySimple
	case points <= 4:
		return schema.ComplexityStandard
	case points <= 6:
		return schema.ComplexityComplex
	default:
		return schema.ComplexityCritical
	}
}

// Score computes the weighted value score and tier recommendation for the
// given budget state.
func (s *Scorer) Score(in Input, state schema.BudgetState) *Result {
	w := s.weightsFor(state)

	quality := clamp10(in.QualityPriority)
	stakes := clamp10(in.Stakes)
	history := clamp10(in.HistoricalPerf)
	inverseBudget := 10 - clamp10(in.BudgetPressure)
	complexity := in.Complexity.Scale()

	score := 10 * (w.Quality*quality +
		w.Cost*inverseBudget +
		w.Complexity*complexity +
		w.Stakes*stakes +
		w.History*history)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	tier := s.recommendTier(in, state, score)

	return &Result{
		Score:   score,
		Tier:    tier,
		Weights: w,
		Reasoning: fmt.Sprintf("complexity=%s stakes=%.1f budget_state=%s score=%.1f -> tier=%s",
			in.Complexity, stakes, state, score, tier),
	}
}

// recommendTier applies the tier rules in priority order: trivial
// heartbeat-class work, the security floor, budget-state overrides, and
// finally the monotone score-to-capability mapping over available tiers.
func (s *Scorer) recommendTier(in Input, state schema.BudgetState, score float64) string {
	if in.Complexity == schema.ComplexityTrivial &&
		(in.Category == schema.CategoryHeartbeat || in.Category == schema.CategoryParseCommand) {
		if tier, ok := s.reg.Cheapest(); ok {
			return tier
		}
		return ""
	}

	if in.SecuritySensitive {
		return s.atLeastFloor(s.mappedTier(score))
	}

	switch state {
	case schema.BudgetPause:
		if score >= 80 {
			return s.cfg.SecurityFloor
		}
		if tier, ok := s.reg.Cheapest(); ok {
			return tier
		}
		return ""
	case schema.BudgetReduce:
		if score >= 40 && score < 75 {
			if tier, ok := s.reg.CheapestAbove(); ok {
				return tier
			}
		}
		if score < 40 {
			if tier, ok := s.reg.Cheapest(); ok {
				return tier
			}
		}
	}

	return s.mappedTier(score)
}

// mappedTier maps the score monotonically onto the registry's capability
// ranking: every 25 points of score raises the implied capability
// ceiling by one rank.
func (s *Scorer) mappedTier(score float64) string {
	ceiling := 1 + int(score/25)
	if tier, ok := s.reg.BestAtOrBelow(ceiling); ok {
		return tier
	}
	return ""
}

// atLeastFloor lifts the tier to the configured security floor when it
// ranks below it.
func (s *Scorer) atLeastFloor(tier string) string {
	floor := s.cfg.SecurityFloor
	if floor == "" {
		return tier
	}
	floorRank, ok := s.reg.Rank(floor)
	if !ok {
		return tier
	}
	rank, ok := s.reg.Rank(tier)
	if !ok || rank < floorRank {
		return floor
	}
	return tier
}

func (s *Scorer) weightsFor(state schema.BudgetState) config.WeightVector {
	if w, ok := s.cfg.Weights[string(state)]; ok {
		return w
	}
	if w, ok := s.cfg.Weights[string(schema.BudgetNormal)]; ok {
		return w
	}
	// Last-resort vector when config carries no weights at all.
	return config.WeightVector{Quality: 0.40, Cost: 0.20, Complexity: 0.15, Stakes: 0.15, History: 0.10}
}

func clamp10(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

func hasAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

var multiStepMarkers = []string{"step by step", "first", "then", "after that", "finally", "1.", "2."}

func multiStep(text string) bool {
	hits := 0
	for _, m := range multiStepMarkers {
		if strings.Contains(text, m) {
			hits++
		}
	}
	return hits >= 2
}
