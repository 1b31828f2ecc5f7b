// Package classify scores inbound requests across six independent signal
// dimensions and derives a complexity level, a category, and a suggested
// escalation chain. Classification is pure and deterministic: no I/O, no
// mutation, safe for concurrent use.
package classify

import (
	"fmt"
	"math"
	"strings"

	"github.com/zen-systems/cascade/pkg/config"
	"github.com/zen-systems/cascade/pkg/schema"
)

// Result is the derived classification for one request. It is recomputed
// fresh on every call and never persisted.
type Result struct {
	Complexity schema.Complexity `json:"complexity"`
	Score      float64           `json:"score"`
	Signals    Signals           `json:"signals"`
	Confidence float64           `json:"confidence"`
	Category   schema.Category   `json:"category"`
	ChainID    string            `json:"chain_id"`
	Reasoning  string            `json:"reasoning"`
}

// Classifier computes classifications using externally supplied weight
// tables and vocabulary.
type Classifier struct {
	weights config.SignalWeights
	vocab   config.Vocabulary
}

// New creates a classifier from the given tables.
func New(cfg config.ClassifierConfig) *Classifier {
	return &Classifier{weights: cfg.Weights, vocab: cfg.Vocabulary}
}

// securityFloorScore is the composite minimum forced by the
// security-sensitive flag, guaranteeing at least complex.
const securityFloorScore = 5.0

// heartbeatCeiling keeps routine liveness traffic in the trivial bucket.
const heartbeatCeiling = 1.5

// Classify derives the classification result for a request.
func (c *Classifier) Classify(req *schema.Request) *Result {
	text := strings.ToLower(req.Content)

	sig := Signals{
		Content:    contentSignal(text, c.vocab),
		Structure:  structureSignal(text),
		Context:    contextSignal(req, c.vocab),
		Metadata:   metadataSignal(req),
		Capability: capabilitySignal(req, text, c.vocab),
		Ambiguity:  ambiguitySignal(text, c.vocab),
	}

	composite := c.weights.Content*sig.Content +
		c.weights.Structure*sig.Structure +
		c.weights.Context*sig.Context +
		c.weights.Metadata*sig.Metadata +
		c.weights.Capability*sig.Capability +
		c.weights.Ambiguity*sig.Ambiguity

	if req.Category == schema.CategoryHeartbeat {
		composite = minFloat(composite, heartbeatCeiling)
	}
	if req.SecuritySensitive && composite < securityFloorScore {
		composite = securityFloorScore
	}

	complexity := bucket(composite)
	category := c.suggestCategory(req, text)
	chainID := suggestChain(req, category, complexity)

	return &Result{
		Complexity: complexity,
		Score:      composite,
		Signals:    sig,
		Confidence: confidence(sig),
		Category:   category,
		ChainID:    chainID,
		Reasoning: fmt.Sprintf(
			"composite=%.2f complexity=%s (content=%.1f structure=%.1f context=%.1f metadata=%.1f capability=%.1f ambiguity=%.1f)",
			composite, complexity, sig.Content, sig.Structure, sig.Context, sig.Metadata, sig.Capability, sig.Ambiguity),
	}
}

// bucket maps a composite score onto a complexity level.
func bucket(score float64) schema.Complexity {
	switch {
	case score < 2:
		return schema.ComplexityTrivial
	case score < 4:
		return schema.ComplexitySimple
	case score < 5:
		return schema.ComplexityStandard
	case score < 7:
		return schema.ComplexityComplex
	default:
		return schema.ComplexityCritical
	}
}

// nominal per-signal maxima used to normalize signals before measuring
// their agreement.
var signalMaxima = Signals{
	Content:    7.5,
	Structure:  6.0,
	Context:    7.5,
	Metadata:   16.0,
	Capability: 6.5,
	Ambiguity:  8.0,
}

// confidence measures how tightly the six signals agree. Signals pulling
// toward opposite complexity levels widen the spread and lower the
// confidence. Result is clamped to [0,1].
func confidence(sig Signals) float64 {
	norm := []float64{
		sig.Content / signalMaxima.Content,
		sig.Structure / signalMaxima.Structure,
		sig.Context / signalMaxima.Context,
		sig.Metadata / signalMaxima.Metadata,
		sig.Capability / signalMaxima.Capability,
		sig.Ambiguity / signalMaxima.Ambiguity,
	}

	mean := 0.0
	for _, v := range norm {
		mean += v
	}
	mean /= float64(len(norm))

	variance := 0.0
	for _, v := range norm {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(norm))

	conf := 1.0 - 2.0*math.Sqrt(variance)
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return conf
}

// suggestChain picks the escalation chain: security work routes to the
// security chain, critical work to quality, code generation to code, and
// everything else to frugal.
func suggestChain(req *schema.Request, category schema.Category, complexity schema.Complexity) string {
	switch {
	case req.SecuritySensitive:
		return "security"
	case complexity == schema.ComplexityCritical:
		return "quality"
	case category == schema.CategoryCodeGeneration:
		return "code"
	default:
		return "frugal"
	}
}
