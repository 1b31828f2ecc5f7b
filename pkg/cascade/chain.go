package cascade

import (
	"fmt"

	"github.com/zen-systems/cascade/pkg/config"
	"github.com/zen-systems/cascade/pkg/registry"
	"github.com/zen-systems/cascade/pkg/schema"
)

// Step is one (tier, quality threshold) entry in a chain.
type Step struct {
	Tier      string  `json:"tier"`
	Threshold float64 `json:"threshold"`
}

// Chain is a named, ordered escalation path through model tiers.
type Chain struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Steps []Step `json:"steps"`
}

// Validate checks the chain's shape.
func (c Chain) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("chain id is empty")
	}
	if len(c.Steps) == 0 {
		return fmt.Errorf("chain %q has no steps", c.ID)
	}
	for i, s := range c.Steps {
		if s.Tier == "" {
			return fmt.Errorf("chain %q step %d has no tier", c.ID, i)
		}
		if s.Threshold < 0 || s.Threshold > 1 {
			return fmt.Errorf("chain %q step %d threshold %.2f out of [0,1]", c.ID, i, s.Threshold)
		}
	}
	return nil
}

// WithFloor drops leading steps whose tier ranks below the floor tier,
// so the cascade starts no lower than the recommended capability. The
// final step is always kept, and an unknown floor tier leaves the chain
// unchanged.
func (c Chain) WithFloor(reg *registry.Registry, floorTier string) Chain {
	floorRank, ok := reg.Rank(floorTier)
	if !ok {
		return c
	}
	start := 0
	for start < len(c.Steps)-1 {
		rank, ok := reg.Rank(c.Steps[start].Tier)
		if ok && rank >= floorRank {
			break
		}
		start++
	}
	if start == 0 {
		return c
	}
	out := c
	out.Steps = c.Steps[start:]
	return out
}

// ChainFromConfig converts a config chain declaration.
func ChainFromConfig(cc config.ChainConfig) Chain {
	ch := Chain{ID: cc.ID, Name: cc.Name}
	for _, s := range cc.Steps {
		ch.Steps = append(ch.Steps, Step{Tier: s.Tier, Threshold: s.Threshold})
	}
	return ch
}

// SelectChain picks the chain id for a request's traits: security work
// routes to security, critical complexity to quality, code generation to
// code, and everything else to frugal.
func SelectChain(category schema.Category, securitySensitive bool, complexity schema.Complexity) string {
	switch {
	case securitySensitive:
		return "security"
	case complexity == schema.ComplexityCritical:
		return "quality"
	case category == schema.CategoryCodeGeneration:
		return "code"
	default:
		return "frugal"
	}
}
