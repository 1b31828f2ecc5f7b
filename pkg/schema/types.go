// Package schema defines the core value types shared across the routing
// pipeline: requests, categories, complexity levels, and budget states.
package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrEmptyRequest indicates a request with no content. This is a usage
// error and never retried.
var ErrEmptyRequest = errors.New("request content is empty")

// Category classifies the kind of work a request asks for.
type Category string

const (
	CategoryQuery          Category = "query"
	CategorySummarize      Category = "summarize"
	CategoryChat           Category = "chat"
	CategoryCodeGeneration Category = "code_generation"
	CategoryCodeReview     Category = "code_review"
	CategoryAnalysis       Category = "analysis"
	CategoryPlanning       Category = "planning"
	CategorySecurity       Category = "security"
	CategoryHeartbeat      Category = "heartbeat"
	CategoryParseCommand   Category = "parse_command"
)

// TrustLevel describes how much the originating agent is trusted.
type TrustLevel string

const (
	TrustTrusted TrustLevel = "trusted"
	TrustNeutral TrustLevel = "neutral"
	TrustHostile TrustLevel = "hostile"
)

// Priority orders requests by urgency.
type Priority string

const (
	PriorityBackground Priority = "BACKGROUND"
	PriorityStandard   Priority = "STANDARD"
	PriorityUrgent     Priority = "URGENT"
)

// Complexity buckets a request by how much model capability it needs.
type Complexity string

const (
	ComplexityTrivial  Complexity = "trivial"
	ComplexitySimple   Complexity = "simple"
	ComplexityStandard Complexity = "standard"
	ComplexityComplex  Complexity = "complex"
	ComplexityCritical Complexity = "critical"
)

// Scale maps a complexity level onto a 0-10 scale for scoring.
func (c Complexity) Scale() float64 {
	switch c {
	case ComplexityTrivial:
		return 1
	case ComplexitySimple:
		return 3
	case ComplexityStandard:
		return 5
	case ComplexityComplex:
		return 7.5
	case ComplexityCritical:
		return 10
	default:
		return 5
	}
}

// BudgetState is the system-wide spending posture.
type BudgetState string

const (
	BudgetNormal BudgetState = "normal"
	BudgetReduce BudgetState = "reduce"
	BudgetPause  BudgetState = "pause"
)

// Turn is one prior conversation message.
type Turn struct {
	Role    string `json:"role" yaml:"role"` // "user" or "assistant"
	Content string `json:"content" yaml:"content"`
}

// Request is the immutable input to the routing pipeline. It is owned by
// the caller and read-only to the router.
type Request struct {
	ID                string     `json:"id"`
	Content           string     `json:"content"`
	Turns             []Turn     `json:"turns,omitempty"`
	Category          Category   `json:"category,omitempty"`
	AgentID           string     `json:"agent_id,omitempty"`
	AgentRole         string     `json:"agent_role,omitempty"`
	TrustLevel        TrustLevel `json:"trust_level,omitempty"`
	Priority          Priority   `json:"priority,omitempty"`
	SecuritySensitive bool       `json:"security_sensitive"`
	CachingEnabled    bool       `json:"caching_enabled"`
	MaxTokens         int        `json:"max_tokens,omitempty"`
}

// NewRequest creates a request with a fresh id and standard defaults.
func NewRequest(content string) *Request {
	return &Request{
		ID:       uuid.NewString(),
		Content:  content,
		Priority: PriorityStandard,
	}
}

// Validate reports usage errors on the request itself. An empty request is
// fatal and never retried.
func (r *Request) Validate() error {
	if r == nil {
		return fmt.Errorf("request is nil")
	}
	if strings.TrimSpace(r.Content) == "" {
		return ErrEmptyRequest
	}
	return nil
}

// EstimatedTokens approximates the request's token count as characters
// divided by four, including prior turns.
func (r *Request) EstimatedTokens() int {
	total := len(r.Content)
	for _, t := range r.Turns {
		total += len(t.Content)
	}
	return total / 4
}
