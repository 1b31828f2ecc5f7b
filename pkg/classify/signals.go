package classify

import (
	"regexp"
	"strings"

	"github.com/zen-systems/cascade/pkg/config"
	"github.com/zen-systems/cascade/pkg/schema"
)

// Signals is the per-signal breakdown behind a composite score. All six
// values are non-negative.
type Signals struct {
	Content    float64 `json:"content"`
	Structure  float64 `json:"structure"`
	Context    float64 `json:"context"`
	Metadata   float64 `json:"metadata"`
	Capability float64 `json:"capability"`
	Ambiguity  float64 `json:"ambiguity"`
}

var (
	codeBlockRe    = regexp.MustCompile("```")
	numberedStepRe = regexp.MustCompile(`(?m)^\s*(\d+[.)]|step\s+\d+)`)
	filePathRe     = regexp.MustCompile(`[\w./-]+\.(go|py|js|ts|rs|java|c|cpp|h|yaml|yml|json|toml|sql|sh|md)\b`)
	wordRe         = regexp.MustCompile(`[a-zA-Z']+`)
)

var conditionalMarkers = []string{"if ", "then ", "otherwise", "unless", "in case", "when "}

var pronouns = []string{"it", "this", "that", "them", "they", "those", "these", "thing", "stuff"}

// contentSignal scores lexical matches against the vocabulary tables.
// Each table contributes a bounded positive amount; plain conversational
// text contributes near zero.
func contentSignal(text string, vocab config.Vocabulary) float64 {
	score := minFloat(float64(countTerms(text, vocab.Security))*1.5, 3.0)
	score += minFloat(float64(countTerms(text, vocab.Architecture))*1.0, 2.5)
	score += minFloat(float64(countTerms(text, vocab.Technical))*0.75, 2.0)
	return score
}

// structureSignal adds fixed increments over a plain-text baseline for
// code blocks, sequential steps, conditional language, and file paths.
func structureSignal(text string) float64 {
	score := 0.5 // plain-text baseline
	if codeBlockRe.MatchString(text) {
		score += 2.0
	}
	if numberedStepRe.MatchString(text) {
		score += 1.5
	}
	for _, marker := range conditionalMarkers {
		if strings.Contains(text, marker) {
			score += 1.0
			break
		}
	}
	if filePathRe.MatchString(text) {
		score += 1.0
	}
	return score
}

// contextSignal is zero for a first turn and grows with turn count and
// accumulated token volume. A topic shift between turns or a prior
// assistant turn expressing uncertainty raises it further.
func contextSignal(req *schema.Request, vocab config.Vocabulary) float64 {
	if len(req.Turns) == 0 {
		return 0
	}

	score := minFloat(float64(len(req.Turns))*0.5, 3.0)

	totalChars := 0
	for _, t := range req.Turns {
		totalChars += len(t.Content)
	}
	score += minFloat(float64(totalChars/4)/1000.0, 2.0)

	if topicShifted(req) {
		score += 1.5
	}
	for _, t := range req.Turns {
		if t.Role == "assistant" && countTerms(strings.ToLower(t.Content), vocab.Uncertainty) > 0 {
			score += 1.0
			break
		}
	}
	return score
}

// topicShifted detects a vocabulary break between the last prior user
// turn and the current request: low word overlap means a new topic.
func topicShifted(req *schema.Request) bool {
	var lastUser string
	for i := len(req.Turns) - 1; i >= 0; i-- {
		if req.Turns[i].Role == "user" {
			lastUser = req.Turns[i].Content
			break
		}
	}
	if lastUser == "" {
		return false
	}

	prev := significantWords(lastUser)
	curr := significantWords(req.Content)
	if len(prev) == 0 || len(curr) == 0 {
		return false
	}

	overlap := 0
	for w := range curr {
		if prev[w] {
			overlap++
		}
	}
	return float64(overlap)/float64(len(curr)) < 0.1
}

// metadataSignal applies the fixed task-metadata bonuses and the
// heartbeat penalty, clamped at zero.
func metadataSignal(req *schema.Request) float64 {
	score := 0.0
	if req.SecuritySensitive {
		score += 4
	}
	if req.AgentRole == "guardian" {
		score += 3
	}
	if req.TrustLevel == schema.TrustHostile {
		score += 5
	}
	if req.Priority == schema.PriorityUrgent {
		score += 1
	}
	switch req.Category {
	case schema.CategorySecurity:
		score += 3
	case schema.CategoryHeartbeat:
		score -= 3
	}
	return maxFloat(score, 0)
}

// capabilitySignal credits detected needs for reasoning, code, tool use,
// and long-context handling, with a combined bonus when two or more are
// detected at once.
func capabilitySignal(req *schema.Request, text string, vocab config.Vocabulary) float64 {
	detected := 0
	score := 0.0
	if countTerms(text, vocab.Reasoning) > 0 {
		score += 1.5
		detected++
	}
	if countTerms(text, vocab.CodeGen) > 0 || codeBlockRe.MatchString(text) {
		score += 1.5
		detected++
	}
	if strings.Contains(text, "tool") || strings.Contains(text, "api call") || strings.Contains(text, "execute") {
		score += 1.0
		detected++
	}
	if req.EstimatedTokens() > 10000 {
		score += 1.5
		detected++
	}
	if detected >= 2 {
		score += 1.0
	}
	return score
}

// ambiguitySignal is high for stock vague phrases and very short
// requests, grows with pronoun density, and is scaled down for long,
// detailed requests.
func ambiguitySignal(text string, vocab config.Vocabulary) float64 {
	words := wordRe.FindAllString(text, -1)
	wordCount := len(words)

	score := 0.0
	if countTerms(text, vocab.Vague) > 0 {
		score += 3.0
	}
	if wordCount < 5 {
		score += 3.0
	}
	if wordCount > 0 {
		pronounCount := 0
		for _, w := range words {
			for _, p := range pronouns {
				if w == p {
					pronounCount++
					break
				}
			}
		}
		if float64(pronounCount)/float64(wordCount) > 0.15 {
			score += 2.0
		}
	}
	if wordCount >= 50 {
		score *= 0.3
	}
	return score
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "to": true,
	"of": true, "in": true, "on": true, "for": true, "with": true, "is": true,
	"are": true, "it": true, "this": true, "that": true, "i": true, "you": true,
	"we": true, "can": true, "do": true, "be": true, "my": true, "me": true,
	"please": true, "how": true, "what": true,
}

func significantWords(text string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if len(w) < 3 || stopWords[w] {
			continue
		}
		out[w] = true
	}
	return out
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
