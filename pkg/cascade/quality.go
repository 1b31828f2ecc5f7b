package cascade

import (
	"regexp"
	"strings"

	"github.com/zen-systems/cascade/pkg/schema"
)

// QualityFunc scores a response's adequacy for a request in [0,1]. The
// score is a pluggable heuristic, not a fixed algorithm; the default
// penalizes hedging and rewards structured, detailed, on-topic content.
type QualityFunc func(req *schema.Request, content string) float64

var hedgePhrases = []string{
	"i am not sure", "i'm not sure", "i cannot", "i can't help",
	"as an ai", "i don't know", "unable to determine", "it is unclear",
	"i apologize, but",
}

var (
	qualityCodeBlockRe = regexp.MustCompile("```")
	listRe             = regexp.MustCompile(`(?m)^\s*([-*]|\d+[.)])\s`)
	qualityWordRe      = regexp.MustCompile(`[a-zA-Z']+`)
)

// DefaultQuality is the stock response-quality heuristic.
func DefaultQuality(req *schema.Request, content string) float64 {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return 0
	}
	lower := strings.ToLower(trimmed)

	score := 0.5

	for _, phrase := range hedgePhrases {
		if strings.Contains(lower, phrase) {
			score -= 0.15
		}
	}

	// Structure: code blocks matter most for code work, lists for the rest.
	if qualityCodeBlockRe.MatchString(trimmed) {
		if req.Category == schema.CategoryCodeGeneration || req.Category == schema.CategoryCodeReview {
			score += 0.15
		} else {
			score += 0.05
		}
	}
	if listRe.MatchString(trimmed) {
		score += 0.10
	}

	// Detail: very short answers are rarely adequate.
	switch {
	case len(trimmed) < 40:
		score -= 0.20
	case len(trimmed) >= 400:
		score += 0.10
	}

	score += 0.15 * topicOverlap(req.Content, lower)

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// topicOverlap is the fraction of the request's significant words that
// reappear in the response.
func topicOverlap(prompt, responseLower string) float64 {
	words := make(map[string]bool)
	for _, w := range qualityWordRe.FindAllString(strings.ToLower(prompt), -1) {
		if len(w) >= 4 {
			words[w] = true
		}
	}
	if len(words) == 0 {
		return 0
	}
	hits := 0
	for w := range words {
		if strings.Contains(responseLower, w) {
			hits++
		}
	}
	return float64(hits) / float64(len(words))
}
