package classify

import (
	"strings"

	"github.com/zen-systems/cascade/pkg/schema"
)

// categoryPatterns maps keyword patterns to the category they indicate.
// Order matters: the first match wins.
var categoryPatterns = []struct {
	category schema.Category
	patterns []string
}{
	{schema.CategoryCodeReview, []string{"review this code", "review my code", "code review", "review the code", "review this pr"}},
	{schema.CategoryCodeGeneration, []string{"implement", "write a function", "write code", "build a", "create a function", "generate code"}},
	{schema.CategorySummarize, []string{"summarize", "tldr", "key points", "summary of"}},
	{schema.CategoryPlanning, []string{"plan the architecture", "plan out", "roadmap", "design the system", "architecture plan"}},
	{schema.CategoryAnalysis, []string{"analyze", "analysis", "investigate", "root cause"}},
}

// suggestCategory detects the request category from keyword patterns.
// Any mention of a security or vulnerability term overrides the detected
// pattern and forces the security category.
func (c *Classifier) suggestCategory(req *schema.Request, text string) schema.Category {
	if countTerms(text, c.vocab.Security) > 0 {
		return schema.CategorySecurity
	}

	for _, entry := range categoryPatterns {
		for _, p := range entry.patterns {
			if strings.Contains(text, p) {
				return entry.category
			}
		}
	}

	if req.Category != "" {
		return req.Category
	}
	return schema.CategoryQuery
}
