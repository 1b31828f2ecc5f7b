package classify

import "strings"

// containsTerm checks if the text contains the term as a word or phrase
// boundary match. Both arguments must already be lowercased.
func containsTerm(text, term string) bool {
	start := 0
	for {
		idx := strings.Index(text[start:], term)
		if idx == -1 {
			return false
		}
		idx += start

		boundaryBefore := idx == 0 || !isWordChar(text[idx-1])
		end := idx + len(term)
		boundaryAfter := end >= len(text) || !isWordChar(text[end])
		if boundaryBefore && boundaryAfter {
			return true
		}
		start = idx + 1
	}
}

// countTerms returns how many of the terms appear in the text.
func countTerms(text string, terms []string) int {
	hits := 0
	for _, term := range terms {
		if containsTerm(text, strings.ToLower(term)) {
			hits++
		}
	}
	return hits
}

func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
}
