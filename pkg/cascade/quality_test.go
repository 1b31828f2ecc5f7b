package cascade

import (
	"strings"
	"testing"

	"github.com/zen-systems/cascade/pkg/schema"
)

func qualityRequest(category schema.Category) *schema.Request {
	req := schema.NewRequest("write a function that merges two sorted slices")
	req.Category = category
	return req
}

func TestDefaultQualityEmptyResponse(t *testing.T) {
	if q := DefaultQuality(qualityRequest(schema.CategoryChat), "   "); q != 0 {
		t.Fatalf("blank response should score 0, got %.2f", q)
	}
}

func TestDefaultQualityPenalizesHedging(t *testing.T) {
	req := qualityRequest(schema.CategoryChat)
	plain := "The merge walks both slices with two cursors and appends the smaller head each iteration."
	hedged := "I'm not sure, and I cannot really say how the merge of both slices would work in each iteration here."

	if DefaultQuality(req, hedged) >= DefaultQuality(req, plain) {
		t.Fatal("hedged response should score below a direct one")
	}
}

func TestDefaultQualityRewardsCodeForCodeWork(t *testing.T) {
	response := "Here is the merge:\n```go\nfunc merge(a, b []int) []int { return nil }\n```\nIt walks both sorted slices with two cursors."

	codeScore := DefaultQuality(qualityRequest(schema.CategoryCodeGeneration), response)
	chatScore := DefaultQuality(qualityRequest(schema.CategoryChat), response)
	if codeScore <= chatScore {
		t.Fatalf("code block should count more for code work: code=%.2f chat=%.2f", codeScore, chatScore)
	}
}

func TestDefaultQualityRewardsStructureAndDetail(t *testing.T) {
	req := qualityRequest(schema.CategoryAnalysis)
	short := "It merges them."
	detailed := "The merge of the sorted slices works in three phases:\n" +
		"1. Compare the heads of both slices and append the smaller value.\n" +
		"2. Advance the cursor of the slice the value came from.\n" +
		"3. Once either slice is exhausted, append the remainder of the other.\n" +
		strings.Repeat("Each phase preserves the sorted invariant of the output. ", 5)

	if DefaultQuality(req, detailed) <= DefaultQuality(req, short) {
		t.Fatal("detailed structured response should outscore a terse one")
	}
	if DefaultQuality(req, short) >= 0.5 {
		t.Fatalf("very short response should fall below the baseline, got %.2f", DefaultQuality(req, short))
	}
}

func TestDefaultQualityRewardsTopicOverlap(t *testing.T) {
	req := qualityRequest(schema.CategoryAnalysis)
	onTopic := "To merge two sorted slices, write a function that compares heads and appends the smaller element until both slices drain."
	offTopic := "Weather patterns across coastal regions shift with seasonal temperature gradients and ocean currents moving heat around."

	if DefaultQuality(req, onTopic) <= DefaultQuality(req, offTopic) {
		t.Fatal("on-topic response should outscore an off-topic one of similar length")
	}
}

func TestDefaultQualityClamped(t *testing.T) {
	req := qualityRequest(schema.CategoryChat)
	awful := strings.Repeat("I'm not sure. I cannot say. As an AI I don't know. ", 3)
	if q := DefaultQuality(req, awful); q < 0 || q > 1 {
		t.Fatalf("score out of range: %.2f", q)
	}
}
