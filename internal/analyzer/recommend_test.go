package analyzer

import (
	"testing"

	"github.com/ludo-technologies/greenscan/domain"
)

func TestRecommendKnownRules(t *testing.T) {
	ruleIDs := []string{}
	for _, rule := range PatternRules() {
		ruleIDs = append(ruleIDs, rule.ID)
	}
	for _, rule := range SecurityRules() {
		ruleIDs = append(ruleIDs, rule.ID)
	}

	for _, ruleID := range ruleIDs {
		t.Run(ruleID, func(t *testing.T) {
			rec := Recommend(domain.Issue{RuleID: ruleID})
			if rec.RuleID != ruleID {
				t.Errorf("RuleID = %s, expected %s", rec.RuleID, ruleID)
			}
			if rec.Summary == "" || rec.Summary == "Review this finding" {
				t.Errorf("Expected specific advice for %s, got %q", ruleID, rec.Summary)
			}
			if rec.Suggestion == "" {
				t.Errorf("Expected non-empty suggestion for %s", ruleID)
			}
		})
	}
}

func TestRecommendUnknownRuleFallsBack(t *testing.T) {
	rec := Recommend(domain.Issue{RuleID: "future-rule"})

	if rec.RuleID != "future-rule" {
		t.Errorf("RuleID = %s, expected future-rule", rec.RuleID)
	}
	if rec.Summary == "" || rec.Suggestion == "" {
		t.Error("Expected generic fallback advice")
	}
}

func TestRecommendAllDeduplicates(t *testing.T) {
	issues := []domain.Issue{
		{RuleID: "range-len", Line: 3},
		{RuleID: "bare-except", Line: 7},
		{RuleID: "range-len", Line: 12},
	}

	recs := RecommendAll(issues)

	if len(recs) != 2 {
		t.Fatalf("Expected 2 deduplicated recommendations, got %d", len(recs))
	}
	if recs[0].RuleID != "range-len" || recs[1].RuleID != "bare-except" {
		t.Errorf("Expected first-seen order [range-len bare-except], got [%s %s]", recs[0].RuleID, recs[1].RuleID)
	}
}

func TestRecommendAllEmptyInput(t *testing.T) {
	if recs := RecommendAll(nil); len(recs) != 0 {
		t.Errorf("Expected no recommendations, got %+v", recs)
	}
}
