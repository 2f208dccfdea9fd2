package main

import (
	"context"
	"strings"
	"testing"

	"creator-growth/internal/domain"
	"creator-growth/internal/llm"
	"creator-growth/internal/refdata"
)

func TestIsFallbackResearch(t *testing.T) {
	if !isFallbackResearch(refdata.FallbackResearch()) {
		t.Fatalf("expected canned research to be detected")
	}
	live := refdata.FallbackResearch()
	live.Trends = []string{"Skin cycling"}
	if isFallbackResearch(live) {
		t.Fatalf("custom trends are not a fallback")
	}
}

func TestKeywordCoverage(t *testing.T) {
	m := domain.MarketResearchData{
		Trends: []string{"Skin cycling routines"},
		Notes:  map[string]string{"position": "Brands pay well here"},
	}
	if got := keywordCoverage(m, []string{"skin", "routine", "brand", "podcast"}); got != 0.75 {
		t.Fatalf("expected 0.75 coverage, got %v", got)
	}
	if got := keywordCoverage(m, nil); got != 1 {
		t.Fatalf("no keywords means full coverage, got %v", got)
	}
}

func TestEvaluateResearchPenalisesFallback(t *testing.T) {
	var prompt string
	judge := &llm.MockClient{Responder: func(_, user string) (string, error) {
		prompt = user
		return "Here you go:\n{\"reasoning\": \"ok\", \"relevance_score\": 5, \"specificity_score\": 9, \"actionability_score\": 0}", nil
	}}

	jr, err := evaluateResearch(context.Background(), judge, scenarios[0], refdata.FallbackResearch())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if jr.SpecificityScore != 1 {
		t.Fatalf("fallback research caps specificity at 1, got %d", jr.SpecificityScore)
	}
	if jr.ActionabilityScore != 1 {
		t.Fatalf("scores are clamped to 1..5, got %d", jr.ActionabilityScore)
	}
	if !strings.Contains(prompt, "canned_fallback=true") {
		t.Fatalf("expected heuristic line in prompt, got %q", prompt)
	}
}

func TestEvaluateResearchRejectsNonJSON(t *testing.T) {
	judge := &llm.MockClient{Response: "I liked it"}
	if _, err := evaluateResearch(context.Background(), judge, scenarios[1], refdata.FallbackResearch()); err == nil {
		t.Fatalf("expected error for non-json judge output")
	}
}
