package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"creator-growth/internal/domain"
	"creator-growth/internal/llm"
	"creator-growth/internal/refdata"
)

// judgeResponse es la evaluación estructurada que devuelve el juez.
type judgeResponse struct {
	Reasoning          string `json:"reasoning"`
	RelevanceScore     int    `json:"relevance_score"`
	SpecificityScore   int    `json:"specificity_score"`
	ActionabilityScore int    `json:"actionability_score"`
}

func (j judgeResponse) average() float64 {
	return float64(j.RelevanceScore+j.SpecificityScore+j.ActionabilityScore) / 3
}

func evaluateResearch(ctx context.Context, judge llm.Client, sc Scenario, market domain.MarketResearchData) (judgeResponse, error) {
	fallback := isFallbackResearch(market)
	coverage := keywordCoverage(market, sc.ExpectedKeywords)

	heuristicLine := fmt.Sprintf("Heuristic signals: canned_fallback=%t, keyword_coverage=%.2f, unstructured_topics=%d",
		fallback, coverage, len(market.Notes))

	raw, err := judge.Generate(ctx, judgeSystemPrompt, buildJudgePrompt(sc, market, heuristicLine))
	if err != nil {
		return judgeResponse{}, err
	}

	jsonStr := extractFirstJSONObject(raw)
	if jsonStr == "" {
		return judgeResponse{}, fmt.Errorf("judge returned no json: %q", raw)
	}
	var jr judgeResponse
	if err := json.Unmarshal([]byte(jsonStr), &jr); err != nil {
		return judgeResponse{}, fmt.Errorf("parse judge json: %w (raw=%q)", err, jsonStr)
	}

	jr.RelevanceScore = clamp1to5(jr.RelevanceScore)
	jr.SpecificityScore = clamp1to5(jr.SpecificityScore)
	jr.ActionabilityScore = clamp1to5(jr.ActionabilityScore)

	// El research canned no es específico del nicho.
	if fallback && jr.SpecificityScore > 1 {
		jr.SpecificityScore = 1
	}
	if len(sc.ExpectedKeywords) > 0 && coverage == 0 && jr.RelevanceScore > 2 {
		jr.RelevanceScore = 2
	}
	return jr, nil
}

func clamp1to5(v int) int {
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}

// isFallbackResearch detecta si el compilador devolvió el objeto canned completo.
func isFallbackResearch(m domain.MarketResearchData) bool {
	defaults := refdata.DefaultTrends()
	if len(m.Trends) != len(defaults) {
		return false
	}
	for i := range defaults {
		if m.Trends[i] != defaults[i] {
			return false
		}
	}
	competitors := refdata.DefaultCompetitors()
	if len(m.CompetitorAnalysis.TopCompetitors) != len(competitors) {
		return false
	}
	for i := range competitors {
		if m.CompetitorAnalysis.TopCompetitors[i].Name != competitors[i].Name {
			return false
		}
	}
	return true
}

// keywordCoverage es la fracción de keywords esperadas que aparecen en el texto del research.
func keywordCoverage(m domain.MarketResearchData, keywords []string) float64 {
	if len(keywords) == 0 {
		return 1
	}
	var b strings.Builder
	for _, t := range m.Trends {
		b.WriteString(t + " ")
	}
	for _, in := range m.IndustryInsights {
		b.WriteString(in + " ")
	}
	for _, o := range m.MonetizationOpportunities {
		b.WriteString(o.Type + " " + o.Requirements + " ")
	}
	for _, n := range m.Notes {
		b.WriteString(n + " ")
	}
	text := strings.ToLower(b.String())

	hits := 0
	for _, k := range keywords {
		if strings.Contains(text, strings.ToLower(k)) {
			hits++
		}
	}
	return float64(hits) / float64(len(keywords))
}

const judgeSystemPrompt = "You are a strict reviewer of creator-economy market research. Reply with JSON only."

func buildJudgePrompt(sc Scenario, market domain.MarketResearchData, heuristicLine string) string {
	encoded, _ := json.MarshalIndent(market, "", "  ")
	return fmt.Sprintf(`Creator: %s creator on %s with %d followers (engagement %.1f%%).
Scenario expectation: %s
%s

Research to review:
%s

Score each dimension from 1 to 5:
1) relevance: does the research talk about this niche and platform?
2) specificity: are trends, competitors and earnings concrete rather than generic?
3) actionability: could the creator act on it next month?

Rules:
- If canned_fallback=true, specificity is at most 1.
- Penalise invented statistics presented as facts.

Reply ONLY with JSON:
{
  "reasoning": "...",
  "relevance_score": 0,
  "specificity_score": 0,
  "actionability_score": 0
}`,
		sc.Profile.Niche, sc.Profile.Platform, sc.Profile.Followers, sc.Profile.EngagementRate*100,
		sc.Expectation, heuristicLine, string(encoded),
	)
}

// extractFirstJSONObject devuelve el primer objeto {...} balanceado.
func extractFirstJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
