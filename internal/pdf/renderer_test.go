package pdf

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"

	"creator-growth/internal/domain"
)

func sampleResult() domain.AnalysisResult {
	return domain.AnalysisResult{
		AgentID: "agent_0123456789ab_1700000000000",
		UserID:  "u1",
		Profile: domain.CreatorProfile{
			Name: "Zoë Díaz", Niche: "Beauty & Skincare", Platform: "Instagram",
			Followers: 50000, EngagementRate: 0.08, MonthlyViews: 500000,
		},
		Analysis: domain.Analysis{
			FameScore:       38,
			Tier:            "EMERGING",
			MarketPosition:  "EMERGING: you are building the foundation of your beauty presence on Instagram.",
			Recommendations: []string{"Lean into short-form video.", "Build a membership tier."},
			Factors:         domain.AdaptationFactors{RiskTolerance: 6.35, ContentQuality: 8, CommunityEngagement: 6.9, TimeToMonetize: domain.MonetizeShortTerm},
			EngagementBenchmark: domain.EngagementBenchmark{
				Platform: "Instagram", AverageRate: 0.018, CreatorRate: 0.08, AboveBenchmark: true,
			},
			Narrative: strings.Repeat("Your audience trusts your recommendations. ", 60),
		},
		MarketResearch: domain.MarketResearchData{
			Trends:           []string{"Skin-first routines", "Dupes"},
			IndustryInsights: []string{"Brands favour micro creators"},
			CompetitorAnalysis: domain.CompetitorAnalysis{TopCompetitors: []domain.Competitor{
				{Name: "Category Leader", Followers: 250000, AvgEngagement: 0.045, MonetizationStrategy: "Brand partnerships"},
			}},
			MonetizationOpportunities: []domain.MonetizationOpportunity{
				{Type: "Affiliate marketing", EstimatedEarnings: "$100-$500/month", Requirements: "Any audience size"},
			},
		},
		GrowthPlan: domain.GrowthPlan{
			NextMonth:   []string{"a", "b", "c", "d"},
			NextQuarter: []string{"a", "b", "c", "d"},
			NextYear:    []string{"a", "b", "c", "d"},
		},
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRenderProducesEightPages(t *testing.T) {
	r := NewRenderer("")
	doc, err := r.build(sampleResult())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if doc.PageCount() != PageCount {
		t.Fatalf("expected %d pages, got %d", PageCount, doc.PageCount())
	}

	out, err := r.Render(sampleResult())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("expected pdf header, got %q", out[:8])
	}
}

func TestRenderEmptyResultStillEightPages(t *testing.T) {
	doc, err := NewRenderer("Brand").build(domain.AnalysisResult{})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if doc.PageCount() != PageCount {
		t.Fatalf("expected %d pages, got %d", PageCount, doc.PageCount())
	}
}

func TestClip(t *testing.T) {
	if got := clip("héllo world", 5); got != "héllo..." {
		t.Fatalf("unexpected clip %q", got)
	}
	if got := clip("short", 10); got != "short" {
		t.Fatalf("unexpected clip %q", got)
	}
}

func TestLongListsStopAboveFooter(t *testing.T) {
	long := strings.Repeat("Pitch a three-post package to a skincare brand with a clear rate card. ", 5)
	items := make([]string, maxListItems)
	for i := range items {
		items[i] = long
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	p := page{doc: doc, tr: doc.UnicodeTranslatorFromDescriptor("")}
	p.title("Recommendations")
	p.bullets(items)
	if y := doc.GetY(); y > contentBottom+3 {
		t.Fatalf("bullets drawn into the footer, y=%.1f", y)
	}

	p.title("Narrative")
	p.paragraph(strings.Repeat("Your audience trusts your recommendations. ", 200))
	if y := doc.GetY(); y > contentBottom+3 {
		t.Fatalf("paragraph drawn into the footer, y=%.1f", y)
	}
	if doc.PageCount() != 2 {
		t.Fatalf("expected no extra pages, got %d", doc.PageCount())
	}
}
