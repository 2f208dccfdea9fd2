package service

import (
	"testing"

	"creator-growth/internal/domain"
)

func TestScoreProduct(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		downloads  int64
		engagement float64
		want       int
	}{
		{name: "base high demand medium competition", id: "creator-media-kit", want: 70},
		{name: "over 100 downloads", id: "creator-media-kit", downloads: 101, want: 75},
		{name: "exactly 100 downloads", id: "creator-media-kit", downloads: 100, want: 70},
		{name: "over 500 downloads and engaged", id: "creator-media-kit", downloads: 501, engagement: 0.71, want: 85},
		{name: "low competition best case", id: "brand-pitch-pack", downloads: 1000, engagement: 0.9, want: 95},
		{name: "medium demand high competition", id: "preset-bundle", want: 45},
		{name: "case insensitive id", id: "Content-Calendar", engagement: 0.7, want: 45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreProduct(tt.id, tt.downloads, tt.engagement)
			if got.CommercialScore != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got.CommercialScore)
			}
			if got.Name == "" {
				t.Fatalf("expected catalog fields to be copied, got %+v", got)
			}
		})
	}
}

func TestScoreProductUnknown(t *testing.T) {
	got := ScoreProduct("mystery-box", 10000, 1)
	if got.CommercialScore != 0 || got.MarketDemand != domain.DemandLow {
		t.Fatalf("expected zero-score stub, got %+v", got)
	}
}

func TestScoreCatalogSorted(t *testing.T) {
	got := ScoreCatalog(map[string]int64{"preset-bundle": 600}, 0.2)
	if len(got) != 7 {
		t.Fatalf("expected 7 products, got %d", len(got))
	}
	if got[0].ProductID != "brand-pitch-pack" || got[1].ProductID != "fame-report-premium" {
		t.Fatalf("unexpected leaders %s, %s", got[0].ProductID, got[1].ProductID)
	}
	for i := 1; i < len(got); i++ {
		if got[i].CommercialScore > got[i-1].CommercialScore {
			t.Fatalf("catalog not sorted at %d", i)
		}
	}
	for _, p := range got {
		if p.ProductID == "preset-bundle" && p.CommercialScore != 55 {
			t.Fatalf("expected download bonus for preset-bundle, got %d", p.CommercialScore)
		}
	}
}
