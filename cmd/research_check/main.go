package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"creator-growth/internal/config"
	"creator-growth/internal/domain"
	"creator-growth/internal/llm"
	"creator-growth/internal/service"
)

const (
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorReset = "\033[0m"
)

// Scenario es un perfil de prueba con lo que esperamos ver en el research.
type Scenario struct {
	Name             string
	Profile          domain.CreatorProfile
	ExpectedKeywords []string
	Expectation      string
}

var scenarios = []Scenario{
	{
		Name:             "Beauty micro creator",
		Profile:          domain.CreatorProfile{Niche: "Beauty & Skincare", Platform: "Instagram", Followers: 50000, EngagementRate: 0.08, MonthlyViews: 500000},
		ExpectedKeywords: []string{"skin", "routine", "brand"},
		Expectation:      "Skincare trends, beauty competitors and sponsored post pricing for ~50K followers",
	},
	{
		Name:             "Fitness newcomer",
		Profile:          domain.CreatorProfile{Niche: "Fitness", Platform: "TikTok", Followers: 3000, EngagementRate: 0.12, MonthlyViews: 90000},
		ExpectedKeywords: []string{"workout", "affiliate"},
		Expectation:      "Short-form workout trends and entry level monetization (affiliate, UGC)",
	},
	{
		Name:             "Tech reviewer",
		Profile:          domain.CreatorProfile{Niche: "Tech reviews", Platform: "YouTube", Followers: 400000, EngagementRate: 0.035, MonthlyViews: 4000000},
		ExpectedKeywords: []string{"review", "sponsor"},
		Expectation:      "Established channel economics: integrations, ambassadorships, long-form review trends",
	},
}

func main() {
	var minScore float64
	root := &cobra.Command{
		Use:          "research_check",
		Short:        "Score live market research against scenario profiles with an LLM judge",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), minScore)
		},
	}
	root.Flags().Float64Var(&minScore, "min-score", 3, "fail when the average judge score is below this value")
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, minScore float64) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	providers := llm.ProvidersFromConfig(ctx, cfg, logger)
	judge, err := llm.SelectProvider(providers)
	if err != nil {
		return err
	}
	research := service.NewResearchService(providers, cfg.ResearchTimeout, logger)

	var total float64
	for _, sc := range scenarios {
		fmt.Printf("%s[Scenario]%s %s (%s on %s)\n", colorCyan, colorReset, sc.Name, sc.Profile.Niche, sc.Profile.Platform)

		start := time.Now()
		market := research.Compile(ctx, sc.Profile.Niche, sc.Profile.Platform, sc.Profile.Followers)
		fmt.Printf("%s[Research]%s %d trends, %d competitors, %d opportunities in %s\n", colorGreen, colorReset,
			len(market.Trends), len(market.CompetitorAnalysis.TopCompetitors), len(market.MonetizationOpportunities), time.Since(start).Round(time.Millisecond))

		jr, err := evaluateResearch(ctx, judge.Client, sc, market)
		if err != nil {
			return fmt.Errorf("judge %s: %w", sc.Name, err)
		}
		fmt.Printf("%sJudge%s %q\n", colorCyan, colorReset, jr.Reasoning)
		fmt.Printf("Scores: relevance %d/5 | specificity %d/5 | actionability %d/5\n\n",
			jr.RelevanceScore, jr.SpecificityScore, jr.ActionabilityScore)
		total += jr.average()
	}

	avg := total / float64(len(scenarios))
	fmt.Println("==== Average ====")
	fmt.Printf("%.2f/5 (judge: %s)\n", avg, judge.Name)
	if avg < minScore {
		return fmt.Errorf("average score %.2f below %.2f", avg, minScore)
	}
	return nil
}
