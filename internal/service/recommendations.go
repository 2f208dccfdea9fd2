package service

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"creator-growth/internal/domain"
	"creator-growth/internal/refdata"
)

const defaultRecommendation = "Keep a consistent posting schedule and track which content formats drive the most engagement."

var aiKeyword = regexp.MustCompile(`\bai\b`)

// recommendationInput es lo que ven las reglas; se arma una vez por llamada.
type recommendationInput struct {
	profile    domain.CreatorProfile
	factors    domain.AdaptationFactors
	market     domain.MarketResearchData
	trendText  string
	challenges string
}

func (in recommendationInput) trendHas(keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(in.trendText, kw) {
			return true
		}
	}
	return false
}

func (in recommendationInput) challengeHas(keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(in.challenges, kw) {
			return true
		}
	}
	return false
}

type recommendationRule struct {
	name    string
	applies func(recommendationInput) bool
	build   func(recommendationInput) []string
}

// recommendationRules se evalúa en orden y todas las reglas que matchean suman.
var recommendationRules = []recommendationRule{
	{
		name:    "strong-community",
		applies: func(in recommendationInput) bool { return in.factors.CommunityEngagement >= 7 && in.factors.ContentQuality >= 7 },
		build: func(recommendationInput) []string {
			return []string{"Your community engagement and content quality are both strong: launch a premium offer such as a membership or paid community."}
		},
	},
	{
		name:    "large-audience",
		applies: func(in recommendationInput) bool { return in.profile.Followers >= 100000 },
		build: func(in recommendationInput) []string {
			low, high := sponsoredPostRange(in.profile)
			return []string{
				fmt.Sprintf("With %s followers, brand partnerships could earn an estimated $%s-$%s per sponsored post.",
					FormatCount(in.profile.Followers), formatMoney(low), formatMoney(high)),
				"Negotiate multi-post packages instead of one-off deals to raise your average deal size.",
			}
		},
	},
	{
		name:    "small-audience",
		applies: func(in recommendationInput) bool { return in.profile.Followers < 10000 },
		build: func(recommendationInput) []string {
			return []string{"Post 4-5 times per week and collaborate with creators of similar size to pass 10K followers."}
		},
	},
	{
		name:    "challenge-monetization",
		applies: func(in recommendationInput) bool { return in.challengeHas("monetiz") },
		build: func(recommendationInput) []string {
			return []string{"Set up an affiliate storefront and a simple digital product so income does not depend on audience size alone."}
		},
	},
	{
		name:    "challenge-time",
		applies: func(in recommendationInput) bool { return in.challengeHas("time", "burnout") },
		build: func(recommendationInput) []string {
			return []string{"Batch-produce content and repurpose each long piece into 3-5 short clips to cut production time."}
		},
	},
	{
		name:    "challenge-growth",
		applies: func(in recommendationInput) bool { return in.challengeHas("grow") },
		build: func(recommendationInput) []string {
			return []string{"Review your top 10 posts from the last 90 days and double down on the formats that drove follower growth."}
		},
	},
	{
		name:    "trend-short-form",
		applies: func(in recommendationInput) bool { return in.trendHas("short-form", "video") },
		build: func(in recommendationInput) []string {
			return []string{fmt.Sprintf("Lean into short-form vertical video: it remains the main discovery channel on %s.", orDefault(in.profile.Platform, "every platform"))}
		},
	},
	{
		name:    "trend-ai",
		applies: func(in recommendationInput) bool { return aiKeyword.MatchString(in.trendText) },
		build: func(recommendationInput) []string {
			return []string{"Adopt AI-assisted editing and captioning tools to publish more often without increasing your workload."}
		},
	},
	{
		name:    "trend-authentic",
		applies: func(in recommendationInput) bool { return in.trendHas("authentic", "behind-the-scenes") },
		build: func(recommendationInput) []string {
			return []string{"Share behind-the-scenes and unpolished content; authenticity is outperforming studio production."}
		},
	},
	{
		name:    "trend-community",
		applies: func(in recommendationInput) bool { return in.trendHas("community", "subscription", "membership") },
		build: func(recommendationInput) []string {
			return []string{"Build a subscription or membership tier; community-driven revenue is growing faster than ad revenue."}
		},
	},
	{
		name:    "high-risk-tolerance",
		applies: func(in recommendationInput) bool { return in.factors.RiskTolerance >= 7 },
		build: func(recommendationInput) []string {
			return []string{"Your profile supports experimentation: test one new content format or platform every quarter."}
		},
	},
	{
		name: "below-benchmark",
		applies: func(in recommendationInput) bool {
			return !EngagementBenchmark(in.profile).AboveBenchmark
		},
		build: func(in recommendationInput) []string {
			b := EngagementBenchmark(in.profile)
			return []string{fmt.Sprintf("Your engagement rate (%.1f%%) is below the %s average (%.1f%%): ask more questions and reply to comments in the first hour.",
				b.CreatorRate*100, b.Platform, b.AverageRate*100)}
		},
	},
}

// Recommendations aplica la tabla de reglas. Nunca devuelve una lista vacía.
func Recommendations(market domain.MarketResearchData, personalization domain.PersonalizationProfile) []string {
	in := recommendationInput{
		profile:    personalization.Creator,
		factors:    personalization.Factors,
		market:     market,
		trendText:  strings.ToLower(strings.Join(market.Trends, " | ")),
		challenges: strings.ToLower(personalization.Creator.Challenges),
	}
	var out []string
	for _, rule := range recommendationRules {
		if rule.applies(in) {
			out = append(out, rule.build(in)...)
		}
	}
	if len(out) == 0 {
		return []string{defaultRecommendation}
	}
	return out
}

// sponsoredPostRange estima el rango por post con la tarifa por 1K de la plataforma.
func sponsoredPostRange(profile domain.CreatorProfile) (int64, int64) {
	b, _ := refdata.BenchmarkFor(profile.Platform)
	mid := float64(profile.Followers) / 1000 * b.SponsoredPostRatePer1K
	return int64(math.Round(mid * 0.8)), int64(math.Round(mid * 1.5))
}

func formatMoney(n int64) string {
	s := fmt.Sprintf("%d", n)
	if n < 0 {
		return s
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// GrowthPlan arma los tres horizontes, siempre con cuatro ítems cada uno.
func GrowthPlan(profile domain.CreatorProfile, factors domain.AdaptationFactors, market domain.MarketResearchData) domain.GrowthPlan {
	monthMult := 1.1
	if factors.CommunityEngagement >= 7 {
		monthMult = 1.15
	}
	suggested := refdata.SuggestedPlatform(profile.Platform)

	trend := "a trend your audience already engages with"
	if len(market.Trends) > 0 {
		trend = market.Trends[0]
	}
	strategy := "their main monetization model"
	if len(market.CompetitorAnalysis.TopCompetitors) > 0 && market.CompetitorAnalysis.TopCompetitors[0].MonetizationStrategy != "" {
		strategy = market.CompetitorAnalysis.TopCompetitors[0].MonetizationStrategy
	}

	cadence := "Publish 5 times per week to discover the formats your audience responds to"
	if factors.ContentQuality >= 7 {
		cadence = "Keep publishing 3 high-quality pieces per week and test one new format"
	}

	var monetize string
	switch factors.TimeToMonetize {
	case domain.MonetizeImmediate:
		monetize = "Close at least two paid brand partnerships using an updated media kit"
	case domain.MonetizeShortTerm:
		first := "affiliate marketing"
		if len(market.MonetizationOpportunities) > 0 {
			first = market.MonetizationOpportunities[0].Type
		}
		monetize = fmt.Sprintf("Launch your first monetization stream: %s", first)
	default:
		listGoal := profile.Followers / 20
		if listGoal < 100 {
			listGoal = 100
		}
		monetize = fmt.Sprintf("Build an email list of %d subscribers to prepare future monetization", listGoal)
	}

	experiment := "Turn your two best-performing formats into repeatable series"
	if factors.RiskTolerance >= 7 {
		experiment = fmt.Sprintf("Run a cross-platform experiment on %s", suggested)
	}

	benchmark := EngagementBenchmark(profile)
	targetRate := math.Max(benchmark.CreatorRate, benchmark.AverageRate) * 1.1 * 100

	return domain.GrowthPlan{
		NextMonth: []string{
			fmt.Sprintf("Grow from %s to %s followers", FormatCount(profile.Followers), FormatCount(followerTarget(profile.Followers, monthMult))),
			cadence,
			fmt.Sprintf("Create content around this trend: %s", trend),
			fmt.Sprintf("Reply to comments in the first hour after posting to push engagement past %.1f%%", targetRate),
		},
		NextQuarter: []string{
			fmt.Sprintf("Double your audience to %s followers", FormatCount(followerTarget(profile.Followers, 2))),
			monetize,
			fmt.Sprintf("Adapt the leading competitor's strategy (%s) to your own voice", strategy),
			experiment,
		},
		NextYear: []string{
			fmt.Sprintf("Reach %s followers, three times your current audience", FormatCount(followerTarget(profile.Followers, 3))),
			fmt.Sprintf("Diversify into at least three revenue streams: %s", opportunityList(market.MonetizationOpportunities, 3)),
			fmt.Sprintf("Build a consistent presence on %s to reduce platform dependency", suggested),
			fmt.Sprintf("Become a recognised authority in %s through collaborations and guest appearances", orDefault(profile.Niche, "your niche")),
		},
	}
}

// followerTarget aplica el multiplicador; con audiencias mínimas suma al menos 100.
func followerTarget(followers int64, mult float64) int64 {
	target := int64(math.Round(float64(followers) * mult))
	if target < followers+100 {
		target = followers + 100
	}
	return target
}

func opportunityList(opps []domain.MonetizationOpportunity, n int) string {
	if len(opps) == 0 {
		return "sponsorships, affiliate links and digital products"
	}
	names := make([]string, 0, n)
	for _, o := range opps {
		if len(names) == n {
			break
		}
		names = append(names, strings.ToLower(o.Type))
	}
	return strings.Join(names, ", ")
}
