package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"creator-growth/internal/domain"
	"creator-growth/internal/llm"
)

const narrativeSystemPrompt = `You are a warm, direct coach for social media creators.
Write two short paragraphs in plain prose (no lists, no markdown headings) that explain the creator's Fame Score,
what it means for them today and the single most important next step. Do not invent numbers.`

const maxNarrativeLength = 1500

// NarrativeWriter pide al proveedor un resumen en prosa del análisis.
// Si no hay proveedor o la llamada falla, devuelve un texto armado localmente.
type NarrativeWriter struct {
	providers []llm.Provider
	timeout   time.Duration
	logger    *zap.Logger
}

func NewNarrativeWriter(providers []llm.Provider, timeout time.Duration, logger *zap.Logger) *NarrativeWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NarrativeWriter{providers: providers, timeout: timeout, logger: logger}
}

func (w *NarrativeWriter) Write(ctx context.Context, profile domain.CreatorProfile, analysis domain.Analysis) string {
	provider, err := llm.SelectProvider(w.providers)
	if err != nil {
		return CannedNarrative(profile, analysis)
	}
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	raw, err := provider.Client.Generate(ctx, narrativeSystemPrompt, narrativePrompt(profile, analysis))
	if err != nil {
		w.logger.Warn("narrative generation failed", zap.String("provider", provider.Name), zap.Error(err))
		return CannedNarrative(profile, analysis)
	}
	text := strings.TrimSpace(cleanLLMJSONResponse(raw))
	if text == "" {
		return CannedNarrative(profile, analysis)
	}
	return truncateText(text, maxNarrativeLength)
}

func narrativePrompt(profile domain.CreatorProfile, analysis domain.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Creator: %s\n", orDefault(profile.Name, "anonymous"))
	fmt.Fprintf(&b, "Niche: %s | Platform: %s\n", orDefault(profile.Niche, "general"), orDefault(profile.Platform, "unknown"))
	fmt.Fprintf(&b, "Followers: %d | Engagement: %.2f%% | Monthly views: %d\n",
		profile.Followers, profile.EngagementRate*100, profile.MonthlyViews)
	fmt.Fprintf(&b, "Fame Score: %d (%s)\n", analysis.FameScore, analysis.Tier)
	fmt.Fprintf(&b, "Position: %s\n", analysis.MarketPosition)
	if len(analysis.Recommendations) > 0 {
		fmt.Fprintf(&b, "Top recommendation: %s\n", analysis.Recommendations[0])
	}
	if profile.Goals != "" {
		fmt.Fprintf(&b, "Goals: %s\n", profile.Goals)
	}
	return b.String()
}

// CannedNarrative arma el resumen sin proveedor.
func CannedNarrative(profile domain.CreatorProfile, analysis domain.Analysis) string {
	name := orDefault(strings.TrimSpace(profile.Name), "You")
	var b strings.Builder
	if name == "You" {
		fmt.Fprintf(&b, "You scored %d, which places you in the %s tier. ", analysis.FameScore, analysis.Tier)
	} else {
		fmt.Fprintf(&b, "%s, you scored %d, which places you in the %s tier. ", name, analysis.FameScore, analysis.Tier)
	}
	b.WriteString(analysis.MarketPosition)
	if len(analysis.Recommendations) > 0 {
		b.WriteString("\n\nYour most important next step: ")
		b.WriteString(analysis.Recommendations[0])
	}
	return b.String()
}

// SummaryMarkdown es el resumen corto que va en el email.
func SummaryMarkdown(result domain.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Fame Score:** %d (%s)\n\n", result.Analysis.FameScore, result.Analysis.Tier)
	if result.Analysis.MarketPosition != "" {
		b.WriteString(result.Analysis.MarketPosition)
		b.WriteString("\n\n")
	}
	recs := result.Analysis.Recommendations
	if len(recs) > 3 {
		recs = recs[:3]
	}
	for _, r := range recs {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	return strings.TrimSpace(b.String())
}
