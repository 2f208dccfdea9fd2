package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"creator-growth/internal/domain"
	"creator-growth/internal/llm"
	"creator-growth/internal/refdata"
)

const (
	TopicPosition     = "position"
	TopicMonetization = "monetization"
	TopicCompetitors  = "competitors"
	TopicTrends       = "trends"
)

// researchTopics define el orden en que se mezclan las respuestas.
var researchTopics = []string{TopicTrends, TopicPosition, TopicCompetitors, TopicMonetization}

const researchSystemPrompt = "You are a creator-economy market analyst. Answer with a single JSON object and no commentary."

const (
	maxTrends        = 6
	maxCompetitors   = 5
	maxOpportunities = 6
	maxInsights      = 6
	maxNoteLength    = 2000
)

// ResearchService compila MarketResearchData a partir de cuatro consultas en paralelo.
type ResearchService struct {
	providers []llm.Provider
	timeout   time.Duration
	logger    *zap.Logger
}

func NewResearchService(providers []llm.Provider, timeout time.Duration, logger *zap.Logger) *ResearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResearchService{providers: providers, timeout: timeout, logger: logger}
}

// Compile nunca devuelve un resultado vacío: ante cualquier fallo de las cuatro
// consultas devuelve el research canned completo.
func (s *ResearchService) Compile(ctx context.Context, niche, platform string, followers int64) domain.MarketResearchData {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	replies := make([]ProviderReply, len(researchTopics))
	g, gctx := errgroup.WithContext(ctx)
	for i, topic := range researchTopics {
		g.Go(func() error {
			reply, err := s.query(gctx, topic, niche, platform, followers)
			if err != nil {
				return fmt.Errorf("%s research: %w", topic, err)
			}
			replies[i] = reply
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("market research fell back to defaults", zap.Error(err), zap.String("niche", niche))
		return refdata.FallbackResearch()
	}

	byTopic := make(map[string]ProviderReply, len(replies))
	for i, topic := range researchTopics {
		byTopic[topic] = replies[i]
	}
	return NormalizeResearch(byTopic, niche, followers)
}

func (s *ResearchService) query(ctx context.Context, topic, niche, platform string, followers int64) (ProviderReply, error) {
	provider, err := llm.SelectProvider(s.providers)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	raw, err := provider.Client.Generate(ctx, researchSystemPrompt, researchPrompt(topic, niche, platform, followers))
	if err != nil {
		s.logger.Warn("research call failed",
			zap.String("topic", topic),
			zap.String("provider", provider.Name),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %s: %v", ErrProviderCallFailed, provider.Name, err)
	}
	reply := ParseProviderReply(raw)
	if _, ok := reply.(UnstructuredReply); ok {
		s.logger.Debug("research reply kept as text", zap.String("topic", topic), zap.Error(ErrUnparsableProviderResponse))
	}
	s.logger.Info("research call done",
		zap.String("topic", topic),
		zap.String("provider", provider.Name),
		zap.Duration("latency", time.Since(start)),
	)
	return reply, nil
}

func researchPrompt(topic, niche, platform string, followers int64) string {
	switch topic {
	case TopicPosition:
		return fmt.Sprintf(`Analyse the market position of a %s creator on %s with %d followers.
Return JSON: {"marketPosition": string, "industryInsights": [string]}`, niche, platform, followers)
	case TopicMonetization:
		return fmt.Sprintf(`List realistic monetization opportunities for a %s creator on %s with %d followers.
Return JSON: {"monetizationOpportunities": [{"type": string, "estimatedEarnings": string, "requirements": string}]}`, niche, platform, followers)
	case TopicCompetitors:
		return fmt.Sprintf(`Describe the top competitors for a %s creator on %s.
Return JSON: {"topCompetitors": [{"name": string, "followers": number, "avgEngagement": number, "monetizationStrategy": string}]}`, niche, platform)
	default:
		return fmt.Sprintf(`What are the current content trends for %s creators on %s?
Return JSON: {"trends": [string], "industryInsights": [string]}`, niche, platform)
	}
}

// NormalizeResearch mezcla las respuestas por tema en la forma fija de MarketResearchData.
// Lo que falte se completa con los datos de referencia.
func NormalizeResearch(replies map[string]ProviderReply, niche string, followers int64) domain.MarketResearchData {
	var (
		trends        []string
		insights      []string
		competitors   []domain.Competitor
		opportunities []domain.MonetizationOpportunity
		notes         map[string]string
	)

	for _, topic := range researchTopics {
		switch r := replies[topic].(type) {
		case StructuredReply:
			trends = append(trends, r.stringList("trends", "platformTrends", "contentTrends")...)
			insights = append(insights, r.stringList("marketPosition", "positioning")...)
			insights = append(insights, r.stringList("industryInsights", "insights")...)
			competitors = append(competitors, r.competitors()...)
			opportunities = append(opportunities, r.opportunities()...)
		case UnstructuredReply:
			if r.Text == "" {
				continue
			}
			if notes == nil {
				notes = make(map[string]string)
			}
			notes[topic] = truncateText(r.Text, maxNoteLength)
		}
	}

	out := domain.MarketResearchData{
		Trends:                    limit(dedupeStrings(trends), maxTrends),
		IndustryInsights:          limit(dedupeStrings(insights), maxInsights),
		CompetitorAnalysis:        domain.CompetitorAnalysis{TopCompetitors: dedupeCompetitors(competitors)},
		MonetizationOpportunities: dedupeOpportunities(opportunities),
		Notes:                     notes,
	}
	if len(out.Trends) == 0 {
		out.Trends = refdata.TrendsForNiche(niche)
	}
	if len(out.IndustryInsights) == 0 {
		out.IndustryInsights = refdata.DefaultInsights()
	}
	if len(out.CompetitorAnalysis.TopCompetitors) == 0 {
		out.CompetitorAnalysis.TopCompetitors = refdata.DefaultCompetitors()
	}
	if len(out.MonetizationOpportunities) == 0 {
		out.MonetizationOpportunities = refdata.MonetizationFor(followers)
	}
	return out
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

// dedupeCompetitors deja el competidor más grande primero.
func dedupeCompetitors(in []domain.Competitor) []domain.Competitor {
	seen := make(map[string]struct{}, len(in))
	out := make([]domain.Competitor, 0, len(in))
	for _, c := range in {
		key := strings.ToLower(c.Name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Followers > out[j].Followers })
	if len(out) > maxCompetitors {
		out = out[:maxCompetitors]
	}
	return out
}

func dedupeOpportunities(in []domain.MonetizationOpportunity) []domain.MonetizationOpportunity {
	seen := make(map[string]struct{}, len(in))
	out := make([]domain.MonetizationOpportunity, 0, len(in))
	for _, o := range in {
		key := strings.ToLower(o.Type)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, o)
	}
	if len(out) > maxOpportunities {
		out = out[:maxOpportunities]
	}
	return out
}

func limit(in []string, n int) []string {
	if len(in) > n {
		return in[:n]
	}
	return in
}

// truncateText corta a n bytes sin partir una runa.
func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
