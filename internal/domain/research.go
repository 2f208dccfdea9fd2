package domain

// MarketResearchData es el paquete normalizado de tendencias, competidores y monetización.
type MarketResearchData struct {
	Trends                    []string                  `json:"trends"`
	CompetitorAnalysis        CompetitorAnalysis        `json:"competitorAnalysis"`
	MonetizationOpportunities []MonetizationOpportunity `json:"monetizationOpportunities"`
	IndustryInsights          []string                  `json:"industryInsights"`
	// Notes guarda el texto crudo de las respuestas que no traían JSON, por tema.
	Notes map[string]string `json:"notes,omitempty"`
}

type CompetitorAnalysis struct {
	TopCompetitors []Competitor `json:"topCompetitors"`
}

type Competitor struct {
	Name                 string  `json:"name" yaml:"name"`
	Followers            int64   `json:"followers" yaml:"followers"`
	AvgEngagement        float64 `json:"avgEngagement" yaml:"avgEngagement"`
	MonetizationStrategy string  `json:"monetizationStrategy" yaml:"monetizationStrategy"`
}

type MonetizationOpportunity struct {
	Type              string `json:"type" yaml:"type"`
	EstimatedEarnings string `json:"estimatedEarnings" yaml:"estimatedEarnings"`
	Requirements      string `json:"requirements" yaml:"requirements"`
}
