package domain

import "time"

// AnalysisResult es el agregado que devuelve /analyze y que consume el renderer PDF.
// Se arma una sola vez y no se muta después.
type AnalysisResult struct {
	AgentID        string             `json:"agentId"`
	UserID         string             `json:"userId"`
	Profile        CreatorProfile     `json:"profile"`
	Analysis       Analysis           `json:"analysis"`
	MarketResearch MarketResearchData `json:"marketResearch"`
	GrowthPlan     GrowthPlan         `json:"growthPlan"`
	ReportID       string             `json:"reportId,omitempty"`
	PDFURL         string             `json:"pdfUrl,omitempty"`
	GeneratedAt    time.Time          `json:"generatedAt"`
}

type Analysis struct {
	FameScore           int                 `json:"fameScore"`
	Tier                string              `json:"tier"`
	MarketPosition      string              `json:"marketPosition"`
	Recommendations     []string            `json:"recommendations"`
	Factors             AdaptationFactors   `json:"adaptationFactors"`
	EngagementBenchmark EngagementBenchmark `json:"engagementBenchmark"`
	Narrative           string              `json:"narrative"`
}

// EngagementBenchmark compara el engagement del creador con el promedio de su plataforma.
type EngagementBenchmark struct {
	Platform       string  `json:"platform"`
	AverageRate    float64 `json:"averageRate"`
	CreatorRate    float64 `json:"creatorRate"`
	AboveBenchmark bool    `json:"aboveBenchmark"`
}

type GrowthPlan struct {
	NextMonth   []string `json:"nextMonth"`
	NextQuarter []string `json:"nextQuarter"`
	NextYear    []string `json:"nextYear"`
}
