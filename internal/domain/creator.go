package domain

// CreatorProfile son las métricas que el formulario del quiz envía para un creador.
type CreatorProfile struct {
	Name           string  `json:"name"`
	Niche          string  `json:"niche"`
	Platform       string  `json:"platform"`
	Followers      int64   `json:"followers"`
	EngagementRate float64 `json:"engagementRate"` // fracción, 0.08 = 8%
	MonthlyViews   int64   `json:"monthlyViews"`
	Content        string  `json:"content,omitempty"`
	Goals          string  `json:"goals,omitempty"`
	Challenges     string  `json:"challenges,omitempty"`
}

const (
	MonetizeImmediate = "immediate"
	MonetizeShortTerm = "short-term"
	MonetizeLongTerm  = "long-term"
)

// AdaptationFactors son los cuatro escalares que eligen textos de recomendaciones y plan.
type AdaptationFactors struct {
	RiskTolerance       float64 `json:"riskTolerance"`       // 1-10
	TimeToMonetize      string  `json:"timeToMonetize"`      // immediate | short-term | long-term
	ContentQuality      float64 `json:"contentQuality"`      // 1-10
	CommunityEngagement float64 `json:"communityEngagement"` // 1-10
}

// PersonalizationProfile agrupa lo que el compilador de recomendaciones necesita del creador.
type PersonalizationProfile struct {
	Creator     CreatorProfile    `json:"creator"`
	Factors     AdaptationFactors `json:"factors"`
	Fingerprint string            `json:"-"`
}
