package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"creator-growth/internal/domain"
	"creator-growth/internal/refdata"
)

const (
	TierEmerging    = "EMERGING"
	TierGrowing     = "GROWING"
	TierEstablished = "ESTABLISHED"
	TierTop         = "TOP TIER"
)

const (
	fingerprintLength  = 16
	fingerprintEntropy = 16
	agentHashLength    = 12
	agentEntropy       = 8
)

// Personalizer genera agent ids y fingerprints. La entropía y el reloj se inyectan
// para poder testear; en producción son crypto/rand y time.Now.
type Personalizer struct {
	entropy io.Reader
	now     func() time.Time
}

func NewPersonalizer(entropy io.Reader, now func() time.Time) *Personalizer {
	if entropy == nil {
		entropy = rand.Reader
	}
	if now == nil {
		now = time.Now
	}
	return &Personalizer{entropy: entropy, now: now}
}

func (p *Personalizer) randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(p.entropy, buf); err != nil {
		return "", fmt.Errorf("read entropy: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// AgentID devuelve agent_<hash>_<unix millis>. Es solo una etiqueta de trazabilidad.
func (p *Personalizer) AgentID(userID string) (string, error) {
	random, err := p.randomHex(agentEntropy)
	if err != nil {
		return "", err
	}
	now := p.now()
	sum := sha256.Sum256([]byte(userID + strconv.FormatInt(now.UnixNano(), 10) + random))
	return fmt.Sprintf("agent_%s_%d", hex.EncodeToString(sum[:])[:agentHashLength], now.UnixMilli()), nil
}

// Fingerprint mezcla la request con tiempo y entropía fresca: dos llamadas iguales
// nunca devuelven el mismo valor.
func (p *Personalizer) Fingerprint(userID string, profile domain.CreatorProfile, agentID string) (string, error) {
	random, err := p.randomHex(fingerprintEntropy)
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(struct {
		UserID    string                `json:"userId"`
		Profile   domain.CreatorProfile `json:"profile"`
		AgentID   string                `json:"agentId"`
		Timestamp int64                 `json:"timestamp"`
		Entropy   string                `json:"entropy"`
	}{userID, profile, agentID, p.now().UnixNano(), random})
	if err != nil {
		return "", fmt.Errorf("marshal fingerprint payload: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])[:fingerprintLength], nil
}

// Personalize arma el PersonalizationProfile completo y devuelve también el agent id.
func (p *Personalizer) Personalize(userID string, profile domain.CreatorProfile) (domain.PersonalizationProfile, string, error) {
	agentID, err := p.AgentID(userID)
	if err != nil {
		return domain.PersonalizationProfile{}, "", err
	}
	fp, err := p.Fingerprint(userID, profile, agentID)
	if err != nil {
		return domain.PersonalizationProfile{}, "", err
	}
	return domain.PersonalizationProfile{
		Creator:     profile,
		Factors:     Factors(profile),
		Fingerprint: fp,
	}, agentID, nil
}

// Factors calcula los cuatro factores de adaptación a partir del perfil.
func Factors(profile domain.CreatorProfile) domain.AdaptationFactors {
	rate := profile.EngagementRate
	followers := float64(profile.Followers)

	ttm := domain.MonetizeLongTerm
	switch {
	case profile.Followers >= 100000:
		ttm = domain.MonetizeImmediate
	case profile.Followers >= 50000:
		ttm = domain.MonetizeShortTerm
	}

	return domain.AdaptationFactors{
		RiskTolerance:       clamp(5+rate*20-followers/200000, 1, 10),
		TimeToMonetize:      ttm,
		ContentQuality:      clamp(rate*100, 1, 10),
		CommunityEngagement: clamp(rate*80+followers/100000, 1, 10),
	}
}

// clamp trata NaN como el límite inferior.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func followerPoints(followers int64) float64 {
	return math.Min(30, float64(followers)/100000*30)
}

// engagementPoints usa la tasa como fracción (0.08), por eso rara vez pasa de 7 puntos.
func engagementPoints(rate float64) float64 {
	return math.Min(35, rate*7)
}

func reachPoints(monthlyViews int64) float64 {
	return math.Min(20, float64(monthlyViews)/1000000*20)
}

// FameScoreBase es la parte determinista del score, antes del offset del fingerprint.
func FameScoreBase(profile domain.CreatorProfile, market domain.MarketResearchData) float64 {
	base := followerPoints(profile.Followers) + engagementPoints(profile.EngagementRate) + reachPoints(profile.MonthlyViews)
	if len(market.IndustryInsights) > 0 {
		base += 10
	}
	return base
}

// fingerprintOffset devuelve 1..5 a partir de los dos primeros dígitos hex.
func fingerprintOffset(fingerprint string) int {
	if len(fingerprint) < 2 {
		return 1
	}
	v, err := strconv.ParseUint(fingerprint[:2], 16, 8)
	if err != nil {
		return 1
	}
	return 1 + int(v%5)
}

// FameScore siempre cae en [0,100].
func FameScore(profile domain.CreatorProfile, market domain.MarketResearchData, fingerprint string) int {
	base := FameScoreBase(profile, market)
	if math.IsNaN(base) {
		base = 0
	}
	score := int(math.Floor(base)) + fingerprintOffset(fingerprint)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// TierFor clasifica el score en los cuatro tiers.
func TierFor(score int) string {
	switch {
	case score >= 80:
		return TierTop
	case score >= 60:
		return TierEstablished
	case score >= 40:
		return TierGrowing
	default:
		return TierEmerging
	}
}

// MarketPosition concatena la frase del tier con la comparación contra el competidor principal.
func MarketPosition(profile domain.CreatorProfile, market domain.MarketResearchData, score int) string {
	niche := orDefault(profile.Niche, "your niche")
	platform := orDefault(profile.Platform, "your platform")

	var tierSentence string
	switch TierFor(score) {
	case TierTop:
		tierSentence = fmt.Sprintf("TOP TIER: you are among the most influential %s creators on %s.", niche, platform)
	case TierEstablished:
		tierSentence = fmt.Sprintf("ESTABLISHED: you hold a recognised position in %s on %s.", niche, platform)
	case TierGrowing:
		tierSentence = fmt.Sprintf("GROWING: you are gaining real traction in %s on %s.", niche, platform)
	default:
		tierSentence = fmt.Sprintf("EMERGING: you are building the foundation of your %s presence on %s.", niche, platform)
	}

	if len(market.CompetitorAnalysis.TopCompetitors) == 0 {
		return tierSentence
	}
	top := market.CompetitorAnalysis.TopCompetitors[0]

	var comparison string
	switch {
	case profile.Followers > top.Followers:
		comparison = fmt.Sprintf("Your audience of %s already exceeds the leading competitor (%s, %s followers).",
			FormatCount(profile.Followers), top.Name, FormatCount(top.Followers))
	case profile.Followers*2 >= top.Followers:
		comparison = fmt.Sprintf("You are within reach of the leading competitor (%s, %s followers); closing the gap is realistic.",
			top.Name, FormatCount(top.Followers))
	default:
		comparison = fmt.Sprintf("The leading competitor (%s, %s followers) is more than twice your size, so differentiation matters more than volume.",
			top.Name, FormatCount(top.Followers))
	}
	return tierSentence + " " + comparison
}

// EngagementBenchmark compara la tasa del creador con el promedio de su plataforma.
func EngagementBenchmark(profile domain.CreatorProfile) domain.EngagementBenchmark {
	b, known := refdata.BenchmarkFor(profile.Platform)
	platform := profile.Platform
	if !known {
		platform = "all platforms"
	}
	return domain.EngagementBenchmark{
		Platform:       platform,
		AverageRate:    b.AvgEngagement,
		CreatorRate:    profile.EngagementRate,
		AboveBenchmark: profile.EngagementRate >= b.AvgEngagement,
	}
}

// FormatCount imprime 1.2M, 850K o el número tal cual.
func FormatCount(n int64) string {
	switch {
	case n >= 1000000:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/1e6)) + "M"
	case n >= 10000:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/1e3)) + "K"
	default:
		return strconv.FormatInt(n, 10)
	}
}

func trimZero(s string) string {
	if len(s) > 2 && s[len(s)-2:] == ".0" {
		return s[:len(s)-2]
	}
	return s
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
