package refdata

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"creator-growth/internal/domain"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Catalog es la única copia de las tablas estáticas. Se carga una vez y es de solo lectura.
type Catalog struct {
	DefaultTrends      []string                     `yaml:"defaultTrends"`
	DefaultInsights    []string                     `yaml:"defaultInsights"`
	DefaultCompetitors []domain.Competitor          `yaml:"defaultCompetitors"`
	NicheTrends        []NicheTrends                `yaml:"nicheTrends"`
	Benchmarks         map[string]PlatformBenchmark `yaml:"benchmarks"`
	DefaultBenchmark   PlatformBenchmark            `yaml:"defaultBenchmark"`
	MonetizationTiers  []MonetizationTier           `yaml:"monetizationTiers"`
	CrossPlatform      map[string]string            `yaml:"crossPlatform"`
	Products           []Product                    `yaml:"products"`
}

type NicheTrends struct {
	Keyword string   `yaml:"keyword"`
	Trends  []string `yaml:"trends"`
}

type PlatformBenchmark struct {
	AvgEngagement              float64 `yaml:"avgEngagement"`
	AvgMonthlyViewsPerFollower float64 `yaml:"avgMonthlyViewsPerFollower"`
	SponsoredPostRatePer1K     float64 `yaml:"sponsoredPostRatePer1K"`
}

type MonetizationTier struct {
	MinFollowers  int64                            `yaml:"minFollowers"`
	Opportunities []domain.MonetizationOpportunity `yaml:"opportunities"`
}

type Product struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Category     string `yaml:"category"`
	MarketDemand string `yaml:"marketDemand"`
	Competition  string `yaml:"competition"`
	PriceRange   string `yaml:"priceRange"`
}

var catalog = mustParse(catalogYAML)

func mustParse(raw []byte) *Catalog {
	c, err := Parse(raw)
	if err != nil {
		panic(fmt.Sprintf("refdata: %v", err))
	}
	return c
}

// Parse decodifica y valida un catálogo. Exportado para tests y para el CLI.
func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	sort.SliceStable(c.MonetizationTiers, func(i, j int) bool {
		return c.MonetizationTiers[i].MinFollowers < c.MonetizationTiers[j].MinFollowers
	})
	return &c, nil
}

func (c *Catalog) validate() error {
	switch {
	case len(c.DefaultTrends) == 0:
		return errors.New("catalog: defaultTrends is empty")
	case len(c.DefaultInsights) == 0:
		return errors.New("catalog: defaultInsights is empty")
	case len(c.DefaultCompetitors) == 0:
		return errors.New("catalog: defaultCompetitors is empty")
	case len(c.MonetizationTiers) == 0:
		return errors.New("catalog: monetizationTiers is empty")
	}
	for _, tier := range c.MonetizationTiers {
		if len(tier.Opportunities) == 0 {
			return fmt.Errorf("catalog: tier %d has no opportunities", tier.MinFollowers)
		}
	}
	seen := make(map[string]struct{}, len(c.Products))
	for _, p := range c.Products {
		if strings.TrimSpace(p.ID) == "" {
			return errors.New("catalog: product without id")
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("catalog: duplicated product %q", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DefaultTrends devuelve las cuatro tendencias genéricas.
func DefaultTrends() []string {
	return append([]string(nil), catalog.DefaultTrends...)
}

func DefaultInsights() []string {
	return append([]string(nil), catalog.DefaultInsights...)
}

func DefaultCompetitors() []domain.Competitor {
	return append([]domain.Competitor(nil), catalog.DefaultCompetitors...)
}

// TrendsForNiche busca la primera entrada cuyo keyword aparece en el nicho.
// Si no hay match devuelve las tendencias genéricas.
func TrendsForNiche(niche string) []string {
	n := normalizeKey(niche)
	if n != "" {
		for _, nt := range catalog.NicheTrends {
			if strings.Contains(n, nt.Keyword) {
				return append([]string(nil), nt.Trends...)
			}
		}
	}
	return DefaultTrends()
}

// BenchmarkFor devuelve el benchmark de la plataforma y si era conocida.
func BenchmarkFor(platform string) (PlatformBenchmark, bool) {
	b, ok := catalog.Benchmarks[normalizeKey(platform)]
	if !ok {
		return catalog.DefaultBenchmark, false
	}
	return b, true
}

// MonetizationFor devuelve las oportunidades del tier más alto alcanzado por followers.
func MonetizationFor(followers int64) []domain.MonetizationOpportunity {
	tier := catalog.MonetizationTiers[0]
	for _, t := range catalog.MonetizationTiers {
		if followers >= t.MinFollowers {
			tier = t
		}
	}
	return append([]domain.MonetizationOpportunity(nil), tier.Opportunities...)
}

// SuggestedPlatform sugiere la siguiente plataforma a la que expandirse.
func SuggestedPlatform(platform string) string {
	if p, ok := catalog.CrossPlatform[normalizeKey(platform)]; ok {
		return p
	}
	return "YouTube"
}

func LookupProduct(id string) (Product, bool) {
	id = normalizeKey(id)
	for _, p := range catalog.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

func Products() []Product {
	return append([]Product(nil), catalog.Products...)
}

// FallbackResearch es el objeto canned que se devuelve entero cuando falla el research.
// Cada llamada devuelve una copia nueva para que nadie comparta slices.
func FallbackResearch() domain.MarketResearchData {
	return domain.MarketResearchData{
		Trends: DefaultTrends(),
		CompetitorAnalysis: domain.CompetitorAnalysis{
			TopCompetitors: DefaultCompetitors(),
		},
		MonetizationOpportunities: append([]domain.MonetizationOpportunity(nil), catalog.MonetizationTiers[0].Opportunities...),
		IndustryInsights:          DefaultInsights(),
	}
}
