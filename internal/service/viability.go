package service

import (
	"sort"

	"creator-growth/internal/domain"
	"creator-growth/internal/refdata"
)

var demandPoints = map[string]int{
	domain.DemandHigh:   45,
	domain.DemandMedium: 30,
	domain.DemandLow:    15,
}

var competitionPoints = map[string]int{
	domain.DemandLow:    35,
	domain.DemandMedium: 25,
	domain.DemandHigh:   15,
}

// ScoreProduct devuelve una copia de la entrada del catálogo con el score ajustado.
// Un id desconocido no es un error: devuelve score 0 y demanda "low".
func ScoreProduct(productID string, downloads int64, engagement float64) domain.ProductViability {
	p, ok := refdata.LookupProduct(productID)
	if !ok {
		return domain.ProductViability{
			ProductID:       productID,
			MarketDemand:    domain.DemandLow,
			CommercialScore: 0,
		}
	}

	score := demandPoints[p.MarketDemand] + competitionPoints[p.Competition]
	if downloads > 100 {
		score += 5
	}
	if downloads > 500 {
		score += 5
	}
	if engagement > 0.7 {
		score += 5
	}
	if score > 100 {
		score = 100
	}

	return domain.ProductViability{
		ProductID:       p.ID,
		Name:            p.Name,
		Category:        p.Category,
		MarketDemand:    p.MarketDemand,
		Competition:     p.Competition,
		PriceRange:      p.PriceRange,
		CommercialScore: score,
	}
}

// ScoreCatalog puntúa todo el catálogo, de mayor a menor score.
func ScoreCatalog(downloadsByProduct map[string]int64, engagement float64) []domain.ProductViability {
	products := refdata.Products()
	out := make([]domain.ProductViability, 0, len(products))
	for _, p := range products {
		out = append(out, ScoreProduct(p.ID, downloadsByProduct[p.ID], engagement))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CommercialScore != out[j].CommercialScore {
			return out[i].CommercialScore > out[j].CommercialScore
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out
}
