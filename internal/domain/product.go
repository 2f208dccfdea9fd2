package domain

const (
	DemandHigh   = "high"
	DemandMedium = "medium"
	DemandLow    = "low"
)

// ProductViability es una copia derivada de la entrada del catálogo con el score ajustado.
type ProductViability struct {
	ProductID       string `json:"productId"`
	Name            string `json:"name"`
	Category        string `json:"category"`
	MarketDemand    string `json:"marketDemand"`
	Competition     string `json:"competition"`
	PriceRange      string `json:"priceRange"`
	CommercialScore int    `json:"commercialScore"`
}
