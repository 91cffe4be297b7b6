package models

// --- Recommendation pipeline models ---

// NeedItem is a single procurement need extracted from a free-text prompt.
type NeedItem struct {
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	DailyUsage float64 `json:"daily_usage"`
	Unit       string  `json:"unit"`
	Context    string  `json:"context,omitempty"`
}

// ForecastedItem is a NeedItem sized over a horizon with safety stock applied.
type ForecastedItem struct {
	NeedItem
	HorizonDays     int `json:"horizon_days"`
	BaseDemand      int `json:"base_demand"`
	SafetyStock     int `json:"safety_stock"`
	ForecastedUnits int `json:"forecasted_units"`
}

// Listing is one purchasable product returned by the catalog search service.
// ID is the catalog identifier (asin) and is the dedup key.
type Listing struct {
	ID          string  `json:"asin"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Link        string  `json:"link"`
}

// RecommendationItem is one selected line of the final shopping list.
type RecommendationItem struct {
	ID          string  `json:"asin"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Reason      string  `json:"reason"`
	Link        string  `json:"link"`
}

// Recommendation sources.
const (
	SourceReasoningRanked = "reasoning-ranked"
	SourceCatalogOnly     = "catalog-only"
	SourceError           = "error"
)

// RecommendationResult is the final pipeline payload.
type RecommendationResult struct {
	Items     []RecommendationItem `json:"items"`
	Reasoning string               `json:"reasoning"`
	Source    string               `json:"source"`
}

// RecommendRequest is the body of the recommend endpoint.
// Budget is decimal-as-text; HorizonDays defaults to 30.
type RecommendRequest struct {
	Prompt      string `json:"prompt"`
	Budget      string `json:"budget"`
	HorizonDays int    `json:"horizon_days"`
}

// RecommendResponse wraps the pipeline result with run metadata.
type RecommendResponse struct {
	Items       []RecommendationItem `json:"items"`
	Reasoning   string               `json:"reasoning"`
	Source      string               `json:"source"`
	TotalCost   string               `json:"total_cost"`
	QueriesUsed []string             `json:"queries_used"`
	Error       string               `json:"error,omitempty"`
}
