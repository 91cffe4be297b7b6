package models

import "time"

// --- Inventory time series ---

// TimeSeriesPoint is one daily stock observation for a product.
// Points are ordered ascending by date and immutable once recorded.
type TimeSeriesPoint struct {
	Date           time.Time `json:"date"`
	QuantityOnHand int       `json:"quantity_on_hand"`
	QuantitySold   int       `json:"quantity_sold"`
}

// Product represents a tracked inventory product.
type Product struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Unit           string `json:"unit"`
	QuantityOnHand int    `json:"quantity_on_hand"`
}

// ProductForecast is the dashboard forecast payload for one product.
type ProductForecast struct {
	ProductID     string  `json:"product_id"`
	ProductName   string  `json:"product_name"`
	Level         float64 `json:"level"`
	Trend         float64 `json:"trend"`
	Horizon       int     `json:"horizon"`
	Projected     []int   `json:"projected"`
	Threshold     int     `json:"threshold"`
	DaysToReorder *int    `json:"days_to_reorder,omitempty"`
	StockoutDate  *string `json:"stockout_date,omitempty"`
	ReorderByDate *string `json:"reorder_by_date,omitempty"`
}
