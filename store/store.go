// Package store provides read-only access to per-product daily stock
// observations. The data is owned by an external source; the core only
// reads ordered snapshots of it.
package store

import (
	"context"
	"errors"

	"app/models"
)

// ErrProductNotFound is returned when a product id has no observations.
var ErrProductNotFound = errors.New("product not found")

// TimeSeriesStore exposes per-product ordered daily observations.
type TimeSeriesStore interface {
	// Products lists tracked products with their latest on-hand quantity.
	Products(ctx context.Context) ([]models.Product, error)

	// Series returns a product's observations for the trailing window of
	// days, ordered ascending by date.
	Series(ctx context.Context, productID string, days int) ([]models.TimeSeriesPoint, error)

	// Product returns a single product, or ErrProductNotFound.
	Product(ctx context.Context, productID string) (models.Product, error)
}
