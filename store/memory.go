package store

import (
	"context"
	"sort"

	"app/models"
)

// MemoryStore is an in-memory TimeSeriesStore, used when no database is
// configured and as a fixture store in tests. It is read-only after
// construction.
type MemoryStore struct {
	products map[string]models.Product
	series   map[string][]models.TimeSeriesPoint
	order    []string
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]models.Product),
		series:   make(map[string][]models.TimeSeriesPoint),
	}
}

// AddProduct registers a product and its observations. Points are sorted
// ascending by date; the latest on-hand quantity becomes the product's
// current quantity.
func (s *MemoryStore) AddProduct(p models.Product, points []models.TimeSeriesPoint) {
	sorted := make([]models.TimeSeriesPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	if len(sorted) > 0 {
		p.QuantityOnHand = sorted[len(sorted)-1].QuantityOnHand
	}
	if _, exists := s.products[p.ID]; !exists {
		s.order = append(s.order, p.ID)
	}
	s.products[p.ID] = p
	s.series[p.ID] = sorted
}

// Products implements TimeSeriesStore.
func (s *MemoryStore) Products(ctx context.Context) ([]models.Product, error) {
	products := make([]models.Product, 0, len(s.order))
	for _, id := range s.order {
		products = append(products, s.products[id])
	}
	return products, nil
}

// Product implements TimeSeriesStore.
func (s *MemoryStore) Product(ctx context.Context, productID string) (models.Product, error) {
	p, ok := s.products[productID]
	if !ok {
		return models.Product{}, ErrProductNotFound
	}
	return p, nil
}

// Series implements TimeSeriesStore.
func (s *MemoryStore) Series(ctx context.Context, productID string, days int) ([]models.TimeSeriesPoint, error) {
	points, ok := s.series[productID]
	if !ok {
		return nil, ErrProductNotFound
	}
	if days > 0 && len(points) > days {
		points = points[len(points)-days:]
	}
	out := make([]models.TimeSeriesPoint, len(points))
	copy(out, points)
	return out, nil
}
