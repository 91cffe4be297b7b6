package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"app/models"
)

func day(offset int) time.Time {
	return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestMemoryStoreSortsSeriesAndTracksLatest(t *testing.T) {
	s := NewMemoryStore()
	s.AddProduct(models.Product{ID: "p1", Name: "Coffee", Unit: "kg"}, []models.TimeSeriesPoint{
		{Date: day(2), QuantityOnHand: 40},
		{Date: day(0), QuantityOnHand: 50},
		{Date: day(1), QuantityOnHand: 45},
	})

	points, err := s.Series(context.Background(), "p1", 30)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.True(t, points[0].Date.Before(points[1].Date))
	assert.True(t, points[1].Date.Before(points[2].Date))

	p, err := s.Product(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 40, p.QuantityOnHand, "latest observation becomes current quantity")
}

func TestMemoryStoreSeriesWindow(t *testing.T) {
	s := NewMemoryStore()
	points := make([]models.TimeSeriesPoint, 0, 20)
	for i := 0; i < 20; i++ {
		points = append(points, models.TimeSeriesPoint{Date: day(i), QuantityOnHand: 100 - i})
	}
	s.AddProduct(models.Product{ID: "p1", Name: "Coffee"}, points)

	windowed, err := s.Series(context.Background(), "p1", 7)
	require.NoError(t, err)
	require.Len(t, windowed, 7)
	assert.Equal(t, day(13), windowed[0].Date, "window keeps the trailing days")
}

func TestMemoryStoreUnknownProduct(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Product(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = s.Series(context.Background(), "missing", 30)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemoryStoreProductsKeepsInsertionOrder(t *testing.T) {
	s := NewMemoryStore()
	s.AddProduct(models.Product{ID: "b", Name: "Beans"}, nil)
	s.AddProduct(models.Product{ID: "a", Name: "Apples"}, nil)

	products, err := s.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "b", products[0].ID)
	assert.Equal(t, "a", products[1].ID)
}
