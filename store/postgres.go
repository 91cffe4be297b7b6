package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"app/models"
)

// PostgresStore reads stock observations from the stock_counts table.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Products implements TimeSeriesStore.
func (s *PostgresStore) Products(ctx context.Context) ([]models.Product, error) {
	query := `
		SELECT DISTINCT ON (p.id) p.id, p.name, p.unit, sc.quantity_on_hand
		FROM products p
		JOIN stock_counts sc ON sc.product_id = p.id
		ORDER BY p.id, sc.day DESC
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Unit, &p.QuantityOnHand); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Product implements TimeSeriesStore.
func (s *PostgresStore) Product(ctx context.Context, productID string) (models.Product, error) {
	query := `
		SELECT p.id, p.name, p.unit, sc.quantity_on_hand
		FROM products p
		JOIN stock_counts sc ON sc.product_id = p.id
		WHERE p.id = $1
		ORDER BY sc.day DESC
		LIMIT 1
	`
	var p models.Product
	err := s.db.QueryRow(ctx, query, productID).Scan(&p.ID, &p.Name, &p.Unit, &p.QuantityOnHand)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Product{}, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

// Series implements TimeSeriesStore.
func (s *PostgresStore) Series(ctx context.Context, productID string, days int) ([]models.TimeSeriesPoint, error) {
	query := `
		SELECT day, quantity_on_hand, quantity_sold
		FROM stock_counts
		WHERE product_id = $1
		  AND day >= CURRENT_DATE - $2::int
		ORDER BY day ASC
	`
	rows, err := s.db.Query(ctx, query, productID, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query series: %w", err)
	}
	defer rows.Close()

	points := []models.TimeSeriesPoint{}
	for rows.Next() {
		var pt models.TimeSeriesPoint
		if err := rows.Scan(&pt.Date, &pt.QuantityOnHand, &pt.QuantitySold); err != nil {
			return nil, fmt.Errorf("failed to scan series row: %w", err)
		}
		points = append(points, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		// Distinguish an unknown product from an empty window.
		if _, perr := s.Product(ctx, productID); perr != nil {
			return nil, perr
		}
	}
	return points, nil
}
