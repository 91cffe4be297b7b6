package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"app/forecast"
	"app/models"
	"app/store"
	"app/utils"
)

// Dashboard window bounds.
const (
	minSeriesDays  = 7
	maxSeriesDays  = 365
	defaultDays    = 30
	minHorizonDays = 7
	maxHorizonDays = 90
	defaultHorizon = 30
	defaultReorder = 10
)

// HandleListProducts returns tracked products with their latest on-hand
// quantity.
// GET /api/v1/dashboard/products
func (h *Handler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.Store.Products(c.UserContext())
	if err != nil {
		log.Printf("Error listing products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to list products"})
	}
	return c.JSON(fiber.Map{"status": "success", "data": products})
}

// HandleGetProductSeries returns a product's daily observations for a
// trailing day window, clamped to [7, 365].
// GET /api/v1/dashboard/products/:productId/series?days=N
func (h *Handler) HandleGetProductSeries(c *fiber.Ctx) error {
	productID := c.Params("productId")
	days := utils.Clamp(c.QueryInt("days", defaultDays), minSeriesDays, maxSeriesDays)

	points, err := h.Store.Series(c.UserContext(), productID, days)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Product not found"})
		}
		log.Printf("Error fetching series for %s: %v", productID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch series"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": fiber.Map{
		"product_id": productID,
		"days":       days,
		"points":     points,
	}})
}

// HandleGetProductForecast fits the smoothing model to a product's on-hand
// series and projects forward, horizon clamped to [7, 90]. Reorder metadata
// is only reported while the trend is declining.
// GET /api/v1/dashboard/products/:productId/forecast?horizon=N&threshold=T
func (h *Handler) HandleGetProductForecast(c *fiber.Ctx) error {
	productID := c.Params("productId")
	horizon := utils.Clamp(c.QueryInt("horizon", defaultHorizon), minHorizonDays, maxHorizonDays)
	threshold := c.QueryInt("threshold", defaultReorder)

	product, err := h.Store.Product(c.UserContext(), productID)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Product not found"})
		}
		log.Printf("Error fetching product %s: %v", productID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch product"})
	}

	points, err := h.Store.Series(c.UserContext(), productID, maxSeriesDays)
	if err != nil {
		log.Printf("Error fetching series for %s: %v", productID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Failed to fetch series"})
	}

	series := make([]int, 0, len(points))
	for _, pt := range points {
		series = append(series, pt.QuantityOnHand)
	}

	model := forecast.FitAndProject(series, forecast.DefaultAlpha, forecast.DefaultBeta, horizon)

	payload := models.ProductForecast{
		ProductID:   product.ID,
		ProductName: product.Name,
		Level:       model.Level,
		Trend:       model.Trend,
		Horizon:     model.Horizon,
		Projected:   model.Projected,
		Threshold:   threshold,
	}

	if days, ok := forecast.DaysUntilThreshold(model, threshold); ok {
		stockout := time.Now().AddDate(0, 0, days).Format("2006-01-02")
		reorderBy := time.Now().AddDate(0, 0, days-forecast.LeadTimeDays).Format("2006-01-02")
		payload.DaysToReorder = &days
		payload.StockoutDate = &stockout
		payload.ReorderByDate = &reorderBy
	}

	return c.JSON(fiber.Map{"status": "success", "data": payload})
}
