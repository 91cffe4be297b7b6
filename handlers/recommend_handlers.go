package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"app/models"
	"app/pipeline"
)

// HandleRecommend runs the recommendation pipeline for a free-text
// procurement request.
// POST /api/v1/recommend
func (h *Handler) HandleRecommend(c *fiber.Ctx) error {
	var req models.RecommendRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid request body"})
	}

	budget, err := decimal.NewFromString(req.Budget)
	if err != nil || budget.IsNegative() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "budget must be a non-negative decimal string"})
	}

	result, err := h.Pipeline.Run(c.UserContext(), pipeline.Request{
		Prompt:      req.Prompt,
		Budget:      budget,
		HorizonDays: req.HorizonDays,
	})
	if err != nil {
		var noResults *pipeline.NoResultsError
		if errors.As(err, &noResults) {
			// The one case where failure is surfaced rather than degraded.
			return c.Status(fiber.StatusBadGateway).JSON(models.RecommendResponse{
				Items:       []models.RecommendationItem{},
				Source:      models.SourceError,
				TotalCost:   "0.00",
				QueriesUsed: []string{},
				Error:       noResults.Error(),
			})
		}

		var stageErr *pipeline.Error
		if errors.As(err, &stageErr) {
			log.Printf("Recommendation pipeline fault: %v", stageErr)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":  "error",
				"message": "Recommendation failed at stage " + stageErr.Stage,
			})
		}

		log.Printf("Recommendation pipeline error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Recommendation failed"})
	}

	queries := result.QueriesUsed
	if queries == nil {
		queries = []string{}
	}

	return c.JSON(models.RecommendResponse{
		Items:       result.Items,
		Reasoning:   result.Reasoning,
		Source:      result.Source,
		TotalCost:   result.TotalCost.StringFixed(2),
		QueriesUsed: queries,
	})
}
