package routes

import (
	"github.com/gofiber/fiber/v2"

	"app/handlers"
	"app/middleware"
)

// SetupRoutes defines all the routes for the application.
func SetupRoutes(app *fiber.App, h *handlers.Handler) {
	app.Use(middleware.RequestID, middleware.RequestLogger)

	api := app.Group("/api/v1")

	// --- Dashboard Routes ---
	dashboard := api.Group("/dashboard")
	dashboard.Get("/products", h.HandleListProducts)
	dashboard.Get("/products/:productId/series", h.HandleGetProductSeries)
	dashboard.Get("/products/:productId/forecast", h.HandleGetProductForecast)

	// --- Recommendation Route ---
	api.Post("/recommend", h.HandleRecommend)
}
