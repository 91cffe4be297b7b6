package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"

	"app/ai"
	"app/catalog"
	"app/config"
	"app/database"
	"app/handlers"
	"app/pipeline"
	"app/routes"
	"app/store"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	cfg := config.Load()

	if cfg.GeminiAPIKey == "" {
		log.Println("GEMINI_API_KEY is not set; recommendations will use catalog-only fallbacks")
	}

	// Time-series store: Postgres when configured, in-memory otherwise.
	var ts store.TimeSeriesStore
	if cfg.DatabaseURL != "" {
		database.Connect(cfg.DatabaseURL)
		defer database.Close()
		ts = store.NewPostgresStore(database.GetDB())
	} else {
		log.Println("DATABASE_URL is not set, using in-memory time-series store")
		ts = store.NewMemoryStore()
	}

	reasoner := ai.NewGeminiReasoner(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.ReasoningTimeout)
	catalogClient := catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogTimeout)
	runner := pipeline.New(reasoner, catalogClient, catalogClient.SearchEndpoint())

	app := fiber.New()
	app.Use(cors.New())

	routes.SetupRoutes(app, handlers.New(ts, runner))

	log.Fatal(app.Listen(":" + cfg.Port))
}
