// Package ai exposes the reasoning-service capability the recommendation
// pipeline depends on. The live implementation is backed by Gemini; tests
// use stub implementations so pipeline logic never needs a network service.
package ai

import (
	"context"
	"errors"

	"app/models"
)

// Reasoning failure classes. Unavailable covers transport-level failures;
// Malformed covers responses that arrive but cannot be used. The pipeline
// falls back identically on both.
var (
	ErrUnavailable = errors.New("reasoning service unavailable")
	ErrMalformed   = errors.New("reasoning service returned malformed output")
)

// QuerySuggestion is the query-generation result: one search phrase per
// distinct item named in the prompt.
type QuerySuggestion struct {
	SearchQueries []string `json:"search_queries"`
	Reasoning     string   `json:"reasoning"`
}

// RankInput carries everything the ranking step is allowed to see: the
// merged listing set, the original request, the sized demand, and the
// queries that were actually run (including those with no results).
type RankInput struct {
	Listings       []models.Listing
	Prompt         string
	Budget         string
	Forecasted     []models.ForecastedItem
	QueriesRun     []string
	QueriesNoMatch []string
}

// RankOutput is the ranked selection plus the service's reasoning text.
type RankOutput struct {
	Items     []models.RecommendationItem `json:"items"`
	Reasoning string                      `json:"reasoning"`
}

// ReasoningGateway is the capability interface over the external
// language-reasoning service. Every method is attempted exactly once per
// pipeline stage; callers treat any error as that stage's fallback trigger.
type ReasoningGateway interface {
	// Extract pulls structured need-items out of a free-text prompt.
	// Items without a positive daily usage are dropped.
	Extract(ctx context.Context, prompt string) ([]models.NeedItem, error)

	// SuggestQueries generates catalog search phrases for the prompt.
	SuggestQueries(ctx context.Context, prompt, budget string) (QuerySuggestion, error)

	// Rank selects a budget-constrained shopping list from the given
	// listings. Items whose id is not in the input listing set are rejected.
	Rank(ctx context.Context, in RankInput) (RankOutput, error)
}
