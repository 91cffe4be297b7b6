// Package pipeline sequences the recommendation stages that turn a
// free-text procurement request into a budget-constrained shopping list:
// item extraction, demand sizing, query generation, federated catalog
// search, merge/dedup, and budget-constrained selection. Every stage backed
// by an external service has a deterministic fallback; the pipeline only
// fails outright when the catalog yields nothing or a stage faults.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"app/ai"
	"app/catalog"
	"app/forecast"
	"app/models"
)

// Stage names, used in fault reporting.
const (
	StageExtractItems    = "ExtractItems"
	StageSizeDemand      = "SizeDemand"
	StageGenerateQueries = "GenerateQueries"
	StageSearchCatalog   = "SearchCatalog"
	StageMergeResults    = "MergeResults"
	StageSelectAndRank   = "SelectAndRank"
)

// DefaultPrompt stands in when the request carries no prompt text.
const DefaultPrompt = "general restocking supplies"

// Error is a stage fault: an unexpected failure inside a stage that is not
// covered by that stage's fallback policy.
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("pipeline stage %s failed: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NoResultsError is the early-exit terminal: every catalog query failed or
// returned nothing, so there is nothing to recommend.
type NoResultsError struct {
	Endpoint string
}

func (e *NoResultsError) Error() string {
	return fmt.Sprintf("no catalog results: search service at %s returned nothing for any query", e.Endpoint)
}

// Request is one recommendation run's input.
type Request struct {
	Prompt      string
	Budget      decimal.Decimal
	HorizonDays int
}

// Result is the final recommendation payload.
type Result struct {
	Items       []models.RecommendationItem
	Reasoning   string
	Source      string
	TotalCost   decimal.Decimal
	QueriesUsed []string
}

// Runner wires the pipeline to its collaborators. A Runner is safe for
// concurrent use; each run operates only on its own local values.
type Runner struct {
	Reasoner        ai.ReasoningGateway
	Catalog         catalog.Gateway
	CatalogEndpoint string
}

// New builds a pipeline runner.
func New(reasoner ai.ReasoningGateway, cat catalog.Gateway, catalogEndpoint string) *Runner {
	return &Runner{Reasoner: reasoner, Catalog: cat, CatalogEndpoint: catalogEndpoint}
}

// Run executes one full pipeline pass. Reasoning-service failures degrade
// to deterministic fallbacks and never abort the run; the only error
// returns are *NoResultsError and *Error.
func (r *Runner) Run(ctx context.Context, req Request) (res Result, err error) {
	runID := uuid.NewString()
	if strings.TrimSpace(req.Prompt) == "" {
		req.Prompt = DefaultPrompt
	}
	if req.HorizonDays <= 0 {
		req.HorizonDays = 30
	}

	// ExtractItems: soft-degrades to an empty item set.
	var items []models.NeedItem
	if err = r.guard(StageExtractItems, func() error {
		items = r.extractItems(ctx, runID, req.Prompt)
		return nil
	}); err != nil {
		return Result{}, err
	}

	// SizeDemand: pure, skipped when extraction produced nothing.
	var sized []models.ForecastedItem
	if err = r.guard(StageSizeDemand, func() error {
		if len(items) > 0 {
			sized = forecast.ProjectDemandAll(items, req.HorizonDays)
		}
		return nil
	}); err != nil {
		return Result{}, err
	}

	// GenerateQueries: always yields exactly one non-empty query set.
	var queries []string
	if err = r.guard(StageGenerateQueries, func() error {
		queries = r.generateQueries(ctx, runID, req, sized)
		return nil
	}); err != nil {
		return Result{}, err
	}

	// SearchCatalog: per-phrase failures are recorded and skipped.
	var resultSets [][]models.Listing
	var usedQueries, noMatchQueries []string
	if err = r.guard(StageSearchCatalog, func() error {
		resultSets, usedQueries, noMatchQueries = r.searchCatalog(ctx, runID, queries)
		return nil
	}); err != nil {
		return Result{}, err
	}

	// MergeResults: dedup by listing id, first-seen order.
	var merged []models.Listing
	if err = r.guard(StageMergeResults, func() error {
		merged = MergeListings(resultSets)
		return nil
	}); err != nil {
		return Result{}, err
	}
	if len(merged) == 0 {
		return Result{}, &NoResultsError{Endpoint: r.CatalogEndpoint}
	}

	// SelectAndRank: reasoning-ranked path with catalog-only fallback.
	if err = r.guard(StageSelectAndRank, func() error {
		res = r.selectAndRank(ctx, runID, req, merged, sized, queries, usedQueries, noMatchQueries)
		return nil
	}); err != nil {
		return Result{}, err
	}

	res.QueriesUsed = usedQueries
	res.TotalCost = totalCost(res.Items)
	return res, nil
}

// guard runs one stage, converting a panic or modeled error into a stage
// fault so no partial state is ever returned as success.
func (r *Runner) guard(stage string, fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &Error{Stage: stage, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()
	if ferr := fn(); ferr != nil {
		return &Error{Stage: stage, Err: ferr}
	}
	return nil
}

// extractItems asks the reasoning service for structured need-items. On
// failure or an empty result the pipeline continues with no items.
func (r *Runner) extractItems(ctx context.Context, runID, prompt string) []models.NeedItem {
	items, err := r.Reasoner.Extract(ctx, prompt)
	if err != nil {
		log.Printf("[run %s] %s: reasoning extraction unavailable, continuing without items: %v", runID, StageExtractItems, err)
		return nil
	}
	if len(items) == 0 {
		log.Printf("[run %s] %s: no items extracted, continuing", runID, StageExtractItems)
	}
	return items
}

// generateQueries produces the query set for the catalog stage. Fallback
// order when the reasoning service cannot serve: sized item names, then the
// raw prompt, then the generic placeholder.
func (r *Runner) generateQueries(ctx context.Context, runID string, req Request, sized []models.ForecastedItem) []string {
	suggestion, err := r.Reasoner.SuggestQueries(ctx, req.Prompt, req.Budget.StringFixed(2))
	if err == nil && len(suggestion.SearchQueries) > 0 {
		return suggestion.SearchQueries
	}
	if err != nil {
		log.Printf("[run %s] %s: falling back to derived queries: %v", runID, StageGenerateQueries, err)
	}

	if len(sized) > 0 {
		queries := make([]string, 0, len(sized))
		for _, item := range sized {
			queries = append(queries, item.Name)
		}
		return queries
	}

	if prompt := strings.TrimSpace(req.Prompt); prompt != "" {
		return []string{prompt}
	}
	return []string{DefaultPrompt}
}

// searchResult slots one phrase's outcome back into submission order.
type searchResult struct {
	listings []models.Listing
	err      error
}

// searchCatalog fans the query phrases out to the catalog service. Phrase
// searches are independent, so they run concurrently; results are re-slotted
// into phrase submission order before merging, and one failed phrase never
// cancels its siblings. Phrases that failed or matched nothing are tracked
// apart from the used queries.
func (r *Runner) searchCatalog(ctx context.Context, runID string, queries []string) (resultSets [][]models.Listing, used, noMatch []string) {
	outcomes := make([]searchResult, len(queries))

	var wg sync.WaitGroup
	for i, query := range queries {
		wg.Add(1)
		go func(i int, query string) {
			defer wg.Done()
			listings, err := r.Catalog.Search(ctx, query)
			outcomes[i] = searchResult{listings: listings, err: err}
		}(i, query)
	}
	wg.Wait()

	resultSets = make([][]models.Listing, 0, len(queries))
	for i, query := range queries {
		if outcomes[i].err != nil {
			log.Printf("[run %s] %s: query %q failed, skipping: %v", runID, StageSearchCatalog, query, outcomes[i].err)
			noMatch = append(noMatch, query)
			continue
		}
		if len(outcomes[i].listings) == 0 {
			noMatch = append(noMatch, query)
			continue
		}
		used = append(used, query)
		resultSets = append(resultSets, outcomes[i].listings)
	}
	return resultSets, used, noMatch
}

// totalCost sums quantity times unit price over the final items, rounded
// to two decimal places.
func totalCost(items []models.RecommendationItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		price := decimal.NewFromFloat(item.UnitPrice)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total.Round(2)
}
