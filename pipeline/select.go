package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"app/ai"
	"app/models"
)

// catalogFallbackLimit caps the catalog-only selection at the first 8
// merged listings.
const catalogFallbackLimit = 8

// selectAndRank picks the final shopping list. The reasoning-ranked path is
// tried first; when the service is unavailable or returns nothing usable,
// the deterministic catalog-only fallback takes over. The ranking context
// carries every query that ran, with the no-match ones called out so the
// reasoning can address them.
func (r *Runner) selectAndRank(ctx context.Context, runID string, req Request, merged []models.Listing, sized []models.ForecastedItem, allQueries, usedQueries, noMatchQueries []string) Result {
	out, err := r.Reasoner.Rank(ctx, ai.RankInput{
		Listings:       merged,
		Prompt:         req.Prompt,
		Budget:         req.Budget.StringFixed(2),
		Forecasted:     sized,
		QueriesRun:     allQueries,
		QueriesNoMatch: noMatchQueries,
	})
	if err == nil {
		if items := validateRanked(out.Items, merged, req.Budget); len(items) > 0 {
			return Result{Items: items, Reasoning: out.Reasoning, Source: models.SourceReasoningRanked}
		}
		log.Printf("[run %s] %s: ranked response had no usable items, using catalog fallback", runID, StageSelectAndRank)
	} else {
		log.Printf("[run %s] %s: ranking unavailable, using catalog fallback: %v", runID, StageSelectAndRank, err)
	}

	return Result{
		Items:     selectCatalogOnly(merged, req.Budget),
		Reasoning: catalogOnlyReasoning(usedQueries, noMatchQueries),
		Source:    models.SourceCatalogOnly,
	}
}

// validateRanked enforces the ranking contract: items must come from the
// merged listing set (cross-checked by id, with the listing's own link
// copied back rather than trusted from the service), and the running total
// must stay within budget. Items that fail either check are dropped.
func validateRanked(ranked []models.RecommendationItem, merged []models.Listing, budget decimal.Decimal) []models.RecommendationItem {
	byID := make(map[string]models.Listing, len(merged))
	for _, listing := range merged {
		byID[listing.ID] = listing
	}

	kept := make([]models.RecommendationItem, 0, len(ranked))
	total := decimal.Zero
	for _, item := range ranked {
		listing, ok := byID[item.ID]
		if !ok {
			continue
		}
		item.ID = listing.ID
		item.Link = listing.Link
		if item.ProductName == "" {
			item.ProductName = listing.ProductName
		}

		cost := decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromInt(int64(item.Quantity)))
		if total.Add(cost).GreaterThan(budget) {
			continue
		}
		total = total.Add(cost)
		kept = append(kept, item)
	}
	return kept
}

// selectCatalogOnly takes the first merged listings in merge order, one
// unit each, keeping only those whose unit price alone fits the budget.
// This is a presentation-safety filter, not cumulative packing: the sum of
// the kept items may still be capped only per item. Kept as-is from the
// reference behavior.
func selectCatalogOnly(merged []models.Listing, budget decimal.Decimal) []models.RecommendationItem {
	limit := catalogFallbackLimit
	if len(merged) < limit {
		limit = len(merged)
	}

	items := make([]models.RecommendationItem, 0, limit)
	for _, listing := range merged[:limit] {
		if decimal.NewFromFloat(listing.Price).GreaterThan(budget) {
			continue
		}
		items = append(items, models.RecommendationItem{
			ID:          listing.ID,
			ProductName: listing.ProductName,
			Quantity:    1,
			UnitPrice:   listing.Price,
			Reason:      fmt.Sprintf("Top catalog match within budget for %s", listing.ProductName),
			Link:        listing.Link,
		})
	}
	return items
}

// catalogOnlyReasoning builds the fallback reasoning text, still naming
// every query that ran and those that matched nothing.
func catalogOnlyReasoning(usedQueries, noMatchQueries []string) string {
	var b strings.Builder
	b.WriteString("Reasoning service unavailable; selected top catalog matches")
	if len(usedQueries) > 0 {
		b.WriteString(" for: ")
		b.WriteString(strings.Join(usedQueries, ", "))
	}
	b.WriteString(".")
	if len(noMatchQueries) > 0 {
		b.WriteString(" No matching results for: ")
		b.WriteString(strings.Join(noMatchQueries, ", "))
		b.WriteString(".")
	}
	return b.String()
}
