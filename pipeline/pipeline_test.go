package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"app/ai"
	"app/models"
)

// stubReasoner fails every call unless a function field is set.
type stubReasoner struct {
	extractFn func(ctx context.Context, prompt string) ([]models.NeedItem, error)
	suggestFn func(ctx context.Context, prompt, budget string) (ai.QuerySuggestion, error)
	rankFn    func(ctx context.Context, in ai.RankInput) (ai.RankOutput, error)
}

func (s *stubReasoner) Extract(ctx context.Context, prompt string) ([]models.NeedItem, error) {
	if s.extractFn == nil {
		return nil, ai.ErrUnavailable
	}
	return s.extractFn(ctx, prompt)
}

func (s *stubReasoner) SuggestQueries(ctx context.Context, prompt, budget string) (ai.QuerySuggestion, error) {
	if s.suggestFn == nil {
		return ai.QuerySuggestion{}, ai.ErrUnavailable
	}
	return s.suggestFn(ctx, prompt, budget)
}

func (s *stubReasoner) Rank(ctx context.Context, in ai.RankInput) (ai.RankOutput, error) {
	if s.rankFn == nil {
		return ai.RankOutput{}, ai.ErrUnavailable
	}
	return s.rankFn(ctx, in)
}

// stubCatalog serves canned listings per query. Searches run concurrently,
// so the call log is guarded.
type stubCatalog struct {
	mu      sync.Mutex
	results map[string][]models.Listing
	err     error
	queries []string
}

func (s *stubCatalog) Search(ctx context.Context, query string) ([]models.Listing, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.results[query], nil
}

func newRunner(r ai.ReasoningGateway, c *stubCatalog) *Runner {
	return New(r, c, "http://localhost:3000/api/search")
}

func TestRunReasoningUnavailableFallsBackToPromptQuery(t *testing.T) {
	cat := &stubCatalog{results: map[string][]models.Listing{
		"I need headphones": {listing("a1", "Wireless Headphones", 49.99)},
	}}
	runner := newRunner(&stubReasoner{}, cat)

	res, err := runner.Run(context.Background(), Request{
		Prompt: "I need headphones",
		Budget: decimal.NewFromInt(100),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"I need headphones"}, cat.queries, "exactly one query derived from the prompt")
	assert.Equal(t, models.SourceCatalogOnly, res.Source)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "a1", res.Items[0].ID)
	assert.Equal(t, "49.99", res.TotalCost.StringFixed(2))
}

func TestRunAllCatalogQueriesFailIsNoResults(t *testing.T) {
	cat := &stubCatalog{err: errors.New("connection refused")}
	runner := newRunner(&stubReasoner{}, cat)

	_, err := runner.Run(context.Background(), Request{
		Prompt: "I need headphones",
		Budget: decimal.NewFromInt(100),
	})

	var noResults *NoResultsError
	require.ErrorAs(t, err, &noResults)
	assert.Contains(t, noResults.Error(), "http://localhost:3000/api/search")
}

func TestRunEmptyPromptUsesPlaceholder(t *testing.T) {
	cat := &stubCatalog{results: map[string][]models.Listing{
		DefaultPrompt: {listing("a1", "Box of supplies", 9.99)},
	}}
	runner := newRunner(&stubReasoner{}, cat)

	res, err := runner.Run(context.Background(), Request{Budget: decimal.NewFromInt(50)})

	require.NoError(t, err)
	assert.Equal(t, []string{DefaultPrompt}, cat.queries)
	assert.Len(t, res.Items, 1)
}

func TestRunExtractedItemNamesBecomeFallbackQueries(t *testing.T) {
	reasoner := &stubReasoner{
		extractFn: func(ctx context.Context, prompt string) ([]models.NeedItem, error) {
			return []models.NeedItem{
				{Name: "coffee beans", DailyUsage: 1.5},
				{Name: "paper cups", DailyUsage: 20},
			}, nil
		},
		// suggestFn left nil: query generation degrades to item names.
	}
	cat := &stubCatalog{results: map[string][]models.Listing{
		"coffee beans": {listing("c1", "Arabica Beans 1kg", 18)},
		"paper cups":   {listing("p1", "Paper Cups 100pk", 6)},
	}}
	runner := newRunner(reasoner, cat)

	res, err := runner.Run(context.Background(), Request{
		Prompt:      "restock the cafe",
		Budget:      decimal.NewFromInt(200),
		HorizonDays: 14,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"coffee beans", "paper cups"}, res.QueriesUsed)
	assert.Equal(t, models.SourceCatalogOnly, res.Source)
	assert.Len(t, res.Items, 2)
}

func TestRunReasoningRankedPath(t *testing.T) {
	var gotRank ai.RankInput
	reasoner := &stubReasoner{
		suggestFn: func(ctx context.Context, prompt, budget string) (ai.QuerySuggestion, error) {
			return ai.QuerySuggestion{SearchQueries: []string{"wireless headphones", "usb hub"}}, nil
		},
		rankFn: func(ctx context.Context, in ai.RankInput) (ai.RankOutput, error) {
			gotRank = in
			return ai.RankOutput{
				Items: []models.RecommendationItem{
					{ID: "a1", ProductName: "Wireless Headphones", Quantity: 1, UnitPrice: 49.99, Reason: "best match"},
				},
				Reasoning: "picked headphones; no usb hub matched",
			}, nil
		},
	}
	cat := &stubCatalog{results: map[string][]models.Listing{
		"wireless headphones": {listing("a1", "Wireless Headphones", 49.99)},
		// "usb hub" returns nothing.
	}}
	runner := newRunner(reasoner, cat)

	res, err := runner.Run(context.Background(), Request{
		Prompt: "headphones and a usb hub",
		Budget: decimal.NewFromInt(100),
	})

	require.NoError(t, err)
	assert.Equal(t, models.SourceReasoningRanked, res.Source)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "http://shop.local/item/a1", res.Items[0].Link)
	assert.Equal(t, []string{"wireless headphones"}, res.QueriesUsed)
	assert.Equal(t, []string{"wireless headphones", "usb hub"}, gotRank.QueriesRun, "ranking context carries every query that ran")
	assert.Equal(t, []string{"usb hub"}, gotRank.QueriesNoMatch, "ranking context must name queries with no result")
}

func TestRunRankedForeignIDFallsBackToCatalogOnly(t *testing.T) {
	reasoner := &stubReasoner{
		suggestFn: func(ctx context.Context, prompt, budget string) (ai.QuerySuggestion, error) {
			return ai.QuerySuggestion{SearchQueries: []string{"headphones"}}, nil
		},
		rankFn: func(ctx context.Context, in ai.RankInput) (ai.RankOutput, error) {
			return ai.RankOutput{Items: []models.RecommendationItem{
				{ID: "not-in-set", Quantity: 1, UnitPrice: 10},
			}}, nil
		},
	}
	cat := &stubCatalog{results: map[string][]models.Listing{
		"headphones": {listing("a1", "Wireless Headphones", 49.99)},
	}}
	runner := newRunner(reasoner, cat)

	res, err := runner.Run(context.Background(), Request{
		Prompt: "headphones",
		Budget: decimal.NewFromInt(100),
	})

	require.NoError(t, err)
	assert.Equal(t, models.SourceCatalogOnly, res.Source, "a selection with only foreign ids is unusable")
	require.Len(t, res.Items, 1)
	assert.Equal(t, "a1", res.Items[0].ID)
}

func TestRunPartialQueryFailureContinues(t *testing.T) {
	calls := 0
	reasoner := &stubReasoner{
		suggestFn: func(ctx context.Context, prompt, budget string) (ai.QuerySuggestion, error) {
			return ai.QuerySuggestion{SearchQueries: []string{"good query", "bad query"}}, nil
		},
	}
	cat := &failingCatalog{
		fail: map[string]bool{"bad query": true},
		results: map[string][]models.Listing{
			"good query": {listing("a1", "Thing", 5)},
		},
		calls: &calls,
	}
	runner := New(reasoner, cat, "http://localhost:3000/api/search")

	res, err := runner.Run(context.Background(), Request{
		Prompt: "things",
		Budget: decimal.NewFromInt(50),
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls, "a failed phrase must not cancel its sibling")
	assert.Equal(t, []string{"good query"}, res.QueriesUsed)
	assert.Len(t, res.Items, 1)
}

type failingCatalog struct {
	mu      sync.Mutex
	fail    map[string]bool
	results map[string][]models.Listing
	calls   *int
}

func (f *failingCatalog) Search(ctx context.Context, query string) ([]models.Listing, error) {
	f.mu.Lock()
	*f.calls++
	f.mu.Unlock()
	if f.fail[query] {
		return nil, fmt.Errorf("search %q: connection reset", query)
	}
	return f.results[query], nil
}

func TestRunStageFaultCarriesStageName(t *testing.T) {
	reasoner := &stubReasoner{
		suggestFn: func(ctx context.Context, prompt, budget string) (ai.QuerySuggestion, error) {
			panic("boom")
		},
	}
	runner := newRunner(reasoner, &stubCatalog{})

	_, err := runner.Run(context.Background(), Request{
		Prompt: "anything",
		Budget: decimal.NewFromInt(10),
	})

	var stageErr *Error
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageGenerateQueries, stageErr.Stage)
	assert.Contains(t, err.Error(), StageGenerateQueries)
}

func TestTotalCostRoundsToTwoDecimals(t *testing.T) {
	total := totalCost([]models.RecommendationItem{
		{Quantity: 3, UnitPrice: 19.99},
		{Quantity: 1, UnitPrice: 0.015},
	})

	assert.Equal(t, "59.99", total.StringFixed(2))
}
