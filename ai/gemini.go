package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"app/models"
)

// GeminiReasoner is the live ReasoningGateway backed by the Gemini API.
type GeminiReasoner struct {
	apiKey  string
	model   string
	timeout time.Duration
}

// NewGeminiReasoner builds a Gemini-backed gateway. model defaults to
// gemini-1.5-pro and timeout to 30s when zero values are passed.
func NewGeminiReasoner(apiKey, model string, timeout time.Duration) *GeminiReasoner {
	if model == "" {
		model = "gemini-1.5-pro"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GeminiReasoner{apiKey: apiKey, model: model, timeout: timeout}
}

// generate sends one prompt and returns the first candidate's text.
// The model is asked for a JSON-only response; each call gets a bounded
// timeout and is attempted exactly once.
func (g *GeminiReasoner) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create client: %v", ErrUnavailable, err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrMalformed)
	}

	return fmt.Sprint(resp.Candidates[0].Content.Parts[0]), nil
}

// Extract implements ReasoningGateway.
func (g *GeminiReasoner) Extract(ctx context.Context, prompt string) ([]models.NeedItem, error) {
	extractionPrompt := fmt.Sprintf(
		`You are a procurement assistant. Extract the distinct items the user needs to buy from the request below.
Respond with JSON only, no prose, in the form:
{"items": [{"name": "...", "category": "...", "daily_usage": 1.5, "unit": "...", "context": "..."}]}
daily_usage is the estimated units consumed per day and must be a positive number.
User request: %q`,
		prompt,
	)

	raw, err := g.generate(ctx, extractionPrompt)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Items []models.NeedItem `json:"items"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	// Items without a positive daily usage are unusable for demand sizing.
	items := make([]models.NeedItem, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if strings.TrimSpace(item.Name) == "" || item.DailyUsage <= 0 {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// SuggestQueries implements ReasoningGateway.
func (g *GeminiReasoner) SuggestQueries(ctx context.Context, prompt, budget string) (QuerySuggestion, error) {
	queryPrompt := fmt.Sprintf(
		`You are a procurement assistant generating catalog search phrases.
The user request is: %q
The total budget is %s.
Produce one short search phrase per distinct item the user names. If the request names exactly
one item, return exactly one phrase; otherwise return between 2 and 5 phrases. Never invent
items the user did not ask for.
Respond with JSON only: {"search_queries": ["..."], "reasoning": "..."}`,
		prompt, budget,
	)

	raw, err := g.generate(ctx, queryPrompt)
	if err != nil {
		return QuerySuggestion{}, err
	}

	var parsed QuerySuggestion
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		return QuerySuggestion{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	queries := make([]string, 0, len(parsed.SearchQueries))
	for _, q := range parsed.SearchQueries {
		if s := strings.TrimSpace(q); s != "" {
			queries = append(queries, s)
		}
	}
	if len(queries) == 0 {
		return QuerySuggestion{}, fmt.Errorf("%w: no search queries", ErrMalformed)
	}
	if len(queries) > 5 {
		queries = queries[:5]
	}
	parsed.SearchQueries = queries
	return parsed, nil
}

// Rank implements ReasoningGateway.
func (g *GeminiReasoner) Rank(ctx context.Context, in RankInput) (RankOutput, error) {
	listingsJSON, err := json.Marshal(in.Listings)
	if err != nil {
		return RankOutput{}, fmt.Errorf("failed to serialize listings: %w", err)
	}
	forecastJSON, err := json.Marshal(in.Forecasted)
	if err != nil {
		return RankOutput{}, fmt.Errorf("failed to serialize forecasted items: %w", err)
	}

	rankPrompt := fmt.Sprintf(
		`You are a procurement assistant building a final shopping list.
User request: %q
Total budget: %s. The combined cost (quantity x unit_price) of everything you select must stay within this budget.
Forecasted demand (name, forecasted_units, unit): %s
Search queries that were run: %s
Queries that returned no matching result: %s
Available catalog listings (select ONLY from these, by asin): %s
Respond with JSON only:
{"items": [{"asin": "...", "product_name": "...", "quantity": 1, "unit_price": 9.99, "reason": "..."}], "reasoning": "..."}
Your reasoning must address every query that was run, and explicitly say so when a query had no matching result.`,
		in.Prompt, in.Budget, string(forecastJSON),
		strings.Join(in.QueriesRun, "; "), strings.Join(in.QueriesNoMatch, "; "),
		string(listingsJSON),
	)

	raw, err := g.generate(ctx, rankPrompt)
	if err != nil {
		return RankOutput{}, err
	}

	var parsed RankOutput
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		return RankOutput{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	items := make([]models.RecommendationItem, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item.ID == "" || item.Quantity <= 0 || item.UnitPrice < 0 {
			continue
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return RankOutput{}, fmt.Errorf("%w: no usable items", ErrMalformed)
	}
	parsed.Items = items
	return parsed, nil
}

// extractJSON strips markdown code fences the model sometimes wraps around
// its JSON payload, then trims to the outermost object or array.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	end := strings.LastIndexAny(s, "}]")
	if end < start {
		return s
	}
	return s[start : end+1]
}
