package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"app/models"
)

// Client is the HTTP-backed catalog Gateway, talking to the search
// service's /api/search endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a catalog client for the given base URL. timeout
// defaults to 15s when zero.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SearchEndpoint returns the full search URL, used in user-facing errors
// when the service is unreachable.
func (c *Client) SearchEndpoint() string {
	return c.baseURL + "/api/search"
}

type searchResponse struct {
	Results []models.Listing `json:"results"`
	Query   string           `json:"query"`
}

// Search implements Gateway. The query is URL-escaped; an empty query is
// passed through and yields the service's default listing set. A reply that
// is not JSON (an HTML error page from a misconfigured dependency, for
// example) is reported as ErrNotReachable rather than a decode crash.
func (c *Client) Search(ctx context.Context, query string) ([]models.Listing, error) {
	reqURL := fmt.Sprintf("%s?q=%s", c.SearchEndpoint(), url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotReachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrNotReachable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d from %s", ErrNotReachable, resp.StatusCode, c.SearchEndpoint())
	}

	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "<") {
		// HTML instead of JSON means we hit something other than the search API.
		return nil, fmt.Errorf("%w: non-JSON response from %s", ErrNotReachable, c.SearchEndpoint())
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrNotReachable, err)
	}

	return parsed.Results, nil
}
