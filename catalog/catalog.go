// Package catalog exposes the catalog search capability the pipeline
// sources listings from, with a live HTTP client and room for fixtures.
package catalog

import (
	"context"
	"errors"

	"app/models"
)

// ErrNotReachable marks transport failures and non-JSON replies from a
// misconfigured catalog endpoint.
var ErrNotReachable = errors.New("catalog service not reachable")

// Gateway is the capability interface over the external catalog search
// service. A search may fail per-query; callers decide whether that is
// fatal. An empty query is valid and returns a default listing set.
type Gateway interface {
	Search(ctx context.Context, query string) ([]models.Listing, error)
}
