package pipeline

import "app/models"

// MergeListings deduplicates listings by catalog id across per-phrase
// result sets, keeping first-seen order: first phrase, then first
// occurrence within that phrase's results. The merge is stable and
// idempotent, which keeps the catalog-only selection reproducible when the
// ranking stage is unavailable.
func MergeListings(resultSets [][]models.Listing) []models.Listing {
	seen := make(map[string]bool)
	merged := make([]models.Listing, 0)

	for _, set := range resultSets {
		for _, listing := range set {
			if listing.ID == "" || seen[listing.ID] {
				continue
			}
			seen[listing.ID] = true
			merged = append(merged, listing)
		}
	}
	return merged
}
