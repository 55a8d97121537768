package scrape

import (
	"sort"

	"github.com/matzehuels/pkgpulse/pkg/dataset"
)

// Plan selects which packages to scrape this run.
//
// Candidates are the registry names whose last-scraped timestamp is at or
// before cutoff (never-scraped packages count as the epoch), ordered
// oldest-first so the stalest data refreshes first. Ties keep registry
// order. A non-negative limit truncates the result; limit < 0 means
// unlimited.
//
// Timestamps are compared as strings, which is chronological for the
// dataset layout.
func Plan(names []string, existing dataset.Dataset, cutoff string, limit int) []string {
	var candidates []string
	for _, name := range names {
		if existing.LastScraped(name) <= cutoff {
			candidates = append(candidates, name)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return existing.LastScraped(candidates[i]) < existing.LastScraped(candidates[j])
	})

	if limit >= 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}
