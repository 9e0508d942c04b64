package vectorindex

import "sort"

// SortByScore orders matches best-first. Used to re-rank results merged from
// several collections, where each backend only ordered its own slice.
func SortByScore(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
}
