package search

import "sort"

// Rank sorts results by similarity descending. Equal similarities are
// broken by identifier ascending so ranking is deterministic regardless of
// scan order.
func Rank(results []ScoredResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Identifier < results[j].Identifier
	})
}
