// Package dedupe removes redundant candidate product sets.
//
// Candidate sets for one (tier, tile partition) bucket arrive from many
// orbit/window tasks in no particular order. Reduce collapses them to an
// antichain under set inclusion and Select picks one winner
// deterministically.
package dedupe

import (
	"cmp"
	"slices"

	"github.com/okian/burstcov/internal/domain/model"
)

// Reduce drops empty sets and duplicates, then removes every set that is a
// strict subset of another. The result is ordered by cardinality (largest
// first), then lexicographically, so it does not depend on input order.
//
// Reduce is idempotent.
func Reduce(candidates []model.ProductSet) []model.ProductSet {
	distinct := make([]model.ProductSet, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, ps := range candidates {
		if ps.Empty() {
			continue
		}
		k := ps.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		distinct = append(distinct, ps)
	}
	slices.SortFunc(distinct, order)

	// A strict superset is strictly larger, so it is already in kept.
	kept := make([]model.ProductSet, 0, len(distinct))
	for _, ps := range distinct {
		redundant := false
		for _, k := range kept {
			if ps.StrictSubsetOf(k) {
				redundant = true
				break
			}
		}
		if !redundant {
			kept = append(kept, ps)
		}
	}
	return kept
}

// Select returns the maximal set with the greatest cardinality, breaking
// ties by the lexicographic order of sorted product ids. ok is false when no
// non-empty candidate exists.
func Select(candidates []model.ProductSet) (best model.ProductSet, ok bool) {
	reduced := Reduce(candidates)
	if len(reduced) == 0 {
		return model.ProductSet{}, false
	}
	return reduced[0], true
}

func order(a, b model.ProductSet) int {
	if c := cmp.Compare(b.Len(), a.Len()); c != 0 {
		return c
	}
	return a.Compare(b)
}
