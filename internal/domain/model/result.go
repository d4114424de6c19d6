package model

import "slices"

// EvaluationResult holds one finalized product set per tier per tile partition.
type EvaluationResult map[CoverageTier]map[string]ProductSet

// Set stores ps for (tier, tileSetID), creating the inner map on demand.
func (r EvaluationResult) Set(tier CoverageTier, tileSetID string, ps ProductSet) {
	inner, ok := r[tier]
	if !ok {
		inner = make(map[string]ProductSet)
		r[tier] = inner
	}
	inner[tileSetID] = ps
}

// Get returns the product set selected for (tier, tileSetID).
func (r EvaluationResult) Get(tier CoverageTier, tileSetID string) (ProductSet, bool) {
	ps, ok := r[tier][tileSetID]
	return ps, ok
}

// Len counts (tier, tile partition) entries.
func (r EvaluationResult) Len() int {
	n := 0
	for _, inner := range r {
		n += len(inner)
	}
	return n
}

// JobRequest is one downstream composite job the result justifies.
type JobRequest struct {
	Tier       CoverageTier `json:"tier"`
	TileSetID  string       `json:"tile_set_id"`
	ProductIDs []string     `json:"product_ids"`
}

// Actionable lists job requests for the given tiers, defaulting to Full and
// Target. Output is ordered by tier (most complete first) then tile set id.
func (r EvaluationResult) Actionable(tiers ...CoverageTier) []JobRequest {
	if len(tiers) == 0 {
		tiers = []CoverageTier{TierFull, TierTarget}
	}
	var out []JobRequest
	for _, tier := range Tiers {
		if !slices.Contains(tiers, tier) {
			continue
		}
		inner := r[tier]
		ids := make([]string, 0, len(inner))
		for id := range inner {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			out = append(out, JobRequest{Tier: tier, TileSetID: id, ProductIDs: inner[id].IDs()})
		}
	}
	return out
}
