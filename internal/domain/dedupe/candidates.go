package dedupe

import "github.com/okian/burstcov/internal/domain/model"

// Candidates accumulates the distinct product sets seen for one bucket.
// It is not safe for concurrent use; the evaluator folds task results into
// it from a single goroutine.
type Candidates struct {
	seen map[string]struct{}
	sets []model.ProductSet
}

// NewCandidates creates an empty accumulator.
func NewCandidates() *Candidates {
	return &Candidates{seen: make(map[string]struct{})}
}

// SeenAndRecord records ps unless an equal set was recorded before.
// Returns true if ps was already seen. Empty sets are never recorded and
// report true.
func (c *Candidates) SeenAndRecord(ps model.ProductSet) bool {
	if ps.Empty() {
		return true
	}
	k := ps.Key()
	if _, ok := c.seen[k]; ok {
		return true
	}
	c.seen[k] = struct{}{}
	c.sets = append(c.sets, ps)
	return false
}

// Final returns the selected set for the bucket.
func (c *Candidates) Final() (model.ProductSet, bool) { return Select(c.sets) }
