// Package coverage scores one tile partition against one time window.
package coverage

import (
	"fmt"

	"github.com/okian/burstcov/internal/domain/model"
)

const (
	fullPercent          = 100
	defaultTargetPercent = fullPercent
)

// Match is the outcome of matching one (partition, window) pair.
type Match struct {
	TileSetID string
	Window    model.TimeWindow
	Products  model.ProductSet
	Tier      model.CoverageTier
	Found     int
	Required  int
}

// Ratio is Found / Required.
func (m Match) Ratio() float64 {
	if m.Required == 0 {
		return 0
	}
	return float64(m.Found) / float64(m.Required)
}

// Matcher scores a partition against a window of an index.
type Matcher interface {
	Match(p *model.TilePartition, w model.TimeWindow, idx Index) (Match, error)
}

// Option applies a configuration option to the SetMatcher.
type Option func(*SetMatcher)

// WithTargetPercent sets the Target tier threshold. Values outside 0-100 are
// ignored.
func WithTargetPercent(percent int) Option {
	return func(m *SetMatcher) {
		if percent >= 0 && percent <= fullPercent {
			m.targetPercent = percent
		}
	}
}

// SetMatcher implements Matcher by burst-set intersection.
type SetMatcher struct {
	targetPercent int
}

// NewMatcher creates a matcher; the Target threshold defaults to 100%.
func NewMatcher(opts ...Option) *SetMatcher {
	m := &SetMatcher{targetPercent: defaultTargetPercent}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TargetPercent returns the configured threshold.
func (m *SetMatcher) TargetPercent() int { return m.targetPercent }

// Match unions the bursts observed in w across the partition's orbits,
// intersects them with the required set and classifies the ratio. One
// product, the first recorded, represents each found burst.
//
// A missing or empty partition, or one whose orbits are absent from idx,
// yields a Match with an empty product set and no meaningful tier; callers
// drop those before aggregation.
func (m *SetMatcher) Match(p *model.TilePartition, w model.TimeWindow, idx Index) (Match, error) {
	if p == nil || len(p.RequiredBurstIDs) == 0 {
		return Match{Window: w}, nil
	}
	if p.RequiredBurstCount <= 0 {
		return Match{TileSetID: p.TileSetID, Window: w}, fmt.Errorf("%w: %s requires %d bursts", ErrInvalidPartition, p.TileSetID, p.RequiredBurstCount)
	}

	key := w.Key()
	var ids []string
	for _, orbit := range p.OrbitNumbers {
		byBurst, ok := idx[orbit][key]
		if !ok {
			continue
		}
		for burstID, products := range byBurst {
			if len(products) == 0 || !p.Requires(burstID) {
				continue
			}
			ids = append(ids, products[0].ProductID)
		}
	}

	found := len(ids)
	return Match{
		TileSetID: p.TileSetID,
		Window:    w,
		Products:  model.NewProductSet(ids...),
		Tier:      Classify(found, p.RequiredBurstCount, m.targetPercent),
		Found:     found,
		Required:  p.RequiredBurstCount,
	}, nil
}

// Classify maps found/required onto exactly one tier. Integer arithmetic
// keeps ratio boundaries exact.
func Classify(found, required, targetPercent int) model.CoverageTier {
	switch {
	case found >= required:
		return model.TierFull
	case found*fullPercent >= targetPercent*required:
		return model.TierTarget
	default:
		return model.TierPartial
	}
}
