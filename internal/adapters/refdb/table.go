package refdb

import (
	"fmt"
	"slices"
	"strings"

	"github.com/okian/burstcov/internal/domain/model"
)

// Table is the loaded reference database. It is immutable once built and
// safe to share between goroutines.
type Table struct {
	partitions []*model.TilePartition
	byOrbit    map[int][]*model.TilePartition
}

// NewTable indexes partitions. Duplicate tile set ids are rejected.
func NewTable(partitions []*model.TilePartition) (*Table, error) {
	t := &Table{
		partitions: slices.Clone(partitions),
		byOrbit:    make(map[int][]*model.TilePartition),
	}
	slices.SortFunc(t.partitions, func(a, b *model.TilePartition) int {
		return strings.Compare(a.TileSetID, b.TileSetID)
	})
	for i, p := range t.partitions {
		if i > 0 && t.partitions[i-1].TileSetID == p.TileSetID {
			return nil, fmt.Errorf("%w: duplicate mgrs_set_id %s", ErrMalformedRow, p.TileSetID)
		}
		for _, o := range p.OrbitNumbers {
			t.byOrbit[o] = append(t.byOrbit[o], p)
		}
	}
	return t, nil
}

// WithoutPureOcean returns a table holding only partitions that touch land.
func (t *Table) WithoutPureOcean() *Table {
	kept := make([]*model.TilePartition, 0, len(t.partitions))
	for _, p := range t.partitions {
		if !p.PureOcean() {
			kept = append(kept, p)
		}
	}
	// ids are already unique
	out, _ := NewTable(kept)
	return out
}

// Len returns the number of partitions.
func (t *Table) Len() int { return len(t.partitions) }

// ByOrbit returns partitions with at least one burst on orbit, sorted by id.
func (t *Table) ByOrbit(orbit int) []*model.TilePartition { return t.byOrbit[orbit] }
