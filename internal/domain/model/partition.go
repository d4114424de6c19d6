package model

import "slices"

// LandOcean classifies a tile partition's surface.
type LandOcean string

const (
	Water     LandOcean = "water"
	Land      LandOcean = "land"
	WaterLand LandOcean = "water/land"
)

// TilePartition is one MGRS set from the reference database.
// It is built once at load time and shared read-only by all workers.
type TilePartition struct {
	TileSetID          string
	OrbitNumbers       []int               // sorted, unique
	RequiredBurstIDs   map[string]struct{} // never mutated after load
	RequiredBurstCount int
	LandOcean          LandOcean
}

// HasOrbit reports whether orbit contributes bursts to the partition.
func (p *TilePartition) HasOrbit(orbit int) bool {
	_, ok := slices.BinarySearch(p.OrbitNumbers, orbit)
	return ok
}

// Requires reports whether burstID is part of the partition.
func (p *TilePartition) Requires(burstID string) bool {
	_, ok := p.RequiredBurstIDs[burstID]
	return ok
}

// PureOcean reports whether the partition has no land intersection.
func (p *TilePartition) PureOcean() bool {
	return p.LandOcean == Water
}

// SortedBurstIDs returns the required burst ids in lexical order.
func (p *TilePartition) SortedBurstIDs() []string {
	ids := make([]string, 0, len(p.RequiredBurstIDs))
	for id := range p.RequiredBurstIDs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
