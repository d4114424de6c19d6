package coverage

import "github.com/okian/burstcov/internal/domain/model"

// Index maps orbit number -> window -> burst id -> products recorded for that
// burst inside the window, in discovery order.
//
// An Index is built completely before matching starts and is only read
// afterwards; it is safe for concurrent readers.
type Index map[int]map[model.WindowKey]map[string][]model.BurstProduct

// OrbitIndex is the per-orbit slice of an Index together with the orbit's
// finalized windows.
type OrbitIndex struct {
	Orbit   int
	Windows []model.TimeWindow
	Bursts  map[model.WindowKey]map[string][]model.BurstProduct
}

// BuildOrbitIndex assigns every product to each window containing its
// acquisition time. products must all belong to orbit and be in discovery
// order.
func BuildOrbitIndex(orbit int, windows []model.TimeWindow, products []model.BurstProduct) OrbitIndex {
	oi := OrbitIndex{
		Orbit:   orbit,
		Windows: windows,
		Bursts:  make(map[model.WindowKey]map[string][]model.BurstProduct, len(windows)),
	}
	for _, w := range windows {
		byBurst := make(map[string][]model.BurstProduct)
		for _, bp := range products {
			if w.Contains(bp.AcquisitionTime) {
				byBurst[bp.BurstID] = append(byBurst[bp.BurstID], bp)
			}
		}
		oi.Bursts[w.Key()] = byBurst
	}
	return oi
}

// Add merges oi into the index. Not safe for concurrent use; callers merge
// per-orbit results in a single goroutine.
func (idx Index) Add(oi OrbitIndex) {
	idx[oi.Orbit] = oi.Bursts
}

// HasWindow reports whether orbit has window w.
func (idx Index) HasWindow(orbit int, w model.WindowKey) bool {
	_, ok := idx[orbit][w]
	return ok
}
