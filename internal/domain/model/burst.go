// Package model contains domain models passed between layers.
package model

import "time"

// BurstProduct is one observed burst record. Values are never mutated once
// parsed.
type BurstProduct struct {
	ProductID       string    `json:"product_id"`
	BurstID         string    `json:"burst_id"`     // normalized, e.g. t042_088905_iw1
	OrbitNumber     int       `json:"orbit_number"` // relative orbit (track) the burst belongs to
	AcquisitionTime time.Time `json:"acquisition_time"`
}

// WindowKey is the comparable form of a TimeWindow, usable as a map key.
type WindowKey struct {
	Start int64
	End   int64
}

// TimeWindow is a closed interval [Start, End] over acquisition times of
// one orbit.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Key returns the map key for w.
func (w TimeWindow) Key() WindowKey {
	return WindowKey{Start: w.Start.UnixNano(), End: w.End.UnixNano()}
}

// Contains reports whether t falls within the closed interval.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Duration returns End - Start.
func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// StrictSubsetOf reports whether w lies inside o and differs from it in at
// least one bound.
func (w TimeWindow) StrictSubsetOf(o TimeWindow) bool {
	inside := !w.Start.Before(o.Start) && !w.End.After(o.End)
	return inside && !(w.Start.Equal(o.Start) && w.End.Equal(o.End))
}
