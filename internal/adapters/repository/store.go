// Package repository holds observed burst products between evaluations.
package repository

import (
	"context"

	"github.com/okian/burstcov/internal/domain/model"
)

// Store provides read/write access to observed burst products.
type Store interface {
	// Add records products in order. Products whose ProductID is already
	// stored are counted as duplicates and otherwise ignored.
	Add(ctx context.Context, products []model.BurstProduct) (added, duplicates int, err error)

	// Snapshot returns a copy of every stored product in discovery order.
	Snapshot(ctx context.Context) []model.BurstProduct

	// Count returns the number of stored products.
	Count(ctx context.Context) int

	// Reset drops every stored product.
	Reset(ctx context.Context)
}
