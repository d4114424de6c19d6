// Package refdb loads the reference database mapping tile partitions to the
// bursts that cover them.
package refdb

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/okian/burstcov/pkg/logger"
	"github.com/okian/burstcov/pkg/metrics"
)

const fullKey = "full"

// Loader fetches, decodes and memoizes the reference table once per filter
// setting. Concurrent first loads share one fetch, whichever filter they ask
// for. Failed loads are not memoized.
type Loader struct {
	source Source
	logger logger.Logger
	group  singleflight.Group

	mu     sync.RWMutex
	tables map[bool]*Table
}

// NewLoader creates a Loader reading from source.
func NewLoader(source Source, opts ...Option) *Loader {
	l := &Loader{
		source: source,
		logger: logger.Nop(),
		tables: make(map[bool]*Table, 2),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the table, dropping pure-ocean partitions when filterNonOcean
// is set. The shared load is not tied to any one caller's ctx: a caller whose
// ctx ends gets ctx.Err() while the load carries on for the others. Every
// other error wraps ErrReferenceDataUnavailable.
func (l *Loader) Load(ctx context.Context, filterNonOcean bool) (*Table, error) {
	if t, ok := l.cached(filterNonOcean); ok {
		return t, nil
	}

	key := "all"
	if filterNonOcean {
		key = "land"
	}
	shared := context.WithoutCancel(ctx)
	ch := l.group.DoChan(key, func() (any, error) {
		return l.load(shared, filterNonOcean)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*Table), nil
	}
}

func (l *Loader) load(ctx context.Context, filterNonOcean bool) (*Table, error) {
	if t, ok := l.cached(filterNonOcean); ok {
		return t, nil
	}

	full, err := l.full(ctx)
	if err != nil {
		metrics.RecordReferenceLoad("error")
		l.logger.Error(ctx, "reference load failed", logger.Error(err))
		return nil, err
	}
	t := full
	if filterNonOcean {
		t = full.WithoutPureOcean()
	}

	l.mu.Lock()
	l.tables[filterNonOcean] = t
	l.mu.Unlock()

	metrics.RecordReferenceLoad("ok")
	metrics.UpdateReferencePartitions(t.Len())
	l.logger.Info(ctx, "reference table loaded",
		logger.Int("partitions", t.Len()),
		logger.Bool("filter_non_ocean", filterNonOcean),
	)
	return t, nil
}

// full returns the unfiltered table, reusing it when already loaded. Both
// filter modes fetch through the same flight.
func (l *Loader) full(ctx context.Context) (*Table, error) {
	if t, ok := l.cached(false); ok {
		return t, nil
	}
	v, err, _ := l.group.Do(fullKey, func() (any, error) {
		if t, ok := l.cached(false); ok {
			return t, nil
		}
		return l.fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

func (l *Loader) cached(filterNonOcean bool) (*Table, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.tables[filterNonOcean]
	return t, ok
}

func (l *Loader) fetch(ctx context.Context) (*Table, error) {
	data, err := l.source.Fetch(ctx)
	if err != nil {
		return nil, wrapUnavailable(err)
	}
	parts, err := Decode(data)
	if err != nil {
		return nil, wrapUnavailable(err)
	}
	t, err := NewTable(parts)
	if err != nil {
		return nil, wrapUnavailable(err)
	}

	l.mu.Lock()
	l.tables[false] = t
	l.mu.Unlock()
	return t, nil
}

func wrapUnavailable(err error) error {
	if errors.Is(err, ErrReferenceDataUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrReferenceDataUnavailable, err)
}
