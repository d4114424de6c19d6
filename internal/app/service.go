// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/okian/burstcov/internal/adapters/refdb"
	"github.com/okian/burstcov/internal/adapters/repository"
	"github.com/okian/burstcov/internal/domain/evaluator"
	"github.com/okian/burstcov/internal/domain/model"
	"github.com/okian/burstcov/internal/domain/product"
	"github.com/okian/burstcov/pkg/logger"
	"github.com/okian/burstcov/pkg/metrics"
)

const (
	defaultTargetPercent = 100
	defaultMaxProductIDs = 100_000
)

// Request selects what one evaluation runs over. Empty ProductIDs means the
// ingest store's current contents.
type Request struct {
	ProductIDs            []string
	TargetCoveragePercent *int
}

// Result is an evaluation report plus what the service derived around it.
type Result struct {
	*evaluator.Report
	Actionable []model.JobRequest `json:"actionable"`
	Malformed  []string           `json:"malformed"`
}

// IngestResult summarizes one Ingest call.
type IngestResult struct {
	Accepted   int      `json:"accepted"`
	Duplicates int      `json:"duplicates"`
	Rejected   []string `json:"rejected"`
}

// Service implements the API dependencies for the burst coverage evaluator.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	loader    *refdb.Loader
	evaluator *evaluator.Evaluator

	// Configuration
	targetPercent  int
	filterNonOcean bool
	maxProductIDs  int

	// State
	started     bool
	evaluations atomic.Int64
	lastRun     atomic.Pointer[evaluator.Report]

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithReferenceLoader sets the reference table loader. Required.
func WithReferenceLoader(l *refdb.Loader) Option {
	return func(s *Service) {
		s.loader = l
	}
}

// WithStore replaces the in-memory ingest store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithEvaluator replaces the default evaluator.
func WithEvaluator(e *evaluator.Evaluator) Option {
	return func(s *Service) {
		if e != nil {
			s.evaluator = e
		}
	}
}

// WithTargetPercent sets the default Target tier threshold.
func WithTargetPercent(p int) Option {
	return func(s *Service) {
		if p >= 0 && p <= 100 {
			s.targetPercent = p
		}
	}
}

// WithFilterNonOcean controls whether pure-ocean partitions are evaluated.
func WithFilterNonOcean(filter bool) Option {
	return func(s *Service) {
		s.filterNonOcean = filter
	}
}

// WithMaxProductIDs caps product ids accepted per call.
func WithMaxProductIDs(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxProductIDs = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		targetPercent:  defaultTargetPercent,
		filterNonOcean: true,
		maxProductIDs:  defaultMaxProductIDs,
		logger:         nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start preloads the reference table. A table that cannot be loaded is
// fatal.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.loader == nil {
		return ErrNoReferenceLoader
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.evaluator == nil {
		s.evaluator = evaluator.New(evaluator.WithLogger(s.logger.Named("evaluator")))
	}

	s.logger.Info(ctx, "starting burst coverage service...")

	table, err := s.loader.Load(ctx, s.filterNonOcean)
	if err != nil {
		return fmt.Errorf("preload reference table: %w", err)
	}

	s.started = true
	s.logger.Info(ctx, "burst coverage service started",
		logger.Int("partitions", table.Len()),
		logger.Int("targetPercent", s.targetPercent),
		logger.Bool("filterNonOcean", s.filterNonOcean),
	)

	return nil
}

// Stop marks the service stopped. Stored bursts are kept.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "burst coverage service stopped")
}

func (s *Service) running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Ingest parses ids and records the well-formed ones in the store.
func (s *Service) Ingest(ctx context.Context, ids []string) (IngestResult, error) {
	if !s.running() {
		return IngestResult{}, ErrNotStarted
	}
	if len(ids) > s.maxProductIDs {
		return IngestResult{}, fmt.Errorf("%w: %d > %d", ErrTooManyProductIDs, len(ids), s.maxProductIDs)
	}

	products, malformed := s.parse(ctx, ids)
	added, dup, err := s.store.Add(ctx, products)
	if err != nil {
		return IngestResult{}, err
	}

	s.logger.Debug(ctx, "bursts ingested",
		logger.Int("accepted", added),
		logger.Int("duplicates", dup),
		logger.Int("rejected", len(malformed)),
	)
	return IngestResult{Accepted: added, Duplicates: dup, Rejected: malformed}, nil
}

// Evaluate runs one evaluation. Errors wrapping
// refdb.ErrReferenceDataUnavailable mean the run could not happen at all;
// an empty Result means nothing reached any tier.
func (s *Service) Evaluate(ctx context.Context, req Request) (*Result, error) {
	if !s.running() {
		return nil, ErrNotStarted
	}
	if len(req.ProductIDs) > s.maxProductIDs {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyProductIDs, len(req.ProductIDs), s.maxProductIDs)
	}

	target := s.targetPercent
	if req.TargetCoveragePercent != nil {
		target = *req.TargetCoveragePercent
	}

	table, err := s.loader.Load(ctx, s.filterNonOcean)
	if err != nil {
		metrics.RecordEvaluationFailed()
		return nil, err
	}

	var observed []model.BurstProduct
	malformed := []string{}
	if len(req.ProductIDs) > 0 {
		observed, malformed = s.parse(ctx, req.ProductIDs)
	} else {
		observed = s.store.Snapshot(ctx)
	}

	report, err := s.evaluator.Evaluate(ctx, observed, table, target)
	if err != nil {
		return nil, err
	}
	s.evaluations.Add(1)
	s.lastRun.Store(report)

	return &Result{
		Report:     report,
		Actionable: report.Result.Actionable(),
		Malformed:  malformed,
	}, nil
}

// parse splits ids into parsed products and malformed ids. Each malformed
// id is logged and skipped.
func (s *Service) parse(ctx context.Context, ids []string) ([]model.BurstProduct, []string) {
	products, errs := product.ParseAll(ids)
	malformed := make([]string, 0, len(errs))
	for _, err := range errs {
		s.logger.Warn(ctx, "skipping malformed burst identifier", logger.Error(err))
		malformed = append(malformed, err.Error())
	}
	metrics.RecordMalformedBursts(len(errs))
	return products, malformed
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":        s.started,
		"targetPercent":  s.targetPercent,
		"filterNonOcean": s.filterNonOcean,
		"evaluations":    s.evaluations.Load(),
	}

	if s.started {
		stats["storedBursts"] = s.store.Count(ctx)
		if table, err := s.loader.Load(ctx, s.filterNonOcean); err == nil {
			stats["partitions"] = table.Len()
		}
		if last := s.lastRun.Load(); last != nil {
			stats["lastRunId"] = last.RunID
			stats["lastRunSelected"] = last.Stats.Selected
			stats["lastRunFailures"] = len(last.Failures)
			stats["lastRunElapsedMs"] = last.Stats.ElapsedMS
		}
	}

	return stats
}

// Reset empties the ingest store.
func (s *Service) Reset(ctx context.Context) {
	s.mu.RLock()
	st := s.store
	s.mu.RUnlock()
	if st != nil {
		st.Reset(ctx)
	}
}

// ProductIDsFromLines splits newline-separated text into trimmed, non-empty
// ids. Lines starting with '#' are ignored.
func ProductIDsFromLines(text string) []string {
	var ids []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	return ids
}

