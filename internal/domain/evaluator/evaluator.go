// Package evaluator decides, for every tile partition, which observed burst
// products justify a composite job and at what coverage tier.
//
// A run fans out twice. A coarse pool works per orbit: it first clusters the
// orbit's acquisition times and indexes its bursts by window, then (once every
// orbit index is merged) matches the orbit's windows against the partitions
// that reference it. Each orbit task spreads its matching over a fine pool in
// (window, partition chunk) tasks. All task results are folded into the final
// result in a single goroutine.
package evaluator

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/okian/burstcov/internal/adapters/worker"
	"github.com/okian/burstcov/internal/domain/cluster"
	"github.com/okian/burstcov/internal/domain/coverage"
	"github.com/okian/burstcov/internal/domain/dedupe"
	"github.com/okian/burstcov/internal/domain/model"
	"github.com/okian/burstcov/pkg/logger"
	"github.com/okian/burstcov/pkg/metrics"
)

const (
	defaultPartitionsPerTask = 64
	maxTargetPercent         = 100
)

// Reference is the read-only view of the reference table a run needs.
type Reference interface {
	ByOrbit(orbit int) []*model.TilePartition
	Len() int
}

// Evaluator runs coverage evaluations. It holds no per-run state and is safe
// for concurrent use.
type Evaluator struct {
	orbitWorkers      int
	windowWorkers     int
	partitionsPerTask int
	matcher           coverage.Matcher
	logger            logger.Logger
}

// New creates an Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		orbitWorkers:      runtime.NumCPU(),
		windowWorkers:     runtime.NumCPU() * 4,
		partitionsPerTask: defaultPartitionsPerTask,
		logger:            logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// orbitResult is what one orbit matching task hands back to the fold.
type orbitResult struct {
	matches  []coverage.Match
	failures []TaskFailure
	tasks    int
}

// chunkResult is what one fine task hands back to its orbit task.
type chunkResult struct {
	matches  []coverage.Match
	failures []TaskFailure
}

// Evaluate computes the coverage result for observed against ref.
//
// Only an invalid target, a nil reference or a cancelled ctx fail the call.
// Task failures are collected in Report.Failures and the remaining results
// are still aggregated.
func (e *Evaluator) Evaluate(ctx context.Context, observed []model.BurstProduct, ref Reference, targetPercent int) (*Report, error) {
	if ref == nil {
		return nil, ErrNoReference
	}
	if targetPercent < 0 || targetPercent > maxTargetPercent {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTarget, targetPercent)
	}

	start := time.Now()
	metrics.RecordEvaluation()
	metrics.RecordBurstsObserved(len(observed))

	report := &Report{
		RunID:    uuid.NewString(),
		Result:   model.EvaluationResult{},
		Failures: []TaskFailure{},
		Stats:    Stats{Bursts: len(observed), Partitions: ref.Len()},
	}
	log := e.logger
	log.Info(ctx, "evaluation started",
		logger.String("run_id", report.RunID),
		logger.Int("bursts", len(observed)),
		logger.Int("partitions", ref.Len()),
		logger.Int("target_percent", targetPercent),
	)

	matcher := e.matcher
	if matcher == nil {
		matcher = coverage.NewMatcher(coverage.WithTargetPercent(targetPercent))
	}
	orbitPool := worker.NewPool(e.orbitWorkers, worker.WithName("orbit"), worker.WithLogger(log))
	windowPool := worker.NewPool(e.windowWorkers, worker.WithName("window"), worker.WithLogger(log))

	orbits, byOrbit := groupByOrbit(observed)
	report.Stats.Orbits = len(orbits)

	idx, indexes := e.buildIndex(ctx, orbitPool, orbits, byOrbit, report)
	for _, oi := range indexes {
		report.Stats.Windows += len(oi.Windows)
	}
	metrics.RecordWindows(report.Stats.Windows)

	matchTasks := make([]worker.Task[orbitResult], len(indexes))
	for i, oi := range indexes {
		matchTasks[i] = func(ctx context.Context) (orbitResult, error) {
			return e.matchOrbit(ctx, windowPool, matcher, oi, ref, idx), nil
		}
	}
	outcomes := worker.Run(ctx, orbitPool, matchTasks)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buckets := make(map[model.CoverageTier]map[string]*dedupe.Candidates, len(model.Tiers))
	for i, o := range outcomes {
		if o.Err != nil {
			report.Failures = append(report.Failures,
				newFailure(LevelOrbit, indexes[i].Orbit, model.TimeWindow{}, nil, o.Err))
			continue
		}
		report.Stats.Tasks += o.Value.tasks
		report.Failures = append(report.Failures, o.Value.failures...)
		for _, m := range o.Value.matches {
			fold(buckets, m)
			report.Stats.Matches++
			metrics.RecordMatch(m.Tier.String())
		}
	}

	for _, tier := range model.Tiers {
		for id, c := range buckets[tier] {
			if ps, ok := c.Final(); ok {
				report.Result.Set(tier, id, ps)
				metrics.RecordSelected(tier.String())
			}
		}
	}
	report.Stats.Selected = report.Result.Len()

	for _, f := range report.Failures {
		metrics.RecordTaskFailure(f.Level)
		log.Error(ctx, "task failed",
			logger.String("run_id", report.RunID),
			logger.String("level", f.Level),
			logger.Int("orbit", f.Orbit),
			logger.Time("window_start", f.Window.Start),
			logger.Strings("tile_set_ids", f.TileSetIDs),
			logger.Error(f.Err),
		)
	}

	elapsed := time.Since(start)
	report.Stats.ElapsedMS = float64(elapsed.Microseconds()) / 1000
	metrics.RecordEvaluationDuration(report.Stats.ElapsedMS)
	log.Info(ctx, "evaluation finished",
		logger.String("run_id", report.RunID),
		logger.Int("windows", report.Stats.Windows),
		logger.Int("matches", report.Stats.Matches),
		logger.Int("selected", report.Stats.Selected),
		logger.Int("failures", len(report.Failures)),
		logger.Duration("elapsed", elapsed),
	)
	return report, nil
}

// buildIndex clusters and indexes every orbit on pool, then merges the
// per-orbit indexes. Orbits whose task failed are recorded and left out.
func (e *Evaluator) buildIndex(ctx context.Context, pool *worker.Pool, orbits []int, byOrbit map[int][]model.BurstProduct, report *Report) (coverage.Index, []coverage.OrbitIndex) {
	tasks := make([]worker.Task[coverage.OrbitIndex], len(orbits))
	for i, orbit := range orbits {
		products := byOrbit[orbit]
		tasks[i] = func(context.Context) (coverage.OrbitIndex, error) {
			times := make([]time.Time, len(products))
			for j, p := range products {
				times[j] = p.AcquisitionTime
			}
			return coverage.BuildOrbitIndex(orbit, cluster.ForOrbit(times), products), nil
		}
	}

	idx := make(coverage.Index, len(orbits))
	indexes := make([]coverage.OrbitIndex, 0, len(orbits))
	for i, o := range worker.Run(ctx, pool, tasks) {
		if o.Err != nil {
			report.Failures = append(report.Failures,
				newFailure(LevelOrbit, orbits[i], model.TimeWindow{}, nil, o.Err))
			continue
		}
		idx.Add(o.Value)
		indexes = append(indexes, o.Value)
	}
	return idx, indexes
}

// matchOrbit matches oi's windows against the partitions it owns, spreading
// (window, partition chunk) pairs over pool.
func (e *Evaluator) matchOrbit(ctx context.Context, pool *worker.Pool, matcher coverage.Matcher, oi coverage.OrbitIndex, ref Reference, idx coverage.Index) orbitResult {
	partitions := ref.ByOrbit(oi.Orbit)

	type chunk struct {
		window model.TimeWindow
		parts  []*model.TilePartition
	}
	var chunks []chunk
	for _, w := range oi.Windows {
		key := w.Key()
		owned := make([]*model.TilePartition, 0, len(partitions))
		for _, p := range partitions {
			if owner(p, key, idx) == oi.Orbit {
				owned = append(owned, p)
			}
		}
		for part := range slices.Chunk(owned, e.partitionsPerTask) {
			chunks = append(chunks, chunk{window: w, parts: part})
		}
	}

	tasks := make([]worker.Task[chunkResult], len(chunks))
	for i, c := range chunks {
		tasks[i] = func(context.Context) (chunkResult, error) {
			return matchChunk(matcher, oi.Orbit, c.window, c.parts, idx), nil
		}
	}

	res := orbitResult{tasks: len(tasks)}
	for i, o := range worker.Run(ctx, pool, tasks) {
		if o.Err != nil {
			c := chunks[i]
			res.failures = append(res.failures,
				newFailure(LevelWindow, oi.Orbit, c.window, tileSetIDs(c.parts), o.Err))
			continue
		}
		res.matches = append(res.matches, o.Value.matches...)
		res.failures = append(res.failures, o.Value.failures...)
	}
	return res
}

// matchChunk matches parts against w. A partition that fails to match is
// recorded on its own and does not affect the rest of the chunk.
func matchChunk(matcher coverage.Matcher, orbit int, w model.TimeWindow, parts []*model.TilePartition, idx coverage.Index) chunkResult {
	var res chunkResult
	for _, p := range parts {
		m, err := matcher.Match(p, w, idx)
		if err != nil {
			res.failures = append(res.failures,
				newFailure(LevelPartition, orbit, w, []string{p.TileSetID}, err))
			continue
		}
		if m.Products.Empty() {
			continue
		}
		res.matches = append(res.matches, m)
	}
	return res
}

// owner returns the orbit whose task evaluates (p, key): the smallest of p's
// orbits that has a window with exactly this key. Partitions spanning several
// orbits are thus matched once per distinct window.
func owner(p *model.TilePartition, key model.WindowKey, idx coverage.Index) int {
	for _, o := range p.OrbitNumbers {
		if idx.HasWindow(o, key) {
			return o
		}
	}
	return -1
}

func fold(buckets map[model.CoverageTier]map[string]*dedupe.Candidates, m coverage.Match) {
	byID, ok := buckets[m.Tier]
	if !ok {
		byID = make(map[string]*dedupe.Candidates)
		buckets[m.Tier] = byID
	}
	c, ok := byID[m.TileSetID]
	if !ok {
		c = dedupe.NewCandidates()
		byID[m.TileSetID] = c
	}
	c.SeenAndRecord(m.Products)
}

// groupByOrbit splits observed by orbit, keeping discovery order within each
// orbit. Orbits are returned ascending.
func groupByOrbit(observed []model.BurstProduct) ([]int, map[int][]model.BurstProduct) {
	byOrbit := make(map[int][]model.BurstProduct)
	for _, bp := range observed {
		byOrbit[bp.OrbitNumber] = append(byOrbit[bp.OrbitNumber], bp)
	}
	orbits := make([]int, 0, len(byOrbit))
	for o := range byOrbit {
		orbits = append(orbits, o)
	}
	slices.Sort(orbits)
	return orbits, byOrbit
}

func tileSetIDs(parts []*model.TilePartition) []string {
	ids := make([]string, len(parts))
	for i, p := range parts {
		ids[i] = p.TileSetID
	}
	return ids
}
