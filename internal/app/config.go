package service

import (
	"time"

	"github.com/okian/burstcov/internal/adapters/refdb"
	"github.com/okian/burstcov/internal/config"
	"github.com/okian/burstcov/internal/domain/evaluator"
	"github.com/okian/burstcov/pkg/logger"
)

// FromConfig builds a Service wired from cfg. The service still has to be
// started.
func FromConfig(cfg *config.Config, log logger.Logger) *Service {
	source := refdb.SourceFor(
		cfg.ReferenceDBPath,
		cfg.ReferenceDBURL,
		cfg.ReferenceDBCachePath,
		time.Duration(cfg.FetchTimeoutMS)*time.Millisecond,
		log.Named("refdb"),
	)
	loader := refdb.NewLoader(source, refdb.WithLogger(log.Named("refdb")))

	ev := evaluator.New(
		evaluator.WithOrbitWorkers(cfg.OrbitWorkers),
		evaluator.WithWindowWorkers(cfg.WindowWorkers),
		evaluator.WithPartitionsPerTask(cfg.PartitionsPerTask),
		evaluator.WithLogger(log.Named("evaluator")),
	)

	return New(
		WithReferenceLoader(loader),
		WithEvaluator(ev),
		WithTargetPercent(cfg.TargetCoveragePercent),
		WithFilterNonOcean(cfg.FilterNonOcean),
		WithMaxProductIDs(cfg.MaxRequestProductIDs),
		WithLogger(log.Named("service")),
	)
}
