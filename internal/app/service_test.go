package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/okian/burstcov/internal/adapters/refdb"
	service "github.com/okian/burstcov/internal/app"
	"github.com/okian/burstcov/internal/config"
	"github.com/okian/burstcov/internal/domain/model"
	"github.com/okian/burstcov/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

const table = `
- mgrs_set_id: MS_1_1
  bursts: "['t001_000001_iw1', 't001_000001_iw2']"
  land_ocean_flag: land
- mgrs_set_id: MS_1_2
  bursts: "['t001_000001_iw1', 't001_000002_iw1', 't001_000003_iw1']"
  land_ocean_flag: water/land
- mgrs_set_id: MS_1_3
  bursts: "['t001_000001_iw2']"
  land_ocean_flag: water
`

const (
	pA = "OPERA_L2_RTC-S1_T001-000001-IW1_20240310T050000Z_20240311T000000Z_S1A_30_v1.0"
	pB = "OPERA_L2_RTC-S1_T001-000001-IW2_20240310T050003Z_20240311T000000Z_S1A_30_v1.0"
	pC = "OPERA_L2_RTC-S1_T001-000002-IW1_20240310T050006Z_20240311T000000Z_S1A_30_v1.0"
)

func writeTable(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "db.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newService(path string, opts ...service.Option) *service.Service {
	loader := refdb.NewLoader(refdb.FileSource{Path: path})
	return service.New(append([]service.Option{
		service.WithReferenceLoader(loader),
		service.WithLogger(logger.Nop()),
	}, opts...)...)
}

func TestService_Start(t *testing.T) {
	Convey("Given a service over a readable table", t, func() {
		svc := newService(writeTable(t, table))
		defer svc.Stop()

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then it starts and reports the filtered table", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats["started"], ShouldBeTrue)
				So(stats["partitions"], ShouldEqual, 2)
				So(stats["storedBursts"], ShouldEqual, 0)
			})

			Convey("Then starting again is a no-op", func() {
				So(svc.Start(context.Background()), ShouldBeNil)
			})
		})
	})

	Convey("Given a service whose table is missing", t, func() {
		svc := newService(filepath.Join(t.TempDir(), "absent.yaml"))
		err := svc.Start(context.Background())

		Convey("Then start fails with reference data unavailable", func() {
			So(errors.Is(err, refdb.ErrReferenceDataUnavailable), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldBeFalse)
		})
	})

	Convey("Given a service reset while it is starting", t, func() {
		svc := newService(writeTable(t, table))
		defer svc.Stop()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); _ = svc.Start(context.Background()) }()
		go func() { defer wg.Done(); svc.Reset(context.Background()) }()
		wg.Wait()

		Convey("Then both complete and the store is empty", func() {
			So(svc.GetStats()["started"], ShouldBeTrue)
			So(svc.GetStats()["storedBursts"], ShouldEqual, 0)
		})
	})

	Convey("Given a service without a loader", t, func() {
		err := service.New(service.WithLogger(logger.Nop())).Start(context.Background())
		So(errors.Is(err, service.ErrNoReferenceLoader), ShouldBeTrue)
	})

	Convey("Given a service that was never started", t, func() {
		svc := newService(writeTable(t, table))
		_, err := svc.Ingest(context.Background(), []string{pA})
		So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		_, err = svc.Evaluate(context.Background(), service.Request{})
		So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
	})
}

func TestService_IngestAndEvaluate(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := newService(writeTable(t, table), service.WithMaxProductIDs(5))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When ingesting a mix of good, duplicate and malformed ids", func() {
			res, err := svc.Ingest(ctx, []string{pA, "not-a-product", pB, pA})

			Convey("Then each is accounted for", func() {
				So(err, ShouldBeNil)
				So(res.Accepted, ShouldEqual, 2)
				So(res.Duplicates, ShouldEqual, 1)
				So(len(res.Rejected), ShouldEqual, 1)
				So(svc.GetStats()["storedBursts"], ShouldEqual, 2)
			})

			Convey("Then evaluating the store finds full coverage", func() {
				out, err := svc.Evaluate(ctx, service.Request{})
				So(err, ShouldBeNil)
				ps, ok := out.Result.Get(model.TierFull, "MS_1_1")
				So(ok, ShouldBeTrue)
				So(ps.Len(), ShouldEqual, 2)

				// MS_1_3 is pure ocean and filtered out
				_, ok = out.Result.Get(model.TierFull, "MS_1_3")
				So(ok, ShouldBeFalse)

				So(len(out.Actionable), ShouldEqual, 1)
				So(out.Actionable[0].TileSetID, ShouldEqual, "MS_1_1")
				So(svc.GetStats()["lastRunId"], ShouldEqual, out.RunID)
			})

			Convey("Then Reset empties the store", func() {
				svc.Reset(ctx)
				So(svc.GetStats()["storedBursts"], ShouldEqual, 0)
			})
		})

		Convey("When evaluating explicit ids with a lowered target", func() {
			target := 60
			out, err := svc.Evaluate(ctx, service.Request{
				ProductIDs:            []string{pA, pC, "garbage"},
				TargetCoveragePercent: &target,
			})

			Convey("Then two of three reaches Target and the bad id is reported", func() {
				So(err, ShouldBeNil)
				_, ok := out.Result.Get(model.TierTarget, "MS_1_2")
				So(ok, ShouldBeTrue)
				So(len(out.Malformed), ShouldEqual, 1)
				So(svc.GetStats()["storedBursts"], ShouldEqual, 0)
			})
		})

		Convey("When the target override is out of range", func() {
			target := 140
			_, err := svc.Evaluate(ctx, service.Request{ProductIDs: []string{pA}, TargetCoveragePercent: &target})
			So(err, ShouldNotBeNil)
		})

		Convey("When a request exceeds the product id cap", func() {
			_, err := svc.Ingest(ctx, []string{pA, pA, pA, pA, pA, pA})
			So(errors.Is(err, service.ErrTooManyProductIDs), ShouldBeTrue)
		})
	})
}

func TestProductIDsFromLines(t *testing.T) {
	Convey("Given a bursts file body", t, func() {
		ids := service.ProductIDsFromLines("# header\n  a  \n\nb\r\n# c\n")
		So(ids, ShouldResemble, []string{"a", "b"})
	})
}

func TestFromConfig(t *testing.T) {
	Convey("Given a config pointing at a local table", t, func() {
		cfg := config.New()
		cfg.ReferenceDBPath = writeTable(t, table)
		cfg.FilterNonOcean = false
		cfg.TargetCoveragePercent = 50

		svc := service.FromConfig(cfg, logger.Nop())
		defer svc.Stop()

		Convey("Then the built service starts with the configured settings", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			stats := svc.GetStats()
			So(stats["partitions"], ShouldEqual, 3)
			So(stats["targetPercent"], ShouldEqual, 50)
		})
	})
}
