package coverage_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/burstcov/internal/domain/coverage"
	"github.com/okian/burstcov/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func burst(productID, burstID string, orbit, minute int) model.BurstProduct {
	return model.BurstProduct{
		ProductID:       productID,
		BurstID:         burstID,
		OrbitNumber:     orbit,
		AcquisitionTime: t0.Add(time.Duration(minute) * time.Minute),
	}
}

func partition(id string, orbits []int, bursts ...string) *model.TilePartition {
	req := make(map[string]struct{}, len(bursts))
	for _, b := range bursts {
		req[b] = struct{}{}
	}
	return &model.TilePartition{
		TileSetID:          id,
		OrbitNumbers:       orbits,
		RequiredBurstIDs:   req,
		RequiredBurstCount: len(req),
		LandOcean:          model.Land,
	}
}

func TestClassify(t *testing.T) {
	Convey("Given coverage ratios", t, func() {
		Convey("Then exactly full coverage is always Full", func() {
			So(coverage.Classify(3, 3, 100), ShouldEqual, model.TierFull)
			So(coverage.Classify(3, 3, 0), ShouldEqual, model.TierFull)
			So(coverage.Classify(5, 3, 50), ShouldEqual, model.TierFull)
		})

		Convey("Then two of three is Partial at 100% and Target at 66%", func() {
			So(coverage.Classify(2, 3, 100), ShouldEqual, model.TierPartial)
			So(coverage.Classify(2, 3, 67), ShouldEqual, model.TierPartial)
			So(coverage.Classify(2, 3, 66), ShouldEqual, model.TierTarget)
		})

		Convey("Then boundary ratios are inclusive", func() {
			So(coverage.Classify(1, 2, 50), ShouldEqual, model.TierTarget)
			So(coverage.Classify(1, 2, 51), ShouldEqual, model.TierPartial)
		})
	})
}

func TestSetMatcher(t *testing.T) {
	window := model.TimeWindow{Start: t0, End: t0.Add(10 * time.Minute)}

	Convey("Given a partition requiring {A,B,C} with {A,B} observed", t, func() {
		p := partition("MS_1", []int{1}, "A", "B", "C")
		products := []model.BurstProduct{
			burst("pA", "A", 1, 0),
			burst("pB", "B", 1, 2),
			burst("pX", "X", 1, 3), // not required
		}
		idx := coverage.Index{}
		idx.Add(coverage.BuildOrbitIndex(1, []model.TimeWindow{window}, products))

		Convey("When matching with the default target", func() {
			m, err := coverage.NewMatcher().Match(p, window, idx)

			Convey("Then the ratio is 2/3 and the tier Partial", func() {
				So(err, ShouldBeNil)
				So(m.TileSetID, ShouldEqual, "MS_1")
				So(m.Found, ShouldEqual, 2)
				So(m.Required, ShouldEqual, 3)
				So(m.Ratio(), ShouldAlmostEqual, 2.0/3.0, 1e-9)
				So(m.Tier, ShouldEqual, model.TierPartial)
				So(m.Products.IDs(), ShouldResemble, []string{"pA", "pB"})
			})
		})

		Convey("When matching with a 60% target", func() {
			m, err := coverage.NewMatcher(coverage.WithTargetPercent(60)).Match(p, window, idx)

			Convey("Then the tier is Target", func() {
				So(err, ShouldBeNil)
				So(m.Tier, ShouldEqual, model.TierTarget)
			})
		})
	})

	Convey("Given two revisions of the same burst in one window", t, func() {
		p := partition("MS_2", []int{1}, "A")
		idx := coverage.Index{}
		idx.Add(coverage.BuildOrbitIndex(1, []model.TimeWindow{window}, []model.BurstProduct{
			burst("pA-rev2", "A", 1, 1),
			burst("pA-rev1", "A", 1, 0),
		}))

		Convey("Then the first recorded revision represents the burst", func() {
			m, err := coverage.NewMatcher().Match(p, window, idx)
			So(err, ShouldBeNil)
			So(m.Products.IDs(), ShouldResemble, []string{"pA-rev2"})
			So(m.Tier, ShouldEqual, model.TierFull)
		})
	})

	Convey("Given a partition spanning two orbits sharing a window", t, func() {
		p := partition("MS_3", []int{1, 2}, "A1", "B2")
		idx := coverage.Index{}
		idx.Add(coverage.BuildOrbitIndex(1, []model.TimeWindow{window}, []model.BurstProduct{burst("p1", "A1", 1, 0)}))
		idx.Add(coverage.BuildOrbitIndex(2, []model.TimeWindow{window}, []model.BurstProduct{burst("p2", "B2", 2, 4)}))

		Convey("Then findings are unioned across orbits", func() {
			m, err := coverage.NewMatcher().Match(p, window, idx)
			So(err, ShouldBeNil)
			So(m.Products.IDs(), ShouldResemble, []string{"p1", "p2"})
			So(m.Tier, ShouldEqual, model.TierFull)
		})
	})

	Convey("Given degenerate inputs", t, func() {
		matcher := coverage.NewMatcher()

		Convey("When the partition is nil or empty", func() {
			m1, err1 := matcher.Match(nil, window, coverage.Index{})
			m2, err2 := matcher.Match(&model.TilePartition{TileSetID: "E"}, window, coverage.Index{})

			Convey("Then an empty product set is returned without error", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(m1.Products.Empty(), ShouldBeTrue)
				So(m2.Products.Empty(), ShouldBeTrue)
			})
		})

		Convey("When none of the partition's orbits were observed", func() {
			m, err := matcher.Match(partition("MS_4", []int{9}, "A"), window, coverage.Index{})
			So(err, ShouldBeNil)
			So(m.Products.Empty(), ShouldBeTrue)
		})

		Convey("When the required count is not positive", func() {
			p := partition("MS_5", []int{1}, "A")
			p.RequiredBurstCount = 0
			_, err := matcher.Match(p, window, coverage.Index{})
			So(errors.Is(err, coverage.ErrInvalidPartition), ShouldBeTrue)
		})

		Convey("When the target option is out of range", func() {
			So(coverage.NewMatcher(coverage.WithTargetPercent(140)).TargetPercent(), ShouldEqual, 100)
			So(coverage.NewMatcher(coverage.WithTargetPercent(-1)).TargetPercent(), ShouldEqual, 100)
		})
	})
}

func TestBuildOrbitIndex(t *testing.T) {
	Convey("Given overlapping windows", t, func() {
		w1 := model.TimeWindow{Start: t0, End: t0.Add(5 * time.Minute)}
		w2 := model.TimeWindow{Start: t0.Add(3 * time.Minute), End: t0.Add(9 * time.Minute)}
		oi := coverage.BuildOrbitIndex(4, []model.TimeWindow{w1, w2}, []model.BurstProduct{
			burst("p0", "A", 4, 0),
			burst("p4", "B", 4, 4),
			burst("p9", "C", 4, 9),
		})

		Convey("Then a product lands in every window containing it", func() {
			So(oi.Bursts[w1.Key()], ShouldContainKey, "A")
			So(oi.Bursts[w1.Key()], ShouldContainKey, "B")
			So(oi.Bursts[w2.Key()], ShouldContainKey, "B")
			So(oi.Bursts[w2.Key()], ShouldContainKey, "C")
			So(oi.Bursts[w2.Key()], ShouldNotContainKey, "A")

			idx := coverage.Index{}
			idx.Add(oi)
			So(idx.HasWindow(4, w2.Key()), ShouldBeTrue)
			So(idx.HasWindow(5, w2.Key()), ShouldBeFalse)
		})
	})
}
