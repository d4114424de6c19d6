package dedupe_test

import (
	"math/rand"
	"slices"
	"testing"

	dedupe "github.com/okian/burstcov/internal/domain/dedupe"
	"github.com/okian/burstcov/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func set(ids ...string) model.ProductSet { return model.NewProductSet(ids...) }

func keys(sets []model.ProductSet) []string {
	out := make([]string, len(sets))
	for i, s := range sets {
		out[i] = s.String()
	}
	return out
}

func TestReduce(t *testing.T) {
	Convey("Given sets from two orbits for the same bucket", t, func() {
		in := []model.ProductSet{set("p1", "p2"), set("p1", "p2", "p3")}

		Convey("Then only the superset survives", func() {
			So(keys(dedupe.Reduce(in)), ShouldResemble, []string{"{p1,p2,p3}"})
		})
	})

	Convey("Given empty, duplicate and incomparable sets", t, func() {
		in := []model.ProductSet{
			{},
			set("b", "c"),
			set("a"),
			set("b", "c"),
			set("a", "d"),
			set("c"),
		}

		Convey("Then empties and duplicates are dropped and subsets removed", func() {
			So(keys(dedupe.Reduce(in)), ShouldResemble, []string{"{a,d}", "{b,c}"})
		})
	})

	Convey("Given nothing but empty sets", t, func() {
		So(dedupe.Reduce([]model.ProductSet{{}, {}}), ShouldBeEmpty)
		So(dedupe.Reduce(nil), ShouldBeEmpty)
	})

	Convey("Given random collections", t, func() {
		rng := rand.New(rand.NewSource(11)) //nolint:gosec // deterministic test data
		universe := []string{"a", "b", "c", "d", "e", "f"}
		mismatches := 0

		for round := 0; round < 300; round++ {
			var in []model.ProductSet
			for i := 0; i < 1+rng.Intn(8); i++ {
				var ids []string
				for _, u := range universe {
					if rng.Intn(3) == 0 {
						ids = append(ids, u)
					}
				}
				in = append(in, set(ids...))
			}
			once := dedupe.Reduce(in)

			shuffled := append([]model.ProductSet(nil), in...)
			rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

			if !slices.Equal(keys(dedupe.Reduce(once)), keys(once)) ||
				!slices.Equal(keys(dedupe.Reduce(shuffled)), keys(once)) {
				mismatches++
			}
			for i, a := range once {
				for j, b := range once {
					if i != j && a.StrictSubsetOf(b) {
						mismatches++
					}
				}
			}
		}

		Convey("Then Reduce is idempotent, order independent and yields an antichain", func() {
			So(mismatches, ShouldEqual, 0)
		})
	})
}

func TestSelect(t *testing.T) {
	Convey("Given several maximal sets", t, func() {
		Convey("When one is largest", func() {
			best, ok := dedupe.Select([]model.ProductSet{set("x", "y"), set("a", "b", "c"), set("z")})
			So(ok, ShouldBeTrue)
			So(best.String(), ShouldEqual, "{a,b,c}")
		})

		Convey("When cardinalities tie", func() {
			in := []model.ProductSet{set("b", "c"), set("a", "z"), set("a", "y")}
			best, ok := dedupe.Select(in)

			Convey("Then the lexicographically smallest wins regardless of order", func() {
				So(ok, ShouldBeTrue)
				So(best.String(), ShouldEqual, "{a,y}")
				rev, _ := dedupe.Select([]model.ProductSet{in[2], in[1], in[0]})
				So(rev.Equal(best), ShouldBeTrue)
			})
		})

		Convey("When no candidate is usable", func() {
			_, ok := dedupe.Select([]model.ProductSet{{}})
			So(ok, ShouldBeFalse)
		})
	})
}

func TestCandidates(t *testing.T) {
	Convey("Given a candidates accumulator", t, func() {
		c := dedupe.NewCandidates()

		Convey("When recording sets", func() {
			So(c.SeenAndRecord(set("p1", "p2")), ShouldBeFalse)
			So(c.SeenAndRecord(set("p2", "p1")), ShouldBeTrue)
			So(c.SeenAndRecord(model.ProductSet{}), ShouldBeTrue)
			So(c.SeenAndRecord(set("p1", "p2", "p3")), ShouldBeFalse)

			Convey("Then only distinct non-empty sets count and the superset is final", func() {
				final, ok := c.Final()
				So(ok, ShouldBeTrue)
				So(final.IDs(), ShouldResemble, []string{"p1", "p2", "p3"})
			})
		})

		Convey("When nothing was recorded", func() {
			_, ok := c.Final()
			So(ok, ShouldBeFalse)
		})
	})
}
