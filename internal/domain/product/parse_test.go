package product_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/burstcov/internal/domain/product"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Given a well formed product id", t, func() {
		id := "OPERA_L2_RTC-S1_T042-088905-IW1_20231009T140757Z_20231010T204936Z_S1A_30_v1.0"

		Convey("When parsing", func() {
			bp, err := product.Parse(id)

			Convey("Then burst id, orbit and acquisition time are extracted", func() {
				So(err, ShouldBeNil)
				So(bp.ProductID, ShouldEqual, id)
				So(bp.BurstID, ShouldEqual, "t042_088905_iw1")
				So(bp.OrbitNumber, ShouldEqual, 42)
				So(bp.AcquisitionTime.Equal(time.Date(2023, 10, 9, 14, 7, 57, 0, time.UTC)), ShouldBeTrue)
			})
		})
	})

	Convey("Given malformed product ids", t, func() {
		cases := []string{
			"",
			"garbage",
			"OPERA_L2_RTC-S1_T042-088905-IW4_20231009T140757Z_20231010T204936Z_S1A_30_v1.0",
			"OPERA_L2_RTC-S1_T042-088905-IW1_20231009T140757Z_20231010T204936Z_S1C_30_v1.0",
			"OPERA_L2_RTC-S1_T042-088905-IW1_20231399T140757Z_20231010T204936Z_S1A_30_v1.0",
		}

		Convey("Then each fails with ErrMalformedBurstIdentifier", func() {
			for _, id := range cases {
				_, err := product.Parse(id)
				So(errors.Is(err, product.ErrMalformedBurstIdentifier), ShouldBeTrue)
			}
		})
	})
}

func TestParseAll(t *testing.T) {
	Convey("Given a mix of valid and invalid ids", t, func() {
		ids := []string{
			"OPERA_L2_RTC-S1_T001-000002-IW2_20240101T000010Z_20240102T000000Z_S1B_30_v1.0",
			"not-a-product",
			"  ",
			"OPERA_L2_RTC-S1_T001-000001-IW1_20240101T000000Z_20240102T000000Z_S1A_30_v1.0",
		}

		Convey("When parsing all", func() {
			got, errs := product.ParseAll(ids)

			Convey("Then valid records keep discovery order and bad ones are reported", func() {
				So(len(got), ShouldEqual, 2)
				So(got[0].BurstID, ShouldEqual, "t001_000002_iw2")
				So(got[1].BurstID, ShouldEqual, "t001_000001_iw1")
				So(len(errs), ShouldEqual, 1)
				So(errors.Is(errs[0], product.ErrMalformedBurstIdentifier), ShouldBeTrue)
			})
		})
	})
}

func TestOrbitFromBurstID(t *testing.T) {
	Convey("Given normalized burst ids", t, func() {
		orbit, err := product.OrbitFromBurstID("t071_151200_iw3")
		So(err, ShouldBeNil)
		So(orbit, ShouldEqual, 71)

		_, err = product.OrbitFromBurstID("T071-151200-IW3")
		So(errors.Is(err, product.ErrMalformedBurstIdentifier), ShouldBeTrue)

		So(product.FormatBurstID(7, "000123", "IW2"), ShouldEqual, "t007_000123_iw2")
	})
}
