package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/burstcov/internal/adapters/refdb"
	. "github.com/smartystreets/goconvey/convey"
)

const table = `
- mgrs_set_id: MS_1_1
  bursts: "['t001_000001_iw1', 't001_000001_iw2']"
  land_ocean_flag: land
- mgrs_set_id: MS_1_2
  bursts: "['t001_000001_iw1', 't001_000002_iw1']"
  land_ocean_flag: land
`

const products = `# observed
OPERA_L2_RTC-S1_T001-000001-IW1_20240310T050000Z_20240311T000000Z_S1A_30_v1.0
OPERA_L2_RTC-S1_T001-000001-IW2_20240310T050003Z_20240311T000000Z_S1A_30_v1.0
`

func execute(args []string, stdin string) (string, error) {
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func TestEvaluateCommand(t *testing.T) {
	Convey("Given a reference table and a bursts file", t, func() {
		dir := t.TempDir()
		db := filepath.Join(dir, "db.yaml")
		list := filepath.Join(dir, "products.txt")
		So(os.WriteFile(db, []byte(table), 0o600), ShouldBeNil)
		So(os.WriteFile(list, []byte(products), 0o600), ShouldBeNil)

		Convey("When printing the full report", func() {
			out, err := execute([]string{"--refdb", db, "--bursts", list}, "")

			Convey("Then it is indented JSON with every section", func() {
				So(err, ShouldBeNil)
				var body map[string]json.RawMessage
				So(json.Unmarshal([]byte(out), &body), ShouldBeNil)
				So(body, ShouldContainKey, "run_id")
				So(body, ShouldContainKey, "actionable")
				So(string(body["result"]), ShouldContainSubstring, "MS_1_1")
				So(out, ShouldContainSubstring, "\n  ")
			})
		})

		Convey("When printing actionable jobs from stdin at 50%", func() {
			out, err := execute([]string{"--refdb", db, "--bursts", "-", "--target", "50", "--actionable-only"}, products)

			Convey("Then both partitions are actionable", func() {
				So(err, ShouldBeNil)
				var jobs []map[string]any
				So(json.Unmarshal([]byte(out), &jobs), ShouldBeNil)
				So(len(jobs), ShouldEqual, 2)
				So(jobs[0]["tier"], ShouldEqual, "full")
				So(jobs[1]["tier"], ShouldEqual, "target")
			})
		})

		Convey("When the reference table is missing", func() {
			_, err := execute([]string{"--refdb", db + ".missing", "--bursts", list}, "")
			So(errors.Is(err, refdb.ErrReferenceDataUnavailable), ShouldBeTrue)
		})

		Convey("When required flags are missing", func() {
			_, err := execute([]string{"--bursts", list}, "")
			So(err, ShouldNotBeNil)
			_, err = execute([]string{"--refdb", db}, "")
			So(err, ShouldNotBeNil)
		})

		Convey("When the target is out of range", func() {
			_, err := execute([]string{"--refdb", db, "--bursts", list, "--target", "120"}, "")
			So(err, ShouldNotBeNil)
		})
	})
}
