package report_test

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/spresults/internal/adapters/report"
	"github.com/okian/spresults/internal/domain/schema"
	. "github.com/smartystreets/goconvey/convey"
)

func readCSV(path string) [][]string {
	f, err := os.Open(path)
	So(err, ShouldBeNil)
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	So(err, ShouldBeNil)
	return records
}

func TestTable(t *testing.T) {
	Convey("Given a fixed-header table", t, func() {
		dir := t.TempDir()
		table, err := report.OpenTable(dir, report.ScoreTimeFile, []string{"a", "b"})
		So(err, ShouldBeNil)

		Convey("When rows are written", func() {
			So(table.Write([]string{"1", "x,y"}), ShouldBeNil)
			So(table.Write([]string{"2", ""}), ShouldBeNil)

			Convey("Then the file should hold the header and rows", func() {
				So(table.Rows(), ShouldEqual, 2)
				So(readCSV(table.Path()), ShouldResemble, [][]string{
					{"a", "b"}, {"1", "x,y"}, {"2", ""},
				})
				So(table.Close(), ShouldBeNil)
				So(table.Close(), ShouldBeNil)
			})
		})
	})

	Convey("Given an output directory that does not exist", t, func() {
		_, err := report.OpenTable(filepath.Join(t.TempDir(), "missing"), report.AnalyzeWattsFile, []string{"a"})
		So(errors.Is(err, report.ErrWrite), ShouldBeTrue)
	})
}

func TestGroupWriter(t *testing.T) {
	Convey("Given a group writer", t, func() {
		dir := t.TempDir()
		w := report.NewGroupWriter(dir)
		provision := schema.GroupKey{Command: "Provision", SchemaVersion: "3"}
		test := schema.GroupKey{Command: "Test", SchemaVersion: "2"}

		Convey("When records for two groups arrive", func() {
			So(w.Write(schema.Routed{Key: provision, Header: []string{"h1", "h2"}, Values: []string{"a", "b"}}), ShouldBeNil)
			So(w.Write(schema.Routed{Key: test, Values: []string{"c"}}), ShouldBeNil)
			So(w.Write(schema.Routed{Key: provision, Values: []string{"d", "e"}}), ShouldBeNil)

			Convey("Then each group should get its own file", func() {
				So(w.Files(), ShouldResemble, []string{
					filepath.Join(dir, "Provision_3.csv"),
					filepath.Join(dir, "Test_2.csv"),
				})
				So(readCSV(filepath.Join(dir, "Provision_3.csv")), ShouldResemble, [][]string{
					{"h1", "h2"}, {"a", "b"}, {"d", "e"},
				})
				So(readCSV(filepath.Join(dir, "Test_2.csv")), ShouldResemble, [][]string{{"c"}})
			})

			Convey("And closing should release every file", func() {
				So(w.Close(), ShouldBeNil)
				So(w.Files(), ShouldBeEmpty)
			})
		})

		Convey("When no record arrives", func() {
			So(w.Close(), ShouldBeNil)

			Convey("Then no file should be created", func() {
				entries, err := os.ReadDir(dir)
				So(err, ShouldBeNil)
				So(entries, ShouldBeEmpty)
			})
		})
	})
}
