package flatten_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	flatten "github.com/okian/spresults/internal/domain/flatten"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFlatten(t *testing.T) {
	Convey("Given nested documents", t, func() {
		Convey("When flattening a single nested map", func() {
			got := flatten.Flatten(map[string]any{"a": map[string]any{"b": 1.0}}, ">")

			Convey("Then the path should join keys with the separator", func() {
				So(cmp.Diff(flatten.Record{"a>b": 1.0}, got), ShouldBeEmpty)
			})
		})

		Convey("When flattening lists and mixed scalar types", func() {
			doc := map[string]any{
				"_id":    "doc-1",
				"stages": []any{map[string]any{"name": "erase lebs", "end": nil}, "raw"},
				"mcd":    map[string]any{"pn_ma": 1200.0, "boards": []any{[]any{true}}},
			}
			got := flatten.Flatten(doc, ">")

			Convey("Then every terminal scalar should yield exactly one entry", func() {
				want := flatten.Record{
					"_id":            "doc-1",
					"stages>0>name":  "erase lebs",
					"stages>0>end":   nil,
					"stages>1":       "raw",
					"mcd>pn_ma":      1200.0,
					"mcd>boards>0>0": true,
				}
				So(cmp.Diff(want, got), ShouldBeEmpty)
			})
		})

		Convey("When flattening empty containers", func() {
			got := flatten.Flatten(map[string]any{"a": map[string]any{}, "b": []any{}, "c": 1.0}, ">")

			Convey("Then they should contribute no entries", func() {
				So(cmp.Diff(flatten.Record{"c": 1.0}, got), ShouldBeEmpty)
			})
		})

		Convey("When flattening an already flat record", func() {
			flat := map[string]any{"a>b": 1.0, "c": "x"}
			once := flatten.Flatten(flat, ">")
			twice := flatten.Flatten(once, ">")

			Convey("Then flattening should be idempotent", func() {
				So(cmp.Diff(flatten.Record(flat), once), ShouldBeEmpty)
				So(cmp.Diff(once, twice), ShouldBeEmpty)
			})
		})

		Convey("When using a different separator", func() {
			got := flatten.Flatten(map[string]any{"a": []any{1.0, 2.0}}, ".")
			So(cmp.Diff(flatten.Record{"a.0": 1.0, "a.1": 2.0}, got), ShouldBeEmpty)
		})
	})
}

func TestRecordPrune(t *testing.T) {
	Convey("Given a flattened record", t, func() {
		rec := flatten.Record{"a": 1.0, "a>b": 2.0, "a>b>c": 3.0}

		Convey("When the max depth is one", func() {
			dropped := rec.Prune(1, ">")

			Convey("Then paths with more than one separator should be dropped", func() {
				So(dropped, ShouldEqual, 1)
				So(rec.Keys(), ShouldResemble, []string{"a", "a>b"})
			})
		})

		Convey("When the max depth is zero", func() {
			dropped := rec.Prune(0, ">")

			Convey("Then filtering should be skipped", func() {
				So(dropped, ShouldEqual, 0)
				So(len(rec), ShouldEqual, 3)
			})
		})

		Convey("Then depth should count separators", func() {
			So(flatten.Depth("a>b>c", ">"), ShouldEqual, 2)
			So(flatten.Depth("a", ">"), ShouldEqual, 0)
		})
	})
}
