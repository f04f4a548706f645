package schema_test

import (
	"errors"
	"testing"

	"github.com/okian/spresults/internal/domain/flatten"
	schema "github.com/okian/spresults/internal/domain/schema"
	. "github.com/smartystreets/goconvey/convey"
)

func record(command string, version float64, extra map[string]any) flatten.Record {
	rec := flatten.Record{
		"id":                 "doc-" + command,
		"doc>command":        command,
		"doc>schema_version": version,
	}
	for k, v := range extra {
		rec[k] = v
	}
	return rec
}

func TestRouter_Route(t *testing.T) {
	Convey("Given a router with max depth one", t, func() {
		router := schema.NewRouter(schema.WithMaxDepth(1))

		Convey("When routing a record with deep paths", func() {
			rec := record("Provision", 3, map[string]any{"doc>mcd>pn_ma": 1200.0, "a>b": 1.0})
			routed, err := router.Route(rec)

			Convey("Then paths deeper than one separator should be dropped", func() {
				So(err, ShouldBeNil)
				So(routed.Pruned, ShouldEqual, 1)
				So(rec, ShouldNotContainKey, "doc>mcd>pn_ma")
				So(rec, ShouldContainKey, "a>b")
			})

			Convey("And no header should be emitted", func() {
				So(routed.Header, ShouldBeNil)
				So(router.Positional(), ShouldBeFalse)
			})

			Convey("And the group key should come from command and schema version", func() {
				So(routed.Key, ShouldResemble, schema.GroupKey{Command: "Provision", SchemaVersion: "3"})
				So(routed.Key.FileName(), ShouldEqual, "Provision_3.csv")
			})
		})
	})

	Convey("Given a router with max depth zero", t, func() {
		router := schema.NewRouter(schema.WithMaxDepth(0))

		Convey("When routing two records of the same group", func() {
			first, err := router.Route(record("Test", 2, map[string]any{"doc>mcd>boards>0>id": "b0"}))
			So(err, ShouldBeNil)
			second, err := router.Route(record("Test", 2, map[string]any{"doc>mcd>boards>0>id": "b1"}))
			So(err, ShouldBeNil)

			Convey("Then only the first should carry the header", func() {
				So(first.Header, ShouldResemble, []string{"doc>command", "doc>mcd>boards>0>id", "doc>schema_version", "id"})
				So(second.Header, ShouldBeNil)
			})

			Convey("And values should follow the header order", func() {
				So(first.Values, ShouldResemble, []string{"Test", "b0", "2", "doc-Test"})
				So(second.Values, ShouldResemble, []string{"Test", "b1", "2", "doc-Test"})
				So(first.Pruned, ShouldEqual, 0)
			})
		})

		Convey("When a later record has a different key set", func() {
			_, err := router.Route(record("Test", 2, map[string]any{"x": 1.0}))
			So(err, ShouldBeNil)
			routed, err := router.Route(record("Test", 2, map[string]any{"y": 1.0}))
			So(err, ShouldBeNil)

			Convey("Then the mismatch should be reported, not reconciled", func() {
				So(routed.Mismatched(), ShouldBeTrue)
				So(routed.Missing, ShouldEqual, 1)
				So(routed.Extra, ShouldEqual, 1)
				So(len(routed.Values), ShouldEqual, 4)
			})
		})

		Convey("When records belong to different groups", func() {
			_, _ = router.Route(record("Test", 2, nil))
			_, _ = router.Route(record("Provision", 1, nil))
			_, _ = router.Route(record("Test", 1, nil))

			Convey("Then each group should be tracked separately", func() {
				So(router.Groups(), ShouldResemble, []schema.GroupKey{
					{Command: "Provision", SchemaVersion: "1"},
					{Command: "Test", SchemaVersion: "1"},
					{Command: "Test", SchemaVersion: "2"},
				})
			})
		})

		Convey("When the command would escape the output directory", func() {
			for _, cmd := range []string{"../etc", "a/b", `a\b`, "..", ""} {
				_, err := router.Route(record(cmd, 1, nil))
				So(errors.Is(err, schema.ErrUngrouped), ShouldBeTrue)
			}
			So(router.Groups(), ShouldBeEmpty)
		})

		Convey("When a record has no command", func() {
			_, err := router.Route(flatten.Record{"doc>schema_version": 1.0})

			Convey("Then it should be rejected as ungrouped", func() {
				So(errors.Is(err, schema.ErrUngrouped), ShouldBeTrue)
			})
		})
	})
}

func TestRouter_Separator(t *testing.T) {
	Convey("Given a router using a dot separator", t, func() {
		router := schema.NewRouter(schema.WithSeparator("."), schema.WithMaxDepth(1))

		Convey("When routing a record flattened with that separator", func() {
			rec := flatten.Flatten(map[string]any{
				"id":  "doc-1",
				"doc": map[string]any{"command": "Test", "schema_version": 2.0, "mcd": map[string]any{"pn_ma": 1.0}},
			}, ".")
			routed, err := router.Route(rec)

			Convey("Then the group paths should follow the separator", func() {
				So(err, ShouldBeNil)
				So(routed.Key, ShouldResemble, schema.GroupKey{Command: "Test", SchemaVersion: "2"})
				So(routed.Pruned, ShouldEqual, 1)
			})
		})

		Convey("When explicit group paths are configured", func() {
			router := schema.NewRouter(schema.WithSeparator("."), schema.WithGroupPaths("cmd", "ver"))
			routed, err := router.Route(flatten.Record{"cmd": "Erase", "ver": 1.0})
			So(err, ShouldBeNil)
			So(routed.Key.FileName(), ShouldEqual, "Erase_1.csv")
		})
	})
}
