package memory_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/spresults/internal/adapters/source"
	"github.com/okian/spresults/internal/adapters/source/memory"
	"github.com/okian/spresults/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStore_BySerial(t *testing.T) {
	Convey("Given a memory store with documents for two serials", t, func() {
		store := memory.New(
			model.Document{"_id": "b", "serial": "SN1", "start": "2016/03/02 10:00:00 UTC"},
			model.Document{"_id": "a", "serial": "SN1", "start": "2016/03/01 10:00:00 UTC"},
			model.Document{"_id": "c", "serial": "SN2", "start": "2016/03/01 10:00:00 UTC"},
			model.Document{"_id": "d"},
		)

		Convey("When querying one serial", func() {
			rows, err := store.BySerial(context.Background(), "SN1")

			Convey("Then only its rows should return in key order", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 2)
				So(rows[0].ID, ShouldEqual, "a")
				So(rows[1].ID, ShouldEqual, "b")
				So(rows[0].Key, ShouldResemble, []any{"SN1", "2016/03/01 10:00:00 UTC"})
			})
		})

		Convey("When querying an unknown serial", func() {
			rows, err := store.BySerial(context.Background(), "SN9")
			So(err, ShouldBeNil)
			So(rows, ShouldBeEmpty)
		})

		Convey("Then documents without a serial should not be indexed", func() {
			So(store.Len(), ShouldEqual, 3)
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := store.BySerial(ctx, "SN1")
			So(errors.Is(err, source.ErrQuery), ShouldBeTrue)
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given JSON dumps on disk", t, func() {
		dir := t.TempDir()

		Convey("When the dump is a document array", func() {
			path := filepath.Join(dir, "docs.json")
			So(os.WriteFile(path, []byte(`[{"_id":"a","serial":"SN1","start":"x"}]`), 0o600), ShouldBeNil)
			store, err := memory.Load(path)
			So(err, ShouldBeNil)
			So(store.Len(), ShouldEqual, 1)
		})

		Convey("When the dump is a CouchDB rows export", func() {
			path := filepath.Join(dir, "export.json")
			So(os.WriteFile(path, []byte(`{"rows":[{"id":"a","doc":{"_id":"a","serial":"SN1"}},{"id":"b"}]}`), 0o600), ShouldBeNil)
			store, err := memory.Load(path)
			So(err, ShouldBeNil)
			So(store.Len(), ShouldEqual, 1)
		})

		Convey("When the file is missing or invalid", func() {
			_, err := memory.Load(filepath.Join(dir, "missing.json"))
			So(errors.Is(err, source.ErrOpen), ShouldBeTrue)

			bad := filepath.Join(dir, "bad.json")
			So(os.WriteFile(bad, []byte(`{"rows":`), 0o600), ShouldBeNil)
			_, err = memory.Load(bad)
			So(errors.Is(err, source.ErrOpen), ShouldBeTrue)
		})
	})
}
