package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager()

			Convey("Then it should be created on its own registry", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Registry(), ShouldNotBeNil)
				So(manager.Registry(), ShouldNotEqual, GetRegistry())
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"db": "sugarplum"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then metrics should use the namespace and labels", func() {
				manager.RowWritten("score_time")
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var names []string
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_unit_rows_written_total")
			})
		})

		Convey("Then the default manager should use the custom registry", func() {
			So(Default(), ShouldNotBeNil)
			So(Default().Registry(), ShouldEqual, GetRegistry())
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a fresh manager", t, func() {
		m := NewManager()

		Convey("When recording document flow", func() {
			m.DocumentFetched("default")
			m.DocumentFetched("default")
			m.DocumentSkipped("disposition")
			m.MalformedStages(3)

			Convey("Then counters should reflect the calls", func() {
				So(testutil.ToFloat64(m.documentsFetched.WithLabelValues("default")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.documentsSkipped.WithLabelValues("disposition")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.malformedStages), ShouldEqual, 3)
			})
		})

		Convey("When recording report and store metrics", func() {
			m.RowWritten("analyze_watts")
			m.SchemaGroups(4)
			m.QueryLatency(12)
			m.QueryError()
			m.RunDuration(1.5)

			Convey("Then gauges and counters should be set", func() {
				So(testutil.ToFloat64(m.rowsWritten.WithLabelValues("analyze_watts")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.schemaGroups), ShouldEqual, 4)
				So(testutil.ToFloat64(m.queryErrors), ShouldEqual, 1)
				So(testutil.ToFloat64(m.runDuration), ShouldEqual, 1.5)
				So(testutil.CollectAndCount(m.queryLatency), ShouldEqual, 1)
			})
		})
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given a manager with recorded metrics", t, func() {
		m := NewManager()
		m.RowWritten("score_time")

		Convey("When writing a textfile", func() {
			path := filepath.Join(t.TempDir(), "spresults.prom")
			err := m.WriteTextfile(path)

			Convey("Then the file should hold the exposition format", func() {
				So(err, ShouldBeNil)
				data, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(data), ShouldContainSubstring, `spresults_report_rows_written_total{report="score_time"} 1`)
			})
		})

		Convey("When the target directory does not exist", func() {
			err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))

			Convey("Then an export error should be returned", func() {
				So(errors.Is(err, ErrExport), ShouldBeTrue)
			})
		})
	})
}
