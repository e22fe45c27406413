package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/wingmate/wingmate/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		reg := prometheus.NewRegistry()
		m := metrics.NewManager(
			metrics.WithPrometheusRegistry(reg),
			metrics.WithNamespace("test"),
			metrics.WithSubsystem("unit"),
		)
		So(m, ShouldNotBeNil)

		Convey("Then all collectors registered without collision", func() {
			families, err := reg.Gather()
			So(err, ShouldBeNil)
			// Counters appear in Gather only after first increment, but
			// vectors and histograms with no observations stay hidden;
			// registration itself not erroring is the contract here.
			So(families, ShouldNotBeNil)
		})
	})

	Convey("Given the global helpers", t, func() {
		Convey("Then recording metrics never panics", func() {
			So(func() {
				metrics.RecordEventRecorded()
				metrics.RecordEventDuplicate()
				metrics.RecordProgressUpdate()
				metrics.RecordProgressConflict()
				metrics.RecordProgressRetryExhausted()
				metrics.RecordInsightGeneration()
				metrics.RecordInsightGenerationError()
				metrics.RecordInsightCacheHit()
				metrics.RecordInsightCacheMiss()
				metrics.RecordCoachRequest()
				metrics.RecordCoachFallback()
				metrics.RecordCoachLatency(12.5)
				metrics.RecordHeatmapDegradation()
				metrics.RecordStoreLatency("get_profile", 3.2)
				metrics.RecordHTTPRequest("events", "POST", "201")
				metrics.RecordHTTPRequestDuration("events", "POST", "201", 4.4)
			}, ShouldNotPanic)
		})

		Convey("Then the registry is exposed for the metrics endpoint", func() {
			So(metrics.GetRegistry(), ShouldNotBeNil)
		})
	})
}
