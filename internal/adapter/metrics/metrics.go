package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Event statuses used as the "status" label of EventsTotal.
const (
	StatusAccepted         = "accepted"
	StatusUnauthorized     = "unauthorized"
	StatusMalformed        = "malformed"
	StatusTooLarge         = "too_large"
	StatusUnsupportedMedia = "unsupported_media_type"
	StatusWriteFailure     = "write_failure"
)

// IngestMetrics holds all Prometheus metrics for the ingest service.
type IngestMetrics struct {
	EventsTotal      *prometheus.CounterVec
	BytesTotal       prometheus.Counter
	AppendedBytes    prometheus.Counter
	AppendDuration   prometheus.Histogram
	PublishFailures  prometheus.Counter
	PublisherHealthy prometheus.Gauge
}

// NewIngestMetrics initializes the metrics and registers them with reg.
func NewIngestMetrics(reg prometheus.Registerer) *IngestMetrics {
	factory := promauto.With(reg)
	return &IngestMetrics{
		EventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bbf_logging",
			Subsystem: "ingest",
			Name:      "events_total",
			Help:      "Total number of ingest requests by outcome.",
		}, []string{"status"}),
		BytesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bbf_logging",
			Subsystem: "ingest",
			Name:      "request_bytes_total",
			Help:      "Total number of decoded request body bytes of accepted events.",
		}),
		AppendedBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bbf_logging",
			Subsystem: "eventlog",
			Name:      "appended_bytes_total",
			Help:      "Total number of bytes of committed records appended to the event log.",
		}),
		AppendDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bbf_logging",
			Subsystem: "eventlog",
			Name:      "append_duration_seconds",
			Help:      "Time spent appending one record, including lock wait and sync.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}),
		PublishFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bbf_logging",
			Subsystem: "fanout",
			Name:      "publish_failures_total",
			Help:      "Total number of accepted events that could not be forwarded to the stream.",
		}),
		PublisherHealthy: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "bbf_logging",
			Subsystem: "fanout",
			Name:      "available_gauge",
			Help:      "Indicates if the fan-out stream is reachable (1 for available, 0 for unavailable).",
		}),
	}
}
