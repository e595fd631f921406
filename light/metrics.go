package light

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const MetricsSubsystem = "light"

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Number of transactions broadcast to the ledger.
	Submissions metrics.Counter
	// Number of transactions confirmed committed.
	Confirmations metrics.Counter
	// Number of store rollbacks driven by failed workflows.
	Rollbacks metrics.Counter
	// Seconds between broadcast and committed status.
	ConfirmSeconds metrics.Histogram
	// Tip slot of the local proof store.
	StoreTip metrics.Gauge
}

// PrometheusMetrics returns Metrics build using Prometheus client library.
func PrometheusMetrics(namespace string) *Metrics {
	return &Metrics{
		Submissions: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "submissions",
			Help:      "Number of transactions broadcast to the ledger.",
		}, []string{}),
		Confirmations: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "confirmations",
			Help:      "Number of transactions confirmed committed.",
		}, []string{}),
		Rollbacks: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "rollbacks",
			Help:      "Number of store rollbacks driven by failed workflows.",
		}, []string{}),
		ConfirmSeconds: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "confirm_seconds",
			Help:      "Seconds between broadcast and committed status.",
			Buckets:   stdprometheus.LinearBuckets(3, 3, 20),
		}, []string{}),
		StoreTip: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "store_tip",
			Help:      "Tip slot of the local proof store.",
		}, []string{}),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		Submissions:    discard.NewCounter(),
		Confirmations:  discard.NewCounter(),
		Rollbacks:      discard.NewCounter(),
		ConfirmSeconds: discard.NewHistogram(),
		StoreTip:       discard.NewGauge(),
	}
}
