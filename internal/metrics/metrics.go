// Package metrics defines the prometheus instrumentation for the
// tracking and arbitration pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "turf"

// Metrics bundles the collectors wired through the services.
type Metrics struct {
	PointsAccepted      prometheus.Counter
	PointsRejected      *prometheus.CounterVec
	LoopsCaptured       prometheus.Counter
	Arbitrations        *prometheus.CounterVec
	RemoteWriteFailures prometheus.Counter
	QueueDepth          *prometheus.GaugeVec
}

// New registers the collectors against reg and returns the bundle.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PointsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_accepted_total",
			Help:      "Raw samples accepted onto the live path.",
		}),
		PointsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_rejected_total",
			Help:      "Raw samples rejected at ingestion, by reason.",
		}, []string{"reason"}),
		LoopsCaptured: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loops_captured_total",
			Help:      "Loop closures that produced a captured polygon.",
		}),
		Arbitrations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "arbitrations_total",
			Help:      "Territory arbitration outcomes, by kind.",
		}, []string{"outcome"}),
		RemoteWriteFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_write_failures_total",
			Help:      "Remote store writes diverted to the retry queue.",
		}),
		QueueDepth: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_upload_queue_depth",
			Help:      "Entries waiting in the pending-upload queues.",
		}, []string{"queue"}),
	}
}
