// Package metrics exports remote sync activity to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sheikh-saqib/tripsync/internal/synced"
)

// Recorder counts writes, applied snapshots and failures per store path.
type Recorder struct {
	writes    *prometheus.CounterVec
	snapshots *prometheus.CounterVec
	failures  *prometheus.CounterVec
}

var _ synced.Observer = (*Recorder)(nil)

// New registers the counters with reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		// writes counts whole values handed to the store
		writes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tripsync_remote_writes_total",
			Help: "Whole-value writes sent to the remote store by path",
		}, []string{"path"}),
		// snapshots counts remote values that replaced local state
		snapshots: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tripsync_remote_snapshots_total",
			Help: "Remote snapshots applied to local state by path",
		}, []string{"path"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tripsync_sync_errors_total",
			Help: "Remote sync failures by path and operation",
		}, []string{"path", "op"}),
	}
}

func (r *Recorder) WriteIssued(path string) {
	r.writes.WithLabelValues(path).Inc()
}

func (r *Recorder) SnapshotApplied(path string) {
	r.snapshots.WithLabelValues(path).Inc()
}

func (r *Recorder) SyncFailed(path string, op synced.Op) {
	r.failures.WithLabelValues(path, string(op)).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
